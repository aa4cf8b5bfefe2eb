// Package testutils has helpers shared by the tests of every package.
package testutils

import (
	"context"
	"testing"

	"github.com/sourcegraph/conc"
)

// LogError logs the full message of a non-nil error, so the messages show up in verbose test output.
func LogError(tb testing.TB, err error) {
	if err == nil {
		return
	}

	tb.Helper()
	tb.Logf("error message:\n%v", err)
}

type testValueKey struct{}

// ContextWithTestValue returns a child context that compares unequal to ctx.
func ContextWithTestValue(ctx context.Context, val any) context.Context {
	return context.WithValue(ctx, testValueKey{}, val)
}

// RunParallel calls f from n goroutines, passing each its index, and waits for all of them.
// A panic in f is raised again in the caller.
func RunParallel(n int, f func(i int)) {
	var wg conc.WaitGroup
	defer wg.Wait()

	for i := range n {
		wg.Go(func() { f(i) })
	}
}

// CollectChannel drains a closed channel into a slice.
func CollectChannel[V any](ch <-chan V) []V {
	values := make([]V, 0, len(ch))
	for v := range ch {
		values = append(values, v)
	}

	return values
}
