package di

import (
	"context"
	"sync"

	"github.com/sectrean/di-engine/internal/errors"
)

// Future represents a value that has not been resolved from the Scope yet.
// The value is resolved the first time [Future.Result] is called.
type Future[T any] interface {
	// Result returns the resolved value or an error if the value could not be resolved.
	Result() (T, error)
}

type lazyFuture[T any] struct {
	fn func() (T, error)
}

// NewFuture returns a [Future] that resolves T from the Scope once, on first use.
//
// Use it to break a dependency cycle, or to defer building an expensive value:
//
//	future := di.NewFuture[*Report](ctx, scope)
//	// ...
//	report, err := future.Result()
func NewFuture[T any](ctx context.Context, s Scope, opts ...ResolveOption) Future[T] {
	return lazyFuture[T]{
		fn: sync.OnceValues(func() (T, error) {
			return Resolve[T](ctx, s, opts...)
		}),
	}
}

func (f lazyFuture[T]) Result() (T, error) {
	val, err := f.fn()
	return val, errors.Wrap(err, "lazy future result")
}

var _ Future[any] = lazyFuture[any]{}
