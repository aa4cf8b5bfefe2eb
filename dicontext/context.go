package dicontext

import (
	"context"
	"reflect"

	"github.com/sectrean/di-engine"
	"github.com/sectrean/di-engine/internal/errors"
)

type scopeContextKey struct{}

// WithScope returns a new [context.Context] that carries the provided [di.Scope].
func WithScope(ctx context.Context, s di.Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// Scope returns the [di.Scope] stored on the [context.Context], if present.
func Scope(ctx context.Context) di.Scope {
	if s, ok := ctx.Value(scopeContextKey{}).(di.Scope); ok {
		return s
	}
	return nil
}

// Resolve a value of type T from the [di.Scope] stored on the [context.Context].
//
// The Context is passed along to the resolve call, so values registered per thread
// follow the [di.ThreadID] stored on it.
func Resolve[T any](ctx context.Context, opts ...di.ResolveOption) (T, error) {
	var val T

	s := Scope(ctx)
	if s == nil {
		return val, errors.Errorf("resolve %s from context: scope not found on context", reflect.TypeFor[T]())
	}

	val, err := di.Resolve[T](ctx, s, opts...)
	return val, errors.Wrap(err, "resolve from context")
}

// MustResolve resolves a value of type T from the [di.Scope] stored on the
// [context.Context].
func MustResolve[T any](ctx context.Context, opts ...di.ResolveOption) T {
	val, err := Resolve[T](ctx, opts...)
	if err != nil {
		panic(err)
	}
	return val
}

// Invoke calls fn with parameters resolved from the [di.Scope] stored on the [context.Context].
//
// See [di.Invoke] for details.
func Invoke(ctx context.Context, fn any, opts ...di.InvokeOption) error {
	s := Scope(ctx)
	if s == nil {
		return errors.Errorf("invoke %T from context: scope not found on context", fn)
	}

	return di.Invoke(ctx, s, fn, opts...)
}
