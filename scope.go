package di

import (
	"context"
	"reflect"
	"sync/atomic"

	"github.com/sectrean/di-engine/internal/errors"
)

// Scope allows you to resolve values.
//
// A Scope can be injected into constructors and factories to allow them to resolve values
// later. However, it cannot be used within the constructor function. It can be stored in
// a struct or used in a closure after the constructor function has returned.
//
// Scope is implemented by *Container.
type Scope interface {
	// Contains returns true if the contract is registered with the Scope.
	//
	// Available options:
	// 	- [WithName] specifies the name of the contract.
	Contains(t reflect.Type, opts ...ResolveOption) bool

	// Resolve returns a value of the given type from the Scope.
	//
	// Available options:
	// 	- [WithName] specifies the name of the contract.
	// 	- [WithOverrides] overrides dependencies for this call.
	Resolve(ctx context.Context, t reflect.Type, opts ...ResolveOption) (any, error)

	// ResolveAll returns a value for every registration of the given type.
	//
	// Available options are the same as Resolve.
	ResolveAll(ctx context.Context, t reflect.Type, opts ...ResolveOption) ([]any, error)
}

// Resolve a value of type T from the [Scope].
func Resolve[T any](ctx context.Context, s Scope, opts ...ResolveOption) (T, error) {
	var val T
	anyVal, err := s.Resolve(ctx, reflect.TypeFor[T](), opts...)
	if err != nil || anyVal == nil {
		return val, err
	}

	val, ok := anyVal.(T)
	if !ok {
		return val, errors.Errorf("resolve %s: %w: got %T", reflect.TypeFor[T](), ErrArgumentMismatch, anyVal)
	}

	return val, nil
}

// MustResolve resolves a value of type T from the [Scope].
//
// If the value cannot be resolved, this function will panic.
func MustResolve[T any](ctx context.Context, s Scope, opts ...ResolveOption) T {
	val, err := Resolve[T](ctx, s, opts...)
	if err != nil {
		panic(err)
	}
	return val
}

// ResolveAll resolves a value of type T for every registration of T in the [Scope].
func ResolveAll[T any](ctx context.Context, s Scope, opts ...ResolveOption) ([]T, error) {
	vals, err := s.ResolveAll(ctx, reflect.TypeFor[T](), opts...)
	if err != nil {
		return nil, err
	}

	out := make([]T, len(vals))
	for i, v := range vals {
		if v == nil {
			continue
		}

		val, ok := v.(T)
		if !ok {
			return nil, errors.Errorf("resolve all %s: %w: got %T", reflect.TypeFor[T](), ErrArgumentMismatch, v)
		}
		out[i] = val
	}

	return out, nil
}

// injectScope provides the Scope dependency.
//
// The Container itself is returned for a top-level resolve. A dependency gets a wrapper
// that refuses to resolve until the value depending on it has been built.
func injectScope(rc *ResolutionContext) any {
	dependent := rc.parent
	if dependent == nil || dependent.reg == nil {
		return rc.container
	}

	s := &injectedScope{
		contract: dependent.contract,
		scope:    rc.container,
	}
	dependent.onFinish(s.setReady)

	return s
}

// injectedScope wraps a Container to be injected as a Scope dependency.
type injectedScope struct {
	// contract is what the Scope is getting injected into
	contract Contract
	scope    Scope
	ready    atomic.Bool
}

func (s *injectedScope) setReady() {
	s.ready.Store(true)
}

func (s *injectedScope) Contains(t reflect.Type, opts ...ResolveOption) bool {
	return s.scope.Contains(t, opts...)
}

func (s *injectedScope) Resolve(ctx context.Context, t reflect.Type, opts ...ResolveOption) (any, error) {
	if err := s.checkReady(t); err != nil {
		return nil, err
	}

	return s.scope.Resolve(ctx, t, opts...)
}

func (s *injectedScope) ResolveAll(ctx context.Context, t reflect.Type, opts ...ResolveOption) ([]any, error) {
	if err := s.checkReady(t); err != nil {
		return nil, err
	}

	return s.scope.ResolveAll(ctx, t, opts...)
}

func (s *injectedScope) checkReady(t reflect.Type) error {
	if s.ready.Load() {
		return nil
	}

	return errors.Errorf(
		"resolve %v: "+
			"resolve not supported on di.Scope while resolving %s: "+
			"the scope must be stored and used later",
		t, s.contract,
	)
}

var _ Scope = (*injectedScope)(nil)
