package di

import (
	"context"
	"reflect"
	"time"

	"github.com/sectrean/di-engine/internal/errors"
)

// Resolve returns a value of the given type from the [Container].
//
// The registration for the contract is looked up in the Container and then its ancestors.
// Unregistered structs and pointers to structs are constructed. A slice type returns the
// values of every registration of its element type unless the slice type is registered itself.
//
// Errors are returned as a [*ResolutionError].
//
// Available options:
//   - [WithName] specifies the name of the contract.
//   - [WithOverrides] overrides dependencies for this call.
func (c *Container) Resolve(ctx context.Context, t reflect.Type, opts ...ResolveOption) (any, error) {
	if t == nil {
		return nil, errors.New("di.Container.Resolve: type is nil")
	}

	config, err := newResolveConfig(t, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "di.Container.Resolve %s", t)
	}

	rc := newResolutionContext(ctx, c, config.contract, config.overrides)
	return c.run(rc, func() any {
		return rc.execute(false)
	})
}

// ResolveAll returns a value for every registration of the given type from the [Container].
//
// Registrations of ancestors come first, in the order they were registered. A registration
// in a child Container replaces the one in its parent with the same contract.
// Named registrations are included unless [WithName] is used.
//
// Returns an empty slice if there are no registrations.
func (c *Container) ResolveAll(ctx context.Context, t reflect.Type, opts ...ResolveOption) ([]any, error) {
	if t == nil {
		return nil, errors.New("di.Container.ResolveAll: type is nil")
	}

	config, err := newResolveConfig(t, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "di.Container.ResolveAll %s", t)
	}

	contract := Contract{Type: reflect.SliceOf(t), Name: config.contract.Name}
	rc := newResolutionContext(ctx, c, contract, config.overrides)

	val, err := c.run(rc, func() any {
		if err := rc.ctx.Err(); err != nil {
			rc.Fault(err)
			return nil
		}
		return rc.resolveSlice(true)
	})
	if err != nil {
		return nil, err
	}

	rv := reflect.ValueOf(val)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out, nil
}

// BuildUp injects the fields and calls the injection methods of an existing value.
//
// Tagged fields are injected, as well as the members of the registration for t, if any.
// The value is not stored by any lifetime manager.
func (c *Container) BuildUp(ctx context.Context, t reflect.Type, existing any, opts ...ResolveOption) (any, error) {
	if t == nil {
		return nil, errors.New("di.Container.BuildUp: type is nil")
	}

	config, err := newResolveConfig(t, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "di.Container.BuildUp %s", t)
	}

	contract := config.contract
	if isNil(existing) {
		return nil, &ResolutionError{
			Contract: contract,
			Err:      errors.Wrap(ErrArgumentMismatch, "build up: existing value is nil"),
		}
	}

	valueType := reflect.TypeOf(existing)
	if !valueType.AssignableTo(t) {
		return nil, &ResolutionError{
			Contract: contract,
			Err:      errors.Wrapf(ErrArgumentMismatch, "build up: %s is not assignable to %s", valueType, t),
		}
	}

	reg := c.lookup(contract)
	if reg == nil {
		reg = newRegistration(contract, CategoryCache, c, &registrationConfig{
			lifetime: NewTransientLifetimeManager(),
		})
	}

	rc := newResolutionContext(ctx, c, contract, config.overrides)
	rc.reg = reg
	rc.existing = existing

	return c.run(rc, func() any {
		pipeline, err := reg.buildUpPipeline(c, valueType)
		if err != nil {
			rc.Fault(err)
			return nil
		}

		defer rc.finish()
		return pipeline(rc)
	})
}

// run executes a top-level resolve and reports it to the diagnostics.
func (c *Container) run(rc *ResolutionContext, resolve func() any) (any, error) {
	if c.closed.Load() {
		return nil, &ResolutionError{Contract: rc.contract, Err: ErrContainerClosed}
	}

	start := time.Now()
	val := resolve()

	if rc.IsFaulted() {
		err := &ResolutionError{Contract: rc.contract, Err: rc.Err()}
		c.diagnostics.ResolveFailed(rc.ctx, c, rc.contract, err)
		return nil, err
	}

	c.diagnostics.Resolved(rc.ctx, c, rc.contract, time.Since(start))
	return val, nil
}

// Contains returns true if the contract is registered with the [Container] or its ancestors.
//
// Available options:
//   - [WithName] specifies the name of the contract.
func (c *Container) Contains(t reflect.Type, opts ...ResolveOption) bool {
	if t == nil {
		return false
	}

	config, err := newResolveConfig(t, opts)
	if err != nil {
		return false
	}

	return c.lookup(config.contract) != nil
}

// CanResolve returns true if the contract can be resolved without resolving it.
//
// It is true for registered contracts, constructible types, and slices of registered types.
// The dependencies of the contract are not checked.
func (c *Container) CanResolve(t reflect.Type, opts ...ResolveOption) bool {
	if t == nil {
		return false
	}

	config, err := newResolveConfig(t, opts)
	if err != nil {
		return false
	}

	return c.canResolve(config.contract)
}

// Lookup returns the registration for the contract from the [Container] or its ancestors.
func (c *Container) Lookup(t reflect.Type, opts ...ResolveOption) (*Registration, bool) {
	if t == nil {
		return nil, false
	}

	config, err := newResolveConfig(t, opts)
	if err != nil {
		return nil, false
	}

	reg := c.lookup(config.contract)
	return reg, reg != nil
}

// BuildUp injects the fields and calls the injection methods of an existing value of type T.
//
// See [Container.BuildUp] for details.
func BuildUp[T any](ctx context.Context, c *Container, existing T, opts ...ResolveOption) (T, error) {
	var val T
	anyVal, err := c.BuildUp(ctx, reflect.TypeFor[T](), existing, opts...)
	if anyVal != nil {
		val = anyVal.(T)
	}

	return val, err
}
