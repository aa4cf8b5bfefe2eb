package di

import (
	"context"
	"reflect"
	"strings"

	"github.com/sectrean/di-engine/internal/errors"
)

// ResolutionContext is the state of a single resolve call.
//
// Each dependency gets its own frame, linked to the frame that depends on it.
// All frames of a call share the overrides, the fault, and the [PerResolve] values.
//
// A ResolutionContext must not be used after the [FactoryFunc] or [ResolveFunc] it was
// passed to returns, or from another goroutine.
type ResolutionContext struct {
	ctx       context.Context
	state     *resolveState
	parent    *ResolutionContext
	container *Container
	contract  Contract
	reg       *Registration
	existing  any

	// deferred runs after the frame's pipeline returns
	deferred []func()

	// building is the manager whose build lock the frame holds
	building LifetimeManager
}

type resolveState struct {
	overrides  []Override
	err        error
	perResolve map[*Registration]any
	thread     ThreadID
}

func newResolutionContext(
	ctx context.Context,
	c *Container,
	contract Contract,
	overrides []Override,
) *ResolutionContext {
	thread, _ := ThreadFromContext(ctx)

	return &ResolutionContext{
		ctx:       ctx,
		container: c,
		contract:  contract,
		state: &resolveState{
			overrides: overrides,
			thread:    thread,
		},
	}
}

// Context returns the [context.Context] passed to the resolve call.
func (rc *ResolutionContext) Context() context.Context {
	return rc.ctx
}

// Container returns the Container the current frame resolves from.
//
// For [Singleton] registrations this is the Container they were registered with.
func (rc *ResolutionContext) Container() *Container {
	return rc.container
}

// Contract returns the contract being resolved by the current frame.
func (rc *ResolutionContext) Contract() Contract {
	return rc.contract
}

// Registration returns the registration being resolved by the current frame, if any.
func (rc *ResolutionContext) Registration() *Registration {
	return rc.reg
}

// Parent returns the frame that depends on the current frame.
// It is nil for the frame of the top-level call.
func (rc *ResolutionContext) Parent() *ResolutionContext {
	return rc.parent
}

// Existing returns the value passed to BuildUp, or nil.
func (rc *ResolutionContext) Existing() any {
	return rc.existing
}

// Thread returns the [ThreadID] of the resolve call.
func (rc *ResolutionContext) Thread() ThreadID {
	return rc.state.thread
}

// Fault records an error for the resolve call.
// Only the first fault is kept. Remaining stages are skipped once a fault is recorded.
func (rc *ResolutionContext) Fault(err error) {
	if err == nil || rc.state.err != nil {
		return
	}
	rc.state.err = err
}

// IsFaulted returns true if a fault has been recorded.
func (rc *ResolutionContext) IsFaulted() bool {
	return rc.state.err != nil
}

// Err returns the recorded fault.
func (rc *ResolutionContext) Err() error {
	return rc.state.err
}

// Resolve resolves a dependency in a new frame.
//
// If it fails, the fault is recorded and nil is returned.
func (rc *ResolutionContext) Resolve(contract Contract) any {
	return rc.resolveChild(contract, nil, false)
}

func (rc *ResolutionContext) lifetimeScope() LifetimeScope {
	return rc.container.lifetimeScope(rc.state.thread)
}

// buildingFrame returns the frame further up that holds the build lock of lm for scope.
func (rc *ResolutionContext) buildingFrame(lm LifetimeManager, scope LifetimeScope) *ResolutionContext {
	for p := rc.parent; p != nil; p = p.parent {
		if sameLifetimeManager(p.building, lm) && p.lifetimeScope() == scope {
			return p
		}
	}
	return nil
}

func (rc *ResolutionContext) onFinish(f func()) {
	rc.deferred = append(rc.deferred, f)
}

func (rc *ResolutionContext) resolveChild(contract Contract, reg *Registration, optional bool) any {
	if rc.IsFaulted() {
		return nil
	}

	frame := &ResolutionContext{
		ctx:       rc.ctx,
		state:     rc.state,
		parent:    rc,
		container: rc.container,
		contract:  contract,
		reg:       reg,
	}

	val := frame.execute(optional)
	if rc.IsFaulted() {
		rc.state.err = errors.Wrapf(rc.state.err, "dependency %s", contract)
		return nil
	}

	return val
}

// execute finds the registration for the frame and runs its pipeline.
func (rc *ResolutionContext) execute(optional bool) any {
	if err := rc.ctx.Err(); err != nil {
		rc.Fault(err)
		return nil
	}

	if rc.reg == nil {
		rc.reg = rc.container.lookup(rc.contract)
	}

	if err := rc.checkCycle(); err != nil {
		rc.Fault(err)
		return nil
	}

	if rc.reg == nil {
		t := rc.contract.Type

		switch {
		case t.Kind() == reflect.Slice:
			return rc.resolveSlice(optional)
		case isConstructible(t):
			rc.reg = rc.container.implicitRegistration(rc.contract)
		default:
			rc.Fault(ErrNotRegistered)
			return nil
		}
	}

	// Singleton dependencies are resolved from the Container that owns the value
	if rc.reg.isContainerControlled() && rc.reg.owner != nil {
		rc.container = rc.reg.owner
	}

	pipeline, err := rc.reg.pipeline(rc.container)
	if err != nil {
		rc.Fault(err)
		return nil
	}

	defer rc.finish()
	return pipeline(rc)
}

func (rc *ResolutionContext) finish() {
	for _, f := range rc.deferred {
		f()
	}
	rc.deferred = nil
}

// checkCycle walks up the frames looking for the current contract or registration.
func (rc *ResolutionContext) checkCycle() error {
	for p := rc.parent; p != nil; p = p.parent {
		if p.contract == rc.contract || (rc.reg != nil && p.reg == rc.reg) {
			return errors.Errorf("%w: %s", ErrCircularDependency, rc.trail())
		}
	}

	return nil
}

// trail renders the frames from the top-level call to the current one.
func (rc *ResolutionContext) trail() string {
	var contracts []string
	for p := rc; p != nil; p = p.parent {
		contracts = append(contracts, p.contract.String())
	}

	for i, j := 0, len(contracts)-1; i < j; i, j = i+1, j-1 {
		contracts[i], contracts[j] = contracts[j], contracts[i]
	}

	return strings.Join(contracts, " -> ")
}

// resolveSlice resolves every registration of the element type.
//
// An unnamed slice contract includes named registrations. A named one only includes
// registrations with the same name.
func (rc *ResolutionContext) resolveSlice(optional bool) any {
	t := rc.contract.Type
	elem := t.Elem()

	entries := rc.container.registry.chainRegistrationsOf(elem)
	if rc.contract.Name != "" {
		entries = filterByName(entries, rc.contract.Name)
	}

	if len(entries) == 0 && !optional {
		rc.Fault(ErrNotRegistered)
		return nil
	}

	out := reflect.MakeSlice(t, 0, len(entries))
	for _, e := range entries {
		val := rc.resolveChild(e.contract, e.reg, false)
		if rc.IsFaulted() {
			return nil
		}

		out = reflect.Append(out, safeReflectValue(elem, val))
	}

	return out.Interface()
}

func filterByName(entries []entry, name string) []entry {
	filtered := entries[:0:0]
	for _, e := range entries {
		if e.contract.Name == name {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// provide produces the value for one parameter or field of type t.
func (rc *ResolutionContext) provide(d Descriptor, info DependencyInfo, t reflect.Type, optional bool) (reflect.Value, bool) {
	var val any
	var err error

	if payload, ok := findOverride(rc.state.overrides, info); ok {
		val, err = rc.resolvePayload(payload, info)
	} else {
		switch d.Kind {
		case DescriptorValue:
			val = d.Value

		case DescriptorResolver:
			val, err = rc.callResolver(d.Resolver)

		case DescriptorResolverFactory:
			if d.Factory != nil {
				val, err = rc.callResolver(d.Factory(info))
			}

		default:
			if d.AllowDefault && !rc.container.canResolve(info.Contract) {
				val = d.Default
			} else {
				val = rc.resolveChild(info.Contract, nil, optional)
			}
		}
	}

	if err != nil {
		rc.Fault(errors.Wrapf(err, "%s", info))
	}
	if rc.IsFaulted() {
		return reflect.Value{}, false
	}

	rv := safeReflectValue(t, val)
	if !rv.Type().AssignableTo(t) {
		rc.Fault(errors.Wrapf(ErrArgumentMismatch, "%s: %s is not assignable to %s", info, rv.Type(), t))
		return reflect.Value{}, false
	}

	return rv, true
}

// call invokes fn with a value provided for each parameter of f.
func (rc *ResolutionContext) call(f *function, fn reflect.Value, declaring reflect.Type) ([]reflect.Value, bool) {
	in := make([]reflect.Value, f.numIn())
	for i := range in {
		pt := f.t.In(i)
		d := f.params[i]
		info := DependencyInfo{
			Declaring: declaring,
			Member:    f.name,
			Index:     i,
			Label:     d.Label,
			Contract:  d.contractFor(pt),
		}

		val, ok := rc.provide(d, info, pt, f.isVariadicParam(i))
		if !ok {
			return nil, false
		}
		in[i] = val
	}

	// Check for a context error before calling the function
	if err := rc.ctx.Err(); err != nil {
		rc.Fault(err)
		return nil, false
	}

	out, err := callFunc(fn, in, f.t.IsVariadic())
	if err != nil {
		rc.Fault(errors.Wrapf(err, "call %s", f))
		return nil, false
	}

	if f.errOut >= 0 {
		if err, _ := out[f.errOut].Interface().(error); err != nil {
			// Keep the error as is
			rc.Fault(err)
			return nil, false
		}
	}

	return out, true
}

// callFunc calls fn and turns reflect argument panics into [ErrArgumentMismatch].
// Any other panic is not recovered.
func callFunc(fn reflect.Value, in []reflect.Value, variadic bool) (out []reflect.Value, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if !isReflectPanic(r) {
			panic(r)
		}
		err = errors.Errorf("%w: %v", ErrArgumentMismatch, r)
	}()

	if variadic {
		return fn.CallSlice(in), nil
	}
	return fn.Call(in), nil
}

func isReflectPanic(r any) bool {
	switch v := r.(type) {
	case *reflect.ValueError:
		return true
	case string:
		return strings.HasPrefix(v, "reflect: ")
	default:
		return false
	}
}
