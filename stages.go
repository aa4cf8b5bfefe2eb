package di

import (
	"reflect"

	"github.com/sectrean/di-engine/internal/errors"
)

// lifetimeStage returns the value held by the lifetime manager, or builds and stores it.
func lifetimeStage(rc *ResolutionContext, next Pipeline) any {
	lm := rc.reg.lifetime

	if _, ok := lm.(*PerResolveLifetimeManager); ok {
		return perResolveStage(rc, next)
	}

	scope := rc.lifetimeScope()
	if val := lm.TryGetValue(scope); val != NoValue {
		return val
	}

	slm, synchronized := lm.(SynchronizedLifetimeManager)
	if synchronized {
		// The build lock of a frame further up is not reentrant
		if p := rc.buildingFrame(lm, scope); p != nil {
			rc.Fault(errors.Wrapf(ErrLifetimeManagerInUse,
				"%s manager is building %s: %s", lm, p.contract, rc.trail()))
			return nil
		}
	}

	// Synchronized managers hold the build lock when GetValue returns NoValue
	if val := lm.GetValue(scope); val != NoValue {
		return val
	}

	stored := false
	if synchronized {
		rc.building = lm
		defer func() {
			rc.building = nil
			if !stored {
				slm.Recover(scope)
			}
		}()
	}

	val := next(rc)
	if rc.IsFaulted() {
		return nil
	}

	lm.SetValue(val, scope)
	stored = true

	return val
}

// perResolveStage keeps the value in the resolve state so the rest of the graph reuses it.
func perResolveStage(rc *ResolutionContext, next Pipeline) any {
	if val, ok := rc.state.perResolve[rc.reg]; ok {
		return val
	}

	val := next(rc)
	if rc.IsFaulted() {
		return nil
	}

	if rc.state.perResolve == nil {
		rc.state.perResolve = make(map[*Registration]any)
	}
	rc.state.perResolve[rc.reg] = val
	rc.reg.lifetime.SetValue(val, rc.lifetimeScope())

	return val
}

// mappingStage resolves the registration of the implementation type instead.
func mappingStage(target Contract) Pipeline {
	return func(rc *ResolutionContext) any {
		return rc.resolveChild(target, nil, false)
	}
}

// unwrapStage turns the *T built by the rest of the pipeline back into a T.
func unwrapStage(rc *ResolutionContext, next Pipeline) any {
	val := next(rc)
	if rc.IsFaulted() {
		return nil
	}

	rv := reflect.ValueOf(val)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return val
}

// constructStage calls the selected constructor.
//
// Struct types are returned as a pointer so fields can be injected.
func constructStage(p *typePlan) Pipeline {
	return func(rc *ResolutionContext) any {
		ctor := p.ctor
		if ctor.zero != nil {
			return reflect.New(ctor.zero).Interface()
		}

		out, ok := rc.call(ctor, ctor.fn, p.impl)
		if !ok {
			return nil
		}

		val := out[0]
		if p.impl.Kind() == reflect.Struct {
			ptr := reflect.New(p.impl)
			ptr.Elem().Set(val)
			return ptr.Interface()
		}

		return val.Interface()
	}
}

// fieldsStage injects struct fields into the value built by the rest of the pipeline.
func fieldsStage(p *typePlan) Stage {
	return func(rc *ResolutionContext, next Pipeline) any {
		val := next(rc)
		if rc.IsFaulted() {
			return nil
		}

		rv := reflect.ValueOf(val)
		if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			rc.Fault(errors.Wrapf(ErrArgumentMismatch, "inject fields into %T: not a pointer to a struct", val))
			return nil
		}

		for _, f := range p.fields {
			fv, ok := rc.provide(f.d, f.info, f.typ, false)
			if !ok {
				return nil
			}

			field, err := rv.Elem().FieldByIndexErr(f.index)
			if err != nil {
				rc.Fault(errors.Wrapf(ErrArgumentMismatch, "%s: %v", f.info, err))
				return nil
			}
			field.Set(fv)
		}

		return val
	}
}

// methodsStage calls the injection methods on the value built by the rest of the pipeline.
func methodsStage(p *typePlan) Stage {
	return func(rc *ResolutionContext, next Pipeline) any {
		val := next(rc)
		if rc.IsFaulted() {
			return nil
		}

		rv := reflect.ValueOf(val)
		for _, m := range p.methods {
			mv := rv.MethodByName(m.name)
			if !mv.IsValid() {
				rc.Fault(errors.Wrapf(ErrNoMember, "method %s on %T", m.name, val))
				return nil
			}

			if _, ok := rc.call(m, mv, p.impl); !ok {
				return nil
			}
		}

		return val
	}
}

// factoryStage calls the registered factory.
func factoryStage(r *Registration) Pipeline {
	return func(rc *ResolutionContext) any {
		if r.factory != nil {
			val, err := r.factory(rc)
			if err != nil {
				rc.Fault(err)
			}
			if rc.IsFaulted() {
				return nil
			}

			if val != nil && !reflect.TypeOf(val).AssignableTo(r.contract.Type) {
				rc.Fault(errors.Wrapf(ErrArgumentMismatch, "factory returned %T, not assignable to %s", val, r.contract.Type))
				return nil
			}
			return val
		}

		out, ok := rc.call(r.ctor, r.ctor.fn, r.contract.Type)
		if !ok {
			return nil
		}

		return out[0].Interface()
	}
}

// instanceStage returns the registered instance.
func instanceStage(r *Registration) Pipeline {
	return func(*ResolutionContext) any {
		return r.instance
	}
}

// existingStage returns the value passed to BuildUp.
func existingStage(rc *ResolutionContext) any {
	return rc.existing
}
