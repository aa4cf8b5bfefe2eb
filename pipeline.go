package di

import (
	"reflect"

	"github.com/sectrean/di-engine/internal/errors"
)

// Pipeline builds the value of a registration.
//
// It returns nil and records a fault on the [ResolutionContext] if it fails.
type Pipeline func(rc *ResolutionContext) any

// Stage is one step of a [Pipeline]. It calls next to run the rest of the pipeline.
type Stage func(rc *ResolutionContext, next Pipeline) any

// Compose chains the stages in front of the terminal pipeline.
// The first stage runs first. Stages are skipped once the context is faulted.
func Compose(terminal Pipeline, stages ...Stage) Pipeline {
	p := terminal
	for i := len(stages) - 1; i >= 0; i-- {
		stage, next := stages[i], p
		p = func(rc *ResolutionContext) any {
			if rc.IsFaulted() {
				return nil
			}
			return stage(rc, next)
		}
	}

	return p
}

// pipeline returns the cached pipeline of the registration, building it on first use.
//
// A build error is returned to the caller and not cached, so the next call tries again.
func (r *Registration) pipeline(c *Container) (Pipeline, error) {
	if p := r.pipe.Load(); p != nil {
		return *p, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have built the pipeline while we were waiting
	if p := r.pipe.Load(); p != nil {
		return *p, nil
	}

	p, err := c.buildPipeline(r)
	if err != nil {
		return nil, err
	}

	r.pipe.Store(&p)
	return p, nil
}

func (c *Container) buildPipeline(r *Registration) (Pipeline, error) {
	switch r.category {
	case CategoryType, CategoryCache:
		return c.buildTypePipeline(r)

	case CategoryFactory:
		return Compose(factoryStage(r), lifetimeStage), nil

	case CategoryInstance:
		return instanceStage(r), nil

	case CategoryInternal:
		return Pipeline(r.internal), nil

	default:
		return nil, errors.Errorf("build pipeline for %s: unsupported category %s", r.contract, r.category)
	}
}

func (c *Container) buildTypePipeline(r *Registration) (Pipeline, error) {
	impl := r.impl

	// Redirect to the registration of the implementation type, if there is one
	if impl != r.contract.Type && r.ctor == nil {
		target := r.contract.withType(impl)
		if mapped := c.lookup(target); mapped != nil && mapped != r {
			// The target stores its value in the same manager
			if sameLifetimeManager(mapped.lifetime, r.lifetime) {
				return mappingStage(target), nil
			}
			return Compose(mappingStage(target), lifetimeStage), nil
		}
	}

	plan, err := c.buildPlan(r, impl)
	if err != nil {
		return nil, err
	}

	stages := []Stage{lifetimeStage}
	if impl.Kind() == reflect.Struct {
		stages = append(stages, unwrapStage)
	}
	if len(plan.methods) > 0 {
		stages = append(stages, methodsStage(plan))
	}
	if len(plan.fields) > 0 {
		stages = append(stages, fieldsStage(plan))
	}

	return Compose(constructStage(plan), stages...), nil
}

// cachedBuildUp is the BuildUp pipeline for a specific value type.
type cachedBuildUp struct {
	t    reflect.Type
	pipe Pipeline
}

// buildUpPipeline returns the pipeline that injects fields and calls methods on an existing value of type t.
func (r *Registration) buildUpPipeline(c *Container, t reflect.Type) (Pipeline, error) {
	if p := r.buildUp.Load(); p != nil && p.t == t {
		return p.pipe, nil
	}

	plan, err := c.buildInjectionPlan(r, t)
	if err != nil {
		return nil, err
	}

	var stages []Stage
	if len(plan.methods) > 0 {
		stages = append(stages, methodsStage(plan))
	}
	if len(plan.fields) > 0 {
		stages = append(stages, fieldsStage(plan))
	}

	p := Compose(existingStage, stages...)

	// Only cache the pipeline for the registered implementation type
	if t == r.impl || r.impl == nil {
		r.buildUp.Store(&cachedBuildUp{t: t, pipe: p})
	}

	return p, nil
}

// typePlan is everything needed to construct and inject a type.
type typePlan struct {
	impl    reflect.Type
	ctor    *function
	fields  []fieldInjection
	methods []*function
}

func (c *Container) buildPlan(r *Registration, impl reflect.Type) (*typePlan, error) {
	ctor := r.ctor
	if ctor == nil {
		selected, err := c.selectConstructor(impl)
		if err != nil {
			return nil, err
		}

		ctor = selected
		if len(r.depNames) > 0 {
			ctor = ctor.clone()
			for _, dn := range r.depNames {
				if err := ctor.nameDependency(dn.t, dn.name); err != nil {
					return nil, errors.Wrapf(err, "constructor %s", ctor)
				}
			}
		}
	}

	p, err := c.buildInjectionPlan(r, impl)
	if err != nil {
		return nil, err
	}

	p.ctor = ctor
	return p, nil
}

func (c *Container) buildInjectionPlan(r *Registration, impl reflect.Type) (*typePlan, error) {
	fields, err := fieldPlan(impl, r.props)
	if err != nil {
		return nil, err
	}

	methods, err := methodPlan(impl, r.methods)
	if err != nil {
		return nil, err
	}

	return &typePlan{
		impl:    impl,
		fields:  fields,
		methods: methods,
	}, nil
}

// fieldInjection is a struct field that gets injected.
type fieldInjection struct {
	index []int
	typ   reflect.Type
	d     Descriptor
	info  DependencyInfo
}

func structOf(t reflect.Type) reflect.Type {
	switch {
	case t.Kind() == reflect.Struct:
		return t
	case t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct:
		return t.Elem()
	default:
		return nil
	}
}

// fieldPlan collects the fields named by [InjectionProperty] followed by the tagged fields.
func fieldPlan(impl reflect.Type, props []propertyMember) ([]fieldInjection, error) {
	st := structOf(impl)
	if st == nil {
		if len(props) > 0 {
			return nil, errors.Wrapf(ErrNoMember, "field %s on %s", props[0].field, impl)
		}
		return nil, nil
	}

	var fields []fieldInjection
	explicit := make(map[string]bool, len(props))

	for _, p := range props {
		sf, ok := st.FieldByName(p.field)
		if !ok || !sf.IsExported() {
			return nil, errors.Wrapf(ErrNoMember, "field %s on %s", p.field, impl)
		}

		d := p.d
		if d.Label == "" {
			d.Label = sf.Name
		}

		fields = append(fields, newFieldInjection(impl, sf, d))
		explicit[sf.Name] = true
	}

	for _, sf := range reflect.VisibleFields(st) {
		if !sf.IsExported() || explicit[sf.Name] {
			continue
		}

		d, ok, err := parseFieldTag(sf)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", st)
		}
		if !ok {
			continue
		}

		fields = append(fields, newFieldInjection(impl, sf, d))
	}

	return fields, nil
}

func newFieldInjection(declaring reflect.Type, sf reflect.StructField, d Descriptor) fieldInjection {
	return fieldInjection{
		index: sf.Index,
		typ:   sf.Type,
		d:     d,
		info: DependencyInfo{
			Declaring: declaring,
			Member:    sf.Name,
			Index:     -1,
			Label:     d.Label,
			Contract:  d.contractFor(sf.Type),
		},
	}
}

func methodPlan(impl reflect.Type, methods []methodMember) ([]*function, error) {
	fns := make([]*function, 0, len(methods))
	for _, m := range methods {
		f, err := newMethodFunction(impl, m.name)
		if err != nil {
			return nil, err
		}

		err = f.setParams(m.params)
		if err != nil {
			return nil, errors.Wrapf(err, "method %s", m.name)
		}

		fns = append(fns, f)
	}

	return fns, nil
}
