package di

import (
	"cmp"
	"reflect"
	"runtime"
	"slices"

	"github.com/sectrean/di-engine/internal/errors"
)

// function is a constructor, factory, or method with injectable parameters.
type function struct {
	fn        reflect.Value
	t         reflect.Type
	name      string
	params    []Descriptor
	errOut    int
	preferred bool

	// zero is set for the implicit constructor of a struct type.
	zero reflect.Type
}

// newFunction validates fn as a constructor or factory.
// It must return T or (T, error).
func newFunction(fn any) (*function, error) {
	if fn == nil {
		return nil, errors.New("function is nil")
	}

	fnType := reflect.TypeOf(fn)
	if fnType.Kind() != reflect.Func {
		return nil, errors.Errorf("%T is not a function", fn)
	}

	errOut := -1
	switch {
	case fnType.NumOut() == 1:
	case fnType.NumOut() == 2 && fnType.Out(1) == typeError:
		errOut = 1
	default:
		return nil, errors.Errorf("function %s must return T or (T, error)", fnType)
	}

	fnVal := reflect.ValueOf(fn)
	if fnVal.IsNil() {
		return nil, errors.Errorf("function %s is nil", fnType)
	}

	return &function{
		fn:     fnVal,
		t:      fnType,
		name:   funcName(fnVal),
		params: make([]Descriptor, fnType.NumIn()),
		errOut: errOut,
	}, nil
}

// newMethodFunction describes method name of type t without the receiver.
func newMethodFunction(t reflect.Type, name string) (*function, error) {
	recv := t
	if t.Kind() == reflect.Struct {
		recv = reflect.PointerTo(t)
	}

	m, ok := recv.MethodByName(name)
	if !ok {
		return nil, errors.Wrapf(ErrNoMember, "method %s on %s", name, t)
	}

	mt := m.Type
	if recv.Kind() != reflect.Interface {
		// Drop the receiver
		in := make([]reflect.Type, 0, mt.NumIn()-1)
		for i := 1; i < mt.NumIn(); i++ {
			in = append(in, mt.In(i))
		}
		out := make([]reflect.Type, 0, mt.NumOut())
		for i := range mt.NumOut() {
			out = append(out, mt.Out(i))
		}
		mt = reflect.FuncOf(in, out, mt.IsVariadic())
	}

	errOut := -1
	if n := mt.NumOut(); n > 0 && mt.Out(n-1) == typeError {
		errOut = n - 1
	}

	return &function{
		t:      mt,
		name:   name,
		params: make([]Descriptor, mt.NumIn()),
		errOut: errOut,
	}, nil
}

func zeroConstructor(t reflect.Type) *function {
	st := t
	if t.Kind() == reflect.Ptr {
		st = t.Elem()
	}

	return &function{
		t:      reflect.FuncOf(nil, []reflect.Type{t}, false),
		name:   st.String() + "{}",
		errOut: -1,
		zero:   st,
	}
}

func funcName(fn reflect.Value) string {
	if f := runtime.FuncForPC(fn.Pointer()); f != nil {
		return f.Name()
	}
	return fn.Type().String()
}

func (f *function) out() reflect.Type {
	return f.t.Out(0)
}

func (f *function) numIn() int {
	return f.t.NumIn()
}

func (f *function) isVariadicParam(i int) bool {
	return f.t.IsVariadic() && i == f.t.NumIn()-1
}

func (f *function) clone() *function {
	c := *f
	c.params = slices.Clone(f.params)
	return &c
}

func (f *function) setParams(params []Descriptor) error {
	if len(params) > len(f.params) {
		return errors.Errorf("%s: %d parameters provided, function has %d", f.name, len(params), len(f.params))
	}

	copy(f.params, params)
	return nil
}

func (f *function) setLabels(labels []string) error {
	if len(labels) > len(f.params) {
		return errors.Errorf("%s: %d labels provided, function has %d parameters", f.name, len(labels), len(f.params))
	}

	for i, l := range labels {
		f.params[i].Label = l
	}
	return nil
}

// nameDependency assigns the name to the first unnamed parameter of type t.
func (f *function) nameDependency(t reflect.Type, name string) error {
	for i := range f.params {
		p := &f.params[i]
		if f.t.In(i) != t || p.Kind != DescriptorDynamic || !p.Contract.IsZero() || p.Contract.Name != "" {
			continue
		}

		p.Contract.Name = name
		return nil
	}

	return errors.Errorf("with named %s: parameter not found", t)
}

// complexity ranks constructors with the same number of parameters.
func (f *function) complexity() int {
	score := 0
	for i := range f.params {
		pt := f.t.In(i)

		switch {
		case f.isVariadicParam(i):
			score += 2
		case pt.Kind() == reflect.Slice, pt.Kind() == reflect.Array:
			score++
		case pt.Kind() == reflect.Ptr && (isBasicKind(pt.Elem().Kind()) || pt.Elem().Kind() == reflect.Ptr):
			score -= 100
		}

		if f.params[i].isSatisfied() {
			score++
		}
	}

	return score
}

func isBasicKind(k reflect.Kind) bool {
	return k >= reflect.Bool && k <= reflect.Complex128 || k == reflect.String
}

func (f *function) String() string {
	return f.name
}

// ConstructorOption is used to configure a constructor when calling [WithConstructor]
// or [Container.AddConstructor].
//
// Available options:
//   - [Preferred]
//   - [ParamLabels]
//   - [WithParams]
//   - [WithNamed]
type ConstructorOption interface {
	applyConstructor(*function) error
}

type constructorOption func(*function) error

func (o constructorOption) applyConstructor(f *function) error {
	return o(f)
}

// Preferred marks the constructor as the one to use for its type.
// Resolving the type fails if more than one constructor is preferred.
func Preferred() ConstructorOption {
	return constructorOption(func(f *function) error {
		f.preferred = true
		return nil
	})
}

// ParamLabels labels constructor parameters in order so they can be matched
// by [OverrideParameter] and [OverrideMember].
func ParamLabels(labels ...string) ConstructorOption {
	return constructorOption(func(f *function) error {
		return f.setLabels(labels)
	})
}

// WithParams sets [Descriptor]s for the first len(params) constructor parameters.
func WithParams(params ...Descriptor) ConstructorOption {
	return constructorOption(func(f *function) error {
		return f.setParams(params)
	})
}

// addConstructor adds a constructor to the registry catalog, keyed by its result type.
func (r *registry) addConstructor(f *function) {
	r.ctors.Compute(f.out(), func(old []*function, _ bool) ([]*function, bool) {
		return append(slices.Clone(old), f), false
	})
	r.version.Add(1)
}

// constructorsFor returns the catalog constructors for t from the whole chain, ancestors first.
func (r *registry) constructorsFor(t reflect.Type) []*function {
	var chain []*registry
	for s := r; s != nil; s = s.parent {
		chain = append(chain, s)
	}

	var ctors []*function
	for i := len(chain) - 1; i >= 0; i-- {
		if fs, ok := chain[i].ctors.Load(t); ok {
			ctors = append(ctors, fs...)
		}
	}
	return ctors
}

// selectConstructor picks the constructor used to build impl.
//
// A preferred constructor always wins. Otherwise constructors are ranked by parameter
// count and complexity, and the first one whose parameters can all be provided is used.
func (c *Container) selectConstructor(impl reflect.Type) (*function, error) {
	candidates := c.registry.constructorsFor(impl)
	if len(candidates) == 0 {
		if isConstructible(impl) {
			return zeroConstructor(impl), nil
		}
		return nil, errors.Wrapf(ErrNoConstructor, "select constructor for %s", impl)
	}

	var preferred []*function
	for _, f := range candidates {
		if f.preferred {
			preferred = append(preferred, f)
		}
	}

	switch len(preferred) {
	case 0:
	case 1:
		return preferred[0], nil
	default:
		return nil, errors.Wrapf(ErrAmbiguousConstructor,
			"select constructor for %s: %s and %s are both preferred", impl, preferred[0], preferred[1])
	}

	ranked := slices.Clone(candidates)
	slices.SortStableFunc(ranked, func(a, b *function) int {
		if n := cmp.Compare(b.numIn(), a.numIn()); n != 0 {
			return n
		}
		return cmp.Compare(b.complexity(), a.complexity())
	})

	for _, f := range ranked {
		if c.canSatisfy(f) {
			return f, nil
		}
	}

	return nil, errors.Wrapf(ErrNoConstructor, "select constructor for %s", impl)
}

// canSatisfy probes each parameter of f without resolving anything.
func (c *Container) canSatisfy(f *function) bool {
	for i, p := range f.params {
		if p.isSatisfied() || f.isVariadicParam(i) {
			continue
		}

		if !c.canResolve(p.contractFor(f.t.In(i))) {
			return false
		}
	}

	return true
}
