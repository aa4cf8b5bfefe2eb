package di

import (
	"reflect"
)

// WithName is used to specify the name of a contract.
//
// WithName can be used with:
//   - [Container.RegisterType], [Container.RegisterInstance], [Container.RegisterFactory]
//   - [Resolve], [MustResolve], [Container.Resolve], [Container.ResolveAll]
//   - [Container.Contains], [Container.CanResolve], [Container.Lookup]
func WithName(name string) NameOption {
	return nameOption{name: name}
}

// NameOption is used to specify the name of a contract when registering or resolving.
type NameOption interface {
	RegisterOption
	ResolveOption
}

type nameOption struct {
	name string
}

func (o nameOption) applyRegistration(c *registrationConfig) error {
	c.name = o.name
	return nil
}

func (o nameOption) applyResolveConfig(c *resolveConfig) error {
	c.contract.Name = o.name
	return nil
}

var _ NameOption = nameOption{}

// WithNamed is used to specify a name for a dependency of type Dependency.
//
// This option can be used multiple times. Each use names the next unnamed parameter of type
// Dependency.
//
// Example:
//
//	err := c.RegisterFactory(reflect.TypeFor[*Store](), NewStore,
//		di.WithNamed[*sql.DB]("primary"),
//		di.WithNamed[*sql.DB]("replica"),
//	)
//
// Resolving fails if the function does not have a parameter of type Dependency.
func WithNamed[Dependency any](name string) DependencyNameOption {
	return depNameOption{
		t:    reflect.TypeFor[Dependency](),
		name: name,
	}
}

// DependencyNameOption is used to name a dependency when registering a factory or type,
// adding a constructor, or calling [Invoke].
type DependencyNameOption interface {
	RegisterOption
	InvokeOption
	ConstructorOption
}

type depNameOption struct {
	t    reflect.Type
	name string
}

func (o depNameOption) applyRegistration(c *registrationConfig) error {
	c.depNames = append(c.depNames, dependencyName{t: o.t, name: o.name})
	return nil
}

func (o depNameOption) applyInvokeConfig(c *invokeConfig) error {
	return c.fn.nameDependency(o.t, o.name)
}

func (o depNameOption) applyConstructor(f *function) error {
	return f.nameDependency(o.t, o.name)
}

var _ DependencyNameOption = depNameOption{}
