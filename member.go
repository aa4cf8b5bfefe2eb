package di

import (
	"github.com/sectrean/di-engine/internal/errors"
)

// InjectionMember configures how a registered type is constructed and injected.
//
// Injection members are passed as [RegisterOption]s:
//   - [InjectionConstructor] sets the constructor function.
//   - [InjectionProperty] injects an exported struct field.
//   - [InjectionMethod] calls a method after the value is constructed.
type InjectionMember interface {
	RegisterOption
	memberName() string
}

// InjectionConstructor uses fn to construct the registered type.
//
// fn must return T or (T, error), where T is assignable to the registered contract.
// params describe the first len(params) parameters. Other parameters are resolved by type.
func InjectionConstructor(fn any, params ...Descriptor) InjectionMember {
	return constructorMember{fn: fn, params: params}
}

type constructorMember struct {
	fn     any
	params []Descriptor
}

func (m constructorMember) memberName() string {
	return "constructor"
}

func (m constructorMember) applyRegistration(c *registrationConfig) error {
	if c.ctor != nil {
		return errors.New("injection constructor: constructor already set")
	}

	f, err := newFunction(m.fn)
	if err != nil {
		return errors.Wrap(err, "injection constructor")
	}

	err = f.setParams(m.params)
	if err != nil {
		return errors.Wrap(err, "injection constructor")
	}

	c.ctor = f
	return nil
}

// InjectionProperty injects the exported struct field with the given name.
//
// The field is resolved by its type unless a [Descriptor] is provided.
// Fields tagged with `di:"..."` are injected without an InjectionProperty.
func InjectionProperty(field string, d ...Descriptor) InjectionMember {
	m := propertyMember{field: field}
	if len(d) > 0 {
		m.d = d[0]
	}
	return m
}

type propertyMember struct {
	field string
	d     Descriptor
}

func (m propertyMember) memberName() string {
	return m.field
}

func (m propertyMember) applyRegistration(c *registrationConfig) error {
	if m.field == "" {
		return errors.New("injection property: field name is empty")
	}

	c.props = append(c.props, m)
	return nil
}

// InjectionMethod calls the method with the given name after the value is constructed.
//
// params describe the first len(params) method parameters. Other parameters are resolved by type.
// If the last result of the method is an error, a non-nil error fails the resolution.
func InjectionMethod(name string, params ...Descriptor) InjectionMember {
	return methodMember{name: name, params: params}
}

type methodMember struct {
	name   string
	params []Descriptor
}

func (m methodMember) memberName() string {
	return m.name
}

func (m methodMember) applyRegistration(c *registrationConfig) error {
	if m.name == "" {
		return errors.New("injection method: method name is empty")
	}

	c.methods = append(c.methods, m)
	return nil
}

var (
	_ InjectionMember = constructorMember{}
	_ InjectionMember = propertyMember{}
	_ InjectionMember = methodMember{}
)
