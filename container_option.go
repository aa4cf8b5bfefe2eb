package di

import (
	"reflect"

	"github.com/sectrean/di-engine/internal/errors"
)

// ContainerOption is used to configure a new Container.
type ContainerOption interface {
	applyContainer(*Container) error
	order() optionOrder
}

// optionOrder is the order options are applied in.
// Settings come first so they affect the registrations that follow.
type optionOrder uint8

const (
	orderSetting optionOrder = iota
	orderConstructor
	orderRegistration
)

type containerOption struct {
	fn  func(*Container) error
	ord optionOrder
}

func (o containerOption) applyContainer(c *Container) error {
	return o.fn(c)
}

func (o containerOption) order() optionOrder {
	return o.ord
}

// ContainerName sets the name of the Container. It is used in diagnostics and errors.
func ContainerName(name string) ContainerOption {
	return containerOption{
		ord: orderSetting,
		fn: func(c *Container) error {
			c.name = name
			return nil
		},
	}
}

// WithDiagnostics sets the [Diagnostics] that receive container events.
//
// Child containers use the Diagnostics of their parent unless they set their own.
func WithDiagnostics(d Diagnostics) ContainerOption {
	return containerOption{
		ord: orderSetting,
		fn: func(c *Container) error {
			if d == nil {
				return errors.New("with diagnostics: diagnostics is nil")
			}

			c.diagnostics = d
			return nil
		},
	}
}

// WithAutoRegistration caches a registration in the root Container for each unregistered
// type that is resolved. Without it, the registration is rebuilt for each resolve.
func WithAutoRegistration() ContainerOption {
	return containerOption{
		ord: orderSetting,
		fn: func(c *Container) error {
			c.autoRegister = true
			return nil
		},
	}
}

// WithDefaultLifetime sets the lifetime of type and factory registrations that don't
// specify one. Each registration gets its own clone of lm.
//
// The default is [Transient].
func WithDefaultLifetime(lm LifetimeManager) ContainerOption {
	return containerOption{
		ord: orderSetting,
		fn: func(c *Container) error {
			if lm == nil {
				return errors.New("with default lifetime: manager is nil")
			}

			c.defaultLifetime = lm
			return nil
		},
	}
}

// WithConstructor adds a constructor function to the catalog of the Container.
//
// See [Container.AddConstructor] for details.
func WithConstructor(fn any, opts ...ConstructorOption) ContainerOption {
	return containerOption{
		ord: orderConstructor,
		fn: func(c *Container) error {
			err := c.addConstructor(fn, opts)
			return errors.Wrapf(err, "with constructor %T", fn)
		},
	}
}

// WithType registers impl for the contract type.
//
// See [Container.RegisterType] for details.
func WithType(contract, impl reflect.Type, opts ...RegisterOption) ContainerOption {
	return containerOption{
		ord: orderRegistration,
		fn: func(c *Container) error {
			err := c.registerType(contract, impl, opts)
			return errors.Wrapf(err, "with type %s", contract)
		},
	}
}

// WithInstance registers an existing value for the contract type.
//
// See [Container.RegisterInstance] for details.
func WithInstance(contract reflect.Type, instance any, opts ...RegisterOption) ContainerOption {
	return containerOption{
		ord: orderRegistration,
		fn: func(c *Container) error {
			err := c.registerInstance(contract, instance, opts)
			return errors.Wrapf(err, "with instance %s", contract)
		},
	}
}

// WithFactory registers a factory function for the contract type.
//
// See [Container.RegisterFactory] for details.
func WithFactory(contract reflect.Type, factory any, opts ...RegisterOption) ContainerOption {
	return containerOption{
		ord: orderRegistration,
		fn: func(c *Container) error {
			err := c.registerFactory(contract, factory, opts)
			return errors.Wrapf(err, "with factory %s", contract)
		},
	}
}
