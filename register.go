package di

import (
	"reflect"

	"github.com/sectrean/di-engine/internal/errors"
)

// RegisterOption is used to configure a registration when calling [Container.RegisterType],
// [Container.RegisterInstance], or [Container.RegisterFactory].
//
// Available options:
//   - [WithName] registers the contract with a name.
//   - [Lifetime] values like [Singleton] set the lifetime.
//   - [WithLifetimeManager] and [WithSharedLifetimeManager] set a specific [LifetimeManager].
//   - [As] registers an alias contract.
//   - [WithNamed] sets the name of a dependency.
//   - [InjectionConstructor], [InjectionProperty], and [InjectionMethod] configure injection.
type RegisterOption interface {
	applyRegistration(*registrationConfig) error
}

type registerOption func(*registrationConfig) error

func (o registerOption) applyRegistration(c *registrationConfig) error {
	return o(c)
}

// WithLifetimeManager sets the [LifetimeManager] for a registration.
//
// A LifetimeManager can only be used by one registration in a Container hierarchy.
// Use [WithSharedLifetimeManager] to share one.
func WithLifetimeManager(lm LifetimeManager) RegisterOption {
	return registerOption(func(c *registrationConfig) error {
		if lm == nil {
			return errors.New("with lifetime manager: manager is nil")
		}

		c.lifetime = lm
		c.sharedLifetime = false
		return nil
	})
}

// WithSharedLifetimeManager sets a [LifetimeManager] that is shared by several registrations.
// All of them resolve to the same stored value.
func WithSharedLifetimeManager(lm LifetimeManager) RegisterOption {
	return registerOption(func(c *registrationConfig) error {
		if lm == nil {
			return errors.New("with shared lifetime manager: manager is nil")
		}

		c.lifetime = lm
		c.sharedLifetime = true
		return nil
	})
}

// As registers an alias contract for the registration.
// The registered value must be assignable to T.
func As[T any]() RegisterOption {
	return registerOption(func(c *registrationConfig) error {
		c.aliases = append(c.aliases, reflect.TypeFor[T]())
		return nil
	})
}

// RegisterType registers impl for the contract type with the [Container].
//
// If impl is nil, the contract type itself is constructed. It must be a struct, a pointer
// to a struct, or have a constructor added with [WithConstructor].
//
// The default lifetime is [Transient].
func (c *Container) RegisterType(contract, impl reflect.Type, opts ...RegisterOption) error {
	err := c.registerType(contract, impl, opts)
	return errors.Wrapf(err, "di.Container.RegisterType %s", contract)
}

func (c *Container) registerType(contract, impl reflect.Type, opts []RegisterOption) error {
	if contract == nil {
		return errors.Wrap(ErrInvalidRegistration, "contract type is nil")
	}
	if impl == nil {
		impl = contract
	}

	cfg, err := newRegistrationConfig(c.defaultLifetime.Clone(), opts)
	if err != nil {
		return err
	}

	if cfg.ctor != nil {
		if !cfg.ctor.out().AssignableTo(contract) {
			return errors.Wrapf(ErrInvalidRegistration,
				"injection constructor %s returns %s, not assignable to %s", cfg.ctor, cfg.ctor.out(), contract)
		}
		impl = cfg.ctor.out()
	}

	if !impl.AssignableTo(contract) {
		return errors.Wrapf(ErrInvalidRegistration, "%s is not assignable to %s", impl, contract)
	}

	if impl == contract && cfg.ctor == nil &&
		!isConstructible(impl) && len(c.registry.constructorsFor(impl)) == 0 {
		return errors.Wrapf(ErrInvalidRegistration, "%s cannot be constructed", impl)
	}

	// Without an injection constructor, dependency names are applied to the selected
	// constructor when the pipeline is built.
	if cfg.ctor != nil {
		for _, dn := range cfg.depNames {
			if err := cfg.ctor.nameDependency(dn.t, dn.name); err != nil {
				return err
			}
		}
	}

	reg := newRegistration(Contract{Type: contract, Name: cfg.name}, CategoryType, c, cfg)
	reg.impl = impl

	return c.install(reg, cfg)
}

// RegisterInstance registers an existing value for the contract type with the [Container].
//
// The default lifetime is [Singleton]. The value is closed with the Container unless the
// lifetime is [Transient] or [External].
func (c *Container) RegisterInstance(contract reflect.Type, instance any, opts ...RegisterOption) error {
	err := c.registerInstance(contract, instance, opts)
	return errors.Wrapf(err, "di.Container.RegisterInstance %s", contract)
}

func (c *Container) registerInstance(contract reflect.Type, instance any, opts []RegisterOption) error {
	if contract == nil {
		return errors.Wrap(ErrInvalidRegistration, "contract type is nil")
	}

	if instance != nil && !reflect.TypeOf(instance).AssignableTo(contract) {
		return errors.Wrapf(ErrInvalidRegistration, "%T is not assignable to %s", instance, contract)
	}

	cfg, err := newRegistrationConfig(NewContainerControlledLifetimeManager(), opts)
	if err != nil {
		return err
	}

	if cfg.ctor != nil || len(cfg.props) > 0 || len(cfg.methods) > 0 {
		return errors.Wrap(ErrInvalidRegistration, "injection members are not supported for instances")
	}

	reg := newRegistration(Contract{Type: contract, Name: cfg.name}, CategoryInstance, c, cfg)
	reg.instance = instance

	err = c.install(reg, cfg)
	if err != nil {
		return err
	}

	reg.lifetime.SetValue(instance, c.lifetimeScope(ThreadID{}))
	return nil
}

// RegisterFactory registers a factory function for the contract type with the [Container].
//
// factory is either a [FactoryFunc] or a function that returns T or (T, error), where T
// is assignable to the contract type. The parameters of the function are resolved from
// the Container.
//
// The default lifetime is [Transient].
func (c *Container) RegisterFactory(contract reflect.Type, factory any, opts ...RegisterOption) error {
	err := c.registerFactory(contract, factory, opts)
	return errors.Wrapf(err, "di.Container.RegisterFactory %s", contract)
}

func (c *Container) registerFactory(contract reflect.Type, factory any, opts []RegisterOption) error {
	if contract == nil {
		return errors.Wrap(ErrInvalidRegistration, "contract type is nil")
	}

	cfg, err := newRegistrationConfig(c.defaultLifetime.Clone(), opts)
	if err != nil {
		return err
	}

	if cfg.ctor != nil || len(cfg.props) > 0 || len(cfg.methods) > 0 {
		return errors.Wrap(ErrInvalidRegistration, "injection members are not supported for factories")
	}

	reg := newRegistration(Contract{Type: contract, Name: cfg.name}, CategoryFactory, c, cfg)

	switch fn := factory.(type) {
	case FactoryFunc:
		reg.factory = fn
	case func(*ResolutionContext) (any, error):
		reg.factory = fn
	default:
		f, err := newFunction(factory)
		if err != nil {
			return errors.Wrapf(ErrInvalidRegistration, "factory: %v", err)
		}
		if !f.out().AssignableTo(contract) {
			return errors.Wrapf(ErrInvalidRegistration, "factory %s returns %s, not assignable to %s", f, f.out(), contract)
		}
		for _, dn := range cfg.depNames {
			if err := f.nameDependency(dn.t, dn.name); err != nil {
				return err
			}
		}
		reg.ctor = f
	}

	if reg.factory != nil && len(cfg.depNames) > 0 {
		return errors.Wrap(ErrInvalidRegistration, "with named: not supported for FactoryFunc")
	}

	return c.install(reg, cfg)
}

// install validates the aliases and lifetime manager and stores the registration.
func (c *Container) install(reg *Registration, cfg *registrationConfig) error {
	valueType := reg.impl
	if reg.category == CategoryFactory && reg.ctor != nil {
		valueType = reg.ctor.out()
	}
	if reg.category == CategoryInstance && reg.instance != nil {
		valueType = reflect.TypeOf(reg.instance)
	}
	if valueType == nil {
		valueType = reg.contract.Type
	}
	reg.valueType = valueType

	for _, alias := range reg.aliases {
		if !valueType.AssignableTo(alias.Type) {
			return errors.Wrapf(ErrInvalidRegistration, "as %s: %s is not assignable", alias.Type, valueType)
		}
	}

	if c.closed.Load() {
		return ErrContainerClosed
	}

	if err := c.root().claimLifetime(reg.lifetime, reg, cfg.sharedLifetime); err != nil {
		return err
	}

	c.registry.register(reg.Contracts(), reg)
	c.diagnostics.Registered(c, reg)

	return nil
}

// claimLifetime records that lm is used by reg.
//
// A shared manager may be claimed again by a registration whose values can stand in for
// the values of the registration that claimed it first, and the other way around.
func (c *Container) claimLifetime(lm LifetimeManager, reg *Registration, shared bool) error {
	if !claimable(lm) {
		return nil
	}

	other, loaded := c.managers.LoadOrStore(lm, reg)
	if !loaded {
		return nil
	}
	if !shared {
		return errors.Wrapf(ErrLifetimeManagerInUse, "%T is used by %s", lm, other.contract)
	}
	if !servesContracts(other.valueType, reg) || !servesContracts(reg.valueType, other) {
		return errors.Wrapf(ErrLifetimeManagerInUse, "%T is shared with %s: %s and %s are not interchangeable",
			lm, other.contract, other.valueType, reg.valueType)
	}

	return nil
}

// servesContracts returns true if a value of type t can be returned for every contract of reg.
func servesContracts(t reflect.Type, reg *Registration) bool {
	for _, contract := range reg.Contracts() {
		if !t.AssignableTo(contract.Type) {
			return false
		}
	}
	return true
}

// RegisterType registers TImpl for the TContract type with the [Container].
//
// See [Container.RegisterType] for details.
func RegisterType[TContract, TImpl any](c *Container, opts ...RegisterOption) error {
	return c.RegisterType(reflect.TypeFor[TContract](), reflect.TypeFor[TImpl](), opts...)
}

// RegisterInstance registers an existing value for type T with the [Container].
//
// See [Container.RegisterInstance] for details.
func RegisterInstance[T any](c *Container, instance T, opts ...RegisterOption) error {
	return c.RegisterInstance(reflect.TypeFor[T](), instance, opts...)
}

// RegisterFactory registers a factory function for type T with the [Container].
//
// See [Container.RegisterFactory] for details.
func RegisterFactory[T any](c *Container, factory any, opts ...RegisterOption) error {
	return c.RegisterFactory(reflect.TypeFor[T](), factory, opts...)
}

// releaseLifetimes removes the claims of the registrations in the Container,
// so the managers can be reused after a child Container is closed.
func (c *Container) releaseLifetimes() {
	root := c.root()
	c.registry.table.Range(func(_ Contract, reg *Registration) bool {
		lm := reg.lifetime
		if !claimable(lm) {
			return true
		}

		root.managers.Compute(lm, func(owner *Registration, loaded bool) (*Registration, bool) {
			// Keep the claim if another registration owns the manager
			return owner, !loaded || owner == reg
		})
		return true
	})
}

// claimable returns false for managers that hold no value and can be used by any number
// of registrations.
func claimable(lm LifetimeManager) bool {
	switch lm.(type) {
	case *TransientLifetimeManager, *PerResolveLifetimeManager:
		return false
	}

	return reflect.ValueOf(lm).Comparable()
}

// sameLifetimeManager returns true if a and b are the same manager.
func sameLifetimeManager(a, b LifetimeManager) bool {
	if a == nil || b == nil {
		return false
	}
	if !reflect.ValueOf(a).Comparable() || !reflect.ValueOf(b).Comparable() {
		return false
	}
	return a == b
}
