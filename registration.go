package di

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// Category determines how a [Registration] produces its value.
type Category uint8

const (
	// CategoryUninitialized is the zero Category.
	CategoryUninitialized Category = iota
	// CategoryType constructs an implementation type.
	CategoryType
	// CategoryInstance returns a registered value.
	CategoryInstance
	// CategoryFactory calls a factory function.
	CategoryFactory
	// CategoryInternal provides a value built into the Container, like the [Scope].
	CategoryInternal
	// CategoryCache constructs a type that was resolved without being registered.
	CategoryCache
)

func (c Category) String() string {
	switch c {
	case CategoryUninitialized:
		return "Uninitialized"
	case CategoryType:
		return "Type"
	case CategoryInstance:
		return "Instance"
	case CategoryFactory:
		return "Factory"
	case CategoryInternal:
		return "Internal"
	case CategoryCache:
		return "Cache"
	default:
		return fmt.Sprintf("Unknown Category %d", c)
	}
}

// FactoryFunc creates a value using the [ResolutionContext] directly.
type FactoryFunc func(rc *ResolutionContext) (any, error)

// internalFunc provides a built-in value.
type internalFunc func(rc *ResolutionContext) any

// Registration associates a [Contract] with the way its value is built and how long it lives.
//
// A Registration is created by the Register methods and lives as long as the Container
// it was registered with. Its pipeline is built on first use and cached.
type Registration struct {
	contract Contract
	aliases  []Contract
	category Category
	lifetime LifetimeManager
	owner    *Container
	seq      uint64

	// valueType is the type of the values the registration produces
	valueType reflect.Type

	// Category specific data
	impl     reflect.Type
	instance any
	ctor     *function
	factory  FactoryFunc
	internal internalFunc

	props    []propertyMember
	methods  []methodMember
	depNames []dependencyName

	mu      sync.Mutex
	pipe    atomic.Pointer[Pipeline]
	buildUp atomic.Pointer[cachedBuildUp]
}

func newRegistration(
	contract Contract,
	category Category,
	owner *Container,
	cfg *registrationConfig,
) *Registration {
	reg := &Registration{
		contract: contract,
		category: category,
		owner:    owner,
		lifetime: cfg.lifetime,
		ctor:     cfg.ctor,
		props:    cfg.props,
		methods:  cfg.methods,
		depNames: cfg.depNames,
	}

	for _, alias := range cfg.aliases {
		if alias != contract.Type {
			reg.aliases = append(reg.aliases, contract.withType(alias))
		}
	}

	return reg
}

// Contract returns the primary contract of the Registration.
func (r *Registration) Contract() Contract {
	return r.contract
}

// Contracts returns the primary contract followed by any aliases.
func (r *Registration) Contracts() []Contract {
	return append([]Contract{r.contract}, r.aliases...)
}

// Category returns how the Registration produces its value.
func (r *Registration) Category() Category {
	return r.category
}

// Data returns the category specific payload: the implementation [reflect.Type],
// the registered instance, or the factory.
func (r *Registration) Data() any {
	switch r.category {
	case CategoryType, CategoryCache:
		return r.impl
	case CategoryInstance:
		return r.instance
	case CategoryFactory:
		if r.factory != nil {
			return r.factory
		}
		return r.ctor.fn.Interface()
	default:
		return nil
	}
}

// LifetimeManager returns the lifetime manager of the Registration.
func (r *Registration) LifetimeManager() LifetimeManager {
	return r.lifetime
}

// Owner returns the Container the Registration was registered with.
func (r *Registration) Owner() *Container {
	return r.owner
}

// isContainerControlled returns true if values are stored in the owning Container.
// Their dependencies are resolved from the owner as well.
func (r *Registration) isContainerControlled() bool {
	_, ok := r.lifetime.(*ContainerControlledLifetimeManager)
	return ok
}

func (r *Registration) String() string {
	switch r.category {
	case CategoryType, CategoryCache:
		if r.impl != r.contract.Type {
			return fmt.Sprintf("%s %s -> %s (%s)", r.category, r.contract, r.impl, r.lifetime)
		}
	}

	return fmt.Sprintf("%s %s (%s)", r.category, r.contract, r.lifetime)
}

type dependencyName struct {
	t    reflect.Type
	name string
}

// registrationConfig collects [RegisterOption]s before a Registration is created.
type registrationConfig struct {
	name           string
	lifetime       LifetimeManager
	sharedLifetime bool
	aliases        []reflect.Type
	ctor           *function
	props          []propertyMember
	methods        []methodMember
	depNames       []dependencyName
}

func newRegistrationConfig(defaultLifetime LifetimeManager, opts []RegisterOption) (*registrationConfig, error) {
	cfg := &registrationConfig{}

	err := applyOptions(opts, func(opt RegisterOption) error {
		return opt.applyRegistration(cfg)
	})
	if err != nil {
		return nil, err
	}

	if cfg.lifetime == nil {
		cfg.lifetime = defaultLifetime
	}

	return cfg, nil
}
