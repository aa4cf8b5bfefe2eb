package di

import (
	"fmt"
	"reflect"
)

// DescriptorKind determines how a [Descriptor] produces a value.
type DescriptorKind uint8

const (
	// DescriptorDynamic resolves the dependency contract from the Container.
	DescriptorDynamic DescriptorKind = iota
	// DescriptorValue uses a fixed value.
	DescriptorValue
	// DescriptorResolver calls a [ResolveFunc].
	DescriptorResolver
	// DescriptorResolverFactory creates a [ResolveFunc] for the dependency and calls it.
	DescriptorResolverFactory
)

func (k DescriptorKind) String() string {
	switch k {
	case DescriptorDynamic:
		return "Dynamic"
	case DescriptorValue:
		return "Value"
	case DescriptorResolver:
		return "Resolver"
	case DescriptorResolverFactory:
		return "ResolverFactory"
	default:
		return fmt.Sprintf("Unknown DescriptorKind %d", k)
	}
}

// ResolveFunc produces a dependency value during resolution.
type ResolveFunc func(rc *ResolutionContext) (any, error)

// ResolverFactory creates a [ResolveFunc] for a specific dependency.
type ResolverFactory func(info DependencyInfo) ResolveFunc

// DependencyInfo describes a single dependency of a constructor, field, or method.
type DependencyInfo struct {
	// Declaring is the type that declares the member.
	Declaring reflect.Type
	// Member is the name of the constructor function, field, or method.
	Member string
	// Index is the parameter index. It is -1 for fields.
	Index int
	// Label is the parameter label or field name used to match overrides.
	Label string
	// Contract is the dependency that will be resolved if nothing else provides a value.
	Contract Contract
}

func (i DependencyInfo) String() string {
	if i.Index < 0 {
		return fmt.Sprintf("field %s", i.Member)
	}
	if i.Label != "" {
		return fmt.Sprintf("%s parameter %d (%s)", i.Member, i.Index, i.Label)
	}
	return fmt.Sprintf("%s parameter %d", i.Member, i.Index)
}

// Descriptor tells the Container how to provide a single dependency.
//
// The zero Descriptor resolves the dependency by the type of the parameter or field.
type Descriptor struct {
	Kind DescriptorKind

	// Contract overrides the contract to resolve. If it is zero, the parameter or field
	// type is used.
	Contract Contract

	// AllowDefault uses Default if the contract cannot be resolved.
	AllowDefault bool
	Default      any

	Value    any
	Resolver ResolveFunc
	Factory  ResolverFactory

	// Label names the parameter so it can be matched by [OverrideParameter] and [OverrideMember].
	Label string
}

// Dependency returns a [Descriptor] that resolves type T with an optional name.
func Dependency[T any](name ...string) Descriptor {
	return Descriptor{Contract: ContractOf[T](name...)}
}

// DependencyOf returns a [Descriptor] that resolves the given type and name.
func DependencyOf(t reflect.Type, name string) Descriptor {
	return Descriptor{Contract: Contract{Type: t, Name: name}}
}

// Named returns a [Descriptor] that resolves the parameter or field type with the given name.
func Named(name string) Descriptor {
	return Descriptor{Contract: Contract{Name: name}}
}

// Optional returns a [Descriptor] that resolves type T, or uses def if T cannot be resolved.
func Optional[T any](def T, name ...string) Descriptor {
	return Descriptor{
		Contract:     ContractOf[T](name...),
		AllowDefault: true,
		Default:      def,
	}
}

// Value returns a [Descriptor] that always provides v.
func Value(v any) Descriptor {
	return Descriptor{Kind: DescriptorValue, Value: v}
}

// Resolver returns a [Descriptor] that calls fn to provide the value.
func Resolver(fn ResolveFunc) Descriptor {
	return Descriptor{Kind: DescriptorResolver, Resolver: fn}
}

// ResolverFactoryOf returns a [Descriptor] that calls f to create a [ResolveFunc] for the dependency.
func ResolverFactoryOf(f ResolverFactory) Descriptor {
	return Descriptor{Kind: DescriptorResolverFactory, Factory: f}
}

// Labeled returns a copy of the Descriptor with a label.
func (d Descriptor) Labeled(label string) Descriptor {
	d.Label = label
	return d
}

func (d Descriptor) contractFor(t reflect.Type) Contract {
	if d.Contract.IsZero() {
		return Contract{Type: t, Name: d.Contract.Name}
	}
	return d.Contract
}

// isSatisfied returns true if the Descriptor can provide a value without resolving anything.
func (d Descriptor) isSatisfied() bool {
	return d.Kind != DescriptorDynamic || d.AllowDefault
}

func (d Descriptor) String() string {
	switch d.Kind {
	case DescriptorDynamic:
		if d.Contract.IsZero() {
			return "Dynamic"
		}
		return "Dynamic " + d.Contract.String()
	case DescriptorValue:
		return fmt.Sprintf("Value %v", d.Value)
	default:
		return d.Kind.String()
	}
}
