package di

import (
	"reflect"
)

type overrideKind uint8

// Override kinds in ascending priority.
const (
	overrideInvalid overrideKind = iota
	overrideDependency
	overrideParameter
	overrideMember
)

// Override provides a value for matching dependencies during a single resolve call.
// Use it with [WithOverrides].
//
// The value can be:
//   - a [ResolverFactory], called with the [DependencyInfo] to create a [ResolveFunc]
//   - a [ResolveFunc], called with the [ResolutionContext]
//   - any other value, used as is
//
// When several overrides match a dependency, member overrides win over parameter overrides,
// which win over dependency overrides. Within the same kind the last override wins.
type Override struct {
	kind      overrideKind
	declaring reflect.Type
	label     string
	dep       Contract
	matchName bool
	value     any
}

// OverrideMember overrides the parameter or field with the given label on the declaring type.
//
// Fields are labeled with their name. Parameters are labeled with [ParamLabels] or
// [Descriptor.Labeled].
func OverrideMember(declaring reflect.Type, label string, value any) Override {
	return Override{
		kind:      overrideMember,
		declaring: declaring,
		label:     label,
		value:     value,
	}
}

// OverrideParameter overrides every parameter or field with the given label.
// An empty label matches nothing.
func OverrideParameter(label string, value any) Override {
	return Override{
		kind:  overrideParameter,
		label: label,
		value: value,
	}
}

// OverrideDependency overrides every dependency of type t.
// If a name is provided, only dependencies with that name are matched.
func OverrideDependency(t reflect.Type, value any, name ...string) Override {
	o := Override{
		kind:  overrideDependency,
		dep:   Contract{Type: t},
		value: value,
	}
	if len(name) > 0 {
		o.dep.Name = name[0]
		o.matchName = true
	}
	return o
}

// OverrideDependencyFor overrides every dependency of type T.
// If a name is provided, only dependencies with that name are matched.
func OverrideDependencyFor[T any](value any, name ...string) Override {
	return OverrideDependency(reflect.TypeFor[T](), value, name...)
}

func (o Override) matches(info DependencyInfo) bool {
	switch o.kind {
	case overrideMember:
		return o.label != "" && info.Label == o.label && sameType(info.Declaring, o.declaring)
	case overrideParameter:
		return o.label != "" && info.Label == o.label
	case overrideDependency:
		if o.matchName && info.Contract.Name != o.dep.Name {
			return false
		}
		return info.Contract.Type == o.dep.Type
	default:
		return false
	}
}

// sameType compares types ignoring one level of pointer indirection.
func sameType(a, b reflect.Type) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Kind() == reflect.Ptr {
		a = a.Elem()
	}
	if b.Kind() == reflect.Ptr {
		b = b.Elem()
	}
	return a == b
}

// findOverride returns the value of the override with the highest priority that matches.
func findOverride(overrides []Override, info DependencyInfo) (any, bool) {
	best := -1
	for i, o := range overrides {
		if !o.matches(info) {
			continue
		}
		if best < 0 || o.kind >= overrides[best].kind {
			best = i
		}
	}

	if best < 0 {
		return nil, false
	}
	return overrides[best].value, true
}

// resolvePayload produces a value from an override payload.
func (rc *ResolutionContext) resolvePayload(payload any, info DependencyInfo) (any, error) {
	switch p := payload.(type) {
	case ResolverFactory:
		return rc.callResolver(p(info))
	case func(DependencyInfo) ResolveFunc:
		return rc.callResolver(p(info))
	case ResolveFunc:
		return rc.callResolver(p)
	case func(*ResolutionContext) (any, error):
		return rc.callResolver(p)
	default:
		return p, nil
	}
}

func (rc *ResolutionContext) callResolver(fn ResolveFunc) (any, error) {
	if fn == nil {
		return nil, nil
	}
	return fn(rc)
}
