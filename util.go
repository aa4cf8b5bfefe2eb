package di

import (
	"context"
	"reflect"

	"github.com/sectrean/di-engine/internal/errors"
)

// These are commonly used types.
var (
	typeError     = reflect.TypeFor[error]()
	typeContext   = reflect.TypeFor[context.Context]()
	typeScope     = reflect.TypeFor[Scope]()
	typeContainer = reflect.TypeFor[*Container]()
)

func safeReflectValue(t reflect.Type, val any) reflect.Value {
	if val == nil {
		return reflect.Zero(t)
	}

	return reflect.ValueOf(val)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// isConstructible returns true for types the Container can build without a registration.
func isConstructible(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Struct:
		return true
	case reflect.Ptr:
		return t.Elem().Kind() == reflect.Struct
	default:
		return false
	}
}

// Apply functional options and join any errors together.
func applyOptions[O any](opts []O, f func(O) error) error {
	var errs errors.MultiError

	for _, o := range opts {
		errs = errs.Append(f(o))
	}

	return errs.Join()
}
