package di

import (
	"context"
	"reflect"

	"github.com/sectrean/di-engine/internal/errors"
)

// Invoke calls the given function with parameters resolved from the provided Scope.
//
// The function may take any number of parameters which will be resolved from the Scope,
// and may return any number of results.
// An [error] return parameter will be passed along and any other return parameters are ignored.
//
// Available options:
//   - [WithNamed] specifies the name of a dependency.
func Invoke(ctx context.Context, s Scope, fn any, opts ...InvokeOption) error {
	fnType := reflect.TypeOf(fn)
	if fnType == nil || fnType.Kind() != reflect.Func {
		return errors.Errorf("di.Invoke %T: fn must be a function", fn)
	}

	f := &function{
		fn:     reflect.ValueOf(fn),
		t:      fnType,
		name:   fnType.String(),
		params: make([]Descriptor, fnType.NumIn()),
		errOut: -1,
	}

	// Create a config struct so we can apply options
	config := &invokeConfig{fn: f}
	err := applyOptions(opts, func(opt InvokeOption) error {
		return opt.applyInvokeConfig(config)
	})
	if err != nil {
		return errors.Wrapf(err, "di.Invoke %T", fn)
	}

	// Resolve the parameters from the Scope
	in := make([]reflect.Value, fnType.NumIn())
	for i := range in {
		pt := fnType.In(i)
		contract := f.params[i].contractFor(pt)

		var val any
		switch {
		case contract.Type == typeContext:
			val = ctx
		case contract.Type == typeScope:
			val = s
		default:
			var opts []ResolveOption
			if contract.Name != "" {
				opts = append(opts, WithName(contract.Name))
			}

			val, err = s.Resolve(ctx, pt, opts...)
			if err != nil {
				// Stop at the first error
				return errors.Wrapf(err, "di.Invoke %T", fn)
			}
		}

		in[i] = safeReflectValue(pt, val)
	}

	// Check for a context error before we invoke the function
	if ctx.Err() != nil {
		return errors.Wrapf(ctx.Err(), "di.Invoke %T", fn)
	}

	out, err := callFunc(f.fn, in, fnType.IsVariadic())
	if err != nil {
		return errors.Wrapf(err, "di.Invoke %T", fn)
	}

	// Return the first error return value, if any.
	// Don't wrap the error, return it as-is.
	for i := range fnType.NumOut() {
		if fnType.Out(i) == typeError {
			err, _ := out[i].Interface().(error)
			return err
		}
	}

	return nil
}

// InvokeOption is used to configure the behavior of [Invoke].
//
// Available options:
//   - [WithNamed]
type InvokeOption interface {
	applyInvokeConfig(*invokeConfig) error
}

type invokeConfig struct {
	fn *function
}
