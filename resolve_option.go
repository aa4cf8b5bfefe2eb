package di

import (
	"reflect"

	"github.com/sectrean/di-engine/internal/errors"
)

// ResolveOption is a functional option for resolving values.
//
// Available options:
//   - [WithName]
//   - [WithOverrides]
type ResolveOption interface {
	applyResolveConfig(*resolveConfig) error
}

type resolveConfig struct {
	contract  Contract
	overrides []Override
}

func newResolveConfig(t reflect.Type, opts []ResolveOption) (*resolveConfig, error) {
	config := &resolveConfig{
		contract: Contract{Type: t},
	}

	var multiErr errors.MultiError
	for _, opt := range opts {
		err := opt.applyResolveConfig(config)
		multiErr = multiErr.Append(err)
	}

	return config, multiErr.Wrap("resolve options")
}

type resolveOption func(*resolveConfig) error

func (o resolveOption) applyResolveConfig(c *resolveConfig) error {
	return o(c)
}

// WithOverrides provides dependency values for a single resolve call.
//
// See [OverrideMember], [OverrideParameter], and [OverrideDependency].
func WithOverrides(overrides ...Override) ResolveOption {
	return resolveOption(func(c *resolveConfig) error {
		for _, o := range overrides {
			if o.kind == overrideInvalid {
				return errors.New("with overrides: invalid override")
			}
		}

		c.overrides = append(c.overrides, overrides...)
		return nil
	})
}
