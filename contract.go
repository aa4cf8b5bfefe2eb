package di

import (
	"fmt"
	"reflect"
)

// Contract identifies a registration slot: the requested type plus an optional name.
//
// Unnamed registrations use an empty Name.
type Contract struct {
	Type reflect.Type
	Name string
}

// ContractOf returns the [Contract] for type T with an optional name.
func ContractOf[T any](name ...string) Contract {
	c := Contract{Type: reflect.TypeFor[T]()}
	if len(name) > 0 {
		c.Name = name[0]
	}
	return c
}

// IsZero returns true if the Contract has no type.
func (c Contract) IsZero() bool {
	return c.Type == nil
}

func (c Contract) String() string {
	if c.Type == nil {
		return "<nil>"
	}
	if c.Name == "" {
		return c.Type.String()
	}
	return fmt.Sprintf("%s (Name %q)", c.Type, c.Name)
}

func (c Contract) withType(t reflect.Type) Contract {
	return Contract{Type: t, Name: c.Name}
}
