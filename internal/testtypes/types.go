// Package testtypes holds the types the tests register and resolve.
//
// Each interface has a different Close signature so every closer adapter gets used.
// The structs keep their dependencies, so they are never zero-size and two values
// never share an address.
package testtypes

import (
	"context"
	"reflect"
)

var (
	TypeStructAPtr = reflect.TypeFor[*StructA]()
	TypeInterfaceA = reflect.TypeFor[InterfaceA]()

	TypeStructBPtr = reflect.TypeFor[*StructB]()
	TypeInterfaceB = reflect.TypeFor[InterfaceB]()

	TypeStructCPtr = reflect.TypeFor[*StructC]()
	TypeInterfaceC = reflect.TypeFor[InterfaceC]()

	TypeStructDPtr = reflect.TypeFor[*StructD]()
	TypeInterfaceD = reflect.TypeFor[InterfaceD]()
)

type InterfaceA interface {
	A()
	Close(context.Context) error
}

type InterfaceB interface {
	B()
	Close(context.Context)
}

type InterfaceC interface {
	C()
	Close() error
}

type InterfaceD interface {
	D()
	Close()
}

// StructA has no dependencies. Tag tells values apart.
type StructA struct {
	Tag any
}

func (StructA) A()                          {}
func (StructA) Close(context.Context) error { return nil }

type StructB struct {
	A InterfaceA
}

func (StructB) B()                    {}
func (StructB) Close(context.Context) {}

type StructC struct {
	A InterfaceA
	B InterfaceB
}

func (StructC) C()           {}
func (StructC) Close() error { return nil }

type StructD struct {
	A InterfaceA
	B InterfaceB
	C InterfaceC
}

func (StructD) D()     {}
func (StructD) Close() {}

func NewInterfaceA() InterfaceA {
	return &StructA{}
}

// NewInterfaceAStruct returns a value instead of a pointer.
func NewInterfaceAStruct() InterfaceA {
	return StructA{}
}

func NewStructAPtr() *StructA {
	return &StructA{}
}

func NewInterfaceB(a InterfaceA) InterfaceB {
	return &StructB{A: a}
}

func NewStructBPtr(a *StructA) *StructB {
	return &StructB{A: a}
}

func NewInterfaceC(a InterfaceA, b InterfaceB) InterfaceC {
	return &StructC{A: a, B: b}
}

func NewStructCPtr(a *StructA, b *StructB) *StructC {
	return &StructC{A: a, B: b}
}

func NewInterfaceD(a InterfaceA, b InterfaceB, c InterfaceC) InterfaceD {
	return &StructD{A: a, B: b, C: c}
}

func NewStructDPtr(a *StructA, b *StructB, c *StructC) *StructD {
	return &StructD{A: a, B: b, C: c}
}
