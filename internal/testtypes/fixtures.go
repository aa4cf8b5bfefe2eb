package testtypes

import (
	"context"
	"errors"
	"sync"
)

// CycleA and CycleB depend on each other.
type CycleA struct {
	B *CycleB `di:""`
}

type CycleB struct {
	A *CycleA `di:""`
}

func NewCycleA(b *CycleB) *CycleA {
	return &CycleA{B: b}
}

func NewCycleB(a *CycleA) *CycleB {
	return &CycleB{A: a}
}

// Multi has several constructors with different dependencies.
type Multi struct {
	A   InterfaceA
	B   InterfaceB
	Via string
}

func NewMulti() *Multi {
	return &Multi{Via: "none"}
}

func NewMultiA(a InterfaceA) *Multi {
	return &Multi{A: a, Via: "a"}
}

func NewMultiAB(a InterfaceA, b InterfaceB) *Multi {
	return &Multi{A: a, B: b, Via: "ab"}
}

// NewMultiOut has a pointer to a basic kind, so it ranks below constructors with the same arity.
func NewMultiOut(a InterfaceA, out *int) *Multi {
	return &Multi{A: a, Via: "out"}
}

// Tagged has fields injected from struct tags.
type Tagged struct {
	A        InterfaceA `di:""`
	B        InterfaceB `di:"optional"`
	Primary  InterfaceA `di:"name=primary"`
	Skipped  InterfaceA `di:"-"`
	Untagged InterfaceA
}

// BadTag has an unknown tag option.
type BadTag struct {
	A InterfaceA `di:"required"`
}

// Initialized has injection methods.
type Initialized struct {
	A     InterfaceA
	Calls int
}

func (i *Initialized) Init(a InterfaceA) {
	i.A = a
	i.Calls++
}

func (i *Initialized) Fail() error {
	return errors.New("init failed")
}

// Labeled has a constructor with parameters that can be labeled.
type Labeled struct {
	Name  string
	Count int
}

func NewLabeled(name string, count int) *Labeled {
	return &Labeled{Name: name, Count: count}
}

// Variadic takes any number of InterfaceA.
type Variadic struct {
	All []InterfaceA
}

func NewVariadic(all ...InterfaceA) *Variadic {
	return &Variadic{All: all}
}

// ScopeHolder stores the Scope-like value it is constructed with.
type ScopeHolder struct {
	Scope any
}

// Recorder records the order values are closed in.
type Recorder struct {
	mu     sync.Mutex
	closed []string
}

func (r *Recorder) Closed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.closed...)
}

func (r *Recorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = append(r.closed, name)
}

// Closable reports to its Recorder when it is closed.
type Closable struct {
	Name string
	Rec  *Recorder
	Err  error
}

func (c *Closable) Close(context.Context) error {
	c.Rec.record(c.Name)
	return c.Err
}
