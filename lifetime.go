package di

import (
	"fmt"

	"github.com/sectrean/di-engine/internal/errors"
)

// Lifetime specifies how long a resolved value lives.
//
// A Lifetime can be used directly as a [RegisterOption]. Each registration gets its own
// [LifetimeManager] for the Lifetime.
//
// Available lifetimes:
//   - [Transient] creates a new value every time it is resolved.
//   - [Singleton] creates one value shared by the Container and all of its children.
//   - [Hierarchical] creates one value per Container that resolves it.
//   - [PerThread] creates one value per [ThreadID].
//   - [PerResolve] creates one value per call to Resolve.
//   - [External] holds a weak reference and never closes the value.
type Lifetime uint8

const (
	// Transient specifies that a value is created each time it is resolved.
	//
	// This is the default lifetime for type and factory registrations.
	Transient Lifetime = iota

	// Singleton specifies that a value is created once and shared with all child Containers.
	//
	// This is the default lifetime for instance registrations.
	Singleton

	// Hierarchical specifies that a value is created once per Container.
	Hierarchical

	// PerThread specifies that a value is created once per [ThreadID].
	PerThread

	// PerResolve specifies that a value is shared within a single object graph.
	PerResolve

	// External specifies that the Container keeps only a weak reference to the value
	// and does not close it.
	External
)

// Scoped is an alias for [Hierarchical].
const Scoped = Hierarchical

func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "Transient"
	case Singleton:
		return "Singleton"
	case Hierarchical:
		return "Hierarchical"
	case PerThread:
		return "PerThread"
	case PerResolve:
		return "PerResolve"
	case External:
		return "External"
	default:
		return fmt.Sprintf("Unknown Lifetime %d", l)
	}
}

// Manager returns a new [LifetimeManager] for the Lifetime.
func (l Lifetime) Manager() LifetimeManager {
	switch l {
	case Singleton:
		return NewContainerControlledLifetimeManager()
	case Hierarchical:
		return NewHierarchicalLifetimeManager()
	case PerThread:
		return NewPerThreadLifetimeManager()
	case PerResolve:
		return NewPerResolveLifetimeManager()
	case External:
		return NewExternallyControlledLifetimeManager()
	default:
		return NewTransientLifetimeManager()
	}
}

func (l Lifetime) applyRegistration(c *registrationConfig) error {
	if l > External {
		return errors.Errorf("invalid lifetime: %s", l)
	}

	c.lifetime = l.Manager()
	c.sharedLifetime = false
	return nil
}

var _ RegisterOption = Singleton

// NoValue is returned by a [LifetimeManager] when it does not hold a value.
//
// It is distinct from nil so a registration can produce a nil value.
var NoValue any = &noValue{}

type noValue struct {
	_ int
}

func (*noValue) String() string {
	return "NoValue"
}

// LifetimeScope tells a [LifetimeManager] where a value is stored and who disposes it.
type LifetimeScope struct {
	// Disposables is the collection of the Container the value belongs to.
	Disposables *Disposables

	// Thread is the calling thread, taken from the resolve [context.Context].
	Thread ThreadID
}

func (s LifetimeScope) track(val any) {
	if s.Disposables != nil {
		s.Disposables.Add(val)
	}
}

// LifetimeManager controls how a registration stores, returns, and disposes its value.
//
// Custom lifetime managers can be used with [WithLifetimeManager].
type LifetimeManager interface {
	// GetValue returns the stored value or [NoValue].
	//
	// Synchronized managers hold their build lock when returning NoValue. The caller must
	// then call SetValue or Recover.
	GetValue(scope LifetimeScope) any

	// TryGetValue returns the stored value or [NoValue] without blocking.
	TryGetValue(scope LifetimeScope) any

	// SetValue stores a value and tracks it for disposal.
	SetValue(val any, scope LifetimeScope)

	// RemoveValue discards the stored value.
	RemoveValue(scope LifetimeScope)

	// Clone returns a new manager of the same kind that does not hold a value.
	Clone() LifetimeManager
}

// SynchronizedLifetimeManager is a [LifetimeManager] that makes sure a value is only
// built once when it is resolved concurrently.
type SynchronizedLifetimeManager interface {
	LifetimeManager

	// Recover releases the build lock without storing a value.
	// Waiting callers will try to build the value themselves.
	Recover(scope LifetimeScope)
}
