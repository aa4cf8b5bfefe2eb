package di

import (
	"github.com/sectrean/di-engine/internal/errors"
)

var (
	// ErrNotRegistered is returned when a contract is not registered and cannot be built implicitly.
	ErrNotRegistered = errors.New("not registered")
	// ErrCircularDependency is returned when a contract depends on itself.
	ErrCircularDependency = errors.New("circular dependency detected")
	// ErrContainerClosed is returned when using a Container after Close was called.
	ErrContainerClosed = errors.New("container closed")
	// ErrNoConstructor is returned when no constructor of a type can be satisfied.
	ErrNoConstructor = errors.New("no accessible constructors")
	// ErrAmbiguousConstructor is returned when more than one constructor is marked as preferred.
	ErrAmbiguousConstructor = errors.New("ambiguous constructor")
	// ErrArgumentMismatch is returned when a member is invoked with arguments it cannot accept.
	ErrArgumentMismatch = errors.New("argument mismatch")
	// ErrInvalidRegistration is returned by Register* calls with invalid arguments.
	ErrInvalidRegistration = errors.New("invalid registration")
	// ErrLifetimeManagerInUse is returned when a LifetimeManager is reused by another registration.
	ErrLifetimeManagerInUse = errors.New("lifetime manager already in use")
	// ErrNoMember is returned when an injection member cannot be found on the target type.
	ErrNoMember = errors.New("member not found")
)

// ResolutionError is returned when resolving a [Contract] fails.
//
// The cause is kept in the chain so [errors.Is] and [errors.As] can be used to inspect it.
type ResolutionError struct {
	Contract Contract
	Err      error
}

func (e *ResolutionError) Error() string {
	return "resolve " + e.Contract.String() + ": " + e.Err.Error()
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
