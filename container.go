package di

import (
	"cmp"
	"context"
	"reflect"
	"slices"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/sectrean/di-engine/internal/errors"
)

// Container is a hierarchical dependency injection container.
//
// Values are resolved by looking up the registration for the requested contract in the Container
// and then its ancestors. Registrations in a child Container shadow the ones in its parent.
//
// A Container owns its children. Closing a Container closes all of its live children first,
// and then the values it is tracking for disposal in reverse order.
type Container struct {
	id          uuid.UUID
	name        string
	parent      *Container
	registry    *registry
	disposables *Disposables
	children    *xsync.MapOf[*Container, uint64]
	childSeq    atomic.Uint64
	closed      atomic.Bool

	// managers tracks the lifetime managers in use. Only set on the root Container.
	managers *xsync.MapOf[LifetimeManager, *Registration]

	diagnostics     Diagnostics
	autoRegister    bool
	defaultLifetime LifetimeManager
}

var _ Scope = (*Container)(nil)

// NewContainer creates a new root [Container] with the provided options.
//
// Available options:
//   - [ContainerName] sets the name of the Container.
//   - [WithDiagnostics] sets the [Diagnostics] sink.
//   - [WithAutoRegistration] caches registrations for unregistered types.
//   - [WithDefaultLifetime] sets the lifetime of type and factory registrations.
//   - [WithConstructor] adds a constructor to the catalog.
//   - [WithType], [WithInstance], and [WithFactory] register contracts.
//   - [WithModule] applies a group of options.
func NewContainer(opts ...ContainerOption) (*Container, error) {
	c := newContainer(nil)
	c.managers = xsync.NewMapOf[LifetimeManager, *Registration]()
	c.registerInternals()

	err := c.applyOptions(opts)
	if err != nil {
		return nil, errors.Wrap(err, "di.NewContainer")
	}

	return c, nil
}

func newContainer(parent *Container) *Container {
	c := &Container{
		id:              uuid.New(),
		parent:          parent,
		disposables:     NewDisposables(),
		children:        xsync.NewMapOf[*Container, uint64](),
		diagnostics:     NopDiagnostics{},
		defaultLifetime: NewTransientLifetimeManager(),
	}

	var parentRegistry *registry
	if parent != nil {
		parentRegistry = parent.registry
		c.diagnostics = parent.diagnostics
		c.autoRegister = parent.autoRegister
		c.defaultLifetime = parent.defaultLifetime
	}
	c.registry = newRegistry(parentRegistry)

	return c
}

func (c *Container) applyOptions(opts []ContainerOption) error {
	// Flatten any modules before sorting and applying options
	opts = flattenModules(opts)

	// Sort options by precedence
	// Use stable sort because the registration order matters
	slices.SortStableFunc(opts, func(a, b ContainerOption) int {
		return cmp.Compare(a.order(), b.order())
	})

	return applyOptions(opts, func(o ContainerOption) error {
		return o.applyContainer(c)
	})
}

// registerInternals registers the values every Container provides.
func (c *Container) registerInternals() {
	internals := []struct {
		t  reflect.Type
		fn internalFunc
	}{
		{typeContext, func(rc *ResolutionContext) any { return rc.ctx }},
		{typeScope, injectScope},
		{typeContainer, func(rc *ResolutionContext) any { return rc.container }},
	}

	for _, in := range internals {
		reg := &Registration{
			contract: Contract{Type: in.t},
			category: CategoryInternal,
			owner:    c,
			lifetime: NewTransientLifetimeManager(),
			internal: in.fn,
		}
		c.registry.register([]Contract{reg.contract}, reg)
	}
}

// NewChild creates a new child [Container].
//
// The child can resolve everything registered with its ancestors. Registrations with the child
// are isolated from the parent and sibling containers.
//
// The parent closes the child when the parent is closed. Closing the child does not affect the parent.
//
// Available options are the same as [NewContainer].
func (c *Container) NewChild(opts ...ContainerOption) (*Container, error) {
	if c.closed.Load() {
		return nil, errors.Wrap(ErrContainerClosed, "di.Container.NewChild")
	}

	child := newContainer(c)
	c.children.Store(child, c.childSeq.Add(1))

	// The parent may have started closing before the child was stored
	if c.closed.Load() {
		c.children.Delete(child)
		return nil, errors.Wrap(ErrContainerClosed, "di.Container.NewChild")
	}

	err := child.applyOptions(opts)
	if err != nil {
		c.children.Delete(child)
		return nil, errors.Wrap(err, "di.Container.NewChild")
	}

	return child, nil
}

// ID returns the unique ID of the Container.
func (c *Container) ID() uuid.UUID {
	return c.id
}

// Name returns the name set with [ContainerName].
func (c *Container) Name() string {
	return c.name
}

// Parent returns the parent Container. It is nil for a root Container.
func (c *Container) Parent() *Container {
	return c.parent
}

func (c *Container) String() string {
	if c.name != "" {
		return c.name
	}
	return "container " + c.id.String()
}

func (c *Container) root() *Container {
	root := c
	for root.parent != nil {
		root = root.parent
	}
	return root
}

func (c *Container) lookup(contract Contract) *Registration {
	return c.registry.lookup(contract)
}

func (c *Container) lifetimeScope(thread ThreadID) LifetimeScope {
	return LifetimeScope{
		Disposables: c.disposables,
		Thread:      thread,
	}
}

// canResolve probes whether the contract can be resolved without resolving it.
func (c *Container) canResolve(contract Contract) bool {
	if c.lookup(contract) != nil {
		return true
	}

	t := contract.Type
	if t.Kind() == reflect.Slice {
		return len(c.registry.chainRegistrationsOf(t.Elem())) > 0
	}

	return isConstructible(t)
}

// implicitRegistration returns a registration for a contract that was not registered.
//
// With [WithAutoRegistration] it is cached in the root Container.
func (c *Container) implicitRegistration(contract Contract) *Registration {
	root := c.root()
	newReg := func() *Registration {
		reg := newRegistration(contract, CategoryCache, root, &registrationConfig{
			lifetime: NewTransientLifetimeManager(),
		})
		reg.impl = contract.Type
		return reg
	}

	if c.autoRegister {
		return root.registry.getOrRegister(contract, newReg)
	}

	return newReg()
}

// AddConstructor adds a constructor function to the catalog of the [Container].
//
// The function must return T or (T, error). It is used to construct T whenever T is
// registered as an implementation type or resolved without a registration.
// Children of the Container can use it as well.
//
// Available options:
//   - [Preferred] marks the constructor as the one to use for T.
//   - [ParamLabels] labels the parameters for overrides.
//   - [WithParams] sets [Descriptor]s for the parameters.
//   - [WithNamed] names a dependency.
func (c *Container) AddConstructor(fn any, opts ...ConstructorOption) error {
	err := c.addConstructor(fn, opts)
	return errors.Wrapf(err, "di.Container.AddConstructor %T", fn)
}

func (c *Container) addConstructor(fn any, opts []ConstructorOption) error {
	if c.closed.Load() {
		return ErrContainerClosed
	}

	f, err := newFunction(fn)
	if err != nil {
		return err
	}

	err = applyOptions(opts, func(opt ConstructorOption) error {
		return opt.applyConstructor(f)
	})
	if err != nil {
		return err
	}

	c.registry.addConstructor(f)
	return nil
}

// Close the [Container], its live children, and the values it tracks.
//
// Children are closed first, newest first. Then values are closed in the reverse order
// they were stored. Errors returned from closing values are joined together.
//
// After Close is called, resolving, registering, and creating children fail with
// [ErrContainerClosed]. Close will return an error if called more than once.
func (c *Container) Close(ctx context.Context) error {
	if !c.closed.CompareAndSwap(false, true) {
		return errors.Wrap(ErrContainerClosed, "di.Container.Close: closed already")
	}

	type child struct {
		c   *Container
		seq uint64
	}

	var children []child
	c.children.Range(func(cc *Container, seq uint64) bool {
		children = append(children, child{cc, seq})
		return true
	})
	slices.SortFunc(children, func(a, b child) int {
		return cmp.Compare(b.seq, a.seq)
	})

	var errs errors.MultiError
	for _, ch := range children {
		err := ch.c.Close(ctx)
		if err != nil && !errors.Is(err, ErrContainerClosed) {
			errs = errs.Append(err)
		}
	}

	errs = errs.Append(c.disposables.Close(ctx))

	if c.parent != nil {
		c.releaseLifetimes()
		c.parent.children.Delete(c)
	}

	err := errs.Wrap("di.Container.Close")
	c.diagnostics.ContainerClosed(c, err)

	return err
}
