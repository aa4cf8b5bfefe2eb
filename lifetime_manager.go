package di

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// valueSlot stores one value and serializes building it.
type valueSlot struct {
	mu   sync.Mutex
	held atomic.Bool
	val  atomic.Pointer[boxedValue]
}

type boxedValue struct {
	v any
}

func (s *valueSlot) load() any {
	if b := s.val.Load(); b != nil {
		return b.v
	}
	return NoValue
}

// acquire returns the stored value, or NoValue with the build lock held.
func (s *valueSlot) acquire() any {
	if v := s.load(); v != NoValue {
		return v
	}

	s.mu.Lock()

	// Another goroutine may have stored the value while we were waiting
	if v := s.load(); v != NoValue {
		s.mu.Unlock()
		return v
	}

	s.held.Store(true)
	return NoValue
}

func (s *valueSlot) store(v any) {
	s.val.Store(&boxedValue{v: v})
	s.release()
}

func (s *valueSlot) release() {
	if s.held.CompareAndSwap(true, false) {
		s.mu.Unlock()
	}
}

func (s *valueSlot) clear() {
	s.val.Store(nil)
}

// TransientLifetimeManager never stores a value.
type TransientLifetimeManager struct{}

// NewTransientLifetimeManager returns a manager for the [Transient] lifetime.
func NewTransientLifetimeManager() *TransientLifetimeManager {
	return &TransientLifetimeManager{}
}

func (*TransientLifetimeManager) GetValue(LifetimeScope) any    { return NoValue }
func (*TransientLifetimeManager) TryGetValue(LifetimeScope) any { return NoValue }
func (*TransientLifetimeManager) SetValue(any, LifetimeScope)   {}
func (*TransientLifetimeManager) RemoveValue(LifetimeScope)     {}
func (*TransientLifetimeManager) Clone() LifetimeManager        { return NewTransientLifetimeManager() }
func (*TransientLifetimeManager) String() string                { return Transient.String() }

// ContainerControlledLifetimeManager stores a single value shared by the registering
// Container and all of its descendants.
type ContainerControlledLifetimeManager struct {
	slot valueSlot
}

// NewContainerControlledLifetimeManager returns a manager for the [Singleton] lifetime.
func NewContainerControlledLifetimeManager() *ContainerControlledLifetimeManager {
	return &ContainerControlledLifetimeManager{}
}

func (m *ContainerControlledLifetimeManager) GetValue(LifetimeScope) any {
	return m.slot.acquire()
}

func (m *ContainerControlledLifetimeManager) TryGetValue(LifetimeScope) any {
	return m.slot.load()
}

func (m *ContainerControlledLifetimeManager) SetValue(val any, scope LifetimeScope) {
	m.slot.store(val)
	scope.track(val)
}

func (m *ContainerControlledLifetimeManager) RemoveValue(LifetimeScope) {
	m.slot.clear()
}

func (m *ContainerControlledLifetimeManager) Recover(LifetimeScope) {
	m.slot.release()
}

func (*ContainerControlledLifetimeManager) Clone() LifetimeManager {
	return NewContainerControlledLifetimeManager()
}

func (*ContainerControlledLifetimeManager) String() string {
	return Singleton.String()
}

// HierarchicalLifetimeManager stores one value per Container.
//
// A value stored for one Container is not visible to its parent, children, or siblings.
// The slot for a Container is dropped when that Container is closed.
type HierarchicalLifetimeManager struct {
	slots *xsync.MapOf[*Disposables, *valueSlot]
}

// NewHierarchicalLifetimeManager returns a manager for the [Hierarchical] lifetime.
func NewHierarchicalLifetimeManager() *HierarchicalLifetimeManager {
	return &HierarchicalLifetimeManager{
		slots: xsync.NewMapOf[*Disposables, *valueSlot](),
	}
}

func (m *HierarchicalLifetimeManager) slotFor(scope LifetimeScope) *valueSlot {
	slot, loaded := m.slots.LoadOrCompute(scope.Disposables, func() *valueSlot {
		return &valueSlot{}
	})

	if !loaded && scope.Disposables != nil {
		d := scope.Disposables
		d.addFunc(func(context.Context) error {
			m.slots.Delete(d)
			return nil
		})
	}

	return slot
}

func (m *HierarchicalLifetimeManager) GetValue(scope LifetimeScope) any {
	return m.slotFor(scope).acquire()
}

func (m *HierarchicalLifetimeManager) TryGetValue(scope LifetimeScope) any {
	if slot, ok := m.slots.Load(scope.Disposables); ok {
		return slot.load()
	}
	return NoValue
}

func (m *HierarchicalLifetimeManager) SetValue(val any, scope LifetimeScope) {
	m.slotFor(scope).store(val)
	scope.track(val)
}

func (m *HierarchicalLifetimeManager) RemoveValue(scope LifetimeScope) {
	if slot, ok := m.slots.Load(scope.Disposables); ok {
		slot.clear()
	}
}

func (m *HierarchicalLifetimeManager) Recover(scope LifetimeScope) {
	if slot, ok := m.slots.Load(scope.Disposables); ok {
		slot.release()
	}
}

func (*HierarchicalLifetimeManager) Clone() LifetimeManager {
	return NewHierarchicalLifetimeManager()
}

func (*HierarchicalLifetimeManager) String() string {
	return Hierarchical.String()
}

// PerThreadLifetimeManager stores one value per [ThreadID].
//
// Goroutines that carry the same ThreadID share the value, and only one of them builds it.
// Values are closed with the Container that resolved them. Values for threads that are no
// longer used are not closed any earlier.
type PerThreadLifetimeManager struct {
	slots *xsync.MapOf[ThreadID, *valueSlot]
}

// NewPerThreadLifetimeManager returns a manager for the [PerThread] lifetime.
func NewPerThreadLifetimeManager() *PerThreadLifetimeManager {
	return &PerThreadLifetimeManager{
		slots: xsync.NewMapOf[ThreadID, *valueSlot](),
	}
}

func (m *PerThreadLifetimeManager) slotFor(scope LifetimeScope) *valueSlot {
	slot, _ := m.slots.LoadOrCompute(scope.Thread, func() *valueSlot {
		return &valueSlot{}
	})
	return slot
}

func (m *PerThreadLifetimeManager) GetValue(scope LifetimeScope) any {
	return m.slotFor(scope).acquire()
}

func (m *PerThreadLifetimeManager) TryGetValue(scope LifetimeScope) any {
	if slot, ok := m.slots.Load(scope.Thread); ok {
		return slot.load()
	}
	return NoValue
}

func (m *PerThreadLifetimeManager) SetValue(val any, scope LifetimeScope) {
	m.slotFor(scope).store(val)
	scope.track(val)
}

func (m *PerThreadLifetimeManager) RemoveValue(scope LifetimeScope) {
	if slot, ok := m.slots.Load(scope.Thread); ok {
		slot.clear()
	}
}

func (m *PerThreadLifetimeManager) Recover(scope LifetimeScope) {
	if slot, ok := m.slots.Load(scope.Thread); ok {
		slot.release()
	}
}

func (*PerThreadLifetimeManager) Clone() LifetimeManager {
	return NewPerThreadLifetimeManager()
}

func (*PerThreadLifetimeManager) String() string {
	return PerThread.String()
}

// PerResolveLifetimeManager does not store values itself.
// The value is kept by the [ResolutionContext] of a single Resolve call.
type PerResolveLifetimeManager struct{}

// NewPerResolveLifetimeManager returns a manager for the [PerResolve] lifetime.
func NewPerResolveLifetimeManager() *PerResolveLifetimeManager {
	return &PerResolveLifetimeManager{}
}

func (*PerResolveLifetimeManager) GetValue(LifetimeScope) any    { return NoValue }
func (*PerResolveLifetimeManager) TryGetValue(LifetimeScope) any { return NoValue }
func (*PerResolveLifetimeManager) RemoveValue(LifetimeScope)     {}
func (*PerResolveLifetimeManager) Clone() LifetimeManager        { return NewPerResolveLifetimeManager() }
func (*PerResolveLifetimeManager) String() string                { return PerResolve.String() }

func (*PerResolveLifetimeManager) SetValue(val any, scope LifetimeScope) {
	scope.track(val)
}

// ExternallyControlledLifetimeManager keeps a weak reference to the value.
//
// The value is never closed by the Container. Once the value is garbage collected,
// the manager reports [NoValue] and the registration builds a new one.
type ExternallyControlledLifetimeManager struct {
	ref atomic.Pointer[weakRef]
}

// NewExternallyControlledLifetimeManager returns a manager for the [External] lifetime.
func NewExternallyControlledLifetimeManager() *ExternallyControlledLifetimeManager {
	return &ExternallyControlledLifetimeManager{}
}

func (m *ExternallyControlledLifetimeManager) GetValue(scope LifetimeScope) any {
	return m.TryGetValue(scope)
}

func (m *ExternallyControlledLifetimeManager) TryGetValue(LifetimeScope) any {
	if ref := m.ref.Load(); ref != nil {
		return ref.value()
	}
	return NoValue
}

func (m *ExternallyControlledLifetimeManager) SetValue(val any, _ LifetimeScope) {
	ref := makeWeakRef(val)
	m.ref.Store(&ref)
}

func (m *ExternallyControlledLifetimeManager) RemoveValue(LifetimeScope) {
	m.ref.Store(nil)
}

func (*ExternallyControlledLifetimeManager) Clone() LifetimeManager {
	return NewExternallyControlledLifetimeManager()
}

func (*ExternallyControlledLifetimeManager) String() string {
	return External.String()
}

var (
	_ LifetimeManager             = (*TransientLifetimeManager)(nil)
	_ SynchronizedLifetimeManager = (*ContainerControlledLifetimeManager)(nil)
	_ SynchronizedLifetimeManager = (*HierarchicalLifetimeManager)(nil)
	_ SynchronizedLifetimeManager = (*PerThreadLifetimeManager)(nil)
	_ LifetimeManager             = (*PerResolveLifetimeManager)(nil)
	_ LifetimeManager             = (*ExternallyControlledLifetimeManager)(nil)
)
