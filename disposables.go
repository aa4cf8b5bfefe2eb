package di

import (
	"context"
	"reflect"
	"sync"

	"github.com/sectrean/di-engine/internal/errors"
)

// Disposables tracks values that must be closed when a Container is closed.
//
// Values are closed in the reverse order they were added.
// Each Container owns one Disposables collection. Lifetime managers add the values they store.
type Disposables struct {
	mu      sync.Mutex
	closers []Closer
	seen    map[any]struct{}
	closed  bool
}

// NewDisposables creates an empty [Disposables] collection.
func NewDisposables() *Disposables {
	return &Disposables{
		seen: make(map[any]struct{}),
	}
}

// Add tracks val if it implements [Closer] or a compatible Close method.
//
// Comparable values are only tracked once.
// Returns false if val cannot be closed, is already tracked, or the collection is closed.
func (d *Disposables) Add(val any) bool {
	if isNil(val) {
		return false
	}

	closer := getCloser(val)
	if closer == nil {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}

	if reflect.ValueOf(val).Comparable() {
		if _, ok := d.seen[val]; ok {
			return false
		}
		d.seen[val] = struct{}{}
	}

	d.closers = append(d.closers, closer)
	return true
}

// addFunc tracks a function to run when the collection is closed.
func (d *Disposables) addFunc(f func(context.Context) error) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}

	d.closers = append(d.closers, closeFunc(f))
	return true
}

// Len returns the number of tracked closers.
func (d *Disposables) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.closers)
}

// Closed returns true once Close has been called.
func (d *Disposables) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.closed
}

// Close closes all tracked values in LIFO order.
//
// Every closer is called even if some of them fail. The errors are combined.
// Calling Close more than once is a no-op.
func (d *Disposables) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	closers := d.closers
	d.closers = nil
	d.seen = nil
	d.mu.Unlock()

	var errs errors.MultiError
	for i := len(closers) - 1; i >= 0; i-- {
		errs = errs.Append(closers[i].Close(ctx))
	}

	return errs.Join()
}
