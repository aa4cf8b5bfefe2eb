package di

import (
	"context"
)

// Closer is implemented by values that release resources when their Container is closed.
//
// A value stored by a lifetime manager is added to the [Disposables] of its Container if it
// has any of these methods:
//
//	Close(context.Context) error
//	Close(context.Context)
//	Close() error
//	Close()
//
// Values with the [Transient] or [External] lifetime are never closed by the Container.
type Closer interface {
	Close(ctx context.Context) error
}

// getCloser adapts val to a Closer. It returns nil if val has no Close method.
func getCloser(val any) Closer {
	switch c := val.(type) {
	case Closer:
		return c
	case interface{ Close(context.Context) }:
		return closeFunc(func(ctx context.Context) error {
			c.Close(ctx)
			return nil
		})
	case interface{ Close() error }:
		return closeFunc(func(context.Context) error {
			return c.Close()
		})
	case interface{ Close() }:
		return closeFunc(func(context.Context) error {
			c.Close()
			return nil
		})
	default:
		return nil
	}
}

// closeFunc is a function used as a Closer.
type closeFunc func(context.Context) error

func (f closeFunc) Close(ctx context.Context) error {
	return f(ctx)
}
