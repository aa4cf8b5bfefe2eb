package dihttp

import (
	"github.com/sectrean/di-engine"
	"github.com/sectrean/di-engine/internal/errors"
)

// ScopeMiddlewareOption is an option used to configure the scope middleware when calling
// [NewRequestScopeMiddleware].
type ScopeMiddlewareOption interface {
	applyScopeMiddleware(*scopeMiddleware) error
}

type scopeMiddlewareOption func(*scopeMiddleware) error

func (o scopeMiddlewareOption) applyScopeMiddleware(m *scopeMiddleware) error {
	return o(m)
}

// WithContainerOptions sets the options to use when calling [di.Container.NewChild] for each request.
func WithContainerOptions(opts ...di.ContainerOption) ScopeMiddlewareOption {
	return scopeMiddlewareOption(func(m *scopeMiddleware) error {
		m.opts = append(m.opts, opts...)
		return nil
	})
}

// WithNewScopeErrorHandler sets the error handler for when creating a child container fails.
func WithNewScopeErrorHandler(h NewScopeErrorHandler) ScopeMiddlewareOption {
	return scopeMiddlewareOption(func(m *scopeMiddleware) error {
		if h == nil {
			return errors.New("WithNewScopeErrorHandler: h is nil")
		}

		m.newScopeHandler = h
		return nil
	})
}

// WithScopeCloseErrorHandler sets the error handler for when closing a child container fails.
func WithScopeCloseErrorHandler(h ScopeCloseErrorHandler) ScopeMiddlewareOption {
	return scopeMiddlewareOption(func(m *scopeMiddleware) error {
		if h == nil {
			return errors.New("WithScopeCloseErrorHandler: h is nil")
		}

		m.closeHandler = h
		return nil
	})
}
