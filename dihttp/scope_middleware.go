package dihttp

import (
	"log/slog"
	"net/http"
	"reflect"

	"github.com/sectrean/di-engine"
	"github.com/sectrean/di-engine/dicontext"
	"github.com/sectrean/di-engine/internal/errors"
)

// NewRequestScopeMiddleware returns middleware that creates a new child [di.Container] for each request.
// The child is closed after the request has been processed.
//
// The current [*http.Request] is registered with the child. It can be used as a dependency for
// values with a [di.Hierarchical] lifetime.
//
// The child is stored on the request context and can be accessed using [dicontext.Scope],
// [dicontext.Resolve], or [dicontext.MustResolve]. The request context also carries a new
// [di.ThreadID], so [di.PerThread] values are not shared between requests.
//
// Available options:
//   - [WithContainerOptions] sets the [di.ContainerOption]s to use when creating each child.
//   - [WithNewScopeErrorHandler] sets the error handler for when creating a child fails.
//   - [WithScopeCloseErrorHandler] sets the error handler for when closing a child fails.
func NewRequestScopeMiddleware(
	parent *di.Container,
	opts ...ScopeMiddlewareOption,
) (func(http.Handler) http.Handler, error) {
	if parent == nil {
		return nil, errors.New("dihttp.NewRequestScopeMiddleware: parent is nil")
	}

	mw := &scopeMiddleware{
		parent:          parent,
		newScopeHandler: defaultNewScopeErrorHandler,
		closeHandler:    defaultScopeCloseErrorHandler,
	}

	var errs errors.MultiError
	for _, opt := range opts {
		errs = errs.Append(opt.applyScopeMiddleware(mw))
	}
	if err := errs.Wrap("dihttp.NewRequestScopeMiddleware"); err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return &scopeHandler{
			scopeMiddleware: mw,
			next:            next,
		}
	}, nil
}

// NewScopeErrorHandler is a function that writes an error response to the client.
// This is called by the scope middleware when creating the child [di.Container] fails.
//
// The default handler logs the error to [slog.Default] and writes a 500 Internal Server Error response.
type NewScopeErrorHandler = func(w http.ResponseWriter, r *http.Request, err error)

func defaultNewScopeErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "error creating new HTTP request scope", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// ScopeCloseErrorHandler is a function that handles errors when closing the child [di.Container]
// after the request has completed.
//
// The default handler logs the error to [slog.Default].
type ScopeCloseErrorHandler = func(r *http.Request, err error)

func defaultScopeCloseErrorHandler(r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "error closing HTTP request scope", "error", err)
}

type scopeMiddleware struct {
	parent          *di.Container
	opts            []di.ContainerOption
	newScopeHandler NewScopeErrorHandler
	closeHandler    ScopeCloseErrorHandler
}

type scopeHandler struct {
	*scopeMiddleware
	next http.Handler
}

func (h *scopeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	opts := make([]di.ContainerOption, 0, len(h.opts)+1)
	opts = append(opts, h.opts...)
	// Register the *http.Request with the child
	opts = append(opts, di.WithInstance(reflect.TypeFor[*http.Request](), r, di.External))

	scope, err := h.parent.NewChild(opts...)
	if err != nil {
		h.newScopeHandler(w, r, err)
		return
	}

	ctx := di.ContextWithThread(r.Context())
	ctx = dicontext.WithScope(ctx, scope)
	h.next.ServeHTTP(w, r.WithContext(ctx))

	err = scope.Close(ctx)
	if err != nil {
		h.closeHandler(r, err)
	}
}
