package di

import (
	"context"

	"github.com/google/uuid"
)

// ThreadID identifies a logical thread of execution for the [PerThread] lifetime.
//
// Goroutines have no identity, so the calling thread is carried on the [context.Context].
// Contexts without a ThreadID share the zero ThreadID.
type ThreadID uuid.UUID

func (id ThreadID) String() string {
	return uuid.UUID(id).String()
}

type threadContextKey struct{}

// ContextWithThread returns a new Context that carries a new [ThreadID].
//
// Services with a [PerThread] lifetime resolved with the returned Context are not shared with
// other threads.
func ContextWithThread(ctx context.Context) context.Context {
	return context.WithValue(ctx, threadContextKey{}, ThreadID(uuid.New()))
}

// ThreadFromContext returns the [ThreadID] stored on the Context, if it exists.
func ThreadFromContext(ctx context.Context) (ThreadID, bool) {
	id, ok := ctx.Value(threadContextKey{}).(ThreadID)
	return id, ok
}
