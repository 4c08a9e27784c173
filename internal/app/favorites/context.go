package favorites

import (
	"context"
	"io"
	"log/slog"
)

type contextKey struct{}

// NewContext returns a copy of ctx carrying store
func NewContext(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, contextKey{}, store)
}

// FromContext returns the store bound to ctx. Without one it returns a fresh
// storage-less store, so callers always see a usable, empty set.
func FromContext(ctx context.Context) *Store {
	if store, ok := ctx.Value(contextKey{}).(*Store); ok && store != nil {
		return store
	}
	return NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
