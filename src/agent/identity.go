package agent

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the caller identity threaded through a run. Tool executors use
// it for their own authorization checks; the loop itself only passes it on.
type Identity struct {
	UserID uuid.UUID
}

type identityKey struct{}

// WithIdentity returns a context carrying the caller identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom extracts the caller identity from the context.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
