package auth

import (
	"context"

	"github.com/avelardo/infratrack/internal/domain"
)

// Identity is the request-scoped authenticated caller. It is built per
// request from the session row joined with the employees table, so Role
// reflects the database, not a stale session claim.
type Identity struct {
	EmployeeID string
	Username   string
	FullName   string
	Role       domain.Role
	CSRFToken  string
}

type identityKey struct{}

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom extracts the identity set by the session middleware.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
