package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/sitework/internal/models"
)

// Identity is the trusted caller of a request. It is built once by the authenticator
// from the user record and never changes afterwards.
type Identity struct {
	UserID       uuid.UUID
	TenantID     uuid.UUID
	Email        string
	Role         models.Role
	IsRootTenant bool
}

type contextKey int

const (
	identityContextKey contextKey = iota
)

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the caller identity, or false for anonymous requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}

// RequireIdentity returns the caller identity or ErrUnauthenticated.
func RequireIdentity(ctx context.Context) (Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}

// RequireRole returns the caller identity if its role is at least min.
func RequireRole(ctx context.Context, min models.Role) (Identity, error) {
	id, err := RequireIdentity(ctx)
	if err != nil {
		return Identity{}, err
	}
	if !id.Role.AtLeast(min) {
		return Identity{}, ErrInsufficientRole
	}
	return id, nil
}

// RequireRoot returns the caller identity if it belongs to the root tenant.
func RequireRoot(ctx context.Context) (Identity, error) {
	id, err := RequireIdentity(ctx)
	if err != nil {
		return Identity{}, err
	}
	if !id.IsRootTenant {
		return Identity{}, ErrRootRequired
	}
	return id, nil
}
