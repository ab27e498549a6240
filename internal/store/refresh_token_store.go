package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/sitework/internal/models"
)

// RefreshTokenStore persists refresh credentials. Tokens belong to a user rather than a
// tenant and are only reachable through their id, so the store is not gated.
type RefreshTokenStore interface {
	// Create stores a new refresh token.
	Create(ctx context.Context, token *models.RefreshToken) error

	// Get retrieves a refresh token by ID.
	// Returns ErrRefreshTokenNotFound if the token doesn't exist.
	Get(ctx context.Context, tokenID uuid.UUID) (*models.RefreshToken, error)

	// Revoke marks an outstanding token revoked at the given time. Exactly one of any
	// number of concurrent callers succeeds; the others, and any later caller, get
	// ErrRefreshTokenRevoked and the original revocation time is kept.
	// Returns ErrRefreshTokenNotFound if the token doesn't exist.
	Revoke(ctx context.Context, tokenID uuid.UUID, at time.Time) error

	// RevokeAllForUser revokes every outstanding token for a user.
	RevokeAllForUser(ctx context.Context, userID uuid.UUID, at time.Time) error
}
