package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the persisted half of a refresh credential. Only the SHA-256 of the
// secret is stored; the raw secret is handed to the client once.
type RefreshToken struct {
	ID        uuid.UUID // UUIDv7, also the public half of the raw token
	UserID    uuid.UUID
	TokenHash string // hex SHA-256 of the secret
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// IsValid reports whether the token is neither revoked nor expired at now.
func (t *RefreshToken) IsValid(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
