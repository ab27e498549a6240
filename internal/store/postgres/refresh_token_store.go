package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/store"
)

// RefreshTokenStore implements store.RefreshTokenStore using PostgreSQL.
type RefreshTokenStore struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenStore creates a new PostgreSQL-backed refresh token store.
func NewRefreshTokenStore(pool *pgxpool.Pool) *RefreshTokenStore {
	return &RefreshTokenStore{
		pool: pool,
	}
}

// Create stores a new refresh token.
func (s *RefreshTokenStore) Create(ctx context.Context, token *models.RefreshToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO refresh_tokens (token_id, user_id, token_hash, expires_at, revoked_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
		token.RevokedAt,
		token.CreatedAt,
	)
	if err != nil {
		return mapPostgresError(err)
	}

	log.Debug().
		Str("token_id", token.ID.String()).
		Str("user_id", token.UserID.String()).
		Time("expires_at", token.ExpiresAt).
		Msg("Created refresh token")

	return nil
}

// Get retrieves a refresh token by ID.
func (s *RefreshTokenStore) Get(ctx context.Context, tokenID uuid.UUID) (*models.RefreshToken, error) {
	query := `
		SELECT token_id, user_id, token_hash, expires_at, revoked_at, created_at
		FROM refresh_tokens
		WHERE token_id = $1
	`

	var t models.RefreshToken
	err := s.pool.QueryRow(ctx, query, tokenID).Scan(
		&t.ID,
		&t.UserID,
		&t.TokenHash,
		&t.ExpiresAt,
		&t.RevokedAt,
		&t.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, store.ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return &t, nil
}

// Revoke marks an outstanding token revoked. The row only transitions while revoked_at
// is NULL, so concurrent callers race on the row lock and exactly one wins.
func (s *RefreshTokenStore) Revoke(ctx context.Context, tokenID uuid.UUID, at time.Time) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $2
		WHERE token_id = $1 AND revoked_at IS NULL
	`

	tag, err := s.pool.Exec(ctx, query, tokenID, at)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM refresh_tokens WHERE token_id = $1)`, tokenID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check refresh token: %w", err)
		}
		if !exists {
			return store.ErrRefreshTokenNotFound
		}
		return store.ErrRefreshTokenRevoked
	}

	log.Debug().Str("token_id", tokenID.String()).Msg("Revoked refresh token")

	return nil
}

// RevokeAllForUser revokes every outstanding token for a user.
func (s *RefreshTokenStore) RevokeAllForUser(ctx context.Context, userID uuid.UUID, at time.Time) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $2
		WHERE user_id = $1 AND revoked_at IS NULL
	`

	tag, err := s.pool.Exec(ctx, query, userID, at)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	log.Debug().
		Str("user_id", userID.String()).
		Int64("revoked", tag.RowsAffected()).
		Msg("Revoked refresh tokens for user")

	return nil
}
