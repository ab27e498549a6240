package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/store"
)

// RefreshTokenStore implements store.RefreshTokenStore using in-memory storage.
type RefreshTokenStore struct {
	mu sync.RWMutex

	tokens       map[uuid.UUID]*models.RefreshToken // token_id -> RefreshToken
	tokensByUser map[uuid.UUID][]uuid.UUID          // user_id -> []token_id
}

// NewRefreshTokenStore creates a new in-memory refresh token store.
func NewRefreshTokenStore() *RefreshTokenStore {
	return &RefreshTokenStore{
		tokens:       make(map[uuid.UUID]*models.RefreshToken),
		tokensByUser: make(map[uuid.UUID][]uuid.UUID),
	}
}

// Create stores a new refresh token.
func (s *RefreshTokenStore) Create(ctx context.Context, token *models.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	s.tokens[token.ID] = cloneRefreshToken(token)
	s.tokensByUser[token.UserID] = append(s.tokensByUser[token.UserID], token.ID)

	return nil
}

// Get retrieves a refresh token by ID.
func (s *RefreshTokenStore) Get(ctx context.Context, tokenID uuid.UUID) (*models.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, exists := s.tokens[tokenID]
	if !exists {
		return nil, store.ErrRefreshTokenNotFound
	}

	return cloneRefreshToken(token), nil
}

// Revoke marks an outstanding token revoked.
func (s *RefreshTokenStore) Revoke(ctx context.Context, tokenID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, exists := s.tokens[tokenID]
	if !exists {
		return store.ErrRefreshTokenNotFound
	}

	if token.RevokedAt != nil {
		return store.ErrRefreshTokenRevoked
	}

	revokedAt := at
	token.RevokedAt = &revokedAt

	return nil
}

// RevokeAllForUser revokes every outstanding token for a user.
func (s *RefreshTokenStore) RevokeAllForUser(ctx context.Context, userID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tokenID := range s.tokensByUser[userID] {
		token := s.tokens[tokenID]
		if token.RevokedAt == nil {
			revokedAt := at
			token.RevokedAt = &revokedAt
		}
	}

	return nil
}

func cloneRefreshToken(t *models.RefreshToken) *models.RefreshToken {
	clone := *t
	if t.RevokedAt != nil {
		revokedAt := *t.RevokedAt
		clone.RevokedAt = &revokedAt
	}
	return &clone
}
