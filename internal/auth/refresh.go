package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/wolfeidau/sitework/internal/models"
)

const (
	// DefaultRefreshTTL is the lifetime of a refresh token unless configured otherwise.
	DefaultRefreshTTL = 14 * 24 * time.Hour

	refreshSecretBytes = 32
)

// ErrInvalidRefreshToken is returned for malformed, unknown, revoked or expired refresh tokens.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// NewRefreshToken mints a refresh credential for userID. The raw value goes to the client
// once; only the returned record is persisted.
func NewRefreshToken(userID uuid.UUID, now time.Time, ttl time.Duration) (string, *models.RefreshToken, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate refresh token id: %w", err)
	}

	secret := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", nil, fmt.Errorf("failed to generate refresh token secret: %w", err)
	}

	raw := base58.Encode(id[:]) + "." + base58.Encode(secret)

	return raw, &models.RefreshToken{
		ID:        id,
		UserID:    userID,
		TokenHash: hashRefreshSecret(secret),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

// ParseRefreshToken splits a raw refresh token into its id and secret.
func ParseRefreshToken(raw string) (uuid.UUID, []byte, error) {
	encodedID, encodedSecret, ok := strings.Cut(strings.TrimSpace(raw), ".")
	if !ok || encodedID == "" || encodedSecret == "" {
		return uuid.Nil, nil, ErrInvalidRefreshToken
	}

	idBytes, err := base58.Decode(encodedID)
	if err != nil {
		return uuid.Nil, nil, ErrInvalidRefreshToken
	}

	id, err := uuid.FromBytes(idBytes)
	if err != nil {
		return uuid.Nil, nil, ErrInvalidRefreshToken
	}

	secret, err := base58.Decode(encodedSecret)
	if err != nil || len(secret) != refreshSecretBytes {
		return uuid.Nil, nil, ErrInvalidRefreshToken
	}

	return id, secret, nil
}

// RefreshSecretMatches reports whether secret hashes to the stored token hash.
func RefreshSecretMatches(token *models.RefreshToken, secret []byte) bool {
	return subtle.ConstantTimeCompare([]byte(token.TokenHash), []byte(hashRefreshSecret(secret))) == 1
}

func hashRefreshSecret(secret []byte) string {
	sum := sha256.Sum256(secret)
	return hex.EncodeToString(sum[:])
}
