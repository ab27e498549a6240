package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// Issuer is the iss claim of every access token.
	Issuer = "sitework"

	// DefaultAccessTTL is the lifetime of an access token unless configured otherwise.
	DefaultAccessTTL = time.Hour

	// MinSigningKeyLength is the minimum HMAC key size in bytes.
	MinSigningKeyLength = 32

	clockSkew = 5 * time.Second
)

// Claims is the JWT payload of an access token. It proves who the caller is; tenant and
// role always come from the user record.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// VerifiedClaims is the result of a successful verification.
type VerifiedClaims struct {
	UserID    uuid.UUID
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec issues and verifies HS256 access tokens.
type Codec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithTTL sets the access token lifetime.
func WithTTL(ttl time.Duration) CodecOption {
	return func(c *Codec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock sets the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec creates a codec signing with key. The key must be at least
// MinSigningKeyLength bytes.
func NewCodec(key []byte, opts ...CodecOption) (*Codec, error) {
	if len(key) < MinSigningKeyLength {
		return nil, fmt.Errorf("signing key must be at least %d bytes, got %d", MinSigningKeyLength, len(key))
	}

	c := &Codec{
		key: append([]byte(nil), key...),
		ttl: DefaultAccessTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// TTL returns the access token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue creates a signed access token for the user.
func (c *Codec) Issue(userID uuid.UUID, email string) (string, time.Time, error) {
	now := c.now().UTC()
	expiresAt := now.Add(c.ttl)

	claims := &Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify checks the signature, algorithm, issuer and lifetime of tokenString.
// Every failure is reported as ErrInvalidCredential wrapping the cause.
func (c *Codec) Verify(tokenString string) (*VerifiedClaims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return c.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed uid claim", ErrInvalidCredential)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidCredential)
	}

	if claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing iat claim", ErrInvalidCredential)
	}

	return &VerifiedClaims{
		UserID:    userID,
		Email:     claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
