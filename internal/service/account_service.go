package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/sitework/internal/auth"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/store"
	"github.com/wolfeidau/sitework/internal/telemetry"
)

// dummyHash absorbs the bcrypt cost of a login for an unknown email.
var dummyHash = sync.OnceValue(func() string {
	hash, _ := auth.HashPassword("sitework-unknown-account")
	return hash
})

// AccountService handles sign in, registration and credential renewal.
type AccountService struct {
	companies     store.CompanyStore
	users         store.UserStore
	refreshTokens store.RefreshTokenStore
	provisioner   *CompanyService
	codec         *auth.Codec
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewAccountService creates a new account service.
func NewAccountService(stores store.Stores, codec *auth.Codec, provisioner *CompanyService, refreshTTL time.Duration) *AccountService {
	return &AccountService{
		companies:     stores.Companies,
		users:         stores.Users,
		refreshTokens: stores.RefreshTokens,
		provisioner:   provisioner,
		codec:         codec,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// Session is the credential pair handed to a client together with who it belongs to.
type Session struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             *models.User
	Company          *models.Company
}

// Login verifies an email and password and opens a session. Unknown emails, wrong
// passwords and inactive accounts or companies all yield ErrInvalidLogin.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.LookupByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			auth.CheckPassword(dummyHash(), password)
			return nil, ErrInvalidLogin
		}
		return nil, fmt.Errorf("failed to lookup user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) || !user.IsActive {
		return nil, ErrInvalidLogin
	}

	company, ok, err := s.activeCompany(ctx, user)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidLogin
	}

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("User signed in")

	return s.open(ctx, user, company)
}

// RegisterInput describes a self-service signup: a new company and its owner.
type RegisterInput struct {
	CompanyName string
	Name        string
	Email       string
	Password    string
}

// Register provisions a new company with the caller as owner and opens a session.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	company, owner, err := s.provisioner.provision(ctx, ProvisionInput{
		CompanyName:   in.CompanyName,
		OwnerName:     in.Name,
		OwnerEmail:    in.Email,
		OwnerPassword: in.Password,
	})
	if err != nil {
		return nil, err
	}

	return s.open(ctx, owner, company)
}

// Refresh exchanges a refresh token for a new session. The presented token is revoked
// and only the caller that wins that revocation gets a session. Replaying an already
// rotated token, or losing a concurrent rotation, revokes every session of its user.
func (s *AccountService) Refresh(ctx context.Context, raw string) (*Session, error) {
	token, err := s.verifyRefreshToken(ctx, raw)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Lookup(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, auth.ErrInvalidRefreshToken
	}

	company, ok, err := s.activeCompany(ctx, user)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, auth.ErrInvalidRefreshToken
	}

	now := s.now().UTC()
	if err := s.refreshTokens.Revoke(ctx, token.ID, now); err != nil {
		if errors.Is(err, store.ErrRefreshTokenRevoked) {
			return nil, s.replayed(ctx, token, now)
		}
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	telemetry.GetMetrics().RefreshRotations.Add(ctx, 1)

	return s.open(ctx, user, company)
}

// Logout revokes the caller's refresh token, or every refresh token of the caller when
// all is set.
func (s *AccountService) Logout(ctx context.Context, raw string, all bool) error {
	id, err := auth.RequireIdentity(ctx)
	if err != nil {
		return err
	}

	now := s.now().UTC()

	if all {
		if err := s.refreshTokens.RevokeAllForUser(ctx, id.UserID, now); err != nil {
			return fmt.Errorf("failed to revoke refresh tokens: %w", err)
		}
		return nil
	}

	token, err := s.verifyRefreshToken(ctx, raw)
	if err != nil {
		return err
	}
	if token.UserID != id.UserID {
		return auth.ErrInvalidRefreshToken
	}

	if err := s.refreshTokens.Revoke(ctx, token.ID, now); err != nil && !errors.Is(err, store.ErrRefreshTokenRevoked) {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

// Me returns the caller's user and company records.
func (s *AccountService) Me(ctx context.Context) (*models.User, *models.Company, error) {
	id, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.Lookup(ctx, id.UserID)
	if err != nil {
		return nil, nil, err
	}

	company, err := s.companies.Lookup(ctx, id.TenantID)
	if err != nil {
		return nil, nil, err
	}

	return user, company, nil
}

func (s *AccountService) verifyRefreshToken(ctx context.Context, raw string) (*models.RefreshToken, error) {
	tokenID, secret, err := auth.ParseRefreshToken(raw)
	if err != nil {
		return nil, err
	}

	token, err := s.refreshTokens.Get(ctx, tokenID)
	if err != nil {
		if errors.Is(err, store.ErrRefreshTokenNotFound) {
			return nil, auth.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	now := s.now().UTC()

	// A wrong secret proves nothing about the holder of the real one, so the token stays usable.
	if !auth.RefreshSecretMatches(token, secret) {
		telemetry.GetMetrics().RefreshMismatches.Add(ctx, 1)
		zerolog.Ctx(ctx).Warn().Str("token_id", token.ID.String()).Msg("Refresh token secret mismatch")
		return nil, auth.ErrInvalidRefreshToken
	}

	if token.RevokedAt != nil {
		return nil, s.replayed(ctx, token, now)
	}

	if !token.IsValid(now) {
		return nil, auth.ErrInvalidRefreshToken
	}

	return token, nil
}

// replayed handles a rotated token presented again: every session of its user is revoked.
func (s *AccountService) replayed(ctx context.Context, token *models.RefreshToken, now time.Time) error {
	telemetry.GetMetrics().RefreshReuse.Add(ctx, 1)
	zerolog.Ctx(ctx).Warn().Str("user_id", token.UserID.String()).Msg("Revoked refresh token replayed, revoking all sessions")
	if err := s.refreshTokens.RevokeAllForUser(ctx, token.UserID, now); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return auth.ErrInvalidRefreshToken
}

// activeCompany returns the user's company and whether it may sign in.
func (s *AccountService) activeCompany(ctx context.Context, user *models.User) (*models.Company, bool, error) {
	company, err := s.companies.Lookup(ctx, user.CompanyID)
	if err != nil {
		if errors.Is(err, store.ErrCompanyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to lookup company: %w", err)
	}
	return company, company.IsActive, nil
}

func (s *AccountService) open(ctx context.Context, user *models.User, company *models.Company) (*Session, error) {
	access, accessExpiresAt, err := s.codec.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	raw, refresh, err := auth.NewRefreshToken(user.ID, s.now().UTC(), s.refreshTTL)
	if err != nil {
		return nil, err
	}

	if err := s.refreshTokens.Create(ctx, refresh); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &Session{
		AccessToken:      access,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     raw,
		RefreshExpiresAt: refresh.ExpiresAt,
		User:             user,
		Company:          company,
	}, nil
}
