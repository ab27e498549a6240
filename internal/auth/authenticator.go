package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	httpmiddleware "github.com/wolfeidau/sitework/internal/http"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/store"
	"github.com/wolfeidau/sitework/internal/telemetry"
	"github.com/wolfeidau/sitework/internal/tenant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const tracerName = "github.com/wolfeidau/sitework/internal/auth"

// UserDirectory resolves the user behind a verified credential.
type UserDirectory interface {
	Lookup(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// CompanyDirectory resolves companies without tenant scoping.
type CompanyDirectory interface {
	Lookup(ctx context.Context, companyID uuid.UUID) (*models.Company, error)
}

// Authenticator turns a bearer access token into a request Identity.
type Authenticator struct {
	codec     *Codec
	users     UserDirectory
	companies CompanyDirectory
}

// NewAuthenticator creates a new authenticator.
func NewAuthenticator(codec *Codec, users UserDirectory, companies CompanyDirectory) *Authenticator {
	return &Authenticator{
		codec:     codec,
		users:     users,
		companies: companies,
	}
}

// Middleware installs a fresh tenant scope in every request and, when the request
// carries a valid credential for an active user of an active company, the caller's
// Identity. The scope is cleared when the request ends however the handler exits.
// Requests without a usable credential continue anonymously; route policy decides
// whether that is acceptable.
func (a *Authenticator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := tenant.NewScope()
			defer scope.Clear()

			ctx := tenant.WithScope(r.Context(), scope)

			id, err := a.Authenticate(ctx, extractBearerToken(r))
			if err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to resolve identity")
				httpmiddleware.WriteProblem(w, http.StatusInternalServerError, "internal error")
				return
			}

			if id != nil {
				ctx = WithIdentity(ctx, *id)
				scope.Set(id.TenantID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authenticate resolves the identity for token. It returns a nil identity for anonymous
// callers and an error only when the directories fail.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		recordOutcome(ctx, "anonymous")
		return nil, nil
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "auth.Authenticate")
	defer span.End()

	claims, err := a.codec.Verify(token)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("Rejected access token")
		recordOutcome(ctx, "invalid")
		return nil, nil
	}

	user, err := a.users.Lookup(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			recordOutcome(ctx, "unknown_user")
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to lookup user: %w", err)
	}

	if !user.IsActive {
		recordOutcome(ctx, "inactive_user")
		return nil, nil
	}

	company, err := a.companies.Lookup(ctx, user.CompanyID)
	if err != nil {
		if errors.Is(err, store.ErrCompanyNotFound) {
			recordOutcome(ctx, "unknown_company")
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to lookup company: %w", err)
	}

	if !company.IsActive {
		recordOutcome(ctx, "inactive_company")
		return nil, nil
	}

	span.SetAttributes(
		attribute.String("user.id", user.ID.String()),
		attribute.String("tenant.id", company.ID.String()),
	)
	recordOutcome(ctx, "authenticated")

	return &Identity{
		UserID:       user.ID,
		TenantID:     company.ID,
		Email:        user.Email,
		Role:         user.Role,
		IsRootTenant: company.IsRoot,
	}, nil
}

func recordOutcome(ctx context.Context, result string) {
	telemetry.GetMetrics().AuthnOutcomes.Add(ctx, 1,
		metric.WithAttributes(attribute.String("result", result)))
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}
