package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	httpmiddleware "github.com/wolfeidau/sitework/internal/http"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/store"
	"github.com/wolfeidau/sitework/internal/telemetry"
	"github.com/wolfeidau/sitework/internal/tenant"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// TargetTenantParam is the query parameter a root caller uses to act on another company.
const TargetTenantParam = "companyId"

// ResolveTenant decides the effective tenant for a request. Without a requested target
// the caller's own tenant applies. Only root-tenant callers may name a target; any
// explicit target from a non-root caller is refused, even its own company.
func ResolveTenant(id Identity, requested *uuid.UUID) (uuid.UUID, error) {
	if requested == nil {
		return id.TenantID, nil
	}

	if !id.IsRootTenant {
		return uuid.Nil, ErrForbiddenScope
	}

	return *requested, nil
}

// Policy describes the authorization requirements of a route.
type Policy struct {
	MinRole     models.Role // Minimum caller role (empty = any authenticated caller)
	RootOnly    bool        // Only root-tenant callers
	AllowTarget bool        // Honour the companyId query parameter
}

// Authorizer enforces route policies.
type Authorizer struct {
	companies CompanyDirectory
}

// NewAuthorizer creates an authorizer that validates target companies against companies.
func NewAuthorizer(companies CompanyDirectory) *Authorizer {
	return &Authorizer{companies: companies}
}

// Require returns middleware enforcing p. On success the request's tenant scope is the
// resolved effective tenant.
func (a *Authorizer) Require(p Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			effective, err := a.authorize(ctx, p, r)
			if err != nil {
				status := denialStatus(err)
				recordDenial(ctx, err)
				zerolog.Ctx(ctx).Debug().Err(err).Int("status", status).Msg("Request denied by policy")
				message := err.Error()
				if status == http.StatusInternalServerError {
					message = "internal error"
				}
				httpmiddleware.WriteProblem(w, status, message)
				return
			}

			scope := tenant.ScopeFromContext(ctx)
			if scope == nil {
				scope = tenant.NewScope()
				defer scope.Clear()
				ctx = tenant.WithScope(ctx, scope)
			}
			scope.Set(effective)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (a *Authorizer) authorize(ctx context.Context, p Policy, r *http.Request) (uuid.UUID, error) {
	id, err := RequireIdentity(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	if p.RootOnly && !id.IsRootTenant {
		return uuid.Nil, ErrRootRequired
	}

	if p.MinRole != "" && !id.Role.AtLeast(p.MinRole) {
		return uuid.Nil, ErrInsufficientRole
	}

	if !p.AllowTarget {
		return id.TenantID, nil
	}

	requested, err := parseTarget(r)
	if err != nil {
		return uuid.Nil, err
	}

	effective, err := ResolveTenant(id, requested)
	if err != nil {
		return uuid.Nil, err
	}

	if requested != nil {
		company, err := a.companies.Lookup(ctx, effective)
		if err != nil {
			if errors.Is(err, store.ErrCompanyNotFound) {
				return uuid.Nil, ErrUnknownTenant
			}
			return uuid.Nil, fmt.Errorf("failed to lookup target company: %w", err)
		}
		if !company.IsActive {
			return uuid.Nil, ErrUnknownTenant
		}
	}

	return effective, nil
}

func parseTarget(r *http.Request) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(TargetTenantParam)
	if raw == "" {
		return nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return nil, ErrInvalidTarget
	}

	return &id, nil
}

func denialStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidTarget):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownTenant):
		return http.StatusNotFound
	case errors.Is(err, ErrForbiddenScope), errors.Is(err, ErrInsufficientRole), errors.Is(err, ErrRootRequired):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func recordDenial(ctx context.Context, err error) {
	reason := "error"
	switch {
	case errors.Is(err, ErrUnauthenticated):
		reason = "unauthenticated"
	case errors.Is(err, ErrInvalidTarget):
		reason = "invalid_target"
	case errors.Is(err, ErrUnknownTenant):
		reason = "unknown_target"
	case errors.Is(err, ErrForbiddenScope):
		reason = "forbidden_scope"
	case errors.Is(err, ErrInsufficientRole):
		reason = "insufficient_role"
	case errors.Is(err, ErrRootRequired):
		reason = "root_required"
	}
	telemetry.GetMetrics().AuthzDenials.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)))
}
