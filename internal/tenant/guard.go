package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/sitework/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Owned is implemented by every tenant-owned entity.
type Owned interface {
	TenantID() uuid.UUID
	SetTenantID(uuid.UUID)
}

// StampOnCreate assigns the current tenant to a new entity with no tenant. An entity with
// an explicit tenant keeps it.
func StampOnCreate(ctx context.Context, e Owned) error {
	if e.TenantID() != uuid.Nil {
		return nil
	}

	st, ok := stateFromContext(ctx)
	if !ok || !st.set {
		return ErrNoTenantScope
	}

	e.SetTenantID(st.tenantID)
	return nil
}

// CheckUpdate rejects an update that changes the owning tenant of stored, or that runs
// under a scope other than the stored owner. A zero tenant on incoming is filled from
// stored. An escape hatch only waives the scope requirement when no tenant is set; a set
// scope is always compared against the owner.
func CheckUpdate(ctx context.Context, stored, incoming Owned) error {
	owner := stored.TenantID()

	switch attempted := incoming.TenantID(); {
	case attempted == uuid.Nil:
		incoming.SetTenantID(owner)
	case attempted != owner:
		return violation(ctx, ErrOwnershipChange, owner, attempted)
	}

	st, ok := stateFromContext(ctx)
	if !ok || !st.set {
		if ok && st.depth > 0 {
			return nil
		}
		return ErrNoTenantScope
	}

	if st.tenantID != owner {
		return violation(ctx, ErrCrossTenantWrite, owner, st.tenantID)
	}

	return nil
}

// PrepareCreate stamps e and verifies the result is writable under the current gate.
func PrepareCreate(ctx context.Context, e Owned) error {
	if err := StampOnCreate(ctx, e); err != nil {
		return err
	}

	filter, err := Gate(ctx)
	if err != nil {
		return err
	}

	if !filter.Allows(e.TenantID()) {
		return violation(ctx, ErrCrossTenantWrite, e.TenantID(), filter.TenantID)
	}

	return nil
}

func violation(ctx context.Context, kind error, owner, attempted uuid.UUID) error {
	zerolog.Ctx(ctx).Warn().
		Str("owner_tenant_id", owner.String()).
		Str("attempted_tenant_id", attempted.String()).
		Err(kind).
		Msg("tenant violation rejected")

	reason := "cross_tenant_write"
	if errors.Is(kind, ErrOwnershipChange) {
		reason = "ownership_change"
	}
	telemetry.GetMetrics().TenantViolations.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)))

	return fmt.Errorf("%w (owner %s, attempted %s)", kind, owner, attempted)
}
