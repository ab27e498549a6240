package tenant

import (
	"context"

	"github.com/google/uuid"
)

// Filter is the row restriction a store applies to tenant-owned data.
type Filter struct {
	TenantID     uuid.UUID
	Unrestricted bool
}

// Allows reports whether a record owned by tenantID is visible through the filter.
func (f Filter) Allows(tenantID uuid.UUID) bool {
	if f.Unrestricted {
		return true
	}
	return f.TenantID != uuid.Nil && f.TenantID == tenantID
}

// Gate derives the filter for the current request. It fails closed: a context with no
// scope cell, or an unset cell, yields ErrNoTenantScope. Inside an escape hatch the
// filter is unrestricted.
func Gate(ctx context.Context) (Filter, error) {
	st, ok := stateFromContext(ctx)
	if !ok {
		return Filter{}, ErrNoTenantScope
	}

	if st.depth > 0 {
		return Filter{Unrestricted: true}, nil
	}

	if !st.set {
		return Filter{}, ErrNoTenantScope
	}

	return Filter{TenantID: st.tenantID}, nil
}
