package tenant

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTenantScope is returned when tenant-owned data is touched without a tenant scope.
	ErrNoTenantScope = errors.New("no tenant scope")

	// ErrTenantViolation is the base error for any rejected cross-tenant write.
	ErrTenantViolation = errors.New("tenant violation")

	// ErrOwnershipChange is returned when an update tries to move a record to another tenant.
	ErrOwnershipChange = fmt.Errorf("%w: tenant ownership is immutable", ErrTenantViolation)

	// ErrCrossTenantWrite is returned when a write targets a record outside the current scope.
	ErrCrossTenantWrite = fmt.Errorf("%w: record is outside the current tenant scope", ErrTenantViolation)
)
