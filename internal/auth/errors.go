package auth

import "errors"

var (
	// ErrInvalidCredential is returned for any access token that fails verification.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrUnauthenticated is returned when an operation requires an identity and none is present.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrInsufficientRole is returned when the caller's role is below the required minimum.
	ErrInsufficientRole = errors.New("insufficient role")

	// ErrRootRequired is returned when an operation is limited to root-tenant callers.
	ErrRootRequired = errors.New("root tenant required")

	// ErrForbiddenScope is returned when a non-root caller names an explicit target tenant.
	ErrForbiddenScope = errors.New("cross-tenant access forbidden")

	// ErrUnknownTenant is returned when a root caller targets a missing or inactive company.
	ErrUnknownTenant = errors.New("target company not found")

	// ErrInvalidTarget is returned when the target tenant parameter is not a valid id.
	ErrInvalidTarget = errors.New("invalid target company id")
)
