package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is the base error for request validation failures.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidLogin is returned for any failed login so callers cannot probe accounts.
	ErrInvalidLogin = errors.New("invalid email or password")

	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrNotBootstrapped is returned when companies are provisioned before the root exists.
	ErrNotBootstrapped = errors.New("root company has not been bootstrapped")

	// ErrRootCompanyProtected is returned when deactivating the root company.
	ErrRootCompanyProtected = errors.New("root company cannot be deactivated")

	// ErrRoleEscalation is returned when a caller grants a role above its own.
	ErrRoleEscalation = errors.New("cannot grant a role above your own")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
