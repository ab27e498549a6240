package store

import (
	"errors"
	"fmt"
)

// Base errors shared by every store. Entity errors wrap one of these so callers can
// classify with errors.Is without knowing the entity.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

var (
	ErrCompanyNotFound      = fmt.Errorf("company %w", ErrNotFound)
	ErrCompanyAlreadyExists = fmt.Errorf("company %w", ErrAlreadyExists)
	ErrRootCompanyExists    = fmt.Errorf("root company %w", ErrAlreadyExists)

	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrUserAlreadyExists = fmt.Errorf("user %w", ErrAlreadyExists)

	ErrRefreshTokenNotFound = fmt.Errorf("refresh token %w", ErrNotFound)
	ErrRefreshTokenRevoked  = errors.New("refresh token already revoked")

	ErrProjectNotFound = fmt.Errorf("project %w", ErrNotFound)
	ErrTaskNotFound    = fmt.Errorf("task %w", ErrNotFound)
)

// DefaultListLimit caps list results when a caller passes no limit.
const DefaultListLimit = 100

// Stores bundles every store the service needs so a backend can be chosen in one place.
type Stores struct {
	Companies     CompanyStore
	Users         UserStore
	RefreshTokens RefreshTokenStore
	Projects      ProjectStore
	Tasks         TaskStore
}

// EffectiveLimit clamps limit to DefaultListLimit, treating zero as the default.
func EffectiveLimit(limit int) int {
	if limit <= 0 || limit > DefaultListLimit {
		return DefaultListLimit
	}
	return limit
}
