package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/sitework/internal/models"
)

// UserStore defines the interface for user storage operations.
// Users are tenant-owned: Create, Get, Update and List go through the gate and guard.
type UserStore interface {
	// Create creates a new user, stamping the current tenant when CompanyID is unset.
	// Returns ErrUserAlreadyExists if the email is already registered in any company.
	Create(ctx context.Context, user *models.User) error

	// Get retrieves a user visible through the gate.
	// Returns ErrUserNotFound if the user doesn't exist or is out of scope.
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// Update updates a user. The owning company cannot change.
	// Returns ErrUserNotFound if the user doesn't exist.
	Update(ctx context.Context, user *models.User) error

	// List returns users visible through the gate.
	List(ctx context.Context, opts ListUsersOptions) ([]*models.User, error)

	// Lookup retrieves a user by ID without consulting the gate. Used only to resolve
	// the identity behind a verified credential.
	Lookup(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// LookupByEmail retrieves a user by email (case-insensitive) without consulting the
	// gate. Used only by login.
	LookupByEmail(ctx context.Context, email string) (*models.User, error)
}

// ListUsersOptions specifies filters for listing users
type ListUsersOptions struct {
	Role       models.Role // Filter by role (empty = all)
	ActiveOnly bool
	Limit      int // Max results (0 = default)
}
