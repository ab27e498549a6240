package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wolfeidau/sitework/internal/auth"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/store"
)

// UserService manages the users of the caller's company.
type UserService struct {
	users store.UserStore
}

// NewUserService creates a new user service.
func NewUserService(stores store.Stores) *UserService {
	return &UserService{users: stores.Users}
}

// List returns the users of the company the request is scoped to.
func (s *UserService) List(ctx context.Context, opts store.ListUsersOptions) ([]*models.User, error) {
	return s.users.List(ctx, opts)
}

// CreateUserInput describes a user added to the caller's company.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// Create adds a user to the company the request is scoped to. The company is stamped by
// the store; callers cannot grant a role above their own.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	id, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	name, err := requireText("name", in.Name, 200)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = models.RoleMember
	}
	if !in.Role.Valid() {
		return nil, invalidf("unknown role %q", in.Role)
	}
	if !id.Role.AtLeast(in.Role) {
		return nil, ErrRoleEscalation
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	user := &models.User{
		ID:           newID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return user, nil
}

// UserUpdate holds the mutable user fields; nil fields are unchanged.
type UserUpdate struct {
	Name      *string
	Role      *models.Role
	IsActive  *bool
	CompanyID *uuid.UUID // Ownership is immutable; a differing value is rejected
}

// Update changes a user of the company the request is scoped to.
func (s *UserService) Update(ctx context.Context, userID uuid.UUID, in UserUpdate) (*models.User, error) {
	id, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	// a user at or above the caller's rank can only be changed by a peer or higher
	if !id.Role.AtLeast(user.Role) {
		return nil, ErrRoleEscalation
	}

	if in.Name != nil {
		name, err := requireText("name", *in.Name, 200)
		if err != nil {
			return nil, err
		}
		user.Name = name
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, invalidf("unknown role %q", *in.Role)
		}
		if !id.Role.AtLeast(*in.Role) {
			return nil, ErrRoleEscalation
		}
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		if user.ID == id.UserID && !*in.IsActive {
			return nil, invalidf("cannot deactivate yourself")
		}
		user.IsActive = *in.IsActive
	}
	if in.CompanyID != nil {
		user.CompanyID = *in.CompanyID
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
