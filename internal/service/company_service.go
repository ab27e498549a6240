package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/sitework/internal/auth"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/store"
	"github.com/wolfeidau/sitework/internal/tenant"
)

// CompanyService provisions and administers companies. Everything here crosses tenant
// boundaries and runs inside the escape hatch.
type CompanyService struct {
	companies store.CompanyStore
	users     store.UserStore
}

// NewCompanyService creates a new company service.
func NewCompanyService(stores store.Stores) *CompanyService {
	return &CompanyService{
		companies: stores.Companies,
		users:     stores.Users,
	}
}

// ProvisionInput describes a new company and its first owner.
type ProvisionInput struct {
	CompanyName   string
	OwnerName     string
	OwnerEmail    string
	OwnerPassword string
}

// Bootstrap creates the root company and its owner. It is used by operators before the
// service accepts traffic and returns store.ErrRootCompanyExists once a root exists.
func (s *CompanyService) Bootstrap(ctx context.Context, in ProvisionInput) (*models.Company, *models.User, error) {
	if _, err := s.companies.Root(ctx); err == nil {
		return nil, nil, store.ErrRootCompanyExists
	} else if !errors.Is(err, store.ErrCompanyNotFound) {
		return nil, nil, fmt.Errorf("failed to lookup root company: %w", err)
	}

	return s.create(ctx, in, nil)
}

// Provision creates a company under the root tenant. Only root-tenant callers may
// provision directly; self-service registration goes through AccountService.Register.
func (s *CompanyService) Provision(ctx context.Context, in ProvisionInput) (*models.Company, *models.User, error) {
	if _, err := auth.RequireRoot(ctx); err != nil {
		return nil, nil, err
	}
	return s.provision(ctx, in)
}

func (s *CompanyService) provision(ctx context.Context, in ProvisionInput) (*models.Company, *models.User, error) {
	root, err := s.companies.Root(ctx)
	if err != nil {
		if errors.Is(err, store.ErrCompanyNotFound) {
			return nil, nil, ErrNotBootstrapped
		}
		return nil, nil, fmt.Errorf("failed to lookup root company: %w", err)
	}

	return s.create(ctx, in, &root.ID)
}

func (s *CompanyService) create(ctx context.Context, in ProvisionInput, parentID *uuid.UUID) (*models.Company, *models.User, error) {
	name, err := requireText("company name", in.CompanyName, 200)
	if err != nil {
		return nil, nil, err
	}
	ownerName, err := requireText("name", in.OwnerName, 200)
	if err != nil {
		return nil, nil, err
	}
	email, err := normalizeEmail(in.OwnerEmail)
	if err != nil {
		return nil, nil, err
	}
	hash, err := auth.HashPassword(in.OwnerPassword)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if _, err := s.users.LookupByEmail(ctx, email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return nil, nil, fmt.Errorf("failed to check email: %w", err)
	}

	company := &models.Company{
		ID:              newID(),
		Name:            name,
		IsRoot:          parentID == nil,
		IsActive:        true,
		ParentCompanyID: parentID,
	}
	owner := &models.User{
		ID:           newID(),
		CompanyID:    company.ID,
		Email:        email,
		Name:         ownerName,
		PasswordHash: hash,
		Role:         models.RoleOwner,
		IsActive:     true,
	}

	err = tenant.RunWithoutTenantScope(ctx, func(ctx context.Context) error {
		if err := s.companies.Create(ctx, company); err != nil {
			return fmt.Errorf("failed to create company: %w", err)
		}
		if err := s.users.Create(ctx, owner); err != nil {
			if errors.Is(err, store.ErrUserAlreadyExists) {
				return ErrEmailTaken
			}
			return fmt.Errorf("failed to create owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("company_id", company.ID.String()).
		Bool("root", company.IsRoot).
		Msg("Company provisioned")

	return company, owner, nil
}

// List returns every company. Root only.
func (s *CompanyService) List(ctx context.Context, opts store.ListCompaniesOptions) ([]*models.Company, error) {
	if _, err := auth.RequireRoot(ctx); err != nil {
		return nil, err
	}

	return tenant.WithoutScopingValue(ctx, func(ctx context.Context) ([]*models.Company, error) {
		return s.companies.List(ctx, opts)
	})
}

// Get returns any company by id. Root only.
func (s *CompanyService) Get(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	if _, err := auth.RequireRoot(ctx); err != nil {
		return nil, err
	}

	return tenant.WithoutScopingValue(ctx, func(ctx context.Context) (*models.Company, error) {
		return s.companies.Get(ctx, companyID)
	})
}

// CompanyUpdate holds the mutable company fields; nil fields are unchanged.
type CompanyUpdate struct {
	Name     *string
	IsActive *bool
}

// Update renames or activates/deactivates any company. Root only. The root company
// cannot be deactivated.
func (s *CompanyService) Update(ctx context.Context, companyID uuid.UUID, in CompanyUpdate) (*models.Company, error) {
	if _, err := auth.RequireRoot(ctx); err != nil {
		return nil, err
	}

	return tenant.WithoutScopingValue(ctx, func(ctx context.Context) (*models.Company, error) {
		company, err := s.companies.Get(ctx, companyID)
		if err != nil {
			return nil, err
		}

		if in.Name != nil {
			name, err := requireText("company name", *in.Name, 200)
			if err != nil {
				return nil, err
			}
			company.Name = name
		}

		if in.IsActive != nil {
			if company.IsRoot && !*in.IsActive {
				return nil, ErrRootCompanyProtected
			}
			company.IsActive = *in.IsActive
		}

		if err := s.companies.Update(ctx, company); err != nil {
			return nil, fmt.Errorf("failed to update company: %w", err)
		}

		zerolog.Ctx(ctx).Info().
			Str("company_id", company.ID.String()).
			Bool("active", company.IsActive).
			Msg("Company updated")

		return company, nil
	})
}
