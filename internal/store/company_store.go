package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/sitework/internal/models"
)

// CompanyStore defines the interface for company storage operations.
// A company's own id is its tenant, so reads are gated on the company id: a scoped
// caller only ever sees its own company.
type CompanyStore interface {
	// Create creates a new company. Provisioning is a cross-tenant operation, so the
	// gate must be suspended.
	// Returns ErrCompanyAlreadyExists, or ErrRootCompanyExists for a second root.
	Create(ctx context.Context, company *models.Company) error

	// Get retrieves a company visible through the gate.
	// Returns ErrCompanyNotFound if the company doesn't exist or is out of scope.
	Get(ctx context.Context, companyID uuid.UUID) (*models.Company, error)

	// Update updates a company visible through the gate.
	// Returns ErrCompanyNotFound if the company doesn't exist or is out of scope.
	Update(ctx context.Context, company *models.Company) error

	// List returns companies visible through the gate, ordered by creation.
	List(ctx context.Context, opts ListCompaniesOptions) ([]*models.Company, error)

	// Lookup retrieves a company by ID without consulting the gate. It exists for
	// identity resolution and target validation and must not serve business reads.
	Lookup(ctx context.Context, companyID uuid.UUID) (*models.Company, error)

	// Root returns the root company without consulting the gate.
	// Returns ErrCompanyNotFound before bootstrap.
	Root(ctx context.Context) (*models.Company, error)
}

// ListCompaniesOptions specifies filters for listing companies
type ListCompaniesOptions struct {
	ActiveOnly bool // Only active companies
	Limit      int  // Max results (0 = default)
}
