package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/store"
	"github.com/wolfeidau/sitework/internal/tenant"
)

// CompanyStore implements store.CompanyStore using in-memory storage.
type CompanyStore struct {
	mu sync.RWMutex

	companies map[uuid.UUID]*models.Company // company_id -> Company
}

// NewCompanyStore creates a new in-memory company store.
func NewCompanyStore() *CompanyStore {
	return &CompanyStore{
		companies: make(map[uuid.UUID]*models.Company),
	}
}

// Create creates a new company in memory.
func (s *CompanyStore) Create(ctx context.Context, company *models.Company) error {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return err
	}
	if !filter.Unrestricted {
		return tenant.ErrCrossTenantWrite
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.companies[company.ID]; exists {
		return store.ErrCompanyAlreadyExists
	}

	if company.IsRoot {
		for _, c := range s.companies {
			if c.IsRoot {
				return store.ErrRootCompanyExists
			}
		}
	}

	now := time.Now().UTC()
	if company.CreatedAt.IsZero() {
		company.CreatedAt = now
	}
	company.UpdatedAt = now

	s.companies[company.ID] = cloneCompany(company)

	return nil
}

// Get retrieves a company visible through the gate.
func (s *CompanyStore) Get(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	company, exists := s.companies[companyID]
	if !exists || !filter.Allows(company.ID) {
		return nil, store.ErrCompanyNotFound
	}

	return cloneCompany(company), nil
}

// Update updates an existing company visible through the gate.
func (s *CompanyStore) Update(ctx context.Context, company *models.Company) error {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.companies[company.ID]
	if !exists || !filter.Allows(existing.ID) {
		return store.ErrCompanyNotFound
	}

	// root status and lineage are fixed at creation
	company.IsRoot = existing.IsRoot
	company.ParentCompanyID = existing.ParentCompanyID
	company.CreatedAt = existing.CreatedAt
	company.UpdatedAt = time.Now().UTC()

	s.companies[company.ID] = cloneCompany(company)

	return nil
}

// List returns the companies visible through the gate, oldest first.
func (s *CompanyStore) List(ctx context.Context, opts store.ListCompaniesOptions) ([]*models.Company, error) {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Company
	for _, c := range s.companies {
		if !filter.Allows(c.ID) {
			continue
		}
		if opts.ActiveOnly && !c.IsActive {
			continue
		}
		result = append(result, cloneCompany(c))
	}

	slices.SortFunc(result, func(a, b *models.Company) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return limit(result, opts.Limit), nil
}

// Lookup retrieves a company by ID without consulting the gate.
func (s *CompanyStore) Lookup(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	company, exists := s.companies[companyID]
	if !exists {
		return nil, store.ErrCompanyNotFound
	}

	return cloneCompany(company), nil
}

// Root returns the root company.
func (s *CompanyStore) Root(ctx context.Context) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.companies {
		if c.IsRoot {
			return cloneCompany(c), nil
		}
	}

	return nil, store.ErrCompanyNotFound
}

func cloneCompany(c *models.Company) *models.Company {
	clone := *c
	if c.ParentCompanyID != nil {
		parent := *c.ParentCompanyID
		clone.ParentCompanyID = &parent
	}
	return &clone
}

func limit[T any](items []T, n int) []T {
	n = store.EffectiveLimit(n)
	if len(items) > n {
		return items[:n]
	}
	return items
}
