package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/store"
	"github.com/wolfeidau/sitework/internal/tenant"
)

const companyColumns = `company_id, name, is_root, is_active, parent_company_id, created_at, updated_at`

// CompanyStore implements store.CompanyStore using PostgreSQL.
type CompanyStore struct {
	pool *pgxpool.Pool
}

// NewCompanyStore creates a new PostgreSQL-backed company store.
// It shares the connection pool with other stores.
func NewCompanyStore(pool *pgxpool.Pool) *CompanyStore {
	return &CompanyStore{
		pool: pool,
	}
}

// Create creates a new company. The gate must be suspended.
func (s *CompanyStore) Create(ctx context.Context, company *models.Company) error {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return err
	}
	if !filter.Unrestricted {
		return tenant.ErrCrossTenantWrite
	}

	now := time.Now().UTC()
	if company.CreatedAt.IsZero() {
		company.CreatedAt = now
	}
	company.UpdatedAt = now

	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = s.pool.Exec(ctx, query,
		company.ID,
		company.Name,
		company.IsRoot,
		company.IsActive,
		company.ParentCompanyID,
		company.CreatedAt,
		company.UpdatedAt,
	)
	if err != nil {
		return mapPostgresError(err)
	}

	log.Debug().
		Str("company_id", company.ID.String()).
		Bool("is_root", company.IsRoot).
		Msg("Created company")

	return nil
}

// Get retrieves a company visible through the gate.
func (s *CompanyStore) Get(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return nil, err
	}

	clause, args := scopeClause(filter, "company_id", []any{companyID})
	query := `SELECT ` + companyColumns + ` FROM companies WHERE company_id = $1 AND ` + clause

	return s.queryOne(ctx, query, args...)
}

// Update updates the mutable fields of a company visible through the gate. Root status
// and lineage are fixed at creation.
func (s *CompanyStore) Update(ctx context.Context, company *models.Company) error {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return err
	}

	clause, args := scopeClause(filter, "company_id",
		[]any{company.ID, company.Name, company.IsActive, time.Now().UTC()})
	query := `
		UPDATE companies
		SET name = $2, is_active = $3, updated_at = $4
		WHERE company_id = $1 AND ` + clause + `
		RETURNING ` + companyColumns

	updated, err := s.queryOne(ctx, query, args...)
	if err != nil {
		return err
	}
	*company = *updated

	log.Debug().
		Str("company_id", company.ID.String()).
		Bool("is_active", company.IsActive).
		Msg("Updated company")

	return nil
}

// List returns the companies visible through the gate, oldest first.
func (s *CompanyStore) List(ctx context.Context, opts store.ListCompaniesOptions) ([]*models.Company, error) {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return nil, err
	}

	clause, args := scopeClause(filter, "company_id", nil)
	query := `SELECT ` + companyColumns + ` FROM companies WHERE ` + clause
	if opts.ActiveOnly {
		query += ` AND is_active`
	}
	args = append(args, store.EffectiveLimit(opts.Limit))
	query += fmt.Sprintf(` ORDER BY created_at ASC LIMIT $%d`, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	companies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Company, error) {
		return scanCompany(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan companies: %w", err)
	}

	return companies, nil
}

// Lookup retrieves a company by ID without consulting the gate.
func (s *CompanyStore) Lookup(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE company_id = $1`
	return s.queryOne(ctx, query, companyID)
}

// Root returns the root company.
func (s *CompanyStore) Root(ctx context.Context) (*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE is_root`
	return s.queryOne(ctx, query)
}

func (s *CompanyStore) queryOne(ctx context.Context, query string, args ...any) (*models.Company, error) {
	company, err := scanCompany(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, store.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

func scanCompany(row pgx.Row) (*models.Company, error) {
	var c models.Company
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.IsRoot,
		&c.IsActive,
		&c.ParentCompanyID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
