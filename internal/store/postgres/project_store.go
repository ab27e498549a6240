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

const projectColumns = `project_id, company_id, name, description, status, created_by, created_at, updated_at`

// ProjectStore implements store.ProjectStore using PostgreSQL.
type ProjectStore struct {
	pool *pgxpool.Pool
}

// NewProjectStore creates a new PostgreSQL-backed project store.
func NewProjectStore(pool *pgxpool.Pool) *ProjectStore {
	return &ProjectStore{
		pool: pool,
	}
}

// Create stores a new project.
func (s *ProjectStore) Create(ctx context.Context, project *models.Project) error {
	if err := tenant.PrepareCreate(ctx, project); err != nil {
		return err
	}

	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		project.ID,
		project.CompanyID,
		project.Name,
		project.Description,
		project.Status,
		project.CreatedBy,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return mapPostgresError(err)
	}

	log.Debug().
		Str("project_id", project.ID.String()).
		Str("company_id", project.CompanyID.String()).
		Msg("Created project")

	return nil
}

// Get retrieves a project visible through the gate.
func (s *ProjectStore) Get(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return nil, err
	}

	clause, args := scopeClause(filter, "company_id", []any{projectID})
	query := `SELECT ` + projectColumns + ` FROM projects WHERE project_id = $1 AND ` + clause

	project, err := scanProject(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, store.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// Update updates a project after the tenant guard accepts it.
func (s *ProjectStore) Update(ctx context.Context, project *models.Project) error {
	lockQuery := `SELECT company_id FROM projects WHERE project_id = $1 FOR UPDATE`

	err := guardedUpdate(ctx, s.pool, lockQuery, project.ID, store.ErrProjectNotFound, project, func(tx pgx.Tx) error {
		query := `
			UPDATE projects
			SET name = $3, description = $4, status = $5, updated_at = $6
			WHERE project_id = $1 AND company_id = $2
			RETURNING created_by, created_at, updated_at
		`
		err := tx.QueryRow(ctx, query,
			project.ID,
			project.CompanyID,
			project.Name,
			project.Description,
			project.Status,
			time.Now().UTC(),
		).Scan(&project.CreatedBy, &project.CreatedAt, &project.UpdatedAt)
		return mapPostgresError(err)
	})
	if err != nil {
		return err
	}

	log.Debug().
		Str("project_id", project.ID.String()).
		Str("status", string(project.Status)).
		Msg("Updated project")

	return nil
}

// Delete removes a project visible through the gate. Its tasks cascade.
func (s *ProjectStore) Delete(ctx context.Context, projectID uuid.UUID) error {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return err
	}

	clause, args := scopeClause(filter, "company_id", []any{projectID})
	query := `DELETE FROM projects WHERE project_id = $1 AND ` + clause

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return store.ErrProjectNotFound
	}

	log.Debug().Str("project_id", projectID.String()).Msg("Deleted project")

	return nil
}

// List returns the projects visible through the gate, newest first.
func (s *ProjectStore) List(ctx context.Context, opts store.ListProjectsOptions) ([]*models.Project, error) {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return nil, err
	}

	clause, args := scopeClause(filter, "company_id", nil)
	query := `SELECT ` + projectColumns + ` FROM projects WHERE ` + clause

	if opts.Status != "" {
		args = append(args, opts.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	args = append(args, store.EffectiveLimit(opts.Limit))
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Project, error) {
		return scanProject(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan projects: %w", err)
	}

	return projects, nil
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID,
		&p.CompanyID,
		&p.Name,
		&p.Description,
		&p.Status,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
