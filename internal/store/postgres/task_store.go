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

const taskColumns = `task_id, company_id, project_id, title, description, status, assignee_id, due_date, created_at, updated_at`

// TaskStore implements store.TaskStore using PostgreSQL.
type TaskStore struct {
	pool *pgxpool.Pool
}

// NewTaskStore creates a new PostgreSQL-backed task store.
func NewTaskStore(pool *pgxpool.Pool) *TaskStore {
	return &TaskStore{
		pool: pool,
	}
}

// Create stores a new task.
func (s *TaskStore) Create(ctx context.Context, task *models.Task) error {
	if err := tenant.PrepareCreate(ctx, task); err != nil {
		return err
	}

	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		task.ID,
		task.CompanyID,
		task.ProjectID,
		task.Title,
		task.Description,
		task.Status,
		task.AssigneeID,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return mapPostgresError(err)
	}

	log.Debug().
		Str("task_id", task.ID.String()).
		Str("project_id", task.ProjectID.String()).
		Str("company_id", task.CompanyID.String()).
		Msg("Created task")

	return nil
}

// Get retrieves a task visible through the gate.
func (s *TaskStore) Get(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return nil, err
	}

	clause, args := scopeClause(filter, "company_id", []any{taskID})
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE task_id = $1 AND ` + clause

	task, err := scanTask(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// Update updates a task after the tenant guard accepts it. A task never moves between
// projects.
func (s *TaskStore) Update(ctx context.Context, task *models.Task) error {
	lockQuery := `SELECT company_id FROM tasks WHERE task_id = $1 FOR UPDATE`

	err := guardedUpdate(ctx, s.pool, lockQuery, task.ID, store.ErrTaskNotFound, task, func(tx pgx.Tx) error {
		query := `
			UPDATE tasks
			SET title = $3, description = $4, status = $5, assignee_id = $6, due_date = $7, updated_at = $8
			WHERE task_id = $1 AND company_id = $2
			RETURNING project_id, created_at, updated_at
		`
		err := tx.QueryRow(ctx, query,
			task.ID,
			task.CompanyID,
			task.Title,
			task.Description,
			task.Status,
			task.AssigneeID,
			task.DueDate,
			time.Now().UTC(),
		).Scan(&task.ProjectID, &task.CreatedAt, &task.UpdatedAt)
		return mapPostgresError(err)
	})
	if err != nil {
		return err
	}

	log.Debug().
		Str("task_id", task.ID.String()).
		Str("status", string(task.Status)).
		Msg("Updated task")

	return nil
}

// ListByProject returns the tasks of a project visible through the gate, oldest first.
func (s *TaskStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error) {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return nil, err
	}

	clause, args := scopeClause(filter, "company_id", []any{projectID})
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 AND ` + clause + ` ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Task, error) {
		return scanTask(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan tasks: %w", err)
	}

	return tasks, nil
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(
		&t.ID,
		&t.CompanyID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.AssigneeID,
		&t.DueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
