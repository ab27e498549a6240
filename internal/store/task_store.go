package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/sitework/internal/models"
)

// TaskStore defines the interface for task storage operations.
// Every method is gated on the current tenant scope.
type TaskStore interface {
	// Create stores a new task, stamping the current tenant when CompanyID is unset.
	Create(ctx context.Context, task *models.Task) error

	// Get retrieves a task visible through the gate.
	// Returns ErrTaskNotFound if the task doesn't exist or is out of scope.
	Get(ctx context.Context, taskID uuid.UUID) (*models.Task, error)

	// Update updates a task after the tenant guard accepts it.
	// Returns ErrTaskNotFound if the task doesn't exist.
	Update(ctx context.Context, task *models.Task) error

	// ListByProject returns the tasks of a project visible through the gate.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error)
}
