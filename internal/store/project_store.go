package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/sitework/internal/models"
)

// ProjectStore defines the interface for project storage operations.
// Every method is gated on the current tenant scope.
type ProjectStore interface {
	// Create stores a new project, stamping the current tenant when CompanyID is unset.
	Create(ctx context.Context, project *models.Project) error

	// Get retrieves a project visible through the gate.
	// Returns ErrProjectNotFound if the project doesn't exist or is out of scope.
	Get(ctx context.Context, projectID uuid.UUID) (*models.Project, error)

	// Update updates a project after the tenant guard accepts it.
	// Returns ErrProjectNotFound if the project doesn't exist.
	Update(ctx context.Context, project *models.Project) error

	// Delete removes a project and its tasks.
	// Returns ErrProjectNotFound if the project doesn't exist or is out of scope.
	Delete(ctx context.Context, projectID uuid.UUID) error

	// List returns projects visible through the gate, newest first.
	List(ctx context.Context, opts ListProjectsOptions) ([]*models.Project, error)
}

// ListProjectsOptions specifies filters for listing projects
type ListProjectsOptions struct {
	Status models.ProjectStatus // Filter by status (empty = all)
	Limit  int                  // Max results (0 = default)
}
