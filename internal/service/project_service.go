package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/sitework/internal/auth"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/store"
)

// ProjectService manages the projects of the company a request is scoped to.
type ProjectService struct {
	projects store.ProjectStore
}

// NewProjectService creates a new project service.
func NewProjectService(stores store.Stores) *ProjectService {
	return &ProjectService{projects: stores.Projects}
}

// CreateProjectInput describes a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	Status      models.ProjectStatus
}

// Create stores a new project owned by the current tenant.
func (s *ProjectService) Create(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	id, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	name, err := requireText("name", in.Name, 200)
	if err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.ProjectStatusPlanning
	}
	if !in.Status.Valid() {
		return nil, invalidf("unknown project status %q", in.Status)
	}

	project := &models.Project{
		ID:          newID(),
		Name:        name,
		Description: in.Description,
		Status:      in.Status,
		CreatedBy:   id.UserID,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// Get returns a project visible to the current tenant.
func (s *ProjectService) Get(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	return s.projects.Get(ctx, projectID)
}

// List returns the projects visible to the current tenant.
func (s *ProjectService) List(ctx context.Context, opts store.ListProjectsOptions) ([]*models.Project, error) {
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, invalidf("unknown project status %q", opts.Status)
	}
	return s.projects.List(ctx, opts)
}

// ProjectUpdate holds the mutable project fields; nil fields are unchanged.
type ProjectUpdate struct {
	Name        *string
	Description *string
	Status      *models.ProjectStatus
	CompanyID   *uuid.UUID // Ownership is immutable; a differing value is rejected
}

// Update changes a project visible to the current tenant.
func (s *ProjectService) Update(ctx context.Context, projectID uuid.UUID, in ProjectUpdate) (*models.Project, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name, err := requireText("name", *in.Name, 200)
		if err != nil {
			return nil, err
		}
		project.Name = name
	}
	if in.Description != nil {
		project.Description = *in.Description
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, invalidf("unknown project status %q", *in.Status)
		}
		project.Status = *in.Status
	}
	if in.CompanyID != nil {
		project.CompanyID = *in.CompanyID
	}

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// Delete removes a project visible to the current tenant, with its tasks.
func (s *ProjectService) Delete(ctx context.Context, projectID uuid.UUID) error {
	return s.projects.Delete(ctx, projectID)
}
