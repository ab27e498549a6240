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

// ProjectStore implements store.ProjectStore using in-memory storage.
type ProjectStore struct {
	mu sync.RWMutex

	projects map[uuid.UUID]*models.Project // project_id -> Project

	// onDelete is invoked with the lock held when a project is removed.
	onDelete func(projectID uuid.UUID)
}

// NewProjectStore creates a new in-memory project store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{
		projects: make(map[uuid.UUID]*models.Project),
	}
}

// Create stores a new project.
func (s *ProjectStore) Create(ctx context.Context, project *models.Project) error {
	if err := tenant.PrepareCreate(ctx, project); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	clone := *project
	s.projects[project.ID] = &clone

	return nil
}

// Get retrieves a project visible through the gate.
func (s *ProjectStore) Get(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	project, exists := s.projects[projectID]
	if !exists || !filter.Allows(project.CompanyID) {
		return nil, store.ErrProjectNotFound
	}

	clone := *project
	return &clone, nil
}

// Update updates a project after the tenant guard accepts it.
func (s *ProjectStore) Update(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.projects[project.ID]
	if !exists {
		return store.ErrProjectNotFound
	}

	if err := tenant.CheckUpdate(ctx, existing, project); err != nil {
		return err
	}

	project.CreatedBy = existing.CreatedBy
	project.CreatedAt = existing.CreatedAt
	project.UpdatedAt = time.Now().UTC()

	clone := *project
	s.projects[project.ID] = &clone

	return nil
}

// Delete removes a project visible through the gate.
func (s *ProjectStore) Delete(ctx context.Context, projectID uuid.UUID) error {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	project, exists := s.projects[projectID]
	if !exists || !filter.Allows(project.CompanyID) {
		return store.ErrProjectNotFound
	}

	delete(s.projects, projectID)
	if s.onDelete != nil {
		s.onDelete(projectID)
	}

	return nil
}

// List returns the projects visible through the gate, newest first.
func (s *ProjectStore) List(ctx context.Context, opts store.ListProjectsOptions) ([]*models.Project, error) {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Project
	for _, p := range s.projects {
		if !filter.Allows(p.CompanyID) {
			continue
		}
		if opts.Status != "" && p.Status != opts.Status {
			continue
		}
		clone := *p
		result = append(result, &clone)
	}

	slices.SortFunc(result, func(a, b *models.Project) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return limit(result, opts.Limit), nil
}
