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

// TaskStore implements store.TaskStore using in-memory storage.
type TaskStore struct {
	mu sync.RWMutex

	tasks    map[uuid.UUID]*models.Task // task_id -> Task
	projects *ProjectStore
}

// NewTaskStore creates a new in-memory task store. When projects is non-nil, a task must
// belong to an existing project of its own company, and deleting a project removes its
// tasks.
func NewTaskStore(projects *ProjectStore) *TaskStore {
	s := &TaskStore{
		tasks:    make(map[uuid.UUID]*models.Task),
		projects: projects,
	}
	if projects != nil {
		projects.onDelete = s.deleteByProject
	}
	return s
}

// Create stores a new task.
func (s *TaskStore) Create(ctx context.Context, task *models.Task) error {
	if err := tenant.PrepareCreate(ctx, task); err != nil {
		return err
	}

	// Same lock order as ProjectStore.Delete: projects, then tasks.
	if s.projects != nil {
		s.projects.mu.RLock()
		defer s.projects.mu.RUnlock()

		project, exists := s.projects.projects[task.ProjectID]
		if !exists || project.CompanyID != task.CompanyID {
			return store.ErrProjectNotFound
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	s.tasks[task.ID] = cloneTask(task)

	return nil
}

// Get retrieves a task visible through the gate.
func (s *TaskStore) Get(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	task, exists := s.tasks[taskID]
	if !exists || !filter.Allows(task.CompanyID) {
		return nil, store.ErrTaskNotFound
	}

	return cloneTask(task), nil
}

// Update updates a task after the tenant guard accepts it.
func (s *TaskStore) Update(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.tasks[task.ID]
	if !exists {
		return store.ErrTaskNotFound
	}

	if err := tenant.CheckUpdate(ctx, existing, task); err != nil {
		return err
	}

	task.ProjectID = existing.ProjectID
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = time.Now().UTC()

	s.tasks[task.ID] = cloneTask(task)

	return nil
}

// ListByProject returns the tasks of a project visible through the gate, oldest first.
func (s *TaskStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error) {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Task
	for _, t := range s.tasks {
		if t.ProjectID != projectID || !filter.Allows(t.CompanyID) {
			continue
		}
		result = append(result, cloneTask(t))
	}

	slices.SortFunc(result, func(a, b *models.Task) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return result, nil
}

func (s *TaskStore) deleteByProject(projectID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.tasks {
		if t.ProjectID == projectID {
			delete(s.tasks, id)
		}
	}
}

func cloneTask(t *models.Task) *models.Task {
	clone := *t
	if t.AssigneeID != nil {
		assignee := *t.AssigneeID
		clone.AssigneeID = &assignee
	}
	if t.DueDate != nil {
		due := *t.DueDate
		clone.DueDate = &due
	}
	return &clone
}
