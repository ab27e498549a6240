package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/store"
)

// TaskService manages project tasks for the company a request is scoped to.
type TaskService struct {
	projects store.ProjectStore
	tasks    store.TaskStore
	users    store.UserStore
}

// NewTaskService creates a new task service.
func NewTaskService(stores store.Stores) *TaskService {
	return &TaskService{
		projects: stores.Projects,
		tasks:    stores.Tasks,
		users:    stores.Users,
	}
}

// CreateTaskInput describes a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	AssigneeID  *uuid.UUID
	DueDate     *time.Time
}

// Create adds a task to a project visible to the current tenant.
func (s *TaskService) Create(ctx context.Context, projectID uuid.UUID, in CreateTaskInput) (*models.Task, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	title, err := requireText("title", in.Title, 200)
	if err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.TaskStatusTodo
	}
	if !in.Status.Valid() {
		return nil, invalidf("unknown task status %q", in.Status)
	}
	if err := s.checkAssignee(ctx, in.AssigneeID); err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:          newID(),
		ProjectID:   project.ID,
		Title:       title,
		Description: in.Description,
		Status:      in.Status,
		AssigneeID:  in.AssigneeID,
		DueDate:     in.DueDate,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// ListByProject returns the tasks of a project visible to the current tenant.
func (s *TaskService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.tasks.ListByProject(ctx, projectID)
}

// TaskUpdate holds the mutable task fields; nil fields are unchanged.
type TaskUpdate struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	AssigneeID    *uuid.UUID
	ClearAssignee bool
	DueDate       *time.Time
	CompanyID     *uuid.UUID // Ownership is immutable; a differing value is rejected
}

// Update changes a task visible to the current tenant.
func (s *TaskService) Update(ctx context.Context, taskID uuid.UUID, in TaskUpdate) (*models.Task, error) {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title, err := requireText("title", *in.Title, 200)
		if err != nil {
			return nil, err
		}
		task.Title = title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, invalidf("unknown task status %q", *in.Status)
		}
		task.Status = *in.Status
	}
	switch {
	case in.ClearAssignee:
		task.AssigneeID = nil
	case in.AssigneeID != nil:
		if err := s.checkAssignee(ctx, in.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = in.AssigneeID
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}
	if in.CompanyID != nil {
		task.CompanyID = *in.CompanyID
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// checkAssignee verifies the assignee is a user visible to the current tenant.
func (s *TaskService) checkAssignee(ctx context.Context, assigneeID *uuid.UUID) error {
	if assigneeID == nil {
		return nil
	}
	if _, err := s.users.Get(ctx, *assigneeID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return invalidf("assignee %s not found", assigneeID)
		}
		return err
	}
	return nil
}
