package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Task is a unit of work within a project. A task always belongs to the same
// company as its project.
type Task struct {
	ID          uuid.UUID
	CompanyID   uuid.UUID
	ProjectID   uuid.UUID
	Title       string
	Description string
	Status      TaskStatus
	AssigneeID  *uuid.UUID
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Task) TenantID() uuid.UUID     { return t.CompanyID }
func (t *Task) SetTenantID(id uuid.UUID) { t.CompanyID = id }
