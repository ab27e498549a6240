package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusActive, ProjectStatusOnHold, ProjectStatusCompleted:
		return true
	}
	return false
}

// Project is a construction project owned by a company.
type Project struct {
	ID          uuid.UUID
	CompanyID   uuid.UUID
	Name        string
	Description string
	Status      ProjectStatus
	CreatedBy   uuid.UUID // User who created the project
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Project) TenantID() uuid.UUID     { return p.CompanyID }
func (p *Project) SetTenantID(id uuid.UUID) { p.CompanyID = id }
