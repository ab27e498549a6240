package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is the tenant boundary. Exactly one company is the root tenant; every other
// company references the root as its provisioning parent.
type Company struct {
	ID              uuid.UUID  // UUIDv7
	Name            string     // Display name
	IsRoot          bool       // Root tenant may operate across companies
	IsActive        bool       // Inactive companies cannot authenticate
	ParentCompanyID *uuid.UUID // Provisioning parent, nil for the root
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
