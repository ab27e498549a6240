package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a person who signs in. Users belong to exactly one company.
type User struct {
	ID           uuid.UUID // UUIDv7
	CompanyID    uuid.UUID // Owning tenant
	Email        string    // Unique across all companies
	Name         string
	PasswordHash string // bcrypt
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) TenantID() uuid.UUID     { return u.CompanyID }
func (u *User) SetTenantID(id uuid.UUID) { u.CompanyID = id }
