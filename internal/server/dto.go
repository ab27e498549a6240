package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/service"
)

const tokenTypeBearer = "Bearer"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	CompanyName string `json:"companyName"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
	All          bool   `json:"all"`
}

type sessionResponse struct {
	AccessToken      string          `json:"accessToken"`
	RefreshToken     string          `json:"refreshToken"`
	TokenType        string          `json:"tokenType"`
	ExpiresAt        time.Time       `json:"expiresAt"`
	RefreshExpiresAt time.Time       `json:"refreshExpiresAt"`
	User             userResponse    `json:"user"`
	Company          companyResponse `json:"company"`
}

type meResponse struct {
	User    userResponse    `json:"user"`
	Company companyResponse `json:"company"`
}

type userResponse struct {
	ID        uuid.UUID   `json:"id"`
	CompanyID uuid.UUID   `json:"companyId"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	IsActive  bool        `json:"isActive"`
	CreatedAt time.Time   `json:"createdAt"`
}

type companyResponse struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	IsRoot          bool       `json:"isRoot"`
	IsActive        bool       `json:"isActive"`
	ParentCompanyID *uuid.UUID `json:"parentCompanyId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type projectRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
}

type projectUpdateRequest struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	Status      *models.ProjectStatus `json:"status"`
	CompanyID   *uuid.UUID            `json:"companyId"`
}

type projectResponse struct {
	ID          uuid.UUID            `json:"id"`
	CompanyID   uuid.UUID            `json:"companyId"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	CreatedBy   uuid.UUID            `json:"createdBy"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

type taskRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	AssigneeID  *uuid.UUID        `json:"assigneeId"`
	DueDate     *time.Time        `json:"dueDate"`
}

type taskUpdateRequest struct {
	Title         *string            `json:"title"`
	Description   *string            `json:"description"`
	Status        *models.TaskStatus `json:"status"`
	AssigneeID    *uuid.UUID         `json:"assigneeId"`
	ClearAssignee bool               `json:"clearAssignee"`
	DueDate       *time.Time         `json:"dueDate"`
	CompanyID     *uuid.UUID         `json:"companyId"`
}

type taskResponse struct {
	ID          uuid.UUID         `json:"id"`
	CompanyID   uuid.UUID         `json:"companyId"`
	ProjectID   uuid.UUID         `json:"projectId"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	AssigneeID  *uuid.UUID        `json:"assigneeId,omitempty"`
	DueDate     *time.Time        `json:"dueDate,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type userCreateRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

type userUpdateRequest struct {
	Name      *string      `json:"name"`
	Role      *models.Role `json:"role"`
	IsActive  *bool        `json:"isActive"`
	CompanyID *uuid.UUID   `json:"companyId"`
}

type companyCreateRequest struct {
	Name          string `json:"name"`
	OwnerName     string `json:"ownerName"`
	OwnerEmail    string `json:"ownerEmail"`
	OwnerPassword string `json:"ownerPassword"`
}

type companyUpdateRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"isActive"`
}

type provisionResponse struct {
	Company companyResponse `json:"company"`
	Owner   userResponse    `json:"owner"`
}

func toSession(s *service.Session) sessionResponse {
	return sessionResponse{
		AccessToken:      s.AccessToken,
		RefreshToken:     s.RefreshToken,
		TokenType:        tokenTypeBearer,
		ExpiresAt:        s.AccessExpiresAt,
		RefreshExpiresAt: s.RefreshExpiresAt,
		User:             toUser(s.User),
		Company:          toCompany(s.Company),
	}
}

func toUser(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func toCompany(c *models.Company) companyResponse {
	return companyResponse{
		ID:              c.ID,
		Name:            c.Name,
		IsRoot:          c.IsRoot,
		IsActive:        c.IsActive,
		ParentCompanyID: c.ParentCompanyID,
		CreatedAt:       c.CreatedAt,
	}
}

func toProject(p *models.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		CompanyID:   p.CompanyID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toTask(t *models.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		CompanyID:   t.CompanyID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		AssigneeID:  t.AssigneeID,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func mapSlice[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
