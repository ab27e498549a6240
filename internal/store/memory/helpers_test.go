package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/tenant"
)

func scoped(tenantID uuid.UUID) context.Context {
	s := tenant.NewScope()
	s.Set(tenantID)
	return tenant.WithScope(context.Background(), s)
}

func newID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

func seedCompany(s *CompanyStore, name string, root bool) (*models.Company, error) {
	company := &models.Company{ID: newID(), Name: name, IsRoot: root, IsActive: true}
	err := tenant.WithoutScoping(context.Background(), func(ctx context.Context) error {
		return s.Create(ctx, company)
	})
	return company, err
}
