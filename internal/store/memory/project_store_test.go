package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/store"
	"github.com/wolfeidau/sitework/internal/tenant"
)

func TestProjectStore_Isolation(t *testing.T) {
	st := NewProjectStore()
	t1, t2 := newID(), newID()

	p1 := &models.Project{ID: newID(), Name: "tower", Status: models.ProjectStatusActive}
	p2 := &models.Project{ID: newID(), Name: "bridge", Status: models.ProjectStatusPlanning}
	require.NoError(t, st.Create(scoped(t1), p1))
	require.NoError(t, st.Create(scoped(t2), p2))
	require.Equal(t, t1, p1.CompanyID)
	require.Equal(t, t2, p2.CompanyID)

	list, err := st.List(scoped(t1), store.ListProjectsOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, p1.ID, list[0].ID)

	_, err = st.Get(scoped(t1), p2.ID)
	require.ErrorIs(t, err, store.ErrProjectNotFound)

	err = st.Delete(scoped(t1), p2.ID)
	require.ErrorIs(t, err, store.ErrProjectNotFound)

	all, err := tenant.WithoutScopingValue(scoped(t1), func(ctx context.Context) ([]*models.Project, error) {
		return st.List(ctx, store.ListProjectsOptions{})
	})
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = st.List(context.Background(), store.ListProjectsOptions{})
	require.ErrorIs(t, err, tenant.ErrNoTenantScope)
}

func TestProjectStore_ListFilters(t *testing.T) {
	st := NewProjectStore()
	t1 := newID()

	for _, status := range []models.ProjectStatus{models.ProjectStatusActive, models.ProjectStatusActive, models.ProjectStatusCompleted} {
		require.NoError(t, st.Create(scoped(t1), &models.Project{ID: newID(), Name: "p", Status: status}))
	}

	active, err := st.List(scoped(t1), store.ListProjectsOptions{Status: models.ProjectStatusActive})
	require.NoError(t, err)
	require.Len(t, active, 2)

	limited, err := st.List(scoped(t1), store.ListProjectsOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestProjectStore_UpdateGuard(t *testing.T) {
	st := NewProjectStore()
	t1, t2 := newID(), newID()

	project := &models.Project{ID: newID(), Name: "tower", Status: models.ProjectStatusActive}
	require.NoError(t, st.Create(scoped(t1), project))

	moved := *project
	moved.CompanyID = t2
	require.ErrorIs(t, st.Update(scoped(t1), &moved), tenant.ErrOwnershipChange)

	foreign := *project
	foreign.Name = "hijacked"
	require.ErrorIs(t, st.Update(scoped(t2), &foreign), tenant.ErrCrossTenantWrite)

	// an escaped update may touch any tenant but still cannot move ownership
	err := tenant.WithoutScoping(scoped(t2), func(ctx context.Context) error {
		renamed := *project
		renamed.Name = "renamed by root"
		return st.Update(ctx, &renamed)
	})
	require.NoError(t, err)

	err = tenant.WithoutScoping(scoped(t2), func(ctx context.Context) error {
		return st.Update(ctx, &moved)
	})
	require.ErrorIs(t, err, tenant.ErrOwnershipChange)

	stored, err := st.Get(scoped(t1), project.ID)
	require.NoError(t, err)
	require.Equal(t, t1, stored.CompanyID)
	require.Equal(t, "renamed by root", stored.Name)
}

func TestProjectStore_ConcurrentTenants(t *testing.T) {
	st := NewProjectStore()
	tenants := make([]uuid.UUID, 20)
	for i := range tenants {
		tenants[i] = newID()
	}

	var wg sync.WaitGroup
	for _, tenantID := range tenants {
		wg.Add(1)
		go func(tenantID uuid.UUID) {
			defer wg.Done()
			ctx := scoped(tenantID)
			for range 10 {
				_ = st.Create(ctx, &models.Project{ID: newID(), Name: tenantID.String()})
			}
		}(tenantID)
	}
	wg.Wait()

	for _, tenantID := range tenants {
		list, err := st.List(scoped(tenantID), store.ListProjectsOptions{})
		require.NoError(t, err)
		require.Len(t, list, 10)
		for _, p := range list {
			require.Equal(t, tenantID, p.CompanyID)
			require.Equal(t, tenantID.String(), p.Name)
		}
	}
}
