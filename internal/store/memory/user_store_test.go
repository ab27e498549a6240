package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/store"
	"github.com/wolfeidau/sitework/internal/tenant"
)

func TestUserStore_Create(t *testing.T) {
	t.Run("stamps current tenant", func(t *testing.T) {
		st := NewUserStore()
		companyID := newID()

		user := &models.User{ID: newID(), Email: "a@example.com", Role: models.RoleMember, IsActive: true}
		require.NoError(t, st.Create(scoped(companyID), user))
		require.Equal(t, companyID, user.CompanyID)
	})

	t.Run("emails are unique across companies", func(t *testing.T) {
		st := NewUserStore()

		require.NoError(t, st.Create(scoped(newID()), &models.User{ID: newID(), Email: "a@example.com"}))

		err := st.Create(scoped(newID()), &models.User{ID: newID(), Email: "A@Example.com"})
		require.ErrorIs(t, err, store.ErrUserAlreadyExists)
	})

	t.Run("foreign tenant rejected outside escape hatch", func(t *testing.T) {
		st := NewUserStore()

		err := st.Create(scoped(newID()), &models.User{ID: newID(), CompanyID: newID(), Email: "a@example.com"})
		require.ErrorIs(t, err, tenant.ErrCrossTenantWrite)
	})

	t.Run("no scope", func(t *testing.T) {
		st := NewUserStore()

		err := st.Create(context.Background(), &models.User{ID: newID(), Email: "a@example.com"})
		require.ErrorIs(t, err, tenant.ErrNoTenantScope)
	})
}

func TestUserStore_Isolation(t *testing.T) {
	st := NewUserStore()
	t1, t2 := newID(), newID()

	alice := &models.User{ID: newID(), Email: "alice@t1.example", Role: models.RoleOwner, IsActive: true}
	bob := &models.User{ID: newID(), Email: "bob@t2.example", Role: models.RoleMember, IsActive: true}
	require.NoError(t, st.Create(scoped(t1), alice))
	require.NoError(t, st.Create(scoped(t2), bob))

	_, err := st.Get(scoped(t1), bob.ID)
	require.ErrorIs(t, err, store.ErrUserNotFound)

	users, err := st.List(scoped(t1), store.ListUsersOptions{})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, alice.ID, users[0].ID)

	// identity lookups are not gated
	got, err := st.Lookup(context.Background(), bob.ID)
	require.NoError(t, err)
	require.Equal(t, t2, got.CompanyID)

	got, err = st.LookupByEmail(context.Background(), "ALICE@t1.example")
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.ID)
}

func TestUserStore_Update(t *testing.T) {
	st := NewUserStore()
	t1, t2 := newID(), newID()

	alice := &models.User{ID: newID(), Email: "alice@example.com", Role: models.RoleMember, IsActive: true}
	require.NoError(t, st.Create(scoped(t1), alice))

	tests := []struct {
		name    string
		ctx     context.Context
		mutate  func(u *models.User)
		wantErr error
	}{
		{
			name:    "move to another company",
			ctx:     scoped(t1),
			mutate:  func(u *models.User) { u.CompanyID = t2 },
			wantErr: tenant.ErrOwnershipChange,
		},
		{
			name:    "update from foreign scope",
			ctx:     scoped(t2),
			mutate:  func(u *models.User) { u.Name = "mallory" },
			wantErr: tenant.ErrCrossTenantWrite,
		},
		{
			name:   "promote within company",
			ctx:    scoped(t1),
			mutate: func(u *models.User) { u.Role = models.RoleManager },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update, err := st.Lookup(context.Background(), alice.ID)
			require.NoError(t, err)
			tt.mutate(update)

			err = st.Update(tt.ctx, update)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			stored, err := st.Lookup(context.Background(), alice.ID)
			require.NoError(t, err)
			require.Equal(t, t1, stored.CompanyID)
		})
	}
}
