package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/sitework/internal/auth"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/store"
	memorystore "github.com/wolfeidau/sitework/internal/store/memory"
	"github.com/wolfeidau/sitework/internal/tenant"
)

const testPassword = "correct horse battery"

type env struct {
	stores   store.Stores
	codec    *auth.Codec
	services *Services
	root     *models.Company
	rootUser *models.User
}

func newEnv(t *testing.T) *env {
	t.Helper()

	codec, err := auth.NewCodec([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	e := &env{stores: memorystore.NewStores(), codec: codec}
	e.services = New(e.stores, codec, Config{})

	e.root, e.rootUser, err = e.services.Companies.Bootstrap(context.Background(), ProvisionInput{
		CompanyName:   "Root Co",
		OwnerName:     "Root Owner",
		OwnerEmail:    "owner@root.example",
		OwnerPassword: testPassword,
	})
	require.NoError(t, err)

	return e
}

// register signs up a new tenant and returns its company and owner.
func (e *env) register(t *testing.T, company, email string) (*models.Company, *models.User) {
	t.Helper()
	session, err := e.services.Accounts.Register(context.Background(), RegisterInput{
		CompanyName: company,
		Name:        "Owner of " + company,
		Email:       email,
		Password:    testPassword,
	})
	require.NoError(t, err)
	return session.Company, session.User
}

// as returns a request context authenticated as user, scoped to its company.
func (e *env) as(t *testing.T, user *models.User) context.Context {
	t.Helper()

	company, err := e.stores.Companies.Lookup(context.Background(), user.CompanyID)
	require.NoError(t, err)

	scope := tenant.NewScope()
	scope.Set(user.CompanyID)
	ctx := tenant.WithScope(context.Background(), scope)

	return auth.WithIdentity(ctx, auth.Identity{
		UserID:       user.ID,
		TenantID:     user.CompanyID,
		Email:        user.Email,
		Role:         user.Role,
		IsRootTenant: company.IsRoot,
	})
}

func emptyStores() store.Stores {
	return memorystore.NewStores()
}

func encodeRefresh(id uuid.UUID, secret []byte) string {
	return base58.Encode(id[:]) + "." + base58.Encode(secret)
}

func currentTenant(ctx context.Context) (uuid.UUID, bool) {
	return tenant.CurrentTenantID(ctx)
}
