package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/sitework/internal/models"
	memorystore "github.com/wolfeidau/sitework/internal/store/memory"
	"github.com/wolfeidau/sitework/internal/tenant"
)

type fixture struct {
	codec     *Codec
	companies *memorystore.CompanyStore
	users     *memorystore.UserStore
	root      *models.Company
	acme      *models.Company
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		codec:     newTestCodec(t),
		companies: memorystore.NewCompanyStore(),
		users:     memorystore.NewUserStore(),
	}

	f.root = f.addCompany(t, "root", true)
	f.acme = f.addCompany(t, "acme", false)

	return f
}

func (f *fixture) addCompany(t *testing.T, name string, root bool) *models.Company {
	t.Helper()
	company := &models.Company{ID: uuid.Must(uuid.NewV7()), Name: name, IsRoot: root, IsActive: true}
	err := tenant.WithoutScoping(context.Background(), func(ctx context.Context) error {
		return f.companies.Create(ctx, company)
	})
	require.NoError(t, err)
	return company
}

func (f *fixture) addUser(t *testing.T, company *models.Company, email string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		ID:        uuid.Must(uuid.NewV7()),
		CompanyID: company.ID,
		Email:     email,
		Role:      role,
		IsActive:  true,
	}
	err := tenant.WithoutScoping(context.Background(), func(ctx context.Context) error {
		return f.users.Create(ctx, user)
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, _, err := f.codec.Issue(user.ID, user.Email)
	require.NoError(t, err)
	return token
}

type observed struct {
	identity *Identity
	tenantID uuid.UUID
	scoped   bool
	scope    *tenant.Scope
}

func serve(t *testing.T, a *Authenticator, header string) (*httptest.ResponseRecorder, observed) {
	t.Helper()

	var seen observed
	handler := a.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := IdentityFromContext(r.Context()); ok {
			seen.identity = &id
		}
		seen.tenantID, seen.scoped = tenant.CurrentTenantID(r.Context())
		seen.scope = tenant.ScopeFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/projects", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	handler.ServeHTTP(w, r)

	return w, seen
}

func TestAuthenticatorMiddleware(t *testing.T) {
	f := newFixture(t)
	a := NewAuthenticator(f.codec, f.users, f.companies)

	alice := f.addUser(t, f.acme, "alice@acme.example", models.RoleManager)
	admin := f.addUser(t, f.root, "ops@root.example", models.RoleOwner)

	t.Run("valid token", func(t *testing.T) {
		w, seen := serve(t, a, "Bearer "+f.token(t, alice))
		require.Equal(t, http.StatusNoContent, w.Code)
		require.NotNil(t, seen.identity)
		require.Equal(t, Identity{
			UserID:   alice.ID,
			TenantID: f.acme.ID,
			Email:    alice.Email,
			Role:     models.RoleManager,
		}, *seen.identity)
		require.True(t, seen.scoped)
		require.Equal(t, f.acme.ID, seen.tenantID)

		// cleared after the request
		_, ok := seen.scope.Get()
		require.False(t, ok)
	})

	t.Run("root tenant flag", func(t *testing.T) {
		_, seen := serve(t, a, "Bearer "+f.token(t, admin))
		require.NotNil(t, seen.identity)
		require.True(t, seen.identity.IsRootTenant)
	})

	t.Run("case insensitive scheme", func(t *testing.T) {
		_, seen := serve(t, a, "bearer "+f.token(t, alice))
		require.NotNil(t, seen.identity)
	})

	anonymous := []struct {
		name   string
		header string
	}{
		{name: "no header", header: ""},
		{name: "basic scheme", header: "Basic YWxpY2U6cGFzcw=="},
		{name: "garbage token", header: "Bearer garbage"},
		{name: "unknown user", header: "Bearer " + func() string {
			token, _, err := f.codec.Issue(uuid.Must(uuid.NewV7()), "ghost@example.com")
			require.NoError(t, err)
			return token
		}()},
	}

	for _, tt := range anonymous {
		t.Run(tt.name, func(t *testing.T) {
			w, seen := serve(t, a, tt.header)
			require.Equal(t, http.StatusNoContent, w.Code)
			require.Nil(t, seen.identity)
			require.False(t, seen.scoped)
			require.NotNil(t, seen.scope)
		})
	}
}

func TestAuthenticatorInactive(t *testing.T) {
	f := newFixture(t)
	a := NewAuthenticator(f.codec, f.users, f.companies)

	t.Run("inactive user", func(t *testing.T) {
		bob := f.addUser(t, f.acme, "bob@acme.example", models.RoleMember)
		token := f.token(t, bob)

		bob.IsActive = false
		require.NoError(t, f.users.Update(scopedTo(f.acme.ID), bob))

		_, seen := serve(t, a, "Bearer "+token)
		require.Nil(t, seen.identity)
	})

	t.Run("inactive company", func(t *testing.T) {
		other := f.addCompany(t, "other", false)
		carol := f.addUser(t, other, "carol@other.example", models.RoleOwner)
		token := f.token(t, carol)

		other.IsActive = false
		require.NoError(t, f.companies.Update(scopedTo(other.ID), other))

		_, seen := serve(t, a, "Bearer "+token)
		require.Nil(t, seen.identity)
	})
}

type failingUsers struct{}

func (failingUsers) Lookup(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return nil, errors.New("connection refused")
}

func TestAuthenticatorDirectoryFailure(t *testing.T) {
	f := newFixture(t)
	a := NewAuthenticator(f.codec, failingUsers{}, f.companies)

	token, _, err := f.codec.Issue(uuid.Must(uuid.NewV7()), "alice@acme.example")
	require.NoError(t, err)

	w, seen := serve(t, a, "Bearer "+token)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Nil(t, seen.scope)
}

func TestAuthenticatorClearsScopeOnPanic(t *testing.T) {
	f := newFixture(t)
	a := NewAuthenticator(f.codec, f.users, f.companies)
	alice := f.addUser(t, f.acme, "alice@acme.example", models.RoleMember)

	var scope *tenant.Scope
	handler := a.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope = tenant.ScopeFromContext(r.Context())
		panic("handler failed")
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+f.token(t, alice))

	require.Panics(t, func() {
		handler.ServeHTTP(httptest.NewRecorder(), r)
	})

	require.NotNil(t, scope)
	_, ok := scope.Get()
	require.False(t, ok)
}

func scopedTo(tenantID uuid.UUID) context.Context {
	s := tenant.NewScope()
	s.Set(tenantID)
	return tenant.WithScope(context.Background(), s)
}
