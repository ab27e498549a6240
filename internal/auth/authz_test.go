package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/tenant"
)

func TestResolveTenant(t *testing.T) {
	own := uuid.Must(uuid.NewV7())
	other := uuid.Must(uuid.NewV7())

	member := Identity{UserID: uuid.Must(uuid.NewV7()), TenantID: own, Role: models.RoleOwner}
	root := Identity{UserID: uuid.Must(uuid.NewV7()), TenantID: own, Role: models.RoleMember, IsRootTenant: true}

	tests := []struct {
		name      string
		identity  Identity
		requested *uuid.UUID
		expected  uuid.UUID
		wantErr   error
	}{
		{name: "non-root without target", identity: member, expected: own},
		{name: "non-root targeting other", identity: member, requested: &other, wantErr: ErrForbiddenScope},
		{name: "non-root targeting own", identity: member, requested: &own, wantErr: ErrForbiddenScope},
		{name: "root without target", identity: root, expected: own},
		{name: "root targeting other", identity: root, requested: &other, expected: other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTenant(tt.identity, tt.requested)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Equal(t, uuid.Nil, got)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestRoleOrdering(t *testing.T) {
	tests := []struct {
		role     models.Role
		min      models.Role
		expected bool
	}{
		{models.RoleMember, models.RoleMember, true},
		{models.RoleMember, models.RoleManager, false},
		{models.RoleManager, models.RoleMember, true},
		{models.RoleAdmin, models.RoleManager, true},
		{models.RoleAdmin, models.RoleOwner, false},
		{models.RoleOwner, models.RoleAdmin, true},
		{models.Role("superuser"), models.RoleMember, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+">="+string(tt.min), func(t *testing.T) {
			require.Equal(t, tt.expected, tt.role.AtLeast(tt.min))
		})
	}
}

func TestRequireHelpers(t *testing.T) {
	ctx := context.Background()

	_, err := RequireIdentity(ctx)
	require.ErrorIs(t, err, ErrUnauthenticated)

	ctx = WithIdentity(ctx, Identity{TenantID: uuid.Must(uuid.NewV7()), Role: models.RoleManager})

	_, err = RequireRole(ctx, models.RoleManager)
	require.NoError(t, err)

	_, err = RequireRole(ctx, models.RoleAdmin)
	require.ErrorIs(t, err, ErrInsufficientRole)

	_, err = RequireRoot(ctx)
	require.ErrorIs(t, err, ErrRootRequired)
}

func TestAuthorizerRequire(t *testing.T) {
	f := newFixture(t)
	authorizer := NewAuthorizer(f.companies)

	dormant := f.addCompany(t, "dormant", false)
	dormant.IsActive = false
	require.NoError(t, f.companies.Update(scopedTo(dormant.ID), dormant))

	member := &Identity{UserID: uuid.Must(uuid.NewV7()), TenantID: f.acme.ID, Role: models.RoleMember}
	manager := &Identity{UserID: uuid.Must(uuid.NewV7()), TenantID: f.acme.ID, Role: models.RoleManager}
	root := &Identity{UserID: uuid.Must(uuid.NewV7()), TenantID: f.root.ID, Role: models.RoleAdmin, IsRootTenant: true}

	listing := Policy{MinRole: models.RoleMember, AllowTarget: true}

	tests := []struct {
		name         string
		policy       Policy
		identity     *Identity
		query        string
		expectedCode int
		expectedTID  uuid.UUID
	}{
		{name: "anonymous", policy: listing, expectedCode: http.StatusUnauthorized},
		{name: "member own tenant", policy: listing, identity: member, expectedCode: http.StatusOK, expectedTID: f.acme.ID},
		{name: "member targets other", policy: listing, identity: member, query: "companyId=" + f.root.ID.String(), expectedCode: http.StatusForbidden},
		{name: "member targets own", policy: listing, identity: member, query: "companyId=" + f.acme.ID.String(), expectedCode: http.StatusForbidden},
		{name: "malformed target", policy: listing, identity: root, query: "companyId=not-a-uuid", expectedCode: http.StatusBadRequest},
		{name: "root targets acme", policy: listing, identity: root, query: "companyId=" + f.acme.ID.String(), expectedCode: http.StatusOK, expectedTID: f.acme.ID},
		{name: "root targets unknown", policy: listing, identity: root, query: "companyId=" + uuid.Must(uuid.NewV7()).String(), expectedCode: http.StatusNotFound},
		{name: "root targets inactive", policy: listing, identity: root, query: "companyId=" + dormant.ID.String(), expectedCode: http.StatusNotFound},
		{name: "root without target", policy: listing, identity: root, expectedCode: http.StatusOK, expectedTID: f.root.ID},
		{name: "below min role", policy: Policy{MinRole: models.RoleManager}, identity: member, expectedCode: http.StatusForbidden},
		{name: "at min role", policy: Policy{MinRole: models.RoleManager}, identity: manager, expectedCode: http.StatusOK, expectedTID: f.acme.ID},
		{name: "root only as tenant owner", policy: Policy{RootOnly: true}, identity: &Identity{TenantID: f.acme.ID, Role: models.RoleOwner}, expectedCode: http.StatusForbidden},
		{name: "root only as root", policy: Policy{RootOnly: true}, identity: root, expectedCode: http.StatusOK, expectedTID: f.root.ID},
		{name: "target ignored when not allowed", policy: Policy{}, identity: member, query: "companyId=" + f.root.ID.String(), expectedCode: http.StatusOK, expectedTID: f.acme.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotTenant uuid.UUID
			handler := authorizer.Require(tt.policy)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotTenant, _ = tenant.CurrentTenantID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			r := httptest.NewRequest(http.MethodGet, "/projects?"+tt.query, nil)
			scope := tenant.NewScope()
			ctx := tenant.WithScope(r.Context(), scope)
			if tt.identity != nil {
				ctx = WithIdentity(ctx, *tt.identity)
				scope.Set(tt.identity.TenantID)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r.WithContext(ctx))

			require.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				require.Equal(t, tt.expectedTID, gotTenant)
			}
		})
	}
}
