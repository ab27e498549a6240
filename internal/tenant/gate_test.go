package tenant

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGate(t *testing.T) {
	tenantID := uuid.Must(uuid.NewV7())

	tests := []struct {
		name    string
		ctx     func() context.Context
		want    Filter
		wantErr error
	}{
		{
			name:    "no scope cell",
			ctx:     context.Background,
			wantErr: ErrNoTenantScope,
		},
		{
			name: "unset scope",
			ctx: func() context.Context {
				return WithScope(context.Background(), NewScope())
			},
			wantErr: ErrNoTenantScope,
		},
		{
			name: "scoped",
			ctx: func() context.Context {
				s := NewScope()
				s.Set(tenantID)
				return WithScope(context.Background(), s)
			},
			want: Filter{TenantID: tenantID},
		},
		{
			name: "suspended",
			ctx: func() context.Context {
				s := NewScope()
				s.Set(tenantID)
				_ = s.suspend()
				return WithScope(context.Background(), s)
			},
			want: Filter{Unrestricted: true},
		},
		{
			name: "suspended without tenant",
			ctx: func() context.Context {
				s := NewScope()
				_ = s.suspend()
				return WithScope(context.Background(), s)
			},
			want: Filter{Unrestricted: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Gate(tt.ctx())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestFilterAllows(t *testing.T) {
	a := uuid.Must(uuid.NewV7())
	b := uuid.Must(uuid.NewV7())

	require.True(t, Filter{TenantID: a}.Allows(a))
	require.False(t, Filter{TenantID: a}.Allows(b))
	require.False(t, Filter{}.Allows(uuid.Nil))
	require.True(t, Filter{Unrestricted: true}.Allows(b))
}
