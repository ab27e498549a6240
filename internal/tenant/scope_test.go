package tenant

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestScopeSetGetClear(t *testing.T) {
	s := NewScope()

	_, ok := s.Get()
	require.False(t, ok)

	tenantID := uuid.Must(uuid.NewV7())
	s.Set(tenantID)

	got, ok := s.Get()
	require.True(t, ok)
	require.Equal(t, tenantID, got)

	s.Clear()
	_, ok = s.Get()
	require.False(t, ok)
}

func TestScopeSetNilLeavesUnset(t *testing.T) {
	s := NewScope()
	s.Set(uuid.Nil)

	_, ok := s.Get()
	require.False(t, ok)
}

func TestClearDropsSuspension(t *testing.T) {
	s := NewScope()
	s.Set(uuid.Must(uuid.NewV7()))
	_ = s.suspend()
	require.True(t, s.Suspended())

	s.Clear()
	require.False(t, s.Suspended())
}

func TestCurrentTenantID(t *testing.T) {
	_, ok := CurrentTenantID(context.Background())
	require.False(t, ok)

	tenantID := uuid.Must(uuid.NewV7())
	s := NewScope()
	s.Set(tenantID)
	ctx := WithScope(context.Background(), s)

	got, ok := CurrentTenantID(ctx)
	require.True(t, ok)
	require.Equal(t, tenantID, got)
}

func TestScopesAreIndependentAcrossRequests(t *testing.T) {
	tenants := make([]uuid.UUID, 50)
	for i := range tenants {
		tenants[i] = uuid.Must(uuid.NewV7())
	}

	var wg sync.WaitGroup
	errs := make(chan string, len(tenants))

	for _, tenantID := range tenants {
		wg.Add(1)
		go func(tenantID uuid.UUID) {
			defer wg.Done()

			s := NewScope()
			defer s.Clear()
			ctx := WithScope(context.Background(), s)
			s.Set(tenantID)

			for range 100 {
				filter, err := Gate(ctx)
				if err != nil || filter.TenantID != tenantID {
					errs <- tenantID.String()
					return
				}
			}
		}(tenantID)
	}

	wg.Wait()
	close(errs)

	var leaked []string
	for id := range errs {
		leaked = append(leaked, id)
	}
	require.Empty(t, leaked)
}
