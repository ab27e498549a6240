package tenant

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type contextKey int

const scopeContextKey contextKey = iota

// Scope is the per-request tenant cell. The authenticator installs a fresh Scope in
// every request context and clears it when the request ends. Goroutines spawned by a
// handler share the cell, so all access is guarded by a mutex.
type Scope struct {
	mu    sync.Mutex
	state scopeState
}

type scopeState struct {
	tenantID uuid.UUID
	set      bool
	depth    int // number of active escape-hatch suspensions
}

// NewScope returns an unset scope.
func NewScope() *Scope {
	return &Scope{}
}

// Set scopes the cell to tenantID. Setting uuid.Nil leaves the cell unset.
func (s *Scope) Set(tenantID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.tenantID = tenantID
	s.state.set = tenantID != uuid.Nil
}

// Get returns the current tenant and whether one is set.
func (s *Scope) Get() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.tenantID, s.state.set
}

// Suspended reports whether the cell is inside an escape hatch.
func (s *Scope) Suspended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.depth > 0
}

// Clear resets the cell to unset, dropping any suspension.
func (s *Scope) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = scopeState{}
}

func (s *Scope) snapshot() scopeState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// suspend enters an escape hatch and returns the function that restores the exact
// prior state.
func (s *Scope) suspend() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior := s.state
	s.state.depth++

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.state = prior
	}
}

// WithScope returns a copy of ctx carrying s.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey, s)
}

// ScopeFromContext returns the scope cell carried by ctx, or nil.
func ScopeFromContext(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeContextKey).(*Scope)
	return s
}

// CurrentTenantID returns the tenant the request is currently scoped to.
func CurrentTenantID(ctx context.Context) (uuid.UUID, bool) {
	s := ScopeFromContext(ctx)
	if s == nil {
		return uuid.Nil, false
	}
	return s.Get()
}

func stateFromContext(ctx context.Context) (scopeState, bool) {
	s := ScopeFromContext(ctx)
	if s == nil {
		return scopeState{}, false
	}
	return s.snapshot(), true
}
