package tenant

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/sitework/internal/telemetry"
)

// WithoutScoping runs fn with the storage gate suspended. The prior scope state is
// restored on every exit from fn, including a panic. Nested calls each restore the state they
// found. If ctx has no scope cell a temporary one is installed for fn.
func WithoutScoping(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := WithoutScopingValue(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// WithoutScopingValue is WithoutScoping for functions that return a value.
func WithoutScopingValue[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	s := ScopeFromContext(ctx)
	if s == nil {
		s = NewScope()
		ctx = WithScope(ctx, s)
	}

	restore := s.suspend()
	defer restore()

	telemetry.GetMetrics().ScopeEscapes.Add(ctx, 1)
	zerolog.Ctx(ctx).Debug().Msg("tenant scoping suspended")

	return fn(ctx)
}

// RunWithoutTenantScope is the entry point business code uses for sanctioned
// cross-tenant operations.
var RunWithoutTenantScope = WithoutScoping
