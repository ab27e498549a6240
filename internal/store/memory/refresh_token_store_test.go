package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/store"
)

func TestRefreshTokenStore(t *testing.T) {
	st := NewRefreshTokenStore()
	ctx := context.Background()
	userID := newID()
	now := time.Now().UTC()

	first := &models.RefreshToken{ID: newID(), UserID: userID, TokenHash: "a", ExpiresAt: now.Add(time.Hour)}
	second := &models.RefreshToken{ID: newID(), UserID: userID, TokenHash: "b", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, st.Create(ctx, first))
	require.NoError(t, st.Create(ctx, second))

	got, err := st.Get(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, got.IsValid(now))

	require.NoError(t, st.Revoke(ctx, first.ID, now))
	got, err = st.Get(ctx, first.ID)
	require.NoError(t, err)
	require.False(t, got.IsValid(now))

	// revoking twice keeps the original timestamp
	require.ErrorIs(t, st.Revoke(ctx, first.ID, now.Add(time.Minute)), store.ErrRefreshTokenRevoked)
	got, err = st.Get(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, got.RevokedAt.Equal(now))

	require.NoError(t, st.RevokeAllForUser(ctx, userID, now))
	got, err = st.Get(ctx, second.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RevokedAt)

	require.ErrorIs(t, st.Revoke(ctx, newID(), now), store.ErrRefreshTokenNotFound)
	_, err = st.Get(ctx, newID())
	require.ErrorIs(t, err, store.ErrRefreshTokenNotFound)
}

func TestRefreshTokenStoreRevokeIsSingleUse(t *testing.T) {
	st := NewRefreshTokenStore()
	ctx := context.Background()
	now := time.Now().UTC()

	token := &models.RefreshToken{ID: newID(), UserID: newID(), TokenHash: "a", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, st.Create(ctx, token))

	var (
		wg      sync.WaitGroup
		won     atomic.Int32
		revoked atomic.Int32
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := st.Revoke(ctx, token.ID, now)
			switch {
			case err == nil:
				won.Add(1)
			case errors.Is(err, store.ErrRefreshTokenRevoked):
				revoked.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), won.Load())
	require.Equal(t, int32(15), revoked.Load())
}
