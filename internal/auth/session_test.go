package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionStore(t *testing.T, ttl time.Duration) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewSessionStore(rdb, ttl), mr
}

func TestSessionLifecycle(t *testing.T) {
	store, mr := newTestSessionStore(t, time.Hour)
	ctx := context.Background()
	user := Identity{Provider: ProviderKakao, ID: "42", Email: "kakao_42@kakao.com", Name: "민수"}

	session, err := store.Create(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, user, session.User)
	assert.Equal(t, time.Hour, mr.TTL(sessionKeyPrefix+session.ID))

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, user, got.User)

	require.NoError(t, store.Delete(ctx, session.ID))

	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, store.Delete(ctx, session.ID), ErrSessionNotFound)
}

func TestSessionExpires(t *testing.T) {
	store, mr := newTestSessionStore(t, time.Minute)
	ctx := context.Background()

	session, err := store.Create(ctx, Identity{Provider: ProviderGoogle, ID: "1"})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRejectsEmpty(t *testing.T) {
	store, _ := newTestSessionStore(t, 0)

	_, err := store.Create(context.Background(), Identity{Provider: ProviderKakao})
	assert.ErrorIs(t, err, ErrMissingID)

	_, err = store.Get(context.Background(), " ")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("  bearer   abc "))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken("Bearer"))
}
