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

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStoreWithClient(client, "cli_test"), mr
}

func TestRedisStore_MissReturnsZeroToken(t *testing.T) {
	store, _ := newTestRedisStore(t)

	token, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, token.Valid(time.Now()), "empty store must not yield a usable token")
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	want := Token{Value: "t-abc", ExpiresAt: time.Now().Add(2 * time.Hour)}
	require.NoError(t, store.Save(ctx, want))

	ttl := mr.TTL("feishubot:token:cli_test")
	assert.Greater(t, ttl, time.Hour, "key must expire with the token")

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Value, got.Value)
	assert.True(t, got.ExpiresAt.Equal(want.ExpiresAt))
}

func TestRedisStore_ExpiredTokenDeletesKey(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Token{Value: "live", ExpiresAt: time.Now().Add(time.Hour)}))
	require.True(t, mr.Exists("feishubot:token:cli_test"))

	require.NoError(t, store.Save(ctx, Token{Value: "dead", ExpiresAt: time.Now().Add(-time.Minute)}))
	assert.False(t, mr.Exists("feishubot:token:cli_test"), "saving an expired token must clear the cache")

	token, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, token.Valid(time.Now()))
}

func TestRedisStore_ForeignValueIsMiss(t *testing.T) {
	store, mr := newTestRedisStore(t)

	require.NoError(t, mr.Set("feishubot:token:cli_test", "not json"))

	token, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Token{}, token)
}
