package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore on it
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "storefront"), mr
}

func TestRedisStore_SetGet(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "latestOrder:buyer-1", []byte(`{"id":"d1"}`), time.Hour))

	got, err := store.Get(ctx, "latestOrder:buyer-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"d1"}`, string(got))

	raw, err := mr.Get("storefront:latestOrder:buyer-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"d1"}`, raw)
	assert.Equal(t, time.Hour, mr.TTL("storefront:latestOrder:buyer-1"))
}

func TestRedisStore_Miss(t *testing.T) {
	store, _ := setupTestRedis(t)

	_, err := store.Get(context.Background(), "nothing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Unavailable(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	_, err := store.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	defer client.Close()

	mr.Close()
	_, err = Connect(context.Background(), mr.Addr(), "", 0)
	assert.Error(t, err)
}
