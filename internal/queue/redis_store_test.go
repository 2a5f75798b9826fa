package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client, func()) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return mr, client, func() {
		client.Close()
		mr.Close()
	}
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	_, client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewRedisSessionStore(client, time.Hour)
	ctx := context.Background()

	id, err := store.Serving(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)

	require.NoError(t, store.SetServing(ctx, "sid-1", 42))
	id, err = store.Serving(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	require.NoError(t, store.ClearServing(ctx, "sid-1"))
	id, err = store.Serving(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)
}

func TestRedisSessionStoreSkipMarker(t *testing.T) {
	_, client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewRedisSessionStore(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.SetSkipped(ctx, "sid-1", 7))
	id, err := store.Skipped(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	// Markers live under separate keys per session.
	id, err = store.Skipped(ctx, "sid-2")
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)

	require.NoError(t, store.ClearSkipped(ctx, "sid-1"))
	id, err = store.Skipped(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)
}

func TestRedisSessionStoreExpiry(t *testing.T) {
	mr, client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewRedisSessionStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.SetServing(ctx, "sid-1", 42))
	assert.True(t, mr.Exists("frontdesk:serving:sid-1"))

	mr.FastForward(2 * time.Minute)

	id, err := store.Serving(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), id, "pin should expire with the session")
}

func TestRedisSessionStoreCorruptValue(t *testing.T) {
	mr, client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewRedisSessionStore(client, time.Minute)
	require.NoError(t, mr.Set("frontdesk:serving:sid-1", "not-a-number"))

	_, err := store.Serving(context.Background(), "sid-1")
	assert.Error(t, err)
}

func TestNewRedisSessionStoreRequiresClient(t *testing.T) {
	assert.Panics(t, func() { NewRedisSessionStore(nil, time.Minute) })
}
