package cache_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/hotel-booking/internal/cache"
	"github.com/josh-kwaku/hotel-booking/internal/testutil"
)

func TestIdempotencyStore(t *testing.T) {
	rdb := testutil.SetupTestRedis(t)
	store := cache.NewIdempotencyStore(cache.NewStore(rdb, "idem"), time.Hour)
	ctx := context.Background()

	userID := uuid.New()

	got, err := store.Get(ctx, "key-1", userID)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err := store.Reserve(ctx, "key-1", userID, "hash-a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "key-1", userID, "hash-a")
	require.NoError(t, err)
	assert.False(t, ok, "second reservation must lose")

	got, err = store.Get(ctx, "key-1", userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Pending)
	assert.Equal(t, "hash-a", got.RequestHash)

	require.NoError(t, store.Set(ctx, &cache.IdempotencyEntry{
		Key:          "key-1",
		UserID:       userID,
		RequestHash:  "hash-a",
		StatusCode:   http.StatusCreated,
		ResponseBody: []byte(`{"success":true}`),
		CreatedAt:    time.Now().UTC(),
	}))

	got, err = store.Get(ctx, "key-1", userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Pending)
	assert.Equal(t, http.StatusCreated, got.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(got.ResponseBody))

	ttl, err := rdb.TTL(ctx, "idem:"+userID.String()+":key-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, cache.PendingTTL, "completed entries keep the full ttl")

	other, err := store.Get(ctx, "key-1", uuid.New())
	require.NoError(t, err)
	assert.Nil(t, other, "keys are scoped per user")
}

func TestIdempotencyStoreRelease(t *testing.T) {
	rdb := testutil.SetupTestRedis(t)
	store := cache.NewIdempotencyStore(cache.NewStore(rdb, "idem"), time.Hour)
	ctx := context.Background()
	userID := uuid.New()

	ok, err := store.Reserve(ctx, "key-2", userID, "hash")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.Release(ctx, "key-2", userID))

	got, err := store.Get(ctx, "key-2", userID)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err = store.Reserve(ctx, "key-2", userID, "hash")
	require.NoError(t, err)
	assert.True(t, ok, "released keys can be reserved again")
}

func TestStoreCount(t *testing.T) {
	rdb := testutil.SetupTestRedis(t)
	store := cache.NewStore(rdb, "logs")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, cache.NewStore(rdb, "other").Set(ctx, "c", []byte("3"), time.Minute))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, store.Delete(ctx, "a"))
	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, cache.ErrMiss)
}
