package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placementhub/placement-engine/internal/core"
	"github.com/placementhub/placement-engine/internal/testutil"
)

func TestRedisCacheRepo_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	repo := NewRedisCacheRepo(client)
	ctx := context.Background()

	t.Run("set and get with ttl", func(t *testing.T) {
		key := core.ActorCacheKey("a-1")
		require.NoError(t, repo.Set(ctx, key, []byte(`{"id":"a-1"}`), time.Minute))

		got, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"a-1"}`, string(got))

		ttl := client.TTL(ctx, key).Val()
		assert.True(t, ttl > 0 && ttl <= time.Minute)
	})

	t.Run("missing key reads as nil", func(t *testing.T) {
		got, err := repo.Get(ctx, core.ActorCacheKey("missing"))
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("exists and delete", func(t *testing.T) {
		key := core.RevokedTokenKey("jti-1")
		require.NoError(t, repo.Set(ctx, key, []byte("1"), time.Minute))

		ok, err := repo.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)

		deleted, err := repo.Delete(ctx, key)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, key)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, repo.Health(ctx))
	})
}

func TestRedisCacheRepo_EmptyKey(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	repo := NewRedisCacheRepo(client)
	ctx := context.Background()

	require.ErrorIs(t, repo.Set(ctx, "", []byte("v"), time.Minute), errEmptyCacheKey)
	_, err := repo.Get(ctx, "")
	require.ErrorIs(t, err, errEmptyCacheKey)
	_, err = repo.Delete(ctx, "")
	require.ErrorIs(t, err, errEmptyCacheKey)
	_, err = repo.Exists(ctx, "")
	require.ErrorIs(t, err, errEmptyCacheKey)
}
