package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/socialgraph-server/internal/model"
)

func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestProfileKey(t *testing.T) {
	assert.Equal(t, "profile:42", profileKey(42))
	assert.Equal(t, "profile:version:42", versionKey(42))
}

func TestProfileCache_Invalidate_NoIDs(t *testing.T) {
	c := NewProfileCache(unreachableClient(t), time.Minute)

	assert.NoError(t, c.Invalidate(context.Background()))
}

func TestProfileCache_ConnectionErrors(t *testing.T) {
	t.Parallel()

	c := NewProfileCache(unreachableClient(t), time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, 1)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "failed to get cached profile")

	_, err = c.Version(ctx, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get profile version")

	stored, err := c.Set(ctx, model.PublicProfile{ID: 1}, 0)
	require.Error(t, err)
	assert.False(t, stored)
	assert.Contains(t, err.Error(), "failed to cache profile")

	err = c.Invalidate(ctx, 1, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to invalidate profiles")

	err = c.Ping(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping redis")
}
