//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/socialgraph-server/internal/model"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestProfileCache_Integration(t *testing.T) {
	client := setupRedis(t)
	c := NewProfileCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	_, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	profile := model.PublicProfile{
		ID:             1,
		Username:       "ana",
		Following:      model.IDList{2, 3},
		Followers:      model.IDList{},
		FollowingCount: 2,
	}
	stored, err := c.Set(ctx, profile, 0)
	require.NoError(t, err)
	require.True(t, stored)
	stored, err = c.Set(ctx, model.PublicProfile{ID: 2, Username: "beto"}, 0)
	require.NoError(t, err)
	require.True(t, stored)

	got, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ana", got.Username)
	assert.Equal(t, model.IDList{2, 3}, got.Following)
	assert.Equal(t, 2, got.FollowingCount)

	ttl, err := client.TTL(ctx, profileKey(1)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Invalidate(ctx, 1, 2))

	_, ok, err = c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = c.Get(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProfileCache_StaleFillIsDropped(t *testing.T) {
	client := setupRedis(t)
	c := NewProfileCache(client, time.Minute)
	ctx := context.Background()

	version, err := c.Version(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, version)

	require.NoError(t, c.Invalidate(ctx, 7))

	stored, err := c.Set(ctx, model.PublicProfile{ID: 7, FollowersCount: 0}, version)
	require.NoError(t, err)
	assert.False(t, stored)

	_, ok, err := c.Get(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	version, err = c.Version(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), version)

	stored, err = c.Set(ctx, model.PublicProfile{ID: 7, FollowersCount: 1}, version)
	require.NoError(t, err)
	assert.True(t, stored)

	got, ok, err := c.Get(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, got.FollowersCount)
}
