package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/socialgraph-server/internal/model"
)

var _ model.ProfileCache = (*ProfileCache)(nil)

// ProfileCache keeps computed public profiles in Redis for a short TTL.
// Each user also has a version counter, bumped by Invalidate, that guards
// fills. Version keys never expire so a counter cannot reset under a reader.
type ProfileCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewProfileCache creates a Redis-backed profile cache.
func NewProfileCache(client redis.UniversalClient, ttl time.Duration) *ProfileCache {
	return &ProfileCache{
		client: client,
		ttl:    ttl,
	}
}

func profileKey(userID int64) string {
	return fmt.Sprintf("profile:%d", userID)
}

func versionKey(userID int64) string {
	return fmt.Sprintf("profile:version:%d", userID)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readVersion(ctx context.Context, c getter, userID int64) (uint64, error) {
	version, err := c.Get(ctx, versionKey(userID)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

// Get returns the cached profile. A missing key is not an error.
func (c *ProfileCache) Get(ctx context.Context, userID int64) (model.PublicProfile, bool, error) {
	raw, err := c.client.Get(ctx, profileKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.PublicProfile{}, false, nil
	}
	if err != nil {
		return model.PublicProfile{}, false, fmt.Errorf("failed to get cached profile: %w", err)
	}

	var profile model.PublicProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return model.PublicProfile{}, false, fmt.Errorf("failed to decode cached profile: %w", err)
	}

	return profile, true, nil
}

// Version returns the invalidation counter of a user. Read it before the rows
// a profile is built from.
func (c *ProfileCache) Version(ctx context.Context, userID int64) (uint64, error) {
	version, err := readVersion(ctx, c.client, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get profile version: %w", err)
	}
	return version, nil
}

// Set stores the profile only while the user's version still equals version.
// It reports false when an invalidation happened in between.
func (c *ProfileCache) Set(ctx context.Context, profile model.PublicProfile, version uint64) (bool, error) {
	raw, err := json.Marshal(profile)
	if err != nil {
		return false, fmt.Errorf("failed to encode profile: %w", err)
	}

	stored := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readVersion(ctx, tx, profile.ID)
		if err != nil {
			return err
		}
		if current != version {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, profileKey(profile.ID), raw, c.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		stored = true
		return nil
	}, versionKey(profile.ID))
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to cache profile: %w", err)
	}

	return stored, nil
}

// Invalidate drops the cached profiles of every given user and bumps their
// versions in one transaction.
func (c *ProfileCache) Invalidate(ctx context.Context, userIDs ...int64) error {
	if len(userIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, profileKey(id))
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range userIDs {
			pipe.Incr(ctx, versionKey(id))
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate profiles: %w", err)
	}

	return nil
}

// Ping checks the Redis connection.
func (c *ProfileCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}
