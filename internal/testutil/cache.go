package testutil

import (
	"context"
	"sync"

	"github.com/dtroode/socialgraph-server/internal/model"
)

var _ model.ProfileCache = (*MemoryProfileCache)(nil)

// MemoryProfileCache is an in-process ProfileCache with the same versioning
// rules as the Redis one.
type MemoryProfileCache struct {
	mu       sync.Mutex
	profiles map[int64]model.PublicProfile
	versions map[int64]uint64
}

func NewMemoryProfileCache() *MemoryProfileCache {
	return &MemoryProfileCache{
		profiles: make(map[int64]model.PublicProfile),
		versions: make(map[int64]uint64),
	}
}

func (c *MemoryProfileCache) Get(_ context.Context, userID int64) (model.PublicProfile, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.profiles[userID]
	return p, ok, nil
}

func (c *MemoryProfileCache) Version(_ context.Context, userID int64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[userID], nil
}

func (c *MemoryProfileCache) Set(_ context.Context, profile model.PublicProfile, version uint64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[profile.ID] != version {
		return false, nil
	}
	c.profiles[profile.ID] = profile
	return true, nil
}

func (c *MemoryProfileCache) Invalidate(_ context.Context, userIDs ...int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range userIDs {
		c.versions[id]++
		delete(c.profiles, id)
	}
	return nil
}
