// Package cache is the content-addressed workflow cache keyed by
// (workflow_id, version_number), per spec §4.3. It sits in front of
// internal/storage's VersionRepository so the hot execution path never
// re-parses a workflow snapshot it has already loaded.
package cache

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/openobserve/swisspipe/pkg/models"
)

// VersionLoader is the subset of internal/storage.VersionRepository the
// cache needs. Keeping it as an interface lets tests substitute an in-memory
// loader without touching Postgres.
type VersionLoader interface {
	GetLatest(ctx context.Context, workflowID string) (*models.WorkflowVersion, error)
	Get(ctx context.Context, workflowID string, versionNumber int) (*models.WorkflowVersion, error)
}

type key struct {
	workflowID    string
	versionNumber int
}

// WorkflowCache bounds the number of parsed workflow snapshots held in
// memory with an LRU eviction policy, and collapses concurrent loads of the
// same key into a single storage round-trip via singleflight.
type WorkflowCache struct {
	loader VersionLoader
	lru    *lru.Cache[key, *models.WorkflowVersion]
	group  singleflight.Group
	redis  *RedisTier // optional secondary tier; nil means LRU-and-loader only

	mu      sync.RWMutex
	current map[string]int // workflowID -> the version_number last resolved as "latest"
}

// New builds a WorkflowCache bounded to capacity entries, with no secondary
// Redis tier.
func New(loader VersionLoader, capacity int) (*WorkflowCache, error) {
	return NewWithRedis(loader, capacity, nil)
}

// NewWithRedis builds a WorkflowCache backed by an in-process LRU plus an
// optional Redis secondary tier: an LRU miss checks Redis before falling
// through to loader, and a loader fetch populates both tiers. A nil redis
// tier behaves exactly like New.
func NewWithRedis(loader VersionLoader, capacity int, redis *RedisTier) (*WorkflowCache, error) {
	if capacity <= 0 {
		capacity = 256
	}
	c, err := lru.New[key, *models.WorkflowVersion](capacity)
	if err != nil {
		return nil, fmt.Errorf("build workflow cache: %w", err)
	}
	return &WorkflowCache{
		loader:  loader,
		lru:     c,
		redis:   redis,
		current: make(map[string]int),
	}, nil
}

// GetOrLoad resolves the current (latest-committed) version of a workflow.
// A concurrent call for the same workflowID blocks on the same in-flight
// load rather than issuing a second query.
func (c *WorkflowCache) GetOrLoad(ctx context.Context, workflowID string) (*models.WorkflowVersion, error) {
	v, ok, err := c.cachedCurrent(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if ok {
		return v, nil
	}

	result, err, _ := c.group.Do("current:"+workflowID, func() (any, error) {
		v, err := c.loader.GetLatest(ctx, workflowID)
		if err != nil {
			return nil, err
		}
		c.store(ctx, workflowID, v)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.WorkflowVersion), nil
}

// GetPinned resolves a specific historical version. Pinned entries are never
// invalidated by Invalidate: only the "current" pointer for a workflow moves
// when a new version is committed, per spec §4.3.
func (c *WorkflowCache) GetPinned(ctx context.Context, workflowID string, versionNumber int) (*models.WorkflowVersion, error) {
	k := key{workflowID: workflowID, versionNumber: versionNumber}
	if v, ok := c.lru.Get(k); ok {
		return v, nil
	}
	if c.redis != nil {
		if v, ok := c.redis.get(ctx, k); ok {
			c.lru.Add(k, v)
			return v, nil
		}
	}

	sfKey := fmt.Sprintf("pinned:%s:%d", workflowID, versionNumber)
	result, err, _ := c.group.Do(sfKey, func() (any, error) {
		v, err := c.loader.Get(ctx, workflowID, versionNumber)
		if err != nil {
			return nil, err
		}
		c.lru.Add(k, v)
		if c.redis != nil {
			c.redis.set(ctx, k, v)
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.WorkflowVersion), nil
}

// Invalidate drops the "current" pointer for a workflow, so the next
// GetOrLoad re-queries storage for its latest version. Call this whenever a
// new version is committed or the workflow's enabled flag changes.
func (c *WorkflowCache) Invalidate(workflowID string) {
	c.mu.Lock()
	delete(c.current, workflowID)
	c.mu.Unlock()
}

func (c *WorkflowCache) cachedCurrent(ctx context.Context, workflowID string) (*models.WorkflowVersion, bool, error) {
	c.mu.RLock()
	versionNumber, known := c.current[workflowID]
	c.mu.RUnlock()
	if !known {
		return nil, false, nil
	}
	k := key{workflowID: workflowID, versionNumber: versionNumber}
	if v, ok := c.lru.Get(k); ok {
		return v, true, nil
	}
	if c.redis != nil {
		if v, ok := c.redis.get(ctx, k); ok {
			c.lru.Add(k, v)
			return v, true, nil
		}
	}
	return nil, false, nil
}

func (c *WorkflowCache) store(ctx context.Context, workflowID string, v *models.WorkflowVersion) {
	k := key{workflowID: workflowID, versionNumber: v.VersionNumber}
	c.lru.Add(k, v)
	if c.redis != nil {
		c.redis.set(ctx, k, v)
	}
	c.mu.Lock()
	c.current[workflowID] = v.VersionNumber
	c.mu.Unlock()
}
