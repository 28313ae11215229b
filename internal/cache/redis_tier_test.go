package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openobserve/swisspipe/internal/config"
	"github.com/openobserve/swisspipe/pkg/models"
)

func TestRedisTier_SetThenGet(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	tier, err := NewRedisTier(context.Background(), config.RedisConfig{URL: "redis://" + s.Addr(), PoolSize: 10}, time.Minute)
	require.NoError(t, err)
	defer tier.Close()

	v := &models.WorkflowVersion{WorkflowID: "wf-1", VersionNumber: 3, Snapshot: &models.Workflow{ID: "wf-1", Name: "n", Enabled: true}}
	k := key{workflowID: "wf-1", versionNumber: 3}

	_, ok := tier.get(context.Background(), k)
	assert.False(t, ok)

	tier.set(context.Background(), k, v)

	got, ok := tier.get(context.Background(), k)
	require.True(t, ok)
	assert.Equal(t, v.WorkflowID, got.WorkflowID)
	assert.Equal(t, v.VersionNumber, got.VersionNumber)
}

func TestRedisTier_WithPassword(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()
	s.RequireAuth("secret")

	tier, err := NewRedisTier(context.Background(), config.RedisConfig{URL: "redis://" + s.Addr(), Password: "secret", PoolSize: 10}, time.Minute)
	require.NoError(t, err)
	defer tier.Close()
}

func TestWorkflowCache_FallsBackToRedisOnLRUMiss(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	tier, err := NewRedisTier(context.Background(), config.RedisConfig{URL: "redis://" + s.Addr(), PoolSize: 10}, time.Minute)
	require.NoError(t, err)
	defer tier.Close()

	loader := &stubLoader{version: &models.WorkflowVersion{WorkflowID: "wf-1", VersionNumber: 1, Snapshot: &models.Workflow{ID: "wf-1", Name: "n", Enabled: true}}}
	c, err := NewWithRedis(loader, 1, tier)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = c.GetOrLoad(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, 1, loader.calls)

	// Evict wf-1 from the in-process LRU by loading a second workflow past capacity.
	loader.version = &models.WorkflowVersion{WorkflowID: "wf-2", VersionNumber: 1, Snapshot: &models.Workflow{ID: "wf-2", Name: "n2", Enabled: true}}
	_, err = c.GetOrLoad(ctx, "wf-2")
	require.NoError(t, err)

	// wf-1's LRU entry is gone but its snapshot is still in redis; with the
	// "current" pointer resolving to version 1, the next GetOrLoad for wf-1
	// is served from redis. The loader has been called twice so far (once
	// for wf-1, once for wf-2) and must not be called a third time.
	c.current["wf-1"] = 1
	loader.version = &models.WorkflowVersion{WorkflowID: "wf-1", VersionNumber: 1, Snapshot: &models.Workflow{ID: "wf-1", Name: "n", Enabled: true}}
	v, err := c.GetOrLoad(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "wf-1", v.WorkflowID)
	assert.Equal(t, 2, loader.calls, "redis tier should have served this lookup without calling the loader again")
}

type stubLoader struct {
	version *models.WorkflowVersion
	calls   int
}

func (s *stubLoader) GetLatest(ctx context.Context, workflowID string) (*models.WorkflowVersion, error) {
	s.calls++
	return s.version, nil
}

func (s *stubLoader) Get(ctx context.Context, workflowID string, versionNumber int) (*models.WorkflowVersion, error) {
	s.calls++
	return s.version, nil
}
