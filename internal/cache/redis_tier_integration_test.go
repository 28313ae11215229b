//go:build integration

package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/require"

	"github.com/openobserve/swisspipe/internal/config"
	"github.com/openobserve/swisspipe/pkg/models"
)

// TestRedisTier_RealContainer exercises RedisTier against an actual Redis
// server rather than miniredis's in-memory fake, grounded on
// testutil/database.go's dockertest pool/RunWithOptions/Retry shape (ported
// from Postgres to a "redis:7-alpine" image). Gated behind the integration
// build tag since it needs a Docker daemon, matching the teacher's own
// dockertest tests.
func TestRedisTier_RealContainer(t *testing.T) {
	dockerEndpoint := os.Getenv("DOCKER_HOST")
	pool, err := dockertest.NewPool(dockerEndpoint)
	require.NoError(t, err, "failed to connect to docker, is it running?")
	require.NoError(t, pool.Client.Ping())

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	})
	require.NoError(t, err, "failed to start redis container")
	resource.Expire(120)
	t.Cleanup(func() {
		_ = pool.Purge(resource)
	})

	var tier *RedisTier
	addr := fmt.Sprintf("localhost:%s", resource.GetPort("6379/tcp"))
	err = pool.Retry(func() error {
		var err error
		tier, err = NewRedisTier(context.Background(), config.RedisConfig{URL: "redis://" + addr, PoolSize: 5}, time.Minute)
		return err
	})
	require.NoError(t, err, "failed to connect to containerized redis")
	defer tier.Close()

	v := &models.WorkflowVersion{WorkflowID: "wf-real", VersionNumber: 1, Snapshot: &models.Workflow{ID: "wf-real", Name: "n", Enabled: true}}
	k := key{workflowID: "wf-real", versionNumber: 1}

	tier.set(context.Background(), k, v)
	got, ok := tier.get(context.Background(), k)
	require.True(t, ok)
	require.Equal(t, v.WorkflowID, got.WorkflowID)
}
