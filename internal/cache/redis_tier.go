package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openobserve/swisspipe/internal/config"
	"github.com/openobserve/swisspipe/pkg/models"
)

// RedisTier is the optional secondary cache tier sitting between the
// in-process LRU and internal/storage's VersionRepository: a workflow
// snapshot another process in the fleet already parsed (or one this
// process evicted) is fetched from Redis instead of re-querying Postgres.
// Grounded on internal/infrastructure/cache/redis.go's
// ParseURL-then-override-from-config client construction and
// Get/Set-with-TTL shape.
type RedisTier struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTier builds a RedisTier from RedisConfig, verifying connectivity
// with a ping the way the teacher's NewRedisCache does.
func NewRedisTier(ctx context.Context, cfg config.RedisConfig, ttl time.Duration) (*RedisTier, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	opts.DB = cfg.DB
	opts.PoolSize = cfg.PoolSize
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisTier{client: client, ttl: ttl}, nil
}

func (r *RedisTier) get(ctx context.Context, k key) (*models.WorkflowVersion, bool) {
	data, err := r.client.Get(ctx, redisKey(k)).Bytes()
	if err != nil {
		return nil, false
	}
	var v models.WorkflowVersion
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false
	}
	return &v, true
}

func (r *RedisTier) set(ctx context.Context, k key, v *models.WorkflowVersion) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	r.client.Set(ctx, redisKey(k), data, r.ttl)
}

func (r *RedisTier) Close() error { return r.client.Close() }

func redisKey(k key) string {
	return fmt.Sprintf("swisspipe:workflow-version:%s:%d", k.workflowID, k.versionNumber)
}
