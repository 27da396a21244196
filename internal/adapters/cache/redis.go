package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/okian/maifilter/internal/domain/model"
	"github.com/okian/maifilter/pkg/logger"
	"github.com/okian/maifilter/pkg/metrics"
)

const defaultKeyPrefix = "maifilter:player:"

// Redis stores player info as JSON strings with an expiry.
// Backend errors are logged and treated as misses.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger logger.Logger
}

var _ Cache = (*Redis)(nil)

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		prefix: defaultKeyPrefix,
		ttl:    5 * time.Minute,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Named("cache")
	}
	return r
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, key string) (*model.PlayerInfo, bool) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn(ctx, "redis get failed", logger.String("key", key), logger.Error(err))
			metrics.RecordErrorByComponent("cache", "redis_get")
		}
		metrics.RecordCacheLookup(BackendRedis, false)
		return nil, false
	}
	var info model.PlayerInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		r.logger.Warn(ctx, "redis entry corrupt", logger.String("key", key), logger.Error(err))
		metrics.RecordCacheLookup(BackendRedis, false)
		return nil, false
	}
	metrics.RecordCacheLookup(BackendRedis, true)
	return &info, true
}

// Set implements Cache.
func (r *Redis) Set(ctx context.Context, key string, info *model.PlayerInfo) {
	if info == nil {
		return
	}
	raw, err := json.Marshal(info)
	if err != nil {
		r.logger.Warn(ctx, "redis encode failed", logger.String("key", key), logger.Error(err))
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, raw, r.ttl).Err(); err != nil {
		r.logger.Warn(ctx, "redis set failed", logger.String("key", key), logger.Error(err))
		metrics.RecordErrorByComponent("cache", "redis_set")
	}
}

// Len is not tracked for the shared backend.
func (r *Redis) Len() int { return -1 }

// Close releases the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
