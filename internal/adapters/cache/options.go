package cache

import (
	"time"

	"github.com/okian/maifilter/pkg/logger"
)

// MemoryOption applies a configuration option to the Memory cache.
type MemoryOption func(*Memory)

// WithMaxSize sets the maximum number of entries. Values <= 0 mean unbounded.
func WithMaxSize(maxSize int) MemoryOption {
	return func(m *Memory) {
		m.maxSize = maxSize
	}
}

// WithTTL sets how long entries stay fresh. Zero disables expiry.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) {
		m.ttl = ttl
	}
}

// withClock replaces time.Now in tests.
func withClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

// RedisOption applies a configuration option to the Redis cache.
type RedisOption func(*Redis)

// WithRedisTTL sets the key expiry.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		r.ttl = ttl
	}
}

// WithKeyPrefix sets the namespace prepended to every key.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// WithRedisLogger sets a custom logger.
func WithRedisLogger(l logger.Logger) RedisOption {
	return func(r *Redis) {
		if l != nil {
			r.logger = l
		}
	}
}
