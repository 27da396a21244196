// Package cache keeps recently fetched player records so repeated queries
// for the same account skip the prober.
package cache

import (
	"context"

	"github.com/okian/maifilter/internal/domain/model"
)

// Backend names as reported to metrics.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Cache stores player info by account key. Implementations hand out copies,
// so callers may rewrite the returned records.
type Cache interface {
	// Get returns the cached info for key, if present and fresh.
	Get(ctx context.Context, key string) (*model.PlayerInfo, bool)
	// Set stores info under key.
	Set(ctx context.Context, key string, info *model.PlayerInfo)
	// Len returns the number of entries, or -1 if the backend cannot tell.
	Len() int
}

// Noop never stores anything.
type Noop struct{}

var _ Cache = Noop{}

// Get always misses.
func (Noop) Get(context.Context, string) (*model.PlayerInfo, bool) { return nil, false }

// Set does nothing.
func (Noop) Set(context.Context, string, *model.PlayerInfo) {}

// Len is always zero.
func (Noop) Len() int { return 0 }
