// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and MAIFILTER_* env vars over the defaults.
// - Validate reports every problem at once.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MusicDataPath, ChartStatsPath and AliasPath point at the catalog
	// JSON files. Only the music data is mandatory.
	MusicDataPath  string `koanf:"music_data_path"`
	ChartStatsPath string `koanf:"chart_stats_path"`
	AliasPath      string `koanf:"alias_path"`

	// ProberURL is the base URL of the score prober.
	ProberURL string `koanf:"prober_url"`

	// ProberToken is sent as the developer token.
	ProberToken string `koanf:"prober_token"`

	// FetchTimeoutMS bounds a single prober request.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// CacheBackend selects none, memory or redis.
	CacheBackend string `koanf:"cache_backend"`

	// CacheSize bounds the in-memory cache.
	CacheSize int `koanf:"cache_size"`

	// CacheTTLSec is how long fetched records stay cached.
	CacheTTLSec int `koanf:"cache_ttl_sec"`

	// RedisAddr and RedisDB locate the redis cache.
	RedisAddr string `koanf:"redis_addr"`
	RedisDB   int    `koanf:"redis_db"`
}

// New creates a Config holding the defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":9080",
		MusicDataPath:  "static/music_data.json",
		ChartStatsPath: "static/chart_stats.json",
		AliasPath:      "static/music_alias.json",
		ProberURL:      "https://www.diving-fish.com/api/maimaidxprober",
		FetchTimeoutMS: 10_000,
		CacheBackend:   CacheMemory,
		CacheSize:      1_000,
		CacheTTLSec:    300,
		RedisAddr:      "localhost:6379",
	}
}

// FetchTimeout returns FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// CacheTTL returns CacheTTLSec as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var err error
	if c.Addr == "" {
		err = multierror.Append(err, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig))
	}
	if c.MusicDataPath == "" {
		err = multierror.Append(err, fmt.Errorf("%w: music_data_path must not be empty", ErrInvalidConfig))
	}
	if c.ProberURL == "" {
		err = multierror.Append(err, fmt.Errorf("%w: prober_url must not be empty", ErrInvalidConfig))
	}
	if c.FetchTimeoutMS <= 0 {
		err = multierror.Append(err, fmt.Errorf("%w: fetch_timeout_ms must be positive", ErrInvalidConfig))
	}
	switch c.CacheBackend {
	case CacheNone:
	case CacheMemory:
		if c.CacheSize <= 0 {
			err = multierror.Append(err, fmt.Errorf("%w: cache_size must be positive", ErrInvalidConfig))
		}
	case CacheRedis:
		if c.RedisAddr == "" {
			err = multierror.Append(err, fmt.Errorf("%w: redis_addr must not be empty", ErrInvalidConfig))
		}
	default:
		err = multierror.Append(err, fmt.Errorf("%w: %w %q", ErrInvalidConfig, ErrUnknownCacheBackend, c.CacheBackend))
	}
	if c.CacheBackend != CacheNone && c.CacheTTLSec <= 0 {
		err = multierror.Append(err, fmt.Errorf("%w: cache_ttl_sec must be positive", ErrInvalidConfig))
	}
	return err
}
