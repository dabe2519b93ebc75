// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers defaults, an optional YAML file and RHYTHM_ env vars.
package config

import (
	"context"
	"fmt"
	"time"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CacheBackend is "memory" or "redis".
	CacheBackend string `koanf:"cache_backend"`

	// CacheTTLSeconds is how long an analysis stays cached per user.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// CacheMaxEntries bounds the in-memory store.
	CacheMaxEntries int `koanf:"cache_max_entries"`

	RedisAddr      string `koanf:"redis_addr"`
	RedisKeyPrefix string `koanf:"redis_key_prefix"`

	// WindowDays is the look-back window applied to input samples.
	WindowDays int `koanf:"window_days"`

	// DefaultTimezone is used for day bucketing when a request omits one.
	DefaultTimezone string `koanf:"default_timezone"`

	// Engine tunables.
	ReliabilityMax float64 `koanf:"reliability_max"`
	ShrinkageN0    float64 `koanf:"shrinkage_n0"`
	RidgeLambda    float64 `koanf:"ridge_lambda"`
	JetlagK        float64 `koanf:"jetlag_k"`
	BumpWeight     float64 `koanf:"bump_weight"`
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		CacheBackend:    CacheBackendMemory,
		CacheTTLSeconds: 30 * 60,
		CacheMaxEntries: 50_000,
		RedisAddr:       "localhost:6379",
		RedisKeyPrefix:  "rhythm:sync:",
		WindowDays:      30,
		DefaultTimezone: "UTC",
		ReliabilityMax:  0.8,
		ShrinkageN0:     20,
		RidgeLambda:     0.5,
		JetlagK:         0.03,
		BumpWeight:      0.2,
	}
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.CacheBackend != CacheBackendMemory && c.CacheBackend != CacheBackendRedis:
		return fmt.Errorf("%w: cache_backend must be memory or redis, got %q", ErrInvalidConfig, c.CacheBackend)
	case c.CacheBackend == CacheBackendRedis && c.RedisAddr == "":
		return fmt.Errorf("%w: redis_addr must not be empty when cache_backend is redis", ErrInvalidConfig)
	case c.CacheTTLSeconds <= 0:
		return fmt.Errorf("%w: cache_ttl_seconds must be positive", ErrInvalidConfig)
	case c.CacheMaxEntries <= 0:
		return fmt.Errorf("%w: cache_max_entries must be positive", ErrInvalidConfig)
	case c.WindowDays <= 0:
		return fmt.Errorf("%w: window_days must be positive", ErrInvalidConfig)
	case c.ReliabilityMax <= 0 || c.ReliabilityMax > 1:
		return fmt.Errorf("%w: reliability_max must be in (0,1]", ErrInvalidConfig)
	case c.ShrinkageN0 < 0:
		return fmt.Errorf("%w: shrinkage_n0 must not be negative", ErrInvalidConfig)
	case c.RidgeLambda < 0:
		return fmt.Errorf("%w: ridge_lambda must not be negative", ErrInvalidConfig)
	case c.JetlagK < 0:
		return fmt.Errorf("%w: jetlag_k must not be negative", ErrInvalidConfig)
	case c.BumpWeight < 0 || c.BumpWeight > 1:
		return fmt.Errorf("%w: bump_weight must be in [0,1]", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		return fmt.Errorf("%w: default_timezone: %v", ErrInvalidConfig, err)
	}
	return nil
}
