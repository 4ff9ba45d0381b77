package domain

import (
	"context"
	"time"
)

// Cache stores finished case results keyed by input fingerprint.
// A result cache is optional: the pipeline runs identically without one,
// it just recomputes.
type Cache interface {
	// Get retrieves a raw value. Returns nil, nil when the key is
	// absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with an expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// GetResult retrieves a cached case result. Returns nil, nil on miss.
	GetResult(ctx context.Context, key string) (*CaseResult, error)

	// SetResult caches a finished case result.
	SetResult(ctx context.Context, key string, result *CaseResult, ttl time.Duration) error

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// CacheConfig holds configuration for cache initialization.
type CacheConfig struct {
	// Type is the cache backend: "memory", "redis" or "two-phase"
	Type string `json:"type" yaml:"type"`

	// Memory settings
	Capacity int `json:"capacity" yaml:"capacity"`
	TTLSecs  int `json:"ttlSecs" yaml:"ttlSecs"`

	// Redis settings
	RedisAddr     string `json:"redisAddr" yaml:"redisAddr"`
	RedisPassword string `json:"redisPassword" yaml:"redisPassword"`
	RedisDB       int    `json:"redisDB" yaml:"redisDB"`

	// Two-phase: local capacity checked before Redis
	LocalCapacity int `json:"localCapacity" yaml:"localCapacity"`
}
