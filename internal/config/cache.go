package config

import (
	"strconv"
	"time"
)

// CacheConfig tunes the Redis cache in front of the public
// restaurant-browse listing.  Restaurant-side edits invalidate the
// whole cache through a generation counter, so the TTL only bounds
// how long Redis keeps entries nobody invalidates.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads the cache settings from the environment,
// falling back to defaults suitable for development.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      getDefault("CACHE_ENABLED", "true") == "true",
		TTL:          30 * time.Second,
		Prefix:       getDefault("CACHE_PREFIX", "dinemate:browse"),
		MaxBodyBytes: 1 << 20,
	}
	if d, err := time.ParseDuration(getDefault("CACHE_TTL", "")); err == nil && d > 0 {
		cfg.TTL = d
	}
	if n, err := strconv.Atoi(getDefault("CACHE_MAX_BODY_BYTES", "")); err == nil && n > 0 {
		cfg.MaxBodyBytes = n
	}
	return cfg
}
