package config

import (
	"strconv"
	"time"
)

// RateLimitConfig tunes the Redis token bucket in front of the
// credential endpoints (diner, restaurant and admin login/register)
// to slow credential stuffing.  Each client IP gets Capacity tokens
// per route, refilled at RefillTokens per RefillInterval.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

// LoadRateLimitConfig reads the limiter settings from the environment.
// Invalid or missing values fall back to defaults; the TTL is clamped
// so idle buckets outlive at least a few refill intervals.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        getDefault("RATE_LIMIT_ENABLED", "true") == "true",
		Capacity:       10,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            10 * time.Minute,
		Prefix:         getDefault("RATE_LIMIT_PREFIX", "dinemate:rl"),
	}
	if n, err := strconv.Atoi(getDefault("RATE_LIMIT_CAPACITY", "")); err == nil && n > 0 {
		cfg.Capacity = n
	}
	if n, err := strconv.Atoi(getDefault("RATE_LIMIT_REFILL_TOKENS", "")); err == nil && n > 0 {
		cfg.RefillTokens = n
	}
	if d, err := time.ParseDuration(getDefault("RATE_LIMIT_REFILL_INTERVAL", "")); err == nil && d > 0 {
		cfg.RefillInterval = d
	}
	if d, err := time.ParseDuration(getDefault("RATE_LIMIT_TTL", "")); err == nil && d > 0 {
		cfg.TTL = d
	}
	if min := 5 * cfg.RefillInterval; cfg.TTL < min {
		cfg.TTL = min
	}
	return cfg
}
