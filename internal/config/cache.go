package config

import "time"

// CacheConfig defines settings for the movie listing cache.  When Enabled
// is false or no Redis client is configured, caching is disabled.  Entries
// live for TTL and are keyed under Prefix together with a version counter
// that catalog changes bump.  Responses larger than MaxBodyBytes are not
// cached.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        TTL:          envDur("CACHE_TTL", 5*time.Minute),
        Prefix:       envStr("CACHE_PREFIX", "cache:movies"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
}
