package config

import "time"

// RedisConfig holds configuration for the Redis-backed icon cache.
type RedisConfig struct {
	// URL is the Redis connection URL. Empty disables Redis; the icon
	// service falls back to an in-process cache.
	URL string
	// IconTTL is how long a resolved icon URL stays cached.
	IconTTL time.Duration
	// NegativeTTL is how long a failed lookup stays cached before retrying.
	NegativeTTL time.Duration
}

// LoadRedisConfigFromEnv loads Redis configuration from environment variables.
func LoadRedisConfigFromEnv() RedisConfig {
	return RedisConfig{
		URL:         GetEnv("REDIS_URL", ""),
		IconTTL:     GetEnvDuration("ICON_CACHE_TTL", 24*time.Hour),
		NegativeTTL: GetEnvDuration("ICON_CACHE_NEGATIVE_TTL", time.Hour),
	}
}
