// Package cache provides the icon URL cache. Redis is preferred; when no
// Redis URL is configured or the connection fails, an in-process cache
// keeps single-instance deployments working.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/playreply/playreply/internal/config"
)

// Cache stores resolved icon URLs. An empty value is a valid entry: it
// records a recent failed lookup so callers don't hammer the catalogs.
type Cache interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value with a TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// New creates the icon cache from config, falling back to the in-memory
// implementation when Redis is unavailable.
func New(cfg config.RedisConfig, logger *zap.SugaredLogger) Cache {
	if cfg.URL == "" {
		logger.Infow("no redis url configured, using in-memory icon cache")
		return newMemoryCache()
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		logger.Warnw("invalid redis url, using in-memory icon cache", "error", err)
		return newMemoryCache()
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warnw("redis unreachable, using in-memory icon cache", "error", err)
		return newMemoryCache()
	}

	logger.Infow("icon cache backed by redis")
	return &redisCache{client: client}
}

type redisCache struct {
	client *redis.Client
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]memoryEntry)}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.value, true, nil
}

func (c *memoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}
