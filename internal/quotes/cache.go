package quotes

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the advisory memo store behind the resolver: coin ids and
// working exchange suffixes. Losing an entry only costs extra provider
// calls, so implementations may drop writes and must never return an
// error to the caller.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// MemoryCache is the default process-lifetime cache. Entries grow
// monotonically and are never invalidated.
type MemoryCache struct {
	m sync.Map
}

func NewMemoryCache() *MemoryCache { return &MemoryCache{} }

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	v, ok := c.m.Load(key)
	if !ok {
		return "", false
	}
	return v.(string), true
}

func (c *MemoryCache) Set(_ context.Context, key, value string) {
	c.m.Store(key, value)
}

// RedisCache shares resolver memos across processes. Best-effort: any
// Redis error reads as a miss and writes are fire-and-forget.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "homeboard:quotes:"
	}
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	v, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string) {
	_ = c.client.Set(ctx, c.prefix+key, value, c.ttl).Err()
}
