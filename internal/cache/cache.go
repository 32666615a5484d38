// Package cache is a thin JSON read-through cache over Redis. When no
// Redis address is configured every operation is a no-op and callers
// fall back to the database.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

// New connects to Redis, or returns a disabled cache when addr is
// empty or the server is unreachable.
func New(addr, password string) *Cache {
	if addr == "" {
		return &Cache{}
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Println("cache: redis unreachable, caching disabled:", err)
		return &Cache{}
	}
	return &Cache{client: client}
}

func (c *Cache) Enabled() bool { return c != nil && c.client != nil }

// Get unmarshals the cached value into dest and reports whether the
// key was present. Errors degrade to a miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if !c.Enabled() {
		return false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		log.Println("cache: get failed:", err)
		return false
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		log.Println("cache: stale value for", key, "dropped:", err)
		_ = c.client.Del(ctx, key).Err()
		return false
	}
	return true
}

// Set stores value as JSON with the given TTL. Failures are logged and
// swallowed; the cache is best-effort.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		log.Println("cache: marshal failed for", key, ":", err)
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Println("cache: set failed:", err)
	}
}

// Invalidate removes keys after a write.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Println("cache: invalidate failed:", err)
	}
}
