// README: Redis-backed route cache keyed by origin/destination pair.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{redis: client, ttl: ttl}
}

// Get returns a cached route. Any redis or decode failure reads as a miss:
// the cache must never be able to fail a plan.
func (c *RedisCache) Get(ctx context.Context, origin, destination string) (Route, bool) {
	val, err := c.redis.Get(ctx, routeKey(origin, destination)).Result()
	if err != nil {
		return Route{}, false
	}
	var r Route
	if err := json.Unmarshal([]byte(val), &r); err != nil {
		return Route{}, false
	}
	return r, true
}

func (c *RedisCache) Put(ctx context.Context, origin, destination string, r Route) {
	b, err := json.Marshal(r)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, routeKey(origin, destination), b, c.ttl).Err()
}

func routeKey(origin, destination string) string {
	return fmt.Sprintf("route:%s:%s", origin, destination)
}
