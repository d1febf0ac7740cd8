// README: Redis read-through cache in front of a ConfigSource.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const configKeyPrefix = "pricing:config:%s"

// redisTimeout bounds each cache round trip, independent of the lookup budget.
const redisTimeout = 200 * time.Millisecond

type RedisCache struct {
	redis   *redis.Client
	next    ConfigSource
	ttl     time.Duration
	timeout time.Duration
}

func NewRedisCache(client *redis.Client, next ConfigSource, ttl time.Duration) *RedisCache {
	return &RedisCache{redis: client, next: next, ttl: ttl, timeout: redisTimeout}
}

// GetConfig serves from Redis when possible. Redis failures fall through to
// the wrapped source; only found rows are written back, and only while Redis
// is answering.
func (c *RedisCache) GetConfig(ctx context.Context, serviceID string) (Config, error) {
	key := configKey(serviceID)

	readCtx, cancel := context.WithTimeout(ctx, c.timeout)
	raw, err := c.redis.Get(readCtx, key).Bytes()
	cancel()
	if err == nil {
		var cfg Config
		if err := json.Unmarshal(raw, &cfg); err == nil {
			return cfg, nil
		}
	} else if ctx.Err() != nil {
		return Config{}, ctx.Err()
	}
	reachable := err == nil || errors.Is(err, redis.Nil)

	cfg, err := c.next.GetConfig(ctx, serviceID)
	if err != nil {
		return Config{}, err
	}
	if reachable {
		if raw, err := json.Marshal(cfg); err == nil {
			writeCtx, cancel := context.WithTimeout(ctx, c.timeout)
			_ = c.redis.Set(writeCtx, key, raw, c.ttl).Err()
			cancel()
		}
	}
	return cfg, nil
}

// Invalidate drops the cached row for serviceID.
func (c *RedisCache) Invalidate(ctx context.Context, serviceID string) error {
	return c.redis.Del(ctx, configKey(serviceID)).Err()
}

func configKey(serviceID string) string {
	return fmt.Sprintf(configKeyPrefix, serviceID)
}
