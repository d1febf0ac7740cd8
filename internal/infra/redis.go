// README: Redis client initialization for the pricing configuration cache.
package infra

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis returns a client that fails fast when Redis is unreachable. Call
// deadlines come from the caller's context.
func NewRedis(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:                  addr,
		DialTimeout:           500 * time.Millisecond,
		ReadTimeout:           500 * time.Millisecond,
		WriteTimeout:          500 * time.Millisecond,
		MaxRetries:            1,
		ContextTimeoutEnabled: true,
	})
}
