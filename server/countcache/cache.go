// Package countcache keeps dashboard counts in Redis for a short TTL.
package countcache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "crm:count:"

// Client is the subset of redis.Cmdable the cache needs.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

var _ Client = (*redis.Client)(nil)

type Cache struct {
	client Client
	ttl    time.Duration
}

func New(client Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Count returns the cached count for name, calling load and caching its result
// on a miss. Redis failures degrade to calling load directly.
func (c *Cache) Count(ctx context.Context, name string, load func(context.Context) (int64, error)) (int64, error) {
	key := keyPrefix + name

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if n, convErr := strconv.ParseInt(cached, 10, 64); convErr == nil {
			return n, nil
		}
		log.Warn().Str("key", key).Str("value", cached).Msg("Discarding malformed cached count")
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("key", key).Msg("Count cache read failed")
	}

	n, err := load(ctx)
	if err != nil {
		return 0, err
	}

	if err := c.client.Set(ctx, key, strconv.FormatInt(n, 10), c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Count cache write failed")
	}
	return n, nil
}

// Invalidate drops the cached count for name.
func (c *Cache) Invalidate(ctx context.Context, name string) error {
	return c.client.Del(ctx, keyPrefix+name).Err()
}
