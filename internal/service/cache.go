package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCache adapts a redis client to the Cache interface.
type redisCache struct {
	client *redis.Client
}

// NewRedisCache wraps a redis client for the dedup path. A nil client yields
// a nil Cache, which the ingest service treats as "no cache".
func NewRedisCache(client *redis.Client) Cache {
	if client == nil {
		return nil
	}
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
