package pushtoken

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisCache adapts a go-redis client to the Cache interface.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a Cache over client. All keys are namespaced under
// prefix to keep the token store out of other application data.
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "notifykit"
	}
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.client.Get(ctx, c.prefix+":"+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string) error {
	return c.client.Set(ctx, c.prefix+":"+key, value, 0).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+":"+key).Err()
}
