package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"install-scheduler/internal/pkg/config"
	"install-scheduler/internal/pkg/errs"
	"install-scheduler/internal/usecase/catalog"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores catalog snapshots as JSON with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return catalog.ErrCacheMiss
	}
	if err != nil {
		return errs.Wrapf(err, "redis get %s", key)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return errs.Wrapf(err, "decode cached %s", key)
	}
	return nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errs.Wrapf(err, "encode %s", key)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return errs.Wrapf(err, "redis set %s", key)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return errs.Wrap(err, "redis delete")
	}
	return nil
}
