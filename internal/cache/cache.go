// Package cache provides the report cache. Reports aggregate whole month
// documents on every request; Redis shields the document store from that on
// hot dashboards. When Redis is absent the noop cache keeps the call sites
// unchanged.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ReportCache stores rendered report payloads by key.
type ReportCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
	Delete(ctx context.Context, keys ...string)
}

// RedisCache is the Redis-backed report cache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisCache connects to Redis and pings it. Callers fall back to the
// noop cache when this fails.
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration, log *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisCache{client: client, ttl: ttl, log: log.Named("cache")}, nil
}

// Get returns the cached payload for key, if present. Errors degrade to a
// cache miss.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return val, true
}

// Set stores the payload under key with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key, value string) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete drops the given keys.
func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("cache delete failed", zap.Error(err))
	}
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NoopCache satisfies ReportCache without storing anything.
type NoopCache struct{}

// NewNoopCache returns the do-nothing cache.
func NewNoopCache() NoopCache { return NoopCache{} }

func (NoopCache) Get(context.Context, string) (string, bool) { return "", false }
func (NoopCache) Set(context.Context, string, string)        {}
func (NoopCache) Delete(context.Context, ...string)          {}
