package service

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ReportCache stores serialized conflict reports keyed by scope and status.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

// redisReportCache backs conflict reports with Redis when it is configured.
type redisReportCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisReportCache adapts a Redis client for conflict report caching.
func NewRedisReportCache(client *redis.Client, logger *zap.Logger) ReportCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisReportCache{client: client, logger: logger}
}

func (c *redisReportCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("conflict cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return value, true
}

func (c *redisReportCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warn("conflict cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *redisReportCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("conflict cache delete failed", zap.Error(err))
	}
}

// memoryReportCache is the in-process fallback when Redis is disabled.
type memoryReportCache struct {
	store *gocache.Cache
}

func newMemoryReportCache(defaultTTL time.Duration) *memoryReportCache {
	return &memoryReportCache{store: gocache.New(defaultTTL, 2*defaultTTL)}
}

func (c *memoryReportCache) Get(_ context.Context, key string) ([]byte, bool) {
	value, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	bytes, ok := value.([]byte)
	return bytes, ok
}

func (c *memoryReportCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

func (c *memoryReportCache) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		c.store.Delete(key)
	}
}
