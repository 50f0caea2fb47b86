package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/cip116/pkg/observability"
	"github.com/platinummonkey/cip116/pkg/schema"
)

// KeyPrefix prefixes every cached document key
const KeyPrefix = "cip116:schema:"

// NewRedisClient creates a Redis client from cfg and checks connectivity
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	if cfg.RedisDB > 0 {
		opts.DB = cfg.RedisDB
	}
	if cfg.RedisMaxRetries > 0 {
		opts.MaxRetries = cfg.RedisMaxRetries
	}
	if cfg.RedisPoolSize > 0 {
		opts.PoolSize = cfg.RedisPoolSize
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// RedisCache is a read-through cache in front of another source.
// Redis failures are logged and the wrapped source is used instead.
type RedisCache struct {
	source  schema.Source
	client  *redis.Client
	ttl     time.Duration
	logger  logrus.FieldLogger
	metrics *observability.Metrics
}

// NewRedisCache wraps source. A zero ttl keeps entries until invalidated.
func NewRedisCache(source schema.Source, client *redis.Client, ttl time.Duration, logger logrus.FieldLogger, metrics *observability.Metrics) *RedisCache {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &RedisCache{
		source:  source,
		client:  client,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
	}
}

// Name implements schema.Source
func (c *RedisCache) Name() string { return c.source.Name() + "+redis" }

// Key returns the cache key of file
func Key(file string) string { return KeyPrefix + file }

// Fetch implements schema.Source
func (c *RedisCache) Fetch(ctx context.Context, file string) ([]byte, error) {
	key := Key(file)
	ctx, span := observability.Tracer().Start(ctx, "Redis.Get",
		trace.WithAttributes(attribute.String("redis.key", key)),
	)
	defer span.End()

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		span.SetAttributes(attribute.Bool("cache.hit", true))
		c.metrics.RecordSchemaCache(c.source.Name(), true)
		return data, nil
	case errors.Is(err, redis.Nil):
	default:
		span.RecordError(err)
		c.logger.WithError(err).WithField("key", key).Warn("Schema cache read failed")
	}

	span.SetAttributes(attribute.Bool("cache.hit", false))
	c.metrics.RecordSchemaCache(c.source.Name(), false)

	data, err = c.source.Fetch(ctx, file)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Schema cache write failed")
	}
	return data, nil
}

// Invalidate removes every cached document
func (c *RedisCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan failed for %s: %w", KeyPrefix, err)
	}
	return nil
}

// HealthCheck pings Redis
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
