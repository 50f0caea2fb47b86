package storage

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/cip116/pkg/observability"
	"github.com/platinummonkey/cip116/pkg/schema"
)

// Backend is a configured schema source plus the connections it owns
type Backend struct {
	Source schema.Source
	// Redis is non-nil when the document cache is enabled
	Redis *redis.Client
}

// NewSource builds the source selected by cfg, wrapped in a Redis cache when
// caching is enabled
func NewSource(ctx context.Context, cfg Config, logger logrus.FieldLogger, metrics *observability.Metrics) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	var (
		source schema.Source
		err    error
	)
	switch cfg.Type {
	case TypeEmbedded:
		source = schema.Embedded()
	case TypeFilesystem:
		source, err = NewFileSystemSource(cfg.FilesystemRoot)
	case TypeS3:
		source, err = NewS3Source(ctx, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s source: %w", cfg.Type, err)
	}

	backend := &Backend{Source: source}
	if cfg.CacheEnabled {
		client, err := NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		backend.Redis = client
		backend.Source = NewRedisCache(source, client, cfg.CacheTTL, logger, metrics)
	}

	logger.WithField("source", backend.Source.Name()).Info("Schema source configured")
	return backend, nil
}

// HealthCheck checks every remote dependency of the backend
func (b *Backend) HealthCheck(ctx context.Context) error {
	if hc, ok := b.Source.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// Close releases the Redis connection, if any
func (b *Backend) Close() error {
	if b.Redis == nil {
		return nil
	}
	return b.Redis.Close()
}

// Invalidate drops cached documents so the next fetch reads the source.
// It is a no-op without a cache.
func (b *Backend) Invalidate(ctx context.Context) error {
	if cache, ok := b.Source.(*RedisCache); ok {
		return cache.Invalidate(ctx)
	}
	return nil
}
