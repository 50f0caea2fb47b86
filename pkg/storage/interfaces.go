package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/platinummonkey/cip116/pkg/schema"
)

// Backend types
const (
	TypeEmbedded   = "embedded"
	TypeFilesystem = "filesystem"
	TypeS3         = "s3"
)

// HealthChecker is implemented by sources that depend on a remote service
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

var (
	_ schema.Source = (*FileSystemSource)(nil)
	_ schema.Source = (*S3Source)(nil)
	_ schema.Source = (*RedisCache)(nil)
	_ HealthChecker = (*S3Source)(nil)
	_ HealthChecker = (*RedisCache)(nil)
)

// Config selects and configures the schema source
type Config struct {
	Type string // "embedded", "filesystem", "s3"

	// Filesystem config
	FilesystemRoot string

	// S3 config
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3Prefix       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool

	// Redis config
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int

	// Cache config
	CacheEnabled bool
	CacheTTL     time.Duration
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Type:            TypeEmbedded,
		FilesystemRoot:  "./schemas",
		S3Region:        "us-east-1",
		RedisDB:         0,
		RedisMaxRetries: 3,
		RedisPoolSize:   10,
		CacheEnabled:    false,
		CacheTTL:        time.Hour,
	}
}

// Validate checks that the selected backend is fully configured
func (c Config) Validate() error {
	switch c.Type {
	case TypeEmbedded:
	case TypeFilesystem:
		if c.FilesystemRoot == "" {
			return fmt.Errorf("filesystem source requires a root directory")
		}
	case TypeS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("s3 source requires a bucket")
		}
	default:
		return fmt.Errorf("unknown schema source type %q", c.Type)
	}

	if c.CacheEnabled {
		if c.RedisURL == "" {
			return fmt.Errorf("schema cache requires a redis URL")
		}
		if c.CacheTTL < 0 {
			return fmt.Errorf("schema cache TTL must not be negative")
		}
	}
	return nil
}
