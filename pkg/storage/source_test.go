package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/cip116/pkg/schema"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "default", mutate: func(*Config) {}},
		{name: "filesystem", mutate: func(c *Config) { c.Type = TypeFilesystem }},
		{name: "filesystem without root", mutate: func(c *Config) { c.Type = TypeFilesystem; c.FilesystemRoot = "" }, wantErr: "root directory"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Type = TypeS3 }, wantErr: "bucket"},
		{name: "s3", mutate: func(c *Config) { c.Type = TypeS3; c.S3Bucket = "ledger" }},
		{name: "unknown", mutate: func(c *Config) { c.Type = "postgres" }, wantErr: "unknown schema source"},
		{name: "cache without redis", mutate: func(c *Config) { c.CacheEnabled = true }, wantErr: "redis URL"},
		{name: "negative ttl", mutate: func(c *Config) { c.CacheEnabled = true; c.RedisURL = "redis://x"; c.CacheTTL = -1 }, wantErr: "TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNewSource_Embedded(t *testing.T) {
	backend, err := NewSource(context.Background(), DefaultConfig(), nil, nil)
	require.NoError(t, err)
	defer backend.Close()

	assert.Equal(t, "embedded", backend.Source.Name())
	assert.Nil(t, backend.Redis)
	assert.NoError(t, backend.HealthCheck(context.Background()))
	assert.NoError(t, backend.Invalidate(context.Background()))

	store, err := schema.NewLoader(backend.Source, nil, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []schema.Era{schema.Babbage, schema.Conway}, store.Eras())
}

func TestNewSource_FilesystemWithCache(t *testing.T) {
	dir := t.TempDir()
	for era, file := range schema.DefaultEras() {
		data, err := schema.Embedded().Fetch(context.Background(), file)
		require.NoError(t, err, era)
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), data, 0o644))
	}

	mr := miniredis.RunT(t)
	cfg := DefaultConfig()
	cfg.Type = TypeFilesystem
	cfg.FilesystemRoot = dir
	cfg.CacheEnabled = true
	cfg.RedisURL = "redis://" + mr.Addr()

	backend, err := NewSource(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	defer backend.Close()

	assert.Equal(t, "filesystem+redis", backend.Source.Name())
	require.NotNil(t, backend.Redis)
	assert.NoError(t, backend.HealthCheck(context.Background()))

	store, err := schema.NewLoader(backend.Source, nil, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, store.Eras(), 2)
	assert.True(t, mr.Exists(Key(schema.DefaultEras()[schema.Babbage])))

	require.NoError(t, backend.Invalidate(context.Background()))
	assert.False(t, mr.Exists(Key(schema.DefaultEras()[schema.Babbage])))
}

func TestNewSource_Errors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Type = "ftp"
	_, err := NewSource(context.Background(), cfg, nil, nil)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Type = TypeFilesystem
	cfg.FilesystemRoot = filepath.Join(t.TempDir(), "missing")
	_, err = NewSource(context.Background(), cfg, nil, nil)
	assert.ErrorContains(t, err, "failed to create filesystem source")
}
