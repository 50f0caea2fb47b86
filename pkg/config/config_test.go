package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/cip116/pkg/observability"
	"github.com/platinummonkey/cip116/pkg/schema"
	"github.com/platinummonkey/cip116/pkg/storage"
	"github.com/platinummonkey/cip116/pkg/validation"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("CIP116_TEST_STRING", "custom")
	t.Setenv("CIP116_TEST_BOOL", "1")
	t.Setenv("CIP116_TEST_INT", "42")
	t.Setenv("CIP116_TEST_BAD_INT", "forty-two")
	t.Setenv("CIP116_TEST_DURATION", "90s")
	t.Setenv("CIP116_TEST_FLOAT", "0.25")
	t.Setenv("TEST_STRING", "unprefixed")

	assert.Equal(t, "custom", getEnv("TEST_STRING", "default"))
	assert.Equal(t, "default", getEnv("TEST_STRING_NOT_SET", "default"))
	assert.True(t, getEnvBool("TEST_BOOL", false))
	assert.True(t, getEnvBool("TEST_BOOL_NOT_SET", true))
	assert.Equal(t, 42, getEnvInt("TEST_INT", 0))
	assert.Equal(t, 7, getEnvInt("TEST_BAD_INT", 7))
	assert.Equal(t, int64(42), getEnvInt64("TEST_INT", 0))
	assert.Equal(t, 90*time.Second, getEnvDuration("TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, getEnvDuration("TEST_INT", time.Second))
	assert.Equal(t, 0.25, getEnvFloat("TEST_FLOAT", 1))
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, storage.TypeEmbedded, cfg.Storage.Type)
	assert.False(t, cfg.Storage.CacheEnabled)
	assert.Equal(t, validation.DefaultCacheSize, cfg.Validation.CacheSize)
	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.False(t, cfg.Observability.OTelEnabled)

	eras, err := cfg.Eras()
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultEras(), eras)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("CIP116_PORT", "8000")
	t.Setenv("CIP116_SCHEMA_SOURCE", "S3")
	t.Setenv("CIP116_S3_BUCKET", "ledger-schemas")
	t.Setenv("CIP116_S3_PREFIX", "cip116/v1")
	t.Setenv("CIP116_S3_USE_PATH_STYLE", "true")
	t.Setenv("CIP116_CACHE_ENABLED", "true")
	t.Setenv("CIP116_CACHE_TTL", "10m")
	t.Setenv("CIP116_REDIS_URL", "redis://localhost:6379")
	t.Setenv("CIP116_REDIS_DB", "2")
	t.Setenv("CIP116_VALIDATOR_CACHE_SIZE", "64")
	t.Setenv("CIP116_RELOAD_SCHEDULE", "*/15 * * * *")
	t.Setenv("CIP116_LOG_LEVEL", "debug")
	t.Setenv("CIP116_OTEL_ENABLED", "true")
	t.Setenv("CIP116_OTEL_SAMPLE_RATIO", "0.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, storage.TypeS3, cfg.Storage.Type)
	assert.Equal(t, "ledger-schemas", cfg.Storage.S3Bucket)
	assert.Equal(t, "cip116/v1", cfg.Storage.S3Prefix)
	assert.True(t, cfg.Storage.S3UsePathStyle)
	assert.True(t, cfg.Storage.CacheEnabled)
	assert.Equal(t, 10*time.Minute, cfg.Storage.CacheTTL)
	assert.Equal(t, 2, cfg.Storage.RedisDB)
	assert.Equal(t, 64, cfg.Validation.CacheSize)
	assert.Equal(t, "*/15 * * * *", cfg.Validation.ReloadSchedule)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)

	otel := cfg.Observability.OTel()
	assert.True(t, otel.Enabled)
	assert.Equal(t, "cip116-server", otel.ServiceName)
	assert.Equal(t, 0.5, otel.SampleRatio)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:     ServerConfig{Port: "8080", HealthPort: "9090", MaxBodyBytes: 1024},
			Storage:    storage.DefaultConfig(),
			Validation: ValidationConfig{CacheSize: 16},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "server port is required"},
		{name: "missing health port", mutate: func(c *Config) { c.Server.HealthPort = "" }, wantErr: "health port is required"},
		{name: "same ports", mutate: func(c *Config) { c.Server.HealthPort = "8080" }, wantErr: "must be different"},
		{name: "zero body limit", mutate: func(c *Config) { c.Server.MaxBodyBytes = 0 }, wantErr: "max body bytes"},
		{name: "bad source", mutate: func(c *Config) { c.Storage.Type = "postgres" }, wantErr: "invalid schema source"},
		{name: "zero cache", mutate: func(c *Config) { c.Validation.CacheSize = 0 }, wantErr: "cache size"},
		{name: "reload schedule", mutate: func(c *Config) { c.Validation.ReloadSchedule = "@hourly" }},
		{name: "bad reload schedule", mutate: func(c *Config) { c.Validation.ReloadSchedule = "every tuesday" }, wantErr: "invalid reload schedule"},
		{
			name:    "otel without endpoint",
			mutate:  func(c *Config) { c.Observability.OTelEnabled = true; c.Observability.OTelServiceName = "x" },
			wantErr: "endpoint is required",
		},
		{
			name:    "otel without service name",
			mutate:  func(c *Config) { c.Observability.OTelEnabled = true; c.Observability.OTelEndpoint = "x:4317" },
			wantErr: "service name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("CIP116_SCHEMA_SOURCE", "s3")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "configuration validation failed")
}

func TestLoadEras(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	eras, err := LoadEras(write("eras.yaml", "Babbage: cardano-babbage.json\nconway: cardano-conway-draft.json\n"))
	require.NoError(t, err)
	assert.Equal(t, map[schema.Era]string{
		schema.Babbage: "cardano-babbage.json",
		schema.Conway:  "cardano-conway-draft.json",
	}, eras)

	_, err = LoadEras(write("empty.yaml", ""))
	assert.ErrorContains(t, err, "lists no eras")

	_, err = LoadEras(write("blank.yaml", "babbage: \"\"\n"))
	assert.ErrorContains(t, err, "empty era or file name")

	_, err = LoadEras(write("bad.yaml", "- not a map\n"))
	assert.ErrorContains(t, err, "failed to parse eras file")

	_, err = LoadEras(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read eras file")

	t.Setenv("CIP116_ERAS_FILE", filepath.Join(dir, "eras.yaml"))
	cfg, err := LoadConfig()
	require.NoError(t, err)
	eras, err = cfg.Eras()
	require.NoError(t, err)
	assert.Len(t, eras, 2)
}
