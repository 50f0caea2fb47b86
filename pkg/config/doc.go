// Package config loads server configuration from CIP116_* environment
// variables with defaults for every setting.
//
// Server settings:
//
//	CIP116_HOST="0.0.0.0"
//	CIP116_PORT="8080"
//	CIP116_HEALTH_PORT="9090"
//	CIP116_READ_TIMEOUT="15s"
//	CIP116_MAX_BODY_BYTES="1048576"
//
// Schema source settings:
//
//	CIP116_SCHEMA_SOURCE="s3"  # embedded, filesystem, s3
//	CIP116_SCHEMA_DIR="./schemas"
//	CIP116_S3_BUCKET="ledger-schemas"
//	CIP116_S3_PREFIX="cip116/v1"
//	CIP116_ERAS_FILE="/etc/cip116/eras.yaml"
//	CIP116_RELOAD_SCHEDULE="*/15 * * * *"
//
// Cache settings:
//
//	CIP116_CACHE_ENABLED="true"
//	CIP116_CACHE_TTL="1h"
//	CIP116_REDIS_URL="redis://localhost:6379"
//	CIP116_VALIDATOR_CACHE_SIZE="512"
//
// Observability settings:
//
//	CIP116_LOG_LEVEL="info"
//	CIP116_METRICS_ENABLED="true"
//	CIP116_OTEL_ENABLED="true"
//	CIP116_OTEL_ENDPOINT="otel-collector:4317"
//	CIP116_OTEL_SAMPLE_RATIO="0.1"
//
// Usage:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
package config
