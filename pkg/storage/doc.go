// Package storage provides the backends schema documents are fetched from.
//
// Every backend implements schema.Source:
//
//   - schema.Embedded(): the documents compiled into the binary
//   - FileSystemSource: a local directory
//   - S3Source: an S3 (or MinIO) bucket with an optional key prefix
//   - RedisCache: a read-through cache wrapping any of the above, keyed
//     cip116:schema:<file>
//
// NewSource selects a backend from Config:
//
//	backend, err := storage.NewSource(ctx, cfg.Storage, logger, metrics)
//	if err != nil {
//		return err
//	}
//	defer backend.Close()
//	store, err := schema.NewLoader(backend.Source, logger, metrics).Load(ctx)
//
// S3 and Redis operations are traced with OpenTelemetry. Cache reads that fail
// fall back to the wrapped source, so Redis outages degrade latency but never
// availability.
package storage
