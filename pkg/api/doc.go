// Package api exposes the schema store, the per-type validators and the
// governance checker over HTTP.
//
// # Endpoints
//
//	GET  /api/v1/eras                                  loaded eras and definition counts
//	GET  /api/v1/eras/{era}/types                      sorted definition names
//	GET  /api/v1/eras/{era}/types/{type}               raw definition
//	POST /api/v1/eras/{era}/types/{type}/validate      validate the request body
//	GET  /api/v1/eras/{era}/governance                 governance and meta-schema report
//	GET  /health/live, /health/ready, /metrics
//
// Validate answers 200 with {"valid": true} or 422 with the violations.
// Unknown eras and types answer 404.
//
// # Usage
//
//	registry, err := validation.NewEmbeddedRegistry(ctx)
//	server := api.NewServer(registry,
//		api.WithLogger(logger),
//		api.WithMetrics(metrics, promRegistry),
//		api.WithHealthChecker(health),
//	)
//	http.ListenAndServe(":8080", server)
//
// Every request passes through request ID, logging, panic recovery and body
// limit middleware and is traced with otelhttp.
//
// # Reloading
//
// A Reloader refetches the era documents on a cron schedule and swaps the
// new registry in with SetRegistry:
//
//	reloader := api.NewReloader(server, loader, backend.Invalidate, logger)
//	err := reloader.Start("*/15 * * * *")
//	defer reloader.Stop(ctx)
package api
