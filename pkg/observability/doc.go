// Package observability provides structured logging, Prometheus metrics, health
// probes and OpenTelemetry tracing for the schema tooling and the validation
// server.
//
// # Overview
//
// Logging uses logrus with a JSON formatter. Metrics cover schema loads, the
// governance checker, validator compilation and caching, and per-type
// validation outcomes. Every Record* helper tolerates a nil *Metrics so library
// callers can leave instrumentation off.
//
// # Structured Logging
//
//	logger := observability.NewLogger(observability.ParseLogLevel("debug"), os.Stderr)
//	logger.WithField("era", "babbage").Info("schema loaded")
//
// Request-scoped logging:
//
//	ctx = observability.WithRequestID(ctx, id)
//	observability.FromContext(ctx).Warn("validation failed")
//
// # Prometheus Metrics
//
//	reg := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(reg)
//	metrics.RecordValidation("babbage", "Address", true, time.Since(start))
//	http.Handle("/metrics", observability.MetricsHandler(reg))
//
// # Health Checks
//
// Readiness is gated on the schema store; Redis is optional and only degrades
// the reported status:
//
//	checker := observability.NewHealthChecker(version, store.Ready, redisClient)
//	router.HandleFunc("/health/ready", checker.Readiness)
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:     true,
//		Endpoint:    "otel-collector:4317",
//		ServiceName: "cip116-server",
//	}, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/api: Request logging and metrics middleware
package observability
