package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/cip116/pkg/api"
	"github.com/platinummonkey/cip116/pkg/config"
	"github.com/platinummonkey/cip116/pkg/governance"
	"github.com/platinummonkey/cip116/pkg/observability"
	"github.com/platinummonkey/cip116/pkg/schema"
	"github.com/platinummonkey/cip116/pkg/storage"
	"github.com/platinummonkey/cip116/pkg/validation"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	ctx := context.Background()

	otelCfg := cfg.Observability.OTel()
	if otelCfg.ServiceVersion == "" {
		otelCfg.ServiceVersion = version
	}
	providers, err := observability.InitOTel(ctx, otelCfg, logger)
	if err != nil {
		return err
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(promRegistry)
	}

	backend, err := storage.NewSource(ctx, cfg.Storage, logger, metrics)
	if err != nil {
		return err
	}

	eras, err := cfg.Eras()
	if err != nil {
		return err
	}
	loader := schema.NewLoader(backend.Source, logger, metrics)
	loader.Eras = eras

	store, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load schemas from %s: %w", backend.Source.Name(), err)
	}

	registryOpts := []validation.Option{
		validation.WithCacheSize(cfg.Validation.CacheSize),
		validation.WithLogger(logger),
		validation.WithMetrics(metrics),
	}
	registry, err := validation.NewRegistry(store, registryOpts...)
	if err != nil {
		return err
	}

	govCfg := governance.DefaultConfig()
	if cfg.Validation.GovernanceConfig != "" {
		if govCfg, err = governance.LoadConfig(cfg.Validation.GovernanceConfig); err != nil {
			return err
		}
	}
	engine := governance.NewEngine(govCfg, governance.WithLogger(logger), governance.WithMetrics(metrics))

	apiServer := api.NewServer(registry,
		api.WithLogger(logger),
		api.WithMetrics(metrics, nil),
		api.WithGovernance(engine),
		api.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
	)
	health := observability.NewHealthChecker(version, apiServer.Ready, backend.Redis)

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      apiServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	healthServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: healthRouter(health, promRegistry),
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(healthServer.Shutdown)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, providers, logger)
	})
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		return backend.Close()
	})

	if cfg.Validation.ReloadSchedule != "" {
		reloader := api.NewReloader(apiServer, loader, backend.Invalidate, logger, registryOpts...)
		if err := reloader.Start(cfg.Validation.ReloadSchedule); err != nil {
			return err
		}
		shutdown.RegisterShutdownFunc(reloader.Stop)
	}

	errCh := make(chan error, 2)
	serve := func(name string, srv *http.Server) {
		defer observability.RecoverPanic(logger, name)
		logger.WithField("addr", srv.Addr).Infof("Starting %s", name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%s failed: %w", name, err)
		}
	}
	go serve("API server", httpServer)
	go serve("health server", healthServer)

	logger.WithFields(logrus.Fields{
		"version": version,
		"source":  backend.Source.Name(),
		"eras":    store.Eras(),
	}).Info("cip116 server started")

	shutdownErr := make(chan error, 1)
	go func() { shutdownErr <- shutdown.WaitForShutdown() }()

	select {
	case err := <-errCh:
		if sErr := shutdown.Shutdown(); sErr != nil {
			logger.WithError(sErr).Error("Shutdown after server failure")
		}
		return err
	case err := <-shutdownErr:
		return err
	}
}

func healthRouter(health *observability.HealthChecker, reg *prometheus.Registry) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/health/live", health.Liveness).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", health.Readiness).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler(reg)).Methods(http.MethodGet)
	return router
}
