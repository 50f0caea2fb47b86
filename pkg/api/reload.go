package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/cip116/pkg/schema"
	"github.com/platinummonkey/cip116/pkg/validation"
)

// InvalidateFunc drops cached documents before a reload
type InvalidateFunc func(ctx context.Context) error

// Reloader refetches the era documents on a cron schedule and swaps a freshly
// built registry into the server. A failed reload keeps the current registry.
type Reloader struct {
	server     *Server
	loader     *schema.Loader
	invalidate InvalidateFunc
	opts       []validation.Option
	logger     logrus.FieldLogger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewReloader creates a reloader for server. opts are applied to every new
// registry.
func NewReloader(server *Server, loader *schema.Loader, invalidate InvalidateFunc, logger logrus.FieldLogger, opts ...validation.Option) *Reloader {
	if logger == nil {
		logger = server.logger
	}
	return &Reloader{
		server:     server,
		loader:     loader,
		invalidate: invalidate,
		opts:       opts,
		logger:     logger,
	}
}

// Reload loads every era and swaps the new registry in
func (r *Reloader) Reload(ctx context.Context) error {
	if r.invalidate != nil {
		if err := r.invalidate(ctx); err != nil {
			r.logger.WithError(err).Warn("Failed to invalidate schema cache")
		}
	}

	store, err := r.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload schemas: %w", err)
	}
	registry, err := validation.NewRegistry(store, r.opts...)
	if err != nil {
		return fmt.Errorf("failed to build registry: %w", err)
	}

	r.server.SetRegistry(registry)
	r.logger.WithField("eras", len(store.Eras())).Info("Schemas reloaded")
	return nil
}

// Start schedules Reload with a standard five-field cron expression
func (r *Reloader) Start(spec string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return fmt.Errorf("reloader already started")
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if err := r.Reload(context.Background()); err != nil {
			r.logger.WithError(err).Error("Scheduled schema reload failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", spec, err)
	}
	c.Start()
	r.cron = c

	r.logger.WithField("schedule", spec).Info("Schema reload scheduled")
	return nil
}

// Stop halts the schedule and waits for a running reload, bounded by ctx
func (r *Reloader) Stop(ctx context.Context) error {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
