package app

import (
	"context"
	"errors"
	"fmt"

	"chefmate/internal/clipper"
	"chefmate/internal/config"
	"chefmate/internal/llm"
	"chefmate/internal/metrics"

	"go.uber.org/zap"
)

// Runtime is an App wired to the configured backend, metrics database and
// recipe clipper.
type Runtime struct {
	App     *App
	Backend *Backend
	// Metrics is nil when the metrics database could not be opened.
	Metrics *metrics.Store
	Clipper *clipper.Clipper

	closers []func() error
}

// Start opens everything cfg names and loads the App.
func Start(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rt := &Runtime{}

	backend, err := OpenBackend(cfg, logger)
	if err != nil {
		return nil, err
	}
	rt.Backend = backend
	rt.closers = append(rt.closers, backend.Close)

	opts := Options{DefaultUnit: cfg.DefaultUnit, Logger: logger.Named("app")}
	if store, err := OpenMetrics(cfg, logger.Named("metrics")); err != nil {
		logger.Warn("metrics disabled", zap.Error(err))
	} else {
		rt.Metrics = store
		opts.Metrics = store
		rt.closers = append(rt.closers, store.Close)
	}

	gen, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to create text generator: %w", err)
	}
	if c, ok := gen.(llm.Closer); ok {
		rt.closers = append(rt.closers, c.Close)
	}
	rt.Clipper = clipper.NewClipper(gen, logger.Named("clipper"), cfg.HTTPTimeout)
	if rt.Metrics != nil {
		rt.Clipper.SetRecorder(rt.Metrics)
	}

	rt.App = NewApp(backend.Recipes, backend.Items, opts)
	if err := rt.App.Load(ctx); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// Close releases the stores and clients in reverse opening order.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	rt.closers = nil
	return errors.Join(errs...)
}
