package app

import (
	"errors"
	"fmt"

	"chefmate/internal/config"
	"chefmate/internal/database"
	"chefmate/internal/metrics"
	"chefmate/internal/pgstore"
	"chefmate/internal/recipe"
	"chefmate/internal/shopping"
	"chefmate/internal/storage"
	"chefmate/internal/supabase"

	"go.uber.org/zap"
)

// Backend is the pair of stores selected by STORE_BACKEND.
type Backend struct {
	Recipes recipe.Store
	Items   shopping.Store
	closers []func() error
}

// Close releases the connections held by the backend.
func (b *Backend) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// OpenBackend opens the stores for cfg.StoreBackend.
func OpenBackend(cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.StoreBackend {
	case config.BackendSupabase:
		client := supabase.NewClient(cfg, logger.Named("supabase"))
		return &Backend{Recipes: client, Items: client}, nil

	case config.BackendPostgres:
		store, err := pgstore.Open(cfg.PostgresDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return &Backend{Recipes: store, Items: store, closers: []func() error{store.Close}}, nil

	case config.BackendLocal:
		store, err := storage.NewStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open local store: %w", err)
		}
		return &Backend{Recipes: store, Items: store}, nil

	case config.BackendSQLite, "":
		db, err := database.NewDB(cfg.DatabasePath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return &Backend{
			Recipes: recipe.NewRepository(db.SQL),
			Items:   shopping.NewRepository(db.SQL),
			closers: []func() error{db.Close},
		}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

// OpenMetrics opens the action metrics database.
func OpenMetrics(cfg *config.Config, logger *zap.Logger) (*metrics.Store, error) {
	db, err := database.NewDB(cfg.MetricsDBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open metrics database: %w", err)
	}
	return metrics.NewStore(db.SQL), nil
}
