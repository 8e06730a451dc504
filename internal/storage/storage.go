// Package storage opens the repository.Store selected by configuration.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Shivanand-hulikatti/event-registration/internal/config"
	"github.com/Shivanand-hulikatti/event-registration/internal/database"
	"github.com/Shivanand-hulikatti/event-registration/internal/repository"
	"github.com/Shivanand-hulikatti/event-registration/internal/repository/badgerstore"
	"github.com/Shivanand-hulikatti/event-registration/internal/repository/postgres"
	"github.com/Shivanand-hulikatti/event-registration/internal/repository/sqlite"
)

// Open connects to the configured backend and applies migrations where the
// backend has a schema. The caller owns the returned store.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger) (repository.Store, error) {
	log = log.With(slog.String("store", cfg.StoreDriver))

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		if err := database.MigratePostgres(cfg.Database); err != nil {
			return nil, err
		}
		pool, err := database.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		return postgres.New(pool, log), nil

	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		log.Info("store ready", slog.String("path", cfg.SQLitePath))
		return s, nil

	case config.DriverBadger:
		s, err := badgerstore.Open(cfg.BadgerPath, log)
		if err != nil {
			return nil, err
		}
		if cfg.BadgerPath == "" {
			log.Warn("badger running in memory; data is lost on exit")
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
