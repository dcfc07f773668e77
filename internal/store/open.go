package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/sheetforms/internal/config"
	"github.com/JonMunkholm/sheetforms/internal/core"
	"github.com/JonMunkholm/sheetforms/internal/store/memory"
	"github.com/JonMunkholm/sheetforms/internal/store/postgres"
)

// FromConfig returns a lazily opened store for the configured driver.
func FromConfig(cfg *config.Config) (*Lazy, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return NewLazy(func(context.Context) (core.Store, error) {
			slog.Warn("using in-memory store, data is lost on restart")
			return memory.New(), nil
		}), nil
	case config.DriverPostgres:
		return NewLazy(PostgresOpener(cfg.Database, cfg.Store.MigrateOnStart)), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// PostgresOpener connects to PostgreSQL within the connect timeout and,
// when migrate is set, applies pending migrations.
func PostgresOpener(db config.DatabaseConfig, migrate bool) Opener {
	return func(ctx context.Context) (core.Store, error) {
		ctx, cancel := context.WithTimeout(ctx, db.ConnectTimeout)
		defer cancel()

		s, err := postgres.Open(ctx, db)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := postgres.Migrate(ctx, s.Pool()); err != nil {
				s.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}

		slog.Info("connected to database", "max_conns", db.MaxConns)
		return s, nil
	}
}
