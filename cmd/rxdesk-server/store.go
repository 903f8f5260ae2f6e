package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/rxdesk/rxdesk/internal/config"
	"github.com/rxdesk/rxdesk/internal/platform/db"
	"github.com/rxdesk/rxdesk/internal/platform/kv"
)

// openStore connects the configured backend. pool is non-nil only for
// postgres, whose schema is migrated before the store is returned.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (kv.Store, *pgxpool.Pool, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		logger.Warn().Msg("using in-memory store; prescriptions are lost on restart")
		return kv.NewMemory(), nil, nil

	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, err
		}
		applied, err := db.NewMigrator(pool, db.Migrations()).Up(ctx)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info().Int("applied", applied).Msg("connected to postgres")
		return kv.NewPostgres(pool), pool, nil

	case config.BackendMongo:
		store, err := kv.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("database", cfg.MongoDatabase).Msg("connected to mongodb")
		return store, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
