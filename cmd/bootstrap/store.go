package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"homeserve/internal/infra/docstore"
	"homeserve/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var StoreModule = fx.Module("store",
	fx.Provide(
		NewStore,
	),
)

// NewStore selects the document store driver. The memory driver serves
// local development and tests; postgres is the production path.
func NewStore(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (docstore.Store, error) {
	var store docstore.Store

	switch cfg.Store.Driver {
	case "memory":
		store = docstore.NewMemoryStore()
		logger.Info("document store initialized", "driver", "memory")
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Store.OpTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, cfg.DB.BuildDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		pgStore, err := docstore.NewPostgresStore(ctx, pool, logger)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to initialize postgres store: %w", err)
		}

		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				pool.Close()
				return nil
			},
		})
		store = pgStore
		logger.Info("document store initialized", "driver", "postgres", "host", cfg.DB.Host)
	default:
		return nil, fmt.Errorf("unknown store driver: %q", cfg.Store.Driver)
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return store.Close()
		},
	})
	return store, nil
}
