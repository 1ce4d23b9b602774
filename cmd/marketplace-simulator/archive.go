package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/marketplace-simulator/internal/config"
	"github.com/fairyhunter13/marketplace-simulator/internal/obs"
	"github.com/fairyhunter13/marketplace-simulator/internal/orders"
)

// archive holds the order sinks enabled in cfg. loader is set when one of them
// can read placed orders back.
type archive struct {
	sink   orders.Sink
	loader orders.Loader
}

// openArchive connects the order sinks enabled in cfg. The returned close
// function releases every connection that was opened.
func openArchive(ctx context.Context, cfg config.Config) (archive, func(), error) {
	var (
		arc     archive
		sinks   orders.Fanout
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return archive{}, closeAll, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		closers = append(closers, pool.Close)
		if err := pool.Ping(ctx); err != nil {
			return archive{}, closeAll, fmt.Errorf("failed to ping postgres: %w", err)
		}
		if err := orders.EnsureSchema(ctx, pool); err != nil {
			return archive{}, closeAll, fmt.Errorf("failed to create orders table: %w", err)
		}
		pg := orders.NewPostgresSink(pool)
		sinks = append(sinks, pg)
		arc.loader = pg
		obs.Logger.Infow("archive_enabled", "sink", "postgres")
	}

	if cfg.NatsURL != "" {
		sink, conn, err := orders.DialStan(cfg.StanClusterID, cfg.StanClientID, cfg.NatsURL, cfg.StanSubject)
		if err != nil {
			return archive{}, closeAll, fmt.Errorf("failed to connect to nats streaming: %w", err)
		}
		closers = append(closers, func() {
			if err := conn.Close(); err != nil {
				obs.Logger.Warnw("stan_close_error", "error", err)
			}
		})
		sinks = append(sinks, sink)
		obs.Logger.Infow("archive_enabled", "sink", "stan", "subject", cfg.StanSubject)
	}

	if len(sinks) > 0 {
		arc.sink = sinks
	}
	return arc, closeAll, nil
}

// loadConfig reads the environment and lets command flags override it.
func loadConfig(verbose bool, databaseURL, natsURL string) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	cfg.Verbose = cfg.Verbose || verbose
	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}
	if natsURL != "" {
		cfg.NatsURL = natsURL
	}
	return cfg, nil
}
