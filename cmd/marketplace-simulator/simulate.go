package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/fairyhunter13/marketplace-simulator/internal/marketplace"
	"github.com/fairyhunter13/marketplace-simulator/internal/metrics"
	"github.com/fairyhunter13/marketplace-simulator/internal/model"
	"github.com/fairyhunter13/marketplace-simulator/internal/obs"
	"github.com/fairyhunter13/marketplace-simulator/internal/orders"
	"github.com/fairyhunter13/marketplace-simulator/internal/scenario"
	"github.com/fairyhunter13/marketplace-simulator/internal/sim"
)

func simulate(c *cli.Context) error {
	cfg, err := loadConfig(c.Bool("verbose"), c.String("database-url"), c.String("nats-url"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := obs.InitLogger(cfg.Verbose); err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer obs.Sync()

	s, err := scenario.Load(c.String("scenario"))
	if err != nil {
		return err
	}
	if q := c.Int("queue-size"); q > 0 {
		s.QueueSizePerProducer = q
	}
	obs.Logger.Infow("config",
		"scenario", c.String("scenario"),
		"queueSizePerProducer", s.QueueSizePerProducer,
		"producers", len(s.Producers),
		"consumers", len(s.Consumers),
		"timeout", c.Duration("timeout"),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if d := c.Duration("timeout"); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	mets, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}
	market, err := marketplace.New[model.Product](s.QueueSizePerProducer, marketplace.WithObserver(mets))
	if err != nil {
		return err
	}

	arc, closeArchive, err := openArchive(ctx, cfg)
	defer closeArchive()
	if err != nil {
		return err
	}
	sink := arc.sink
	if sink == nil {
		sink = orders.Discard{}
	}

	runner := sim.NewRunner(s, market, sink, c.App.Writer)
	err = runner.Run(ctx)
	if errors.Is(err, context.Canceled) {
		obs.Logger.Infow("exiting due to context cancellation")
		return nil
	}
	if err != nil {
		obs.Logger.Errorw("simulation failed", "error", err)
		return err
	}
	return nil
}
