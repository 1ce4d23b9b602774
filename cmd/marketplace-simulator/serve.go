package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	httpapi "github.com/fairyhunter13/marketplace-simulator/internal/http"
	"github.com/fairyhunter13/marketplace-simulator/internal/marketplace"
	"github.com/fairyhunter13/marketplace-simulator/internal/metrics"
	"github.com/fairyhunter13/marketplace-simulator/internal/model"
	"github.com/fairyhunter13/marketplace-simulator/internal/obs"
)

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c.Bool("verbose"), c.String("database-url"), c.String("nats-url"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.HTTPAddr = c.String("addr")
	cfg.QueueSizePerProducer = c.Int("queue-size")
	cfg.ShutdownTimeout = c.Duration("shutdown-timeout")
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := obs.InitLogger(cfg.Verbose); err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer obs.Sync()
	obs.Logger.Infow("service_starting",
		"addr", cfg.HTTPAddr,
		"queueSizePerProducer", cfg.QueueSizePerProducer,
		"shutdownTimeout", cfg.ShutdownTimeout,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mets, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}
	market, err := marketplace.New[model.Product](cfg.QueueSizePerProducer, marketplace.WithObserver(mets))
	if err != nil {
		return err
	}

	arc, closeArchive, err := openArchive(ctx, cfg)
	defer closeArchive()
	if err != nil {
		return err
	}

	app := httpapi.NewApp(cfg, market, arc.sink, reg)
	if arc.loader != nil {
		n, err := app.RestoreOrders(ctx, arc.loader)
		if err != nil {
			return fmt.Errorf("failed to restore archived orders: %w", err)
		}
		obs.Logger.Infow("orders_restored", "count", n)
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		obs.Logger.Infow("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		obs.Logger.Infow("shutdown_signal")
		app.StartShutdown()

		ctxSrv, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctxSrv); err != nil {
			obs.Logger.Errorw("http_shutdown_error", "error", err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		obs.Logger.Errorw("serve failed", "error", err)
		return err
	}
	stats := market.Stats()
	obs.Logger.Infow("service_stopped",
		"producers", stats.Producers,
		"carts", stats.Carts,
		"queued", stats.Queued,
		"orders", app.Orders.Len(),
	)
	return nil
}
