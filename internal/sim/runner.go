// Package sim runs a scenario's producers and consumers against one marketplace.
package sim

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/marketplace-simulator/internal/marketplace"
	"github.com/fairyhunter13/marketplace-simulator/internal/model"
	"github.com/fairyhunter13/marketplace-simulator/internal/obs"
	"github.com/fairyhunter13/marketplace-simulator/internal/orders"
	"github.com/fairyhunter13/marketplace-simulator/internal/scenario"
	"github.com/fairyhunter13/marketplace-simulator/internal/worker"
)

// Runner coordinates producer and consumer workers. Producers run until every
// consumer has finished; consumers run their scripts to completion.
type Runner struct {
	market    *marketplace.Marketplace[model.Product]
	producers []*worker.Producer
	consumers []*worker.Consumer

	cancel      context.CancelFunc
	group       *errgroup.Group
	producersWG sync.WaitGroup
	started     time.Time

	mu     sync.Mutex
	orders []model.Order
}

// NewRunner registers the scenario's producers with market in scenario order
// and prepares its consumers. Purchase lines go to out.
func NewRunner(s *scenario.Scenario, market *marketplace.Marketplace[model.Product], sink orders.Sink, out io.Writer) *Runner {
	w := &lockedWriter{w: out}
	r := &Runner{market: market}
	for _, p := range s.Producers {
		r.producers = append(r.producers, worker.NewProducer(p.Name, p.Catalog, p.RepublishWait, market))
	}
	for _, c := range s.Consumers {
		r.consumers = append(r.consumers, worker.NewConsumer(c.Name, c.Carts, c.RetryWait, market, sink, w))
	}
	return r
}

// Start launches every worker in the background.
func (r *Runner) Start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	r.cancel = cancel
	r.started = time.Now()

	for _, p := range r.producers {
		r.producersWG.Add(1)
		go func(p *worker.Producer) {
			defer r.producersWG.Done()
			if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				obs.Logger.Warnw("producer_stopped", "producer", p.Name, "producer_id", p.ID, "error", err)
			}
		}(p)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range r.consumers {
		c := c
		g.Go(func() error {
			placed, err := c.Run(gctx)
			r.mu.Lock()
			r.orders = append(r.orders, placed...)
			r.mu.Unlock()
			return err
		})
	}
	r.group = g
	obs.Logger.Infow("simulation_started",
		"producers", len(r.producers),
		"consumers", len(r.consumers),
		"queue_size_per_producer", r.market.Capacity(),
	)
}

// Wait blocks until all consumers are done, then stops the producers.
// It returns the first consumer error.
func (r *Runner) Wait() error {
	err := r.group.Wait()
	r.cancel()
	r.producersWG.Wait()

	stats := r.market.Stats()
	obs.Logger.Infow("simulation_finished",
		"orders", len(r.Orders()),
		"carts", stats.Carts,
		"left_in_queues", stats.Queued,
		"elapsed_ms", time.Since(r.started).Milliseconds(),
	)
	return err
}

// Run is Start followed by Wait.
func (r *Runner) Run(ctx context.Context) error {
	r.Start(ctx)
	return r.Wait()
}

// Orders returns the orders placed so far, grouped by consumer completion.
func (r *Runner) Orders() []model.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Order, len(r.orders))
	copy(out, r.orders)
	return out
}

// ProducerCount returns the number of producer workers.
func (r *Runner) ProducerCount() int { return len(r.producers) }

// ConsumerCount returns the number of consumer workers.
func (r *Runner) ConsumerCount() int { return len(r.consumers) }

// lockedWriter serializes writes so purchase lines from concurrent consumers
// never interleave.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	if l.w == nil {
		return len(p), nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
