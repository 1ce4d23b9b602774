// Package worker implements the producer and consumer loops that drive a
// marketplace. All waiting happens here: the marketplace itself never blocks.
package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/marketplace-simulator/internal/model"
	"github.com/fairyhunter13/marketplace-simulator/internal/obs"
)

// ProducerMarket is the part of the marketplace a producer uses.
type ProducerMarket interface {
	RegisterProducer() string
	Publish(producerID string, p model.Product) bool
}

// MinRetryWait is the shortest pause between two attempts of a rejected
// publish or add, whatever wait was configured.
const MinRetryWait = time.Millisecond

// Producer publishes its catalog over and over until cancelled.
type Producer struct {
	ID            string
	Name          string
	Catalog       []model.CatalogItem
	RepublishWait time.Duration

	market    ProducerMarket
	published atomic.Uint64
	rejected  atomic.Uint64
}

// NewProducer registers a new producer with market.
func NewProducer(name string, catalog []model.CatalogItem, republishWait time.Duration, market ProducerMarket) *Producer {
	return &Producer{
		ID:            market.RegisterProducer(),
		Name:          name,
		Catalog:       catalog,
		RepublishWait: republishWait,
		market:        market,
	}
}

// Run publishes each catalog item Quantity times, waiting ProductionTime after
// every accepted item. A rejected item is retried after RepublishWait, never
// sooner than MinRetryWait. Run returns the context error once ctx is done.
func (p *Producer) Run(ctx context.Context) error {
	if len(p.Catalog) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	for {
		for _, item := range p.Catalog {
			for n := 0; n < item.Quantity; n++ {
				if err := p.publish(ctx, item.Product); err != nil {
					return err
				}
				if err := sleep(ctx, item.ProductionTime); err != nil {
					return err
				}
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (p *Producer) publish(ctx context.Context, product model.Product) error {
	for !p.market.Publish(p.ID, product) {
		p.rejected.Add(1)
		obs.Logger.Debugw("publish_rejected", "producer", p.Name, "producer_id", p.ID, "product", product.String())
		if err := sleep(ctx, max(p.RepublishWait, MinRetryWait)); err != nil {
			return err
		}
	}
	p.published.Add(1)
	return nil
}

// Counts returns how many publishes were accepted and rejected so far.
func (p *Producer) Counts() (published, rejected uint64) {
	return p.published.Load(), p.rejected.Load()
}

// sleep waits for d or until ctx is done. It always reports a done context,
// even for d <= 0, so tight loops stay cancellable.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
