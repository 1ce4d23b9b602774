package worker

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fairyhunter13/marketplace-simulator/internal/marketplace"
	"github.com/fairyhunter13/marketplace-simulator/internal/model"
	"github.com/fairyhunter13/marketplace-simulator/internal/obs"
	"github.com/fairyhunter13/marketplace-simulator/internal/orders"
)

// ConsumerMarket is the part of the marketplace a consumer uses.
type ConsumerMarket interface {
	NewCart() int
	AddToCart(cartID int, p model.Product) bool
	RemoveFromCart(cartID int, p model.Product) bool
	PlaceOrder(cartID int) ([]marketplace.Entry[model.Product], bool)
}

// Consumer replays its cart scripts, one cart per script.
type Consumer struct {
	Name      string
	Carts     []model.CartScript
	RetryWait time.Duration

	market ConsumerMarket
	sink   orders.Sink
	out    io.Writer
}

// NewConsumer creates a consumer. A nil sink discards orders and a nil out
// discards purchase lines.
func NewConsumer(name string, carts []model.CartScript, retryWait time.Duration, market ConsumerMarket, sink orders.Sink, out io.Writer) *Consumer {
	if sink == nil {
		sink = orders.Discard{}
	}
	if out == nil {
		out = io.Discard
	}
	return &Consumer{
		Name:      name,
		Carts:     carts,
		RetryWait: retryWait,
		market:    market,
		sink:      sink,
		out:       out,
	}
}

// Run processes every cart script and returns the placed orders. Adds are
// retried every RetryWait (at least MinRetryWait) until they succeed; a remove
// that finds nothing in the cart is skipped. Run stops early with the context error if ctx is done
// while waiting, returning the orders placed so far.
func (c *Consumer) Run(ctx context.Context) ([]model.Order, error) {
	placed := make([]model.Order, 0, len(c.Carts))
	for _, script := range c.Carts {
		cartID := c.market.NewCart()
		for _, a := range script {
			for n := 0; n < a.Quantity; n++ {
				if err := c.apply(ctx, cartID, a); err != nil {
					return placed, err
				}
			}
		}
		entries, ok := c.market.PlaceOrder(cartID)
		if !ok {
			return placed, fmt.Errorf("cart %d vanished before placing the order", cartID)
		}
		order := orders.NewOrder(c.Name, cartID, entries)
		if err := c.sink.Record(ctx, order); err != nil {
			obs.Logger.Warnw("order_archive_failed", "consumer", c.Name, "order_id", order.ID, "error", err)
		}
		c.report(order)
		placed = append(placed, order)
	}
	return placed, nil
}

func (c *Consumer) apply(ctx context.Context, cartID int, a model.Action) error {
	switch a.Type {
	case model.ActionAdd:
		for !c.market.AddToCart(cartID, a.Product) {
			if err := sleep(ctx, max(c.RetryWait, MinRetryWait)); err != nil {
				return err
			}
		}
	case model.ActionRemove:
		if !c.market.RemoveFromCart(cartID, a.Product) {
			obs.Logger.Debugw("remove_missed", "consumer", c.Name, "cart_id", cartID, "product", a.Product.String())
		}
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
	return nil
}

// report writes one purchase line per item, most recently added first.
func (c *Consumer) report(o model.Order) {
	for i := len(o.Items) - 1; i >= 0; i-- {
		fmt.Fprintf(c.out, "%s bought %s\n", c.Name, o.Items[i].Product)
	}
}
