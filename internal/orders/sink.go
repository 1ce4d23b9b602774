// Package orders archives placed orders. Archiving is a side effect of the
// driver layer: archived orders can be reloaded for lookup, but nothing here
// is read back into the marketplace.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/marketplace-simulator/internal/marketplace"
	"github.com/fairyhunter13/marketplace-simulator/internal/model"
)

// ErrMissingID is returned when an order without an id is recorded.
var ErrMissingID = errors.New("order id is required")

// Sink receives every placed order.
type Sink interface {
	Record(ctx context.Context, o model.Order) error
}

// Loader streams previously archived orders, oldest first.
type Loader interface {
	LoadAll(ctx context.Context, fn func(model.Order) error) error
}

// Preload records every order from src into dst and returns how many were copied.
func Preload(ctx context.Context, src Loader, dst Sink) (int, error) {
	n := 0
	err := src.LoadAll(ctx, func(o model.Order) error {
		if err := dst.Record(ctx, o); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("preload orders: %w", err)
	}
	return n, nil
}

// Fanout records to every sink and joins their errors.
type Fanout []Sink

func (f Fanout) Record(ctx context.Context, o model.Order) error {
	var errs []error
	for _, s := range f {
		if err := s.Record(ctx, o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every order.
type Discard struct{}

func (Discard) Record(context.Context, model.Order) error { return nil }

// NewOrder builds an order from placed cart entries with a fresh id.
func NewOrder(consumer string, cartID int, entries []marketplace.Entry[model.Product]) model.Order {
	items := make([]model.OrderItem, len(entries))
	for i, e := range entries {
		items[i] = model.OrderItem{ProducerID: e.ProducerID, Product: e.Product}
	}
	return model.Order{
		ID:       uuid.New(),
		Consumer: consumer,
		CartID:   cartID,
		Items:    items,
		PlacedAt: time.Now().UTC(),
	}
}

func validate(o model.Order) error {
	if o.ID == uuid.Nil {
		return ErrMissingID
	}
	return nil
}

func wrap(op string, o model.Order, err error) error {
	return fmt.Errorf("%s order %s: %w", op, o.ID, err)
}
