package orders

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/marketplace-simulator/internal/model"
)

// PostgresSink stores placed orders as JSON documents.
type PostgresSink struct {
	Pool *pgxpool.Pool
}

func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{Pool: pool}
}

// EnsureSchema creates the orders table if it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS placed_orders (
  order_id  text PRIMARY KEY,
  consumer  text NOT NULL,
  cart_id   integer NOT NULL,
  placed_at timestamptz NOT NULL,
  payload   jsonb NOT NULL
);`)
	return err
}

func (s *PostgresSink) Record(ctx context.Context, o model.Order) error {
	if err := validate(o); err != nil {
		return err
	}
	raw, err := json.Marshal(o)
	if err != nil {
		return wrap("encode", o, err)
	}
	_, err = s.Pool.Exec(ctx, `INSERT INTO placed_orders(order_id, consumer, cart_id, placed_at, payload)
        VALUES($1, $2, $3, $4, $5)
        ON CONFLICT (order_id) DO UPDATE SET payload = EXCLUDED.payload`,
		o.ID.String(), o.Consumer, o.CartID, o.PlacedAt, raw)
	if err != nil {
		return wrap("insert", o, err)
	}
	return nil
}

// LoadAll streams every stored order to fn, oldest first. Rows that fail to
// decode are skipped.
func (s *PostgresSink) LoadAll(ctx context.Context, fn func(model.Order) error) error {
	rows, err := s.Pool.Query(ctx, `SELECT payload FROM placed_orders ORDER BY placed_at`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return err
		}
		var o model.Order
		if err := json.Unmarshal(raw, &o); err != nil {
			continue
		}
		if err := fn(o); err != nil {
			return err
		}
	}
	return rows.Err()
}

var (
	_ Sink   = (*PostgresSink)(nil)
	_ Loader = (*PostgresSink)(nil)
)
