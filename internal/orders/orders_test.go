package orders

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/marketplace-simulator/internal/marketplace"
	"github.com/fairyhunter13/marketplace-simulator/internal/model"
)

var linden = model.Product{Type: model.ProductTea, Name: "Linden", Price: 9, TeaType: "Herbal"}

func sampleOrder() model.Order {
	return NewOrder("cons1", 3, []marketplace.Entry[model.Product]{{ProducerID: "prod1", Product: linden}})
}

func TestNewOrder(t *testing.T) {
	o := sampleOrder()
	require.NotEqual(t, uuid.Nil, o.ID)
	require.Equal(t, "cons1", o.Consumer)
	require.Equal(t, 3, o.CartID)
	require.Equal(t, []model.OrderItem{{ProducerID: "prod1", Product: linden}}, o.Items)
	require.False(t, o.PlacedAt.IsZero())
}

func TestMemorySinkRecordAndGet(t *testing.T) {
	s := NewMemorySink()
	o := sampleOrder()
	require.NoError(t, s.Record(context.Background(), o))
	got, ok := s.Get(o.ID)
	require.True(t, ok)
	require.Equal(t, o, got)
	_, ok = s.Get(uuid.New())
	require.False(t, ok)
}

func TestMemorySinkReplacesSameID(t *testing.T) {
	s := NewMemorySink()
	o := sampleOrder()
	require.NoError(t, s.Record(context.Background(), o))
	o.Items = nil
	require.NoError(t, s.Record(context.Background(), o))
	require.Equal(t, 1, s.Len())
	got, _ := s.Get(o.ID)
	require.Empty(t, got.Items)
}

func TestMemorySinkRejectsMissingID(t *testing.T) {
	s := NewMemorySink()
	err := s.Record(context.Background(), model.Order{})
	require.ErrorIs(t, err, ErrMissingID)
}

func TestMemorySinkConcurrentRecords(t *testing.T) {
	s := NewMemorySink()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, s.Record(context.Background(), sampleOrder()))
		}()
	}
	wg.Wait()
	require.Len(t, s.All(), 100)
}

type failingSink struct{ err error }

func (f failingSink) Record(context.Context, model.Order) error { return f.err }

func TestFanout(t *testing.T) {
	a, b := NewMemorySink(), NewMemorySink()
	boom := errors.New("boom")
	f := Fanout{a, failingSink{err: boom}, b, Discard{}}
	err := f.Record(context.Background(), sampleOrder())
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, a.Len())
	require.Equal(t, 1, b.Len())
	require.NoError(t, Fanout{}.Record(context.Background(), sampleOrder()))
}

type fakePublisher struct {
	subject string
	data    []byte
	err     error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subject, f.data = subject, data
	return f.err
}

func TestStanSinkPublishesJSON(t *testing.T) {
	pub := &fakePublisher{}
	s := &StanSink{Conn: pub, Subject: "orders"}
	o := sampleOrder()
	require.NoError(t, s.Record(context.Background(), o))
	require.Equal(t, "orders", pub.subject)

	var decoded model.Order
	require.NoError(t, json.Unmarshal(pub.data, &decoded))
	require.Equal(t, o.ID, decoded.ID)
	require.Equal(t, o.Items, decoded.Items)
}

func TestStanSinkErrors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("nats down")}
	s := &StanSink{Conn: pub, Subject: "orders"}
	require.Error(t, s.Record(context.Background(), sampleOrder()))
	require.ErrorIs(t, s.Record(context.Background(), model.Order{}), ErrMissingID)
}

func TestPostgresSinkRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, EnsureSchema(ctx, pool))
	_, err = pool.Exec(ctx, `DELETE FROM placed_orders`)
	require.NoError(t, err)

	s := NewPostgresSink(pool)
	o := sampleOrder()
	require.NoError(t, s.Record(ctx, o))
	require.NoError(t, s.Record(ctx, o))

	var loaded []model.Order
	require.NoError(t, s.LoadAll(ctx, func(o model.Order) error {
		loaded = append(loaded, o)
		return nil
	}))
	require.Len(t, loaded, 1)
	require.Equal(t, o.ID, loaded[0].ID)
}

func TestPreloadCopiesArchive(t *testing.T) {
	src := NewMemorySink()
	first, second := sampleOrder(), sampleOrder()
	require.NoError(t, src.Record(context.Background(), first))
	require.NoError(t, src.Record(context.Background(), second))

	dst := NewMemorySink()
	n, err := Preload(context.Background(), src, dst)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []uuid.UUID{first.ID, second.ID}, []uuid.UUID{dst.All()[0].ID, dst.All()[1].ID})
}

func TestPreloadStopsOnRecordError(t *testing.T) {
	src := NewMemorySink()
	require.NoError(t, src.Record(context.Background(), sampleOrder()))
	n, err := Preload(context.Background(), src, failingSink{err: errors.New("disk full")})
	require.ErrorContains(t, err, "disk full")
	require.Zero(t, n)
}
