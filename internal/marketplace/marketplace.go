// Package marketplace implements the shared registry that mediates every
// producer and consumer interaction.
//
// Each producer owns a bounded queue guarded by its own mutex, so publishing
// to different producers never contends. Carts are ordered staging areas for
// withdrawn items; an item is always either in exactly one producer queue or
// in exactly one cart. Rejections are reported as false and never retried
// here: callers own backoff and retry.
package marketplace

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/fairyhunter13/marketplace-simulator/internal/obs"
)

// ProducerIDPrefix prefixes the sequential producer identifiers.
const ProducerIDPrefix = "prod"

// ErrInvalidCapacity is returned by New for a non-positive queue size.
var ErrInvalidCapacity = errors.New("queue size per producer must be positive")

// Item is the constraint on marketplace products: equality plus a display form.
type Item interface {
	comparable
	fmt.Stringer
}

type producerQueue[P Item] struct {
	id    string
	mu    sync.Mutex
	items []P
}

// Marketplace is safe for concurrent use by any number of producers and consumers.
type Marketplace[P Item] struct {
	capacity int
	observer Observer

	regMu      sync.RWMutex
	producers  []*producerQueue[P] // registration order
	byID       map[string]*producerQueue[P]
	nextProdID int

	cartMu sync.RWMutex
	carts  []*cart[P]
}

// Option customizes a Marketplace.
type Option func(*options)

type options struct {
	observer Observer
}

// WithObserver reports marketplace activity to o.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		if o != nil {
			opts.observer = o
		}
	}
}

// New creates a Marketplace whose producer queues hold at most queueSizePerProducer items.
func New[P Item](queueSizePerProducer int, opts ...Option) (*Marketplace[P], error) {
	if queueSizePerProducer <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, queueSizePerProducer)
	}
	o := options{observer: nopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Marketplace[P]{
		capacity:   queueSizePerProducer,
		observer:   o.observer,
		byID:       make(map[string]*producerQueue[P]),
		nextProdID: 1,
	}, nil
}

// Capacity returns the configured queue size per producer.
func (m *Marketplace[P]) Capacity() int { return m.capacity }

// RegisterProducer allocates an empty queue and returns its identifier.
func (m *Marketplace[P]) RegisterProducer() string {
	m.regMu.Lock()
	id := ProducerIDPrefix + strconv.Itoa(m.nextProdID)
	m.nextProdID++
	q := &producerQueue[P]{id: id}
	m.producers = append(m.producers, q)
	m.byID[id] = q
	// Reported before the producer becomes visible to Publish.
	m.observer.QueueLength(id, 0)
	m.regMu.Unlock()

	obs.Logger.Debugw("producer_registered", "producer_id", id)
	return id
}

// Publish appends p to the producer's queue if it is below capacity.
// It returns false for a full queue or an unknown producer.
func (m *Marketplace[P]) Publish(producerID string, p P) bool {
	q, ok := m.producer(producerID)
	if !ok {
		return false
	}
	q.mu.Lock()
	if len(q.items) >= m.capacity {
		q.mu.Unlock()
		m.observer.Published(producerID, false)
		return false
	}
	q.items = append(q.items, p)
	m.observer.QueueLength(producerID, len(q.items))
	q.mu.Unlock()

	m.observer.Published(producerID, true)
	return true
}

// Producers returns producer identifiers in registration order.
func (m *Marketplace[P]) Producers() []string {
	m.regMu.RLock()
	defer m.regMu.RUnlock()
	ids := make([]string, len(m.producers))
	for i, q := range m.producers {
		ids[i] = q.id
	}
	return ids
}

// Stock returns a copy of the producer's queue, oldest item first.
func (m *Marketplace[P]) Stock(producerID string) ([]P, bool) {
	q, ok := m.producer(producerID)
	if !ok {
		return nil, false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.items), true
}

// Stats summarizes the marketplace.
type Stats struct {
	Producers int `json:"producers"`
	Carts     int `json:"carts"`
	Queued    int `json:"queued"`
}

// Stats returns current counts. Queued is summed queue by queue and is not an
// atomic snapshot across producers.
func (m *Marketplace[P]) Stats() Stats {
	var s Stats
	for _, q := range m.snapshotProducers() {
		q.mu.Lock()
		s.Queued += len(q.items)
		q.mu.Unlock()
		s.Producers++
	}
	m.cartMu.RLock()
	s.Carts = len(m.carts)
	m.cartMu.RUnlock()
	return s
}

func (m *Marketplace[P]) producer(id string) (*producerQueue[P], bool) {
	m.regMu.RLock()
	defer m.regMu.RUnlock()
	q, ok := m.byID[id]
	return q, ok
}

func (m *Marketplace[P]) snapshotProducers() []*producerQueue[P] {
	m.regMu.RLock()
	defer m.regMu.RUnlock()
	return slices.Clone(m.producers)
}
