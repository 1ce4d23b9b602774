package marketplace

import (
	"slices"
	"sync"
)

// Entry is a cart line: a product and the producer it was withdrawn from.
type Entry[P Item] struct {
	ProducerID string `json:"producer_id"`
	Product    P      `json:"product"`
}

type cart[P Item] struct {
	mu      sync.Mutex
	entries []Entry[P]
}

// NewCart creates an empty cart. Identifiers start at 0 and are never reused.
func (m *Marketplace[P]) NewCart() int {
	m.cartMu.Lock()
	defer m.cartMu.Unlock()
	m.carts = append(m.carts, &cart[P]{})
	return len(m.carts) - 1
}

// AddToCart withdraws one instance of p from the first producer, in
// registration order, whose queue holds it. It returns false when no queue
// holds p or the cart does not exist.
func (m *Marketplace[P]) AddToCart(cartID int, p P) bool {
	c, ok := m.cart(cartID)
	if !ok {
		return false
	}
	for _, q := range m.snapshotProducers() {
		q.mu.Lock()
		i := slices.Index(q.items, p)
		if i < 0 {
			q.mu.Unlock()
			continue
		}
		q.items = slices.Delete(q.items, i, i+1)
		c.mu.Lock()
		c.entries = append(c.entries, Entry[P]{ProducerID: q.id, Product: p})
		c.mu.Unlock()
		m.observer.QueueLength(q.id, len(q.items))
		q.mu.Unlock()

		m.observer.CartAdded(true)
		return true
	}
	m.observer.CartAdded(false)
	return false
}

// RemoveFromCart returns the first cart entry matching p to the queue it came
// from. The producer's capacity is not checked, so the queue may end up above
// its configured size.
func (m *Marketplace[P]) RemoveFromCart(cartID int, p P) bool {
	c, ok := m.cart(cartID)
	if !ok {
		return false
	}
	c.mu.Lock()
	i := slices.IndexFunc(c.entries, func(e Entry[P]) bool { return e.Product == p })
	if i < 0 {
		c.mu.Unlock()
		m.observer.CartRemoved(false)
		return false
	}
	origin := c.entries[i].ProducerID
	c.mu.Unlock()

	q, ok := m.producer(origin)
	if !ok {
		return false
	}
	// Lock order is producer then cart, same as AddToCart.
	q.mu.Lock()
	c.mu.Lock()
	i = slices.IndexFunc(c.entries, func(e Entry[P]) bool {
		return e.ProducerID == origin && e.Product == p
	})
	if i < 0 {
		c.mu.Unlock()
		q.mu.Unlock()
		m.observer.CartRemoved(false)
		return false
	}
	c.entries = slices.Delete(c.entries, i, i+1)
	q.items = append(q.items, p)
	c.mu.Unlock()
	m.observer.QueueLength(origin, len(q.items))
	q.mu.Unlock()

	m.observer.CartRemoved(true)
	return true
}

// PlaceOrder returns the cart contents in the order they were added.
// The cart stays open; the returned slice is a copy.
func (m *Marketplace[P]) PlaceOrder(cartID int) ([]Entry[P], bool) {
	entries, ok := m.Cart(cartID)
	if !ok {
		return nil, false
	}
	m.observer.OrderPlaced(len(entries))
	return entries, true
}

// Cart returns a copy of the cart contents without placing an order.
func (m *Marketplace[P]) Cart(cartID int) ([]Entry[P], bool) {
	c, ok := m.cart(cartID)
	if !ok {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry[P], len(c.entries))
	copy(out, c.entries)
	return out, true
}

func (m *Marketplace[P]) cart(id int) (*cart[P], bool) {
	m.cartMu.RLock()
	defer m.cartMu.RUnlock()
	if id < 0 || id >= len(m.carts) {
		return nil, false
	}
	return m.carts[id], true
}
