package orders

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/fairyhunter13/marketplace-simulator/internal/model"
)

// MemorySink keeps placed orders in memory, in placement order.
type MemorySink struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]int
	order []model.Order
}

func NewMemorySink() *MemorySink {
	return &MemorySink{byID: make(map[uuid.UUID]int)}
}

// Record stores o. Recording the same order id again replaces the earlier copy.
func (s *MemorySink) Record(_ context.Context, o model.Order) error {
	if err := validate(o); err != nil {
		return err
	}
	o.Items = slices.Clone(o.Items)
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.byID[o.ID]; ok {
		s.order[i] = o
		return nil
	}
	s.byID[o.ID] = len(s.order)
	s.order = append(s.order, o)
	return nil
}

func (s *MemorySink) Get(id uuid.UUID) (model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return model.Order{}, false
	}
	return s.order[i], true
}

// All returns every recorded order, oldest first.
func (s *MemorySink) All() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// LoadAll passes every recorded order to fn, oldest first.
func (s *MemorySink) LoadAll(_ context.Context, fn func(model.Order) error) error {
	for _, o := range s.All() {
		if err := fn(o); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
