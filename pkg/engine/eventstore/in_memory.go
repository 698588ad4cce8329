package eventstore

import (
	"sync"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

type InMemoryEventStore struct {
	mu           sync.RWMutex
	orders       map[string][]*model.OrderEvent
	latestStatus map[string]model.OrderStatus
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		orders:       make(map[string][]*model.OrderEvent),
		latestStatus: make(map[string]model.OrderStatus),
	}
}

func (s *InMemoryEventStore) AddEvent(ev *model.OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[ev.OrderID] = append(s.orders[ev.OrderID], ev)
	s.latestStatus[ev.OrderID] = ev.Status
}

func (s *InMemoryEventStore) Events(orderID string) []*model.OrderEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	evs := s.orders[orderID]
	out := make([]*model.OrderEvent, len(evs))
	copy(out, evs)
	return out
}

func (s *InMemoryEventStore) LatestStatus(orderID string) (model.OrderStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.latestStatus[orderID]
	return st, ok
}
