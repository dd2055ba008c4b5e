package memory

import (
	"context"
	"sync"

	audit "keepsake/pkg/platform/audit"
)

// InMemoryStore keeps audit events in append order.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListAll returns every event in append order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events...), nil
}

// ListByRecord returns the events about one record in append order.
func (s *InMemoryStore) ListByRecord(_ context.Context, recordID uint64) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.Event
	for _, e := range s.events {
		if e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListRecent returns the most recent N events, oldest first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := max(len(s.events)-limit, 0)
	return append([]audit.Event{}, s.events[start:]...), nil
}

// Checkpoint returns a rollback that drops events appended after the call,
// and a no-op commit. The registry's in-memory transaction uses it so events
// roll back with state.
func (s *InMemoryStore) Checkpoint() (rollback func(), commit func()) {
	s.mu.RLock()
	n := len(s.events)
	s.mu.RUnlock()

	rollback = func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if n <= len(s.events) {
			s.events = s.events[:n]
		}
	}
	return rollback, func() {}
}
