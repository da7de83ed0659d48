package audit

import (
	"context"
	"maps"
	"sync"
)

// MemoryStorage keeps the most recent events in a bounded buffer.
// Older events are dropped once capacity is reached.
type MemoryStorage struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
}

// NewMemoryStorage keeps up to capacity events; a non-positive capacity means 1000.
func NewMemoryStorage(capacity int) *MemoryStorage {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryStorage{capacity: capacity}
}

func (m *MemoryStorage) Store(_ context.Context, events ...Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range events {
		e.Metadata = maps.Clone(e.Metadata)
		m.events = append(m.events, e)
	}
	if over := len(m.events) - m.capacity; over > 0 {
		m.events = append([]Event(nil), m.events[over:]...)
	}
	return nil
}

func (m *MemoryStorage) Query(_ context.Context, criteria Criteria) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit := criteria.limit()
	var out []Event
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		if e := m.events[i]; criteria.matches(e) {
			e.Metadata = maps.Clone(e.Metadata)
			out = append(out, e)
		}
	}
	return out, nil
}
