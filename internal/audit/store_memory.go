package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps events in an append-ordered slice. Used by unit tests
// and local development.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, filters Filters, page, pageSize int) (Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Event
	// Walk backwards: events append in chronological order, queries read
	// newest-first.
	for i := len(s.events) - 1; i >= 0; i-- {
		if matches(s.events[i], filters) {
			matched = append(matched, s.events[i])
		}
	}

	total := len(matched)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page{
		Items:    append([]Event{}, matched[start:end]...),
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

func matches(e Event, f Filters) bool {
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.ResourceType != "" && e.ResourceType != f.ResourceType {
		return false
	}
	if f.ActorEmail != "" && e.ActorEmail != f.ActorEmail {
		return false
	}
	if f.IP != "" && e.IP != f.IP {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	return true
}
