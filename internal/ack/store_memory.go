package ack

import (
	"context"
	"sort"
	"sync"
	"time"
)

type pairKey struct {
	policyID   string
	employeeID string
}

// InMemoryStore backs unit tests and local development. One mutex guards the
// pair map, which makes insert-if-absent atomic per pair the same way the
// Postgres unique constraint does.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[pairKey]*Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[pairKey]*Record)}
}

func (s *InMemoryStore) EnsurePending(_ context.Context, policyID string, employeeIDs []string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := 0
	for _, employeeID := range employeeIDs {
		key := pairKey{policyID: policyID, employeeID: employeeID}
		if _, exists := s.records[key]; exists {
			continue
		}
		s.records[key] = &Record{
			PolicyID:   policyID,
			EmployeeID: employeeID,
			Status:     StatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		created++
	}
	return created, nil
}

func (s *InMemoryStore) Acknowledge(_ context.Context, policyID, employeeID string, at time.Time) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{policyID: policyID, employeeID: employeeID}
	record, exists := s.records[key]
	if !exists {
		record = &Record{
			PolicyID:   policyID,
			EmployeeID: employeeID,
			CreatedAt:  at,
		}
		s.records[key] = record
	}

	record.Status = StatusAcknowledged
	record.AcknowledgedAt = &at
	record.UpdatedAt = at

	copied := *record
	return &copied, nil
}

func (s *InMemoryStore) ListByEmployee(_ context.Context, employeeID string) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Record
	for _, record := range s.records {
		if record.EmployeeID == employeeID {
			copied := *record
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PolicyID < out[j].PolicyID })
	return out, nil
}

func (s *InMemoryStore) CountByStatus(_ context.Context, status Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, record := range s.records {
		if record.Status == status {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) DeleteForPolicy(_ context.Context, policyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.records {
		if key.policyID == policyID {
			delete(s.records, key)
		}
	}
	return nil
}
