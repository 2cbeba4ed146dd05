package roster

import (
	"context"
	"sort"
	"strings"
	"sync"

	"complyd/pkg/domain"
	"complyd/pkg/platform/sentinel"
)

// InMemoryStore backs unit tests and local development. Emails are unique
// case-insensitively, matching the Postgres store, which lowercases emails
// on write and lookup against a plain unique column.
type InMemoryStore struct {
	mu        sync.RWMutex
	byID      map[string]*Employee
	idByEmail map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:      make(map[string]*Employee),
		idByEmail: make(map[string]string),
	}
}

func emailKey(email string) string {
	return strings.ToLower(email)
}

func (s *InMemoryStore) Create(_ context.Context, employee *Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[employee.ID]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.idByEmail[emailKey(employee.Email)]; exists {
		return sentinel.ErrConflict
	}

	copied := *employee
	s.byID[employee.ID] = &copied
	s.idByEmail[emailKey(employee.Email)] = employee.ID
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, employeeID string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	employee, ok := s.byID[employeeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *employee
	return &copied, nil
}

func (s *InMemoryStore) GetByEmail(_ context.Context, email string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.idByEmail[emailKey(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *s.byID[id]
	return &copied, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*Employee) bool { return true }), nil
}

func (s *InMemoryStore) ListByRoles(_ context.Context, roles ...domain.Role) ([]*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(e *Employee) bool {
		for _, role := range roles {
			if e.Role == role {
				return true
			}
		}
		return false
	}), nil
}

func (s *InMemoryStore) Update(_ context.Context, employee *Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[employee.ID]
	if !ok {
		return sentinel.ErrNotFound
	}

	newKey := emailKey(employee.Email)
	if id, taken := s.idByEmail[newKey]; taken && id != employee.ID {
		return sentinel.ErrConflict
	}

	delete(s.idByEmail, emailKey(existing.Email))
	copied := *employee
	s.byID[employee.ID] = &copied
	s.idByEmail[newKey] = employee.ID
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, employeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[employeeID]
	if !ok {
		return sentinel.ErrNotFound
	}

	delete(s.idByEmail, emailKey(existing.Email))
	delete(s.byID, employeeID)
	return nil
}

// collect must be called with the lock held. Results are sorted by ID so
// listings are stable.
func (s *InMemoryStore) collect(keep func(*Employee) bool) []*Employee {
	var out []*Employee
	for _, employee := range s.byID {
		if keep(employee) {
			copied := *employee
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
