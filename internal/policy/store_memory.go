package policy

import (
	"context"
	"sort"
	"sync"

	"complyd/pkg/platform/sentinel"
)

// InMemoryStore backs unit tests and local development.
type InMemoryStore struct {
	mu       sync.RWMutex
	policies map[string]*Policy
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{policies: make(map[string]*Policy)}
}

func (s *InMemoryStore) Create(_ context.Context, policy *Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.policies[policy.PolicyID]; exists {
		return sentinel.ErrConflict
	}
	copied := *policy
	s.policies[policy.PolicyID] = &copied
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, policyID string) (*Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	policy, ok := s.policies[policyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *policy
	return &copied, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*Policy) bool { return true }), nil
}

func (s *InMemoryStore) ListByStatus(_ context.Context, status Status) ([]*Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(p *Policy) bool { return p.Status == status }), nil
}

func (s *InMemoryStore) CountByStatus(_ context.Context, status Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, policy := range s.policies {
		if policy.Status == status {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) Update(_ context.Context, policy *Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[policy.PolicyID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *policy
	s.policies[policy.PolicyID] = &copied
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, policyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[policyID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.policies, policyID)
	return nil
}

func (s *InMemoryStore) collect(keep func(*Policy) bool) []*Policy {
	var out []*Policy
	for _, policy := range s.policies {
		if keep(policy) {
			copied := *policy
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PolicyID < out[j].PolicyID })
	return out
}
