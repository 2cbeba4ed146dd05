package otp

import (
	"context"
	"strings"
	"sync"
	"time"

	"complyd/pkg/platform/sentinel"
)

type entry struct {
	code      string
	expiresAt time.Time
}

// InMemoryStore keeps codes in a map. Expired entries are dropped lazily on
// Consume rather than swept in the background.
type InMemoryStore struct {
	mu    sync.Mutex
	codes map[string]entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{codes: make(map[string]entry)}
}

func (s *InMemoryStore) Put(_ context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.codes[strings.ToLower(email)] = entry{
		code:      code,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *InMemoryStore) Consume(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	stored, ok := s.codes[key]
	if !ok || stored.code != code {
		return sentinel.ErrNotFound
	}
	delete(s.codes, key)

	if time.Now().After(stored.expiresAt) {
		return sentinel.ErrExpired
	}
	return nil
}
