package session

import (
	"context"
	"strings"
	"sync"
	"time"
)

type entry struct {
	token     string
	expiresAt time.Time
}

// MemoryStore is an in-memory Store implementation for tests and local runs
// without Redis. Expiry is checked lazily on read.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]entry
	nowF func() time.Time
}

// NewMemoryStore returns a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]entry),
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// Put stores token for (email, deviceID) until ttl elapses, overwriting any
// previous record.
func (s *MemoryStore) Put(ctx context.Context, email, deviceID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[Key(email, deviceID)] = entry{token: token, expiresAt: s.nowF().Add(ttl)}
	return nil
}

// Get returns the token for (email, deviceID) if present and not expired.
func (s *MemoryStore) Get(ctx context.Context, email, deviceID string) (string, error) {
	key := Key(email, deviceID)
	s.mu.RLock()
	e, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	if !e.expiresAt.After(s.nowF()) {
		s.mu.Lock()
		delete(s.m, key)
		s.mu.Unlock()
		return "", ErrNotFound
	}
	return e.token, nil
}

// Delete removes the record for (email, deviceID). Absent keys are not an error.
func (s *MemoryStore) Delete(ctx context.Context, email, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, Key(email, deviceID))
	return nil
}

// DeleteAll removes every record in the principal's keyspace.
func (s *MemoryStore) DeleteAll(ctx context.Context, email string) error {
	prefix := keyPrefix + email + ":"
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.m {
		if strings.HasPrefix(k, prefix) {
			delete(s.m, k)
		}
	}
	return nil
}
