package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Store is a process-local cache. Values are kept as JSON so that callers
// never share memory with what is stored, mirroring the Redis backend.
type Store struct {
	mu    sync.RWMutex
	items map[string][]byte

	// when non-nil, Set and Remove fail with it
	failWrites error
}

// NewStore creates an empty in-memory cache
func NewStore() *Store {
	return &Store{items: make(map[string][]byte)}
}

// Get decodes the blob stored under key into dst
func (s *Store) Get(_ context.Context, key string, dst any) (bool, error) {
	s.mu.RLock()
	data, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

// Set stores value as JSON under key
func (s *Store) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites != nil {
		return fmt.Errorf("failed to set %s: %w", key, s.failWrites)
	}
	s.items[key] = data
	return nil
}

// Remove deletes key
func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites != nil {
		return fmt.Errorf("failed to remove %s: %w", key, s.failWrites)
	}
	delete(s.items, key)
	return nil
}

// Flush removes every key and returns how many were deleted
func (s *Store) Flush(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.items)
	s.items = make(map[string][]byte)
	return n, nil
}

// Ping always succeeds
func (s *Store) Ping(context.Context) error { return nil }

// SetRaw stores already-encoded bytes under key
func (s *Store) SetRaw(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = data
}

// FailWrites makes every subsequent write return err. Pass nil to recover.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = err
}
