package store

import (
	"sync"
)

// MemoryStore is a concurrency-safe in-memory store holding the most recent
// raw payload per key. It lives for the process only.
type MemoryStore struct {
	mu sync.RWMutex

	// key: rate-limit key, value: latest payload
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
	}
}

// Save replaces the payload stored for key.
func (s *MemoryStore) Save(key string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = payload
}

// Latest returns the payload stored for key.
func (s *MemoryStore) Latest(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.data[key]
	return payload, ok
}

// Len returns the number of keys with a stored payload.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}
