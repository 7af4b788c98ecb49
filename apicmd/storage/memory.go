package storage

import (
	"sync"

	"github.com/go-analyze/bulk"
)

// MemStorage is a map-backed Storage for tests and ephemeral service mode.
// Thread-safe.
type MemStorage struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemStorage creates a new empty MemStorage.
func NewMemStorage() *MemStorage {
	return &MemStorage{records: make(map[string][]byte)}
}

func (s *MemStorage) Get(key string) ([]byte, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.records[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (s *MemStorage) Set(key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.records[key] = stored
	return nil
}

func (s *MemStorage) Remove(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

func (s *MemStorage) ListKeys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return bulk.MapKeysSlice(s.records), nil
}

func (s *MemStorage) Close() error {
	return nil
}
