package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps values in process memory. Capacity, when positive, is the
// total number of bytes the store may hold across all keys.
type MemoryStore struct {
	mu            sync.RWMutex
	values        map[Key][]byte
	size          int
	capacity      int
	maxValueBytes int
}

func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{
		values:        make(map[Key][]byte),
		capacity:      capacity,
		maxValueBytes: DefaultMaxValueBytes,
	}
}

func (s *MemoryStore) Get(_ context.Context, key Key, dest any) error {
	s.mu.RLock()
	data, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return decode(key, data, dest)
}

func (s *MemoryStore) Set(_ context.Context, key Key, value any) error {
	data, err := encode(key, value, s.maxValueBytes)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	newSize := s.size - len(s.values[key]) + len(data)
	if s.capacity > 0 && newSize > s.capacity {
		return newError(ErrorTypeQuotaExceeded, key, errStoreFull)
	}
	s.values[key] = data
	s.size = newSize
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.size -= len(s.values[key])
	delete(s.values, key)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[Key][]byte)
	s.size = 0
	return nil
}

// Usage returns the bytes in use and the remaining capacity.
// Remaining is -1 for an unbounded store.
func (s *MemoryStore) Usage() (used, remaining int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.capacity <= 0 {
		return s.size, -1
	}
	return s.size, s.capacity - s.size
}
