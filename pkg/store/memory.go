package store

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store for tests and single-node standalone
// mode. Documents and counters live in mutex-guarded maps; Increment is
// atomic under the write lock.
type MemoryStore struct {
	mu       sync.RWMutex
	docs     map[string][]byte
	counters map[string]int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[string][]byte),
		counters: make(map[string]int64),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	doc, ok := s.docs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	// Copy so callers cannot mutate stored state.
	out := make([]byte, len(doc))
	copy(out, doc)
	return out, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, doc []byte) error {
	stored := make([]byte, len(doc))
	copy(stored, doc)
	s.mu.Lock()
	s.docs[key] = stored
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.docs, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(_ context.Context, prefix string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([][]byte, 0)
	for key, doc := range s.docs {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		out := make([]byte, len(doc))
		copy(out, doc)
		docs = append(docs, out)
	}
	return docs, nil
}

func (s *MemoryStore) Increment(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	s.counters[key]++
	v := s.counters[key]
	s.mu.Unlock()
	return v, nil
}

func (s *MemoryStore) Counter(_ context.Context, key string) (int64, error) {
	s.mu.RLock()
	v := s.counters[key]
	s.mu.RUnlock()
	return v, nil
}
