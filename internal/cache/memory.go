package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"taskapp/internal/utils"
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryStore is a process-local Store used in tests and deployments
// without redis. Expired entries are dropped lazily on read.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]memoryEntry{}}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expires.IsZero() && utils.NowUTC().After(entry.expires) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expires = utils.NowUTC().Add(ttl)
	}
	s.entries[key] = entry
	return nil
}

func (s *MemoryStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := int64(0)
	if entry, ok := s.entries[key]; ok {
		if parsed, err := strconv.ParseInt(string(entry.value), 10, 64); err == nil {
			current = parsed
		}
	}
	current++
	s.entries[key] = memoryEntry{value: []byte(strconv.FormatInt(current, 10))}
	return current, nil
}
