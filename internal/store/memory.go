// internal/store/memory.go
package store

import (
	"context"
	"sync"
	"time"

	"query-orchestrator/internal/models"
)

type memoryEntry struct {
	result    *models.OrchestrationResult
	expiresAt time.Time
}

// MemoryStore is the default single-process result store.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, id string, result *models.OrchestrationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = memoryEntry{
		result:    result,
		expiresAt: s.now().Add(s.ttl),
	}
	s.sweepLocked()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.OrchestrationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, id)
		return nil, ErrNotFound
	}
	return entry.result, nil
}

// sweepLocked drops expired entries so the map cannot grow without bound.
func (s *MemoryStore) sweepLocked() {
	now := s.now()
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
}
