package cache

import (
	"context"
	"sync"
	"time"

	"github.com/terra-clan/ideaforge/internal/models"
)

// Key is the single namespaced key provider snapshots are stored under
const Key = "ideaforge:llm_providers_cache"

// DefaultTTL is how long a snapshot is considered fresh
const DefaultTTL = 5 * time.Minute

// Entry is a cached provider snapshot
type Entry struct {
	Timestamp time.Time         `json:"timestamp"`
	Providers []models.Provider `json:"providers"`
}

// IsFresh reports whether the entry is younger than ttl at now
func (e *Entry) IsFresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.Timestamp) < ttl
}

// Store holds at most one provider snapshot
type Store interface {
	// Load returns the stored entry, or nil on a miss
	Load(ctx context.Context) (*Entry, error)

	// Save replaces the stored entry
	Save(ctx context.Context, entry *Entry) error

	// Clear drops the stored entry
	Clear(ctx context.Context) error
}

// MemoryStore keeps the snapshot in process memory
type MemoryStore struct {
	mu    sync.RWMutex
	entry *Entry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored entry
func (s *MemoryStore) Load(ctx context.Context) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.entry == nil {
		return nil, nil
	}
	return copyEntry(s.entry), nil
}

// Save replaces the stored entry
func (s *MemoryStore) Save(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = copyEntry(entry)
	return nil
}

// Clear drops the stored entry
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = nil
	return nil
}

func copyEntry(e *Entry) *Entry {
	providers := make([]models.Provider, len(e.Providers))
	for i, p := range e.Providers {
		p.Models = append([]models.Model{}, p.Models...)
		providers[i] = p
	}
	return &Entry{Timestamp: e.Timestamp, Providers: providers}
}
