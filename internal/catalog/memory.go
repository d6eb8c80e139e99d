package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tarvee/internal/model"
	"tarvee/internal/repository"
)

// MemoryStore is an in-process listing store. It assigns IDs and strictly
// increasing CreatedAt values on write, mirroring a server-stamped store.
// It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	listings []model.Listing
	last     time.Time
	now      func() time.Time
}

var _ repository.ListingRepository = (*MemoryStore)(nil)

// NewMemoryStore returns a store holding a copy of seed.
func NewMemoryStore(seed []model.Listing) *MemoryStore {
	s := &MemoryStore{now: time.Now}
	s.listings = append(make([]model.Listing, 0, len(seed)), seed...)
	for _, l := range seed {
		if l.CreatedAt.After(s.last) {
			s.last = l.CreatedAt
		}
	}
	return s
}

// Create stores a copy of l with a fresh ID and timestamp.
func (s *MemoryStore) Create(_ context.Context, l *model.Listing) (*model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UTC()
	if !ts.After(s.last) {
		ts = s.last.Add(time.Microsecond)
	}
	s.last = ts

	stored := *l
	stored.ID = uuid.NewString()
	stored.CreatedAt = ts
	s.listings = append(s.listings, stored)

	out := stored
	return &out, nil
}

// All returns a snapshot of every stored listing in insertion order.
func (s *MemoryStore) All(_ context.Context) ([]model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(make([]model.Listing, 0, len(s.listings)), s.listings...), nil
}
