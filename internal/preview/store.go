// Package preview holds the revocable in-memory blobs backing thumbnails.
//
// A handle is valid from Put until Release. Handles are a scarce resource:
// every removal path (remove, clear, eviction) must release the handles it
// touches, exactly once.
package preview

import (
	"sync"

	"github.com/google/uuid"

	"github.com/RavinduThilinaka/pdf-conventor/internal/metrics"
)

type blob struct {
	data        []byte
	contentType string
}

// Store is a concurrency-safe map of handle to blob.
type Store struct {
	mu    sync.RWMutex
	blobs map[uuid.UUID]blob
}

func NewStore() *Store {
	return &Store{blobs: make(map[uuid.UUID]blob)}
}

// Put registers a blob and returns its fresh handle.
func (s *Store) Put(data []byte, contentType string) uuid.UUID {
	handle := uuid.New()

	s.mu.Lock()
	s.blobs[handle] = blob{data: data, contentType: contentType}
	s.mu.Unlock()

	metrics.PreviewsOutstanding.Inc()
	return handle
}

// Get returns the blob for a handle, if it is still live.
func (s *Store) Get(handle uuid.UUID) ([]byte, string, bool) {
	s.mu.RLock()
	b, ok := s.blobs[handle]
	s.mu.RUnlock()
	if !ok {
		return nil, "", false
	}
	return b.data, b.contentType, true
}

// Release revokes a handle. Releasing an unknown or already-released handle
// is a no-op; it reports whether the handle was live.
func (s *Store) Release(handle uuid.UUID) bool {
	s.mu.Lock()
	_, ok := s.blobs[handle]
	if ok {
		delete(s.blobs, handle)
	}
	s.mu.Unlock()

	if ok {
		metrics.PreviewsOutstanding.Dec()
	}
	return ok
}

// Outstanding reports how many handles are currently live.
func (s *Store) Outstanding() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
