package session

import (
	"sync"
	"time"
)

// InMemoryStore is a volatile Store keeping snapshots in a process local
// map. It is safe for concurrent access. Snapshots are cloned on save and
// retrieval to prevent external mutation of internal state.
type InMemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
	now   func() time.Time
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory snapshot store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{snaps: make(map[string]Snapshot), now: time.Now}
}

// Get returns a clone of the snapshot of script.
func (s *InMemoryStore) Get(script string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[script]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return snap.Clone(), nil
}

// Save stores a clone of snap, stamping the save time when unset.
func (s *InMemoryStore) Save(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := snap.Clone()
	if c.Saved.IsZero() {
		c.Saved = s.now().UTC()
	}
	s.snaps[snap.Script] = c
	return nil
}

// Delete removes the snapshot of script.
func (s *InMemoryStore) Delete(script string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snaps[script]; !ok {
		return ErrNotFound
	}
	delete(s.snaps, script)
	return nil
}
