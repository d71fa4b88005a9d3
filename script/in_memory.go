package script

import (
	"sort"
	"sync"
)

// InMemoryStore keeps scripts in a process local map guarded by an RWMutex.
type InMemoryStore struct {
	mu      sync.RWMutex
	scripts map[string]string
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore returns an empty in-memory script store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{scripts: make(map[string]string)}
}

// Save stores (or overwrites) the script.
func (s *InMemoryStore) Save(name, text string, optFns ...func(o *SaveOptions)) error {
	if err := CheckName(name, saveOptions(optFns).Force); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[name] = text
	return nil
}

// Load returns the stored script or ErrNotFound.
func (s *InMemoryStore) Load(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.scripts[name]
	if !ok {
		return "", ErrNotFound
	}
	return text, nil
}

// List returns the stored names in lexical order.
func (s *InMemoryStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.scripts))
	for name := range s.scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the script if present or returns ErrNotFound.
func (s *InMemoryStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scripts[name]; !ok {
		return ErrNotFound
	}
	delete(s.scripts, name)
	return nil
}
