package trustroot

import (
	"context"
	"fmt"
	"sync"

	"ownidp/pkg/sentinel"
)

// MemoryStore is a map-backed Store for tests and ephemeral runs.
type MemoryStore struct {
	mu    sync.RWMutex
	roots map[string]string // token -> url
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{roots: make(map[string]string)}
}

func (s *MemoryStore) Add(_ context.Context, url string) error {
	token, err := Token(url)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roots[token] = url
	return nil
}

func (s *MemoryStore) Check(_ context.Context, url string) (bool, error) {
	token, err := Token(url)
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.roots[token]
	return ok, nil
}

func (s *MemoryStore) Delete(_ context.Context, url string) error {
	token, err := Token(url)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roots[token]; !ok {
		return fmt.Errorf("trustroot: delete %q: %w", url, sentinel.ErrNotFound)
	}
	delete(s.roots, token)
	return nil
}

func (s *MemoryStore) Items(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]Entry, 0, len(s.roots))
	for token, url := range s.roots {
		entries = append(entries, Entry{Token: token, URL: url})
	}
	return entries, nil
}
