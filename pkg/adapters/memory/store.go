// Package memory provides an in-memory ContainerStore, suitable for tests
// and single-process deployments.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/marquee-kit/marquee/pkg/domain"
)

// Store implements ports.ContainerStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{data: make(map[string]string)}
}

// Save persists the container in memory. Containers go through JSON so the
// store observes the same value semantics as an external backend.
func (s *Store) Save(ctx context.Context, surfaceID string, c *domain.Container) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal container: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[surfaceID] = string(raw)
	return nil
}

// Load retrieves the container from memory.
func (s *Store) Load(ctx context.Context, surfaceID string) (*domain.Container, error) {
	s.mu.RLock()
	raw, ok := s.data[surfaceID]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrContainerNotFound
	}

	var c domain.Container
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal container: %w", err)
	}
	return &c, nil
}

// Delete removes the container.
func (s *Store) Delete(ctx context.Context, surfaceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, surfaceID)
	return nil
}

// List returns the identifiers of all live surfaces.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
