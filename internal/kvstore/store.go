// Package kvstore is the client-scoped key-value store used for carts, order
// history and admin credentials.
package kvstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/wichananm65/cod-storefront/internal/apperror"
)

var ErrNotFound = fmt.Errorf("key %w", apperror.ErrNotFound)

// Store is a synchronous key-value store. Values are opaque bytes.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ClientKey namespaces name under the given client session.
func ClientKey(sessionID, name string) string {
	return "session:" + sessionID + ":" + name
}

// InMemoryStore is useful for tests and the demo server.
type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string][]byte)}
}

func (s *InMemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *InMemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.data[key] = v
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
