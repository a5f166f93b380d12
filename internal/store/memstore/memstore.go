// Package memstore provides an in-memory store implementation for testing.
package memstore

import (
	"context"
	"sync"

	"github.com/discochess/syzygymoves/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is an in-memory store for testing.
type Store struct {
	mu     sync.RWMutex
	tables map[string][]byte
	reads  int
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		tables: make(map[string][]byte),
	}
}

// SetTable sets the data for a table (for test setup).
// The data is copied to prevent caller mutations from affecting the store.
func (s *Store) SetTable(signature string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]byte, len(data))
	copy(copied, data)
	s.tables[signature] = copied
}

// ReadTable reads a table from memory.
func (s *Store) ReadTable(ctx context.Context, signature string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++

	data, ok := s.tables[signature]
	if !ok {
		return nil, store.ErrNotFound
	}
	return data, nil
}

// Reads returns how many times ReadTable was called.
func (s *Store) Reads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}
