package cachedstore

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/discochess/syzygymoves/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store wraps another Store with caching. Concurrent misses for the same
// table share a single read of the underlying store.
type Store struct {
	underlying store.Store
	backend    Backend
	group      singleflight.Group
}

// New creates a new cached store wrapping the given store.
func New(underlying store.Store, backend Backend) *Store {
	return &Store{
		underlying: underlying,
		backend:    backend,
	}
}

// ReadTable reads a table, checking the cache first. Errors are not cached.
func (s *Store) ReadTable(ctx context.Context, signature string) ([]byte, error) {
	if data, ok := s.backend.Get(signature); ok {
		return data, nil
	}

	v, err, _ := s.group.Do(signature, func() (any, error) {
		data, err := s.underlying.ReadTable(ctx, signature)
		if err != nil {
			return nil, err
		}
		s.backend.Set(signature, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.underlying.Close()
}

// Stats returns cache statistics.
func (s *Store) Stats() Stats {
	return s.backend.Stats()
}
