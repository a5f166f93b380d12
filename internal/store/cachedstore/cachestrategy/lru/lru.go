// Package lru implements cache eviction strategies on hashicorp/golang-lru.
package lru

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/syzygymoves/internal/store/cachedstore/cachestrategy"
)

// Compile-time check that Strategy implements cachestrategy.Strategy.
var _ cachestrategy.Strategy = (*Strategy)(nil)

// cache is the part of the golang-lru caches that Strategy uses.
type cache interface {
	Get(key string) ([]byte, bool)
	Add(key string, value []byte) bool
	Len() int
}

// Strategy evicts tables by recency.
type Strategy struct {
	cache cache
}

// New creates a strategy evicting the least recently used table.
func New(capacity int) (*Strategy, error) {
	c, err := lru.New[string, []byte](capacity)
	if err != nil {
		return nil, err
	}
	return &Strategy{cache: c}, nil
}

// New2Q creates a strategy that tracks recently and frequently used tables
// separately, so a one-off scan of many tables does not flush the hot ones.
func New2Q(capacity int) (*Strategy, error) {
	c, err := lru.New2Q[string, []byte](capacity)
	if err != nil {
		return nil, err
	}
	return &Strategy{cache: twoQueue{c}}, nil
}

// twoQueue adapts TwoQueueCache, whose Add reports nothing.
type twoQueue struct {
	*lru.TwoQueueCache[string, []byte]
}

func (q twoQueue) Add(key string, value []byte) bool {
	q.TwoQueueCache.Add(key, value)
	return false
}

// Get retrieves a value by key.
func (s *Strategy) Get(key string) ([]byte, bool) {
	return s.cache.Get(key)
}

// Add adds a value to the cache and reports whether an eviction occurred.
func (s *Strategy) Add(key string, value []byte) bool {
	return s.cache.Add(key, value)
}

// Len returns the number of items in the cache.
func (s *Strategy) Len() int {
	return s.cache.Len()
}
