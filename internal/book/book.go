// Package book answers move queries from a local, prebuilt copy of
// tablebase answers.
//
// A book is a set of tables, one per material signature. Each table is a
// JSONL file of Records sorted by FEN, so a lookup is one table read plus a
// binary search.
package book

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/discochess/syzygymoves/fen"
	"github.com/discochess/syzygymoves/internal/stats"
	"github.com/discochess/syzygymoves/internal/store"
)

// ErrNotFound indicates the position is not in the book.
var ErrNotFound = errors.New("book: position not found")

// Book looks positions up in a store of tables.
// A Book is safe for concurrent use if its store is.
type Book struct {
	store  store.Store
	stats  stats.Collector
	logger *zap.Logger
}

// Option configures a Book.
type Option func(*Book)

// WithStats sets the stats collector.
func WithStats(c stats.Collector) Option {
	return func(b *Book) {
		b.stats = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Book) {
		b.logger = l
	}
}

// New returns a Book reading tables from s.
func New(s store.Store, opts ...Option) *Book {
	b := &Book{
		store:  s,
		stats:  stats.NewNoop(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Lookup returns the record for the position described by fenStr. The move
// counters of fenStr are ignored.
func (b *Book) Lookup(ctx context.Context, fenStr string) (*Record, error) {
	key, err := fen.Normalize(fenStr)
	if err != nil {
		return nil, err
	}
	material, err := fen.ParseMaterial(key)
	if err != nil {
		return nil, err
	}
	sig := material.Signature()

	b.stats.IncCounter(stats.MetricTableReads, 1)
	data, err := b.store.ReadTable(ctx, sig)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			b.miss(sig, key)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading table %s: %w", sig, err)
	}

	record, err := Search(data, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			b.miss(sig, key)
		}
		return nil, err
	}

	b.stats.IncCounter(stats.MetricBookHits, 1)
	return record, nil
}

// Moves returns the recommended moves for fenStr, best first.
func (b *Book) Moves(ctx context.Context, fenStr string) ([]string, error) {
	record, err := b.Lookup(ctx, fenStr)
	if err != nil {
		return nil, err
	}
	return record.Moves, nil
}

// Close closes the underlying store.
func (b *Book) Close() error {
	return b.store.Close()
}

func (b *Book) miss(sig, key string) {
	b.stats.IncCounter(stats.MetricBookMisses, 1)
	b.logger.Debug("book miss", zap.String("table", sig), zap.String("fen", key))
}
