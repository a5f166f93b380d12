package syzygymoves

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/discochess/syzygymoves/internal/book"
	"github.com/discochess/syzygymoves/internal/builder"
	"github.com/discochess/syzygymoves/internal/codec"
	"github.com/discochess/syzygymoves/internal/stats"
	"github.com/discochess/syzygymoves/internal/store"
	"github.com/discochess/syzygymoves/internal/store/cachedstore"
	"github.com/discochess/syzygymoves/internal/store/cachedstore/cachestrategy/lru"
	"github.com/discochess/syzygymoves/internal/store/cachedstore/memory"
	"github.com/discochess/syzygymoves/internal/store/diskstore"
	"github.com/discochess/syzygymoves/internal/store/gcsstore"
	"github.com/discochess/syzygymoves/internal/store/s3store"
	"github.com/discochess/syzygymoves/internal/tablebase"
)

const (
	// DefaultMaxPieces is the largest position the Syzygy tables cover.
	DefaultMaxPieces = 7

	// DefaultCacheSize is the number of book tables kept in memory by
	// WithDataDir.
	DefaultCacheSize = 64
)

// Option configures a Client.
type Option interface {
	apply(*options)
}

// options holds the client configuration.
type options struct {
	// sources are built once stats and logger are final, so option order
	// only decides the order sources are asked in.
	sources   []func(*options) (namedSource, error)
	remote    *tablebase.Client
	noRemote  bool
	maxPieces int
	cacheSize int
	twoQueue  bool
	stats     stats.Collector
	logger    *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		maxPieces: DefaultMaxPieces,
		cacheSize: DefaultCacheSize,
		stats:     stats.NewNoop(),
		logger:    zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// buildSources returns the configured sources followed by the remote
// tablebase unless it was disabled.
func (o *options) buildSources() ([]namedSource, error) {
	var sources []namedSource
	for _, build := range o.sources {
		src, err := build(o)
		if err != nil {
			for _, s := range sources {
				if s.close != nil {
					s.close()
				}
			}
			return nil, err
		}
		sources = append(sources, src)
	}

	if !o.noRemote {
		remote := o.remote
		if remote == nil {
			remote = tablebase.New(
				tablebase.WithStats(o.stats),
				tablebase.WithLogger(o.logger.Named("tablebase")),
			)
		}
		sources = append(sources, namedSource{name: "syzygy", MoveSource: remote})
	}
	return sources, nil
}

// WithSource adds a move source. Sources are asked in the order they are
// added, before the remote tablebase. A source implementing io.Closer is
// closed with the client.
func WithSource(s MoveSource) Option {
	return optionFunc(func(o *options) {
		o.sources = append(o.sources, func(*options) (namedSource, error) {
			src := namedSource{name: fmt.Sprintf("%T", s), MoveSource: s}
			if c, ok := s.(io.Closer); ok {
				src.close = c.Close
			}
			return src, nil
		})
	})
}

// WithBook adds a book read from s as a move source.
func WithBook(s store.Store) Option {
	return optionFunc(func(o *options) {
		o.sources = append(o.sources, func(o *options) (namedSource, error) {
			return newBookSource(o, s), nil
		})
	})
}

// WithDataDir adds the book built into dir as a move source.
// It reads the manifest to pick the table codec and keeps recently used
// tables in an LRU cache (see WithCacheSize).
func WithDataDir(dir string) (Option, error) {
	manifest, err := builder.ReadManifest(dir)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	c, err := codec.ByName(manifest.Compression)
	if err != nil {
		return nil, fmt.Errorf("manifest compression: %w", err)
	}

	ds, err := diskstore.New(dir, c)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	return withCachedBook(ds), nil
}

// WithBookURL adds a book uploaded to a bucket as a move source. rawURL is
// gs://bucket/prefix or s3://bucket/prefix and compression names the codec
// the book was built with. Tables are cached like WithDataDir.
func WithBookURL(ctx context.Context, rawURL, compression string) (Option, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing book URL: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("book URL %q has no bucket", rawURL)
	}

	c, err := codec.ByName(compression)
	if err != nil {
		return nil, err
	}

	prefix := strings.TrimPrefix(u.Path, "/")
	var s store.Store
	switch u.Scheme {
	case "gs":
		s, err = gcsstore.New(ctx, u.Host, c, gcsstore.WithPrefix(prefix))
	case "s3":
		s, err = s3store.New(ctx, u.Host, c, s3store.WithPrefix(prefix))
	default:
		return nil, fmt.Errorf("unsupported book URL scheme %q", u.Scheme)
	}
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}
	return withCachedBook(s), nil
}

// withCachedBook adds s as a book behind an LRU table cache.
func withCachedBook(s store.Store) Option {
	return optionFunc(func(o *options) {
		o.sources = append(o.sources, func(o *options) (namedSource, error) {
			newStrategy := lru.New
			if o.twoQueue {
				newStrategy = lru.New2Q
			}
			strategy, err := newStrategy(o.cacheSize)
			if err != nil {
				return namedSource{}, fmt.Errorf("creating cache: %w", err)
			}
			cached := cachedstore.New(s, memory.New(strategy, o.stats))

			src := newBookSource(o, cached)
			closeBook := src.close
			logger := o.logger.Named("cache")
			src.close = func() error {
				st := cached.Stats()
				logger.Debug("book cache closed",
					zap.Int64("hits", st.Hits),
					zap.Int64("misses", st.Misses),
					zap.Float64("hit_rate", st.HitRate()),
					zap.Int("size", st.Size),
				)
				return closeBook()
			}
			return src, nil
		})
	})
}

// WithRemote sets the tablebase client used as the last move source.
func WithRemote(c *tablebase.Client) Option {
	return optionFunc(func(o *options) {
		o.remote = c
		o.noRemote = false
	})
}

// WithoutRemote disables the remote tablebase; only books and sources
// added with WithSource are asked.
func WithoutRemote() Option {
	return optionFunc(func(o *options) {
		o.noRemote = true
	})
}

// WithMaxPieces sets the largest position, in pieces including kings, that
// is looked up. Default is DefaultMaxPieces.
func WithMaxPieces(n int) Option {
	return optionFunc(func(o *options) {
		if n > 0 {
			o.maxPieces = n
		}
	})
}

// WithCacheSize sets how many book tables WithDataDir and WithBookURL keep
// in memory.
// Default is DefaultCacheSize.
func WithCacheSize(n int) Option {
	return optionFunc(func(o *options) {
		o.cacheSize = n
	})
}

// WithTwoQueueCache makes WithDataDir and WithBookURL cache tables with a
// 2Q policy instead of plain LRU, so walking through many one-off tables does
// not evict the frequently used ones.
func WithTwoQueueCache() Option {
	return optionFunc(func(o *options) {
		o.twoQueue = true
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// bookSource adapts a book to MoveSource.
type bookSource struct {
	book *book.Book
}

func newBookSource(o *options, s store.Store) namedSource {
	b := book.New(s,
		book.WithStats(o.stats),
		book.WithLogger(o.logger.Named("book")),
	)
	return namedSource{name: "book", MoveSource: bookSource{book: b}, close: b.Close}
}

func (s bookSource) Moves(ctx context.Context, fenStr string) ([]string, error) {
	moves, err := s.book.Moves(ctx, fenStr)
	if errors.Is(err, book.ErrNotFound) {
		return nil, ErrNotFound
	}
	return moves, err
}
