package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/discochess/syzygymoves/fen"
	"github.com/discochess/syzygymoves/internal/book"
	"github.com/discochess/syzygymoves/internal/codec"
	"github.com/discochess/syzygymoves/internal/stats"
	"github.com/discochess/syzygymoves/internal/store"
	"github.com/discochess/syzygymoves/internal/store/diskstore"
	"github.com/discochess/syzygymoves/internal/tablebase"
)

const (
	// DefaultMaxPieces is the largest position the Syzygy tables cover.
	DefaultMaxPieces = 7

	// DefaultWorkers is the default number of concurrent probes.
	DefaultWorkers = 4

	// ManifestVersion is the manifest format written by Build.
	ManifestVersion = 1
)

// Prober answers tablebase queries. *tablebase.Client implements it.
type Prober interface {
	Moves(ctx context.Context, fen string) ([]string, error)
}

// Format selects how BuildFrom parses its input.
type Format int

const (
	// FormatFEN is one FEN per line.
	FormatFEN Format = iota
	// FormatPGN is a stream of PGN games.
	FormatPGN
)

// Builder builds a book directory from a list of positions.
type Builder struct {
	prober    Prober
	outputDir string
	codec     codec.Codec
	workers   int
	maxPieces int
	endpoint  string
	progress  ProgressFunc
	stats     stats.Collector
	logger    *zap.Logger
}

// Option configures the Builder.
type Option func(*Builder)

// WithOutputDir sets the output directory.
func WithOutputDir(dir string) Option {
	return func(b *Builder) { b.outputDir = dir }
}

// WithCodec sets the table compression codec.
func WithCodec(c codec.Codec) Option {
	return func(b *Builder) { b.codec = c }
}

// WithWorkers sets the number of concurrent probes.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithMaxPieces skips positions with more than n pieces.
func WithMaxPieces(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.maxPieces = n
		}
	}
}

// WithEndpoint sets the endpoint recorded in the manifest. By default it is
// taken from the prober when the prober reports one.
func WithEndpoint(endpoint string) Option {
	return func(b *Builder) { b.endpoint = endpoint }
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(b *Builder) { b.progress = fn }
}

// WithStats sets the stats collector.
func WithStats(c stats.Collector) Option {
	return func(b *Builder) { b.stats = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// New creates a Builder that answers positions with p.
func New(p Prober, opts ...Option) *Builder {
	b := &Builder{
		prober:    p,
		outputDir: "./data",
		codec:     codec.Zstd{},
		workers:   DefaultWorkers,
		maxPieces: DefaultMaxPieces,
		progress:  DefaultProgressFunc,
		stats:     stats.NewNoop(),
		logger:    zap.NewNop(),
	}
	if e, ok := p.(interface{ Endpoint() string }); ok {
		b.endpoint = e.Endpoint()
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildFrom reads positions from r in the given format and builds the book.
func (b *Builder) BuildFrom(ctx context.Context, r io.Reader, format Format) (*Manifest, error) {
	startTime := time.Now()

	var read atomic.Int64
	pr := newProgressReader(r, &read)

	var (
		positions []string
		err       error
	)
	switch format {
	case FormatFEN:
		positions, err = ReadFENs(pr)
	case FormatPGN:
		positions, err = ReadPGN(pr)
	default:
		return nil, fmt.Errorf("unknown input format %d", format)
	}
	if err != nil {
		return nil, err
	}

	b.reportProgress(Progress{
		Phase:         "read",
		BytesRead:     read.Load(),
		PositionsRead: int64(len(positions)),
		StartTime:     startTime,
	})

	return b.build(ctx, positions, startTime)
}

// Build probes every eligible position and writes the book to the output
// directory, replacing any tables already there.
func (b *Builder) Build(ctx context.Context, positions []string) (*Manifest, error) {
	return b.build(ctx, positions, time.Now())
}

// job is one distinct position to probe.
type job struct {
	key       string // normalized FEN
	fen       string // FEN as given, sent to the prober
	signature string
}

func (b *Builder) build(ctx context.Context, positions []string, startTime time.Time) (*Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jobs, skipped := b.selectPositions(positions)
	b.stats.IncCounter(stats.MetricBuilderSkipped, skipped)
	b.logger.Info("positions selected",
		zap.Int("read", len(positions)),
		zap.Int("selected", len(jobs)),
		zap.Int64("skipped", skipped),
	)

	records, err := b.probe(ctx, jobs, int64(len(positions)), skipped, startTime)
	if err != nil {
		return nil, err
	}

	tables, recordCount, err := b.writeTables(records, startTime)
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{
		Version:     ManifestVersion,
		TableCount:  tables,
		RecordCount: recordCount,
		BuiltAt:     time.Now().UTC(),
		Endpoint:    b.endpoint,
		Compression: b.codec.Name(),
	}
	if err := WriteManifest(b.outputDir, manifest); err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}

	b.reportProgress(Progress{
		Phase:            "done",
		PositionsRead:    int64(len(positions)),
		PositionsSkipped: skipped,
		RecordsWritten:   recordCount,
		TablesWritten:    tables,
		TablesTotal:      tables,
		StartTime:        startTime,
	})
	return manifest, nil
}

// selectPositions drops invalid, oversized and duplicate positions.
func (b *Builder) selectPositions(positions []string) ([]job, int64) {
	var (
		jobs    []job
		skipped int64
	)
	seen := make(map[string]struct{}, len(positions))
	for _, s := range positions {
		key, err := fen.Normalize(s)
		if err != nil {
			b.logger.Debug("skipping invalid position", zap.String("fen", s), zap.Error(err))
			skipped++
			continue
		}
		if _, ok := seen[key]; ok {
			skipped++
			continue
		}
		seen[key] = struct{}{}

		m, err := fen.ParseMaterial(key)
		if err != nil {
			skipped++
			continue
		}
		if m.Count() > b.maxPieces {
			skipped++
			continue
		}
		jobs = append(jobs, job{key: key, fen: s, signature: m.Signature()})
	}
	return jobs, skipped
}

// probe queries the prober for every job with at most b.workers requests in
// flight. Positions the tablebase rejects are skipped; any other failure
// aborts the build.
func (b *Builder) probe(ctx context.Context, jobs []job, read, skipped int64, startTime time.Time) (map[string][]book.Record, error) {
	results := make([][]string, len(jobs))
	ok := make([]bool, len(jobs))

	var (
		mu      sync.Mutex
		probed  int64
		dropped int64
	)

	b.reportProgress(Progress{
		Phase:            "probe",
		PositionsRead:    read,
		PositionsSkipped: skipped,
		PositionsTotal:   int64(len(jobs)),
		StartTime:        startTime,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, j := range jobs {
		g.Go(func() error {
			moves, err := b.prober.Moves(gctx, j.fen)
			switch {
			case errors.Is(err, tablebase.ErrBadRequest):
				b.logger.Warn("tablebase rejected position", zap.String("fen", j.fen), zap.Error(err))
				mu.Lock()
				dropped++
				mu.Unlock()
				return nil
			case err != nil:
				return fmt.Errorf("probing %q: %w", j.fen, err)
			}
			results[i] = moves
			ok[i] = true
			b.stats.IncCounter(stats.MetricBuilderProbed, 1)

			mu.Lock()
			probed++
			b.reportProgress(Progress{
				Phase:            "probe",
				PositionsRead:    read,
				PositionsSkipped: skipped + dropped,
				PositionsProbed:  probed,
				PositionsTotal:   int64(len(jobs)),
				StartTime:        startTime,
			})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	if dropped > 0 {
		b.stats.IncCounter(stats.MetricBuilderSkipped, dropped)
	}

	bySignature := make(map[string][]book.Record)
	for i, j := range jobs {
		if !ok[i] {
			continue
		}
		bySignature[j.signature] = append(bySignature[j.signature], book.Record{FEN: j.key, Moves: results[i]})
	}
	return bySignature, nil
}

// writeTables replaces the tables directory with one table per signature.
func (b *Builder) writeTables(records map[string][]book.Record, startTime time.Time) (int, int64, error) {
	if err := os.MkdirAll(b.outputDir, 0o755); err != nil {
		return 0, 0, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.RemoveAll(filepath.Join(b.outputDir, store.TablesDir)); err != nil {
		return 0, 0, fmt.Errorf("cleaning tables directory: %w", err)
	}

	ds, err := diskstore.New(b.outputDir, b.codec)
	if err != nil {
		return 0, 0, err
	}
	defer ds.Close()

	signatures := make([]string, 0, len(records))
	for sig := range records {
		signatures = append(signatures, sig)
	}
	sort.Strings(signatures)

	var written int64
	for i, sig := range signatures {
		data, err := book.EncodeTable(records[sig])
		if err != nil {
			return 0, 0, fmt.Errorf("encoding table %s: %w", sig, err)
		}
		if err := ds.WriteTable(sig, data); err != nil {
			return 0, 0, fmt.Errorf("writing table %s: %w", sig, err)
		}
		written += int64(len(records[sig]))
		b.logger.Debug("table written", zap.String("signature", sig), zap.Int("records", len(records[sig])))
		b.reportProgress(Progress{
			Phase:          "write",
			RecordsWritten: written,
			TablesWritten:  i + 1,
			TablesTotal:    len(signatures),
			StartTime:      startTime,
		})
	}
	return len(signatures), written, nil
}

func (b *Builder) reportProgress(p Progress) {
	if b.progress != nil {
		b.progress(p)
	}
}
