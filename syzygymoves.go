// Package syzygymoves suggests and plays endgame moves from the Syzygy
// tablebases.
//
// A Client asks its move sources in order (by default only the public
// Syzygy API) for the best moves of a position and applies the first one.
// A local book built with "syzygymoves book build" answers known
// positions without network access.
//
// Example usage:
//
//	client, err := syzygymoves.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	step, err := client.Step(ctx, "8/8/8/8/8/8/1k6/K6Q w - - 0 1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(step.Move, step.After.FEN())
package syzygymoves

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/discochess/syzygymoves/fen"
	"github.com/discochess/syzygymoves/internal/stats"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrNotFound indicates no move source knows the position.
	ErrNotFound = errors.New("syzygymoves: position not found")

	// ErrNoMoves indicates the side to move has no legal move
	// (checkmate or stalemate).
	ErrNoMoves = errors.New("syzygymoves: no moves in position")

	// ErrTooManyPieces indicates the position is larger than the
	// tablebases cover.
	ErrTooManyPieces = errors.New("syzygymoves: too many pieces")

	// ErrClosed indicates the client has been closed.
	ErrClosed = errors.New("syzygymoves: client closed")

	// ErrNoSource indicates every move source was disabled.
	ErrNoSource = errors.New("syzygymoves: no move source configured")
)

// MoveSource answers a position with its moves in UCI notation, best
// first. A source that does not know the position returns an error
// matching ErrNotFound so the next source is asked.
type MoveSource interface {
	Moves(ctx context.Context, fen string) ([]string, error)
}

// namedSource is a MoveSource with a name for logs and errors.
type namedSource struct {
	name string
	MoveSource
	close func() error
}

// Client suggests moves for endgame positions.
// A Client is safe for concurrent use by multiple goroutines.
type Client struct {
	sources   []namedSource
	maxPieces int
	stats     stats.Collector
	logger    *zap.Logger
	closed    atomic.Bool
}

// New creates a new Client with the given options.
// Without options the client asks the public Syzygy API.
func New(opts ...Option) (*Client, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	sources, err := cfg.buildSources()
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, ErrNoSource
	}

	c := &Client{
		sources:   sources,
		maxPieces: cfg.maxPieces,
		stats:     cfg.stats,
		logger:    cfg.logger,
	}

	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.name
	}
	c.logger.Debug("client initialized",
		zap.Strings("sources", names),
		zap.Int("maxPieces", c.maxPieces),
	)

	return c, nil
}

// Moves returns the moves for the position in fenStr, best first.
//
// Invalid FENs fail with the fen package's errors. Positions with more
// pieces than the limit fail with ErrTooManyPieces without consulting any
// source. ErrNoMoves is returned when the answer is empty.
func (c *Client) Moves(ctx context.Context, fenStr string) ([]string, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	p, err := fen.Parse(fenStr)
	if err != nil {
		return nil, err
	}
	return c.movesFor(ctx, p)
}

// Suggest returns the best move for the position in fenStr.
func (c *Client) Suggest(ctx context.Context, fenStr string) (string, error) {
	moves, err := c.Moves(ctx, fenStr)
	if err != nil {
		return "", err
	}
	c.stats.IncCounter(stats.MetricSuggestions, 1)
	return moves[0], nil
}

func (c *Client) movesFor(ctx context.Context, p *fen.Position) ([]string, error) {
	if n := p.Material().Count(); n > c.maxPieces {
		return nil, fmt.Errorf("%w: %d pieces, limit %d", ErrTooManyPieces, n, c.maxPieces)
	}

	for _, src := range c.sources {
		moves, err := src.Moves(ctx, p.FEN())
		if errors.Is(err, ErrNotFound) {
			c.logger.Debug("source has no answer", zap.String("source", src.name), zap.String("fen", p.FEN()))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.name, err)
		}
		if len(moves) == 0 {
			return nil, ErrNoMoves
		}
		c.logger.Debug("moves found",
			zap.String("source", src.name),
			zap.String("fen", p.FEN()),
			zap.Int("count", len(moves)),
		)
		return append([]string(nil), moves...), nil
	}

	c.stats.IncCounter(stats.MetricNoAnswer, 1)
	return nil, ErrNotFound
}

// Close releases all resources associated with the client.
// After Close, the client should not be used.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	var errs []error
	for _, src := range c.sources {
		if src.close == nil {
			continue
		}
		if err := src.close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", src.name, err))
		}
	}
	return errors.Join(errs...)
}

// Sources returns the names of the move sources in the order they are
// asked.
func (c *Client) Sources() []string {
	names := make([]string, len(c.sources))
	for i, s := range c.sources {
		names[i] = s.name
	}
	return names
}
