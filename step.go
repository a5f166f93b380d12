package syzygymoves

import (
	"context"
	"fmt"

	"github.com/discochess/syzygymoves/fen"
	"github.com/discochess/syzygymoves/internal/stats"
)

// Step is one played move: the position before it, the move chosen, the
// resulting position, and every candidate the source offered.
type Step struct {
	Before *fen.Position
	After  *fen.Position

	// Move is the UCI move that was applied, Candidates[0].
	Move string

	// Candidates are all moves returned by the source, best first.
	Candidates []string
}

// Capture reports whether the move took a piece.
func (s *Step) Capture() bool {
	ply, ok := s.After.Ply()
	return ok && ply.Capture()
}

// Step parses fenStr, asks for the best move and applies it.
func (c *Client) Step(ctx context.Context, fenStr string) (*Step, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	before, err := fen.Parse(fenStr)
	if err != nil {
		return nil, err
	}

	moves, err := c.movesFor(ctx, before)
	if err != nil {
		return nil, err
	}
	c.stats.IncCounter(stats.MetricSuggestions, 1)

	after, err := before.Apply(moves[0])
	if err != nil {
		return nil, fmt.Errorf("applying %s: %w", moves[0], err)
	}
	c.stats.IncCounter(stats.MetricMovesApplied, 1)

	return &Step{
		Before:     before,
		After:      after,
		Move:       moves[0],
		Candidates: moves,
	}, nil
}

// Play applies moves to the position in fenStr in order and returns every
// resulting position. No source is consulted.
func Play(fenStr string, moves ...string) ([]*fen.Position, error) {
	p, err := fen.Parse(fenStr)
	if err != nil {
		return nil, err
	}
	positions := make([]*fen.Position, 0, len(moves))
	for _, m := range moves {
		if p, err = p.Apply(m); err != nil {
			return positions, fmt.Errorf("applying %s: %w", m, err)
		}
		positions = append(positions, p)
	}
	return positions, nil
}
