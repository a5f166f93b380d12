package fen

import (
	"fmt"
	"strings"
)

// Ply describes the move that produced a position.
type Ply struct {
	Move     Move
	Moved    Piece
	Captured Piece
}

// Capture reports whether the move took a piece.
func (p Ply) Capture() bool {
	return !p.Captured.IsEmpty()
}

// Apply decodes a coordinate move such as "e2e4" and applies it.
func (p *Position) Apply(move string) (*Position, error) {
	m, err := ParseMove(move)
	if err != nil {
		return nil, err
	}
	return p.ApplyMove(m)
}

// ApplyMove returns the position after m. Only piece color is checked:
// the mover must be the active color and may not land on its own piece.
// The receiver is never modified, including on error.
func (p *Position) ApplyMove(m Move) (*Position, error) {
	if !m.From.valid() || !m.To.valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMoveFormat, m)
	}

	next := *p
	next.hasPly = true

	moved := next.board.At(m.From)
	if moved.IsEmpty() || moved.Color != p.active {
		return nil, fmt.Errorf("%w: %q on %s with %s to move", ErrWrongColorPiece, moved, m.From, p.active)
	}

	captured := next.board.At(m.To)
	if !captured.IsEmpty() && captured.Color == p.active {
		return nil, fmt.Errorf("%w: %q on %s", ErrWrongColorCapture, captured, m.To)
	}

	if m.Promotion != NoKind && moved.Kind != Pawn {
		return nil, fmt.Errorf("%w: promotion of %q", ErrInvalidMoveFormat, moved)
	}

	var passed Square
	enPassantCapture := false
	if moved.Kind == Pawn && captured.IsEmpty() && m.From.File != m.To.File && m.To.String() == p.enPassant {
		passed = Square{Row: m.From.Row, File: m.To.File}
		if victim := next.board.At(passed); victim.Kind == Pawn && victim.Color != p.active {
			captured = victim
			enPassantCapture = true
		}
	}

	next.ply = Ply{Move: m, Moved: moved, Captured: captured}

	next.enPassant = "-"
	if moved.Kind == Pawn && m.From.File == m.To.File && m.To.Row-m.From.Row == 2*pawnStep(moved.Color) {
		next.enPassant = Square{Row: (m.From.Row + m.To.Row) / 2, File: m.From.File}.String()
	}

	next.castling = updateCastling(p.castling, moved, m.From)

	next.active = p.active.Other()
	if p.active == Black {
		next.fullmove++
	}

	if moved.Kind == Pawn || !captured.IsEmpty() {
		next.halfmove = 0
	} else {
		next.halfmove++
	}

	next.board.set(m.From, Empty)
	if enPassantCapture {
		next.board.set(passed, Empty)
	}
	placed := moved
	if m.Promotion != NoKind {
		placed.Kind = m.Promotion
	}
	next.board.set(m.To, placed)

	if moved.Kind == King && abs(m.To.File-m.From.File) == 2 {
		rookFrom, rookTo := 7, 5
		if m.To.File < m.From.File {
			rookFrom, rookTo = 0, 3
		}
		next.board.set(Square{Row: m.From.Row, File: rookFrom}, Empty)
		next.board.set(Square{Row: m.From.Row, File: rookTo}, Piece{Rook, moved.Color})
	}

	next.fen = next.Encode()
	return &next, nil
}

// pawnStep is the row delta of a single pawn advance.
func pawnStep(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

// updateCastling strips the rights lost by moving piece from origin.
// A king loses both of its color's letters; a rook leaving a1/h1 (a8/h8 for
// Black) loses the matching one.
func updateCastling(rights string, piece Piece, from Square) string {
	var strip string
	switch piece.Kind {
	case King:
		strip = "KQ"
	case Rook:
		homeRow := 7
		if piece.Color == Black {
			homeRow = 0
		}
		switch {
		case from.Row != homeRow:
		case from.File == 0:
			strip = "Q"
		case from.File == 7:
			strip = "K"
		}
	}
	if strip != "" && piece.Color == Black {
		strip = strings.ToLower(strip)
	}
	if strip != "" {
		rights = strings.Map(func(r rune) rune {
			if strings.ContainsRune(strip, r) {
				return -1
			}
			return r
		}, rights)
	}
	if rights == "" {
		return "-"
	}
	return rights
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
