// Package fen parses chess positions in Forsyth-Edwards Notation and applies
// coordinate moves to produce successor positions.
//
// A Position is immutable: Apply returns a new Position and leaves the
// receiver untouched, so one Position may be shared freely between
// goroutines.
package fen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartingFEN is the standard initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Sentinel errors, one per rejected field or move precondition.
var (
	ErrMalformedFEN       = errors.New("fen: malformed FEN, want six space-delimited fields")
	ErrInvalidPlacement   = errors.New("fen: invalid piece placement")
	ErrInvalidActiveColor = errors.New("fen: invalid active color")
	ErrInvalidCastling    = errors.New("fen: invalid castling availability")
	ErrInvalidEnPassant   = errors.New("fen: invalid en passant target")
	ErrInvalidMoveCounter = errors.New("fen: invalid move counter")

	ErrInvalidMoveFormat = errors.New("fen: invalid move format")
	ErrWrongColorPiece   = errors.New("fen: piece being moved is not the active color")
	ErrWrongColorCapture = errors.New("fen: cannot capture a piece of the moving color")
)

// Board is an 8x8 grid; row 0 is rank 8. Board is an array, so assignment
// copies every square.
type Board [8][8]Piece

// At returns the piece on sq.
func (b Board) At(sq Square) Piece {
	return b[sq.Row][sq.File]
}

func (b *Board) set(sq Square, p Piece) {
	b[sq.Row][sq.File] = p
}

// Rank returns row as an 8-character string, spaces for empty squares.
func (b Board) Rank(row int) string {
	var buf [8]byte
	for file, p := range b[row] {
		buf[file] = p.Byte()
	}
	return string(buf[:])
}

// Ranks returns all eight rank strings from rank 8 down to rank 1.
func (b Board) Ranks() []string {
	ranks := make([]string, 8)
	for row := range b {
		ranks[row] = b.Rank(row)
	}
	return ranks
}

// Position is a parsed FEN position.
type Position struct {
	board     Board
	active    Color
	castling  string
	enPassant string
	halfmove  int
	fullmove  int
	fen       string

	ply    Ply
	hasPly bool
}

// Parse validates s field by field and returns the position it describes.
// The first invalid field stops parsing.
func Parse(s string) (*Position, error) {
	fields := strings.Split(s, " ")
	if s == "" || len(fields) != 6 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedFEN, s)
	}

	p := &Position{fen: s}

	board, err := parsePlacement(fields[0])
	if err != nil {
		return nil, err
	}
	p.board = board

	switch fields[1] {
	case "w":
		p.active = White
	case "b":
		p.active = Black
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidActiveColor, fields[1])
	}

	if !onlyBytes(fields[2], "KQkq-") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCastling, fields[2])
	}
	p.castling = fields[2]

	if !onlyBytes(fields[3], "abcdefgh12345678-") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEnPassant, fields[3])
	}
	p.enPassant = fields[3]

	if p.halfmove, err = parseCounter(fields[4]); err != nil {
		return nil, fmt.Errorf("%w: halfmove clock %q", ErrInvalidMoveCounter, fields[4])
	}
	if p.fullmove, err = parseCounter(fields[5]); err != nil {
		return nil, fmt.Errorf("%w: fullmove number %q", ErrInvalidMoveCounter, fields[5])
	}

	return p, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) *Position {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// parsePlacement expands the placement field into a board. Besides the
// character set it requires exactly 8 ranks of exactly 8 squares.
func parsePlacement(placement string) (Board, error) {
	var b Board
	if !onlyBytes(placement, "RrNnBbQqKkPp12345678/") {
		return b, fmt.Errorf("%w: %q", ErrInvalidPlacement, placement)
	}
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return b, fmt.Errorf("%w: %d ranks in %q", ErrInvalidPlacement, len(ranks), placement)
	}
	for row, rank := range ranks {
		file := 0
		for i := 0; i < len(rank); i++ {
			ch := rank[i]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if file >= 8 {
				file = 9
				break
			}
			b[row][file], _ = PieceFromByte(ch)
			file++
		}
		if file != 8 {
			return b, fmt.Errorf("%w: rank %d of %q is not 8 squares", ErrInvalidPlacement, 8-row, placement)
		}
	}
	return b, nil
}

func parseCounter(s string) (int, error) {
	if !onlyBytes(s, "0123456789") {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(s)
}

// onlyBytes reports whether s is non-empty and every byte of s is in set.
func onlyBytes(s, set string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(set, s[i]) < 0 {
			return false
		}
	}
	return true
}

// Board returns a copy of the board.
func (p *Position) Board() Board { return p.board }

// Active returns the side to move.
func (p *Position) Active() Color { return p.active }

// Castling returns the castling availability field, "-" when none.
func (p *Position) Castling() string { return p.castling }

// EnPassant returns the en passant target field, "-" when none.
func (p *Position) EnPassant() string { return p.enPassant }

// HalfmoveClock returns the number of halfmoves since the last pawn move or capture.
func (p *Position) HalfmoveClock() int { return p.halfmove }

// FullmoveNumber returns the fullmove number, incremented after Black moves.
func (p *Position) FullmoveNumber() int { return p.fullmove }

// FEN returns the FEN string of the position. For a parsed position this is
// the input string unmodified.
func (p *Position) FEN() string { return p.fen }

func (p *Position) String() string { return p.fen }

// Ply returns the move that produced this position. The second result is
// false for positions obtained from Parse.
func (p *Position) Ply() (Ply, bool) { return p.ply, p.hasPly }

// Encode serializes the position's fields into a FEN string.
func (p *Position) Encode() string {
	var sb strings.Builder
	for row := range p.board {
		if row > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for _, pc := range p.board[row] {
			if pc.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(pc.Byte())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	fmt.Fprintf(&sb, " %s %s %s %d %d", p.active, p.castling, p.enPassant, p.halfmove, p.fullmove)
	return sb.String()
}
