package fen

import "fmt"

// Square addresses one board cell. Row 0 is rank 8 and row 7 is rank 1;
// File 0 is the a-file.
type Square struct {
	Row  int
	File int
}

// ParseSquare decodes an algebraic square such as "e3".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Square{}, fmt.Errorf("%w: bad square %q", ErrInvalidMoveFormat, s)
	}
	return Square{Row: 8 - int(s[1]-'0'), File: int(s[0] - 'a')}, nil
}

// String returns the algebraic name of the square.
func (s Square) String() string {
	return string([]byte{byte('a' + s.File), byte('0' + 8 - s.Row)})
}

func (s Square) valid() bool {
	return s.Row >= 0 && s.Row < 8 && s.File >= 0 && s.File < 8
}

// Move is a coordinate move in UCI form, e.g. e2e4 or a7a8q.
type Move struct {
	From Square
	To   Square

	// Promotion is the kind a pawn becomes on arrival, or NoKind.
	Promotion Kind
}

// ParseMove decodes a coordinate move: from-file, from-rank, to-file, to-rank,
// optionally followed by a promotion letter (q, r, b or n).
func ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMoveFormat, s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, err
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		switch s[4] {
		case 'q', 'Q':
			m.Promotion = Queen
		case 'r', 'R':
			m.Promotion = Rook
		case 'b', 'B':
			m.Promotion = Bishop
		case 'n', 'N':
			m.Promotion = Knight
		default:
			return Move{}, fmt.Errorf("%w: bad promotion in %q", ErrInvalidMoveFormat, s)
		}
	}
	return m, nil
}

// String returns the UCI form of the move.
func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != NoKind {
		s += string(Piece{m.Promotion, Black}.Byte())
	}
	return s
}
