package fen

// Color is the color of a piece or the side to move.
type Color uint8

const (
	NoColor Color = iota
	White
	Black
)

// String returns the FEN letter for the color ("w" or "b").
func (c Color) String() string {
	switch c {
	case White:
		return "w"
	case Black:
		return "b"
	default:
		return "-"
	}
}

// Other returns the opposing color.
func (c Color) Other() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

// Kind is a piece type regardless of color.
type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindLetters = [...]byte{' ', 'P', 'N', 'B', 'R', 'Q', 'K'}

// String returns the uppercase letter of the kind.
func (k Kind) String() string {
	if int(k) < len(kindLetters) {
		return string(kindLetters[k])
	}
	return "?"
}

// Piece is a colored piece. The zero value is an empty square.
type Piece struct {
	Kind  Kind
	Color Color
}

// Empty is the content of an unoccupied square.
var Empty = Piece{}

// PieceFromByte decodes a FEN piece letter (uppercase White, lowercase Black)
// or a space for an empty square.
func PieceFromByte(b byte) (Piece, bool) {
	color := White
	if b >= 'a' && b <= 'z' {
		color = Black
		b -= 'a' - 'A'
	}
	switch b {
	case 'P':
		return Piece{Pawn, color}, true
	case 'N':
		return Piece{Knight, color}, true
	case 'B':
		return Piece{Bishop, color}, true
	case 'R':
		return Piece{Rook, color}, true
	case 'Q':
		return Piece{Queen, color}, true
	case 'K':
		return Piece{King, color}, true
	case ' ':
		return Empty, true
	}
	return Empty, false
}

// Byte encodes the piece as its FEN letter, or a space when empty.
func (p Piece) Byte() byte {
	if p.IsEmpty() {
		return ' '
	}
	b := kindLetters[p.Kind]
	if p.Color == Black {
		b += 'a' - 'A'
	}
	return b
}

// IsEmpty reports whether the square holds no piece.
func (p Piece) IsEmpty() bool {
	return p.Kind == NoKind
}

func (p Piece) String() string {
	return string(p.Byte())
}
