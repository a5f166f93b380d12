package fen

import (
	"fmt"
	"strings"
)

// Material holds piece counts for both sides, kings included.
type Material struct {
	White [King + 1]int
	Black [King + 1]int
}

// Material counts the pieces on the board.
func (p *Position) Material() Material {
	var m Material
	for _, rank := range p.board {
		for _, pc := range rank {
			m.add(pc)
		}
	}
	return m
}

func (m *Material) add(pc Piece) {
	switch pc.Color {
	case White:
		m.White[pc.Kind]++
	case Black:
		m.Black[pc.Kind]++
	}
}

// Count returns the number of pieces on the board.
func (m Material) Count() int {
	n := 0
	for k := Pawn; k <= King; k++ {
		n += m.White[k] + m.Black[k]
	}
	return n
}

// signatureOrder is the piece order used by Syzygy table names.
var signatureOrder = [...]Kind{King, Queen, Rook, Bishop, Knight, Pawn}

// Signature returns the Syzygy-style material key, e.g. "KQvK" or "KRPvKR".
func (m Material) Signature() string {
	var sb strings.Builder
	side := func(counts [King + 1]int) {
		for _, k := range signatureOrder {
			for i := 0; i < counts[k]; i++ {
				sb.WriteString(k.String())
			}
		}
	}
	side(m.White)
	sb.WriteByte('v')
	side(m.Black)
	return sb.String()
}

// ParseMaterial counts the pieces of a FEN placement. Only the first field
// of s is inspected.
func ParseMaterial(s string) (Material, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Material{}, fmt.Errorf("%w: %q", ErrMalformedFEN, s)
	}
	board, err := parsePlacement(fields[0])
	if err != nil {
		return Material{}, err
	}
	var m Material
	for _, rank := range board {
		for _, pc := range rank {
			m.add(pc)
		}
	}
	return m, nil
}

// Normalize returns the first four fields of s (placement, side to move,
// castling, en passant) for use as a lookup key that ignores the move
// counters. The counters may be absent from s.
func Normalize(s string) (string, error) {
	fields := strings.Fields(s)
	if len(fields) < 4 {
		return "", fmt.Errorf("%w: %q", ErrMalformedFEN, s)
	}
	if _, err := parsePlacement(fields[0]); err != nil {
		return "", err
	}
	if fields[1] != "w" && fields[1] != "b" {
		return "", fmt.Errorf("%w: %q", ErrInvalidActiveColor, fields[1])
	}
	return strings.Join(fields[:4], " "), nil
}
