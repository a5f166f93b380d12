// Package render draws boards as text diagrams.
package render

import (
	"strconv"
	"strings"

	"github.com/discochess/syzygymoves/fen"
)

const (
	borderLine    = "  ---------------------------------\n"
	separatorLine = "  |-------------------------------|\n"
	fileLegend    = "    a   b   c   d   e   f   g   h\n"
)

// ASCII returns the bordered diagram of b, rank 8 at the top.
func ASCII(b fen.Board) string {
	return Ranks(b.Ranks())
}

// Ranks renders rank strings ordered from rank 8 down. Each rank is 8
// characters, a space for an empty square. Ranks shorter than 8 are padded
// with empty squares and longer ones are truncated.
func Ranks(ranks []string) string {
	var sb strings.Builder
	sb.WriteString(borderLine)
	for i, rank := range ranks {
		sb.WriteString(strconv.Itoa(len(ranks) - i))
		for file := 0; file < 8; file++ {
			sq := byte(' ')
			if file < len(rank) {
				sq = rank[file]
			}
			sb.WriteString(" | ")
			sb.WriteByte(sq)
		}
		sb.WriteString(" |\n")
		if i < len(ranks)-1 {
			sb.WriteString(separatorLine)
		}
	}
	sb.WriteString(borderLine)
	sb.WriteString(fileLegend)
	return sb.String()
}
