package book

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Record is one line of a book table: the tablebase's recommended moves for
// a position, best first.
type Record struct {
	// FEN is the position without move counters (see fen.Normalize).
	FEN string `json:"fen"`

	// Moves are UCI moves in the order the tablebase ranked them. Empty
	// when the side to move has no legal move.
	Moves []string `json:"moves"`
}

// EncodeTable sorts records by FEN and encodes them as JSONL, the format
// Search expects. Records with duplicate FENs are rejected.
func EncodeTable(records []Record) ([]byte, error) {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FEN < sorted[j].FEN })

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i, r := range sorted {
		if i > 0 && sorted[i-1].FEN == r.FEN {
			return nil, fmt.Errorf("book: duplicate record for %q", r.FEN)
		}
		if r.Moves == nil {
			r.Moves = []string{}
		}
		if err := enc.Encode(r); err != nil {
			return nil, fmt.Errorf("encoding record %q: %w", r.FEN, err)
		}
	}
	return buf.Bytes(), nil
}

// Count returns the number of records in table data.
func Count(data []byte) int {
	return len(splitLines(data))
}
