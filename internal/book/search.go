package book

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Search finds the record for a normalized FEN in sorted JSONL table data.
// Returns ErrNotFound if the table holds no such record.
func Search(data []byte, normalizedFEN string) (*Record, error) {
	lines := splitLines(data)
	if len(lines) == 0 {
		return nil, ErrNotFound
	}

	idx := sort.Search(len(lines), func(i int) bool {
		return extractFEN(lines[i]) >= normalizedFEN
	})
	if idx >= len(lines) || extractFEN(lines[idx]) != normalizedFEN {
		return nil, ErrNotFound
	}

	var record Record
	if err := json.Unmarshal(lines[idx], &record); err != nil {
		return nil, fmt.Errorf("parsing book record: %w", err)
	}
	return &record, nil
}

// splitLines splits data into lines, excluding empty lines.
func splitLines(data []byte) [][]byte {
	n := bytes.Count(data, []byte{'\n'}) + 1
	lines := make([][]byte, 0, n)
	for len(data) > 0 {
		idx := bytes.IndexByte(data, '\n')
		var line []byte
		if idx < 0 {
			line = data
			data = nil
		} else {
			line = data[:idx]
			data = data[idx+1:]
		}
		if len(line) > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}

// extractFEN returns the fen field of a record line without decoding the
// rest of it. FEN strings contain no characters that JSON escapes.
func extractFEN(line []byte) string {
	const prefix = `"fen":"`
	idx := bytes.Index(line, []byte(prefix))
	if idx < 0 {
		return ""
	}

	start := idx + len(prefix)
	end := bytes.IndexByte(line[start:], '"')
	if end < 0 {
		return ""
	}
	return string(line[start : start+end])
}
