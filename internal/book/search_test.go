package book

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const kqkTable = `{"fen":"8/8/8/8/8/8/1k6/K6Q b - -","moves":["b2b3","b2a3","b2c3"]}
{"fen":"8/8/8/8/8/8/1k6/K6Q w - -","moves":["h1h2","h1d1"]}
{"fen":"8/8/8/8/8/8/1kQ5/K7 b - -","moves":[]}
`

func TestSearch(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		want    []string
		wantErr error
	}{
		{
			name: "first line",
			fen:  "8/8/8/8/8/8/1k6/K6Q b - -",
			want: []string{"b2b3", "b2a3", "b2c3"},
		},
		{
			name: "middle line",
			fen:  "8/8/8/8/8/8/1k6/K6Q w - -",
			want: []string{"h1h2", "h1d1"},
		},
		{
			name: "no moves",
			fen:  "8/8/8/8/8/8/1kQ5/K7 b - -",
			want: []string{},
		},
		{
			name:    "not found",
			fen:     "8/8/8/8/8/8/1k6/KQ6 w - -",
			wantErr: ErrNotFound,
		},
		{
			name:    "past the end",
			fen:     "k7/8/8/8/8/8/8/K6Q w - -",
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := Search([]byte(kqkTable), tt.fen)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Search() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if record.FEN != tt.fen {
				t.Errorf("FEN = %q, want %q", record.FEN, tt.fen)
			}
			if diff := cmp.Diff(tt.want, record.Moves); diff != "" {
				t.Errorf("Moves mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearch_EmptyData(t *testing.T) {
	_, err := Search([]byte{}, "8/8/8/8/8/8/1k6/K6Q w - -")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Search() error = %v, want ErrNotFound", err)
	}
}

func TestSearch_CorruptRecord(t *testing.T) {
	data := []byte(`{"fen":"8/8/8/8/8/8/1k6/K6Q w - -","moves":[`)
	_, err := Search(data, "8/8/8/8/8/8/1k6/K6Q w - -")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Search() error = %v, want a parse error", err)
	}
}

func TestExtractFEN(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{
			name: "valid record",
			line: `{"fen":"8/8/8/8/8/8/1k6/K6Q w - -","moves":["h1h2"]}`,
			want: "8/8/8/8/8/8/1k6/K6Q w - -",
		},
		{
			name: "no fen field",
			line: `{"other":"value"}`,
			want: "",
		},
		{
			name: "unterminated",
			line: `{"fen":"8/8`,
			want: "",
		},
		{
			name: "malformed",
			line: `not json`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractFEN([]byte(tt.line)); got != tt.want {
				t.Errorf("extractFEN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		count int
	}{
		{"single line", "line1", 1},
		{"multiple lines", "line1\nline2\nline3", 3},
		{"trailing newline", "line1\nline2\n", 2},
		{"empty lines filtered", "line1\n\nline2\n\n", 2},
		{"empty data", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(splitLines([]byte(tt.data))); got != tt.count {
				t.Errorf("splitLines() returned %d lines, want %d", got, tt.count)
			}
		})
	}
}

func BenchmarkSearch(b *testing.B) {
	records := make([]Record, 1000)
	for i := range records {
		records[i] = Record{FEN: fmt.Sprintf("8/8/8/8/8/8/1k6/K6Q w - - %04d", i), Moves: []string{"h1h2"}}
	}
	data, err := EncodeTable(records)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Search(data, "8/8/8/8/8/8/1k6/K6Q w - - 0500")
	}
}
