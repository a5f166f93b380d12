package book

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeTable(t *testing.T) {
	records := []Record{
		{FEN: "8/8/8/8/8/8/1k6/K6Q w - -", Moves: []string{"h1h2", "h1d1"}},
		{FEN: "8/8/8/8/8/8/1kQ5/K7 b - -"},
		{FEN: "8/8/8/8/8/8/1k6/K6Q b - -", Moves: []string{"b2b3", "b2a3", "b2c3"}},
	}

	data, err := EncodeTable(records)
	if err != nil {
		t.Fatalf("EncodeTable() error = %v", err)
	}
	if diff := cmp.Diff(kqkTable, string(data)); diff != "" {
		t.Errorf("EncodeTable() mismatch (-want +got):\n%s", diff)
	}
	if Count(data) != 3 {
		t.Errorf("Count() = %d, want 3", Count(data))
	}
	if records[0].FEN != "8/8/8/8/8/8/1k6/K6Q w - -" {
		t.Error("EncodeTable() reordered its input")
	}

	for _, r := range records {
		got, err := Search(data, r.FEN)
		if err != nil {
			t.Errorf("Search(%q) error = %v", r.FEN, err)
			continue
		}
		if len(got.Moves) != len(r.Moves) {
			t.Errorf("Search(%q).Moves = %v, want %v", r.FEN, got.Moves, r.Moves)
		}
	}
}

func TestEncodeTable_Duplicate(t *testing.T) {
	records := []Record{
		{FEN: "8/8/8/8/8/8/1k6/K6Q w - -", Moves: []string{"h1h2"}},
		{FEN: "8/8/8/8/8/8/1k6/K6Q w - -", Moves: []string{"h1d1"}},
	}
	if _, err := EncodeTable(records); err == nil {
		t.Error("EncodeTable() error = nil, want duplicate error")
	}
}
