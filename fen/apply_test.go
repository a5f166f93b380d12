package fen

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type moveSample struct {
	before, move, after string
}

var moveSamples = []moveSample{
	{StartingFEN, "a2a3",
		"rnbqkbnr/pppppppp/8/8/8/P7/1PPPPPPP/RNBQKBNR b KQkq - 0 1"},
	{"rnbqkbnr/pp1ppppp/8/2p5/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2", "a7a5",
		"rnbqkbnr/1p1ppppp/8/p1p5/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq a6 0 3"},
	{"8/4npk1/5p1p/1Q5P/1p4P1/4r3/7q/3K1R2 b - - 1 49", "b4b3",
		"8/4npk1/5p1p/1Q5P/6P1/1p2r3/7q/3K1R2 w - - 0 50"},
	{"5r1k/6pp/4Qpb1/p7/8/6PP/P4PK1/3q4 b - - 4 37", "a5a4",
		"5r1k/6pp/4Qpb1/8/p7/6PP/P4PK1/3q4 w - - 0 38"},
	{"8/8/2P5/4B3/1Q6/4K3/6P1/3k4 w - - 5 67", "b4a3",
		"8/8/2P5/4B3/8/Q3K3/6P1/3k4 b - - 6 67"},
	{"r2q1rk1/pp2ppbp/2p2np1/6B1/3PP1b1/Q1P2N2/P4PPP/3RKB1R b K - 0 13", "a7a5",
		"r2q1rk1/1p2ppbp/2p2np1/p5B1/3PP1b1/Q1P2N2/P4PPP/3RKB1R w K a6 0 14"},
}

func TestApply(t *testing.T) {
	for _, s := range moveSamples {
		t.Run(s.move, func(t *testing.T) {
			p := MustParse(s.before)
			got, err := p.Apply(s.move)
			if err != nil {
				t.Fatalf("Apply(%q) error = %v", s.move, err)
			}
			if got.FEN() != s.after {
				t.Errorf("Apply(%q).FEN() = %q, want %q", s.move, got.FEN(), s.after)
			}
			if got.String() != got.Encode() {
				t.Errorf("String() = %q, Encode() = %q", got.String(), got.Encode())
			}
		})
	}
}

func TestApply_Counters(t *testing.T) {
	for _, s := range moveSamples {
		t.Run(s.move, func(t *testing.T) {
			p := MustParse(s.before)
			got, err := p.Apply(s.move)
			if err != nil {
				t.Fatalf("Apply(%q) error = %v", s.move, err)
			}

			wantFull := p.FullmoveNumber()
			if p.Active() == Black {
				wantFull++
			}
			if got.FullmoveNumber() != wantFull {
				t.Errorf("FullmoveNumber() = %d, want %d", got.FullmoveNumber(), wantFull)
			}

			ply, ok := got.Ply()
			if !ok {
				t.Fatal("Ply() ok = false after Apply")
			}
			wantHalf := p.HalfmoveClock() + 1
			if ply.Moved.Kind == Pawn || ply.Capture() {
				wantHalf = 0
			}
			if got.HalfmoveClock() != wantHalf {
				t.Errorf("HalfmoveClock() = %d, want %d", got.HalfmoveClock(), wantHalf)
			}

			if got.Active() != p.Active().Other() {
				t.Errorf("Active() = %v, want %v", got.Active(), p.Active().Other())
			}
		})
	}
}

func TestApply_EnPassantTarget(t *testing.T) {
	tests := []struct {
		moveSample
		target string
	}{
		{moveSample{StartingFEN, "e2e4",
			"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"}, "e3"},
		{moveSample{"rnbqkbnr/pp1ppppp/8/2p5/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2", "a7a5",
			"rnbqkbnr/1p1ppppp/8/p1p5/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq a6 0 3"}, "a6"},
		{moveSample{"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1", "g8f6",
			"rnbqkb1r/pppppppp/5n2/8/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 1 2"}, "-"},
		{moveSample{"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1", "d7d6",
			"rnbqkbnr/ppp1pppp/3p4/8/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2"}, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.move, func(t *testing.T) {
			got, err := MustParse(tt.before).Apply(tt.move)
			if err != nil {
				t.Fatalf("Apply(%q) error = %v", tt.move, err)
			}
			if got.EnPassant() != tt.target {
				t.Errorf("EnPassant() = %q, want %q", got.EnPassant(), tt.target)
			}
			if got.FEN() != tt.after {
				t.Errorf("FEN() = %q, want %q", got.FEN(), tt.after)
			}
		})
	}
}

func TestApply_Capture(t *testing.T) {
	tests := []struct {
		moveSample
		captured Piece
	}{
		{moveSample{"r1bqkb1r/pppp1ppp/2n2n2/4p3/3PP3/5N2/PPP2PPP/RNBQKB1R w KQkq - 1 4", "d4e5",
			"r1bqkb1r/pppp1ppp/2n2n2/4P3/4P3/5N2/PPP2PPP/RNBQKB1R b KQkq - 0 4"}, Piece{Pawn, Black}},
		{moveSample{"r1bqkb1r/pppp1ppp/2n2n2/4P3/4P3/5N2/PPP2PPP/RNBQKB1R b KQkq - 0 4", "f6e4",
			"r1bqkb1r/pppp1ppp/2n5/4P3/4n3/5N2/PPP2PPP/RNBQKB1R w KQkq - 0 5"}, Piece{Pawn, White}},
		{moveSample{"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3", "e5f6",
			"rnbqkbnr/ppp1p1pp/5P2/3p4/8/8/PPPP1PPP/RNBQKBNR b KQkq - 0 3"}, Piece{Pawn, Black}},
	}

	for _, tt := range tests {
		t.Run(tt.move, func(t *testing.T) {
			got, err := MustParse(tt.before).Apply(tt.move)
			if err != nil {
				t.Fatalf("Apply(%q) error = %v", tt.move, err)
			}
			ply, _ := got.Ply()
			if !ply.Capture() {
				t.Error("Capture() = false, want true")
			}
			if ply.Captured != tt.captured {
				t.Errorf("Captured = %q, want %q", ply.Captured, tt.captured)
			}
			if got.HalfmoveClock() != 0 {
				t.Errorf("HalfmoveClock() = %d, want 0", got.HalfmoveClock())
			}
			if got.FEN() != tt.after {
				t.Errorf("FEN() = %q, want %q", got.FEN(), tt.after)
			}
		})
	}
}

func TestApply_Castling(t *testing.T) {
	tests := []moveSample{
		{"r1bqkb1r/1p4pp/p1n1p3/3n1p2/3P4/2N2N2/PP2BPPP/R1BQK2R w KQkq - 2 11", "e1g1",
			"r1bqkb1r/1p4pp/p1n1p3/3n1p2/3P4/2N2N2/PP2BPPP/R1BQ1RK1 b kq - 3 11"},
		{"r1b1k2r/1pq3pp/2n1p3/pB1P1p2/3N4/2P5/P4PPP/1R1QR1K1 b kq - 2 20", "e8g8",
			"r1b2rk1/1pq3pp/2n1p3/pB1P1p2/3N4/2P5/P4PPP/1R1QR1K1 w - - 3 21"},
		{"r1b1k2r/1pq3pp/2n1p3/pB1P1p2/3N4/2P5/P4PPP/1R1QR1K1 b kq - 2 20", "e8f7",
			"r1b4r/1pq2kpp/2n1p3/pB1P1p2/3N4/2P5/P4PPP/1R1QR1K1 w - - 3 21"},
		{"r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "e8c8",
			"2kr3r/8/8/8/8/8/8/R3K2R w KQ - 1 2"},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1c1",
			"r3k2r/8/8/8/8/8/8/2KR3R b kq - 1 1"},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "h1h5",
			"r3k2r/8/8/7R/8/8/8/R3K3 b Qkq - 1 1"},
		{"r3k2r/8/8/7R/8/8/8/R3K3 b Qkq - 1 1", "a8a1",
			"4k2r/8/8/7R/8/8/8/r3K3 w Qk - 0 2"},
		{"4k3/8/8/8/8/8/R7/4K3 w Q - 0 1", "a2a3",
			"4k3/8/8/8/8/R7/8/4K3 b Q - 1 1"},
		{"4k3/8/8/8/8/8/8/4K2R w K - 7 30", "e1e2",
			"4k3/8/8/8/8/8/4K3/7R b - - 8 30"},
	}

	for _, tt := range tests {
		t.Run(tt.move, func(t *testing.T) {
			got, err := MustParse(tt.before).Apply(tt.move)
			if err != nil {
				t.Fatalf("Apply(%q) error = %v", tt.move, err)
			}
			if got.FEN() != tt.after {
				t.Errorf("FEN() = %q, want %q", got.FEN(), tt.after)
			}
		})
	}
}

func TestApply_Promotion(t *testing.T) {
	tests := []moveSample{
		{"8/P7/8/8/8/8/8/k6K w - - 3 50", "a7a8q", "Q7/8/8/8/8/8/8/k6K b - - 0 50"},
		{"8/8/8/8/8/8/6p1/k4R1K b - - 0 60", "g2f1n", "8/8/8/8/8/8/8/k4n1K w - - 0 61"},
	}

	for _, tt := range tests {
		t.Run(tt.move, func(t *testing.T) {
			got, err := MustParse(tt.before).Apply(tt.move)
			if err != nil {
				t.Fatalf("Apply(%q) error = %v", tt.move, err)
			}
			if got.FEN() != tt.after {
				t.Errorf("FEN() = %q, want %q", got.FEN(), tt.after)
			}
		})
	}
}

func TestApply_Errors(t *testing.T) {
	tests := []struct {
		name   string
		before string
		move   string
		want   error
	}{
		{"black pawn with white to move", StartingFEN, "a7a6", ErrWrongColorPiece},
		{"white pawn with black to move",
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1", "a2a3", ErrWrongColorPiece},
		{"empty origin", StartingFEN, "e4e5", ErrWrongColorPiece},
		{"capture own piece",
			"rnbqkbnr/pppp2pp/5p2/4p3/4P3/3P4/PPP2PPP/RNBQKBNR w - - 0 1", "d3e4", ErrWrongColorCapture},
		{"too short", StartingFEN, "e2e", ErrInvalidMoveFormat},
		{"too long", StartingFEN, "e2e4qq", ErrInvalidMoveFormat},
		{"file out of range", StartingFEN, "i2i4", ErrInvalidMoveFormat},
		{"rank out of range", StartingFEN, "e0e4", ErrInvalidMoveFormat},
		{"bad promotion letter", "8/P7/8/8/8/8/8/k6K w - - 0 1", "a7a8k", ErrInvalidMoveFormat},
		{"promotion of a knight", StartingFEN, "g1f3q", ErrInvalidMoveFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := MustParse(tt.before)
			got, err := p.Apply(tt.move)
			if !errors.Is(err, tt.want) {
				t.Errorf("Apply(%q) error = %v, want %v", tt.move, err, tt.want)
			}
			if got != nil {
				t.Errorf("Apply(%q) = %v, want nil", tt.move, got)
			}
			if p.FEN() != tt.before || p.Encode() != tt.before {
				t.Errorf("origin changed after failed Apply: %q", p.Encode())
			}
		})
	}
}

func TestApply_DoesNotMutateOrigin(t *testing.T) {
	samples := append([]moveSample{
		{"r1bqkb1r/1p4pp/p1n1p3/3n1p2/3P4/2N2N2/PP2BPPP/R1BQK2R w KQkq - 2 11", "e1g1", ""},
		{"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3", "e5f6", ""},
	}, moveSamples...)

	for _, s := range samples {
		p := MustParse(s.before)
		before := *p
		ranks := p.Board().Ranks()

		if _, err := p.Apply(s.move); err != nil {
			t.Fatalf("Apply(%q) error = %v", s.move, err)
		}

		if diff := cmp.Diff(ranks, p.Board().Ranks()); diff != "" {
			t.Errorf("Apply(%q) changed origin board (-before +after):\n%s", s.move, diff)
		}
		if before != *p {
			t.Errorf("Apply(%q) changed origin position", s.move)
		}
	}
}

func TestApply_Concurrent(t *testing.T) {
	origin := MustParse(StartingFEN)
	moves := []string{"a2a3", "a2a4", "b1c3", "e2e4", "g1f3", "h2h3", "d2d4", "c2c4"}

	want := make([]string, len(moves))
	for i, m := range moves {
		next, err := origin.Apply(m)
		if err != nil {
			t.Fatalf("Apply(%q) error = %v", m, err)
		}
		want[i] = next.FEN()
	}

	got := make([]string, len(moves))
	var wg sync.WaitGroup
	for i, m := range moves {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next, err := origin.Apply(m)
			if err != nil {
				t.Errorf("Apply(%q) error = %v", m, err)
				return
			}
			got[i] = next.FEN()
		}()
	}
	wg.Wait()

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("concurrent Apply mismatch (-want +got):\n%s", diff)
	}
	if origin.FEN() != StartingFEN {
		t.Errorf("origin FEN = %q, want %q", origin.FEN(), StartingFEN)
	}
}

func TestApply_Chain(t *testing.T) {
	p := MustParse(StartingFEN)
	var err error
	for _, m := range []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6", "e1g1"} {
		if p, err = p.Apply(m); err != nil {
			t.Fatalf("Apply(%q) error = %v", m, err)
		}
	}
	want := "r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQ1RK1 b kq - 5 4"
	if p.FEN() != want {
		t.Errorf("FEN() = %q, want %q", p.FEN(), want)
	}
}

func TestParseMove(t *testing.T) {
	m, err := ParseMove("e2e4")
	if err != nil {
		t.Fatalf("ParseMove() error = %v", err)
	}
	want := Move{From: Square{Row: 6, File: 4}, To: Square{Row: 4, File: 4}}
	if m != want {
		t.Errorf("ParseMove() = %+v, want %+v", m, want)
	}
	if m.String() != "e2e4" {
		t.Errorf("String() = %q, want e2e4", m.String())
	}

	m, err = ParseMove("a7a8Q")
	if err != nil {
		t.Fatalf("ParseMove() error = %v", err)
	}
	if m.Promotion != Queen || m.String() != "a7a8q" {
		t.Errorf("ParseMove(a7a8Q) = %+v (%s)", m, m)
	}
}

func BenchmarkApply(b *testing.B) {
	p := MustParse(StartingFEN)
	for i := 0; i < b.N; i++ {
		_, _ = p.Apply("e2e4")
	}
}
