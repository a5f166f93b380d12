package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/discochess/syzygymoves/internal/builder"
	"github.com/discochess/syzygymoves/internal/codec"
)

const kqk = "8/8/8/8/8/8/1k6/K6Q w - - 0 1"

// execute runs the CLI with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Flags are package globals; reset the ones tests change.
	verbosity, quiet, logFile, dataDir, bookURL, offline, showBoard, statsPerTable = 0, false, "", "", "", false, false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"-q"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

type staticProber map[string][]string

func (p staticProber) Moves(_ context.Context, fen string) ([]string, error) { return p[fen], nil }

func buildTestBook(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	b := builder.New(staticProber{kqk: {"h1h7", "h1b7"}},
		builder.WithOutputDir(dir),
		builder.WithCodec(codec.Gzip{}),
		builder.WithProgress(nil),
	)
	if _, err := b.Build(context.Background(), []string{kqk}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return dir
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{0, zapcore.WarnLevel},
		{1, zapcore.InfoLevel},
		{2, zapcore.DebugLevel},
		{5, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		if got := levelFor(tt.verbosity); got != tt.want {
			t.Errorf("levelFor(%d) = %v, want %v", tt.verbosity, got, tt.want)
		}
	}
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syzygymoves.log")
	l, err := newLogger(1, true, path)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	l.Info("hello")
	l.Debug("hidden")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "hello") || strings.Contains(string(data), "hidden") {
		t.Errorf("log file = %q, want info entry only", data)
	}
}

func TestNewLogger_QuietWithoutFile(t *testing.T) {
	l, err := newLogger(2, true, "")
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	if l.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("quiet logger without a file is enabled, want no-op")
	}
}

func TestApplyCommand(t *testing.T) {
	out, err := execute(t, "apply", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", "e2e4", "e7e5")
	if err != nil {
		t.Fatalf("apply error = %v", err)
	}
	want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1\n" +
		"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2\n"
	if out != want {
		t.Errorf("apply output = %q, want %q", out, want)
	}
}

func TestApplyCommand_BadMove(t *testing.T) {
	if _, err := execute(t, "apply", kqk, "b2b3"); err == nil {
		t.Error("apply with a black piece on white's turn error = nil, want error")
	}
}

func TestRenderCommand(t *testing.T) {
	out, err := execute(t, "render", kqk)
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if !strings.Contains(out, "1 | K |   |   |   |   |   |   | Q |") {
		t.Errorf("render output missing rank 1:\n%s", out)
	}
}

func TestRootCommand_OfflineBook(t *testing.T) {
	dir := buildTestBook(t)
	out, err := execute(t, "--offline", "--data-dir", dir, kqk)
	if err != nil {
		t.Fatalf("root error = %v", err)
	}
	if !strings.Contains(out, "[h1h7 h1b7]") {
		t.Errorf("output missing candidates:\n%s", out)
	}
	if !strings.HasSuffix(out, "8/8/8/8/8/8/1k5Q/K7 b - - 1 1\n") {
		t.Errorf("output does not end with the new FEN:\n%s", out)
	}
}

func TestRootCommand_OfflineUnknown(t *testing.T) {
	dir := buildTestBook(t)
	if _, err := execute(t, "--offline", "--data-dir", dir, "8/8/8/8/8/8/1k6/K6R w - - 0 1"); err == nil {
		t.Error("root for an unknown position error = nil, want error")
	}
}

func TestRootCommand_BadBookURL(t *testing.T) {
	_, err := execute(t, "--offline", "--book-url", "ftp://books/v1", kqk)
	if err == nil || !strings.Contains(err.Error(), "unsupported book URL scheme") {
		t.Errorf("root error = %v, want unsupported scheme", err)
	}
}

func TestBookStatsAndVerify(t *testing.T) {
	dir := buildTestBook(t)

	out, err := execute(t, "book", "stats", "--data-dir", dir, "--tables")
	if err != nil {
		t.Fatalf("book stats error = %v", err)
	}
	for _, want := range []string{"KQvK", "Tables:         1 (manifest 1)", "Records:        1 (manifest 1)", "Compression:    gzip"} {
		if !strings.Contains(out, want) {
			t.Errorf("book stats output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "book", "verify", "--data-dir", dir)
	if err != nil {
		t.Fatalf("book verify error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Verified 1 tables, 1 records, 0 failed") {
		t.Errorf("book verify output = %q", out)
	}
}

func TestVerifyTable(t *testing.T) {
	tests := []struct {
		name    string
		sig     string
		data    string
		want    int
		wantErr bool
	}{
		{
			name: "valid",
			sig:  "KQvK",
			data: `{"fen":"8/8/8/8/8/2k5/8/K6Q b - -","moves":["c3b4"]}` + "\n" +
				`{"fen":"8/8/8/8/8/8/1k6/K6Q w - -","moves":["h1h7"]}` + "\n",
			want: 2,
		},
		{
			name:    "unsorted",
			sig:     "KQvK",
			data:    `{"fen":"8/8/8/8/8/8/1k6/K6Q w - -","moves":[]}` + "\n" + `{"fen":"8/8/8/8/8/2k5/8/K6Q b - -","moves":[]}` + "\n",
			wantErr: true,
		},
		{
			name:    "wrong table",
			sig:     "KRvK",
			data:    `{"fen":"8/8/8/8/8/8/1k6/K6Q w - -","moves":[]}` + "\n",
			wantErr: true,
		},
		{
			name:    "not json",
			sig:     "KQvK",
			data:    "garbage\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := verifyTable(tt.sig, []byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("verifyTable() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("verifyTable() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	d := describe([]float64{4, 1, 3, 2})
	if d.n != 4 || d.mean != 2.5 || d.max != 4 {
		t.Errorf("describe() = %+v, want n=4 mean=2.5 max=4", d)
	}
	if d.median != 2 {
		t.Errorf("describe().median = %v, want 2", d.median)
	}
	if d.stdDev <= 1.29 || d.stdDev >= 1.30 {
		t.Errorf("describe().stdDev = %v, want ~1.29", d.stdDev)
	}

	if one := describe([]float64{7}); one.stdDev != 0 || one.median != 7 {
		t.Errorf("describe(single) = %+v", one)
	}
	if empty := describe(nil); empty.n != 0 {
		t.Errorf("describe(nil).n = %d, want 0", empty.n)
	}
}
