// Package builder turns a list of positions into a book directory: it probes
// the tablebase for each endgame position and writes one sorted table per
// material signature plus a manifest.
package builder

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// Progress tracks build progress.
type Progress struct {
	Phase            string
	BytesRead        int64
	PositionsRead    int64
	PositionsSkipped int64
	PositionsProbed  int64
	PositionsTotal   int64
	RecordsWritten   int64
	TablesWritten    int
	TablesTotal      int
	StartTime        time.Time
	Error            error
}

// ProgressFunc is called periodically with progress updates.
type ProgressFunc func(Progress)

// progressReader wraps an io.Reader to track bytes read.
type progressReader struct {
	r    io.Reader
	read *atomic.Int64
}

func newProgressReader(r io.Reader, counter *atomic.Int64) *progressReader {
	return &progressReader{r: r, read: counter}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	pr.read.Add(int64(n))
	return n, err
}

// FormatBytes formats bytes as human-readable string.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration formats duration as human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// DefaultProgressFunc prints progress to stdout.
func DefaultProgressFunc(p Progress) {
	switch p.Phase {
	case "read":
		fmt.Printf("[Read] %d positions (%s)\n", p.PositionsRead, FormatBytes(p.BytesRead))
	case "probe":
		fmt.Printf("\r[Probe] %d / %d positions, %d skipped",
			p.PositionsProbed, p.PositionsTotal, p.PositionsSkipped)
	case "write":
		fmt.Printf("\r[Write] %d / %d tables, %d records",
			p.TablesWritten, p.TablesTotal, p.RecordsWritten)
	case "upload":
		fmt.Printf("\r[Upload] %d / %d tables", p.TablesWritten, p.TablesTotal)
	case "done":
		elapsed := time.Since(p.StartTime)
		fmt.Printf("\n[Done] %d records in %d tables (%s)\n",
			p.RecordsWritten, p.TablesWritten, FormatDuration(elapsed))
	case "error":
		fmt.Printf("\n[Error] %v\n", p.Error)
	}
}
