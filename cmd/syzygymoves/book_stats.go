package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/discochess/syzygymoves/internal/book"
	"github.com/discochess/syzygymoves/internal/builder"
	"github.com/discochess/syzygymoves/internal/codec"
	"github.com/discochess/syzygymoves/internal/store/diskstore"
)

var bookStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics about a book",
	Long: `Display statistics about the book in --data-dir including:
- Manifest details
- Number of tables and records
- Total size on disk`,
	RunE: runBookStats,
}

var statsPerTable bool

func init() {
	bookStatsCmd.Flags().BoolVar(&statsPerTable, "tables", false, "list every table with its record count")
	bookCmd.AddCommand(bookStatsCmd)
}

// openBook opens the disk store of the book in dir with the codec its
// manifest names.
func openBook(dir string) (*diskstore.Store, *builder.Manifest, error) {
	if dir == "" {
		return nil, nil, fmt.Errorf("no book directory; pass --data-dir")
	}
	manifest, err := builder.ReadManifest(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("book %q: %w; run 'syzygymoves book build' first", dir, err)
	}
	c, err := codec.ByName(manifest.Compression)
	if err != nil {
		return nil, nil, err
	}
	ds, err := diskstore.New(dir, c)
	if err != nil {
		return nil, nil, err
	}
	return ds, manifest, nil
}

func runBookStats(cmd *cobra.Command, args []string) error {
	ds, manifest, err := openBook(dataDir)
	if err != nil {
		return err
	}
	defer ds.Close()

	sigs, err := ds.Signatures()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var (
		totalSize    int64
		totalRecords int
		perTable     = make([]float64, 0, len(sigs))
	)
	for _, sig := range sigs {
		info, err := os.Stat(ds.TablePath(sig))
		if err != nil {
			return err
		}
		totalSize += info.Size()

		data, err := ds.ReadTable(cmd.Context(), sig)
		if err != nil {
			return fmt.Errorf("reading table %s: %w", sig, err)
		}
		n := book.Count(data)
		totalRecords += n
		perTable = append(perTable, float64(n))
		if statsPerTable {
			fmt.Fprintf(out, "  %-16s %8d records  %s\n", sig, n, builder.FormatBytes(info.Size()))
		}
	}

	fmt.Fprintf(out, "Book directory: %s\n", dataDir)
	fmt.Fprintf(out, "Built:          %s\n", manifest.BuiltAt.Format("2006-01-02 15:04 MST"))
	if manifest.Endpoint != "" {
		fmt.Fprintf(out, "Endpoint:       %s\n", manifest.Endpoint)
	}
	fmt.Fprintf(out, "Compression:    %s\n", manifest.Compression)
	fmt.Fprintf(out, "Tables:         %d (manifest %d)\n", len(sigs), manifest.TableCount)
	fmt.Fprintf(out, "Records:        %d (manifest %d)\n", totalRecords, manifest.RecordCount)
	fmt.Fprintf(out, "Total size:     %s\n", builder.FormatBytes(totalSize))
	if d := describe(perTable); d.n > 0 {
		fmt.Fprintf(out, "Records/table:  mean %.1f, stddev %.1f, median %.0f, max %.0f\n", d.mean, d.stdDev, d.median, d.max)
	}
	return nil
}

// distribution summarizes the record counts of a book's tables.
type distribution struct {
	n      int
	mean   float64
	stdDev float64
	median float64
	max    float64
}

func describe(sample []float64) distribution {
	if len(sample) == 0 {
		return distribution{}
	}
	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	d := distribution{
		n:      len(sorted),
		mean:   stat.Mean(sorted, nil),
		median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		max:    sorted[len(sorted)-1],
	}
	// StdDev of a single value is NaN.
	if len(sorted) > 1 {
		d.stdDev = stat.StdDev(sorted, nil)
	}
	return d
}
