package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/discochess/syzygymoves/fen"
	"github.com/discochess/syzygymoves/internal/book"
)

var bookVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the integrity of a book",
	Long: `Verify that all tables in the book in --data-dir are valid.

This command checks:
- Each table can be decompressed
- Each line is a valid record with a valid FEN
- Each record belongs to the table's material signature
- Records are sorted and unique within each table`,
	RunE: runBookVerify,
}

func init() {
	bookCmd.AddCommand(bookVerifyCmd)
}

func runBookVerify(cmd *cobra.Command, args []string) error {
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
		failed  int
		records int64
	)
	for _, sig := range sigs {
		data, err := ds.ReadTable(cmd.Context(), sig)
		if err != nil {
			fmt.Fprintf(out, "FAIL %s: %v\n", sig, err)
			failed++
			continue
		}
		n, err := verifyTable(sig, data)
		if err != nil {
			fmt.Fprintf(out, "FAIL %s: %v\n", sig, err)
			failed++
			continue
		}
		records += int64(n)
	}

	if records != manifest.RecordCount {
		fmt.Fprintf(out, "WARN manifest lists %d records, tables hold %d\n", manifest.RecordCount, records)
	}
	fmt.Fprintf(out, "Verified %d tables, %d records, %d failed\n", len(sigs), records, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d tables failed verification", failed, len(sigs))
	}
	return nil
}

// verifyTable checks one decompressed table and returns its record count.
func verifyTable(sig string, data []byte) (int, error) {
	var prev string
	n := 0
	for i, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if line == "" {
			continue
		}
		var r book.Record
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			return n, fmt.Errorf("line %d: %w", i+1, err)
		}
		m, err := fen.ParseMaterial(r.FEN)
		if err != nil {
			return n, fmt.Errorf("line %d: %w", i+1, err)
		}
		if got := m.Signature(); got != sig {
			return n, fmt.Errorf("line %d: position %s belongs to %s", i+1, r.FEN, got)
		}
		if r.FEN <= prev {
			return n, fmt.Errorf("line %d: %q not sorted after %q", i+1, r.FEN, prev)
		}
		prev = r.FEN
		n++
	}
	return n, nil
}
