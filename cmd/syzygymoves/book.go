package main

import (
	"github.com/spf13/cobra"
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Build and inspect local books of tablebase answers",
	Long: `A book is a directory of tablebase answers, one compressed table per
material signature plus a manifest.json. With --data-dir the client answers
from the book before asking the remote tablebase.`,
}

func init() {
	rootCmd.AddCommand(bookCmd)
}
