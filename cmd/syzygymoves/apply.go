package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/syzygymoves"
	"github.com/discochess/syzygymoves/internal/render"
)

var applyCmd = &cobra.Command{
	Use:   "apply FEN MOVE...",
	Short: "Apply coordinate moves to a position",
	Long: `Apply moves such as e2e4 or a7a8q to a position in order and print
the FEN after each one. Only piece colors are checked; no tablebase is
queried.

Examples:
  syzygymoves apply "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1" e2e4 e7e5
  syzygymoves apply --board "8/8/8/8/8/8/1k6/K6Q w - - 0 1" h1h7`,
	Args: cobra.MinimumNArgs(2),
	RunE: runApply,
}

var showBoard bool

func init() {
	applyCmd.Flags().BoolVar(&showBoard, "board", false, "print the board after each move")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	positions, err := syzygymoves.Play(args[0], args[1:]...)
	for _, p := range positions {
		if showBoard {
			fmt.Fprintln(out, render.ASCII(p.Board()))
		}
		fmt.Fprintln(out, p.FEN())
	}
	return err
}
