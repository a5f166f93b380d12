package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/syzygymoves/fen"
	"github.com/discochess/syzygymoves/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render [FEN]",
	Short: "Print the board of a position",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fenStr := fen.StartingFEN
		if len(args) == 1 {
			fenStr = args[0]
		}
		p, err := fen.Parse(fenStr)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), render.ASCII(p.Board()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
