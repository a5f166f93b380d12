package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/syzygymoves"
	"github.com/discochess/syzygymoves/fen"
	"github.com/discochess/syzygymoves/internal/render"
)

var (
	// Global flags.
	verbosity int
	quiet     bool
	logFile   string
	dataDir   string
	bookURL   string
	bookCodec string
	endpoint  string
	offline   bool
	rateLimit float64

	// log is configured from the global flags before any command runs.
	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "syzygymoves [FEN]",
	Short: "Play the tablebase's best move for an endgame position",
	Long: `Syzygymoves shows the given position, asks the Syzygy endgame
tablebase for its moves, plays the best one and shows the result.

Without a FEN the standard starting position is used.

Examples:
  # Queen versus king
  syzygymoves "8/8/8/8/8/8/1k6/K6Q w - - 0 1"

  # Answer from a local book first, without network access
  syzygymoves --data-dir ./book --offline "8/8/8/8/8/8/1k6/K6Q w - - 0 1"

  # Answer from a book uploaded with "book build --output-gcs"
  syzygymoves --book-url gs://my-bucket/books/v1 "8/8/8/8/8/8/1k6/K6Q w - - 0 1"

  # Apply moves without asking anyone
  syzygymoves apply "8/8/8/8/8/8/1k6/K6Q w - - 0 1" h1h7 b2b3`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbosity, quiet, logFile)
		if err != nil {
			return fmt.Errorf("configuring logging: %w", err)
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
	RunE: runNext,
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase the amount of logging (may be repeated)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "prevent log output to the console")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "file to which log messages are written")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "book directory to answer from before the remote tablebase")
	rootCmd.PersistentFlags().StringVar(&bookURL, "book-url", "", "uploaded book (gs://bucket/prefix or s3://bucket/prefix) to answer from")
	rootCmd.PersistentFlags().StringVar(&bookCodec, "book-compression", "zstd", "compression the --book-url book was built with")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Syzygy API URL (default https://syzygy-tables.info/api/v2)")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "never query the remote tablebase")
	rootCmd.PersistentFlags().Float64Var(&rateLimit, "rate", 0, "maximum remote requests per second (0 for unlimited)")
}

func runNext(cmd *cobra.Command, args []string) error {
	start := time.Now()
	defer func() {
		log.Info("processing finished", zap.Duration("took", time.Since(start)))
	}()

	fenStr := fen.StartingFEN
	if len(args) == 1 {
		fenStr = args[0]
	}
	log.Debug("starting position", zap.String("fen", fenStr))

	before, err := fen.Parse(fenStr)
	if err != nil {
		return err
	}

	client, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render.ASCII(before.Board()))

	step, err := client.Step(cmd.Context(), before.FEN())
	if err != nil {
		return err
	}

	fmt.Fprintln(out, step.Candidates)
	fmt.Fprintln(out, render.ASCII(step.After.Board()))
	fmt.Fprintln(out, step.After.FEN())
	return nil
}

// clientOptions returns the client options selected by the global flags.
func clientOptions(ctx context.Context) ([]syzygymoves.Option, error) {
	opts := []syzygymoves.Option{
		syzygymoves.WithLogger(log.Named("client")),
	}
	if dataDir != "" {
		opt, err := syzygymoves.WithDataDir(dataDir)
		if err != nil {
			return nil, fmt.Errorf("opening book %s: %w", dataDir, err)
		}
		opts = append(opts, opt)
	}
	if bookURL != "" {
		opt, err := syzygymoves.WithBookURL(ctx, bookURL, bookCodec)
		if err != nil {
			return nil, fmt.Errorf("opening book %s: %w", bookURL, err)
		}
		opts = append(opts, opt)
	}
	if offline {
		opts = append(opts, syzygymoves.WithoutRemote())
	} else {
		opts = append(opts, syzygymoves.WithRemote(newTablebase()))
	}
	return opts, nil
}

func newClient(ctx context.Context) (*syzygymoves.Client, error) {
	opts, err := clientOptions(ctx)
	if err != nil {
		return nil, err
	}
	client, err := syzygymoves.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	return client, nil
}
