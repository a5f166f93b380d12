package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/syzygymoves/internal/builder"
	"github.com/discochess/syzygymoves/internal/codec"
	"github.com/discochess/syzygymoves/internal/stats"
	"github.com/discochess/syzygymoves/internal/stats/logger"
	promstats "github.com/discochess/syzygymoves/internal/stats/prometheus"
	"github.com/discochess/syzygymoves/internal/tablebase"
)

var bookBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a book by probing the tablebase",
	Long: `Probe the remote tablebase for every endgame position in the input and
write the answers as a book.

This command will:
1. Read positions from a FEN list (one per line) or from PGN games
2. Skip invalid positions, duplicates and positions with too many pieces
3. Probe the tablebase with a bounded number of concurrent requests
4. Write one sorted, compressed table per material signature

Examples:
  # Build from a FEN list
  syzygymoves book build --input endgames.fen --output ./book

  # Build from games, politely
  syzygymoves book build --input games.pgn --pgn --rate 2 --workers 2

  # Build, serve metrics while building, and publish to GCS
  syzygymoves book build --input endgames.fen --metrics-addr :9090 --output-gcs gs://my-bucket/book`,
	RunE: runBookBuild,
}

var (
	inputPath   string
	inputPGN    bool
	outputDir   string
	outputGCS   string
	workers     int
	maxPieces   int
	compression string
	metricsAddr string
)

func init() {
	bookBuildCmd.Flags().StringVarP(&inputPath, "input", "i", "", "file of FENs, or PGN games with --pgn")
	bookBuildCmd.Flags().BoolVar(&inputPGN, "pgn", false, "read the input as PGN games")
	bookBuildCmd.Flags().StringVarP(&outputDir, "output", "o", "./book", "output directory")
	bookBuildCmd.Flags().StringVar(&outputGCS, "output-gcs", "", "also upload the book to GCS (gs://bucket/prefix)")
	bookBuildCmd.Flags().IntVar(&workers, "workers", builder.DefaultWorkers, "number of concurrent tablebase requests")
	bookBuildCmd.Flags().IntVar(&maxPieces, "max-pieces", builder.DefaultMaxPieces, "skip positions with more pieces")
	bookBuildCmd.Flags().StringVar(&compression, "compression", "zstd", "table compression: zstd, gzip, none")
	bookBuildCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while building")
	_ = bookBuildCmd.MarkFlagRequired("input")
	bookCmd.AddCommand(bookBuildCmd)
}

func runBookBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	c, err := codec.ByName(compression)
	if err != nil {
		return err
	}

	input, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer input.Close()

	collector := stats.Collector(logger.New(log.Named("stats")))
	if metricsAddr != "" {
		registry := prometheus.NewRegistry()
		collector = promstats.New(registry)
		stop := serveMetrics(metricsAddr, registry)
		defer stop()
	}

	tb := newTablebase(tablebase.WithStats(collector))
	b := builder.New(tb,
		builder.WithOutputDir(outputDir),
		builder.WithCodec(c),
		builder.WithWorkers(workers),
		builder.WithMaxPieces(maxPieces),
		builder.WithProgress(builder.DefaultProgressFunc),
		builder.WithStats(collector),
		builder.WithLogger(log.Named("builder")),
	)

	format := builder.FormatFEN
	if inputPGN {
		format = builder.FormatPGN
	}

	fmt.Printf("Building book\n")
	fmt.Printf("  Input:       %s\n", inputPath)
	fmt.Printf("  Output:      %s\n", outputDir)
	fmt.Printf("  Endpoint:    %s\n", tb.Endpoint())
	fmt.Printf("  Workers:     %d\n", workers)
	fmt.Printf("  Max pieces:  %d\n", maxPieces)
	fmt.Printf("  Compression: %s\n", c.Name())
	fmt.Println()

	if _, err := b.BuildFrom(ctx, input, format); err != nil {
		return err
	}

	if outputGCS != "" {
		fmt.Printf("[Upload] Uploading to %s...\n", outputGCS)

		uploader, err := builder.NewGCSUploader(ctx, outputGCS, log.Named("upload"))
		if err != nil {
			return fmt.Errorf("creating GCS uploader: %w", err)
		}
		defer uploader.Close()

		if err := uploader.Upload(ctx, outputDir, builder.DefaultProgressFunc); err != nil {
			return fmt.Errorf("uploading to GCS: %w", err)
		}
		fmt.Println("\n[Upload] Done")
	}

	return nil
}

// serveMetrics serves registry on addr until the returned func is called.
func serveMetrics(addr string, registry *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
