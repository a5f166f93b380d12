// Package syzygymovesfx provides an fx module for a syzygymoves client.
package syzygymovesfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/syzygymoves"
	"github.com/discochess/syzygymoves/internal/stats"
	"github.com/discochess/syzygymoves/internal/stats/logger"
	"github.com/discochess/syzygymoves/internal/tablebase"
)

// Config holds configuration for the client.
type Config struct {
	// DataDir is a book directory built with "syzygymoves book build".
	// Empty means no local book.
	DataDir string

	// BookURL is a book uploaded to gs://bucket/prefix or s3://bucket/prefix.
	// Empty means no uploaded book.
	BookURL string

	// BookCompression is the codec BookURL was built with. Default is zstd.
	BookCompression string

	// CacheSize is the number of book tables to cache in memory.
	// Default is syzygymoves.DefaultCacheSize.
	CacheSize int

	// TwoQueueCache selects a 2Q table cache instead of LRU.
	TwoQueueCache bool

	// Endpoint is the Syzygy API URL. Default is tablebase.DefaultEndpoint.
	Endpoint string

	// RateLimit caps remote requests per second. Zero means unlimited.
	RateLimit float64

	// Offline disables the remote tablebase.
	Offline bool
}

// Module provides a *syzygymoves.Client.
// Requires a Config and a *zap.Logger to be provided.
var Module = fx.Module("syzygymoves",
	fx.Provide(
		newStatsCollector,
		newClient,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("syzygymoves.stats"))
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided client.
type Result struct {
	fx.Out

	Client *syzygymoves.Client
}

func newClient(p Params) (Result, error) {
	opts := []syzygymoves.Option{
		syzygymoves.WithStats(p.Collector),
		syzygymoves.WithLogger(p.Logger.Named("syzygymoves")),
	}
	if p.Config.CacheSize > 0 {
		opts = append(opts, syzygymoves.WithCacheSize(p.Config.CacheSize))
	}
	if p.Config.TwoQueueCache {
		opts = append(opts, syzygymoves.WithTwoQueueCache())
	}

	if p.Config.DataDir != "" {
		opt, err := syzygymoves.WithDataDir(p.Config.DataDir)
		if err != nil {
			return Result{}, err
		}
		opts = append(opts, opt)
	}

	if p.Config.BookURL != "" {
		compression := p.Config.BookCompression
		if compression == "" {
			compression = "zstd"
		}
		opt, err := syzygymoves.WithBookURL(context.Background(), p.Config.BookURL, compression)
		if err != nil {
			return Result{}, err
		}
		opts = append(opts, opt)
	}

	if p.Config.Offline {
		opts = append(opts, syzygymoves.WithoutRemote())
	} else {
		tbOpts := []tablebase.Option{
			tablebase.WithStats(p.Collector),
			tablebase.WithLogger(p.Logger.Named("tablebase")),
		}
		if p.Config.Endpoint != "" {
			tbOpts = append(tbOpts, tablebase.WithEndpoint(p.Config.Endpoint))
		}
		if p.Config.RateLimit > 0 {
			tbOpts = append(tbOpts, tablebase.WithRateLimit(p.Config.RateLimit, 1))
		}
		opts = append(opts, syzygymoves.WithRemote(tablebase.New(tbOpts...)))
	}

	client, err := syzygymoves.New(opts...)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return Result{Client: client}, nil
}
