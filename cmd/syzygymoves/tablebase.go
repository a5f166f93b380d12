package main

import (
	"github.com/discochess/syzygymoves/internal/tablebase"
)

func newTablebase(opts ...tablebase.Option) *tablebase.Client {
	opts = append([]tablebase.Option{tablebase.WithLogger(log.Named("tablebase"))}, opts...)
	if endpoint != "" {
		opts = append(opts, tablebase.WithEndpoint(endpoint))
	}
	if rateLimit > 0 {
		opts = append(opts, tablebase.WithRateLimit(rateLimit, 1))
	}
	return tablebase.New(opts...)
}
