// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Client metrics.
	MetricSuggestions  = "syzygymoves_suggestions_total"
	MetricMovesApplied = "syzygymoves_moves_applied_total"
	MetricNoAnswer     = "syzygymoves_no_answer_total"

	// Book metrics.
	MetricBookHits   = "syzygymoves_book_hits_total"
	MetricBookMisses = "syzygymoves_book_misses_total"
	MetricTableReads = "syzygymoves_table_reads_total"

	// Remote tablebase metrics.
	MetricRemoteRequests = "syzygymoves_remote_requests_total"
	MetricRemoteErrors   = "syzygymoves_remote_errors_total"
	MetricRemoteLatency  = "syzygymoves_remote_latency_seconds"

	// Cache metrics.
	MetricCacheHits   = "syzygymoves_cache_hits_total"
	MetricCacheMisses = "syzygymoves_cache_misses_total"
	MetricCacheSize   = "syzygymoves_cache_size"

	// Builder metrics.
	MetricBuilderProbed  = "syzygymoves_builder_positions_probed_total"
	MetricBuilderSkipped = "syzygymoves_builder_positions_skipped_total"
)

// Help describes the metrics above, keyed by name.
var Help = map[string]string{
	MetricSuggestions:    "Move suggestions requested from the client.",
	MetricMovesApplied:   "Moves applied to positions by the client.",
	MetricNoAnswer:       "Suggestions that no move source could answer.",
	MetricBookHits:       "Positions found in the local book.",
	MetricBookMisses:     "Positions missing from the local book.",
	MetricTableReads:     "Book tables read from the store.",
	MetricRemoteRequests: "Requests sent to the remote tablebase.",
	MetricRemoteErrors:   "Failed requests to the remote tablebase.",
	MetricRemoteLatency:  "Remote tablebase request latency in seconds.",
	MetricCacheHits:      "Table cache hits.",
	MetricCacheMisses:    "Table cache misses.",
	MetricCacheSize:      "Tables held in the cache.",
	MetricBuilderProbed:  "Positions probed while building a book.",
	MetricBuilderSkipped: "Positions skipped while building a book.",
}

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
