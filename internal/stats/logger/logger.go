// Package logger provides a stats collector that writes every observation to
// a zap logger at debug level.
package logger

import (
	"go.uber.org/zap"

	"github.com/discochess/syzygymoves/internal/stats"
)

// Collector logs metrics instead of aggregating them.
type Collector struct {
	logger *zap.Logger
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New returns a Collector writing to l. A nil l discards everything.
func New(l *zap.Logger) *Collector {
	if l == nil {
		l = zap.NewNop()
	}
	return &Collector{logger: l}
}

func (c *Collector) IncCounter(name string, delta int64) {
	c.log("counter", name, zap.Int64("delta", delta))
}

func (c *Collector) SetGauge(name string, value int64) {
	c.log("gauge", name, zap.Int64("value", value))
}

func (c *Collector) ObserveHistogram(name string, value float64) {
	c.log("histogram", name, zap.Float64("value", value))
}

func (c *Collector) log(kind, name string, value zap.Field) {
	if ce := c.logger.Check(zap.DebugLevel, kind); ce != nil {
		fields := []zap.Field{zap.String("metric", name), value}
		if help, ok := stats.Help[name]; ok {
			fields = append(fields, zap.String("help", help))
		}
		ce.Write(fields...)
	}
}
