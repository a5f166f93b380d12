package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// levelFor maps the -v count to a log level: warnings by default, info
// with one -v, debug with two or more.
func levelFor(verbosity int) zapcore.Level {
	switch {
	case verbosity <= 0:
		return zapcore.WarnLevel
	case verbosity == 1:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// newLogger builds the CLI logger. Console output goes to stderr unless
// quiet is set; logFile, when set, receives the same entries.
func newLogger(verbosity int, quiet bool, logFile string) (*zap.Logger, error) {
	var paths []string
	if !quiet {
		paths = append(paths, "stderr")
	}
	if logFile != "" {
		paths = append(paths, logFile)
	}
	if len(paths) == 0 {
		return zap.NewNop(), nil
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(levelFor(verbosity))
	cfg.Development = false
	cfg.DisableStacktrace = verbosity < 2
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04")
	cfg.OutputPaths = paths
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
