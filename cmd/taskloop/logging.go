package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tailored-agentic-units/taskloop/observability"
)

var (
	zapLogger      *zap.Logger
	activeObserver string
)

// setupLogging installs the process logger and registers the matching
// observer: a charm console handler behind slog for text, zap production
// encoding for json.
func setupLogging(level, format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		lvl, err := charmlog.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			Level:           lvl,
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Prefix:          "taskloop",
		})
		logger := slog.New(handler)
		slog.SetDefault(logger)
		observability.RegisterObserver("slog", observability.NewSlogObserver(logger))
		activeObserver = "slog"

	case "json":
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
		logger, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		zap.ReplaceGlobals(logger)
		zapLogger = logger
		observability.RegisterObserver("zap", observability.NewZapObserver(logger))
		activeObserver = "zap"

	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}

// loggingObserver names the observer registered by setupLogging.
func loggingObserver() string { return activeObserver }

func syncLogging() {
	if zapLogger != nil {
		_ = zapLogger.Sync()
	}
}
