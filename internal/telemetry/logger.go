package telemetry

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process logger. format is "json" or "text".
func NewLogger(format string, debug bool) *slog.Logger {
	return newLogger(os.Stderr, format, debug)
}

func newLogger(w io.Writer, format string, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With("service", serviceName)
}
