// Package log provides the logging infrastructure for the agent service.
//
// Loggers are injected via constructors rather than accessed as globals;
// each component narrows its logger with logger.With("component", ...).
// NewNop exists so tests can silence components without extra wiring.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a type alias for *slog.Logger. Using the standard library type
// directly keeps full compatibility with the slog ecosystem and avoids a
// custom interface that would just mirror it.
type Logger = *slog.Logger

// Config defines logger construction options.
type Config struct {
	// Level sets the minimum log level. Default: slog.LevelInfo.
	Level slog.Level

	// JSON switches output to JSON format. Default: text.
	JSON bool

	// AddSource attaches source file positions to records.
	AddSource bool
}

// New creates a logger writing to os.Stderr.
func New(cfg Config) Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter creates a logger writing to w. Useful in tests that want to
// inspect emitted records.
func NewWithWriter(w io.Writer, cfg Config) Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// NewNop creates a logger that discards everything. Tests only; production
// components should always receive a real logger.
func NewNop() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
