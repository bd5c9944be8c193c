package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// ParseLogLevel maps a LOG_LEVEL string to a slog.Level.
// Accepted values (case-insensitive): debug, info, warn, error.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, level)
	}
}

// SlogLevel returns the configured log level, defaulting to info when the
// value is unparseable (Validate has already rejected that case at startup).
func (c *Config) SlogLevel() slog.Level {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}
