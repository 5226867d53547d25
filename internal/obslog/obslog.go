// Package obslog sets up structured diagnostic logging to stderr via
// log/slog, in the style of the server's JSON handler setup: one logger
// built once at startup from a parsed level.
package obslog

import (
	"log/slog"
	"os"
)

// New builds a slog.Logger writing JSON to stderr at the given level
// ("debug", "info", "warn", "error"; unrecognized values fall back to
// "warn", since a CLI's normal runs should stay quiet).
func New(level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// ParseLevel maps a --log-level string to a slog.Level.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
