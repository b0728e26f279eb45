// Package logging configures structured logging for log/slog.
//
// Usage:
//
//	logging.Setup("debug", "text") // colored output via tint
//	logging.Setup("info", "json")  // JSON lines for log collectors
//
// Levels: debug, info, warn, error (default: info).
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs the default logger writing to stderr.
func Setup(level, format string) {
	slog.SetDefault(New(os.Stderr, level, format))
}

// New builds a logger for the given level and format ("text" or "json").
func New(w io.Writer, level, format string) *slog.Logger {
	lvl := ParseLevel(level)
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     lvl,
			AddSource: true,
		}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	}))
}

// ParseLevel maps a level name to a slog.Level. Unknown names fall back to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
