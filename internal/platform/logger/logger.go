// Package logger configures the process-wide log/slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var levelVar slog.LevelVar

// Init builds a logger for the given service, installs it as the slog
// default and returns it. format is "json" or "text"; anything else is text.
func Init(service, level, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	SetLevel(level)

	opts := &slog.HandlerOptions{Level: &levelVar}
	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler).With(slog.String("service", service))
	slog.SetDefault(l)
	return l
}

// SetLevel changes the level of loggers created by Init. Unknown values mean info.
func SetLevel(level string) {
	levelVar.Set(ParseLevel(level))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
