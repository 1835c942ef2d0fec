package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. Connection handlers derive
// child loggers from it with a conn_id attribute so every log line of a
// connection's lifetime is correlatable.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("PLENUM_DEBUG") == "true" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
