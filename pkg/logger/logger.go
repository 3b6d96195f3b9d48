package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Log is the process-wide structured logger. Every line carries the
// service name so aggregated logs can be filtered per context.
var Log *slog.Logger

// Init configures JSON logging on stdout. LOG_LEVEL picks the minimum
// level (debug, info, warn, error); anything else means info.
func Init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	})
	Log = slog.New(handler).With("service", "jobs-api")
	slog.SetDefault(Log)
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
