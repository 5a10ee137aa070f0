// Package logger owns the process-wide structured logger.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// L is the global logger instance, set by Init.
var L = slog.Default()

type contextKey string

const loggerKey contextKey = "logger"

// Init initializes the global logger with a JSON handler at the given level.
// Call it once at application startup, after loading config.
func Init(levelStr string) {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
		slog.Warn("invalid log level, defaulting to info", "configuredLevel", levelStr)
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	L = slog.New(handler)
	slog.SetDefault(L)
}

// ToContext embeds a logger into a context, typically enriched with a
// request id.
func ToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from the context, or the global logger.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return L
}
