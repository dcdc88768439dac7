package logging

import (
	"customer-service/internal/config"
	"io"
	"log/slog"
	"os"
	"strings"
)

func NewLogger(cfg config.LoggerConfig) *slog.Logger {
	logger := slog.New(newHandler(os.Stdout, cfg))
	slog.SetDefault(logger)
	return logger
}

func newHandler(w io.Writer, cfg config.LoggerConfig) slog.Handler {
	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}
	if strings.EqualFold(cfg.Encoding, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
