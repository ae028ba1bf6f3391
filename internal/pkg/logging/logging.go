// Package logging configures structured logging for the service and the CLI.
//
// Usage:
//
//	logger := logging.Setup("dev", logging.LevelFromEnv()) // tint, colored
//	logger := logging.Setup("prod", slog.LevelInfo)        // JSON lines
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// New builds a logger writing to w. The prod environment logs JSON; every other
// environment gets tint's human-readable output.
func New(w io.Writer, env string, level slog.Level) *slog.Logger {
	if env == "prod" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    w != os.Stderr && w != os.Stdout,
	}))
}

// Setup installs a stderr logger as the slog default and returns it.
func Setup(env string, level slog.Level) *slog.Logger {
	logger := New(os.Stderr, env, level)
	slog.SetDefault(logger)
	return logger
}

// LevelFromEnv reads LOG_LEVEL.
func LevelFromEnv() slog.Level {
	return ParseLevel(os.Getenv("LOG_LEVEL"))
}

// ParseLevel maps debug, warn and error to their levels; anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
