// Package logging configures the process-wide slog default.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// Setup installs a tinted slog handler at the given level and returns
// the logger.
func Setup(levelStr string) *slog.Logger {
	log := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      parseLevel(levelStr),
		TimeFormat: "2006-01-02 15:04:05",
	}))
	slog.SetDefault(log)
	return log
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
