package cli

import (
	"log/slog"
	"os"
)

// newLogger returns a structured slog.Logger with the given level.
func newLogger(level slog.Leveler) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

func commandLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return newLogger(level)
}
