package app

import (
	"log/slog"
	"os"
)

// SetupLogger installs a JSON slog handler on stdout as the default logger.
func SetupLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	return log
}
