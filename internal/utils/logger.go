package utils

import (
	"log/slog"
	"os"
)

// SetupLogger installs the process-wide slog logger. Output goes to stderr
// so it never interleaves with replies printed on stdout.
func SetupLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
