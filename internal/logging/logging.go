// Package logging configures the process-wide slog logger.
package logging

import (
	"log/slog"
	"os"
)

// Init installs a JSON handler on stdout as the default logger.
func Init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

// ForService returns a logger tagged with the component name.
func ForService(name string) *slog.Logger {
	return slog.Default().With("service", name)
}
