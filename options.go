package echodb

import (
	"log/slog"
	"os"
)

type config struct {
	logger *slog.Logger
}

func defaultConfig() config {
	return config{
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
}

// Option configures a Database at construction time.
type Option func(*config)

// WithLogger sets the structured logger used for begin/commit/cancel
// tracing and for the abandoned-writer finalizer warning. Keys and values
// are never logged: the store is generic and payloads may not be loggable.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}
