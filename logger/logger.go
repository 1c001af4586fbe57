package logger

import (
	"io"
	"log/slog"

	"github.com/nstehr/vimy/vimy-triggers/config"
)

// Setup installs the process-wide slog logger: JSON when the config asks
// for it, text otherwise.
func Setup(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// WithSession tags a logger with the sidecar session it serves.
func WithSession(logger *slog.Logger, scenario string, player int) *slog.Logger {
	return logger.With("scenario", scenario, "player", player)
}
