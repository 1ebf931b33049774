// Package ctxlog carries a slog.Logger through context.Context so that deep
// call sites log with the run-scoped logger instead of a global.
package ctxlog

import (
	"context"
	"log/slog"
)

// key is an unexported type to avoid collisions with other packages' keys.
type key struct{}

var loggerKey = key{}

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from a context. If none was attached it
// falls back to the process default logger rather than failing.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
