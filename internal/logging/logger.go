// Package logging defines the structured-logging interface used across the
// service and its default slog-backed implementation.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "listening", "addr", addr)
type Logger interface {
	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs a failure.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
