package logging

import (
	"context"
	"log/slog"
	"os"
)

// SlogLogger adapts a *slog.Logger to the [Logger] interface.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps an existing slog logger.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

// NewDefault returns a text-handler logger writing to stderr.
func NewDefault() *SlogLogger {
	return &SlogLogger{l: slog.New(slog.NewTextHandler(os.Stderr, nil))}
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}
