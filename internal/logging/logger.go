// Package logging wraps log/slog with per-component loggers.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a slog.Logger tagged with the component that owns it.
type Logger struct {
	*slog.Logger
	component string
}

// Options configures the root logger.
type Options struct {
	Level  slog.Level
	Output io.Writer
	JSON   bool
}

// New builds a root logger. Output defaults to stderr so it never mixes
// with command output on stdout.
func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: opts.Level}

	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(out, hopts)
	} else {
		h = slog.NewTextHandler(out, hopts)
	}
	return &Logger{Logger: slog.New(h), component: "app"}
}

// Discard returns a logger that drops everything. Used as the default in
// library packages and tests.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), component: "app"}
}

// Component returns a child logger for the named component.
func (l *Logger) Component(name string) *Logger {
	return &Logger{
		Logger:    l.Logger.With("component", name),
		component: name,
	}
}

// With returns a child logger carrying extra attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), component: l.component}
}

// Name returns the component name.
func (l *Logger) Name() string {
	return l.component
}

// Err logs err at error level under the "error" key.
func (l *Logger) Err(ctx context.Context, msg string, err error, args ...any) {
	l.Logger.ErrorContext(ctx, msg, append([]any{"error", err}, args...)...)
}

// ParseLevel maps a level name to a slog.Level. Unknown names fall back to
// warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// SetDefault installs l as the process-wide slog default.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}
