package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

type contextKey struct{}

var loggerKey = contextKey{}

// Initialize installs the CLI logger as the slog default and returns it tagged with a fresh run_id.
// Warnings only by default; verbose shows info, debug shows everything with source locations.
func Initialize(debug, verbose bool) *slog.Logger {
	return InitializeWithWriter(os.Stderr, debug, verbose)
}

func InitializeWithWriter(w io.Writer, debug, verbose bool) *slog.Logger {
	level := slog.LevelWarn

	if debug {
		level = slog.LevelDebug
	} else if verbose {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	}

	l := slog.New(NewPrettyHandler(w, opts))
	slog.SetDefault(l)

	return l.With("run_id", newRunID())
}

// newRunID returns a short correlation id for one CLI invocation.
func newRunID() string {
	return uuid.NewString()[:8]
}

func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// Debug logs through the logger carried by ctx. The services only log at debug level;
// commands take the logger with FromContext and log info and errors themselves.
func Debug(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Debug(msg, args...)
}
