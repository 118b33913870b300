// Package logging wraps log/slog with memkit-specific helpers.
package logging

import (
	"context"
	"io"
	"log/slog"
)

// Logger wraps slog.Logger with consistent field names for arena events.
type Logger struct {
	*slog.Logger
}

// New wraps l. A nil l yields a logger that discards everything.
func New(l *slog.Logger) *Logger {
	if l == nil {
		return Noop()
	}
	return &Logger{Logger: l}
}

// Noop creates a Logger that discards all log output.
func Noop() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(1000), // Unreachable level
		})),
	}
}

// With returns a Logger carrying the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// LogBlockAllocated logs the creation of a new arena block.
func (l *Logger) LogBlockAllocated(ctx context.Context, index, previous, blockSize int, offHeap bool) {
	l.DebugContext(ctx, "block allocated",
		"block", index,
		"previous", previous,
		"block_size", blockSize,
		"off_heap", offHeap,
	)
}

// LogAllocRejected logs a request the arena refused to serve.
func (l *Logger) LogAllocRejected(ctx context.Context, size, blockSize int, err error) {
	l.WarnContext(ctx, "allocation rejected",
		"size", size,
		"block_size", blockSize,
		"error", err,
	)
}

// LogRelease logs the teardown of a block chain.
func (l *Logger) LogRelease(ctx context.Context, blocks int, bytesReserved uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "block chain release failed",
			"blocks", blocks,
			"bytes_reserved", bytesReserved,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "block chain released",
		"blocks", blocks,
		"bytes_reserved", bytesReserved,
	)
}
