package arena

import (
	"context"
	"log/slog"
)

// MemoryController is a budget every block is charged against.
// *resource.Controller implements it.
type MemoryController interface {
	AcquireMemory(ctx context.Context, bytes int64) error
	TryAcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

type options struct {
	alignment int
	offHeap   bool
	mc        MemoryController
	logger    *slog.Logger
	metrics   MetricsCollector
}

// Option is a configuration option for Arena.
type Option func(*options)

// WithAlignment rounds the start of every Alloc up to a multiple of align.
// align must be a power of two no larger than MaxAlignment. The default
// is 1: requests are packed back to back.
func WithAlignment(align int) Option {
	return func(o *options) {
		o.alignment = align
	}
}

// WithOffHeap backs blocks with anonymous memory mappings instead of heap buffers.
func WithOffHeap() Option {
	return func(o *options) {
		o.offHeap = true
	}
}

// WithMemoryController charges every block against mc.
func WithMemoryController(mc MemoryController) Option {
	return func(o *options) {
		o.mc = mc
	}
}

// WithLogger sets the logger. By default the arena logs nothing.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metrics = mc
	}
}
