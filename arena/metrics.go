package arena

import (
	"sync/atomic"
)

// MetricsCollector defines an interface for collecting arena metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordAlloc is called after each allocation request.
	// bytes is the requested size, err is nil if successful.
	RecordAlloc(bytes int, err error)

	// RecordBlock is called whenever a new block is opened.
	RecordBlock(blockSize int)

	// RecordRelease is called when a block chain is torn down.
	RecordRelease(blocks int, bytesReserved uint64)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

// RecordAlloc does nothing.
func (NoopMetricsCollector) RecordAlloc(int, error) {}

// RecordBlock does nothing.
func (NoopMetricsCollector) RecordBlock(int) {}

// RecordRelease does nothing.
func (NoopMetricsCollector) RecordRelease(int, uint64) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// It is safe for concurrent use, so one collector can serve several arenas.
type BasicMetricsCollector struct {
	AllocCount     atomic.Int64
	AllocErrors    atomic.Int64
	AllocBytes     atomic.Int64
	BlockCount     atomic.Int64
	BlockBytes     atomic.Int64
	ReleaseCount   atomic.Int64
	ReleasedBlocks atomic.Int64
	ReleasedBytes  atomic.Uint64
}

// RecordAlloc implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAlloc(bytes int, err error) {
	b.AllocCount.Add(1)
	if err != nil {
		b.AllocErrors.Add(1)
		return
	}
	b.AllocBytes.Add(int64(bytes))
}

// RecordBlock implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBlock(blockSize int) {
	b.BlockCount.Add(1)
	b.BlockBytes.Add(int64(blockSize))
}

// RecordRelease implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRelease(blocks int, bytesReserved uint64) {
	b.ReleaseCount.Add(1)
	b.ReleasedBlocks.Add(int64(blocks))
	b.ReleasedBytes.Add(bytesReserved)
}

// MetricsStats is a snapshot of BasicMetricsCollector.
type MetricsStats struct {
	AllocCount     int64
	AllocErrors    int64
	AllocBytes     int64
	BlockCount     int64
	BlockBytes     int64
	ReleaseCount   int64
	ReleasedBlocks int64
	ReleasedBytes  uint64
}

// GetStats returns a snapshot of the collected metrics.
func (b *BasicMetricsCollector) GetStats() MetricsStats {
	return MetricsStats{
		AllocCount:     b.AllocCount.Load(),
		AllocErrors:    b.AllocErrors.Load(),
		AllocBytes:     b.AllocBytes.Load(),
		BlockCount:     b.BlockCount.Load(),
		BlockBytes:     b.BlockBytes.Load(),
		ReleaseCount:   b.ReleaseCount.Load(),
		ReleasedBlocks: b.ReleasedBlocks.Load(),
		ReleasedBytes:  b.ReleasedBytes.Load(),
	}
}
