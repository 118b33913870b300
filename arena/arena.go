package arena

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hupe1980/memkit/internal/conv"
	"github.com/hupe1980/memkit/internal/logging"
	"github.com/hupe1980/memkit/internal/mem"
	"github.com/hupe1980/memkit/internal/mmap"
)

const (
	// DefaultBlockSize is the capacity of a block when New is given a
	// non-positive size (10 MB).
	DefaultBlockSize = 10_000_000
	// DefaultAlignment packs requests back to back.
	DefaultAlignment = 1
	// MaxAlignment is the largest supported alignment. Every block starts
	// on a MaxAlignment boundary.
	MaxAlignment = mem.Alignment
)

// noBlock marks the absence of a block in the chain.
const noBlock = -1

// Stats tracks arena memory usage metrics.
//
// Note on semantics:
//   - BytesReserved: capacity of all live blocks
//   - BytesUsed: bytes handed out to callers
//   - BytesWasted: alignment padding plus tails abandoned when a block was exhausted
//   - ActiveBlocks: number of blocks currently held
//   - BlocksAllocated, TotalAllocs, RejectedAllocs: cumulative counts
type Stats struct {
	BlocksAllocated uint64 // Historical: total blocks ever created
	ActiveBlocks    uint64 // Current: blocks in the chain
	BytesReserved   uint64 // Current: block capacity held
	BytesUsed       uint64 // Current: bytes handed out
	BytesWasted     uint64 // Current: padding and abandoned tails
	TotalAllocs     uint64 // Historical: successful allocations
	RejectedAllocs  uint64 // Historical: failed allocations
}

// BlockInfo describes one block of the chain.
type BlockInfo struct {
	Index    int // Position in creation order
	Previous int // Index of the block that was active before this one, -1 for the oldest
	Offset   int // Bytes claimed from the front of the block
	Size     int // Block capacity
	OffHeap  bool
}

type block struct {
	buf      []byte
	offset   int
	previous int
	region   *mmap.Region // nil for heap blocks
}

// Arena is a bump allocator over a chain of fixed-size blocks.
// The zero value is not usable; create one with New.
type Arena struct {
	blockSize int
	alignment int
	offHeap   bool

	blocks []*block
	head   int
	closed bool

	stats   Stats
	mc      MemoryController
	logger  *logging.Logger
	metrics MetricsCollector
}

// New creates an Arena whose blocks hold blockSize bytes each. A
// non-positive blockSize selects DefaultBlockSize. No block is created
// until the first allocation.
func New(blockSize int, optFns ...Option) (*Arena, error) {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	opts := options{
		alignment: DefaultAlignment,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if !validAlignment(opts.alignment) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAlignment, opts.alignment)
	}

	if opts.metrics == nil {
		opts.metrics = NoopMetricsCollector{}
	}

	return &Arena{
		blockSize: blockSize,
		alignment: opts.alignment,
		offHeap:   opts.offHeap,
		head:      noBlock,
		mc:        opts.mc,
		logger:    logging.New(opts.logger).With("component", "arena"),
		metrics:   opts.metrics,
	}, nil
}

func validAlignment(align int) bool {
	return align > 0 && align <= MaxAlignment && align&(align-1) == 0
}

// BlockSize returns the capacity of every block.
func (a *Arena) BlockSize() int {
	return a.blockSize
}

// Alignment returns the alignment applied to Alloc.
func (a *Arena) Alignment() int {
	return a.alignment
}

// Alloc returns size bytes of zeroed storage. The slice has len and cap
// equal to size and stays valid until Free or Reset.
//
// A request that does not fit into the free tail of the current block
// opens a new block; the tail of the old one is abandoned. If a memory
// controller is configured and refuses the new block, Alloc fails
// immediately with ErrMemoryLimitExceeded.
func (a *Arena) Alloc(size int) ([]byte, error) {
	return a.alloc(context.Background(), size, a.alignment, false)
}

// AllocContext is like Alloc but waits for the memory controller to make
// room for a new block until ctx is done.
func (a *Arena) AllocContext(ctx context.Context, size int) ([]byte, error) {
	return a.alloc(ctx, size, a.alignment, true)
}

// Dealloc is a no-op. Arena memory is reclaimed only by Free or Reset.
func (a *Arena) Dealloc(_ []byte) {}

func (a *Arena) alloc(ctx context.Context, size, align int, wait bool) ([]byte, error) {
	data, err := a.carve(ctx, size, align, wait)
	if err != nil {
		a.stats.RejectedAllocs++
		a.logger.LogAllocRejected(ctx, size, a.blockSize, err)
	} else if size > 0 {
		a.stats.TotalAllocs++
	}
	a.metrics.RecordAlloc(size, err)
	return data, err
}

func (a *Arena) carve(ctx context.Context, size, align int, wait bool) ([]byte, error) {
	if a.closed {
		return nil, ErrClosed
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if size == 0 {
		return nil, nil
	}
	if size > a.blockSize {
		return nil, fmt.Errorf("%w: %d bytes requested, block size is %d", ErrRequestTooLarge, size, a.blockSize)
	}

	if a.head != noBlock {
		h := a.blocks[a.head]
		start := conv.AlignUp(h.offset, align)
		if start <= a.blockSize && size <= a.blockSize-start {
			a.stats.BytesWasted += uint64(start - h.offset) //nolint:gosec // start >= offset
			a.stats.BytesUsed += uint64(size)               //nolint:gosec // size > 0
			h.offset = start + size
			return h.buf[start:h.offset:h.offset], nil
		}
	}

	b, err := a.newBlock(ctx, wait)
	if err != nil {
		return nil, err
	}

	if a.head != noBlock {
		// The old head is exhausted even if bytes remain.
		old := a.blocks[a.head]
		a.stats.BytesWasted += uint64(a.blockSize - old.offset) //nolint:gosec // offset <= blockSize
		old.offset = a.blockSize
	}

	b.previous = a.head
	b.offset = size
	a.blocks = append(a.blocks, b)
	a.head = len(a.blocks) - 1

	a.stats.BytesUsed += uint64(size) //nolint:gosec // size > 0
	a.logger.LogBlockAllocated(ctx, a.head, b.previous, a.blockSize, b.region != nil)

	return b.buf[0:size:size], nil
}

func (a *Arena) newBlock(ctx context.Context, wait bool) (*block, error) {
	blockSize64 := int64(a.blockSize)

	if a.mc != nil {
		var err error
		if wait {
			err = a.mc.AcquireMemory(ctx, blockSize64)
		} else {
			err = a.mc.TryAcquireMemory(blockSize64)
		}
		if err != nil {
			return nil, fmt.Errorf("arena: reserve block memory: %w", err)
		}
	}

	b := &block{}
	if a.offHeap {
		region, err := mmap.Alloc(a.blockSize)
		if err != nil {
			if a.mc != nil {
				a.mc.ReleaseMemory(blockSize64)
			}
			return nil, fmt.Errorf("arena: map block: %w", err)
		}
		b.region = region
		b.buf = region.Bytes()
	} else {
		b.buf = mem.AllocAligned(a.blockSize)
	}

	blockSizeU64, _ := conv.IntToUint64(a.blockSize) // Safe: blockSize > 0
	a.stats.BlocksAllocated++
	a.stats.ActiveBlocks++
	a.stats.BytesReserved += blockSizeU64
	a.metrics.RecordBlock(a.blockSize)

	return b, nil
}

// Blocks describes the block chain, most recent block first, by walking
// the previous links from the head.
func (a *Arena) Blocks() []BlockInfo {
	infos := make([]BlockInfo, 0, len(a.blocks))
	for i := a.head; i != noBlock; i = a.blocks[i].previous {
		b := a.blocks[i]
		infos = append(infos, BlockInfo{
			Index:    i,
			Previous: b.previous,
			Offset:   b.offset,
			Size:     len(b.buf),
			OffHeap:  b.region != nil,
		})
	}
	return infos
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	return a.stats
}

// Free releases every block, walking the chain from the newest block to
// the oldest. All slices handed out become invalid and further
// allocations fail with ErrClosed. Free is idempotent.
//
// The returned error joins any failures to unmap off-heap blocks; the
// arena is closed regardless.
func (a *Arena) Free() error {
	if a.closed {
		return nil
	}
	a.closed = true
	return a.release()
}

// Reset releases every block but keeps the arena usable. All slices
// handed out before Reset become invalid.
func (a *Arena) Reset() error {
	if a.closed {
		return ErrClosed
	}
	return a.release()
}

func (a *Arena) release() error {
	var errs []error
	released := 0

	for i := a.head; i != noBlock; {
		b := a.blocks[i]
		if b.region != nil {
			if err := b.region.Release(); err != nil {
				errs = append(errs, fmt.Errorf("arena: unmap block %d: %w", i, err))
			}
		}
		next := b.previous
		b.buf = nil
		b.region = nil
		a.blocks[i] = nil
		released++
		i = next
	}

	reserved := a.stats.BytesReserved
	if a.mc != nil && reserved > 0 {
		a.mc.ReleaseMemory(int64(reserved)) //nolint:gosec // bounded by blockSize * blocks
	}

	a.blocks = a.blocks[:0]
	a.head = noBlock

	// Historical counts (BlocksAllocated, TotalAllocs, RejectedAllocs) are kept.
	a.stats.ActiveBlocks = 0
	a.stats.BytesReserved = 0
	a.stats.BytesUsed = 0
	a.stats.BytesWasted = 0

	err := errors.Join(errs...)
	a.logger.LogRelease(context.Background(), released, reserved, err)
	a.metrics.RecordRelease(released, reserved)

	return err
}

// Usage returns the memory usage percentage.
func (a *Arena) Usage() float64 {
	if a.stats.BytesReserved == 0 {
		return 0
	}
	return float64(a.stats.BytesUsed) / float64(a.stats.BytesReserved) * 100
}

var printer = message.NewPrinter(language.English)

// String summarizes the arena with grouped byte counts, for example
// "Arena{blocks: 2, reserved: 20,000,000 B, used: 10,000,008 B, wasted: 0 B, usage: 50.0%, allocs: 2}".
func (a *Arena) String() string {
	return printer.Sprintf(
		"Arena{blocks: %d, reserved: %d B, used: %d B, wasted: %d B, usage: %.1f%%, allocs: %d}",
		a.stats.ActiveBlocks,
		a.stats.BytesReserved,
		a.stats.BytesUsed,
		a.stats.BytesWasted,
		a.Usage(),
		a.stats.TotalAllocs,
	)
}
