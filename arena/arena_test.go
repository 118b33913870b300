package arena

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/memkit/internal/mem"
	"github.com/hupe1980/memkit/resource"
	"github.com/hupe1980/memkit/testutil"
)

func newArena(t *testing.T, blockSize int, opts ...Option) *Arena {
	t.Helper()
	a, err := New(blockSize, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Free() })
	return a
}

func addr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}

func TestArena_New(t *testing.T) {
	t.Run("default block size", func(t *testing.T) {
		a := newArena(t, 0)

		assert.Equal(t, DefaultBlockSize, a.BlockSize())
		assert.Equal(t, DefaultAlignment, a.Alignment())
	})

	t.Run("no block before first allocation", func(t *testing.T) {
		a := newArena(t, 1024)

		assert.Empty(t, a.Blocks())
		assert.Equal(t, Stats{}, a.Stats())
	})

	t.Run("invalid alignment", func(t *testing.T) {
		for _, align := range []int{0, -8, 3, 12, 2 * MaxAlignment} {
			_, err := New(1024, WithAlignment(align))
			assert.ErrorIs(t, err, ErrInvalidAlignment, "align=%d", align)
		}
	})
}

func TestArena_Alloc(t *testing.T) {
	t.Run("first allocation opens a block", func(t *testing.T) {
		a := newArena(t, 1024)

		b, err := a.Alloc(100)
		require.NoError(t, err)
		assert.Len(t, b, 100)
		assert.Equal(t, 100, cap(b))

		blocks := a.Blocks()
		require.Len(t, blocks, 1)
		assert.Equal(t, BlockInfo{Index: 0, Previous: -1, Offset: 100, Size: 1024}, blocks[0])
	})

	t.Run("bump within a block", func(t *testing.T) {
		a := newArena(t, 1024)

		first, err := a.Alloc(10)
		require.NoError(t, err)
		second, err := a.Alloc(20)
		require.NoError(t, err)

		assert.Equal(t, addr(first)+10, addr(second))
		assert.Equal(t, 30, a.Blocks()[0].Offset)
	})

	t.Run("zero size", func(t *testing.T) {
		a := newArena(t, 1024)

		b, err := a.Alloc(0)
		require.NoError(t, err)
		assert.Nil(t, b)
		assert.Empty(t, a.Blocks())
	})

	t.Run("negative size", func(t *testing.T) {
		a := newArena(t, 1024)

		_, err := a.Alloc(-1)
		assert.ErrorIs(t, err, ErrInvalidSize)
	})

	t.Run("zero initialized", func(t *testing.T) {
		a := newArena(t, 1024)

		b, err := a.Alloc(512)
		require.NoError(t, err)
		assert.Equal(t, make([]byte, 512), b)
	})

	t.Run("append cannot spill into the next allocation", func(t *testing.T) {
		a := newArena(t, 1024)

		first, err := a.Alloc(4)
		require.NoError(t, err)
		second, err := a.Alloc(4)
		require.NoError(t, err)
		copy(second, "keep")

		first = append(first, 'x')
		assert.Equal(t, "keep", string(second))
		assert.NotEqual(t, addr(first), addr(second))
	})
}

func TestArena_RequestTooLarge(t *testing.T) {
	a := newArena(t, 128)

	_, err := a.Alloc(129)
	assert.ErrorIs(t, err, ErrRequestTooLarge)
	assert.Empty(t, a.Blocks(), "a rejected request must not open a block")
	assert.Equal(t, uint64(1), a.Stats().RejectedAllocs)

	// A request of exactly one block is fine.
	b, err := a.Alloc(128)
	require.NoError(t, err)
	assert.Len(t, b, 128)
}

func TestArena_BlockGrowth(t *testing.T) {
	t.Run("exact fill then one byte opens exactly one block", func(t *testing.T) {
		a := newArena(t, 256)

		_, err := a.Alloc(256)
		require.NoError(t, err)
		require.Len(t, a.Blocks(), 1)

		_, err = a.Alloc(1)
		require.NoError(t, err)

		blocks := a.Blocks()
		require.Len(t, blocks, 2)
		assert.Equal(t, 1, blocks[0].Index)
		assert.Equal(t, 0, blocks[0].Previous)
		assert.Equal(t, 1, blocks[0].Offset)
		assert.Equal(t, 256, blocks[1].Offset)
		assert.Equal(t, uint64(2), a.Stats().BlocksAllocated)
	})

	t.Run("old block is exhausted even with room left", func(t *testing.T) {
		a := newArena(t, 256)

		_, err := a.Alloc(200)
		require.NoError(t, err)
		_, err = a.Alloc(100) // does not fit in the remaining 56
		require.NoError(t, err)

		// 10 bytes would have fit in the old block, but it is closed now.
		_, err = a.Alloc(10)
		require.NoError(t, err)

		blocks := a.Blocks()
		require.Len(t, blocks, 2)
		assert.Equal(t, 110, blocks[0].Offset)
		assert.Equal(t, 256, blocks[1].Offset)

		stats := a.Stats()
		assert.Equal(t, uint64(310), stats.BytesUsed)
		assert.Equal(t, uint64(56), stats.BytesWasted)
		assert.Equal(t, uint64(512), stats.BytesReserved)
	})

	t.Run("chain walks newest to oldest", func(t *testing.T) {
		a := newArena(t, 64)

		for i := 0; i < 5; i++ {
			_, err := a.Alloc(64)
			require.NoError(t, err)
		}

		blocks := a.Blocks()
		require.Len(t, blocks, 5)
		for i, info := range blocks {
			assert.Equal(t, 4-i, info.Index)
			assert.Equal(t, 3-i, info.Previous)
			assert.Equal(t, 64, info.Offset)
		}
	})
}

func TestArena_NonOverlapping(t *testing.T) {
	const blockSize = 4096
	rng := testutil.NewRNG(4711)
	a := newArena(t, blockSize)

	sizes := rng.Sizes(2000, blockSize)
	regions := make([][]byte, len(sizes))
	for i, size := range sizes {
		b, err := a.Alloc(size)
		require.NoError(t, err)
		require.Len(t, b, size)
		// Stamp every byte with the allocation number.
		for j := range b {
			b[j] = byte(i)
		}
		regions[i] = b
	}

	for i, b := range regions {
		for j, v := range b {
			if v != byte(i) {
				t.Fatalf("allocation %d corrupted at byte %d: got %d", i, j, v)
			}
		}
	}

	stats := a.Stats()
	total := 0
	for _, s := range sizes {
		total += s
	}
	assert.Equal(t, uint64(total), stats.BytesUsed)
	assert.Equal(t, stats.BytesReserved, stats.BytesUsed+stats.BytesWasted+uint64(blockSize-a.Blocks()[0].Offset))
}

func TestArena_Alignment(t *testing.T) {
	a := newArena(t, 1024, WithAlignment(8))

	sizes := []int{1, 3, 5, 7, 9, 15, 17}
	for _, size := range sizes {
		b, err := a.Alloc(size)
		require.NoError(t, err)
		assert.True(t, mem.IsAligned(b, 8), "size=%d not aligned", size)
	}

	// Padding is accounted as waste.
	assert.Equal(t, uint64(1+3+5+7+9+15+17), a.Stats().BytesUsed)
	assert.Positive(t, a.Stats().BytesWasted)
}

func TestArena_AlignmentPaddingOpensBlock(t *testing.T) {
	a := newArena(t, 64, WithAlignment(16))

	_, err := a.Alloc(50)
	require.NoError(t, err)

	// 50 rounds up to 64, leaving nothing for this request.
	_, err = a.Alloc(1)
	require.NoError(t, err)
	assert.Len(t, a.Blocks(), 2)
}

func TestArena_Dealloc(t *testing.T) {
	a := newArena(t, 128)

	b, err := a.Alloc(64)
	require.NoError(t, err)
	a.Dealloc(b)

	next, err := a.Alloc(64)
	require.NoError(t, err)
	assert.NotEqual(t, addr(b), addr(next), "dealloc must not recycle storage")
	assert.Equal(t, 128, a.Blocks()[0].Offset)
}

func TestArena_Free(t *testing.T) {
	a, err := New(64)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = a.Alloc(64)
		require.NoError(t, err)
	}

	require.NoError(t, a.Free())
	assert.Empty(t, a.Blocks())

	stats := a.Stats()
	assert.Equal(t, uint64(0), stats.ActiveBlocks)
	assert.Equal(t, uint64(0), stats.BytesReserved)
	assert.Equal(t, uint64(3), stats.BlocksAllocated)

	_, err = a.Alloc(1)
	assert.ErrorIs(t, err, ErrClosed)

	assert.NoError(t, a.Free(), "free is idempotent")
	assert.ErrorIs(t, a.Reset(), ErrClosed)
}

func TestArena_Reset(t *testing.T) {
	a := newArena(t, 64)

	_, err := a.Alloc(64)
	require.NoError(t, err)
	_, err = a.Alloc(64)
	require.NoError(t, err)

	require.NoError(t, a.Reset())
	assert.Empty(t, a.Blocks())

	b, err := a.Alloc(8)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 8), b)

	blocks := a.Blocks()
	require.Len(t, blocks, 1)
	assert.Equal(t, -1, blocks[0].Previous)
	assert.Equal(t, uint64(3), a.Stats().BlocksAllocated)
}

func TestArena_OffHeap(t *testing.T) {
	a := newArena(t, 1<<16, WithOffHeap())

	b, err := a.Alloc(1 << 16)
	require.NoError(t, err)
	copy(b, "off-heap block")
	assert.True(t, mem.IsAligned(b, MaxAlignment), "mapped blocks start on a page")

	c, err := a.Alloc(10)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 10), c)

	blocks := a.Blocks()
	require.Len(t, blocks, 2)
	assert.True(t, blocks[0].OffHeap)
	assert.True(t, blocks[1].OffHeap)
	assert.Equal(t, "off-heap block", string(b[:14]))

	require.NoError(t, a.Free())
}

func TestArena_MemoryController(t *testing.T) {
	t.Run("fail fast when the budget is spent", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 256})
		a := newArena(t, 128, WithMemoryController(rc))

		_, err := a.Alloc(128)
		require.NoError(t, err)
		_, err = a.Alloc(128)
		require.NoError(t, err)
		assert.Equal(t, int64(256), rc.MemoryUsage())

		_, err = a.Alloc(1)
		assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
		assert.Len(t, a.Blocks(), 2, "failed growth must leave the chain untouched")
		assert.Equal(t, 128, a.Blocks()[0].Offset)

		require.NoError(t, a.Reset())
		assert.Equal(t, int64(0), rc.MemoryUsage())

		_, err = a.Alloc(1)
		assert.NoError(t, err)
	})

	t.Run("shared budget", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 128})
		a := newArena(t, 128, WithMemoryController(rc))
		b := newArena(t, 128, WithMemoryController(rc))

		_, err := a.Alloc(1)
		require.NoError(t, err)
		_, err = b.Alloc(1)
		assert.ErrorIs(t, err, ErrMemoryLimitExceeded)

		require.NoError(t, a.Free())
		_, err = b.Alloc(1)
		assert.NoError(t, err)
	})

	t.Run("alloc context waits until deadline", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 128})
		a := newArena(t, 128, WithMemoryController(rc))

		_, err := a.AllocContext(context.Background(), 128)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err = a.AllocContext(ctx, 1)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestArena_Metrics(t *testing.T) {
	mc := &BasicMetricsCollector{}
	a := newArena(t, 64, WithMetricsCollector(mc))

	_, err := a.Alloc(60)
	require.NoError(t, err)
	_, err = a.Alloc(10)
	require.NoError(t, err)
	_, err = a.Alloc(100)
	require.Error(t, err)
	require.NoError(t, a.Reset())

	stats := mc.GetStats()
	assert.Equal(t, int64(3), stats.AllocCount)
	assert.Equal(t, int64(1), stats.AllocErrors)
	assert.Equal(t, int64(70), stats.AllocBytes)
	assert.Equal(t, int64(2), stats.BlockCount)
	assert.Equal(t, int64(128), stats.BlockBytes)
	assert.Equal(t, int64(1), stats.ReleaseCount)
	assert.Equal(t, int64(2), stats.ReleasedBlocks)
	assert.Equal(t, uint64(128), stats.ReleasedBytes)
}

func TestArena_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	a := newArena(t, 32, WithLogger(logger))

	_, err := a.Alloc(16)
	require.NoError(t, err)
	_, err = a.Alloc(64)
	require.Error(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "block allocated", entry["msg"])
	assert.Equal(t, "arena", entry["component"])

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "allocation rejected", entry["msg"])
	assert.Equal(t, float64(64), entry["size"])
}

func TestArena_String(t *testing.T) {
	a := newArena(t, 1024)

	_, err := a.Alloc(512)
	require.NoError(t, err)

	assert.InDelta(t, 50.0, a.Usage(), 0.001)
	assert.Equal(t, "Arena{blocks: 1, reserved: 1,024 B, used: 512 B, wasted: 0 B, usage: 50.0%, allocs: 1}", a.String())
}

func BenchmarkArena_Alloc(b *testing.B) {
	a, err := New(1 << 20)
	require.NoError(b, err)
	defer a.Free()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := a.Alloc(32); err != nil {
			b.Fatal(err)
		}
	}
}
