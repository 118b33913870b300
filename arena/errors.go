package arena

import (
	"errors"

	"github.com/hupe1980/memkit/resource"
)

var (
	// ErrRequestTooLarge is returned when a single request exceeds the block size.
	ErrRequestTooLarge = errors.New("arena: request exceeds block capacity")
	// ErrInvalidSize is returned for negative request sizes.
	ErrInvalidSize = errors.New("arena: invalid size")
	// ErrInvalidAlignment is returned when an alignment is not a power of two
	// or exceeds MaxAlignment.
	ErrInvalidAlignment = errors.New("arena: invalid alignment")
	// ErrClosed is returned when allocating from an arena after Free.
	ErrClosed = errors.New("arena: closed")
	// ErrPointerType is returned by NewAllocator for element types that
	// contain Go pointers.
	ErrPointerType = errors.New("arena: element type contains pointers")
	// ErrNilArena is returned by NewAllocator when no arena is given.
	ErrNilArena = errors.New("arena: nil arena")
	// ErrMemoryLimitExceeded is returned when the memory controller refuses a new block.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
)
