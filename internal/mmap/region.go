package mmap

import (
	"errors"
	"os"
	"sync/atomic"

	"github.com/hupe1980/memkit/internal/conv"
)

var (
	// ErrReleased is returned when a released region is used.
	ErrReleased = errors.New("mmap: region released")
	// ErrInvalidSize is returned for non-positive region sizes.
	ErrInvalidSize = errors.New("mmap: invalid size")
)

// Region is an anonymous, zero-filled, private mapping.
type Region struct {
	data     []byte // full page-rounded mapping
	size     int    // bytes requested by the caller
	released atomic.Bool
	unmap    func([]byte) error
}

// Alloc maps at least size bytes. The mapping is rounded up to whole
// pages; Bytes exposes only the requested size.
func Alloc(size int) (*Region, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	page := os.Getpagesize()
	reserved := conv.AlignUp(size, page)
	if reserved < size {
		return nil, ErrInvalidSize
	}

	data, unmap, err := osMapAnon(reserved)
	if err != nil {
		return nil, err
	}

	return &Region{data: data, size: size, unmap: unmap}, nil
}

// Bytes returns the usable memory, capped at the requested size, or nil
// after Release.
func (r *Region) Bytes() []byte {
	if r.released.Load() {
		return nil
	}
	return r.data[:r.size:r.size]
}

// Size returns the requested size.
func (r *Region) Size() int { return r.size }

// Reserved returns the page-rounded size of the mapping.
func (r *Region) Reserved() int { return len(r.data) }

// Release unmaps the region. Subsequent calls return nil.
func (r *Region) Release() error {
	if r.released.Swap(true) {
		return nil
	}
	err := r.unmap(r.data)
	r.data = nil
	return err
}
