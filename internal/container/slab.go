package container

import (
	"errors"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

const (
	// segmentBits determines the size of each segment.
	// 12 bits = 4096 slots per segment.
	segmentBits = 12
	segmentSize = 1 << segmentBits
	segmentMask = segmentSize - 1
)

// NoSlot is never handed out by a Slab. Callers use it as their "absent" handle.
const NoSlot = math.MaxUint32

// ErrFull is returned when every handle below NoSlot is in use.
var ErrFull = errors.New("container: slab handle space exhausted")

// Slab stores values in fixed-size segments addressed by uint32 handles.
//
// Segments are never moved once allocated, so a pointer returned by Get
// stays valid until the slot is released or the slab is reset. Released
// slots are tracked in a roaring bitmap and reused lowest-first.
//
// Slab is not safe for concurrent use.
type Slab[T any] struct {
	segments []*segment[T]
	length   uint32          // Slots ever handed out since the last Reset
	free     *roaring.Bitmap // Released slots below length
}

type segment[T any] struct {
	items [segmentSize]T
}

// NewSlab creates an empty Slab.
func NewSlab[T any]() *Slab[T] {
	return &Slab[T]{
		free: roaring.New(),
	}
}

// Alloc claims a zeroed slot and returns its handle and a pointer to it.
func (s *Slab[T]) Alloc() (uint32, *T, error) {
	if !s.free.IsEmpty() {
		h := s.free.Minimum()
		s.free.Remove(h)
		return h, s.at(h), nil
	}

	if s.length == NoSlot {
		return 0, nil, ErrFull
	}

	h := s.length
	segIdx := int(h >> segmentBits)
	if segIdx == len(s.segments) {
		s.segments = append(s.segments, &segment[T]{})
	}
	s.length++

	return h, s.at(h), nil
}

// Release zeroes the slot and makes its handle available again.
// It reports false if h is not a live handle.
func (s *Slab[T]) Release(h uint32) bool {
	if !s.Live(h) {
		return false
	}

	var zero T
	*s.at(h) = zero
	s.free.Add(h)

	return true
}

// Live reports whether h is an allocated, unreleased handle.
func (s *Slab[T]) Live(h uint32) bool {
	return h < s.length && !s.free.Contains(h)
}

// Get returns a pointer to the slot for h, or false if h is not live.
func (s *Slab[T]) Get(h uint32) (*T, bool) {
	if !s.Live(h) {
		return nil, false
	}
	return s.at(h), true
}

// MustGet returns a pointer to the slot for h without a liveness check.
// h must have been returned by Alloc and not released since.
func (s *Slab[T]) MustGet(h uint32) *T {
	return s.at(h)
}

// Len returns the number of live slots.
func (s *Slab[T]) Len() int {
	return int(uint64(s.length) - s.free.GetCardinality()) //nolint:gosec // bounded by length
}

// Cap returns the number of slots backed by allocated segments.
func (s *Slab[T]) Cap() int {
	return len(s.segments) * segmentSize
}

// Reset drops every segment. All handles become invalid.
func (s *Slab[T]) Reset() {
	clear(s.segments)
	s.segments = s.segments[:0]
	s.length = 0
	s.free.Clear()
}

func (s *Slab[T]) at(h uint32) *T {
	return &s.segments[h>>segmentBits].items[h&segmentMask]
}
