// Package conv provides checked integer conversions and arithmetic.
//
// The arena and the off-heap regions size their buffers from
// caller-supplied counts. These helpers reject values that would wrap
// instead of silently truncating them.
package conv
