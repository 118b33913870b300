package xorlist

import "errors"

var (
	// ErrEmpty is returned when removing from or reading an empty list.
	ErrEmpty = errors.New("xorlist: empty container")
	// ErrInvalidCursor is returned for cursors that do not denote a
	// position in the list they are used with.
	ErrInvalidCursor = errors.New("xorlist: invalid cursor")
)
