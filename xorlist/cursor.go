package xorlist

// Cursor is a position in a List: the node it stands on and the node it
// arrived from. The anchor is always the predecessor of the current node.
// Cursors are small values; copy them freely.
type Cursor[T any] struct {
	list    *List[T]
	current handle
	anchor  handle
}

// Begin returns a cursor at the first element, or End for an empty list.
func (l *List[T]) Begin() Cursor[T] {
	if l.count == 0 {
		return Cursor[T]{list: l, current: none, anchor: none}
	}
	return Cursor[T]{list: l, current: l.first, anchor: none}
}

// End returns the sentinel cursor one past the last element.
func (l *List[T]) End() Cursor[T] {
	if l.count == 0 {
		return Cursor[T]{list: l, current: none, anchor: none}
	}
	return Cursor[T]{list: l, current: none, anchor: l.last}
}

// check verifies in O(1) that c denotes a position in l: both handles are
// live (or none where allowed) and agree with each other's links.
func (l *List[T]) check(c Cursor[T]) error {
	if c.list != l {
		return ErrInvalidCursor
	}

	if l.count == 0 {
		if c.current != none || c.anchor != none {
			return ErrInvalidCursor
		}
		return nil
	}

	if c.current == none {
		if c.anchor != l.last {
			return ErrInvalidCursor
		}
		return nil
	}

	if !l.live(c.current) {
		return ErrInvalidCursor
	}

	if c.anchor == none {
		if c.current != l.first {
			return ErrInvalidCursor
		}
		return nil
	}

	if !l.live(c.anchor) {
		return ErrInvalidCursor
	}

	// The far side of each handle, seen from the other, must itself be a
	// real node or the matching end of the list.
	next := l.far(c.anchor, c.current)
	if next == none {
		if c.current != l.last {
			return ErrInvalidCursor
		}
	} else if !l.live(next) {
		return ErrInvalidCursor
	}

	prev := l.far(c.current, c.anchor)
	if prev == none {
		if c.anchor != l.first {
			return ErrInvalidCursor
		}
	} else if !l.live(prev) {
		return ErrInvalidCursor
	}

	return nil
}

// step moves one element forward without validation.
func (c Cursor[T]) step() Cursor[T] {
	return Cursor[T]{
		list:    c.list,
		current: c.list.far(c.anchor, c.current),
		anchor:  c.current,
	}
}

// Next returns the cursor one element forward. From the last element it
// returns End; from End it fails with ErrInvalidCursor.
func (c Cursor[T]) Next() (Cursor[T], error) {
	if c.list == nil {
		return c, ErrInvalidCursor
	}
	if err := c.list.check(c); err != nil {
		return c, err
	}
	if c.current == none {
		return c, ErrInvalidCursor
	}
	return c.step(), nil
}

// Prev returns the cursor one element backward. From End it returns the
// last element; from the first element it fails with ErrInvalidCursor.
func (c Cursor[T]) Prev() (Cursor[T], error) {
	if c.list == nil {
		return c, ErrInvalidCursor
	}
	if err := c.list.check(c); err != nil {
		return c, err
	}
	if c.anchor == none {
		return c, ErrInvalidCursor
	}
	return Cursor[T]{
		list:    c.list,
		current: c.anchor,
		anchor:  c.list.far(c.current, c.anchor),
	}, nil
}

// Value returns the element at c.
func (c Cursor[T]) Value() (T, error) {
	p, err := c.deref()
	if err != nil {
		var zero T
		return zero, err
	}
	return p.value, nil
}

// Set replaces the element at c.
func (c Cursor[T]) Set(v T) error {
	p, err := c.deref()
	if err != nil {
		return err
	}
	p.value = v
	return nil
}

func (c Cursor[T]) deref() (*node[T], error) {
	if c.list == nil {
		return nil, ErrInvalidCursor
	}
	if err := c.list.check(c); err != nil {
		return nil, err
	}
	if c.current == none {
		return nil, ErrInvalidCursor
	}
	return c.list.node(c.current), nil
}

// Equal reports whether both cursors denote the same position of the
// same list. It never fails.
func (c Cursor[T]) Equal(o Cursor[T]) bool {
	return c.list == o.list && c.current == o.current && c.anchor == o.anchor
}

// IsEnd reports whether c is the sentinel past the last element.
func (c Cursor[T]) IsEnd() bool {
	return c.current == none
}
