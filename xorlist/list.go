package xorlist

import (
	"fmt"
	"iter"

	"github.com/hupe1980/memkit/internal/container"
)

// handle addresses a node in the slab.
type handle uint32

// none is the absent neighbour. Handle 0 is a real node, so the sentinel
// is all ones.
const none handle = container.NoSlot

type node[T any] struct {
	value T
	link  handle // prev ^ next, with none standing in for a missing neighbour
}

// List is a doubly-traversable sequence with one link per node.
// The zero value is an empty list ready to use.
type List[T any] struct {
	nodes *container.Slab[node[T]]
	first handle
	last  handle
	count int
}

// New returns an empty list.
func New[T any]() *List[T] {
	l := &List[T]{}
	l.lazyInit()
	return l
}

func (l *List[T]) lazyInit() {
	if l.nodes == nil {
		l.nodes = container.NewSlab[node[T]]()
		l.first = none
		l.last = none
		l.count = 0
	}
}

// Len returns the number of elements. O(1).
func (l *List[T]) Len() int {
	return l.count
}

func (l *List[T]) node(h handle) *node[T] {
	return l.nodes.MustGet(uint32(h))
}

func (l *List[T]) live(h handle) bool {
	return l.nodes != nil && l.nodes.Live(uint32(h))
}

// far returns the neighbour of h on the side opposite from.
func (l *List[T]) far(from, h handle) handle {
	return l.node(h).link ^ from
}

// Front returns the first element.
func (l *List[T]) Front() (T, error) {
	if l.count == 0 {
		var zero T
		return zero, ErrEmpty
	}
	return l.node(l.first).value, nil
}

// Back returns the last element.
func (l *List[T]) Back() (T, error) {
	if l.count == 0 {
		var zero T
		return zero, ErrEmpty
	}
	return l.node(l.last).value, nil
}

// insert splices a new node between prev and next, which must be adjacent
// (or none at either end).
func (l *List[T]) insert(prev, next handle, v T) (handle, error) {
	l.lazyInit()

	raw, n, err := l.nodes.Alloc()
	if err != nil {
		return none, fmt.Errorf("xorlist: allocate node: %w", err)
	}
	h := handle(raw)

	n.value = v
	n.link = prev ^ next

	if prev != none {
		p := l.node(prev)
		p.link ^= next ^ h
	} else {
		l.first = h
	}

	if next != none {
		x := l.node(next)
		x.link ^= prev ^ h
	} else {
		l.last = h
	}

	l.count++
	return h, nil
}

// unlink removes h, whose predecessor is prev, and returns its successor
// and value.
func (l *List[T]) unlink(prev, h handle) (handle, T) {
	n := l.node(h)
	next := n.link ^ prev
	v := n.value

	if prev != none {
		p := l.node(prev)
		p.link ^= h ^ next
	} else {
		l.first = next
	}

	if next != none {
		x := l.node(next)
		x.link ^= h ^ prev
	} else {
		l.last = prev
	}

	l.nodes.Release(uint32(h))
	l.count--

	if l.count == 0 {
		l.nodes.Reset()
		l.first = none
		l.last = none
	}

	return next, v
}

// PushBack appends v. O(1).
func (l *List[T]) PushBack(v T) error {
	l.lazyInit()
	_, err := l.insert(l.last, none, v)
	return err
}

// PushFront prepends v. O(1).
func (l *List[T]) PushFront(v T) error {
	l.lazyInit()
	_, err := l.insert(none, l.first, v)
	return err
}

// PopBack removes and returns the last element.
// It returns ErrEmpty, leaving the list unchanged, if there is none.
func (l *List[T]) PopBack() (T, error) {
	if l.count == 0 {
		var zero T
		return zero, ErrEmpty
	}
	prev := l.far(none, l.last)
	_, v := l.unlink(prev, l.last)
	return v, nil
}

// PopFront removes and returns the first element.
// It returns ErrEmpty, leaving the list unchanged, if there is none.
func (l *List[T]) PopFront() (T, error) {
	if l.count == 0 {
		var zero T
		return zero, ErrEmpty
	}
	_, v := l.unlink(none, l.first)
	return v, nil
}

// InsertBefore inserts v in front of the element at c (at the back if c is
// End) and returns a cursor at the new element.
func (l *List[T]) InsertBefore(c Cursor[T], v T) (Cursor[T], error) {
	l.lazyInit()
	if err := l.check(c); err != nil {
		return Cursor[T]{}, err
	}

	h, err := l.insert(c.anchor, c.current, v)
	if err != nil {
		return Cursor[T]{}, err
	}

	return Cursor[T]{list: l, current: h, anchor: c.anchor}, nil
}

// InsertAfter inserts v behind the element at c and returns a cursor at the
// new element. On End it appends.
func (l *List[T]) InsertAfter(c Cursor[T], v T) (Cursor[T], error) {
	l.lazyInit()
	if err := l.check(c); err != nil {
		return Cursor[T]{}, err
	}

	if c.current == none {
		h, err := l.insert(l.last, none, v)
		if err != nil {
			return Cursor[T]{}, err
		}
		return Cursor[T]{list: l, current: h, anchor: l.far(none, h)}, nil
	}

	next := c.step()
	return l.InsertBefore(next, v)
}

// Erase removes the element at c and returns a cursor at the element that
// followed it (End if it was the last one). Erasing the only element
// leaves the list empty.
func (l *List[T]) Erase(c Cursor[T]) (Cursor[T], error) {
	if err := l.check(c); err != nil {
		return Cursor[T]{}, err
	}
	if l.count == 0 {
		return Cursor[T]{}, ErrEmpty
	}
	if c.current == none {
		return Cursor[T]{}, fmt.Errorf("%w: cannot erase end", ErrInvalidCursor)
	}

	next, _ := l.unlink(c.anchor, c.current)
	if l.count == 0 {
		return l.End(), nil
	}
	return Cursor[T]{list: l, current: next, anchor: c.anchor}, nil
}

// walk calls fn for every node from first to last, tracking the anchor.
func (l *List[T]) walk(fn func(h handle) bool) {
	prev := none
	for cur := l.first; l.count > 0 && cur != none; {
		next := l.far(prev, cur)
		if !fn(cur) {
			return
		}
		prev, cur = cur, next
	}
}

// All returns an iterator over the values from front to back.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		l.walk(func(h handle) bool {
			return yield(l.node(h).value)
		})
	}
}

// Backward returns an iterator over the values from back to front.
func (l *List[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		next := none
		for cur := l.last; l.count > 0 && cur != none; {
			prev := l.far(next, cur)
			if !yield(l.node(cur).value) {
				return
			}
			next, cur = cur, prev
		}
	}
}

// Values returns the elements from front to back.
func (l *List[T]) Values() []T {
	out := make([]T, 0, l.count)
	for v := range l.All() {
		out = append(out, v)
	}
	return out
}

// Clone returns a deep copy of l built by walking it front to back.
func (l *List[T]) Clone() (*List[T], error) {
	dst := New[T]()
	if err := dst.CopyFrom(l); err != nil {
		return nil, err
	}
	return dst, nil
}

// CopyFrom replaces the contents of l with a copy of src. Node links are
// rebuilt, never copied, because handles differ between lists. Copying a
// list onto itself is a no-op. On error l is left unchanged.
func (l *List[T]) CopyFrom(src *List[T]) error {
	if src == l {
		return nil
	}

	tmp := New[T]()
	if src != nil {
		var err error
		src.walk(func(h handle) bool {
			_, err = tmp.insert(tmp.last, none, src.node(h).value)
			return err == nil
		})
		if err != nil {
			return err
		}
	}

	l.Clear()
	l.nodes, l.first, l.last, l.count = tmp.nodes, tmp.first, tmp.last, tmp.count
	return nil
}

// MoveFrom takes over the storage of src in O(1) and leaves src empty.
// The previous contents of l are released. Cursors into src become
// invalid. Moving a list onto itself is a no-op.
func (l *List[T]) MoveFrom(src *List[T]) {
	if src == l || src == nil {
		return
	}

	l.Clear()
	l.nodes, l.first, l.last, l.count = src.nodes, src.first, src.last, src.count
	l.lazyInit()

	*src = List[T]{}
}

// Clear releases every node, walking from first to last, and leaves l empty.
func (l *List[T]) Clear() {
	if l.nodes == nil {
		return
	}

	prev := none
	for cur := l.first; l.count > 0 && cur != none; {
		next := l.far(prev, cur)
		l.nodes.Release(uint32(cur))
		prev, cur = cur, next
	}

	l.nodes.Reset()
	l.first = none
	l.last = none
	l.count = 0
}

// String formats the elements front to back, like a slice.
func (l *List[T]) String() string {
	return fmt.Sprint(l.Values())
}
