// Package xorlist implements a doubly-traversable list whose nodes carry a
// single link field.
//
// Each node stores the XOR of the handles of its two neighbours instead of
// separate next and prev links. Either neighbour can be recovered only by
// XOR-ing the link with the handle of the other one, so traversal always
// needs to know where it came from. A Cursor therefore holds two handles:
// the node it stands on and the node it arrived from (its anchor).
//
// Nodes live in a segmented slab and are addressed by uint32 handles. The
// handle 0 is an ordinary node; the all-ones handle marks a missing
// neighbour at either end of the list.
//
//	l := xorlist.New[int]()
//	_ = l.PushBack(1)
//	_ = l.PushBack(2)
//	_ = l.PushFront(0)
//
//	for c := l.Begin(); !c.IsEnd(); c, _ = c.Next() {
//	    v, _ := c.Value()
//	    fmt.Println(v)
//	}
//
// # Cursors
//
// Begin is (first, none) and End is (none, last); End is a sentinel one
// past the last element. A cursor stays valid until the list is mutated
// through another cursor; the cursors returned by InsertBefore,
// InsertAfter and Erase are valid for the new state. Every operation
// checks its cursor in O(1) and reports ErrInvalidCursor rather than
// following a dangling handle.
//
// # Concurrency
//
// A List is not safe for concurrent use.
package xorlist
