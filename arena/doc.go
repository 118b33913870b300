// Package arena provides a bump allocator over a chain of fixed-size blocks.
//
// An Arena answers every request from the free tail of its most recent
// block. When a request does not fit, a fresh block is opened and linked
// to the previous one; the previous block is marked exhausted even if
// some of its bytes were never handed out. Nothing is packed across
// blocks.
//
// # Memory Management
//
// Individual frees are no-ops. Memory comes back only when the whole chain
// is torn down by Free (or dropped by Reset). Returned slices never move
// and stay valid until then.
//
// Blocks are heap buffers by default. WithOffHeap backs them with
// anonymous mappings instead, which keeps large arenas out of the
// garbage collector's view. WithMemoryController charges every block
// against a shared budget.
//
// # Typed Allocation
//
// Allocator[T] carves n*sizeof(T) bytes and hands them out as a []T.
// T must not contain Go pointers: arena memory is not scanned by the
// garbage collector, so a pointer stored there would not keep its target
// alive.
//
// # Concurrency
//
// An Arena is not safe for concurrent use. Callers sharing one must
// serialize access.
//
// # Safety
//
// All methods return errors instead of panicking. A request larger than
// one block fails with ErrRequestTooLarge.
package arena
