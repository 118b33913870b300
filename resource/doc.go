// Package resource implements a memory budget shared by one or more arenas.
//
// Every arena block is charged against the budget when it is created and
// refunded when the arena is torn down or reset. The hard limit is
// enforced with a weighted semaphore; usage and the high-water mark are
// tracked with atomic counters.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 256 << 20, // 256MB
//	})
//
//	a, err := arena.New(1<<20, arena.WithMemoryController(rc))
//
// # Thread Safety
//
// All Controller methods are safe for concurrent use, so a single budget
// can govern arenas owned by different goroutines.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
