// Package mmap provides anonymous read-write memory regions outside the
// Go heap.
//
// Off-heap arena blocks are backed by a Region. Its bytes are never
// scanned by the garbage collector and go back to the operating system
// when the Region is released.
//
// # Platform Support
//
//   - Unix: mmap(2) with MAP_ANON|MAP_PRIVATE, munmap(2) on release
//   - Windows: VirtualAlloc with MEM_RESERVE|MEM_COMMIT, VirtualFree on release
//
// Release is idempotent. Callers must not touch Bytes() once it returns.
package mmap
