// Package mem provides aligned heap buffers.
//
// Heap-backed arena blocks are carved from these buffers so that a block
// always starts on an address that satisfies the largest alignment the
// arena hands out.
package mem
