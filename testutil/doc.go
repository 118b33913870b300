// Package testutil provides testing utilities for memkit.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random source and generators for allocation
// request sizes and list operation sequences.
//
// # Random Request Sizes
//
//	rng := testutil.NewRNG(seed)
//	sizes := rng.Sizes(1000, 4096) // skewed towards small requests
//
// # List Operation Sequences
//
//	for _, op := range rng.ListOps(500) {
//	    switch op.Kind { ... }
//	}
package testutil
