package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	// Compute normalization constant (harmonic number with exponent s)
	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	// Sample from uniform and use inverse transform
	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1 // 0-indexed
		}
	}

	return n - 1
}

// Sizes returns n request sizes in [1, maxSize]. Most requests are small
// (Zipfian over 64 buckets) with an occasional uniform large one, the
// shape of node-per-object workloads.
func (r *RNG) Sizes(n, maxSize int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if maxSize < 1 {
		maxSize = 1
	}
	buckets := min(64, maxSize)

	sizes := make([]int, n)
	for i := range sizes {
		if r.rand.Intn(10) == 0 {
			sizes[i] = 1 + r.rand.Intn(maxSize)
			continue
		}
		sizes[i] = 1 + r.zipfLocked(buckets, 1.2)
	}
	return sizes
}

// OpKind identifies a list mutation.
type OpKind int

const (
	OpPushBack OpKind = iota
	OpPushFront
	OpPopBack
	OpPopFront
	OpInsertBefore
	OpInsertAfter
	OpErase
	numOpKinds
)

func (k OpKind) String() string {
	switch k {
	case OpPushBack:
		return "PushBack"
	case OpPushFront:
		return "PushFront"
	case OpPopBack:
		return "PopBack"
	case OpPopFront:
		return "PopFront"
	case OpInsertBefore:
		return "InsertBefore"
	case OpInsertAfter:
		return "InsertAfter"
	case OpErase:
		return "Erase"
	default:
		return "Unknown"
	}
}

// ListOp is one step of a generated list workload.
// Pos is a raw position; callers reduce it modulo the current length.
type ListOp struct {
	Kind  OpKind
	Pos   int
	Value int
}

// ListOps returns n random list operations. Insertions are weighted
// slightly above removals so sequences tend to grow.
func (r *RNG) ListOps(n int) []ListOp {
	r.mu.Lock()
	defer r.mu.Unlock()

	// PushBack, PushFront and the two inserts get weight 3; removals weight 2.
	weights := [numOpKinds]int{3, 3, 2, 2, 3, 3, 2}
	total := 0
	for _, w := range weights {
		total += w
	}

	ops := make([]ListOp, n)
	for i := range ops {
		pick := r.rand.Intn(total)
		kind := OpKind(0)
		for ; pick >= weights[kind]; kind++ {
			pick -= weights[kind]
		}
		ops[i] = ListOp{
			Kind:  kind,
			Pos:   r.rand.Intn(1 << 20),
			Value: r.rand.Int(),
		}
	}
	return ops
}
