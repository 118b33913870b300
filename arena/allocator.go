package arena

import (
	"context"
	"fmt"
	"reflect"
	"unsafe"

	"github.com/hupe1980/memkit/internal/conv"
)

// Allocator hands out arena storage as typed slices.
//
// Allocate(n) claims n*sizeof(T) bytes aligned to alignof(T) from the
// underlying Arena. Deallocate is a no-op. Several Allocators of different
// element types may share one Arena.
type Allocator[T any] struct {
	arena *Arena
	size  int
	align int
}

// NewAllocator returns an Allocator for T backed by a.
// It fails with ErrPointerType if T contains Go pointers (pointers,
// slices, strings, maps, channels, funcs or interfaces).
func NewAllocator[T any](a *Arena) (*Allocator[T], error) {
	if a == nil {
		return nil, ErrNilArena
	}

	typ := reflect.TypeFor[T]()
	if hasPointers(typ) {
		return nil, fmt.Errorf("%w: %s", ErrPointerType, typ)
	}

	var zero T
	align := int(unsafe.Alignof(zero))
	if align > MaxAlignment {
		return nil, fmt.Errorf("%w: %s requires %d", ErrInvalidAlignment, typ, align)
	}

	return &Allocator[T]{
		arena: a,
		size:  int(unsafe.Sizeof(zero)),
		align: align,
	}, nil
}

// Allocate returns zeroed storage for n elements. len and cap of the
// result are n.
func (al *Allocator[T]) Allocate(n int) ([]T, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d elements", ErrInvalidSize, n)
	}
	if n == 0 {
		return nil, nil
	}
	if al.size == 0 {
		// Zero-sized elements need no storage.
		return make([]T, n), nil
	}

	need, err := conv.MulInt(n, al.size)
	if err != nil {
		return nil, fmt.Errorf("%w: %d elements of %d bytes", ErrRequestTooLarge, n, al.size)
	}

	data, err := al.arena.alloc(context.Background(), need, al.align, false)
	if err != nil {
		return nil, err
	}

	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), n), nil //nolint:gosec // unsafe is required for arena implementation
}

// Deallocate is a no-op. Storage is reclaimed when the arena is freed.
func (al *Allocator[T]) Deallocate(_ []T) {}

// Arena returns the underlying arena.
func (al *Allocator[T]) Arena() *Arena {
	return al.arena
}

// hasPointers reports whether values of typ hold Go pointers.
func hasPointers(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return typ.Len() > 0 && hasPointers(typ.Elem())
	case reflect.Struct:
		for i := 0; i < typ.NumField(); i++ {
			if hasPointers(typ.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
