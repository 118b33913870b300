package mmap

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlloc(t *testing.T) {
	page := os.Getpagesize()

	tests := []struct {
		name     string
		size     int
		reserved int
	}{
		{"one byte", 1, page},
		{"exact page", page, page},
		{"page plus one", page + 1, 2 * page},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Alloc(tt.size)
			require.NoError(t, err)
			defer r.Release()

			assert.Equal(t, tt.size, r.Size())
			assert.Equal(t, tt.reserved, r.Reserved())

			data := r.Bytes()
			require.Len(t, data, tt.size)
			assert.Equal(t, tt.size, cap(data))
			for i, b := range data {
				if b != 0 {
					t.Fatalf("byte %d not zeroed: %d", i, b)
				}
			}
		})
	}
}

func TestAlloc_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := Alloc(size)
		assert.ErrorIs(t, err, ErrInvalidSize)
	}
}

func TestRegion_ReadWrite(t *testing.T) {
	r, err := Alloc(4096)
	require.NoError(t, err)
	defer r.Release()

	copy(r.Bytes()[100:], "off-heap")
	assert.Equal(t, "off-heap", string(r.Bytes()[100:108]))
}

func TestRegion_Release(t *testing.T) {
	r, err := Alloc(4096)
	require.NoError(t, err)

	require.NoError(t, r.Release())
	assert.NoError(t, r.Release())
	assert.Nil(t, r.Bytes())
}
