//go:build amd64 || arm64

package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntToUint64(t *testing.T) {
	got, err := IntToUint64(math.MaxInt)
	assert.NoError(t, err)
	assert.Equal(t, uint64(math.MaxInt), got)

	_, err = IntToUint64(-1)
	assert.Error(t, err)
}

func TestMulInt(t *testing.T) {
	tests := []struct {
		name    string
		a, b    int
		want    int
		wantErr bool
	}{
		{name: "zero", a: 0, b: 8, want: 0},
		{name: "small", a: 12, b: 8, want: 96},
		{name: "max", a: math.MaxInt, b: 1, want: math.MaxInt},
		{name: "overflow", a: math.MaxInt/2 + 1, b: 2, wantErr: true},
		{name: "huge", a: math.MaxInt, b: math.MaxInt, wantErr: true},
		{name: "negative", a: -1, b: 8, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MulInt(tt.a, tt.b)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, 0, AlignUp(0, 8))
	assert.Equal(t, 8, AlignUp(1, 8))
	assert.Equal(t, 8, AlignUp(8, 8))
	assert.Equal(t, 16, AlignUp(9, 8))
	assert.Equal(t, 7, AlignUp(7, 1))
}
