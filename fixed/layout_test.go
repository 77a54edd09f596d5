package fixed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLayout(t *testing.T) {
	tests := []struct {
		name    string
		bits    uint
		frac    uint
		signed  bool
		wantErr bool
	}{
		{name: "unsigned 8.8", bits: 16, frac: 8},
		{name: "all fractional", bits: 8, frac: 8},
		{name: "no fractional", bits: 8, frac: 0},
		{name: "full word", bits: 64, frac: 32},
		{name: "one bit", bits: 1, frac: 0},
		{name: "intermediate width", bits: 17, frac: 8},
		{name: "signed 7.8", bits: 16, frac: 8, signed: true},
		{name: "signed full fractional", bits: 16, frac: 15, signed: true},
		{name: "zero bits", bits: 0, frac: 0, wantErr: true},
		{name: "too wide", bits: 65, frac: 0, wantErr: true},
		{name: "frac exceeds width", bits: 8, frac: 9, wantErr: true},
		{name: "signed frac eats sign bit", bits: 16, frac: 16, signed: true, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, err := NewLayout(tc.bits, tc.frac, tc.signed)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrLayout)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.bits, l.Bits())
			assert.Equal(t, tc.frac, l.Frac())
			assert.Equal(t, tc.signed, l.Signed())
		})
	}
}

func TestLayoutDerived(t *testing.T) {
	u88 := MustLayout(16, 8, false)
	assert.Equal(t, uint(8), u88.IntBits())
	assert.Equal(t, 256.0, u88.Scale())
	assert.Equal(t, 1.0/256, u88.Epsilon())
	assert.Equal(t, 0.0, u88.RangeMin())
	assert.Equal(t, 255.99609375, u88.RangeMax())
	assert.Equal(t, "u8.8", u88.String())

	one, ok := u88.One()
	require.True(t, ok)
	assert.Equal(t, uint64(256), one)

	s78 := MustLayout(16, 8, true)
	assert.Equal(t, uint(7), s78.IntBits())
	assert.Equal(t, -128.0, s78.RangeMin())
	assert.Equal(t, 127.99609375, s78.RangeMax())
	assert.Equal(t, "s7.8", s78.String())

	// A layout with no integer bits cannot represent 1.
	u08 := MustLayout(8, 8, false)
	_, ok = u08.One()
	assert.False(t, ok)
	assert.Equal(t, 0.99609375, u08.RangeMax())
}

func TestMustLayoutPanics(t *testing.T) {
	assert.Panics(t, func() { MustLayout(0, 0, false) })
	assert.NotPanics(t, func() { MustLayout(32, 16, true) })
}
