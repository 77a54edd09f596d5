// Package fixed implements binary fixed-point arithmetic with explicit,
// per-value bit layouts. A layout fixes the total word width, the number of
// fractional bits and the signedness; a value is a raw two's-complement (or
// unsigned) integer that, divided by 2^frac, equals the represented real
// number. The encoding is exact for all representable values, so no
// normalization step ever runs.
package fixed

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrRange is returned when a conversion input falls outside the
	// target layout's representable range.
	ErrRange = errors.New("fixed: value out of range")
	// ErrOverflow is returned by checked arithmetic when the true result
	// leaves the layout's raw range.
	ErrOverflow = errors.New("fixed: arithmetic overflow")
	// ErrLayout is returned for bit layouts that cannot exist or cannot
	// be stored in a 64-bit word.
	ErrLayout = errors.New("fixed: invalid layout")
)

// Layout describes a fixed-point bit layout: total width, fractional bit
// count and signedness. The zero Layout is invalid; build layouts with
// NewLayout or MustLayout.
//
// Canonical configurations use machine widths (8, 16, 32, 64), but the
// mixed-precision resolver may produce intermediate widths, so any total
// width in [1, 64] is accepted.
type Layout struct {
	bits   uint8
	frac   uint8
	signed bool
}

// NewLayout builds a layout with the given total width and fractional bit
// count. For signed layouts one bit is reserved for the sign, so frac must
// not exceed bits-1.
func NewLayout(bits, frac uint, signed bool) (Layout, error) {
	if bits < 1 || bits > 64 {
		return Layout{}, fmt.Errorf("%w: %d total bits", ErrLayout, bits)
	}
	budget := bits
	if signed {
		budget--
	}
	if frac > budget {
		return Layout{}, fmt.Errorf("%w: %d fractional bits in %d-bit word", ErrLayout, frac, bits)
	}
	return Layout{bits: uint8(bits), frac: uint8(frac), signed: signed}, nil
}

// MustLayout is like NewLayout but panics on error. Intended for layouts
// fixed at program start.
func MustLayout(bits, frac uint, signed bool) Layout {
	l, err := NewLayout(bits, frac, signed)
	if err != nil {
		panic(err)
	}
	return l
}

// Bits returns the total word width.
func (l Layout) Bits() uint { return uint(l.bits) }

// Frac returns the fractional bit count.
func (l Layout) Frac() uint { return uint(l.frac) }

// Signed reports whether the layout is signed.
func (l Layout) Signed() bool { return l.signed }

// IntBits returns the number of integer bits (total minus fractional minus
// the sign bit, if any).
func (l Layout) IntBits() uint {
	b := uint(l.bits) - uint(l.frac)
	if l.signed {
		b--
	}
	return b
}

// Scale returns 2^frac, the divisor converting raw integers to real values.
func (l Layout) Scale() float64 { return math.Ldexp(1, int(l.frac)) }

// Epsilon returns the smallest positive representable increment, 1/Scale.
func (l Layout) Epsilon() float64 { return math.Ldexp(1, -int(l.frac)) }

// One returns the raw encoding of the real value 1 and whether 1 is
// representable at all (it is not when the layout has no integer bits).
func (l Layout) One() (uint64, bool) {
	if l.IntBits() < 1 {
		return 0, false
	}
	return 1 << l.frac, true
}

// RangeMin returns the minimum representable real value.
func (l Layout) RangeMin() float64 {
	if !l.signed {
		return 0
	}
	return -math.Ldexp(1, int(l.bits)-1-int(l.frac))
}

// RangeMax returns the maximum representable real value.
func (l Layout) RangeMax() float64 {
	return float64(l.maxRawMag()) * l.Epsilon()
}

// String renders the layout as e.g. "u8.8" or "s7.8" (integer.fractional).
func (l Layout) String() string {
	c := byte('u')
	if l.signed {
		c = 's'
	}
	return fmt.Sprintf("%c%d.%d", c, l.IntBits(), l.frac)
}

// maxRawMag is the largest raw magnitude the layout can hold.
func (l Layout) maxRawMag() uint64 {
	if l.signed {
		return widthMask(uint(l.bits) - 1)
	}
	return widthMask(uint(l.bits))
}

// widthMask returns a mask covering the low b bits.
func widthMask(b uint) uint64 {
	if b >= 64 {
		return ^uint64(0)
	}
	return 1<<b - 1
}

// signExtend interprets the low b bits of raw as a two's-complement number.
func signExtend(raw uint64, b uint) int64 {
	s := 64 - b
	return int64(raw<<s) >> s
}
