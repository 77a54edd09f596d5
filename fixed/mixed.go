package fixed

import "fmt"

// Mixed-precision resolution: the rules by which an operation between two
// different layouts produces a result layout. These are free functions on
// purpose, not methods or interfaces; there is no numeric tower.
//
// The resolver computes the required minimum result layout, it never
// auto-widens the caller's storage: a result that cannot preserve the true
// mathematical value in the destination the caller later converts to is a
// silent truncation, not an error (unless checked arithmetic is in play).
// There is likewise no unit tracking across arithmetic chains -- two values
// whose scales are compatible only by bit-width coincidence combine without
// any signal. That gap is part of the contract; callers own their units.

// AddLayout returns the minimum layout that can carry an addition or
// subtraction of the two operand layouts: the larger fractional count, the
// larger integer count, signed when either operand is. ErrLayout when the
// result would not fit a 64-bit word.
func AddLayout(x, y Layout) (Layout, error) {
	frac := max(x.Frac(), y.Frac())
	ints := max(x.IntBits(), y.IntBits())
	signed := x.signed || y.signed
	bits := ints + frac
	if signed {
		bits++
	}
	if bits > 64 {
		return Layout{}, fmt.Errorf("%w: %v + %v needs %d bits", ErrLayout, x, y, bits)
	}
	return NewLayout(bits, frac, signed)
}

// MulLayout returns the minimum layout for a product: fractional counts
// add, integer counts add. One corner wraps: when both operands are signed
// minimums, the product magnitude is 2^intBits, one past the result
// maximum, and MixedMul wraps to the result minimum.
func MulLayout(x, y Layout) (Layout, error) {
	frac := x.Frac() + y.Frac()
	ints := x.IntBits() + y.IntBits()
	signed := x.signed || y.signed
	bits := ints + frac
	if signed {
		bits++
	}
	if bits > 64 {
		return Layout{}, fmt.Errorf("%w: %v * %v needs %d bits", ErrLayout, x, y, bits)
	}
	return NewLayout(bits, frac, signed)
}

// DivLayout returns the minimum layout for a quotient: the result
// fractional count is the dividend's minus the divisor's (ErrLayout when
// that is negative), and the integer count grows by the divisor's
// fractional count to cover division by the smallest divisor.
func DivLayout(x, y Layout) (Layout, error) {
	if y.Frac() > x.Frac() {
		return Layout{}, fmt.Errorf("%w: %v / %v has negative fractional count", ErrLayout, x, y)
	}
	frac := x.Frac() - y.Frac()
	ints := x.IntBits() + y.Frac()
	signed := x.signed || y.signed
	bits := ints + frac
	if signed {
		bits++
	}
	if bits > 64 {
		return Layout{}, fmt.Errorf("%w: %v / %v needs %d bits", ErrLayout, x, y, bits)
	}
	return NewLayout(bits, frac, signed)
}

// MixedAdd adds two values of possibly different layouts: the operand with
// fewer fractional bits is raw-shifted left by the difference, then the raw
// integers are added in the AddLayout result. The operation is bit-for-bit
// commutative. Panics when no 64-bit result layout exists (a programming
// error, like any layout misuse).
func MixedAdd(a, b Value) Value {
	rl, err := AddLayout(a.l, b.l)
	if err != nil {
		panic(err)
	}
	pa := a.pattern() << (rl.Frac() - a.l.Frac())
	pb := b.pattern() << (rl.Frac() - b.l.Frac())
	return FromRaw(rl, pa+pb)
}

// MixedSub is MixedAdd with the second operand negated.
func MixedSub(a, b Value) Value {
	rl, err := AddLayout(a.l, b.l)
	if err != nil {
		panic(err)
	}
	pa := a.pattern() << (rl.Frac() - a.l.Frac())
	pb := b.pattern() << (rl.Frac() - b.l.Frac())
	return FromRaw(rl, pa-pb)
}

// MixedMul multiplies two values of possibly different layouts. No
// alignment is needed: the raw integers multiply directly and the result
// fractional count is the sum of the operands'. Down-shifting into a
// narrower layout (with reinterpretation) is the caller's job, via Convert.
func MixedMul(a, b Value) Value {
	rl, err := MulLayout(a.l, b.l)
	if err != nil {
		panic(err)
	}
	return FromRaw(rl, a.pattern()*b.pattern())
}

// MixedDiv divides the raw integers directly; the result fractional count
// is the dividend's minus the divisor's. Truncates toward zero. Panics on a
// zero divisor.
func MixedDiv(a, b Value) Value {
	rl, err := DivLayout(a.l, b.l)
	if err != nil {
		panic(err)
	}
	if b.raw == 0 {
		panic("fixed: division by zero")
	}
	if a.l.signed || b.l.signed {
		return FromRaw(rl, uint64(int64(a.pattern())/int64(b.pattern())))
	}
	return FromRaw(rl, a.pattern()/b.pattern())
}

// Convert re-scales v into the target layout: the raw integer is shifted by
// the fractional-count difference and masked to the target width. Low bits
// lost on a down-shift and high bits lost on narrowing are silent
// truncation -- specified behavior, never an error.
func Convert(v Value, target Layout) Value {
	p := v.pattern()
	switch d := int(target.frac) - int(v.l.frac); {
	case d > 0:
		p <<= uint(d)
	case d < 0:
		if v.l.signed {
			p = uint64(int64(p) >> uint(-d))
		} else {
			p >>= uint(-d)
		}
	}
	return FromRaw(target, p)
}
