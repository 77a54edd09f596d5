package fixed

import (
	"fmt"
	"math"
	"math/bits"
)

// Value is a fixed-point number: a raw integer bit pattern plus the layout
// under which it is interpreted. The raw pattern is always masked to the
// layout's width; for signed layouts it is read as two's complement.
//
// Operations between values of the same layout live here. Operations that
// mix layouts go through the resolver functions in mixed.go.
type Value struct {
	raw uint64
	l   Layout
}

// FromRaw constructs a value directly from a raw bit pattern, without
// scaling or range checking. The pattern is masked to the layout width;
// callers are responsible for it fitting. Used for reinterpretation and
// bit packing.
func FromRaw(l Layout, raw uint64) Value {
	return Value{raw: raw & widthMask(uint(l.bits)), l: l}
}

// FromInt returns the value encoding the integer i, or ErrRange if i falls
// outside [RangeMin, RangeMax]. The input is never clamped.
func FromInt(l Layout, i int64) (Value, error) {
	if i < 0 {
		if !l.signed || i < int64(-1)<<l.IntBits() {
			return Value{}, fmt.Errorf("%w: %d in %v", ErrRange, i, l)
		}
	} else if uint64(i) > l.maxRawMag()>>l.frac {
		return Value{}, fmt.Errorf("%w: %d in %v", ErrRange, i, l)
	}
	return FromRaw(l, uint64(i)<<l.frac), nil
}

// FromFloat returns the value nearest to f, or ErrRange if f falls outside
// [RangeMin, RangeMax] or is not finite. Rounding is to nearest with ties
// away from zero (math.Round), which keeps the conversion deterministic
// across platforms. Inputs are never clamped.
func FromFloat(l Layout, f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < l.RangeMin() || f > l.RangeMax() {
		return Value{}, fmt.Errorf("%w: %g in %v", ErrRange, f, l)
	}
	scaled := math.Round(f * l.Scale())
	if scaled < 0 {
		return FromRaw(l, uint64(int64(scaled))), nil
	}
	return FromRaw(l, uint64(scaled)), nil
}

// MustFromInt is like FromInt but panics on range errors. Intended for
// constants fixed at program start.
func MustFromInt(l Layout, i int64) Value {
	v, err := FromInt(l, i)
	if err != nil {
		panic(err)
	}
	return v
}

// MustFromFloat is like FromFloat but panics on range errors.
func MustFromFloat(l Layout, f float64) Value {
	v, err := FromFloat(l, f)
	if err != nil {
		panic(err)
	}
	return v
}

// Layout returns the value's layout.
func (v Value) Layout() Layout { return v.l }

// Raw returns the raw bit pattern, masked to the layout width.
func (v Value) Raw() uint64 { return v.raw }

// IsZero reports whether the raw pattern is zero.
func (v Value) IsZero() bool { return v.raw == 0 }

// Float64 reconstructs the represented real value as raw/Scale, exact up to
// the single floating division.
func (v Value) Float64() float64 {
	if v.l.signed {
		return float64(signExtend(v.raw, uint(v.l.bits))) * v.l.Epsilon()
	}
	return float64(v.raw) * v.l.Epsilon()
}

// Int64 returns the integer part, truncated toward negative infinity.
func (v Value) Int64() int64 {
	if v.l.signed {
		return signExtend(v.raw, uint(v.l.bits)) >> v.l.frac
	}
	return int64(v.raw >> v.l.frac)
}

// pattern returns the raw bits as a canonical 64-bit two's-complement
// pattern: sign-extended for signed layouts, zero-extended otherwise.
func (v Value) pattern() uint64 {
	if v.l.signed {
		return uint64(signExtend(v.raw, uint(v.l.bits)))
	}
	return v.raw
}

func (v Value) mustSame(o Value) {
	if v.l != o.l {
		panic(fmt.Sprintf("fixed: layout mismatch %v vs %v; use the mixed-precision resolver", v.l, o.l))
	}
}

// Add returns v+o. Both values must share a layout (mixing layouts is a
// programming error and panics). Overflow wraps with the raw integer's
// native wraparound; use Arith for the checked variant.
func (v Value) Add(o Value) Value {
	v.mustSame(o)
	return FromRaw(v.l, v.raw+o.raw)
}

// Sub returns v-o with the same layout and wraparound rules as Add.
func (v Value) Sub(o Value) Value {
	v.mustSame(o)
	return FromRaw(v.l, v.raw-o.raw)
}

// Neg returns -v, wrapping on the layout's minimum value.
func (v Value) Neg() Value {
	return FromRaw(v.l, -v.raw)
}

// Mul returns v*o in the shared layout: the raw values are multiplied at
// double width, shifted right by frac to renormalize, and narrowed back.
// Low bits beyond the layout are truncated (floored), not rounded.
func (v Value) Mul(o Value) Value {
	v.mustSame(o)
	pa, pb := v.pattern(), o.pattern()
	hi, lo := bits.Mul64(pa, pb)
	if v.l.signed {
		// Convert the unsigned 128-bit product to a signed one.
		if int64(pa) < 0 {
			hi -= pb
		}
		if int64(pb) < 0 {
			hi -= pa
		}
	}
	f := uint(v.l.frac)
	return FromRaw(v.l, lo>>f|hi<<(64-f))
}

// Div returns v/o in the shared layout: the dividend is pre-shifted left by
// frac to preserve the fraction, then integer-divided. The quotient is
// truncated toward zero; excess high bits are silently narrowed away.
// Division by zero panics.
func (v Value) Div(o Value) Value {
	v.mustSame(o)
	if o.raw == 0 {
		panic("fixed: division by zero")
	}
	ua, na := v.magnitude()
	ub, nb := o.magnitude()
	f := uint(v.l.frac)
	var hi uint64
	if f > 0 {
		hi = ua >> (64 - f)
	}
	lo := ua << f
	// Keep only the low 64 quotient bits; anything above is truncation.
	q, _ := bits.Div64(hi%ub, lo, ub)
	if na != nb {
		q = -q
	}
	return FromRaw(v.l, q)
}

// magnitude returns |v| as a uint64 plus the sign.
func (v Value) magnitude() (mag uint64, neg bool) {
	p := v.pattern()
	if v.l.signed && int64(p) < 0 {
		return -p, true
	}
	return p, false
}

// Shl shifts the raw integer left by k bits. The layout is unchanged: the
// result represents the original real value only when reinterpreted into a
// layout whose fractional count is k lower (see Reinterpret).
func (v Value) Shl(k uint) Value {
	return FromRaw(v.l, v.raw<<k)
}

// Shr shifts the raw integer right by k bits (arithmetic for signed
// layouts). As with Shl, callers must reinterpret the result into a layout
// whose fractional count is k higher to keep the real value consistent:
// a right shift by k on layout (I,F) is only value-preserving under
// (I+k, F-k).
func (v Value) Shr(k uint) Value {
	if v.l.signed {
		return FromRaw(v.l, uint64(signExtend(v.raw, uint(v.l.bits))>>k))
	}
	return FromRaw(v.l, v.raw>>k)
}

// Reinterpret returns the same raw bits under a new layout. Signed sources
// are sign-extended before masking so widening preserves the two's
// complement pattern; narrowing truncates high bits.
func (v Value) Reinterpret(l Layout) Value {
	return FromRaw(l, v.pattern())
}

// Cmp compares two values of identical layout by their raw integers
// (a total, exact ordering). Returns -1, 0 or 1.
func (v Value) Cmp(o Value) int {
	v.mustSame(o)
	if v.l.signed {
		a, b := int64(v.pattern()), int64(o.pattern())
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	switch {
	case v.raw < o.raw:
		return -1
	case v.raw > o.raw:
		return 1
	}
	return 0
}

// Eq reports raw equality under identical layouts.
func (v Value) Eq(o Value) bool {
	v.mustSame(o)
	return v.raw == o.raw
}

// String renders the value for debugging, e.g. "1.5(u8.8)".
func (v Value) String() string {
	return fmt.Sprintf("%g(%v)", v.Float64(), v.l)
}
