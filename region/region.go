// Package region implements the region-relative position model: a
// conceptual wide world coordinate is split into a coarse region key (a
// fixed-point value with zero fractional bits) and a fine in-region offset
// (a value whose whole width becomes the fractional part of the recombined
// coordinate). Storing the two halves separately halves per-entity storage;
// recombining them is a bit-exact pack, not a scaled conversion.
//
// Pack and unpack are deliberately explicit pure functions rather than
// casts or operator sugar, so every crossing between the two
// representations is auditable.
package region

import (
	"fmt"

	"github.com/dustlab/grit/fixed"
)

// WorldLayout returns the packed layout for a key/offset layout pair: an
// unsigned word of key.Bits+off.Bits total bits whose fractional count is
// the offset's full width and whose integer count is the key's full width.
func WorldLayout(key, off fixed.Layout) (fixed.Layout, error) {
	if key.Frac() != 0 {
		return fixed.Layout{}, fmt.Errorf("region: key layout %v has fractional bits", key)
	}
	if key.Signed() || off.Signed() {
		return fixed.Layout{}, fmt.Errorf("region: key and offset layouts must be unsigned (%v, %v)", key, off)
	}
	return fixed.NewLayout(key.Bits()+off.Bits(), off.Bits(), false)
}

// Pack concatenates the region key's raw bits (high) with the fine offset's
// raw bits (low) into a value of the WorldLayout. Layout misuse panics; the
// pack itself cannot lose bits.
func Pack(key, off fixed.Value) fixed.Value {
	wl, err := WorldLayout(key.Layout(), off.Layout())
	if err != nil {
		panic(err)
	}
	return fixed.FromRaw(wl, key.Raw()<<off.Layout().Bits()|off.Raw())
}

// Unpack is the exact inverse of Pack: the high bits become the region key,
// the low bits the fine offset.
func Unpack(world fixed.Value, key, off fixed.Layout) (fixed.Value, fixed.Value) {
	if _, err := WorldLayout(key, off); err != nil {
		panic(err)
	}
	return fixed.FromRaw(key, world.Raw()>>off.Bits()), fixed.FromRaw(off, world.Raw())
}

// Advance integrates one axis: the key/offset pair is packed, the velocity
// raw is added directly (it must carry the packed layout's fractional
// count; its sign bits fold into the two's-complement add), and the sum is
// split back into a possibly new key and a renormalized offset. The split
// is the boundary test -- an entity crosses a region edge exactly when the
// offset add carries into the key bits, and the key wraps modulo its own
// width, which closes the world toroidally.
func Advance(key, off, vel fixed.Value) (fixed.Value, fixed.Value) {
	world := Pack(key, off)
	wl := world.Layout()
	if vel.Layout().Frac() != wl.Frac() {
		panic(fmt.Sprintf("region: velocity layout %v does not carry world fractional count %d", vel.Layout(), wl.Frac()))
	}
	moved := fixed.FromRaw(wl, world.Raw()+vel.Reinterpret(wl).Raw())
	return Unpack(moved, key.Layout(), off.Layout())
}
