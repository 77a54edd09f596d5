package systems

import "github.com/dustlab/grit/fixed"

// RepulsionKernel computes the pairwise repulsion between two entities
// sharing a region. The interaction is symmetric, zero at distance zero and
// at or beyond the cutoff, and entirely fixed-point, so force(p,q) equals
// -force(q,p) up to one Epsilon of truncation.
//
// Precondition inherited from the neighbor query: the cutoff must not
// exceed the region cell size, because only entities in the same region are
// ever visited. Interactions across a region edge are missed by design.
type RepulsionKernel struct {
	cutoffSq fixed.Value
	strength fixed.Value
	zero     fixed.Value
}

// NewRepulsionKernel builds a kernel in the given (signed) force layout.
// cutoff and strength are real units, converted once here; both must be
// representable in the layout.
func NewRepulsionKernel(l fixed.Layout, cutoff, strength float64) (RepulsionKernel, error) {
	cutoffSq, err := fixed.FromFloat(l, cutoff*cutoff)
	if err != nil {
		return RepulsionKernel{}, err
	}
	str, err := fixed.FromFloat(l, strength)
	if err != nil {
		return RepulsionKernel{}, err
	}
	return RepulsionKernel{cutoffSq: cutoffSq, strength: str, zero: fixed.FromRaw(l, 0)}, nil
}

// Pair returns the force exerted on the entity at the origin of the delta
// by a neighbor displaced by d (both components in the kernel's layout).
// ok is false when the pair does not interact (coincident or beyond
// cutoff). The falloff weight (cutoffSq - distSq) is symmetric in the pair,
// so antisymmetry of the returned force follows from the antisymmetry of d
// alone.
func (k RepulsionKernel) Pair(d fixed.Vec2) (f fixed.Vec2, ok bool) {
	distSq := d.LenSq()
	if distSq.IsZero() || distSq.Cmp(k.cutoffSq) >= 0 {
		return fixed.ZeroVec2(d.Layout()), false
	}
	w := k.cutoffSq.Sub(distSq).Mul(k.strength)
	// Pushes away from the neighbor: opposite to the delta toward it.
	return d.Scale(w).Neg(), true
}
