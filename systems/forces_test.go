package systems

import (
	"testing"

	"github.com/dustlab/grit/fixed"
)

var forceLayout = fixed.MustLayout(32, 16, true)

func testKernel(t *testing.T) RepulsionKernel {
	t.Helper()
	k, err := NewRepulsionKernel(forceLayout, 0.75, 0.25)
	if err != nil {
		t.Fatalf("NewRepulsionKernel: %v", err)
	}
	return k
}

// TestKernelPair verifies the force magnitude on an exactly representable
// configuration: d=(0.5, 0) under cutoff 0.75 and strength 0.25 yields
// w = (0.5625 - 0.25) * 0.25 = 0.078125 and f = -(0.5 * w).
func TestKernelPair(t *testing.T) {
	k := testKernel(t)

	d := fixed.V2(fixed.MustFromFloat(forceLayout, 0.5), fixed.MustFromFloat(forceLayout, 0))
	f, ok := k.Pair(d)
	if !ok {
		t.Fatal("pair within cutoff did not interact")
	}
	if got := f.X.Float64(); got != -0.0390625 {
		t.Errorf("f.X = %g, want -0.0390625", got)
	}
	if !f.Y.IsZero() {
		t.Errorf("f.Y = %g, want 0", f.Y.Float64())
	}
}

// TestKernelPushesApart verifies the sign convention: the force on the
// origin entity points away from the neighbor on both axes.
func TestKernelPushesApart(t *testing.T) {
	k := testKernel(t)

	d := fixed.V2(fixed.MustFromFloat(forceLayout, 0.25), fixed.MustFromFloat(forceLayout, -0.25))
	f, ok := k.Pair(d)
	if !ok {
		t.Fatal("pair within cutoff did not interact")
	}
	if f.X.Float64() >= 0 {
		t.Errorf("f.X = %g, want negative (neighbor is at +X)", f.X.Float64())
	}
	if f.Y.Float64() <= 0 {
		t.Errorf("f.Y = %g, want positive (neighbor is at -Y)", f.Y.Float64())
	}
}

// TestKernelAntisymmetric verifies force(d) == -force(-d) on exactly
// representable deltas, where truncation affects both directions equally.
func TestKernelAntisymmetric(t *testing.T) {
	k := testKernel(t)

	deltas := [][2]float64{{0.5, 0}, {0.25, 0.25}, {-0.125, 0.5}}
	for _, dd := range deltas {
		d := fixed.V2(fixed.MustFromFloat(forceLayout, dd[0]), fixed.MustFromFloat(forceLayout, dd[1]))
		f1, ok1 := k.Pair(d)
		f2, ok2 := k.Pair(d.Neg())
		if ok1 != ok2 {
			t.Fatalf("delta %v: interaction flags differ", dd)
		}
		if f1.X.Float64() != -f2.X.Float64() || f1.Y.Float64() != -f2.Y.Float64() {
			t.Errorf("delta %v: f=%v/%v vs -f'=%v/%v", dd,
				f1.X.Float64(), f1.Y.Float64(), f2.X.Float64(), f2.Y.Float64())
		}
	}
}

// TestKernelNoInteraction verifies the zero cases: coincident entities and
// distances at or beyond the cutoff produce no force.
func TestKernelNoInteraction(t *testing.T) {
	k := testKernel(t)

	tests := []struct {
		name string
		x, y float64
	}{
		{name: "coincident", x: 0, y: 0},
		{name: "at cutoff", x: 0.75, y: 0},
		{name: "beyond cutoff", x: 1, y: 0},
		{name: "beyond on diagonal", x: 0.75, y: 0.75},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := fixed.V2(fixed.MustFromFloat(forceLayout, tc.x), fixed.MustFromFloat(forceLayout, tc.y))
			f, ok := k.Pair(d)
			if ok {
				t.Error("pair interacted")
			}
			if !f.X.IsZero() || !f.Y.IsZero() {
				t.Error("non-interacting pair returned a force")
			}
		})
	}
}

func TestKernelParameterRange(t *testing.T) {
	// cutoff^2 = 400 does not fit a layout with 7 integer bits.
	if _, err := NewRepulsionKernel(fixed.MustLayout(16, 8, true), 20, 0.25); err == nil {
		t.Error("expected range error for oversized cutoff")
	}
}
