package fixed

import "fmt"

// Vec2 is a pair of fixed-point values sharing one layout. It carries no
// invariants beyond componentwise validity.
type Vec2 struct {
	X, Y Value
}

// V2 builds a vector from two values of identical layout; mixing layouts
// inside one vector is a programming error and panics.
func V2(x, y Value) Vec2 {
	if x.l != y.l {
		panic(fmt.Sprintf("fixed: vector component layouts differ: %v vs %v", x.l, y.l))
	}
	return Vec2{X: x, Y: y}
}

// ZeroVec2 returns the zero vector in the given layout.
func ZeroVec2(l Layout) Vec2 {
	return Vec2{X: FromRaw(l, 0), Y: FromRaw(l, 0)}
}

// Layout returns the shared component layout.
func (v Vec2) Layout() Layout { return v.X.l }

// Add returns the componentwise sum (same wraparound rules as Value.Add).
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X.Add(o.X), Y: v.Y.Add(o.Y)}
}

// Sub returns the componentwise difference.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X.Sub(o.X), Y: v.Y.Sub(o.Y)}
}

// Neg returns the componentwise negation.
func (v Vec2) Neg() Vec2 {
	return Vec2{X: v.X.Neg(), Y: v.Y.Neg()}
}

// Scale multiplies each component by the scalar s (same-layout Mul
// semantics: double-width product, renormalized, truncated).
func (v Vec2) Scale(s Value) Vec2 {
	return Vec2{X: v.X.Mul(s), Y: v.Y.Mul(s)}
}

// Dot returns the dot product in the shared layout; both products and the
// final sum follow same-layout Mul/Add semantics and may wrap.
func (v Vec2) Dot(o Vec2) Value {
	return v.X.Mul(o.X).Add(v.Y.Mul(o.Y))
}

// LenSq returns the squared length, v.Dot(v).
func (v Vec2) LenSq() Value {
	return v.Dot(v)
}

// Vec3 is a triple of fixed-point values sharing one layout.
type Vec3 struct {
	X, Y, Z Value
}

// V3 builds a 3D vector from three values of identical layout.
func V3(x, y, z Value) Vec3 {
	if x.l != y.l || x.l != z.l {
		panic(fmt.Sprintf("fixed: vector component layouts differ: %v, %v, %v", x.l, y.l, z.l))
	}
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the componentwise sum.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X.Add(o.X), Y: v.Y.Add(o.Y), Z: v.Z.Add(o.Z)}
}

// Sub returns the componentwise difference.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X.Sub(o.X), Y: v.Y.Sub(o.Y), Z: v.Z.Sub(o.Z)}
}

// Scale multiplies each component by the scalar s.
func (v Vec3) Scale(s Value) Vec3 {
	return Vec3{X: v.X.Mul(s), Y: v.Y.Mul(s), Z: v.Z.Mul(s)}
}

// Dot returns the dot product in the shared layout.
func (v Vec3) Dot(o Vec3) Value {
	return v.X.Mul(o.X).Add(v.Y.Mul(o.Y)).Add(v.Z.Mul(o.Z))
}

// LenSq returns the squared length.
func (v Vec3) LenSq() Value {
	return v.Dot(v)
}
