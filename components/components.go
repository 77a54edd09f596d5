// Package components defines the ECS components entities carry. The coarse
// region key is deliberately NOT a component: it is owned by the partition
// and the simulation's dense key table, never stored per entity.
package components

import "github.com/dustlab/grit/fixed"

// Offset is an entity's fine position within its region cell: an unsigned
// vector whose layout is all fractional bits, so each component lies in
// [0, cellSize) in real units.
type Offset struct {
	Pos fixed.Vec2
}

// Velocity is an entity's velocity, in its own layout (signed, carrying the
// packed world coordinate's fractional count so it can be added to packed
// positions directly).
type Velocity struct {
	Vel fixed.Vec2
}

// Meta identifies an entity by its stable index into the simulation's dense
// arrays (forces, intents, keys). Indices are assigned once at creation and
// never reused; entities are never deleted mid-run.
type Meta struct {
	Index uint32
}
