// Package systems provides the spatial partition and the pairwise force
// kernel used by the simulation step.
package systems

// Partition is a multi-valued mapping from 2D region key to the bag of
// entity indices currently located in that region, backed by a flat grid of
// slices. Bags are unordered; no caller depends on iteration order. There
// is no remove operation: entities are only ever reassigned between the two
// partition instances the simulation double-buffers.
//
// Keys fold onto the grid modulo its dimensions, so when the key space is
// wider than the grid, distinct keys share a bag. Readers that need exact
// key matches (the force pass, read-back) filter bag entries against the
// entity's stored key.
type Partition struct {
	cols, rows int
	cells      [][]uint32
}

// NewPartition allocates a cols x rows partition, pre-sizing each bag for
// the expected mean occupancy. Allocated once at simulation start and
// reused every step.
func NewPartition(cols, rows, expectedPerCell int) *Partition {
	if expectedPerCell < 1 {
		expectedPerCell = 1
	}
	cells := make([][]uint32, cols*rows)
	for i := range cells {
		cells[i] = make([]uint32, 0, expectedPerCell)
	}
	return &Partition{cols: cols, rows: rows, cells: cells}
}

// Cols returns the grid width in regions.
func (p *Partition) Cols() int { return p.cols }

// Rows returns the grid height in regions.
func (p *Partition) Rows() int { return p.rows }

// Clear empties all bags without releasing their backing storage.
func (p *Partition) Clear() {
	for i := range p.cells {
		p.cells[i] = p.cells[i][:0]
	}
}

// Insert appends an entity index to the bag for the given region key,
// wrapping the key onto the grid. Amortized O(1).
func (p *Partition) Insert(kx, ky int, idx uint32) {
	p.cells[p.cellIndex(kx, ky)] = append(p.cells[p.cellIndex(kx, ky)], idx)
}

// Bag returns the bag for a region key. The slice aliases internal storage:
// callers must treat it as read-only and not retain it across Clear.
func (p *Partition) Bag(kx, ky int) []uint32 {
	return p.cells[p.cellIndex(kx, ky)]
}

// ForEach invokes visit once per entity index stored under the key, in
// unspecified order.
func (p *Partition) ForEach(kx, ky int, visit func(idx uint32)) {
	for _, idx := range p.Bag(kx, ky) {
		visit(idx)
	}
}

// Len returns the total number of stored entries across all bags.
func (p *Partition) Len() int {
	n := 0
	for i := range p.cells {
		n += len(p.cells[i])
	}
	return n
}

// Occupancy appends each bag's size to dst and returns it. Used by
// telemetry; reuse dst across calls to avoid allocations.
func (p *Partition) Occupancy(dst []float64) []float64 {
	for i := range p.cells {
		dst = append(dst, float64(len(p.cells[i])))
	}
	return dst
}

// cellIndex maps a region key onto the flat grid, wrapping both axes.
func (p *Partition) cellIndex(kx, ky int) int {
	col := ((kx % p.cols) + p.cols) % p.cols
	row := ((ky % p.rows) + p.rows) % p.rows
	return row*p.cols + col
}
