package sim

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/dustlab/grit/fixed"
	"github.com/dustlab/grit/region"
)

// ForEachVisible iterates the entities whose current region key lies inside
// the inclusive rectangle [minKey, maxKey], invoking visit with the packed
// world position (x, y, 0) in real units and a color hint for the external
// renderer. The hint is a deterministic hash of the region key, not
// simulation state. Iteration order is unspecified.
func (s *Simulation) ForEachVisible(minKey, maxKey Key, visit func(pos [3]float64, colorHint float64)) {
	d := s.cfg.Derived
	for ky := minKey.Y; ky <= maxKey.Y; ky++ {
		for kx := minKey.X; kx <= maxKey.X; kx++ {
			for _, idx := range s.current.Bag(int(kx), int(ky)) {
				key := s.keys[idx]
				// The bag may hold entities from keys that alias
				// onto the same grid cell.
				if key.X != kx || key.Y != ky {
					continue
				}
				sn := s.lookup(idx)

				px := region.Pack(fixed.FromRaw(d.KeyLayout, uint64(uint32(key.X))), sn.off.X)
				py := region.Pack(fixed.FromRaw(d.KeyLayout, uint64(uint32(key.Y))), sn.off.Y)

				visit([3]float64{px.Float64(), py.Float64(), 0}, keyColorHint(key))
			}
		}
	}
}

// keyColorHint maps a region key to a stable value in [0, 1).
func keyColorHint(k Key) float64 {
	var b [8]byte
	binary.LittleEndian.PutUint32(b[:4], uint32(k.X))
	binary.LittleEndian.PutUint32(b[4:], uint32(k.Y))
	return float64(xxhash.Sum64(b[:])>>11) / float64(1<<53)
}
