package systems

import "testing"

// TestPartitionInsertBag verifies basic multi-valued mapping behavior.
func TestPartitionInsertBag(t *testing.T) {
	p := NewPartition(4, 4, 2)
	if p.Cols() != 4 || p.Rows() != 4 {
		t.Fatalf("dimensions = %dx%d, want 4x4", p.Cols(), p.Rows())
	}

	p.Insert(2, 3, 10)
	p.Insert(2, 3, 11)
	p.Insert(0, 0, 12)

	bag := p.Bag(2, 3)
	if len(bag) != 2 {
		t.Fatalf("bag size = %d, want 2", len(bag))
	}
	if p.Len() != 3 {
		t.Errorf("Len = %d, want 3", p.Len())
	}
	if len(p.Bag(1, 1)) != 0 {
		t.Error("empty cell returned entries")
	}
}

// TestPartitionKeyWrap verifies that keys outside the grid wrap onto it,
// including negative keys.
func TestPartitionKeyWrap(t *testing.T) {
	p := NewPartition(4, 4, 1)

	p.Insert(5, 0, 1)  // wraps to column 1
	p.Insert(-1, 0, 2) // wraps to column 3
	p.Insert(0, -5, 3) // wraps to row 3

	if len(p.Bag(1, 0)) != 1 || p.Bag(1, 0)[0] != 1 {
		t.Error("positive wrap failed")
	}
	if len(p.Bag(3, 0)) != 1 || p.Bag(3, 0)[0] != 2 {
		t.Error("negative column wrap failed")
	}
	if len(p.Bag(0, 3)) != 1 || p.Bag(0, 3)[0] != 3 {
		t.Error("negative row wrap failed")
	}
	// Wrapped and unwrapped keys address the same bag.
	if len(p.Bag(-3, 0)) != 1 {
		t.Error("aliased key addressed a different bag")
	}
}

// TestPartitionClearKeepsStorage verifies that Clear empties every bag but
// keeps the backing arrays, so steady-state stepping does not allocate.
func TestPartitionClearKeepsStorage(t *testing.T) {
	p := NewPartition(2, 2, 1)
	for i := uint32(0); i < 16; i++ {
		p.Insert(0, 0, i)
	}
	grown := cap(p.Bag(0, 0))
	if grown < 16 {
		t.Fatalf("bag capacity = %d, want >= 16", grown)
	}

	p.Clear()
	if p.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", p.Len())
	}
	if cap(p.Bag(0, 0)) != grown {
		t.Errorf("capacity after Clear = %d, want %d", cap(p.Bag(0, 0)), grown)
	}
}

func TestPartitionForEach(t *testing.T) {
	p := NewPartition(2, 2, 4)
	want := map[uint32]bool{3: true, 7: true, 9: true}
	for idx := range want {
		p.Insert(1, 1, idx)
	}

	seen := map[uint32]bool{}
	p.ForEach(1, 1, func(idx uint32) { seen[idx] = true })
	if len(seen) != len(want) {
		t.Fatalf("visited %d entries, want %d", len(seen), len(want))
	}
	for idx := range want {
		if !seen[idx] {
			t.Errorf("index %d not visited", idx)
		}
	}
}

func TestPartitionOccupancy(t *testing.T) {
	p := NewPartition(2, 2, 1)
	p.Insert(0, 0, 1)
	p.Insert(0, 0, 2)
	p.Insert(1, 1, 3)

	sizes := p.Occupancy(nil)
	if len(sizes) != 4 {
		t.Fatalf("occupancy length = %d, want 4", len(sizes))
	}
	sum := 0.0
	for _, s := range sizes {
		sum += s
	}
	if sum != 3 {
		t.Errorf("occupancy sum = %g, want 3", sum)
	}
}
