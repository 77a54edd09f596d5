package telemetry

import (
	"math"
	"testing"
)

// TestComputeOccupancyStats verifies the aggregate on a known distribution.
func TestComputeOccupancyStats(t *testing.T) {
	sizes := []float64{10, 1, 4, 2, 3}
	occ := ComputeOccupancyStats(sizes)

	if occ.Mean != 4 {
		t.Errorf("Mean = %g, want 4", occ.Mean)
	}
	if occ.Max != 10 {
		t.Errorf("Max = %g, want 10", occ.Max)
	}
	if occ.P90 != 10 {
		t.Errorf("P90 = %g, want 10", occ.P90)
	}
	// Sample standard deviation: sqrt(50/4).
	if math.Abs(occ.Std-math.Sqrt(12.5)) > 1e-12 {
		t.Errorf("Std = %g, want %g", occ.Std, math.Sqrt(12.5))
	}
}

func TestComputeOccupancyStatsEmpty(t *testing.T) {
	occ := ComputeOccupancyStats(nil)
	if occ != (OccupancyStats{}) {
		t.Errorf("empty input produced %+v", occ)
	}
}

// TestCollectorFinish verifies counter accumulation and per-step reset.
func TestCollectorFinish(t *testing.T) {
	c := NewCollector(4)
	c.AddInteractions(3)
	c.AddInteractions(2)

	var rec StepRecord
	c.Finish(7, 100, []float64{1, 1, 2, 0}, &rec)

	if rec.Step != 7 || rec.Entities != 100 {
		t.Errorf("rec = step %d entities %d, want 7/100", rec.Step, rec.Entities)
	}
	if rec.Interactions != 5 {
		t.Errorf("Interactions = %d, want 5", rec.Interactions)
	}
	if rec.OccMean != 1 || rec.OccMax != 2 {
		t.Errorf("occupancy = mean %g max %g, want 1/2", rec.OccMean, rec.OccMax)
	}

	// Counters reset between steps.
	var rec2 StepRecord
	c.Finish(8, 100, []float64{0, 0, 0, 0}, &rec2)
	if rec2.Interactions != 0 {
		t.Errorf("Interactions after reset = %d, want 0", rec2.Interactions)
	}
}

func TestCollectorScratchReuse(t *testing.T) {
	c := NewCollector(8)
	s := c.OccupancyScratch()
	if len(s) != 0 {
		t.Errorf("scratch length = %d, want 0", len(s))
	}
	if cap(s) != 8 {
		t.Errorf("scratch capacity = %d, want 8", cap(s))
	}
	s = append(s, 1, 2, 3)
	if got := c.OccupancyScratch(); len(got) != 0 {
		t.Errorf("scratch not truncated: length %d", len(got))
	}
}
