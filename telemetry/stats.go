// Package telemetry collects per-step measurements of the simulation:
// phase timings, partition occupancy distributions and interaction counts,
// with CSV output for offline analysis.
package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// OccupancyStats summarizes the distribution of bag sizes across the
// partition at the end of a step.
type OccupancyStats struct {
	Mean float64
	Std  float64
	P90  float64
	Max  float64
}

// ComputeOccupancyStats aggregates a slice of bag sizes. The slice is
// sorted in place; pass a scratch buffer.
func ComputeOccupancyStats(sizes []float64) OccupancyStats {
	if len(sizes) == 0 {
		return OccupancyStats{}
	}
	sort.Float64s(sizes)
	return OccupancyStats{
		Mean: stat.Mean(sizes, nil),
		Std:  stat.StdDev(sizes, nil),
		P90:  stat.Quantile(0.9, stat.Empirical, sizes, nil),
		Max:  sizes[len(sizes)-1],
	}
}
