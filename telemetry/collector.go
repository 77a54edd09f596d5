package telemetry

// StepRecord is one row of the per-step CSV log.
type StepRecord struct {
	Step         int64   `csv:"step"`
	Entities     int     `csv:"entities"`
	Interactions int64   `csv:"interactions"`
	ForceUs      int64   `csv:"force_us"`
	IntegrateUs  int64   `csv:"integrate_us"`
	ApplyUs      int64   `csv:"apply_us"`
	TotalUs      int64   `csv:"total_us"`
	OccMean      float64 `csv:"occ_mean"`
	OccStd       float64 `csv:"occ_std"`
	OccP90       float64 `csv:"occ_p90"`
	OccMax       float64 `csv:"occ_max"`
}

// Collector accumulates counters during a step and assembles StepRecords.
// It is written to only from the single-threaded phases of the step; the
// parallel passes report their counts at the merge point.
type Collector struct {
	interactions int64
	occScratch   []float64
}

// NewCollector creates a collector sized for the given region count.
func NewCollector(regions int) *Collector {
	return &Collector{occScratch: make([]float64, 0, regions)}
}

// AddInteractions adds a pass's pairwise interaction count.
func (c *Collector) AddInteractions(n int64) {
	c.interactions += n
}

// OccupancyScratch returns the reusable bag-size buffer, truncated.
func (c *Collector) OccupancyScratch() []float64 {
	c.occScratch = c.occScratch[:0]
	return c.occScratch
}

// Finish builds the record for the step and resets per-step counters.
func (c *Collector) Finish(step int64, entities int, sizes []float64, rec *StepRecord) {
	c.occScratch = sizes
	occ := ComputeOccupancyStats(sizes)
	rec.Step = step
	rec.Entities = entities
	rec.Interactions = c.interactions
	rec.OccMean = occ.Mean
	rec.OccStd = occ.Std
	rec.OccP90 = occ.P90
	rec.OccMax = occ.Max
	c.interactions = 0
}
