// Package sim runs the double-buffered, fixed-point particle simulation:
// a ForcePass that reads the current partition and accumulates pairwise
// repulsion, an IntegratePass that advances positions through the
// region-relative model, and a swap of the two partition instances.
package sim

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"
	"go.uber.org/zap"

	"github.com/dustlab/grit/components"
	"github.com/dustlab/grit/config"
	"github.com/dustlab/grit/fixed"
	"github.com/dustlab/grit/systems"
	"github.com/dustlab/grit/telemetry"
)

// Key is a 2D region key: one coarse grid coordinate per axis, zero
// fractional bits, wrapping modulo the key layout's bit width.
type Key struct {
	X, Y int32
}

// EntityInit seeds one entity. Raw fields carry bit patterns in the
// configured offset and velocity layouts; the driver owns how they are
// generated (random or otherwise).
type EntityInit struct {
	Key        Key
	OffX, OffY uint64
	VelX, VelY uint64
}

// Options carries driver-supplied collaborators.
type Options struct {
	Logger    *zap.Logger // nil = no logging
	OutputDir string      // "" = CSV output disabled
}

// snapshot captures an entity's read-only state for the parallel passes.
type snapshot struct {
	off fixed.Vec2 // offset layout
	vel fixed.Vec2 // velocity layout
}

// intent captures an entity's computed next state, applied after the
// parallel phase completes.
type intent struct {
	off fixed.Vec2
	vel fixed.Vec2
	key Key
}

// Simulation owns the entity world, both partition instances, and the
// dense per-entity tables. The "current" partition and the snapshots are
// read-only for the duration of a step; forces and intents are written with
// disjoint per-entity ownership, which is what keeps the parallel fan-out
// race-free without locks.
type Simulation struct {
	cfg *config.Config
	log *zap.Logger

	world  *ecs.World
	mapper *ecs.Map3[components.Offset, components.Velocity, components.Meta]
	filter *ecs.Filter3[components.Offset, components.Velocity, components.Meta]
	offMap *ecs.Map1[components.Offset]
	velMap *ecs.Map1[components.Velocity]

	// Dense tables indexed by Meta.Index. The coarse keys live here, not
	// on the entities.
	entities []ecs.Entity
	keys     []Key
	snaps    []snapshot
	forces   []fixed.Vec2
	intents  []intent

	current *systems.Partition
	next    *systems.Partition

	kernel systems.RepulsionKernel
	arith  fixed.Arith

	pool         *workerPool
	interactions []int64 // per-worker counters, merged after ForcePass

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager

	step   int64
	closed bool
}

// New builds a simulation from the configured layouts and the initial
// entity states. The two partition instances are allocated once here,
// sized for the entity count, and reused for the simulation's lifetime.
func New(cfg *config.Config, init []EntityInit, opts Options) (*Simulation, error) {
	n := len(init)
	if n == 0 {
		return nil, fmt.Errorf("sim: no entities")
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	d := cfg.Derived
	kernel, err := systems.NewRepulsionKernel(d.VelocityLayout, cfg.Physics.Cutoff, cfg.Physics.Strength)
	if err != nil {
		return nil, fmt.Errorf("sim: force kernel: %w", err)
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("sim: telemetry output: %w", err)
	}

	world := ecs.NewWorld()
	regions := cfg.Grid.Cols * cfg.Grid.Rows
	s := &Simulation{
		cfg:       cfg,
		log:       log,
		world:     world,
		mapper:    ecs.NewMap3[components.Offset, components.Velocity, components.Meta](world),
		filter:    ecs.NewFilter3[components.Offset, components.Velocity, components.Meta](world),
		offMap:    ecs.NewMap1[components.Offset](world),
		velMap:    ecs.NewMap1[components.Velocity](world),
		entities:  make([]ecs.Entity, n),
		keys:      make([]Key, n),
		snaps:     make([]snapshot, n),
		forces:    make([]fixed.Vec2, n),
		intents:   make([]intent, n),
		current:   systems.NewPartition(cfg.Grid.Cols, cfg.Grid.Rows, n/regions+1),
		next:      systems.NewPartition(cfg.Grid.Cols, cfg.Grid.Rows, n/regions+1),
		kernel:    kernel,
		arith:     fixed.NewArith(cfg.Layout.Checked),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.Window),
		collector: telemetry.NewCollector(regions),
		output:    output,
	}
	s.pool = newWorkerPool(cfg.Step.Workers)
	s.interactions = make([]int64, s.pool.numWorkers)

	keyMask := int32(1)<<d.KeyLayout.Bits() - 1
	for i, e := range init {
		off := components.Offset{Pos: fixed.V2(
			fixed.FromRaw(d.OffsetLayout, e.OffX),
			fixed.FromRaw(d.OffsetLayout, e.OffY),
		)}
		vel := components.Velocity{Vel: fixed.V2(
			fixed.FromRaw(d.VelocityLayout, e.VelX),
			fixed.FromRaw(d.VelocityLayout, e.VelY),
		)}
		meta := components.Meta{Index: uint32(i)}

		s.entities[i] = s.mapper.NewEntity(&off, &vel, &meta)
		s.keys[i] = Key{X: e.Key.X & keyMask, Y: e.Key.Y & keyMask}
		s.current.Insert(int(s.keys[i].X), int(s.keys[i].Y), uint32(i))
	}

	log.Info("simulation created",
		zap.Int("entities", n),
		zap.Int("grid_cols", cfg.Grid.Cols),
		zap.Int("grid_rows", cfg.Grid.Rows),
		zap.Stringer("key_layout", d.KeyLayout),
		zap.Stringer("offset_layout", d.OffsetLayout),
		zap.Stringer("world_layout", d.WorldLayout),
		zap.Stringer("velocity_layout", d.VelocityLayout),
		zap.Bool("checked", cfg.Layout.Checked),
		zap.Int("workers", s.pool.numWorkers),
		zap.String("run_id", output.RunID()),
	)
	return s, nil
}

// Step runs one full simulation step synchronously: ForcePass, barrier,
// IntegratePass, apply, swap. Returns only after the swap completes. In
// checked mode an arithmetic overflow is fatal and panics; there is no
// partial-step rollback.
func (s *Simulation) Step() {
	s.perf.StartStep()

	s.perf.StartPhase(telemetry.PhaseForce)
	s.snapshotEntities()
	s.runPass(passForce)

	s.perf.StartPhase(telemetry.PhaseIntegrate)
	s.runPass(passIntegrate)

	s.perf.StartPhase(telemetry.PhaseApply)
	s.applyIntents()

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.recordStep()

	s.step++
}

// Steps returns the number of completed steps.
func (s *Simulation) Steps() int64 { return s.step }

// EntityCount returns the number of entities.
func (s *Simulation) EntityCount() int { return len(s.entities) }

// KeyOf returns the current region key of an entity index. Passing an
// out-of-range index is a programming error and panics.
func (s *Simulation) KeyOf(idx uint32) Key { return s.keys[idx] }

// RawState returns the raw offset and velocity bit patterns of an entity,
// for determinism checks and tests.
func (s *Simulation) RawState(idx uint32) (offX, offY, velX, velY uint64) {
	sn := s.lookup(idx)
	return sn.off.X.Raw(), sn.off.Y.Raw(), sn.vel.X.Raw(), sn.vel.Y.Raw()
}

func (s *Simulation) lookup(idx uint32) snapshot {
	e := s.entities[idx]
	return snapshot{
		off: s.offMap.Get(e).Pos,
		vel: s.velMap.Get(e).Vel,
	}
}

// snapshotEntities copies entity state into the dense read-only table the
// parallel passes work from.
func (s *Simulation) snapshotEntities() {
	query := s.filter.Query()
	for query.Next() {
		off, vel, meta := query.Get()
		s.snaps[meta.Index] = snapshot{off: off.Pos, vel: vel.Vel}
	}
}

// applyIntents writes computed state back to the entities and refills the
// next partition, single-threaded in index order so partition contents are
// deterministic, then swaps the two instances.
func (s *Simulation) applyIntents() {
	s.next.Clear()
	for i := range s.intents {
		it := &s.intents[i]
		e := s.entities[i]
		s.offMap.Get(e).Pos = it.off
		s.velMap.Get(e).Vel = it.vel
		s.keys[i] = it.key
		s.next.Insert(int(it.key.X), int(it.key.Y), uint32(i))
	}
	s.current, s.next = s.next, s.current
}

// recordStep merges the pass counters and writes the telemetry record.
func (s *Simulation) recordStep() {
	var interactions int64
	for i := range s.interactions {
		interactions += s.interactions[i]
		s.interactions[i] = 0
	}
	s.collector.AddInteractions(interactions)

	sizes := s.current.Occupancy(s.collector.OccupancyScratch())
	var rec telemetry.StepRecord
	s.collector.Finish(s.step, len(s.entities), sizes, &rec)

	s.perf.EndStep()
	phases := s.perf.LastPhases()
	rec.ForceUs = phases[telemetry.PhaseForce].Microseconds()
	rec.IntegrateUs = phases[telemetry.PhaseIntegrate].Microseconds()
	rec.ApplyUs = phases[telemetry.PhaseApply].Microseconds()
	rec.TotalUs = rec.ForceUs + rec.IntegrateUs + rec.ApplyUs + phases[telemetry.PhaseTelemetry].Microseconds()

	if err := s.output.WriteStep(rec); err != nil {
		s.log.Warn("telemetry write failed", zap.Error(err))
	}
}

// LogStats logs windowed performance and occupancy statistics.
func (s *Simulation) LogStats() {
	st := s.perf.Stats()
	sizes := s.current.Occupancy(s.collector.OccupancyScratch())
	occ := telemetry.ComputeOccupancyStats(sizes)
	s.log.Info("window stats",
		zap.Int64("step", s.step),
		zap.Duration("avg_step", st.AvgStepDuration),
		zap.Duration("max_step", st.MaxStepDuration),
		zap.Float64("steps_per_sec", st.StepsPerSecond),
		zap.Float64("occ_mean", occ.Mean),
		zap.Float64("occ_std", occ.Std),
		zap.Float64("occ_max", occ.Max),
	)
}

// Close stops the worker pool and releases telemetry resources. Safe to
// call once; further Steps after Close are a programming error.
func (s *Simulation) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.pool.stop()
	if err := s.output.Close(); err != nil {
		return fmt.Errorf("sim: closing telemetry output: %w", err)
	}
	return nil
}
