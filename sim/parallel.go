package sim

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/dustlab/grit/fixed"
	"github.com/dustlab/grit/region"
)

// parallelThreshold is the minimum entity count to use parallel passes.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

type passKind uint8

const (
	passForce passKind = iota
	passIntegrate
)

// workChunk is a range of entity indices for a worker to process in one
// pass. Chunks of one pass never overlap, so writes to the forces and
// intents tables are disjoint.
type workChunk struct {
	start, end int
	pass       passKind
}

// workerPool holds the persistent worker goroutines the two passes fan out
// onto. The dispatching side blocks until every chunk of a pass is done, so
// each pass is a full barrier: IntegratePass never observes a partial
// ForcePass, and the swap never observes a partial IntegratePass.
type workerPool struct {
	numWorkers int

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &workerPool{numWorkers: workers}
}

// start launches the persistent worker goroutines.
func (p *workerPool) start(s *Simulation) {
	if p.running {
		return
	}
	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(s, i)
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker processes chunks until stopped.
func (p *workerPool) worker(s *Simulation, workerID int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			s.computeChunk(chunk, workerID)
			p.doneChan <- struct{}{}
		}
	}
}

// runPass executes one pass over all entities, parallel when the
// population is large enough, and returns only when the pass has fully
// completed.
func (s *Simulation) runPass(pass passKind) {
	n := len(s.entities)
	if n < parallelThreshold || s.pool.numWorkers == 1 {
		s.computeChunk(workChunk{start: 0, end: n, pass: pass}, 0)
		return
	}

	if !s.pool.running {
		s.pool.start(s)
	}

	chunkSize := (n + s.pool.numWorkers - 1) / s.pool.numWorkers
	dispatched := 0
	for w := 0; w < s.pool.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		s.pool.workChan <- workChunk{start: start, end: end, pass: pass}
		dispatched++
	}

	// Barrier: wait for every chunk before the next pass may begin.
	for i := 0; i < dispatched; i++ {
		<-s.pool.doneChan
	}
}

func (s *Simulation) computeChunk(chunk workChunk, workerID int) {
	switch chunk.pass {
	case passForce:
		s.forceChunk(chunk.start, chunk.end, workerID)
	case passIntegrate:
		s.integrateChunk(chunk.start, chunk.end)
	}
}

// forceChunk accumulates, for each entity in [i0, i1), the repulsion from
// every other entity sharing its current region. Reads the snapshots and
// the current partition only; writes forces[i] exclusively.
func (s *Simulation) forceChunk(i0, i1 int, workerID int) {
	velL := s.cfg.Derived.VelocityLayout
	var interactions int64

	for i := i0; i < i1; i++ {
		me := &s.snaps[i]
		key := s.keys[i]
		bag := s.current.Bag(int(key.X), int(key.Y))

		f := fixed.ZeroVec2(velL)
		for _, j := range bag {
			if int(j) == i {
				continue
			}
			// Bags alias distinct keys when the key space is wider
			// than the grid; only true co-residents interact.
			if s.keys[j] != key {
				continue
			}
			other := &s.snaps[j]
			// Delta toward the neighbor, lifted into the signed
			// velocity layout (same fractional count).
			d := fixed.V2(
				fixed.Convert(other.off.X, velL).Sub(fixed.Convert(me.off.X, velL)),
				fixed.Convert(other.off.Y, velL).Sub(fixed.Convert(me.off.Y, velL)),
			)
			if pf, ok := s.kernel.Pair(d); ok {
				f = f.Add(pf)
				interactions++
			}
		}
		s.forces[i] = f
	}

	s.interactions[workerID] += interactions
}

// integrateChunk combines force and velocity, damps, and advances each
// entity's packed position, writing intents[i] exclusively. The region
// split performed by Advance is the boundary test; no explicit edge check
// exists.
func (s *Simulation) integrateChunk(i0, i1 int) {
	d := s.cfg.Derived

	for i := i0; i < i1; i++ {
		sn := &s.snaps[i]

		vx := s.addVelocity(sn.vel.X, s.forces[i].X, i).Mul(d.Damping)
		vy := s.addVelocity(sn.vel.Y, s.forces[i].Y, i).Mul(d.Damping)

		kx := fixed.FromRaw(d.KeyLayout, uint64(uint32(s.keys[i].X)))
		ky := fixed.FromRaw(d.KeyLayout, uint64(uint32(s.keys[i].Y)))
		nkx, nox := region.Advance(kx, sn.off.X, vx)
		nky, noy := region.Advance(ky, sn.off.Y, vy)

		s.intents[i] = intent{
			off: fixed.V2(nox, noy),
			vel: fixed.V2(vx, vy),
			key: Key{X: int32(nkx.Raw()), Y: int32(nky.Raw())},
		}
	}
}

// addVelocity combines force into velocity. In checked mode an overflow is
// fatal and terminates the step; the default mode wraps and never errors.
func (s *Simulation) addVelocity(vel, force fixed.Value, idx int) fixed.Value {
	v, err := s.arith.Add(vel, force)
	if err != nil {
		panic(fmt.Sprintf("sim: step %d entity %d: %v", s.step, idx, err))
	}
	return v
}
