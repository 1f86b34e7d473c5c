package engine

import (
	"math/rand"
	"runtime"
	"sync"
)

// parallelThreshold is the minimum pool size to use parallel stepping.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// workerScratch holds per-worker state. Each worker gets its own RNG so
// respawns inside a parallel step never contend, and its own counters so
// nothing is shared until the post-join merge.
type workerScratch struct {
	rng      *rand.Rand
	counters stepCounters
}

// workChunk is a range of pool slots for one worker to step.
type workChunk struct {
	start, end int
	dt         float64
}

// parallelState holds resources for parallel particle stepping.
type parallelState struct {
	scratches  []workerScratch
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState(seed int64) *parallelState {
	numWorkers := runtime.GOMAXPROCS(0)
	scratches := make([]workerScratch, numWorkers)
	for i := range scratches {
		scratches[i].rng = rand.New(rand.NewSource(seed + int64(i) + 1))
	}
	return &parallelState{
		numWorkers: numWorkers,
		scratches:  scratches,
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(e *Engine) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(e, i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, stepping chunks until stopped.
func (p *parallelState) worker(e *Engine, workerID int) {
	defer p.wg.Done()
	scratch := &p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			e.stepChunk(chunk.start, chunk.end, chunk.dt, scratch)
			p.doneChan <- struct{}{}
		}
	}
}

// stepAll advances every particle by dt, in parallel when the pool is big
// enough, and returns the merged event counters. Chunks are disjoint slot
// ranges and every particle step touches only its own slot, so the workers
// need no locks; the done-channel drain is the frame's single barrier.
func (e *Engine) stepAll(dt float64) stepCounters {
	n := e.pool.Len()
	for i := range e.parallel.scratches {
		e.parallel.scratches[i].counters = stepCounters{}
	}

	if n < parallelThreshold {
		e.stepChunk(0, n, dt, &e.parallel.scratches[0])
	} else {
		e.stepParallel(n, dt)
	}

	var total stepCounters
	for i := range e.parallel.scratches {
		c := &e.parallel.scratches[i].counters
		total.respawns += c.respawns
		total.boundaryHits += c.boundaryHits
		total.hopTruncated += c.hopTruncated
	}
	return total
}

// stepParallel dispatches chunks to the worker pool and waits for all of
// them to finish.
func (e *Engine) stepParallel(n int, dt float64) {
	if !e.parallel.running {
		e.parallel.startWorkers(e)
	}

	numWorkers := e.parallel.numWorkers
	chunkSize := (n + numWorkers - 1) / numWorkers

	chunksDispatched := 0
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		e.parallel.workChan <- workChunk{start: start, end: end, dt: dt}
		chunksDispatched++
	}

	for i := 0; i < chunksDispatched; i++ {
		<-e.parallel.doneChan
	}
}

// stepChunk steps a range of pool slots with one worker's scratch.
func (e *Engine) stepChunk(i0, i1 int, dt float64, sc *workerScratch) {
	for i := i0; i < i1; i++ {
		e.stepParticle(&e.pool.Particles[i], dt, sc.rng, &sc.counters)
	}
}
