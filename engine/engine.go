package engine

import (
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/meshflow/config"
	"github.com/pthm-cable/meshflow/field"
	"github.com/pthm-cable/meshflow/mesh"
)

// Params are the stepper's tuning knobs. They are plain data passed in at
// construction (and adjustable between frames), not package state.
type Params struct {
	DT          float64
	TimeScale   float64
	Damping     float64
	MaxSpeed    float64
	MaxEdgeHops int
	Epsilon     float64
}

// ParamsFromConfig builds Params from the physics config section.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		DT:          cfg.Physics.DT,
		TimeScale:   cfg.Physics.TimeScale,
		Damping:     cfg.Physics.Damping,
		MaxSpeed:    cfg.Physics.MaxSpeed,
		MaxEdgeHops: cfg.Physics.MaxEdgeHops,
		Epsilon:     cfg.Physics.Epsilon,
	}
}

// Options configure engine construction.
type Options struct {
	Mode           field.Mode
	PoolSize       int
	Seed           int64
	BoundaryPolicy BoundaryPolicy
	SpawnAttempts  int    // rejection budget when SpawnMask is set
	SpawnMask      []bool // per-face spawn eligibility, nil = all faces
	SinkMask       []bool // per-face forced-respawn flags, nil = none
}

// StepStats reports what happened during one frame.
type StepStats struct {
	Respawns     int // boundary respawns + sink respawns
	BoundaryHits int
	SinkRespawns int
	HopTruncated int
	Duration     time.Duration
}

// Engine owns the particle pool and everything needed to advance it: the
// mesh with its derived topology, frames, and transport matrices, plus the
// field sampler. Mesh-derived data is read-only between SetMesh calls.
type Engine struct {
	mesh      *mesh.Mesh
	topo      *mesh.Topology
	frames    *mesh.Frames
	transport *mesh.Transport

	sampler  field.Sampler
	advancer field.Advancer // non-nil if the sampler has per-frame state
	mode     field.Mode

	params   Params
	pool     *Pool
	life     *lifecycle
	parallel *parallelState
	rng      *rand.Rand

	tick int64
	time float64
}

// New builds an engine over the given mesh and field. Topology and frame
// construction validate the mesh; a non-manifold edge or degenerate face
// aborts here rather than surfacing mid-simulation.
func New(m *mesh.Mesh, sampler field.Sampler, params Params, opts Options) (*Engine, error) {
	topo, frames, transport, err := buildMeshData(m)
	if err != nil {
		return nil, err
	}

	if opts.SpawnMask != nil && len(opts.SpawnMask) != m.NumFaces() {
		return nil, fmt.Errorf("engine: spawn mask has %d entries for %d faces", len(opts.SpawnMask), m.NumFaces())
	}
	if opts.SinkMask != nil && len(opts.SinkMask) != m.NumFaces() {
		return nil, fmt.Errorf("engine: sink mask has %d entries for %d faces", len(opts.SinkMask), m.NumFaces())
	}
	if opts.PoolSize <= 0 {
		return nil, fmt.Errorf("engine: pool size must be positive, got %d", opts.PoolSize)
	}

	attempts := opts.SpawnAttempts
	if attempts <= 0 {
		attempts = 16
	}

	advancer, _ := sampler.(field.Advancer)

	e := &Engine{
		mesh:      m,
		topo:      topo,
		frames:    frames,
		transport: transport,
		sampler:   sampler,
		advancer:  advancer,
		mode:      opts.Mode,
		params:    params,
		pool:      NewPool(opts.PoolSize),
		life: &lifecycle{
			mesh:      m,
			policy:    opts.BoundaryPolicy,
			spawnMask: opts.SpawnMask,
			sinkMask:  opts.SinkMask,
			attempts:  attempts,
		},
		parallel: newParallelState(opts.Seed),
		rng:      rand.New(rand.NewSource(opts.Seed)),
	}
	e.life.spawnAll(e.pool, e.rng)
	return e, nil
}

func buildMeshData(m *mesh.Mesh) (*mesh.Topology, *mesh.Frames, *mesh.Transport, error) {
	topo, err := mesh.BuildTopology(m)
	if err != nil {
		return nil, nil, nil, err
	}
	frames, err := mesh.BuildFrames(m)
	if err != nil {
		return nil, nil, nil, err
	}
	return topo, frames, mesh.BuildTransport(m, topo, frames), nil
}

// Step advances every particle by one frame: lifecycle sink pass, then one
// transport step per particle. The pool is consistent when Step returns;
// renderers read it between frames.
func (e *Engine) Step() StepStats {
	start := time.Now()
	dt := e.params.DT * e.params.TimeScale

	if e.advancer != nil {
		e.advancer.Advance(e.time)
	}
	sinks := e.life.sinkPass(e.pool, e.rng)
	c := e.stepAll(dt)

	e.tick++
	e.time += dt

	return StepStats{
		Respawns:     c.respawns + sinks,
		BoundaryHits: c.boundaryHits,
		SinkRespawns: sinks,
		HopTruncated: c.hopTruncated,
		Duration:     time.Since(start),
	}
}

// SetMesh replaces the mesh: workers stop, topology/frames/transport are
// rebuilt, and every particle respawns on the new surface. Workers restart
// lazily on the next large-enough Step.
func (e *Engine) SetMesh(m *mesh.Mesh) error {
	topo, frames, transport, err := buildMeshData(m)
	if err != nil {
		return err
	}

	e.parallel.stopWorkers()
	e.mesh = m
	e.topo = topo
	e.frames = frames
	e.transport = transport
	e.life.mesh = m
	e.life.spawnMask = nil
	e.life.sinkMask = nil
	e.life.spawnAll(e.pool, e.rng)
	return nil
}

// Close stops the worker pool.
func (e *Engine) Close() {
	e.parallel.stopWorkers()
}

// Tick returns the number of completed steps.
func (e *Engine) Tick() int64 { return e.tick }

// Time returns the accumulated simulation time.
func (e *Engine) Time() float64 { return e.time }

// Pool exposes the particle slots for rendering and tests. Callers must
// not read it while Step is running.
func (e *Engine) Pool() *Pool { return e.pool }

// Mesh returns the current mesh.
func (e *Engine) Mesh() *mesh.Mesh { return e.mesh }

// Params returns the current stepper parameters.
func (e *Engine) Params() Params { return e.params }

// SetParams swaps the stepper parameters. Only call between frames.
func (e *Engine) SetParams(p Params) { e.params = p }

// Positions writes every particle's world position into dst, growing it if
// needed, and returns the filled slice.
func (e *Engine) Positions(dst []r3.Vec) []r3.Vec {
	if cap(dst) < e.pool.Len() {
		dst = make([]r3.Vec, e.pool.Len())
	}
	dst = dst[:e.pool.Len()]
	for i := range e.pool.Particles {
		p := &e.pool.Particles[i]
		dst[i] = e.mesh.FacePoint(p.Face, p.Bary)
	}
	return dst
}

// Speeds writes every particle's speed into dst, growing it if needed, and
// returns the filled slice.
func (e *Engine) Speeds(dst []float64) []float64 {
	if cap(dst) < e.pool.Len() {
		dst = make([]float64, e.pool.Len())
	}
	dst = dst[:e.pool.Len()]
	for i := range e.pool.Particles {
		dst[i] = e.pool.Particles[i].Speed
	}
	return dst
}
