// Package engine advects a fixed pool of particles across a triangulated
// surface, driven by a sampled field. Each particle lives on exactly one
// face, positioned by barycentric coordinates; the stepper resolves edge
// crossings so no particle ever leaves the surface.
package engine

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/meshflow/mesh"
)

// Particle is one slot in the pool. Slots are overwritten on respawn,
// never individually freed.
type Particle struct {
	Face mesh.FaceID
	Bary [3]float64
	Vel  r3.Vec

	// Speed is derived each step for rendering; it carries no invariant.
	Speed float64
}

// Pool is the fixed-size particle store. Its size is set at construction;
// resizing means building a new pool and respawning.
type Pool struct {
	Particles []Particle
}

// NewPool allocates a pool of n particle slots.
func NewPool(n int) *Pool {
	return &Pool{Particles: make([]Particle, n)}
}

// Len returns the pool size.
func (p *Pool) Len() int {
	return len(p.Particles)
}
