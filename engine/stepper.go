package engine

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/meshflow/field"
	"github.com/pthm-cable/meshflow/mesh"
)

// stepCounters accumulates per-worker event counts, merged after the
// parallel phase so workers never share state.
type stepCounters struct {
	respawns     int
	boundaryHits int
	hopTruncated int
}

// stepParticle advances one particle by dt: sample the field, project onto
// the tangent plane, integrate, then resolve edge crossings until the
// particle sits inside a face again. Only p and the caller-owned rng and
// counters are written; everything else read here is immutable per frame.
func (e *Engine) stepParticle(p *Particle, dt float64, rng *rand.Rand, c *stepCounters) {
	f := p.Face
	pos := e.mesh.FacePoint(f, p.Bary)

	// Sample and flatten onto the surface. Projection here is what keeps
	// particles from accumulating an off-surface velocity component.
	tangential := e.frames.ProjectTangent(f, e.sampler.Sample(f, pos, e.time))

	switch e.mode {
	case field.ModeForce:
		p.Vel = e.frames.ProjectTangent(f, r3.Add(p.Vel, r3.Scale(dt, tangential)))
	case field.ModeVelocity:
		p.Vel = tangential
	}

	if speed := r3.Norm(p.Vel); speed > e.params.MaxSpeed {
		p.Vel = r3.Scale(e.params.MaxSpeed/speed, p.Vel)
	}
	p.Vel = r3.Scale(1-e.params.Damping, p.Vel)

	// Propose the new position in 3-D, then express it barycentrically
	// against the current triangle. Out-of-range components are the
	// crossing signal, so this happens even when the point lands outside.
	proposed := r3.Add(pos, r3.Scale(dt, p.Vel))
	bary := e.frames.Barycentric(f, proposed)

	placed := false
	for hop := 0; hop < e.params.MaxEdgeHops; hop++ {
		corner, minW := mostNegative(bary)
		if minW >= -e.params.Epsilon {
			placed = true
			break
		}

		// The most-negative coordinate points at the exit edge: the one
		// across from that corner.
		edge := mesh.OppositeEdge(corner)
		neighbor := e.topo.Neighbor(f, edge)

		if neighbor == mesh.Boundary {
			c.boundaryHits++
			if e.life.policy == BoundaryRespawn {
				e.life.respawn(p, rng)
				c.respawns++
				return
			}
			// Clamp: keep the last valid face, pin the position inside
			// it, and stop the particle.
			bary = clampBary(bary)
			p.Vel = r3.Vec{}
			placed = true
			break
		}

		// Carry the velocity into the neighbor's frame, then re-project
		// the same proposed point against the new triangle. It may still
		// land outside (e.g. near a vertex), so the loop continues.
		v1, v2 := e.frames.ToLocal(f, p.Vel)
		w1, w2 := e.transport.Matrix(f, edge).Apply(v1, v2)
		f = neighbor
		p.Vel = e.frames.FromLocal(f, w1, w2)
		bary = e.frames.Barycentric(f, proposed)
	}

	if !placed {
		if _, minW := mostNegative(bary); minW < -e.params.Epsilon {
			// Hop budget exhausted: accept the slightly out-of-range
			// coordinates. The particle self-corrects on later frames.
			c.hopTruncated++
		}
	}

	p.Face = f
	p.Bary = bary
	p.Speed = r3.Norm(p.Vel)
}

// mostNegative returns the index and value of the smallest barycentric
// component. First match in coordinate order wins ties, keeping the exit
// edge choice deterministic.
func mostNegative(bary [3]float64) (int, float64) {
	idx := 0
	minW := bary[0]
	if bary[1] < minW {
		idx, minW = 1, bary[1]
	}
	if bary[2] < minW {
		idx, minW = 2, bary[2]
	}
	return idx, minW
}

// clampBary forces the coordinates into the valid triangle: negative
// components go to zero and the rest renormalize to sum 1.
func clampBary(bary [3]float64) [3]float64 {
	sum := 0.0
	for i, w := range bary {
		if w < 0 {
			bary[i] = 0
		}
		sum += bary[i]
	}
	if sum <= 0 {
		return [3]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}
	}
	for i := range bary {
		bary[i] /= sum
	}
	return bary
}
