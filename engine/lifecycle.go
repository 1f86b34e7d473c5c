package engine

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/meshflow/mesh"
)

// BoundaryPolicy decides what happens when a particle's trajectory exits
// the mesh through an edge with no neighbor.
type BoundaryPolicy uint8

const (
	// BoundaryRespawn gives the particle a fresh spawn position.
	BoundaryRespawn BoundaryPolicy = iota
	// BoundaryClamp pins the particle to its last valid face and kills
	// its velocity.
	BoundaryClamp
)

// ParseBoundaryPolicy maps a config string to a BoundaryPolicy.
func ParseBoundaryPolicy(s string) (BoundaryPolicy, error) {
	switch s {
	case "respawn":
		return BoundaryRespawn, nil
	case "clamp":
		return BoundaryClamp, nil
	}
	return 0, fmt.Errorf("engine: unknown boundary policy %q", s)
}

// lifecycle implements spawn, respawn, and sink handling. Spawn-eligible
// and sink faces come from optional per-face masks.
type lifecycle struct {
	mesh      *mesh.Mesh
	policy    BoundaryPolicy
	spawnMask []bool // nil = every face eligible
	sinkMask  []bool // nil = no sinks
	attempts  int    // rejection-sampling budget against spawnMask
}

// pickFace selects a spawn face uniformly at random, rejection-sampling
// against the spawn mask within the attempt budget. If no eligible face
// turns up in time it falls back to face 0.
func (l *lifecycle) pickFace(rng *rand.Rand) mesh.FaceID {
	n := int32(l.mesh.NumFaces())
	if l.spawnMask == nil {
		return mesh.FaceID(rng.Int31n(n))
	}
	for i := 0; i < l.attempts; i++ {
		f := rng.Int31n(n)
		if l.spawnMask[f] {
			return mesh.FaceID(f)
		}
	}
	return 0
}

// respawn overwrites the slot with a fresh particle: a random eligible
// face and a uniformly random point inside it.
func (l *lifecycle) respawn(p *Particle, rng *rand.Rand) {
	f := l.pickFace(rng)
	u := rng.Float64()
	v := rng.Float64()
	// Fold into the unit triangle so the point distribution stays uniform.
	if u+v > 1 {
		u = 1 - u
		v = 1 - v
	}
	p.Face = f
	p.Bary = [3]float64{1 - u - v, u, v}
	p.Vel = r3.Vec{}
	p.Speed = 0
}

// spawnAll seeds every slot in the pool.
func (l *lifecycle) spawnAll(pool *Pool, rng *rand.Rand) {
	for i := range pool.Particles {
		l.respawn(&pool.Particles[i], rng)
	}
}

// sinkPass respawns every particle sitting in a sink face. Runs before the
// transport step each frame. Returns the number of particles respawned.
func (l *lifecycle) sinkPass(pool *Pool, rng *rand.Rand) int {
	if l.sinkMask == nil {
		return 0
	}
	n := 0
	for i := range pool.Particles {
		p := &pool.Particles[i]
		if l.sinkMask[p.Face] {
			l.respawn(p, rng)
			n++
		}
	}
	return n
}
