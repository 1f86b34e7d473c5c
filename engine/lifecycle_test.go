package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/meshflow/field"
	"github.com/pthm-cable/meshflow/mesh"
)

func TestParseBoundaryPolicy(t *testing.T) {
	if p, err := ParseBoundaryPolicy("respawn"); err != nil || p != BoundaryRespawn {
		t.Errorf("ParseBoundaryPolicy(respawn) = %v, %v", p, err)
	}
	if p, err := ParseBoundaryPolicy("clamp"); err != nil || p != BoundaryClamp {
		t.Errorf("ParseBoundaryPolicy(clamp) = %v, %v", p, err)
	}
	if _, err := ParseBoundaryPolicy("bounce"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestRespawnProducesValidParticles(t *testing.T) {
	m := mesh.Icosphere(1, 1)
	l := &lifecycle{mesh: m, attempts: 16}
	rng := rand.New(rand.NewSource(42))

	var p Particle
	for i := 0; i < 1000; i++ {
		l.respawn(&p, rng)
		if p.Face < 0 || int(p.Face) >= m.NumFaces() {
			t.Fatalf("respawn %d: invalid face %d", i, p.Face)
		}
		sum := 0.0
		for _, w := range p.Bary {
			if w < 0 || w > 1 {
				t.Fatalf("respawn %d: bary component out of range: %v", i, p.Bary)
			}
			sum += w
		}
		if math.Abs(sum-1) > 1e-12 {
			t.Fatalf("respawn %d: bary sum = %g", i, sum)
		}
		if p.Speed != 0 {
			t.Fatalf("respawn %d: nonzero speed %g", i, p.Speed)
		}
	}
}

func TestSpawnMaskRestrictsFaces(t *testing.T) {
	mask := []bool{false, true}
	e := newTestEngine(t, mesh.TwoTriangles(), constField{}, testParams(), Options{
		Mode:      field.ModeVelocity,
		PoolSize:  32,
		Seed:      5,
		SpawnMask: mask,
	})

	for i, p := range e.Pool().Particles {
		if p.Face != 1 {
			t.Errorf("particle %d spawned on masked-off face %d", i, p.Face)
		}
	}
}

func TestSpawnMaskFallback(t *testing.T) {
	// With every face masked off the rejection budget runs out and spawns
	// land on face 0.
	mask := []bool{false, false}
	e := newTestEngine(t, mesh.TwoTriangles(), constField{}, testParams(), Options{
		Mode:          field.ModeVelocity,
		PoolSize:      8,
		Seed:          5,
		SpawnMask:     mask,
		SpawnAttempts: 4,
	})

	for i, p := range e.Pool().Particles {
		if p.Face != 0 {
			t.Errorf("particle %d spawned on face %d, want fallback face 0", i, p.Face)
		}
	}
}

func TestSinkPassRespawns(t *testing.T) {
	// Spawning is pinned to face 0, which is also a sink, so every step
	// begins by respawning the whole pool.
	const n = 8
	e := newTestEngine(t, mesh.TwoTriangles(), constField{}, testParams(), Options{
		Mode:      field.ModeVelocity,
		PoolSize:  n,
		Seed:      9,
		SpawnMask: []bool{true, false},
		SinkMask:  []bool{true, false},
	})

	stats := e.Step()
	if stats.SinkRespawns != n {
		t.Errorf("expected %d sink respawns, got %d", n, stats.SinkRespawns)
	}
	if stats.Respawns != n {
		t.Errorf("expected sink respawns included in total, got %d", stats.Respawns)
	}
	// The sink respawn lands back on face 0, so the next step drains again.
	stats = e.Step()
	if stats.SinkRespawns != n {
		t.Errorf("second step: expected %d sink respawns, got %d", n, stats.SinkRespawns)
	}
}
