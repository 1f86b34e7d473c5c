package field

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/meshflow/config"
	"github.com/pthm-cable/meshflow/mesh"
)

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("force"); err != nil || m != ModeForce {
		t.Errorf("ParseMode(force) = %v, %v", m, err)
	}
	if m, err := ParseMode("velocity"); err != nil || m != ModeVelocity {
		t.Errorf("ParseMode(velocity) = %v, %v", m, err)
	}
	if _, err := ParseMode("magnetism"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func noiseTestConfig() config.NoiseConfig {
	return config.NoiseConfig{
		Scale:      1.5,
		Octaves:    3,
		Lacunarity: 2,
		Gain:       0.5,
		TimeSpeed:  0.4,
		Strength:   1,
	}
}

func TestNoiseFieldTangent(t *testing.T) {
	m := mesh.Icosphere(1, 1)
	frames, err := mesh.BuildFrames(m)
	if err != nil {
		t.Fatalf("BuildFrames failed: %v", err)
	}
	f := NewNoiseField(frames, noiseTestConfig(), 42)

	for fi := 0; fi < m.NumFaces(); fi++ {
		face := mesh.FaceID(fi)
		v := f.Sample(face, m.Centroid(face), 0.5)
		if d := math.Abs(r3.Dot(v, frames.Normal[fi])); d > 1e-9 {
			t.Fatalf("face %d: noise sample has normal component %g", fi, d)
		}
	}
}

func TestNoiseFieldDeterministic(t *testing.T) {
	m := mesh.Icosphere(0, 1)
	frames, err := mesh.BuildFrames(m)
	if err != nil {
		t.Fatalf("BuildFrames failed: %v", err)
	}

	a := NewNoiseField(frames, noiseTestConfig(), 7)
	b := NewNoiseField(frames, noiseTestConfig(), 7)
	c := NewNoiseField(frames, noiseTestConfig(), 8)

	p := m.Centroid(3)
	va := a.Sample(3, p, 1.25)
	vb := b.Sample(3, p, 1.25)
	if va != vb {
		t.Errorf("same seed gave different samples: %v vs %v", va, vb)
	}
	if vc := c.Sample(3, p, 1.25); vc == va {
		t.Errorf("different seed gave identical sample %v", vc)
	}
}

func TestNoiseFieldVariesOverTime(t *testing.T) {
	m := mesh.Icosphere(0, 1)
	frames, err := mesh.BuildFrames(m)
	if err != nil {
		t.Fatalf("BuildFrames failed: %v", err)
	}
	f := NewNoiseField(frames, noiseTestConfig(), 42)

	p := m.Centroid(0)
	v0 := f.Sample(0, p, 0)
	v1 := f.Sample(0, p, 10)
	if v0 == v1 {
		t.Errorf("noise sample did not change over time: %v", v0)
	}
}

func TestGravityField(t *testing.T) {
	g := r3.Vec{X: 0, Y: -9.81, Z: 0}
	f := NewGravityField(g)
	if got := f.Sample(0, r3.Vec{X: 1, Y: 2, Z: 3}, 5); got != g {
		t.Errorf("Sample = %v, want %v", got, g)
	}
	if got := f.Sample(7, r3.Vec{}, 0); got != g {
		t.Errorf("Sample = %v, want %v", got, g)
	}
}

func TestAttractorFieldPullsToward(t *testing.T) {
	f := NewAttractorField(0.1)
	f.Add(r3.Vec{X: 1}, 2)
	f.Advance(0)

	v := f.Sample(0, r3.Vec{}, 0)
	if v.X <= 0 {
		t.Errorf("expected pull toward +x source, got %v", v)
	}
	if math.Abs(v.Y) > 1e-12 || math.Abs(v.Z) > 1e-12 {
		t.Errorf("expected pull along x only, got %v", v)
	}

	// Negative strength repels.
	r := NewAttractorField(0.1)
	r.Add(r3.Vec{X: 1}, -2)
	r.Advance(0)
	if v := r.Sample(0, r3.Vec{}, 0); v.X >= 0 {
		t.Errorf("expected push away from -x source, got %v", v)
	}
}

func TestAttractorFieldFalloff(t *testing.T) {
	f := NewAttractorField(0.01)
	f.Add(r3.Vec{}, 1)
	f.Advance(0)

	near := r3.Norm(f.Sample(0, r3.Vec{X: 0.5}, 0))
	far := r3.Norm(f.Sample(0, r3.Vec{X: 2}, 0))
	if near <= far {
		t.Errorf("pull should weaken with distance: near %g, far %g", near, far)
	}
}

func TestAttractorFieldLifecycle(t *testing.T) {
	f := NewAttractorField(0.1)
	e1 := f.Add(r3.Vec{X: 1}, 1)
	f.Add(r3.Vec{X: -1}, 1)
	if f.Count() != 2 {
		t.Fatalf("Count = %d after two adds", f.Count())
	}

	// Sample reflects the world only after Advance snapshots it.
	if v := f.Sample(0, r3.Vec{}, 0); v != (r3.Vec{}) {
		t.Errorf("expected zero sample before first Advance, got %v", v)
	}
	f.Advance(0)
	// Two equal opposing sources cancel at the origin.
	if v := f.Sample(0, r3.Vec{}, 0); r3.Norm(v) > 1e-12 {
		t.Errorf("opposing sources should cancel at origin, got %v", v)
	}

	f.Move(e1, r3.Vec{X: 3})
	f.Advance(0)
	if v := f.Sample(0, r3.Vec{}, 0); v.X >= 0 {
		t.Errorf("after moving one source away, net pull should be -x, got %v", v)
	}

	f.Remove(e1)
	f.Advance(0)
	if f.Count() != 1 {
		t.Errorf("Count = %d after remove", f.Count())
	}
}

func TestLoadBufferCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.csv")
	data := "face,vx,vy,vz\n0,1.5,0,0\n2,0,-0.5,0.25\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	f, err := LoadBufferCSV(path, 4)
	if err != nil {
		t.Fatalf("LoadBufferCSV failed: %v", err)
	}

	if v := f.Sample(0, r3.Vec{}, 0); v != (r3.Vec{X: 1.5}) {
		t.Errorf("face 0 sample = %v", v)
	}
	if v := f.Sample(1, r3.Vec{}, 0); v != (r3.Vec{}) {
		t.Errorf("unlisted face should sample zero, got %v", v)
	}
	if v := f.Sample(2, r3.Vec{}, 0); v != (r3.Vec{Y: -0.5, Z: 0.25}) {
		t.Errorf("face 2 sample = %v", v)
	}
}

func TestLoadBufferCSVRejectsOutOfRangeFace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	data := "face,vx,vy,vz\n9,1,0,0\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := LoadBufferCSV(path, 4); err == nil {
		t.Fatal("expected error for out-of-range face id")
	}
}
