package field

import (
	opensimplex "github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/meshflow/config"
	"github.com/pthm-cable/meshflow/mesh"
)

// NoiseField drives particles with animated fractal noise. Two decorrelated
// noise channels pick a direction in the face's tangent basis, so the
// output already lies in the surface even before the stepper's projection.
type NoiseField struct {
	noise  opensimplex.Noise
	frames *mesh.Frames

	scale      float64
	octaves    int
	lacunarity float64
	gain       float64
	timeSpeed  float64
	strength   float64
}

// channelOffset decorrelates the second noise channel from the first.
const channelOffset = 137.3

// NewNoiseField creates a noise field over the given tangent frames.
func NewNoiseField(frames *mesh.Frames, cfg config.NoiseConfig, seed int64) *NoiseField {
	return &NoiseField{
		noise:      opensimplex.New(seed),
		frames:     frames,
		scale:      cfg.Scale,
		octaves:    cfg.Octaves,
		lacunarity: cfg.Lacunarity,
		gain:       cfg.Gain,
		timeSpeed:  cfg.TimeSpeed,
		strength:   cfg.Strength,
	}
}

// Sample returns a tangent vector whose direction and magnitude vary
// smoothly over the surface and over time.
func (f *NoiseField) Sample(face mesh.FaceID, p r3.Vec, t float64) r3.Vec {
	x := p.X * f.scale
	y := p.Y * f.scale
	z := p.Z * f.scale
	w := t * f.timeSpeed

	v1 := f.fbm(x, y, z, w)
	v2 := f.fbm(x+channelOffset, y+channelOffset, z+channelOffset, w)
	return f.frames.FromLocal(face, v1*f.strength, v2*f.strength)
}

// fbm sums octaves of simplex noise with the configured lacunarity and gain.
func (f *NoiseField) fbm(x, y, z, w float64) float64 {
	sum := 0.0
	amp := 1.0
	freq := 1.0
	norm := 0.0
	for o := 0; o < f.octaves; o++ {
		sum += amp * f.noise.Eval4(x*freq, y*freq, z*freq, w)
		norm += amp
		amp *= f.gain
		freq *= f.lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}
