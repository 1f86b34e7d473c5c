package field

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/meshflow/mesh"
)

// GravityField applies a constant world-space acceleration. The stepper's
// tangent-plane projection turns it into downslope pull, so particles slide
// along the surface instead of falling off it. Point-mass gravity wells are
// covered by AttractorField.
type GravityField struct {
	G r3.Vec
}

// NewGravityField creates a constant gravity field.
func NewGravityField(g r3.Vec) *GravityField {
	return &GravityField{G: g}
}

// Sample returns the gravity vector regardless of face, point, or time.
func (f *GravityField) Sample(_ mesh.FaceID, _ r3.Vec, _ float64) r3.Vec {
	return f.G
}
