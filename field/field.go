// Package field defines the velocity/force fields that drive particles
// across the mesh surface. The engine only sees the Sampler interface;
// which concrete field backs it is decided at construction time.
package field

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/meshflow/mesh"
)

// Sampler produces a 3-D vector for a face at a point in time. It must be
// defined over every valid face id and safe for concurrent calls: the
// stepper queries it from multiple workers at once.
type Sampler interface {
	Sample(face mesh.FaceID, p r3.Vec, t float64) r3.Vec
}

// Advancer is an optional extension for fields with per-frame state. The
// engine calls Advance once per frame, before any worker samples.
type Advancer interface {
	Advance(t float64)
}

// Mode selects how a sampled vector combines with a particle's velocity.
type Mode uint8

const (
	// ModeForce accumulates the tangential sample into the velocity:
	// velocity += tangential * dt.
	ModeForce Mode = iota
	// ModeVelocity treats the field as prescribed: velocity = tangential.
	ModeVelocity
)

// ParseMode maps a config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "force":
		return ModeForce, nil
	case "velocity":
		return ModeVelocity, nil
	}
	return 0, fmt.Errorf("field: unknown mode %q", s)
}
