package field

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/meshflow/mesh"
)

// Position is the world-space location of a field source entity.
type Position struct {
	Pos r3.Vec
}

// Charge is the strength of a field source. Negative values repel.
type Charge struct {
	Strength float64
}

// AttractorField pulls particles toward (or pushes them away from) a set of
// point sources with an inverse-square falloff. Sources live as entities in
// an ECS world so callers can add, move, and remove them while the
// simulation runs; Advance snapshots them once per frame so Sample stays
// safe to call from many workers at once.
type AttractorField struct {
	world  *ecs.World
	mapper *ecs.Map2[Position, Charge]
	filter *ecs.Filter2[Position, Charge]

	softening float64

	// Read-only snapshot refreshed by Advance.
	sources []source
}

type source struct {
	pos      r3.Vec
	strength float64
}

// NewAttractorField creates an empty attractor field.
func NewAttractorField(softening float64) *AttractorField {
	world := ecs.NewWorld()
	return &AttractorField{
		world:     world,
		mapper:    ecs.NewMap2[Position, Charge](world),
		filter:    ecs.NewFilter2[Position, Charge](world),
		softening: softening,
	}
}

// Add places a source and returns its entity handle.
func (f *AttractorField) Add(pos r3.Vec, strength float64) ecs.Entity {
	return f.mapper.NewEntity(&Position{Pos: pos}, &Charge{Strength: strength})
}

// Remove deletes a source.
func (f *AttractorField) Remove(e ecs.Entity) {
	f.mapper.Remove(e)
}

// Move repositions an existing source.
func (f *AttractorField) Move(e ecs.Entity, pos r3.Vec) {
	p, _ := f.mapper.Get(e)
	p.Pos = pos
}

// Count returns the number of sources.
func (f *AttractorField) Count() int {
	n := 0
	query := f.filter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Advance rebuilds the source snapshot from the ECS world.
func (f *AttractorField) Advance(_ float64) {
	f.sources = f.sources[:0]
	query := f.filter.Query()
	for query.Next() {
		pos, charge := query.Get()
		f.sources = append(f.sources, source{pos: pos.Pos, strength: charge.Strength})
	}
}

// Sample sums the softened inverse-square pull of every source.
func (f *AttractorField) Sample(_ mesh.FaceID, p r3.Vec, _ float64) r3.Vec {
	var acc r3.Vec
	soft2 := f.softening * f.softening
	for _, s := range f.sources {
		d := r3.Sub(s.pos, p)
		r2 := r3.Norm2(d) + soft2
		// strength / r^2 along the unit direction = strength / r^3 along d.
		acc = r3.Add(acc, r3.Scale(s.strength/(r2*math.Sqrt(r2)), d))
	}
	return acc
}
