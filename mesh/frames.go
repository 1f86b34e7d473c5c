package mesh

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerateFace is reported for zero-area triangles, which would make
// the barycentric solve singular.
var ErrDegenerateFace = errors.New("mesh: degenerate face")

// degenerateEps is the minimum squared-area scale a triangle must have.
const degenerateEps = 1e-12

// Frames holds the per-face orthonormal tangent basis (T1, T2, Normal) plus
// the cached edge vectors and dot products used by the barycentric solve.
// A vector expressed in one face's basis is meaningless in another's; use
// Transport to carry vectors across edges.
type Frames struct {
	T1     []r3.Vec
	T2     []r3.Vec
	Normal []r3.Vec

	origin   []r3.Vec // vertex a of each face
	e0, e1   []r3.Vec // b-a, c-a
	d00, d01 []float64
	d11      []float64
	invDenom []float64
}

// BuildFrames derives the tangent basis and barycentric coefficients for
// every face. A zero-area triangle is a fatal mesh error, not something
// handled per step.
func BuildFrames(m *Mesh) (*Frames, error) {
	n := len(m.Faces)
	fr := &Frames{
		T1:     make([]r3.Vec, n),
		T2:     make([]r3.Vec, n),
		Normal: make([]r3.Vec, n),

		origin:   make([]r3.Vec, n),
		e0:       make([]r3.Vec, n),
		e1:       make([]r3.Vec, n),
		d00:      make([]float64, n),
		d01:      make([]float64, n),
		d11:      make([]float64, n),
		invDenom: make([]float64, n),
	}

	for i, face := range m.Faces {
		a := m.Vertices[face[0]]
		b := m.Vertices[face[1]]
		c := m.Vertices[face[2]]

		e0 := r3.Sub(b, a)
		e1 := r3.Sub(c, a)
		cross := r3.Cross(e0, e1)
		if r3.Norm2(cross) < degenerateEps {
			return nil, fmt.Errorf("%w: face %d has near-zero area", ErrDegenerateFace, i)
		}

		normal := r3.Unit(cross)
		t1 := r3.Unit(e0)
		fr.T1[i] = t1
		fr.T2[i] = r3.Cross(normal, t1)
		fr.Normal[i] = normal

		fr.origin[i] = a
		fr.e0[i] = e0
		fr.e1[i] = e1
		fr.d00[i] = r3.Dot(e0, e0)
		fr.d01[i] = r3.Dot(e0, e1)
		fr.d11[i] = r3.Dot(e1, e1)
		denom := fr.d00[i]*fr.d11[i] - fr.d01[i]*fr.d01[i]
		if math.Abs(denom) < degenerateEps {
			return nil, fmt.Errorf("%w: face %d barycentric solve is singular", ErrDegenerateFace, i)
		}
		fr.invDenom[i] = 1 / denom
	}
	return fr, nil
}

// Barycentric solves the least-squares projection of p onto face f's plane,
// returning weights (u, v, w) for the face's vertices (a, b, c). The weights
// always sum to 1; negative components signal that p lies outside the
// triangle and are the edge-crossing signal for the stepper.
func (fr *Frames) Barycentric(f FaceID, p r3.Vec) [3]float64 {
	v2 := r3.Sub(p, fr.origin[f])
	d20 := r3.Dot(v2, fr.e0[f])
	d21 := r3.Dot(v2, fr.e1[f])
	v := (fr.d11[f]*d20 - fr.d01[f]*d21) * fr.invDenom[f]
	w := (fr.d00[f]*d21 - fr.d01[f]*d20) * fr.invDenom[f]
	return [3]float64{1 - v - w, v, w}
}

// ProjectTangent removes the component of v along face f's normal, leaving
// the part of v lying in the face plane.
func (fr *Frames) ProjectTangent(f FaceID, v r3.Vec) r3.Vec {
	n := fr.Normal[f]
	return r3.Sub(v, r3.Scale(r3.Dot(v, n), n))
}

// ToLocal expresses a tangent vector in face f's 2-D basis.
func (fr *Frames) ToLocal(f FaceID, v r3.Vec) (v1, v2 float64) {
	return r3.Dot(v, fr.T1[f]), r3.Dot(v, fr.T2[f])
}

// FromLocal converts face-local components back to a 3-D vector.
func (fr *Frames) FromLocal(f FaceID, v1, v2 float64) r3.Vec {
	return r3.Add(r3.Scale(v1, fr.T1[f]), r3.Scale(v2, fr.T2[f]))
}
