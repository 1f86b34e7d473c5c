package mesh

import "gonum.org/v1/gonum/spatial/r3"

// TransportMatrix is a row-major 2x2 matrix re-expressing a face-local
// tangent vector in a neighboring face's basis.
type TransportMatrix [4]float64

// Apply multiplies the matrix by the column vector (v1, v2).
func (m TransportMatrix) Apply(v1, v2 float64) (float64, float64) {
	return m[0]*v1 + m[1]*v2, m[2]*v1 + m[3]*v2
}

// identityTransport is used for boundary edges, which are never crossed.
var identityTransport = TransportMatrix{1, 0, 0, 1}

// Transport holds the precomputed parallel-transport matrix for every
// (face, edge) pair with a neighbor. Transport preserves a vector's
// components along the shared edge and along the in-plane perpendicular,
// which is what "rotating the vector around the shared edge" means in the
// two face-local bases. Crossing an edge and coming straight back recovers
// the original vector.
type Transport struct {
	matrices [][3]TransportMatrix
}

// BuildTransport precomputes the transport matrices from the topology and
// tangent frames. Boundary edges get the identity.
func BuildTransport(m *Mesh, topo *Topology, frames *Frames) *Transport {
	tr := &Transport{matrices: make([][3]TransportMatrix, len(m.Faces))}

	for fi := range m.Faces {
		f := FaceID(fi)
		for e := 0; e < 3; e++ {
			g := topo.Neighbor(f, e)
			if g == Boundary {
				tr.matrices[fi][e] = identityTransport
				continue
			}

			va, vb := m.EdgeVertices(f, e)
			d := r3.Unit(r3.Sub(m.Vertices[vb], m.Vertices[va]))
			// In-plane perpendiculars to the shared edge on either side.
			uf := r3.Cross(frames.Normal[f], d)
			ug := r3.Cross(frames.Normal[g], d)

			// Decompose f's basis vectors into (edge, perpendicular)
			// components, then rebuild them in g's basis.
			t1d, t1u := r3.Dot(frames.T1[f], d), r3.Dot(frames.T1[f], uf)
			t2d, t2u := r3.Dot(frames.T2[f], d), r3.Dot(frames.T2[f], uf)

			col1 := r3.Add(r3.Scale(t1d, d), r3.Scale(t1u, ug))
			col2 := r3.Add(r3.Scale(t2d, d), r3.Scale(t2u, ug))

			tr.matrices[fi][e] = TransportMatrix{
				r3.Dot(col1, frames.T1[g]), r3.Dot(col2, frames.T1[g]),
				r3.Dot(col1, frames.T2[g]), r3.Dot(col2, frames.T2[g]),
			}
		}
	}
	return tr
}

// Matrix returns the transport matrix for local edge e of face f.
func (t *Transport) Matrix(f FaceID, edge int) TransportMatrix {
	return t.matrices[f][edge]
}
