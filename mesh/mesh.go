// Package mesh provides the immutable triangle-mesh data the transport
// engine walks over: vertex/face storage, per-face adjacency, per-face
// tangent frames, and the parallel-transport matrices that carry tangent
// vectors between neighboring frames.
//
// Everything built here is read-only for the lifetime of a loaded mesh.
// Replacing the mesh means rebuilding all of it.
package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// FaceID indexes a triangle in a Mesh.
type FaceID int32

// Boundary marks an edge with no neighboring face.
const Boundary FaceID = -1

// Mesh holds vertex positions and triangles with consistent winding.
// It is assumed to be a valid 2-manifold; the only manifold check done
// here is rejecting edges shared by more than two faces (see BuildTopology).
type Mesh struct {
	Vertices []r3.Vec
	Faces    [][3]int32
}

// NumFaces returns the number of triangles.
func (m *Mesh) NumFaces() int {
	return len(m.Faces)
}

// Validate checks that every face references a valid vertex.
func (m *Mesh) Validate() error {
	nv := int32(len(m.Vertices))
	for i, f := range m.Faces {
		for _, v := range f {
			if v < 0 || v >= nv {
				return fmt.Errorf("mesh: face %d references vertex %d, have %d vertices", i, v, nv)
			}
		}
	}
	return nil
}

// FacePoint returns the world position of barycentric coordinates bary
// within face f.
func (m *Mesh) FacePoint(f FaceID, bary [3]float64) r3.Vec {
	face := m.Faces[f]
	a := m.Vertices[face[0]]
	b := m.Vertices[face[1]]
	c := m.Vertices[face[2]]
	return r3.Add(r3.Add(r3.Scale(bary[0], a), r3.Scale(bary[1], b)), r3.Scale(bary[2], c))
}

// Centroid returns the center point of face f.
func (m *Mesh) Centroid(f FaceID) r3.Vec {
	return m.FacePoint(f, [3]float64{1.0 / 3, 1.0 / 3, 1.0 / 3})
}

// OppositeEdge returns the local edge index across from vertex corner i.
// Edge i of a face (a,b,c) runs from vertex i to vertex (i+1)%3, so the
// edge not touching corner i is the one starting at the next corner.
func OppositeEdge(corner int) int {
	return (corner + 1) % 3
}

// EdgeVertices returns the vertex indices of local edge i of face f.
func (m *Mesh) EdgeVertices(f FaceID, edge int) (int32, int32) {
	face := m.Faces[f]
	return face[edge], face[(edge+1)%3]
}
