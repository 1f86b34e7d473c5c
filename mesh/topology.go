package mesh

import (
	"errors"
	"fmt"
)

// ErrNonManifold is reported when an edge is shared by more than two faces.
var ErrNonManifold = errors.New("mesh: non-manifold edge")

// Topology stores, for every face and each of its three edges, the face on
// the other side of that edge, or Boundary if there is none.
type Topology struct {
	Neighbors [][3]FaceID
}

// BuildTopology scans every face's edges, keying each edge by its unordered
// vertex pair, and matches the at-most-two faces sharing that key. An edge
// seen by a single face maps to Boundary. An edge seen by more than two
// faces aborts the build: the engine refuses to run on partial topology.
func BuildTopology(m *Mesh) (*Topology, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	type edgeRef struct {
		face FaceID
		edge int
	}
	edges := make(map[[2]int32][]edgeRef, len(m.Faces)*3/2)

	for fi := range m.Faces {
		for e := 0; e < 3; e++ {
			va, vb := m.EdgeVertices(FaceID(fi), e)
			key := edgeKey(va, vb)
			refs := append(edges[key], edgeRef{face: FaceID(fi), edge: e})
			if len(refs) > 2 {
				return nil, fmt.Errorf("%w: vertices (%d,%d) shared by %d faces",
					ErrNonManifold, key[0], key[1], len(refs))
			}
			edges[key] = refs
		}
	}

	topo := &Topology{Neighbors: make([][3]FaceID, len(m.Faces))}
	for i := range topo.Neighbors {
		topo.Neighbors[i] = [3]FaceID{Boundary, Boundary, Boundary}
	}
	for _, refs := range edges {
		if len(refs) == 2 {
			topo.Neighbors[refs[0].face][refs[0].edge] = refs[1].face
			topo.Neighbors[refs[1].face][refs[1].edge] = refs[0].face
		}
	}
	return topo, nil
}

// Neighbor returns the face across local edge e of face f, or Boundary.
func (t *Topology) Neighbor(f FaceID, edge int) FaceID {
	return t.Neighbors[f][edge]
}

// edgeKey returns the unordered vertex pair, smaller index first.
func edgeKey(a, b int32) [2]int32 {
	if a < b {
		return [2]int32{a, b}
	}
	return [2]int32{b, a}
}
