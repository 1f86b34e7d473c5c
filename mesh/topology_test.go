package mesh

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestTwoTrianglesAdjacency(t *testing.T) {
	m := TwoTriangles()
	topo, err := BuildTopology(m)
	if err != nil {
		t.Fatalf("BuildTopology failed: %v", err)
	}

	// The faces share the diagonal (1,2): edge 1 of face 0, edge 2 of face 1.
	if got := topo.Neighbor(0, 1); got != 1 {
		t.Errorf("expected face 0 edge 1 -> face 1, got %d", got)
	}
	if got := topo.Neighbor(1, 2); got != 0 {
		t.Errorf("expected face 1 edge 2 -> face 0, got %d", got)
	}

	// All other edges are boundary.
	for _, fe := range [][2]int{{0, 0}, {0, 2}, {1, 0}, {1, 1}} {
		if got := topo.Neighbor(FaceID(fe[0]), fe[1]); got != Boundary {
			t.Errorf("expected face %d edge %d to be boundary, got %d", fe[0], fe[1], got)
		}
	}
}

func TestAdjacencySymmetry(t *testing.T) {
	m := Icosphere(1, 1)
	topo, err := BuildTopology(m)
	if err != nil {
		t.Fatalf("BuildTopology failed: %v", err)
	}

	for fi := range m.Faces {
		f := FaceID(fi)
		for e := 0; e < 3; e++ {
			g := topo.Neighbor(f, e)
			if g == Boundary {
				t.Errorf("icosphere should be closed, face %d edge %d is boundary", f, e)
				continue
			}
			back := false
			for e2 := 0; e2 < 3; e2++ {
				if topo.Neighbor(g, e2) == f {
					back = true
				}
			}
			if !back {
				t.Errorf("face %d edge %d -> %d, but %d has no edge back to %d", f, e, g, g, f)
			}
		}
	}
}

func TestGridHasBoundary(t *testing.T) {
	m := Grid(2, 1)
	topo, err := BuildTopology(m)
	if err != nil {
		t.Fatalf("BuildTopology failed: %v", err)
	}

	boundaryEdges := 0
	for fi := range m.Faces {
		for e := 0; e < 3; e++ {
			if topo.Neighbor(FaceID(fi), e) == Boundary {
				boundaryEdges++
			}
		}
	}
	// 2x2 grid has 8 perimeter edges.
	if boundaryEdges != 8 {
		t.Errorf("expected 8 boundary edges, got %d", boundaryEdges)
	}
}

func TestNonManifoldRejected(t *testing.T) {
	m := &Mesh{
		Vertices: []r3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 1},
			{X: 0, Y: -1, Z: 0},
		},
		// Three faces share edge (0,1).
		Faces: [][3]int32{
			{0, 1, 2},
			{0, 1, 3},
			{1, 0, 4},
		},
	}
	_, err := BuildTopology(m)
	if !errors.Is(err, ErrNonManifold) {
		t.Fatalf("expected ErrNonManifold, got %v", err)
	}
}

func TestFaceIndexOutOfRange(t *testing.T) {
	m := &Mesh{
		Vertices: []r3.Vec{{X: 0}, {X: 1}, {Y: 1}},
		Faces:    [][3]int32{{0, 1, 5}},
	}
	if _, err := BuildTopology(m); err == nil {
		t.Fatal("expected error for out-of-range vertex index")
	}
}

func TestOppositeEdge(t *testing.T) {
	// Edge i runs from vertex i to i+1, so the edge across from corner 0
	// is edge 1 (between vertices 1 and 2), and so on.
	for corner, want := range []int{1, 2, 0} {
		if got := OppositeEdge(corner); got != want {
			t.Errorf("OppositeEdge(%d) = %d, want %d", corner, got, want)
		}
	}
}
