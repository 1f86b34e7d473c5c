package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Procedural meshes used by the runner, the viewer, and tests. Real meshes
// come from an external loader already validated as 2-manifold; these cover
// the closed (icosphere) and open-boundary (grid) cases without one.

// TwoTriangles returns a unit square split into two triangles sharing the
// diagonal edge, lying in the z=0 plane with +z normals.
func TwoTriangles() *Mesh {
	return &Mesh{
		Vertices: []r3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 1, Y: 1, Z: 0},
		},
		Faces: [][3]int32{
			{0, 1, 2},
			{1, 3, 2},
		},
	}
}

// Grid returns an n-by-n cell planar grid spanning [-extent, extent] in x
// and y at z=0, with an open boundary on all four sides.
func Grid(n int, extent float64) *Mesh {
	m := &Mesh{}
	step := 2 * extent / float64(n)
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			m.Vertices = append(m.Vertices, r3.Vec{
				X: -extent + float64(i)*step,
				Y: -extent + float64(j)*step,
			})
		}
	}
	stride := int32(n + 1)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			v0 := int32(j)*stride + int32(i)
			v1 := v0 + 1
			v2 := v0 + stride
			v3 := v2 + 1
			m.Faces = append(m.Faces, [3]int32{v0, v1, v2}, [3]int32{v1, v3, v2})
		}
	}
	return m
}

// Icosphere returns a subdivided icosahedron projected onto a sphere of the
// given radius. subdiv 0 is the raw icosahedron (20 faces); each level
// quadruples the face count. The result is closed: no boundary edges.
func Icosphere(subdiv int, radius float64) *Mesh {
	phi := (1 + math.Sqrt(5)) / 2

	m := &Mesh{
		Vertices: []r3.Vec{
			{X: -1, Y: phi}, {X: 1, Y: phi}, {X: -1, Y: -phi}, {X: 1, Y: -phi},
			{Y: -1, Z: phi}, {Y: 1, Z: phi}, {Y: -1, Z: -phi}, {Y: 1, Z: -phi},
			{X: phi, Z: -1}, {X: phi, Z: 1}, {X: -phi, Z: -1}, {X: -phi, Z: 1},
		},
		Faces: [][3]int32{
			{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
			{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
			{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
			{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
		},
	}

	for s := 0; s < subdiv; s++ {
		midpoints := make(map[[2]int32]int32)
		midpoint := func(a, b int32) int32 {
			key := edgeKey(a, b)
			if idx, ok := midpoints[key]; ok {
				return idx
			}
			mid := r3.Scale(0.5, r3.Add(m.Vertices[a], m.Vertices[b]))
			idx := int32(len(m.Vertices))
			m.Vertices = append(m.Vertices, mid)
			midpoints[key] = idx
			return idx
		}

		next := make([][3]int32, 0, len(m.Faces)*4)
		for _, f := range m.Faces {
			ab := midpoint(f[0], f[1])
			bc := midpoint(f[1], f[2])
			ca := midpoint(f[2], f[0])
			next = append(next,
				[3]int32{f[0], ab, ca},
				[3]int32{f[1], bc, ab},
				[3]int32{f[2], ca, bc},
				[3]int32{ab, bc, ca},
			)
		}
		m.Faces = next
	}

	for i, v := range m.Vertices {
		m.Vertices[i] = r3.Scale(radius, r3.Unit(v))
	}
	return m
}
