package surface

import (
	"math"

	"github.com/binzume/meshproc/geom"
)

// NewIcosahedron returns a regular icosahedron with vertices on the sphere of the radius.
func NewIcosahedron(radius float64) *Mesh {
	t := (1 + math.Sqrt(5)) / 2
	points := []geom.Vector3{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	}
	for i, p := range points {
		points[i] = p.Normalize().Scale(radius)
	}
	faces := [][]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	m, _ := FromPolygons(points, faces)
	return m
}

// NewIcosphere subdivides an icosahedron level times and projects the vertices to the sphere.
func NewIcosphere(radius float64, level int) *Mesh {
	points, faces := NewIcosahedron(1).ToPolygons()
	for i := 0; i < level; i++ {
		midpoints := map[[2]int]int{}
		midpoint := func(a, b int) int {
			key := [2]int{a, b}
			if a > b {
				key = [2]int{b, a}
			}
			if idx, ok := midpoints[key]; ok {
				return idx
			}
			points = append(points, points[a].Add(points[b]).Normalize())
			midpoints[key] = len(points) - 1
			return len(points) - 1
		}
		var subdivided [][]int
		for _, f := range faces {
			a, b, c := midpoint(f[0], f[1]), midpoint(f[1], f[2]), midpoint(f[2], f[0])
			subdivided = append(subdivided,
				[]int{f[0], a, c}, []int{f[1], b, a}, []int{f[2], c, b}, []int{a, b, c})
		}
		faces = subdivided
	}
	for i, p := range points {
		points[i] = p.Scale(radius)
	}
	m, _ := FromPolygons(points, faces)
	return m
}

// NewGrid returns a triangulated nx by ny grid of unit cells on the XY plane facing +Z.
// Vertex (i, j) has index j*(nx+1)+i.
func NewGrid(nx, ny int) *Mesh {
	var points []geom.Vector3
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			points = append(points, geom.Vector3{X: float64(i), Y: float64(j)})
		}
	}
	var faces [][]int
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a := j*(nx+1) + i
			b, c, d := a+1, a+nx+2, a+nx+1
			faces = append(faces, []int{a, b, c}, []int{a, c, d})
		}
	}
	m, _ := FromPolygons(points, faces)
	return m
}
