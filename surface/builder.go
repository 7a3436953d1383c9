package surface

import (
	"fmt"
	"log"

	"github.com/binzume/meshproc/geom"
)

// FromPolygons builds a mesh from indexed polygons. Faces which would make the mesh
// non-manifold are skipped. The returned error reports how many faces were skipped.
func FromPolygons(points []geom.Vector3, faces [][]int) (*Mesh, error) {
	m := NewMesh()
	vs := make([]Vertex, len(points))
	for i, p := range points {
		vs[i] = m.AddVertex(p)
	}
	skipped := 0
	face := make([]Vertex, 0, 4)
	for _, f := range faces {
		face = face[:0]
		ok := true
		for _, i := range f {
			if i < 0 || i >= len(vs) {
				ok = false
				break
			}
			face = append(face, vs[i])
		}
		if !ok {
			skipped++
			continue
		}
		if _, err := m.AddFace(face); err != nil {
			skipped++
		}
	}
	if skipped > 0 {
		log.Printf("surface: skipped %d of %d faces", skipped, len(faces))
		return m, fmt.Errorf("%w: %d faces skipped", ErrTopology, skipped)
	}
	return m, nil
}

// ToPolygons returns compact vertex positions and face indices of the mesh.
func (m *Mesh) ToPolygons() ([]geom.Vector3, [][]int) {
	index := make([]int, m.VerticesSize())
	points := make([]geom.Vector3, 0, m.NumVertices())
	for _, v := range m.Vertices() {
		index[v] = len(points)
		points = append(points, m.points.data[v])
	}
	faces := make([][]int, 0, m.NumFaces())
	for _, f := range m.Faces() {
		vs := m.FaceVertices(f)
		face := make([]int, len(vs))
		for i, v := range vs {
			face[i] = index[v]
		}
		faces = append(faces, face)
	}
	return points, faces
}

// Triangulate splits all polygon faces into triangles by ear clipping.
func (m *Mesh) Triangulate() {
	if m.IsTriangleMesh() {
		return
	}
	points, faces := m.ToPolygons()
	var tris [][]int
	for _, f := range faces {
		if len(f) == 3 {
			tris = append(tris, f)
			continue
		}
		poly := make([]geom.Vector3, len(f))
		for i, vi := range f {
			poly[i] = points[vi]
		}
		for _, t := range geom.Triangulate(poly) {
			tris = append(tris, []int{f[t[0]], f[t[1]], f[t[2]]})
		}
	}
	r, _ := FromPolygons(points, tris)
	*m = *r
}
