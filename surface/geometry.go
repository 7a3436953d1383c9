package surface

import (
	"math"

	"github.com/binzume/meshproc/geom"
)

// ComputeFaceNormal returns the unit normal of f. Polygons use Newell's method.
func (m *Mesh) ComputeFaceNormal(f Face) geom.Vector3 {
	h := m.FaceHalfedge(f)
	hend := h
	p0 := m.points.data[m.ToVertex(h)]
	h = m.Next(h)
	p1 := m.points.data[m.ToVertex(h)]
	h = m.Next(h)
	p2 := m.points.data[m.ToVertex(h)]

	if m.Next(h) == hend {
		return geom.TriangleNormal(p0, p1, p2)
	}

	var poly []geom.Vector3
	for _, v := range m.FaceVertices(f) {
		poly = append(poly, m.points.data[v])
	}
	return geom.PolygonNormal(poly).Normalize()
}

// UpdateFaceNormals computes "f:normal" for all faces and returns the property.
func (m *Mesh) UpdateFaceNormals() *Property[Face, geom.Vector3] {
	fnormal := FaceProperty(m, "f:normal", geom.Vector3{})
	for _, f := range m.Faces() {
		fnormal.data[f] = m.ComputeFaceNormal(f)
	}
	return fnormal
}

// ComputeVertexNormal returns the angle weighted average of the incident face normals.
func (m *Mesh) ComputeVertexNormal(v Vertex) geom.Vector3 {
	var n geom.Vector3
	p0 := m.points.data[v]
	for _, h := range m.VertexOutgoing(v) {
		if m.IsBorderHalfedge(h) {
			continue
		}
		p1 := m.points.data[m.ToVertex(h)].Sub(p0).Normalize()
		p2 := m.points.data[m.FromVertex(m.Prev(h))].Sub(p0).Normalize()
		angle := math.Acos(math.Max(-1, math.Min(1, p1.Dot(p2))))
		n = n.Add(m.ComputeFaceNormal(m.Face(h)).Scale(angle))
	}
	return n.Normalize()
}

func (m *Mesh) EdgeLength(e Edge) float64 {
	return m.points.data[m.EdgeVertex(e, 0)].Distance(m.points.data[m.EdgeVertex(e, 1)])
}

// FaceArea returns the area of a triangle face.
func (m *Mesh) FaceArea(f Face) float64 {
	vs := m.FaceVertices(f)
	var a float64
	for i := 1; i+1 < len(vs); i++ {
		a += geom.TriangleArea(m.points.data[vs[0]], m.points.data[vs[i]], m.points.data[vs[i+1]])
	}
	return a
}

func (m *Mesh) SurfaceArea() float64 {
	var a float64
	for _, f := range m.Faces() {
		a += m.FaceArea(f)
	}
	return a
}

// Bounds returns the axis aligned bounding box of all vertices.
func (m *Mesh) Bounds() (min, max geom.Vector3) {
	first := true
	for _, v := range m.Vertices() {
		p := m.points.data[v]
		if first {
			min, max = p, p
			first = false
			continue
		}
		min = min.Min(p)
		max = max.Max(p)
	}
	return
}

// Transform applies mat to all vertex positions.
func (m *Mesh) Transform(mat *geom.Matrix4) {
	for _, v := range m.Vertices() {
		m.points.data[v] = mat.ApplyTo(m.points.data[v])
	}
	if mat.Det() < 0 {
		m.ReverseOrientation()
	}
}

// ReverseOrientation flips all faces.
func (m *Mesh) ReverseOrientation() {
	points := make([]geom.Vector3, 0, m.NumVertices())
	index := map[Vertex]int{}
	for _, v := range m.Vertices() {
		index[v] = len(points)
		points = append(points, m.points.data[v])
	}
	var faces [][]int
	for _, f := range m.Faces() {
		vs := m.FaceVertices(f)
		face := make([]int, len(vs))
		for i, v := range vs {
			face[len(vs)-1-i] = index[v]
		}
		faces = append(faces, face)
	}
	r, _ := FromPolygons(points, faces)
	*m = *r
}

// CotanWeight returns the sum of the cotangents of the angles opposite to e.
func (m *Mesh) CotanWeight(e Edge) float64 {
	var weight float64
	h0 := m.EdgeHalfedge(e, 0)
	h1 := m.EdgeHalfedge(e, 1)
	p0 := m.points.data[m.ToVertex(h0)]
	p1 := m.points.data[m.ToVertex(h1)]

	for _, h := range []Halfedge{h0, h1} {
		if m.IsBorderHalfedge(h) {
			continue
		}
		p2 := m.points.data[m.ToVertex(m.Next(h))]
		d0 := p0.Sub(p2)
		d1 := p1.Sub(p2)
		area := d0.Cross(d1).Len()
		if area > math.SmallestNonzeroFloat64 {
			weight += geom.ClampCot(d0.Dot(d1) / area)
		}
	}
	return weight
}

// VoronoiArea returns the mixed Voronoi area of v.
func (m *Mesh) VoronoiArea(v Vertex) float64 {
	var area float64
	for _, h0 := range m.VertexOutgoing(v) {
		if m.IsBorderHalfedge(h0) {
			continue
		}
		h1 := m.Next(h0)
		h2 := m.Next(h1)

		p := m.points.data[m.ToVertex(h2)]
		q := m.points.data[m.ToVertex(h0)]
		r := m.points.data[m.ToVertex(h1)]

		pq := q.Sub(p)
		qr := r.Sub(q)
		pr := r.Sub(p)

		triArea := pq.Cross(pr).Len()
		if triArea <= math.SmallestNonzeroFloat64 {
			continue
		}

		dotp := pq.Dot(pr)
		dotq := -qr.Dot(pq)
		dotr := qr.Dot(pr)

		if dotp < 0 {
			// obtuse at v
			area += 0.25 * triArea
		} else if dotq < 0 || dotr < 0 {
			area += 0.125 * triArea
		} else {
			cotq := dotq / triArea
			cotr := dotr / triArea
			area += 0.125 * (pr.LenSqr()*geom.ClampCot(cotq) + pq.LenSqr()*geom.ClampCot(cotr))
		}
	}
	return area
}
