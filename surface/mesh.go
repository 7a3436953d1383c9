// Package surface implements an index based halfedge mesh.
//
// Halfedges are stored in pairs: the halfedges of edge e are 2e and 2e+1, so the
// opposite of h is h^1. Elements removed by topological operations are only marked
// as deleted until CollectGarbage compacts the arrays.
package surface

import (
	"github.com/binzume/meshproc/geom"
)

type vertexConnectivity struct {
	halfedge Halfedge // outgoing halfedge. border halfedge if the vertex is on the border.
}

type halfedgeConnectivity struct {
	face   Face
	vertex Vertex // target vertex
	next   Halfedge
	prev   Halfedge
}

type faceConnectivity struct {
	halfedge Halfedge
}

// Mesh is a halfedge mesh of polygonal faces.
type Mesh struct {
	vprops propertyContainer
	hprops propertyContainer
	eprops propertyContainer
	fprops propertyContainer

	vconn *Property[Vertex, vertexConnectivity]
	hconn *Property[Halfedge, halfedgeConnectivity]
	fconn *Property[Face, faceConnectivity]

	points   *Property[Vertex, geom.Vector3]
	vdeleted *Property[Vertex, bool]
	edeleted *Property[Edge, bool]
	fdeleted *Property[Face, bool]

	deletedVertices int
	deletedEdges    int
	deletedFaces    int
	garbage         bool
}

func NewMesh() *Mesh {
	m := &Mesh{}
	m.vconn = AddVertexProperty(m, "v:connectivity", vertexConnectivity{halfedge: InvalidHalfedge})
	m.hconn = AddHalfedgeProperty(m, "h:connectivity", halfedgeConnectivity{
		face: InvalidFace, vertex: InvalidVertex, next: InvalidHalfedge, prev: InvalidHalfedge})
	m.fconn = AddFaceProperty(m, "f:connectivity", faceConnectivity{halfedge: InvalidHalfedge})
	m.points = AddVertexProperty(m, "v:point", geom.Vector3{})
	m.vdeleted = AddVertexProperty(m, "v:deleted", false)
	m.edeleted = AddEdgeProperty(m, "e:deleted", false)
	m.fdeleted = AddFaceProperty(m, "f:deleted", false)
	return m
}

// Clone returns a deep copy of the connectivity and positions. Custom properties are not copied.
func (m *Mesh) Clone() *Mesh {
	c := NewMesh()
	c.vprops.resize(m.vprops.size)
	c.hprops.resize(m.hprops.size)
	c.eprops.resize(m.eprops.size)
	c.fprops.resize(m.fprops.size)
	copy(c.vconn.data, m.vconn.data)
	copy(c.hconn.data, m.hconn.data)
	copy(c.fconn.data, m.fconn.data)
	copy(c.points.data, m.points.data)
	copy(c.vdeleted.data, m.vdeleted.data)
	copy(c.edeleted.data, m.edeleted.data)
	copy(c.fdeleted.data, m.fdeleted.data)
	c.deletedVertices = m.deletedVertices
	c.deletedEdges = m.deletedEdges
	c.deletedFaces = m.deletedFaces
	c.garbage = m.garbage
	return c
}

// Clear removes all elements. Custom properties are kept but emptied.
func (m *Mesh) Clear() {
	m.vprops.resize(0)
	m.hprops.resize(0)
	m.eprops.resize(0)
	m.fprops.resize(0)
	m.deletedVertices = 0
	m.deletedEdges = 0
	m.deletedFaces = 0
	m.garbage = false
}

// Counts

// VerticesSize returns the size of the vertex arrays including deleted vertices.
func (m *Mesh) VerticesSize() int  { return m.vprops.size }
func (m *Mesh) HalfedgesSize() int { return m.hprops.size }
func (m *Mesh) EdgesSize() int     { return m.eprops.size }
func (m *Mesh) FacesSize() int     { return m.fprops.size }

func (m *Mesh) NumVertices() int  { return m.VerticesSize() - m.deletedVertices }
func (m *Mesh) NumHalfedges() int { return m.HalfedgesSize() - 2*m.deletedEdges }
func (m *Mesh) NumEdges() int     { return m.EdgesSize() - m.deletedEdges }
func (m *Mesh) NumFaces() int     { return m.FacesSize() - m.deletedFaces }

func (m *Mesh) IsEmpty() bool { return m.NumVertices() == 0 }

// HasGarbage reports whether some elements are marked as deleted.
func (m *Mesh) HasGarbage() bool { return m.garbage }

func (m *Mesh) IsDeletedVertex(v Vertex) bool { return m.vdeleted.data[v] }
func (m *Mesh) IsDeletedEdge(e Edge) bool     { return m.edeleted.data[e] }
func (m *Mesh) IsDeletedFace(f Face) bool     { return m.fdeleted.data[f] }
func (m *Mesh) IsDeletedHalfedge(h Halfedge) bool {
	return m.edeleted.data[m.EdgeOf(h)]
}

// Element lists. Deleted elements are skipped.

func (m *Mesh) Vertices() []Vertex {
	vs := make([]Vertex, 0, m.NumVertices())
	for i := 0; i < m.VerticesSize(); i++ {
		if !m.vdeleted.data[i] {
			vs = append(vs, Vertex(i))
		}
	}
	return vs
}

func (m *Mesh) Halfedges() []Halfedge {
	hs := make([]Halfedge, 0, m.NumHalfedges())
	for i := 0; i < m.HalfedgesSize(); i++ {
		if !m.edeleted.data[i>>1] {
			hs = append(hs, Halfedge(i))
		}
	}
	return hs
}

func (m *Mesh) Edges() []Edge {
	es := make([]Edge, 0, m.NumEdges())
	for i := 0; i < m.EdgesSize(); i++ {
		if !m.edeleted.data[i] {
			es = append(es, Edge(i))
		}
	}
	return es
}

func (m *Mesh) Faces() []Face {
	fs := make([]Face, 0, m.NumFaces())
	for i := 0; i < m.FacesSize(); i++ {
		if !m.fdeleted.data[i] {
			fs = append(fs, Face(i))
		}
	}
	return fs
}

// Low level element creation

func (m *Mesh) newVertex() Vertex {
	m.vprops.pushBack()
	return Vertex(m.VerticesSize() - 1)
}

// newEdge allocates an edge and returns its halfedge pointing from start to end.
func (m *Mesh) newEdge(start, end Vertex) Halfedge {
	m.eprops.pushBack()
	m.hprops.pushBack()
	m.hprops.pushBack()

	h0 := Halfedge(m.HalfedgesSize() - 2)
	h1 := Halfedge(m.HalfedgesSize() - 1)
	m.setVertex(h0, end)
	m.setVertex(h1, start)
	return h0
}

func (m *Mesh) newFace() Face {
	m.fprops.pushBack()
	return Face(m.FacesSize() - 1)
}

// AddVertex adds an isolated vertex.
func (m *Mesh) AddVertex(p geom.Vector3) Vertex {
	v := m.newVertex()
	m.points.data[v] = p
	return v
}

// Positions

func (m *Mesh) Position(v Vertex) geom.Vector3 { return m.points.data[v] }

func (m *Mesh) SetPosition(v Vertex, p geom.Vector3) { m.points.data[v] = p }

// Points returns the position property.
func (m *Mesh) Points() *Property[Vertex, geom.Vector3] { return m.points }

// Connectivity

func (m *Mesh) HalfedgeOf(v Vertex) Halfedge { return m.vconn.data[v].halfedge }

func (m *Mesh) setHalfedge(v Vertex, h Halfedge) { m.vconn.data[v].halfedge = h }

func (m *Mesh) FaceHalfedge(f Face) Halfedge { return m.fconn.data[f].halfedge }

func (m *Mesh) setFaceHalfedge(f Face, h Halfedge) { m.fconn.data[f].halfedge = h }

func (m *Mesh) ToVertex(h Halfedge) Vertex { return m.hconn.data[h].vertex }

func (m *Mesh) FromVertex(h Halfedge) Vertex { return m.ToVertex(m.Opposite(h)) }

func (m *Mesh) setVertex(h Halfedge, v Vertex) { m.hconn.data[h].vertex = v }

func (m *Mesh) Face(h Halfedge) Face { return m.hconn.data[h].face }

func (m *Mesh) setFace(h Halfedge, f Face) { m.hconn.data[h].face = f }

func (m *Mesh) Next(h Halfedge) Halfedge { return m.hconn.data[h].next }

func (m *Mesh) Prev(h Halfedge) Halfedge { return m.hconn.data[h].prev }

// setNext links h -> nh and nh.prev = h.
func (m *Mesh) setNext(h, nh Halfedge) {
	m.hconn.data[h].next = nh
	m.hconn.data[nh].prev = h
}

func (m *Mesh) Opposite(h Halfedge) Halfedge { return h ^ 1 }

// CCWRotated rotates the outgoing halfedge h counter-clockwise around its source vertex.
func (m *Mesh) CCWRotated(h Halfedge) Halfedge { return m.Opposite(m.Prev(h)) }

// CWRotated rotates the outgoing halfedge h clockwise around its source vertex.
func (m *Mesh) CWRotated(h Halfedge) Halfedge { return m.Next(m.Opposite(h)) }

func (m *Mesh) EdgeOf(h Halfedge) Edge { return Edge(h >> 1) }

// EdgeHalfedge returns the i-th (0 or 1) halfedge of e.
func (m *Mesh) EdgeHalfedge(e Edge, i int) Halfedge { return Halfedge(int(e)<<1 + i) }

// EdgeVertex returns the i-th (0 or 1) vertex of e.
func (m *Mesh) EdgeVertex(e Edge, i int) Vertex { return m.ToVertex(m.EdgeHalfedge(e, i)) }

// EdgeFace returns the face of i-th halfedge of e.
func (m *Mesh) EdgeFace(e Edge, i int) Face { return m.Face(m.EdgeHalfedge(e, i)) }

// Circulators. These return snapshots, so the mesh may be modified while iterating the result.

// VertexOutgoing returns the outgoing halfedges of v in counter-clockwise order.
func (m *Mesh) VertexOutgoing(v Vertex) []Halfedge {
	h0 := m.HalfedgeOf(v)
	if !h0.IsValid() {
		return nil
	}
	var hs []Halfedge
	h := h0
	for {
		hs = append(hs, h)
		h = m.CCWRotated(h)
		if h == h0 {
			break
		}
	}
	return hs
}

// VertexNeighbors returns the one-ring vertices of v.
func (m *Mesh) VertexNeighbors(v Vertex) []Vertex {
	hs := m.VertexOutgoing(v)
	vs := make([]Vertex, len(hs))
	for i, h := range hs {
		vs[i] = m.ToVertex(h)
	}
	return vs
}

// VertexFaces returns the faces incident to v.
func (m *Mesh) VertexFaces(v Vertex) []Face {
	var fs []Face
	for _, h := range m.VertexOutgoing(v) {
		if f := m.Face(h); f.IsValid() {
			fs = append(fs, f)
		}
	}
	return fs
}

// FaceHalfedges returns the halfedges of f in order.
func (m *Mesh) FaceHalfedges(f Face) []Halfedge {
	h0 := m.FaceHalfedge(f)
	var hs []Halfedge
	h := h0
	for {
		hs = append(hs, h)
		h = m.Next(h)
		if h == h0 {
			break
		}
	}
	return hs
}

// FaceVertices returns the vertices of f in counter-clockwise order.
func (m *Mesh) FaceVertices(f Face) []Vertex {
	hs := m.FaceHalfedges(f)
	vs := make([]Vertex, len(hs))
	for i, h := range hs {
		vs[i] = m.ToVertex(h)
	}
	return vs
}

// Predicates

func (m *Mesh) IsIsolated(v Vertex) bool { return !m.HalfedgeOf(v).IsValid() }

// IsBorderVertex reports whether v is isolated or on the mesh border.
func (m *Mesh) IsBorderVertex(v Vertex) bool {
	h := m.HalfedgeOf(v)
	return !(h.IsValid() && m.Face(h).IsValid())
}

// IsBorderHalfedge reports whether h has no face.
func (m *Mesh) IsBorderHalfedge(h Halfedge) bool { return !m.Face(h).IsValid() }

func (m *Mesh) IsBorderEdge(e Edge) bool {
	return m.IsBorderHalfedge(m.EdgeHalfedge(e, 0)) || m.IsBorderHalfedge(m.EdgeHalfedge(e, 1))
}

// IsManifold reports whether v has at most one border gap around it.
func (m *Mesh) IsManifold(v Vertex) bool {
	n := 0
	for _, h := range m.VertexOutgoing(v) {
		if m.IsBorderHalfedge(h) {
			n++
		}
	}
	return n < 2
}

func (m *Mesh) IsTriangleMesh() bool {
	for _, f := range m.Faces() {
		if m.FaceValence(f) != 3 {
			return false
		}
	}
	return true
}

// Valence returns the number of edges incident to v.
func (m *Mesh) Valence(v Vertex) int { return len(m.VertexOutgoing(v)) }

// FaceValence returns the number of vertices of f.
func (m *Mesh) FaceValence(f Face) int { return len(m.FaceHalfedges(f)) }

// FindHalfedge returns the halfedge from start to end, or InvalidHalfedge.
func (m *Mesh) FindHalfedge(start, end Vertex) Halfedge {
	h := m.HalfedgeOf(start)
	hh := h
	if h.IsValid() {
		for {
			if m.ToVertex(h) == end {
				return h
			}
			h = m.CWRotated(h)
			if h == hh {
				break
			}
		}
	}
	return InvalidHalfedge
}

// FindEdge returns the edge between a and b, or InvalidEdge.
func (m *Mesh) FindEdge(a, b Vertex) Edge {
	h := m.FindHalfedge(a, b)
	if !h.IsValid() {
		return InvalidEdge
	}
	return m.EdgeOf(h)
}

// adjustOutgoingHalfedge makes the outgoing halfedge of a border vertex a border halfedge.
func (m *Mesh) adjustOutgoingHalfedge(v Vertex) {
	h := m.HalfedgeOf(v)
	hh := h
	if h.IsValid() {
		for {
			if m.IsBorderHalfedge(h) {
				m.setHalfedge(v, h)
				return
			}
			h = m.CWRotated(h)
			if h == hh {
				break
			}
		}
	}
}
