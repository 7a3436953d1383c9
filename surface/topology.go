package surface

import (
	"errors"
	"fmt"

	"github.com/binzume/meshproc/geom"
)

// ErrTopology is returned when a face cannot be added without breaking manifoldness.
var ErrTopology = errors.New("surface: topology error")

type nextLink struct {
	h, next Halfedge
}

// AddTriangle adds a triangle face v0, v1, v2 (counter-clockwise).
func (m *Mesh) AddTriangle(v0, v1, v2 Vertex) (Face, error) {
	return m.AddFace([]Vertex{v0, v1, v2})
}

// AddFace adds a polygon. The vertices must be on the border (or isolated), and
// the face must not create a non-manifold configuration.
func (m *Mesh) AddFace(vertices []Vertex) (Face, error) {
	n := len(vertices)
	if n < 3 {
		return InvalidFace, fmt.Errorf("%w: face with %d vertices", ErrTopology, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if vertices[i] == vertices[j] {
				return InvalidFace, fmt.Errorf("%w: duplicated vertex %v in face", ErrTopology, vertices[i])
			}
		}
	}

	halfedges := make([]Halfedge, n)
	isNew := make([]bool, n)
	needsAdjust := make([]bool, n)
	nextCache := make([]nextLink, 0, 3*n)

	// test for topological errors
	for i, ii := 0, 1; i < n; i, ii = i+1, (ii+1)%n {
		if !m.IsBorderVertex(vertices[i]) {
			return InvalidFace, fmt.Errorf("%w: vertex %v is not on the border", ErrTopology, vertices[i])
		}
		halfedges[i] = m.FindHalfedge(vertices[i], vertices[ii])
		isNew[i] = !halfedges[i].IsValid()
		if !isNew[i] && !m.IsBorderHalfedge(halfedges[i]) {
			return InvalidFace, fmt.Errorf("%w: halfedge %v is not on the border", ErrTopology, halfedges[i])
		}
	}

	// re-link patches if necessary
	for i, ii := 0, 1; i < n; i, ii = i+1, (ii+1)%n {
		if !isNew[i] && !isNew[ii] {
			innerPrev := halfedges[i]
			innerNext := halfedges[ii]

			if m.Next(innerPrev) != innerNext {
				// search a free gap between boundaryPrev and boundaryNext
				outerPrev := m.Opposite(innerNext)
				boundaryPrev := outerPrev
				for {
					boundaryPrev = m.Opposite(m.Next(boundaryPrev))
					if m.IsBorderHalfedge(boundaryPrev) && boundaryPrev != innerPrev {
						break
					}
				}
				boundaryNext := m.Next(boundaryPrev)
				if boundaryNext == innerNext {
					return InvalidFace, fmt.Errorf("%w: patch re-linking failed %v", ErrTopology, vertices)
				}

				patchStart := m.Next(innerPrev)
				patchEnd := m.Prev(innerNext)

				nextCache = append(nextCache,
					nextLink{boundaryPrev, patchStart},
					nextLink{patchEnd, boundaryNext},
					nextLink{innerPrev, innerNext})
			}
		}
	}

	// create missing edges
	for i, ii := 0, 1; i < n; i, ii = i+1, (ii+1)%n {
		if isNew[i] {
			halfedges[i] = m.newEdge(vertices[i], vertices[ii])
		}
	}

	f := m.newFace()
	m.setFaceHalfedge(f, halfedges[n-1])

	// setup halfedges
	for i, ii := 0, 1; i < n; i, ii = i+1, (ii+1)%n {
		v := vertices[ii]
		innerPrev := halfedges[i]
		innerNext := halfedges[ii]

		id := 0
		if isNew[i] {
			id |= 1
		}
		if isNew[ii] {
			id |= 2
		}

		if id != 0 {
			outerPrev := m.Opposite(innerNext)
			outerNext := m.Opposite(innerPrev)

			switch id {
			case 1: // prev is new, next is old
				boundaryPrev := m.Prev(innerNext)
				nextCache = append(nextCache, nextLink{boundaryPrev, outerNext})
				m.setHalfedge(v, outerNext)
			case 2: // next is new, prev is old
				boundaryNext := m.Next(innerPrev)
				nextCache = append(nextCache, nextLink{outerPrev, boundaryNext})
				m.setHalfedge(v, boundaryNext)
			case 3: // both are new
				if !m.HalfedgeOf(v).IsValid() {
					m.setHalfedge(v, outerNext)
					nextCache = append(nextCache, nextLink{outerPrev, outerNext})
				} else {
					boundaryNext := m.HalfedgeOf(v)
					boundaryPrev := m.Prev(boundaryNext)
					nextCache = append(nextCache, nextLink{boundaryPrev, outerNext}, nextLink{outerPrev, boundaryNext})
				}
			}

			nextCache = append(nextCache, nextLink{innerPrev, innerNext})
		} else {
			needsAdjust[ii] = m.HalfedgeOf(v) == innerNext
		}

		m.setFace(halfedges[i], f)
	}

	for _, l := range nextCache {
		m.setNext(l.h, l.next)
	}

	for i := 0; i < n; i++ {
		if needsAdjust[i] {
			m.adjustOutgoingHalfedge(vertices[i])
		}
	}
	return f, nil
}

// IsCollapseOK reports whether collapsing v0v1 (moving from vertex into to vertex)
// keeps the mesh a manifold.
func (m *Mesh) IsCollapseOK(v0v1 Halfedge) bool {
	v1v0 := m.Opposite(v0v1)
	v0 := m.ToVertex(v1v0)
	v1 := m.ToVertex(v0v1)
	vl, vr := InvalidVertex, InvalidVertex

	// the edges v1-vl and vl-v0 must not be both border edges
	if !m.IsBorderHalfedge(v0v1) {
		h1 := m.Next(v0v1)
		h2 := m.Next(h1)
		vl = m.ToVertex(h1)
		if m.IsBorderHalfedge(m.Opposite(h1)) && m.IsBorderHalfedge(m.Opposite(h2)) {
			return false
		}
	}

	// the edges v0-vr and vr-v1 must not be both border edges
	if !m.IsBorderHalfedge(v1v0) {
		h1 := m.Next(v1v0)
		h2 := m.Next(h1)
		vr = m.ToVertex(h1)
		if m.IsBorderHalfedge(m.Opposite(h1)) && m.IsBorderHalfedge(m.Opposite(h2)) {
			return false
		}
	}

	// if vl and vr are equal or both invalid -> fail
	if vl == vr {
		return false
	}

	// edge between two border vertices should be a border edge
	if m.IsBorderVertex(v0) && m.IsBorderVertex(v1) && !m.IsBorderHalfedge(v0v1) && !m.IsBorderHalfedge(v1v0) {
		return false
	}

	// test intersection of the one-rings of v0 and v1
	for _, vv := range m.VertexNeighbors(v0) {
		if vv != v1 && vv != vl && vv != vr {
			if m.FindHalfedge(vv, v1).IsValid() {
				return false
			}
		}
	}
	return true
}

// Collapse removes the source vertex of h and merges it into the target vertex.
// Check IsCollapseOK first. Removed elements are marked as deleted.
func (m *Mesh) Collapse(h Halfedge) {
	h0 := h
	h1 := m.Prev(h0)
	o0 := m.Opposite(h0)
	o1 := m.Next(o0)

	m.removeEdge(h0)

	if m.Next(m.Next(h1)) == h1 {
		m.removeLoop(h1)
	}
	if m.Next(m.Next(o1)) == o1 {
		m.removeLoop(o1)
	}
}

func (m *Mesh) removeEdge(h Halfedge) {
	hn := m.Next(h)
	hp := m.Prev(h)

	o := m.Opposite(h)
	on := m.Next(o)
	op := m.Prev(o)

	fh := m.Face(h)
	fo := m.Face(o)

	vh := m.ToVertex(h)
	vo := m.ToVertex(o)

	for _, hc := range m.VertexOutgoing(vo) {
		m.setVertex(m.Opposite(hc), vh)
	}

	m.setNext(hp, hn)
	m.setNext(op, on)

	if fh.IsValid() {
		m.setFaceHalfedge(fh, hn)
	}
	if fo.IsValid() {
		m.setFaceHalfedge(fo, on)
	}

	if m.HalfedgeOf(vh) == o {
		m.setHalfedge(vh, hn)
	}
	m.adjustOutgoingHalfedge(vh)
	m.setHalfedge(vo, InvalidHalfedge)

	m.vdeleted.data[vo] = true
	m.deletedVertices++
	m.edeleted.data[m.EdgeOf(h)] = true
	m.deletedEdges++
	m.garbage = true
}

// removeLoop removes a face with two edges.
func (m *Mesh) removeLoop(h Halfedge) {
	h0 := h
	h1 := m.Next(h0)

	o0 := m.Opposite(h0)
	o1 := m.Opposite(h1)

	v0 := m.ToVertex(h0)
	v1 := m.ToVertex(h1)

	fh := m.Face(h0)
	fo := m.Face(o0)

	m.setNext(h1, m.Next(o0))
	m.setNext(m.Prev(o0), h1)

	m.setFace(h1, fo)

	m.setHalfedge(v0, h1)
	m.adjustOutgoingHalfedge(v0)
	m.setHalfedge(v1, o1)
	m.adjustOutgoingHalfedge(v1)

	if fo.IsValid() && m.FaceHalfedge(fo) == o0 {
		m.setFaceHalfedge(fo, h1)
	}

	if fh.IsValid() {
		m.fdeleted.data[fh] = true
		m.deletedFaces++
	}
	m.edeleted.data[m.EdgeOf(h0)] = true
	m.deletedEdges++
	m.garbage = true
}

// Split inserts a new vertex at p on edge e and triangulates the incident triangles.
// Returns the halfedge pointing to the new vertex from the source of e's first halfedge.
func (m *Mesh) Split(e Edge, p geom.Vector3) Halfedge {
	return m.SplitWithVertex(e, m.AddVertex(p))
}

// SplitWithVertex splits e by the isolated vertex v.
func (m *Mesh) SplitWithVertex(e Edge, v Vertex) Halfedge {
	h0 := m.EdgeHalfedge(e, 0)
	o0 := m.EdgeHalfedge(e, 1)

	v2 := m.ToVertex(o0)

	e1 := m.newEdge(v, v2)
	t1 := m.Opposite(e1)

	f0 := m.Face(h0)
	f3 := m.Face(o0)

	m.setHalfedge(v, h0)
	m.setVertex(o0, v)

	if !m.IsBorderHalfedge(h0) {
		h1 := m.Next(h0)
		h2 := m.Next(h1)

		v1 := m.ToVertex(h1)

		e0 := m.newEdge(v, v1)
		t0 := m.Opposite(e0)

		f1 := m.newFace()
		m.setFaceHalfedge(f0, h0)
		m.setFaceHalfedge(f1, h2)

		m.setFace(h1, f0)
		m.setFace(t0, f0)
		m.setFace(h0, f0)

		m.setFace(h2, f1)
		m.setFace(t1, f1)
		m.setFace(e0, f1)

		m.setNext(h0, h1)
		m.setNext(h1, t0)
		m.setNext(t0, h0)

		m.setNext(e0, h2)
		m.setNext(h2, t1)
		m.setNext(t1, e0)
	} else {
		m.setNext(m.Prev(h0), t1)
		m.setNext(t1, h0)
	}

	if !m.IsBorderHalfedge(o0) {
		o1 := m.Next(o0)
		o2 := m.Next(o1)

		v3 := m.ToVertex(o1)

		e2 := m.newEdge(v, v3)
		t2 := m.Opposite(e2)

		f2 := m.newFace()
		m.setFaceHalfedge(f2, o1)
		m.setFaceHalfedge(f3, o0)

		m.setFace(o1, f2)
		m.setFace(t2, f2)
		m.setFace(e1, f2)

		m.setFace(o2, f3)
		m.setFace(o0, f3)
		m.setFace(e2, f3)

		m.setNext(e1, o1)
		m.setNext(o1, t2)
		m.setNext(t2, e1)

		m.setNext(o0, e2)
		m.setNext(e2, o2)
		m.setNext(o2, o0)
	} else {
		m.setNext(e1, m.Next(o0))
		m.setNext(o0, e1)
		m.setHalfedge(v, e1)
	}

	if m.HalfedgeOf(v2) == h0 {
		m.setHalfedge(v2, t1)
	}
	return t1
}

// IsFlipOK reports whether e can be flipped without creating a duplicated edge.
func (m *Mesh) IsFlipOK(e Edge) bool {
	if m.IsBorderEdge(e) {
		return false
	}

	h0 := m.EdgeHalfedge(e, 0)
	h1 := m.EdgeHalfedge(e, 1)

	v0 := m.ToVertex(m.Next(h0))
	v1 := m.ToVertex(m.Next(h1))

	if v0 == v1 {
		return false
	}
	return !m.FindHalfedge(v0, v1).IsValid()
}

// Flip rotates the interior edge e of two triangles. Check IsFlipOK first.
func (m *Mesh) Flip(e Edge) {
	a0 := m.EdgeHalfedge(e, 0)
	b0 := m.EdgeHalfedge(e, 1)

	a1 := m.Next(a0)
	a2 := m.Next(a1)

	b1 := m.Next(b0)
	b2 := m.Next(b1)

	va0 := m.ToVertex(a0)
	va1 := m.ToVertex(a1)

	vb0 := m.ToVertex(b0)
	vb1 := m.ToVertex(b1)

	fa := m.Face(a0)
	fb := m.Face(b0)

	m.setVertex(a0, va1)
	m.setVertex(b0, vb1)

	m.setNext(a0, a2)
	m.setNext(a2, b1)
	m.setNext(b1, a0)

	m.setNext(b0, b2)
	m.setNext(b2, a1)
	m.setNext(a1, b0)

	m.setFace(a1, fb)
	m.setFace(b1, fa)

	m.setFaceHalfedge(fa, a0)
	m.setFaceHalfedge(fb, b0)

	if m.HalfedgeOf(va0) == b0 {
		m.setHalfedge(va0, a1)
	}
	if m.HalfedgeOf(vb0) == a0 {
		m.setHalfedge(vb0, b1)
	}
}

// DeleteVertex removes v together with its incident faces.
func (m *Mesh) DeleteVertex(v Vertex) {
	if m.vdeleted.data[v] {
		return
	}
	for _, f := range m.VertexFaces(v) {
		m.DeleteFace(f)
	}
	if !m.vdeleted.data[v] {
		m.vdeleted.data[v] = true
		m.deletedVertices++
		m.garbage = true
	}
}

// DeleteFace removes f and the edges and vertices which become isolated.
func (m *Mesh) DeleteFace(f Face) {
	if m.fdeleted.data[f] {
		return
	}

	m.fdeleted.data[f] = true
	m.deletedFaces++

	var deleteEdges []Edge
	hs := m.FaceHalfedges(f)
	var vs []Vertex
	for _, hc := range hs {
		m.setFace(hc, InvalidFace)
		if m.IsBorderHalfedge(m.Opposite(hc)) {
			deleteEdges = append(deleteEdges, m.EdgeOf(hc))
		}
		vs = append(vs, m.ToVertex(hc))
	}

	for _, e := range deleteEdges {
		h0 := m.EdgeHalfedge(e, 0)
		v0 := m.ToVertex(h0)
		next0 := m.Next(h0)
		prev0 := m.Prev(h0)

		h1 := m.EdgeHalfedge(e, 1)
		v1 := m.ToVertex(h1)
		next1 := m.Next(h1)
		prev1 := m.Prev(h1)

		m.setNext(prev0, next1)
		m.setNext(prev1, next0)

		if !m.edeleted.data[e] {
			m.edeleted.data[e] = true
			m.deletedEdges++
		}

		if m.HalfedgeOf(v0) == h1 {
			if next0 == h1 {
				if !m.vdeleted.data[v0] {
					m.vdeleted.data[v0] = true
					m.deletedVertices++
				}
			} else {
				m.setHalfedge(v0, next0)
			}
		}

		if m.HalfedgeOf(v1) == h0 {
			if next1 == h0 {
				if !m.vdeleted.data[v1] {
					m.vdeleted.data[v1] = true
					m.deletedVertices++
				}
			} else {
				m.setHalfedge(v1, next1)
			}
		}
	}

	for _, v := range vs {
		m.adjustOutgoingHalfedge(v)
	}
	m.garbage = true
}

// CollectGarbage removes deleted elements and compacts all properties.
// Handles held by the caller are invalidated, except that elements before the
// first deleted element keep their index.
func (m *Mesh) CollectGarbage() {
	if !m.garbage {
		return
	}

	nV, nE, nH, nF := m.VerticesSize(), m.EdgesSize(), m.HalfedgesSize(), m.FacesSize()

	vmap := AddVertexProperty(m, "v:garbage-collection", InvalidVertex)
	hmap := AddHalfedgeProperty(m, "h:garbage-collection", InvalidHalfedge)
	fmap := AddFaceProperty(m, "f:garbage-collection", InvalidFace)
	for i := 0; i < nV; i++ {
		vmap.data[i] = Vertex(i)
	}
	for i := 0; i < nH; i++ {
		hmap.data[i] = Halfedge(i)
	}
	for i := 0; i < nF; i++ {
		fmap.data[i] = Face(i)
	}

	// remove deleted vertices
	if nV > 0 {
		i0, i1 := 0, nV-1
		for {
			// find first deleted and last un-deleted
			for !m.vdeleted.data[i0] && i0 < i1 {
				i0++
			}
			for m.vdeleted.data[i1] && i0 < i1 {
				i1--
			}
			if i0 >= i1 {
				break
			}
			m.vprops.swap(i0, i1)
		}
		if m.vdeleted.data[i0] {
			nV = i0
		} else {
			nV = i0 + 1
		}
	}

	// remove deleted edges
	if nE > 0 {
		i0, i1 := 0, nE-1
		for {
			for !m.edeleted.data[i0] && i0 < i1 {
				i0++
			}
			for m.edeleted.data[i1] && i0 < i1 {
				i1--
			}
			if i0 >= i1 {
				break
			}
			m.eprops.swap(i0, i1)
			m.hprops.swap(2*i0, 2*i1)
			m.hprops.swap(2*i0+1, 2*i1+1)
		}
		if m.edeleted.data[i0] {
			nE = i0
		} else {
			nE = i0 + 1
		}
		nH = 2 * nE
	}

	// remove deleted faces
	if nF > 0 {
		i0, i1 := 0, nF-1
		for {
			for !m.fdeleted.data[i0] && i0 < i1 {
				i0++
			}
			for m.fdeleted.data[i1] && i0 < i1 {
				i1--
			}
			if i0 >= i1 {
				break
			}
			m.fprops.swap(i0, i1)
		}
		if m.fdeleted.data[i0] {
			nF = i0
		} else {
			nF = i0 + 1
		}
	}

	// update vertex connectivity
	for i := 0; i < nV; i++ {
		v := Vertex(i)
		if !m.IsIsolated(v) {
			m.setHalfedge(v, hmap.data[m.HalfedgeOf(v)])
		}
	}

	// update halfedge connectivity
	for i := 0; i < nH; i++ {
		h := Halfedge(i)
		m.setVertex(h, vmap.data[m.ToVertex(h)])
		m.setNext(h, hmap.data[m.Next(h)])
		if !m.IsBorderHalfedge(h) {
			m.setFace(h, fmap.data[m.Face(h)])
		}
	}

	// update handles of faces
	for i := 0; i < nF; i++ {
		f := Face(i)
		m.setFaceHalfedge(f, hmap.data[m.FaceHalfedge(f)])
	}

	m.RemoveVertexProperty(vmap.name)
	m.RemoveHalfedgeProperty(hmap.name)
	m.RemoveFaceProperty(fmap.name)

	m.vprops.resize(nV)
	m.hprops.resize(nH)
	m.eprops.resize(nE)
	m.fprops.resize(nF)

	m.deletedVertices = 0
	m.deletedEdges = 0
	m.deletedFaces = 0
	m.garbage = false
}
