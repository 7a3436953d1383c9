package holefill

import (
	"log"

	"gonum.org/v1/gonum/mat"

	"github.com/binzume/meshproc/fairing"
	"github.com/binzume/meshproc/linalg"
	"github.com/binzume/meshproc/surface"
)

const refineIterations = 10

func (hf *HoleFiller) refine() {
	n := len(hf.holeVertices)
	if n == 0 {
		return
	}
	var l float64
	for i := 0; i < n; i++ {
		l += hf.points.Get(hf.holeVertices[i]).Distance(hf.points.Get(hf.holeVertices[(i+1)%n]))
	}
	l /= float64(n)
	lmin := 0.7 * l
	lmax := 1.5 * l

	for iter := 0; iter < refineIterations; iter++ {
		hf.splitLongEdges(lmax)
		hf.collapseShortEdges(lmin)
		hf.flipEdges()
		hf.relaxation()
	}
	hf.fairing()
}

func (hf *HoleFiller) splitLongEdges(lmax float64) {
	m := hf.mesh
	ok := false
	for i := 0; !ok && i < 10; i++ {
		ok = true
		for _, e := range m.Edges() {
			if hf.elocked.Get(e) {
				continue
			}
			p0 := hf.points.Get(m.EdgeVertex(e, 0))
			p1 := hf.points.Get(m.EdgeVertex(e, 1))
			if p0.Distance(p1) > lmax {
				m.Split(e, p0.Add(p1).Scale(0.5))
				ok = false
			}
		}
	}
}

func (hf *HoleFiller) collapseShortEdges(lmin float64) {
	m := hf.mesh
	patch := hf.patchFaces()
	ok := false
	for i := 0; !ok && i < 10; i++ {
		ok = true
		for _, e := range m.Edges() {
			if m.IsDeletedEdge(e) || hf.elocked.Get(e) {
				continue
			}
			h10 := m.EdgeHalfedge(e, 0)
			h01 := m.EdgeHalfedge(e, 1)
			v0 := m.ToVertex(h10)
			v1 := m.ToVertex(h01)
			if hf.points.Get(v0).Distance(hf.points.Get(v1)) >= lmin {
				continue
			}

			// remove an unlocked endpoint
			h := surface.InvalidHalfedge
			if !hf.vlocked.Get(v0) {
				h = h01
			} else if !hf.vlocked.Get(v1) {
				h = h10
			}
			if !h.IsValid() || !m.IsCollapseOK(h) || !hf.keepsTriangle(e, patch) {
				continue
			}
			m.Collapse(h)
			patch = hf.patchFaces()
			ok = false
		}
	}

	m.CollectGarbage()
	hf.refreshHoleVertices()
}

// patchFaces counts the faces with an unlocked vertex, the part of the patch that collapses can remove.
func (hf *HoleFiller) patchFaces() int {
	n := 0
	for _, f := range hf.mesh.Faces() {
		for _, v := range hf.mesh.FaceVertices(f) {
			if !hf.vlocked.Get(v) {
				n++
				break
			}
		}
	}
	return n
}

// keepsTriangle reports whether the patch keeps at least one face after collapsing e.
func (hf *HoleFiller) keepsTriangle(e surface.Edge, patch int) bool {
	removed := 0
	for i := 0; i < 2; i++ {
		if hf.mesh.EdgeFace(e, i).IsValid() {
			removed++
		}
	}
	return patch-removed >= 1
}

func (hf *HoleFiller) flipEdges() {
	m := hf.mesh
	ideal := func(v surface.Vertex) int {
		if m.IsBorderVertex(v) {
			return 4
		}
		return 6
	}

	ok := false
	for i := 0; !ok && i < 10; i++ {
		ok = true
		for _, e := range m.Edges() {
			if hf.elocked.Get(e) || m.IsBorderEdge(e) {
				continue
			}
			h := m.EdgeHalfedge(e, 0)
			v0 := m.ToVertex(h)
			v2 := m.ToVertex(m.Next(h))
			h = m.EdgeHalfedge(e, 1)
			v1 := m.ToVertex(h)
			v3 := m.ToVertex(m.Next(h))

			val0, val1 := m.Valence(v0), m.Valence(v1)
			val2, val3 := m.Valence(v2), m.Valence(v3)
			opt0, opt1 := ideal(v0), ideal(v1)
			opt2, opt3 := ideal(v2), ideal(v3)

			before := sq(val0-opt0) + sq(val1-opt1) + sq(val2-opt2) + sq(val3-opt3)
			after := sq(val0-1-opt0) + sq(val1-1-opt1) + sq(val2+1-opt2) + sq(val3+1-opt3)

			if before > after && m.IsFlipOK(e) {
				m.Flip(e)
				ok = false
			}
		}
	}
}

func sq(x int) int { return x * x }

// relaxation moves the free vertices to the least squares solution of the uniform Laplacian.
// Boundary vertices of the hole contribute additional rows.
func (hf *HoleFiller) relaxation() {
	m := hf.mesh
	scope := surface.NewPropertyScope(m)
	defer scope.Release()
	idx := surface.ScopedVertexProperty(scope, "holefill:idx", -1)

	var vertices []surface.Vertex
	for _, v := range m.Vertices() {
		if !hf.vlocked.Get(v) {
			idx.Set(v, len(vertices))
			vertices = append(vertices, v)
		}
	}
	n := len(vertices)
	if n == 0 {
		return
	}

	constraints := append([]surface.Vertex{}, vertices...)
	constraints = append(constraints, hf.holeVertices...)
	rows := len(constraints)

	a := linalg.NewTriplets(rows, n)
	b := mat.NewDense(rows, 3, nil)
	for i, v := range constraints {
		var bx, by, bz, c float64
		for _, vv := range m.VertexNeighbors(v) {
			if hf.vlocked.Get(vv) {
				p := hf.points.Get(vv)
				bx, by, bz = bx+p.X, by+p.Y, bz+p.Z
			} else {
				a.Add(i, idx.Get(vv), -1)
			}
			c++
		}
		if hf.vlocked.Get(v) {
			p := hf.points.Get(v)
			bx, by, bz = bx-c*p.X, by-c*p.Y, bz-c*p.Z
		} else {
			a.Add(i, idx.Get(v), c)
		}
		b.SetRow(i, []float64{bx, by, bz})
	}

	x, err := linalg.SolveLeastSquares(a, b)
	if err != nil {
		log.Println("holefill: relaxation solver failed:", err)
		return
	}
	for i, v := range vertices {
		p := hf.points.Get(v)
		p.X, p.Y, p.Z = x.At(i, 0), x.At(i, 1), x.At(i, 2)
		hf.points.Set(v, p)
	}
}

// fairing minimizes the curvature of the vertices inserted by the refinement.
func (hf *HoleFiller) fairing() {
	m := hf.mesh
	scope := surface.NewPropertyScope(m)
	defer scope.Release()

	selected := surface.ScopedVertexProperty(scope, "holefill:selected", false)
	found := false
	for _, v := range m.Vertices() {
		free := !hf.vlocked.Get(v)
		selected.Set(v, free)
		found = found || free
	}
	if !found {
		return
	}
	if err := fairing.FairSelected(m, 2, selected); err != nil {
		log.Println("holefill: fairing failed:", err)
	}
}
