// Package holefill closes boundary loops of a halfedge mesh with a minimal weight
// triangulation and refines the new patch.
package holefill

import (
	"errors"
	"log"

	"github.com/binzume/meshproc/geom"
	"github.com/binzume/meshproc/surface"
)

var (
	ErrNotBorder       = errors.New("holefill: not a border halfedge")
	ErrNonManifold     = errors.New("holefill: non-manifold hole")
	ErrInvalidTriangle = errors.New("holefill: could not triangulate hole")
	ErrHoleTooLarge    = errors.New("holefill: hole too large")
)

type Option struct {
	// SkipRefinement leaves the minimal triangulation as is.
	SkipRefinement bool
	// MaxHoleSize limits the number of boundary vertices. 0 means unlimited.
	MaxHoleSize int
}

type HoleFiller struct {
	mesh   *surface.Mesh
	points *surface.Property[surface.Vertex, geom.Vector3]

	vlocked  *surface.Property[surface.Vertex, bool]
	elocked  *surface.Property[surface.Edge, bool]
	holeMark *surface.Property[surface.Vertex, int]

	// hole[i] is the border halfedge ending at the i-th boundary vertex.
	hole []surface.Halfedge
	// boundary vertices, kept valid across garbage collection.
	holeVertices []surface.Vertex

	weight [][]Weight
	index  [][]int
}

func NewHoleFiller(mesh *surface.Mesh) *HoleFiller {
	return &HoleFiller{mesh: mesh, points: mesh.Points()}
}

// FillHole triangulates and refines the hole bounded by the border halfedge h.
func (hf *HoleFiller) FillHole(h surface.Halfedge) error {
	return hf.FillHoleWithOption(h, nil)
}

func (hf *HoleFiller) FillHoleWithOption(h surface.Halfedge, opt *Option) error {
	if opt == nil {
		opt = &Option{}
	}
	m := hf.mesh
	if !h.IsValid() || int(h) >= m.HalfedgesSize() || m.IsDeletedHalfedge(h) || !m.IsBorderHalfedge(h) {
		log.Println("holefill: not a border halfedge", h)
		return ErrNotBorder
	}

	scope := surface.NewPropertyScope(m)
	defer func() {
		scope.Release()
		hf.hole = nil
		hf.holeVertices = nil
		hf.vlocked, hf.elocked, hf.holeMark = nil, nil, nil
	}()

	// everything existing before the fill is locked
	hf.vlocked = surface.ScopedVertexProperty(scope, "holefill:vlocked", false)
	hf.elocked = surface.ScopedEdgeProperty(scope, "holefill:elocked", false)
	hf.holeMark = surface.ScopedVertexProperty(scope, "holefill:hole", -1)
	hf.vlocked.Fill(false)
	hf.elocked.Fill(false)
	hf.holeMark.Fill(-1)
	for _, v := range m.Vertices() {
		hf.vlocked.Set(v, true)
	}
	for _, e := range m.Edges() {
		hf.elocked.Set(e, true)
	}

	if err := hf.traceHole(h, opt.MaxHoleSize); err != nil {
		return err
	}
	if err := hf.triangulateHole(); err != nil {
		return err
	}
	if !opt.SkipRefinement {
		hf.refine()
	}
	return nil
}

func (hf *HoleFiller) traceHole(h surface.Halfedge, maxSize int) error {
	m := hf.mesh
	hf.hole = hf.hole[:0]
	hh := h
	for {
		if !m.IsManifold(m.ToVertex(hh)) {
			log.Println("holefill: non-manifold hole")
			return ErrNonManifold
		}
		hf.hole = append(hf.hole, hh)
		if maxSize > 0 && len(hf.hole) > maxSize {
			log.Println("holefill: hole has more than", maxSize, "vertices")
			return ErrHoleTooLarge
		}
		if hh = m.Next(hh); hh == h {
			break
		}
		if len(hf.hole) > m.HalfedgesSize() {
			return ErrNonManifold
		}
	}

	hf.holeVertices = make([]surface.Vertex, len(hf.hole))
	for i, hh := range hf.hole {
		v := m.ToVertex(hh)
		hf.holeVertices[i] = v
		hf.holeMark.Set(v, i)
	}
	return nil
}

// refreshHoleVertices rebuilds the boundary vertex list after garbage collection.
func (hf *HoleFiller) refreshHoleVertices() {
	for _, v := range hf.mesh.Vertices() {
		if i := hf.holeMark.Get(v); i >= 0 && i < len(hf.holeVertices) {
			hf.holeVertices[i] = v
		}
	}
}

func (hf *HoleFiller) holeVertex(i int) surface.Vertex {
	if i < 0 || i >= len(hf.hole) {
		return surface.InvalidVertex
	}
	return hf.mesh.ToVertex(hf.hole[i])
}

// oppositeVertex returns the vertex opposite to the boundary edge (i-1, i) outside the hole.
func (hf *HoleFiller) oppositeVertex(i int) surface.Vertex {
	return hf.mesh.ToVertex(hf.mesh.Next(hf.mesh.Opposite(hf.hole[i])))
}

func (hf *HoleFiller) triangulateHole() error {
	n := len(hf.hole)

	hf.weight = make([][]Weight, n)
	hf.index = make([][]int, n)
	for i := range hf.weight {
		hf.weight[i] = make([]Weight, n)
		hf.index[i] = make([]int, n)
		for j := range hf.weight[i] {
			hf.weight[i][j] = WorstWeight()
		}
	}
	defer func() {
		hf.weight, hf.index = nil, nil
	}()

	for i := 0; i < n-1; i++ {
		hf.weight[i][i+1] = Weight{}
		hf.index[i][i+1] = -1
	}

	for j := 2; j < n; j++ {
		for i := 0; i < n-j; i++ {
			k := i + j
			wmin := WorstWeight()
			imin := -1
			for m := i + 1; m < k; m++ {
				w := hf.weight[i][m].Add(hf.computeWeight(i, m, k)).Add(hf.weight[m][k])
				if w.Less(wmin) {
					wmin = w
					imin = m
				}
			}
			hf.weight[i][k] = wmin
			hf.index[i][k] = imin
		}
	}

	type span struct{ start, end int }
	todo := make([]span, 0, n)
	todo = append(todo, span{0, n - 1})
	for len(todo) > 0 {
		s := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		if s.end-s.start < 2 {
			continue
		}
		split := hf.index[s.start][s.end]
		a, b, c := hf.holeVertex(s.start), hf.holeVertex(split), hf.holeVertex(s.end)
		if !a.IsValid() || !b.IsValid() || !c.IsValid() {
			log.Println("holefill: invalid triangle in hole triangulation")
			return ErrInvalidTriangle
		}
		if _, err := hf.mesh.AddTriangle(a, b, c); err != nil {
			log.Println("holefill:", err)
			return ErrInvalidTriangle
		}
		todo = append(todo, span{s.start, split}, span{split, s.end})
	}
	return nil
}

func (hf *HoleFiller) computeWeight(i, j, k int) Weight {
	a := hf.holeVertex(i)
	b := hf.holeVertex(j)
	c := hf.holeVertex(k)
	if !a.IsValid() || !b.IsValid() || !c.IsValid() {
		return WorstWeight()
	}

	// triangles must not duplicate existing interior edges
	if hf.isInteriorEdge(a, b) || hf.isInteriorEdge(b, c) || hf.isInteriorEdge(c, a) {
		return WorstWeight()
	}

	area := hf.computeArea(a, b, c)
	n := hf.computeNormal(a, b, c)
	angle := 0.0

	var d surface.Vertex
	if i+1 == j {
		d = hf.oppositeVertex(j)
	} else {
		d = hf.holeVertex(hf.index[i][j])
	}
	if !d.IsValid() {
		return WorstWeight()
	}
	angle = max(angle, computeAngle(n, hf.computeNormal(a, d, b)))

	if j+1 == k {
		d = hf.oppositeVertex(k)
	} else {
		d = hf.holeVertex(hf.index[j][k])
	}
	if !d.IsValid() {
		return WorstWeight()
	}
	angle = max(angle, computeAngle(n, hf.computeNormal(b, d, c)))

	if i == 0 && k+1 == len(hf.hole) {
		d = hf.oppositeVertex(0)
		angle = max(angle, computeAngle(n, hf.computeNormal(c, d, a)))
	}

	return Weight{Angle: angle, Area: area}
}

func (hf *HoleFiller) isInteriorEdge(a, b surface.Vertex) bool {
	h := hf.mesh.FindHalfedge(a, b)
	if !h.IsValid() {
		return false
	}
	return !hf.mesh.IsBorderHalfedge(h) && !hf.mesh.IsBorderHalfedge(hf.mesh.Opposite(h))
}

// computeArea returns the squared double area of abc.
func (hf *HoleFiller) computeArea(a, b, c surface.Vertex) float64 {
	pa := hf.points.Get(a)
	return hf.points.Get(b).Sub(pa).Cross(hf.points.Get(c).Sub(pa)).LenSqr()
}

func (hf *HoleFiller) computeNormal(a, b, c surface.Vertex) geom.Vector3 {
	pa := hf.points.Get(a)
	return hf.points.Get(b).Sub(pa).Cross(hf.points.Get(c).Sub(pa)).Normalize()
}

func computeAngle(n1, n2 geom.Vector3) float64 {
	return 1 - n1.Dot(n2)
}
