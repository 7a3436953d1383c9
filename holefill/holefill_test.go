package holefill

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/binzume/meshproc/geom"
	"github.com/binzume/meshproc/surface"
)

func countBorderEdges(m *surface.Mesh) int {
	n := 0
	for _, e := range m.Edges() {
		if m.IsBorderEdge(e) {
			n++
		}
	}
	return n
}

func checkNoTemporaryProperties(t *testing.T, m *surface.Mesh) {
	t.Helper()
	for _, names := range [][]string{m.VertexPropertyNames(), m.EdgePropertyNames(), m.FacePropertyNames()} {
		for _, name := range names {
			if strings.HasPrefix(name, "holefill:") || strings.HasPrefix(name, "fairing:") {
				t.Error("property not removed:", name)
			}
		}
	}
}

// newSquareHole returns a 3x3 grid without the center cell.
func newSquareHole() *surface.Mesh {
	m := surface.NewGrid(3, 3)
	m.DeleteFace(8)
	m.DeleteFace(9)
	m.CollectGarbage()
	return m
}

// newAnnulus returns a ring between radius 1 and 2. Inner vertices have even indices.
func newAnnulus(n int) *surface.Mesh {
	var points []geom.Vector3
	var faces [][]int
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		points = append(points,
			geom.Vector3{X: math.Cos(a), Y: math.Sin(a)},
			geom.Vector3{X: 2 * math.Cos(a), Y: 2 * math.Sin(a)})
	}
	for i := 0; i < n; i++ {
		a, b, c, d := 2*i, 2*i+1, (2*i+3)%(2*n), (2*i+2)%(2*n)
		faces = append(faces, []int{a, b, c}, []int{a, c, d})
	}
	m, _ := surface.FromPolygons(points, faces)
	return m
}

func innerHole(m *surface.Mesh) surface.Halfedge {
	for _, hole := range FindHoles(m, 0) {
		if m.ToVertex(hole.Halfedge)%2 == 0 {
			return hole.Halfedge
		}
	}
	return surface.InvalidHalfedge
}

func TestWeight(t *testing.T) {
	a := Weight{Angle: 0.5, Area: 2}
	b := Weight{Angle: 0.1, Area: 3}

	if !b.Less(a) || a.Less(b) {
		t.Error("angle should be compared first")
	}
	if !(Weight{Angle: 0.5, Area: 1}).Less(a) {
		t.Error("area should break ties")
	}
	if a.Less(a) {
		t.Error("weight is less than itself")
	}
	if s := a.Add(b); s.Angle != 0.5 || s.Area != 5 {
		t.Error("unexpected sum", s)
	}
	if !a.Less(WorstWeight()) {
		t.Error("worst weight should be larger")
	}
}

func TestFillSquareHole(t *testing.T) {
	for _, skip := range []bool{true, false} {
		m := newSquareHole()
		holes := FindHoles(m, 0)
		if len(holes) != 2 || holes[0].Size != 4 || holes[1].Size != 12 {
			t.Fatal("unexpected holes", holes)
		}
		nf := m.NumFaces()
		nv := m.NumVertices()

		if err := NewHoleFiller(m).FillHoleWithOption(holes[0].Halfedge, &Option{SkipRefinement: skip}); err != nil {
			t.Fatal(err)
		}

		if m.NumFaces()-nf != 2 {
			t.Error("expected 2 new triangles", m.NumFaces()-nf)
		}
		if m.NumVertices() != nv {
			t.Error("unexpected vertex count", m.NumVertices())
		}
		if math.Abs(m.SurfaceArea()-9) > 1e-6 {
			t.Error("unexpected area", m.SurfaceArea())
		}
		for _, f := range m.Faces() {
			if m.FaceArea(f) <= 0 {
				t.Error("degenerate face", f)
			}
		}
		if countBorderEdges(m) != 12 {
			t.Error("unexpected border edges", countBorderEdges(m))
		}
		if !m.IsTriangleMesh() || m.HasGarbage() {
			t.Error("invalid result")
		}
		for _, v := range m.Vertices() {
			if math.Abs(m.Position(v).Z) > 1e-9 {
				t.Error("vertex left the plane", v, m.Position(v))
			}
		}
		checkNoTemporaryProperties(t, m)
	}
}

func TestFillAnnulus(t *testing.T) {
	for _, n := range []int{3, 5, 12} {
		for _, skip := range []bool{true, false} {
			m := newAnnulus(n)
			nf := m.NumFaces()
			h := innerHole(m)
			if !h.IsValid() {
				t.Fatal("inner hole not found")
			}
			if err := NewHoleFiller(m).FillHoleWithOption(h, &Option{SkipRefinement: skip}); err != nil {
				t.Fatal(err)
			}

			if skip || n < 12 {
				if m.NumFaces()-nf != n-2 {
					t.Error("unexpected new faces", n, skip, m.NumFaces()-nf)
				}
			} else if m.NumFaces()-nf <= n-2 {
				t.Error("refinement should add faces", m.NumFaces()-nf)
			}

			expected := float64(n) / 2 * 4 * math.Sin(2*math.Pi/float64(n))
			if math.Abs(m.SurfaceArea()-expected) > 1e-6 {
				t.Error("unexpected area", n, skip, m.SurfaceArea(), expected)
			}
			if countBorderEdges(m) != n {
				t.Error("inner hole should be closed", countBorderEdges(m))
			}
			for _, v := range m.Vertices() {
				if math.Abs(m.Position(v).Z) > 1e-9 {
					t.Error("vertex left the plane", v, m.Position(v))
				}
				if !m.IsManifold(v) {
					t.Error("non manifold vertex", v)
				}
			}
			if !m.IsTriangleMesh() {
				t.Error("not a triangle mesh")
			}
			checkNoTemporaryProperties(t, m)
		}
	}
}

func TestFillHoleErrors(t *testing.T) {
	m := newSquareHole()
	hf := NewHoleFiller(m)

	interior := surface.InvalidHalfedge
	for _, h := range m.Halfedges() {
		if !m.IsBorderHalfedge(h) {
			interior = h
			break
		}
	}
	if err := hf.FillHole(interior); !errors.Is(err, ErrNotBorder) {
		t.Error("expected ErrNotBorder", err)
	}
	if err := hf.FillHole(surface.InvalidHalfedge); !errors.Is(err, ErrNotBorder) {
		t.Error("expected ErrNotBorder", err)
	}

	nf := m.NumFaces()
	h := SmallestHole(m)
	if err := hf.FillHoleWithOption(h, &Option{MaxHoleSize: 3}); !errors.Is(err, ErrHoleTooLarge) {
		t.Error("expected ErrHoleTooLarge", err)
	}
	if m.NumFaces() != nf {
		t.Error("mesh should not be modified")
	}
	checkNoTemporaryProperties(t, m)
}

func TestCollapseKeepsLastTriangle(t *testing.T) {
	m, err := surface.FromPolygons([]geom.Vector3{{X: 0}, {X: 1}, {Y: 1}}, [][]int{{0, 1, 2}})
	if err != nil {
		t.Fatal(err)
	}

	hf := NewHoleFiller(m)
	hf.vlocked = surface.VertexProperty(m, "test:vlocked", false)
	hf.elocked = surface.EdgeProperty(m, "test:elocked", false)
	hf.holeMark = surface.VertexProperty(m, "test:hole", -1)
	hf.collapseShortEdges(100)

	if m.NumFaces() != 1 || m.NumVertices() != 3 {
		t.Error("last triangle collapsed", m.NumFaces(), m.NumVertices())
	}
}

func TestPatchFaces(t *testing.T) {
	// a locked square and a free triangle
	m, err := surface.FromPolygons([]geom.Vector3{
		{X: 0}, {X: 1}, {X: 1, Y: 1}, {Y: 1},
		{X: 3}, {X: 4}, {X: 3, Y: 1},
	}, [][]int{{0, 1, 2}, {0, 2, 3}, {4, 5, 6}})
	if err != nil {
		t.Fatal(err)
	}
	hf := NewHoleFiller(m)
	hf.vlocked = surface.VertexProperty(m, "test:vlocked", false)
	for v := surface.Vertex(0); v < 4; v++ {
		hf.vlocked.Set(v, true)
	}

	if n := hf.patchFaces(); n != 1 {
		t.Error("unexpected patch faces", n)
	}
	if hf.keepsTriangle(m.FindEdge(4, 5), hf.patchFaces()) {
		t.Error("the last patch triangle should be kept")
	}

	hf.vlocked.Set(0, false)
	if n := hf.patchFaces(); n != 3 {
		t.Error("unexpected patch faces", n)
	}
	if !hf.keepsTriangle(m.FindEdge(0, 2), hf.patchFaces()) {
		t.Error("one patch triangle remains")
	}
}

func TestFillNonManifoldHole(t *testing.T) {
	// two triangles sharing vertex 0
	m, err := surface.FromPolygons([]geom.Vector3{
		{}, {X: 1}, {Y: 1}, {X: -1}, {Y: -1},
	}, [][]int{{0, 1, 2}, {0, 3, 4}})
	if err != nil {
		t.Fatal(err)
	}
	if m.IsManifold(0) {
		t.Fatal("vertex 0 should be non manifold")
	}
	h := surface.InvalidHalfedge
	for _, hh := range m.Halfedges() {
		if m.IsBorderHalfedge(hh) {
			h = hh
			break
		}
	}

	if err := NewHoleFiller(m).FillHole(h); !errors.Is(err, ErrNonManifold) {
		t.Error("expected ErrNonManifold", err)
	}
	if m.NumFaces() != 2 || m.NumVertices() != 5 {
		t.Error("mesh should not be modified", m.NumFaces(), m.NumVertices())
	}
	checkNoTemporaryProperties(t, m)
}

func TestFillCurvedHole(t *testing.T) {
	// remove the vertices within 3 edges of an icosahedron corner
	m := surface.NewIcosphere(1, 3)
	ring := []surface.Vertex{0}
	region := []surface.Vertex{0}
	removed := map[surface.Vertex]bool{0: true}
	for i := 0; i < 3; i++ {
		var next []surface.Vertex
		for _, v := range ring {
			for _, vv := range m.VertexNeighbors(v) {
				if !removed[vv] {
					removed[vv] = true
					next = append(next, vv)
					region = append(region, vv)
				}
			}
		}
		ring = next
	}
	for _, v := range region {
		m.DeleteVertex(v)
	}
	m.CollectGarbage()

	holes := FindHoles(m, 0)
	if len(holes) != 1 || holes[0].Size != 20 {
		t.Fatal("unexpected holes", holes)
	}
	nv := m.NumVertices()
	if err := NewHoleFiller(m).FillHole(holes[0].Halfedge); err != nil {
		t.Fatal(err)
	}

	if m.NumVertices() <= nv {
		t.Error("refinement should add vertices", m.NumVertices()-nv)
	}
	if countBorderEdges(m) != 0 {
		t.Error("mesh should be closed", countBorderEdges(m))
	}
	if !m.IsTriangleMesh() {
		t.Error("not a triangle mesh")
	}
	// a flat cap would be up to 0.08 below the sphere
	for _, v := range m.Vertices() {
		if !m.IsManifold(v) {
			t.Error("non manifold vertex", v)
		}
		if d := math.Abs(m.Position(v).Len() - 1); d > 0.02 {
			t.Error("patch does not follow the sphere", v, d)
		}
	}
	checkNoTemporaryProperties(t, m)
}

func TestFindHoles(t *testing.T) {
	m := surface.NewIcosphere(1, 1)
	if len(FindHoles(m, 0)) != 0 {
		t.Error("closed mesh has no holes")
	}
	if SmallestHole(m).IsValid() {
		t.Error("closed mesh has no holes")
	}

	m = newSquareHole()
	if holes := FindHoles(m, 4); len(holes) != 1 || holes[0].Size != 4 {
		t.Error("unexpected holes", holes)
	}
	h := SmallestHole(m)
	if !m.IsBorderHalfedge(h) {
		t.Fatal("not a border halfedge", h)
	}
	if v := m.ToVertex(h); m.Position(v).X < 1 || m.Position(v).X > 2 || m.Position(v).Y < 1 || m.Position(v).Y > 2 {
		t.Error("not on the inner hole", m.Position(v))
	}
}

func TestFillHoles(t *testing.T) {
	m := surface.NewIcosphere(1, 2)
	m.DeleteVertex(0)
	m.DeleteVertex(3)
	m.CollectGarbage()
	area := m.SurfaceArea()
	holes := FindHoles(m, 0)
	if len(holes) != 2 {
		t.Fatal("unexpected holes", holes)
	}

	filled, err := FillHoles(m, 0, &Option{SkipRefinement: true})
	if err != nil {
		t.Fatal(err)
	}
	if filled != 2 {
		t.Error("unexpected filled count", filled)
	}
	if countBorderEdges(m) != 0 {
		t.Error("mesh should be closed", countBorderEdges(m))
	}
	if m.SurfaceArea() <= area {
		t.Error("area should grow", m.SurfaceArea(), area)
	}
	checkNoTemporaryProperties(t, m)

	// size limit
	m = newSquareHole()
	filled, err = FillHoles(m, 4, nil)
	if err != nil || filled != 1 {
		t.Error("unexpected result", filled, err)
	}
	if countBorderEdges(m) != 12 {
		t.Error("outer border should remain", countBorderEdges(m))
	}
}
