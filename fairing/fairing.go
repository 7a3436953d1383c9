// Package fairing smooths mesh regions by solving k-harmonic systems with cotangent weights.
package fairing

import (
	"errors"
	"log"

	"gonum.org/v1/gonum/mat"

	"github.com/binzume/meshproc/linalg"
	"github.com/binzume/meshproc/surface"
)

var ErrNoConstraints = errors.New("fairing: no locked vertices")

// MinimizeArea computes a membrane surface (k = 1).
func MinimizeArea(mesh *surface.Mesh) error {
	return Fair(mesh, 1)
}

// MinimizeCurvature computes a thin plate surface (k = 2).
func MinimizeCurvature(mesh *surface.Mesh) error {
	return Fair(mesh, 2)
}

// Fair moves the vertices selected by "v:selected" (all vertices if nothing is selected)
// to the solution of the k-harmonic equation.
func Fair(mesh *surface.Mesh, k int) error {
	return FairSelected(mesh, k, surface.GetVertexProperty[bool](mesh, surface.SelectedProperty))
}

// FairSelected is Fair with an explicit selection. nil or an empty selection means all vertices.
func FairSelected(mesh *surface.Mesh, k int, selected *surface.Property[surface.Vertex, bool]) error {
	if k < 1 {
		k = 1
	}
	scope := surface.NewPropertyScope(mesh)
	defer scope.Release()

	locked := surface.ScopedVertexProperty(scope, "fairing:locked", false)
	vweight := surface.ScopedVertexProperty(scope, "fairing:vweight", 0.0)
	eweight := surface.ScopedEdgeProperty(scope, "fairing:eweight", 0.0)
	idx := surface.ScopedVertexProperty(scope, "fairing:idx", -1)
	locked.Fill(false)
	idx.Fill(-1)

	for _, v := range mesh.Vertices() {
		if a := mesh.VoronoiArea(v); a > 0 {
			vweight.Set(v, 0.5/a)
		}
	}
	for _, e := range mesh.Edges() {
		eweight.Set(e, max(0, mesh.CotanWeight(e)))
	}

	noSelection := true
	if selected != nil {
		for _, v := range mesh.Vertices() {
			if selected.Get(v) {
				noSelection = false
				break
			}
		}
	}

	// lock k rings of boundary vertices
	for _, v := range mesh.Vertices() {
		if !mesh.IsBorderVertex(v) {
			continue
		}
		locked.Set(v, true)
		if k > 1 {
			for _, vv := range mesh.VertexNeighbors(v) {
				locked.Set(vv, true)
				if k > 2 {
					for _, vvv := range mesh.VertexNeighbors(vv) {
						locked.Set(vvv, true)
					}
				}
			}
		}
	}

	for _, v := range mesh.Vertices() {
		if !noSelection && !selected.Get(v) {
			locked.Set(v, true)
		}
		if mesh.IsIsolated(v) {
			locked.Set(v, true)
		}
	}

	var free []surface.Vertex
	for _, v := range mesh.Vertices() {
		if !locked.Get(v) {
			idx.Set(v, len(free))
			free = append(free, v)
		}
	}
	if len(free) == mesh.NumVertices() {
		log.Println("fairing: locked vertices are required as boundary constraints")
		return ErrNoConstraints
	}
	if len(free) == 0 {
		return nil
	}

	n := len(free)
	a := linalg.NewTriplets(n, n)
	b := mat.NewDense(n, 3, nil)
	rb := &rowBuilder{mesh: mesh, vweight: vweight, eweight: eweight, degree: k}
	for i, v := range free {
		var rhs [3]float64
		for vv, w := range rb.row(v) {
			if j := idx.Get(vv); j != -1 {
				a.Add(i, j, w)
			} else {
				p := mesh.Position(vv)
				rhs[0] -= w * p.X
				rhs[1] -= w * p.Y
				rhs[2] -= w * p.Z
			}
		}
		b.SetRow(i, rhs[:])
	}

	x, err := linalg.SolveSymmetric(a, b)
	if err != nil {
		log.Println("fairing: could not solve linear system")
		return err
	}
	for i, v := range free {
		p := mesh.Position(v)
		p.X, p.Y, p.Z = x.At(i, 0), x.At(i, 1), x.At(i, 2)
		mesh.SetPosition(v, p)
	}
	return nil
}

type rowEntry struct {
	vertex surface.Vertex
	weight float64
	degree int
}

// rowBuilder expands one row of the k-th power of the weighted Laplacian.
type rowBuilder struct {
	mesh    *surface.Mesh
	vweight *surface.Property[surface.Vertex, float64]
	eweight *surface.Property[surface.Edge, float64]
	degree  int
	todo    []rowEntry
}

func (rb *rowBuilder) row(v surface.Vertex) map[surface.Vertex]float64 {
	row := map[surface.Vertex]float64{}
	rb.todo = append(rb.todo[:0], rowEntry{vertex: v, weight: 1, degree: rb.degree})

	for len(rb.todo) > 0 {
		t := rb.todo[len(rb.todo)-1]
		rb.todo = rb.todo[:len(rb.todo)-1]

		if t.degree == 0 {
			row[t.vertex] += t.weight
			continue
		}

		var ww float64
		for _, h := range rb.mesh.VertexOutgoing(t.vertex) {
			w := rb.eweight.Get(rb.mesh.EdgeOf(h))
			if t.degree < rb.degree {
				w *= rb.vweight.Get(t.vertex)
			}
			w *= t.weight
			ww -= w
			rb.todo = append(rb.todo, rowEntry{vertex: rb.mesh.ToVertex(h), weight: w, degree: t.degree - 1})
		}
		rb.todo = append(rb.todo, rowEntry{vertex: t.vertex, weight: ww, degree: t.degree - 1})
	}
	return row
}
