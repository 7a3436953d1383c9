package holefill

import (
	"errors"
	"log"
	"sort"

	"github.com/binzume/meshproc/surface"
)

// Hole is a boundary loop of a mesh.
type Hole struct {
	// Halfedge is a border halfedge of the loop.
	Halfedge surface.Halfedge
	Size     int
}

// FindHoles returns the boundary loops with at most maxSize vertices (0: unlimited), smallest first.
func FindHoles(mesh *surface.Mesh, maxSize int) []Hole {
	visited := map[surface.Halfedge]bool{}
	var holes []Hole
	for _, h := range mesh.Halfedges() {
		if visited[h] || !mesh.IsBorderHalfedge(h) {
			continue
		}
		size := 0
		hh := h
		for {
			visited[hh] = true
			size++
			hh = mesh.Next(hh)
			if hh == h || visited[hh] {
				break
			}
		}
		if maxSize > 0 && size > maxSize {
			continue
		}
		holes = append(holes, Hole{Halfedge: h, Size: size})
	}
	sort.SliceStable(holes, func(i, j int) bool { return holes[i].Size < holes[j].Size })
	return holes
}

// SmallestHole returns a border halfedge of the shortest boundary loop or InvalidHalfedge.
func SmallestHole(mesh *surface.Mesh) surface.Halfedge {
	holes := FindHoles(mesh, 0)
	if len(holes) == 0 {
		return surface.InvalidHalfedge
	}
	return holes[0].Halfedge
}

// FillHoles fills all boundary loops with at most maxSize vertices and returns the number of filled holes.
// Holes which could not be filled are reported in the returned error.
func FillHoles(mesh *surface.Mesh, maxSize int, opt *Option) (int, error) {
	holes := FindHoles(mesh, maxSize)
	if len(holes) == 0 {
		return 0, nil
	}

	// loops are identified by their vertices, which survive garbage collection
	scope := surface.NewPropertyScope(mesh)
	defer scope.Release()
	loop := surface.ScopedVertexProperty(scope, "holefill:loop", -1)
	loop.Fill(-1)
	for i, hole := range holes {
		h := hole.Halfedge
		for n := 0; n < hole.Size; n++ {
			loop.Set(mesh.ToVertex(h), i)
			h = mesh.Next(h)
		}
	}

	filler := NewHoleFiller(mesh)
	filled := 0
	var errs []error
	for i := range holes {
		h := findLoopHalfedge(mesh, loop, i)
		if !h.IsValid() {
			continue
		}
		if err := filler.FillHoleWithOption(h, opt); err != nil {
			log.Printf("holefill: hole %d (%d vertices): %v", i, holes[i].Size, err)
			errs = append(errs, err)
			continue
		}
		filled++
	}
	return filled, errors.Join(errs...)
}

func findLoopHalfedge(mesh *surface.Mesh, loop *surface.Property[surface.Vertex, int], id int) surface.Halfedge {
	for _, h := range mesh.Halfedges() {
		if mesh.IsBorderHalfedge(h) && loop.Get(mesh.ToVertex(h)) == id && loop.Get(mesh.FromVertex(h)) == id {
			return h
		}
	}
	return surface.InvalidHalfedge
}
