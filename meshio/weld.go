package meshio

import (
	"math"

	"github.com/binzume/meshproc/geom"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

type weldPoint struct {
	r3.Vec
	index int
}

func (p *weldPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(*weldPoint)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	default:
		return p.Z - q.Z
	}
}

func (p *weldPoint) Dims() int { return 3 }

// Distance returns the squared distance.
func (p *weldPoint) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(p.Vec, c.(*weldPoint).Vec))
}

type weldPoints []weldPoint

func (p weldPoints) Index(i int) kdtree.Comparable { return &p[i] }
func (p weldPoints) Len() int                      { return len(p) }
func (p weldPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p weldPoints) Pivot(d kdtree.Dim) int {
	pl := weldPlane{dim: d, points: p}
	return kdtree.Partition(pl, kdtree.MedianOfMedians(pl))
}

type weldPlane struct {
	dim    kdtree.Dim
	points weldPoints
}

func (p weldPlane) Less(i, j int) bool {
	return p.points[i].Compare(&p.points[j], p.dim) < 0
}
func (p weldPlane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p weldPlane) Len() int      { return len(p.points) }
func (p weldPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

// Weld merges points closer than tol. It returns the unique points and the index
// of the unique point for each input point. The first point of a cluster is kept.
func Weld(points []geom.Vector3, tol float64) ([]geom.Vector3, []int) {
	index := make([]int, len(points))
	if len(points) == 0 {
		return nil, index
	}
	wp := make(weldPoints, len(points))
	for i, p := range points {
		wp[i] = weldPoint{Vec: r3.Vec{X: p.X, Y: p.Y, Z: p.Z}, index: i}
	}
	tree := kdtree.New(wp, false)

	rep := make([]int, len(points))
	var unique []geom.Vector3
	for i, p := range points {
		rep[i] = i
		keeper := kdtree.NewDistKeeper(tol * tol)
		tree.NearestSet(keeper, &weldPoint{Vec: r3.Vec{X: p.X, Y: p.Y, Z: p.Z}, index: -1})
		for _, c := range keeper.Heap {
			if c.Comparable == nil {
				continue
			}
			j := c.Comparable.(*weldPoint).index
			if j < rep[i] && rep[j] == j {
				rep[i] = j
			}
		}
		if rep[i] == i {
			index[i] = len(unique)
			unique = append(unique, p)
		} else {
			index[i] = index[rep[i]]
		}
	}
	return unique, index
}

// weldTolerance returns a tolerance relative to the size of the bounding box.
func weldTolerance(points []geom.Vector3) float64 {
	if len(points) == 0 {
		return 0
	}
	min, max := points[0], points[0]
	for _, p := range points {
		min = min.Min(p)
		max = max.Max(p)
	}
	size := max.Sub(min)
	return math.Max(size.X, math.Max(size.Y, size.Z)) * 1e-7
}
