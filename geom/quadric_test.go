package geom

import (
	"math"
	"testing"
)

func TestQuadric(t *testing.T) {
	const eps = 0.000001

	q := NewQuadric(NewVector3(0, 0, 1), NewVector3(0, 0, 5))
	if v := q.Eval(NewVector3(3, 7, 5)); math.Abs(v) > eps {
		t.Error("point on plane: ", v)
	}
	if v := q.Eval(NewVector3(3, 7, 6)); math.Abs(v-1) > eps {
		t.Error("unit distance: ", v)
	}

	var zero Quadric
	if zero.Eval(NewVector3(1, 2, 3)) != 0 {
		t.Error("zero quadric")
	}

	n := NewVector3(1, 2, -1).Normalize()
	x := NewVector3(0.5, 0.1, 2)
	q2 := NewQuadric(n, x)
	// point on the plane through x
	on := x.Add(NewVector3(2, -1, 0))
	if v := q2.Eval(on); math.Abs(v) > eps {
		t.Error("point on plane: ", v)
	}

	p := NewVector3(-3, 4, 1.5)
	sum := q.Add(q2)
	if math.Abs(sum.Eval(p)-(q.Eval(p)+q2.Eval(p))) > eps {
		t.Error("additivity: ", sum.Eval(p), q.Eval(p)+q2.Eval(p))
	}

	acc := Quadric{}
	acc.AddTo(q)
	acc.AddTo(q2)
	if acc != sum {
		t.Error("AddTo != Add")
	}

	d := n.Dot(p.Sub(x))
	if math.Abs(q2.Eval(p)-d*d) > eps {
		t.Error("squared distance: ", q2.Eval(p), d*d)
	}
}

func TestNormalCone(t *testing.T) {
	const eps = 0.000001

	nc := NewNormalCone(NewVector3(0, 0, 1), 0)
	nc.Merge(NewVector3(0, 0, 1))
	if nc.Angle != 0 {
		t.Error("same normal: ", nc.Angle)
	}

	nc.Merge(NewVector3(1, 0, 0))
	if math.Abs(nc.Angle-math.Pi/4) > eps {
		t.Error("angle: ", nc.Angle)
	}
	expected := NewVector3(1, 0, 1).Normalize()
	if nc.Center.Sub(expected).Len() > eps {
		t.Error("center: ", nc.Center)
	}

	// contained normal does not grow the cone
	nc.Merge(NewVector3(1, 0, 1).Normalize())
	if math.Abs(nc.Angle-math.Pi/4) > eps {
		t.Error("angle: ", nc.Angle)
	}

	nc2 := NewNormalCone(NewVector3(0, 0, 1), 0.1)
	nc2.Merge(NewVector3(0, 0, -1))
	if nc2.Angle != 2*math.Pi {
		t.Error("opposite normals: ", nc2.Angle)
	}
}

func TestTriangle(t *testing.T) {
	const eps = 0.000001
	a, b, c := NewVector3(0, 0, 0), NewVector3(1, 0, 0), NewVector3(0, 1, 0)

	if TriangleNormal(a, b, c).Sub(NewVector3(0, 0, 1)).Len() > eps {
		t.Error("normal: ", TriangleNormal(a, b, c))
	}
	if math.Abs(TriangleArea(a, b, c)-0.5) > eps {
		t.Error("area: ", TriangleArea(a, b, c))
	}
	if math.Abs(TriangleAspectRatio(a, b, c)-2) > eps {
		t.Error("aspect ratio: ", TriangleAspectRatio(a, b, c))
	}
	if !math.IsInf(TriangleAspectRatio(a, b, NewVector3(2, 0, 0)), 1) {
		t.Error("degenerate aspect ratio")
	}

	if d := DistPointTriangle(NewVector3(0.2, 0.2, 3), a, b, c); math.Abs(d-3) > eps {
		t.Error("inside: ", d)
	}
	if d := DistPointTriangle(NewVector3(-1, 0, 0), a, b, c); math.Abs(d-1) > eps {
		t.Error("vertex region: ", d)
	}
	if d := DistPointTriangle(NewVector3(1, 1, 0), a, b, c); math.Abs(d-math.Sqrt(0.5)) > eps {
		t.Error("edge region: ", d)
	}
	if d := DistPointTriangle(NewVector3(0.5, 1, 0), a, b, NewVector3(2, 0, 0)); math.Abs(d-1) > eps {
		t.Error("degenerate: ", d)
	}
}

func TestTriangulate(t *testing.T) {
	tris := Triangulate([]Vector3{
		{0, 0, 0},
		{1, 0, 0},
		{1, 1, 0},
	})
	if len(tris) != 1 {
		t.Error("triangle: ", tris)
	}

	tris2 := Triangulate([]Vector3{
		{0, 0, 0},
		{1, 0, 0},
		{1, 1, 0},
		{0, 1, 0},
	})
	if len(tris2) != 2 {
		t.Error("quad: ", tris2)
	}

	// non-convex
	poly := []Vector3{
		{0, 0, 0},
		{2, 0, 0},
		{2, 2, 0},
		{1, 0.5, 0},
		{0, 2, 0},
	}
	tris3 := Triangulate(poly)
	if len(tris3) != 3 {
		t.Fatal("non-convex: ", tris3)
	}
	area := 0.0
	for _, tri := range tris3 {
		n := poly[tri[1]].Sub(poly[tri[0]]).Cross(poly[tri[2]].Sub(poly[tri[0]]))
		if n.Z <= 0 {
			t.Error("orientation: ", tri)
		}
		area += n.Len() / 2
	}
	if math.Abs(area-2.5) > 0.000001 {
		t.Error("area: ", area)
	}

	// Empty
	if len(Triangulate(nil)) != 0 {
		t.Error("not empty")
	}
}
