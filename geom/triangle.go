package geom

import "math"

// TriangleNormal returns the unit normal of a counter-clockwise triangle.
func TriangleNormal(p0, p1, p2 Vector3) Vector3 {
	return p2.Sub(p1).Cross(p0.Sub(p1)).Normalize()
}

func TriangleArea(p0, p1, p2 Vector3) Element {
	return p1.Sub(p0).Cross(p2.Sub(p0)).Len() * 0.5
}

// TriangleAspectRatio returns max squared edge length / length of the edge cross product.
// Degenerate triangles give +Inf.
func TriangleAspectRatio(p0, p1, p2 Vector3) Element {
	d0 := p0.Sub(p1)
	d1 := p1.Sub(p2)
	d2 := p2.Sub(p0)

	l := math.Max(d0.LenSqr(), math.Max(d1.LenSqr(), d2.LenSqr()))
	a := d0.Cross(d1).Len()
	if a == 0 {
		return math.Inf(1)
	}
	return l / a
}

// ClosestPointOnSegment returns the point on segment ab nearest to p.
func ClosestPointOnSegment(p, a, b Vector3) Vector3 {
	ab := b.Sub(a)
	l := ab.LenSqr()
	if l == 0 {
		return a
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l))
	return a.Add(ab.Scale(t))
}

// ClosestPointOnTriangle returns the point of triangle abc nearest to p.
func ClosestPointOnTriangle(p, a, b, c Vector3) Vector3 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return a.Add(ab.Scale(d1 / (d1 - d3)))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return a.Add(ac.Scale(d2 / (d2 - d6)))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		return b.Add(c.Sub(b).Scale((d4 - d3) / ((d4 - d3) + (d5 - d6))))
	}

	if va+vb+vc == 0 {
		// degenerate
		best := ClosestPointOnSegment(p, a, b)
		for _, q := range []Vector3{ClosestPointOnSegment(p, b, c), ClosestPointOnSegment(p, c, a)} {
			if p.Sub(q).LenSqr() < p.Sub(best).LenSqr() {
				best = q
			}
		}
		return best
	}
	denom := 1 / (va + vb + vc)
	return a.Add(ab.Scale(vb * denom)).Add(ac.Scale(vc * denom))
}

// DistPointTriangle returns the distance between p and triangle abc.
func DistPointTriangle(p, a, b, c Vector3) Element {
	return p.Distance(ClosestPointOnTriangle(p, a, b, c))
}

// ClampCot limits a cotangent to the range of angles in [3, 177] degrees.
func ClampCot(v Element) Element {
	const bound = 19.1
	return math.Max(-bound, math.Min(bound, v))
}
