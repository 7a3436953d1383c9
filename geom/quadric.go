package geom

// Quadric is a symmetric 4x4 error matrix, stored as its upper triangle.
//
//	| a b c d |
//	| b e f g |
//	| c f h i |
//	| d g i j |
//
// The zero value is the zero quadric.
type Quadric struct {
	a, b, c, d, e, f, g, h, i, j Element
}

// NewQuadric returns the squared distance quadric of the plane through p with normal n.
func NewQuadric(n, p Vector3) Quadric {
	return NewPlaneQuadric(n.X, n.Y, n.Z, -n.Dot(p))
}

// NewPlaneQuadric returns the quadric of plane ax + by + cz + d = 0.
func NewPlaneQuadric(a, b, c, d Element) Quadric {
	return Quadric{
		a: a * a, b: a * b, c: a * c, d: a * d,
		e: b * b, f: b * c, g: b * d,
		h: c * c, i: c * d,
		j: d * d,
	}
}

func (q Quadric) Add(o Quadric) Quadric {
	q.AddTo(o)
	return q
}

// AddTo accumulates o into q.
func (q *Quadric) AddTo(o Quadric) {
	q.a += o.a
	q.b += o.b
	q.c += o.c
	q.d += o.d
	q.e += o.e
	q.f += o.f
	q.g += o.g
	q.h += o.h
	q.i += o.i
	q.j += o.j
}

func (q Quadric) Scale(s Element) Quadric {
	return Quadric{q.a * s, q.b * s, q.c * s, q.d * s, q.e * s, q.f * s, q.g * s, q.h * s, q.i * s, q.j * s}
}

// Eval returns v^T Q v for v = (p, 1).
func (q Quadric) Eval(p Vector3) Element {
	x, y, z := p.X, p.Y, p.Z
	return q.a*x*x + 2*q.b*x*y + 2*q.c*x*z + 2*q.d*x +
		q.e*y*y + 2*q.f*y*z + 2*q.g*y +
		q.h*z*z + 2*q.i*z +
		q.j
}
