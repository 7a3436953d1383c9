package geom

import "math"

type Quaternion struct {
	X Element
	Y Element
	Z Element
	W Element
}

func NewQuaternion(x, y, z, w Element) Quaternion {
	return Quaternion{X: x, Y: y, Z: z, W: w}
}

// NewQuaternionFromArray returns identity for all zero input (unset glTF rotation).
func NewQuaternionFromArray(arr [4]float32) Quaternion {
	q := Quaternion{X: Element(arr[0]), Y: Element(arr[1]), Z: Element(arr[2]), W: Element(arr[3])}
	if q.LenSqr() == 0 {
		q.W = 1
	}
	return q
}

func (q Quaternion) Len() Element {
	return math.Sqrt(q.LenSqr())
}

func (q Quaternion) LenSqr() Element {
	return q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W
}

func (q Quaternion) Normalize() Quaternion {
	l := q.Len()
	if l > 0 {
		return Quaternion{X: q.X / l, Y: q.Y / l, Z: q.Z / l, W: q.W / l}
	}
	return Quaternion{W: 1}
}

func (q Quaternion) Inverse() Quaternion {
	return Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

func (a Quaternion) Mul(b Quaternion) Quaternion {
	return Quaternion{
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
	}
}

func (q Quaternion) ApplyTo(v Vector3) Vector3 {
	r := q.Mul(Quaternion{X: v.X, Y: v.Y, Z: v.Z}).Mul(q.Inverse())
	return Vector3{X: r.X, Y: r.Y, Z: r.Z}
}
