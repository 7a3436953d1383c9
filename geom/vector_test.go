package geom

import (
	"math"
	"testing"
)

func TestVector3(t *testing.T) {
	zero := NewVector3(0, 0, 0)
	if zero.Len() != 0 || zero.LenSqr() != 0 || zero.Dot(zero) != 0 {
		t.Error("len != 0")
	}

	if zero.Normalize() != zero {
		t.Error("Normalize of zero vector should be zero.", zero.Normalize())
	}

	if NewVector3(1, 0, 0).Add(NewVector3(0, 1, 0)) != NewVector3(1, 1, 0) {
		t.Error("Vector.Add()")
	}

	if NewVector3(1, 0, 0).Cross(NewVector3(0, 1, 0)) != NewVector3(0, 0, 1) {
		t.Error("Vector.Cross()")
	}

	if NewVector3(0, 3, 4).Normalize().Len() != 1 {
		t.Error("Normalize shoud returns unit vector.")
	}
}

func TestQuaternion(t *testing.T) {
	const eps = 0.000001

	{
		q := NewEuler(0, 0, 0, RotationOrderXYZ).ToQuaternion()
		v1 := NewVector3(1, 2, 3)
		v2 := q.ApplyTo(v1)
		if v2.Sub(v1).Len() > eps {
			t.Error("v1 != v2: ", v1, v2)
		}
	}

	{
		q := NewEulerDegrees(0, 0, 90, RotationOrderXYZ).ToQuaternion()
		v2 := q.ApplyTo(NewVector3(1, 0, 0))
		if v2.Sub(NewVector3(0, 1, 0)).Len() > eps {
			t.Error("rotate z: ", v2)
		}
		if NewRotationMatrix4FromQuaternion(q).ApplyTo(NewVector3(1, 0, 0)).Sub(v2).Len() > eps {
			t.Error("matrix rotation != quaternion rotation")
		}
	}

	{
		q := NewEuler(1, 2, 3, RotationOrderZXY).ToQuaternion()
		if math.Abs(q.Len()-1) > eps {
			t.Error("Quaternion.Len() != 1", q)
		}
		q = q.Mul(q.Inverse())
		v1 := NewVector3(1, 2, 3)
		v2 := q.ApplyTo(v1)
		if v2.Sub(v1).Len() > eps {
			t.Error("v1 != v2: ", v1, v2)
		}
	}
}

func TestMatrix4(t *testing.T) {
	const eps = 0.000001

	pos := NewVector3(1, 2, 3)
	rot := NewEulerDegrees(10, 20, 30, RotationOrderZXY).ToQuaternion()
	scale := NewVector3(1.5, 1.6, 1.7)

	mat := NewTRSMatrix4(pos, rot, scale)
	v := NewVector3(0.5, -1, 2)
	expected := rot.ApplyTo(NewVector3(v.X*scale.X, v.Y*scale.Y, v.Z*scale.Z)).Add(pos)
	if mat.ApplyTo(v).Sub(expected).Len() > eps {
		t.Error("TRS: ", mat.ApplyTo(v), expected)
	}
	if math.Abs(mat.Det()-scale.X*scale.Y*scale.Z) > eps {
		t.Error("Det: ", mat.Det())
	}
	if NewScaleMatrix4(-1, 1, 1).Det() >= 0 {
		t.Error("mirror matrix should have negative determinant")
	}
}
