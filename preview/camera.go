package preview

import (
	"math"

	"github.com/binzume/meshproc/surface"
	"github.com/go-gl/mathgl/mgl64"
)

type Camera struct {
	Eye    mgl64.Vec3
	Center mgl64.Vec3
	Up     mgl64.Vec3
	// FovY is the vertical field of view in degrees.
	FovY float64
}

// FitCamera returns a camera looking at the bounding sphere of the mesh from the direction dir.
func FitCamera(m *surface.Mesh, dir mgl64.Vec3) *Camera {
	min, max := m.Bounds()
	center := mgl64.Vec3{(min.X + max.X) / 2, (min.Y + max.Y) / 2, (min.Z + max.Z) / 2}
	radius := max.Sub(min).Len() / 2
	if radius == 0 {
		radius = 1
	}
	const fov = 40.0
	dist := radius / math.Sin(mgl64.DegToRad(fov/2))
	if dir.Len() == 0 {
		dir = mgl64.Vec3{0, 0, 1}
	}
	up := mgl64.Vec3{0, 1, 0}
	if math.Abs(dir.Normalize().Dot(up)) > 0.999 {
		up = mgl64.Vec3{0, 0, -1}
	}
	return &Camera{
		Eye:    center.Add(dir.Normalize().Mul(dist)),
		Center: center,
		Up:     up,
		FovY:   fov,
	}
}

func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Eye, c.Center, c.Up)
}

// Projection returns a perspective matrix with clip planes around the look-at distance.
func (c *Camera) Projection(aspect float64) mgl64.Mat4 {
	d := c.Eye.Sub(c.Center).Len()
	if d == 0 {
		d = 1
	}
	return mgl64.Perspective(mgl64.DegToRad(c.FovY), aspect, d*0.01, d*10)
}
