package geom

import "math"

// NormalCone bounds a set of normals by an axis and an opening half angle (radians).
type NormalCone struct {
	Center Vector3
	Angle  Element
}

func NewNormalCone(normal Vector3, angle Element) NormalCone {
	return NormalCone{Center: normal, Angle: angle}
}

// Merge enlarges the cone to contain the unit vector n.
func (nc *NormalCone) Merge(n Vector3) {
	nc.MergeCone(NormalCone{Center: n})
}

// MergeCone enlarges the cone to contain the cone o.
func (nc *NormalCone) MergeCone(o NormalCone) {
	dp := nc.Center.Dot(o.Center)

	if dp > 0.99999 {
		// axes point in the same direction
		nc.Angle = math.Max(nc.Angle, o.Angle)
	} else if dp < -0.99999 {
		// axes point in opposite directions
		nc.Angle = 2 * math.Pi
	} else {
		centerAngle := math.Acos(dp)
		minAngle := math.Min(-nc.Angle, centerAngle-o.Angle)
		maxAngle := math.Max(nc.Angle, centerAngle+o.Angle)
		nc.Angle = 0.5 * (maxAngle - minAngle)

		axisAngle := 0.5 * (minAngle + maxAngle)
		nc.Center = nc.Center.Scale(math.Sin(centerAngle - axisAngle)).
			Add(o.Center.Scale(math.Sin(axisAngle))).
			Scale(1 / math.Sin(centerAngle))
	}
}
