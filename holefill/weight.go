package holefill

import "math"

// Weight is the cost of a triangulation: the largest dihedral deviation (1 - cos) first,
// then the total of the squared triangle areas.
type Weight struct {
	Angle float64
	Area  float64
}

// WorstWeight is larger than any weight of a valid triangulation.
func WorstWeight() Weight {
	return Weight{Angle: math.MaxFloat64, Area: math.MaxFloat64}
}

func (w Weight) Add(o Weight) Weight {
	return Weight{Angle: math.Max(w.Angle, o.Angle), Area: w.Area + o.Area}
}

func (w Weight) Less(o Weight) bool {
	return w.Angle < o.Angle || (w.Angle == o.Angle && w.Area < o.Area)
}
