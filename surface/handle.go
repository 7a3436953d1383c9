package surface

import "strconv"

// Handles are indices into the mesh element arrays. Negative values are invalid.
type (
	Vertex   int
	Halfedge int
	Edge     int
	Face     int
)

const (
	InvalidVertex   Vertex   = -1
	InvalidHalfedge Halfedge = -1
	InvalidEdge     Edge     = -1
	InvalidFace     Face     = -1
)

func (v Vertex) IsValid() bool   { return v >= 0 }
func (h Halfedge) IsValid() bool { return h >= 0 }
func (e Edge) IsValid() bool     { return e >= 0 }
func (f Face) IsValid() bool     { return f >= 0 }

func (v Vertex) String() string   { return "v" + strconv.Itoa(int(v)) }
func (h Halfedge) String() string { return "h" + strconv.Itoa(int(h)) }
func (e Edge) String() string     { return "e" + strconv.Itoa(int(e)) }
func (f Face) String() string     { return "f" + strconv.Itoa(int(f)) }
