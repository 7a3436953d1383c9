package simplify

import "github.com/binzume/meshproc/surface"

// collapseData describes the halfedge collapse v0 -> v1 and its neighborhood.
//
//	      vl
//	     /  \
//	    / fl \
//	  v0 ---- v1
//	    \ fr /
//	     \  /
//	      vr
type collapseData struct {
	v0v1, v1v0 surface.Halfedge
	v0, v1     surface.Vertex
	fl, fr     surface.Face
	vl, vr     surface.Vertex
	v1vl, vlv0 surface.Halfedge
	v0vr, vrv1 surface.Halfedge
}

func newCollapseData(m *surface.Mesh, h surface.Halfedge) collapseData {
	cd := collapseData{
		v0v1: h,
		v1v0: m.Opposite(h),
		vl:   surface.InvalidVertex,
		vr:   surface.InvalidVertex,
		v1vl: surface.InvalidHalfedge,
		vlv0: surface.InvalidHalfedge,
		v0vr: surface.InvalidHalfedge,
		vrv1: surface.InvalidHalfedge,
	}
	cd.v0 = m.ToVertex(cd.v1v0)
	cd.v1 = m.ToVertex(cd.v0v1)
	cd.fl = m.Face(cd.v0v1)
	cd.fr = m.Face(cd.v1v0)

	if cd.fl.IsValid() {
		cd.v1vl = m.Next(cd.v0v1)
		cd.vlv0 = m.Next(cd.v1vl)
		cd.vl = m.ToVertex(cd.v1vl)
	}
	if cd.fr.IsValid() {
		cd.v0vr = m.Next(cd.v1v0)
		cd.vrv1 = m.Prev(cd.v0vr)
		cd.vr = m.FromVertex(cd.vrv1)
	}
	return cd
}
