// Package simplify reduces the vertex count of triangle meshes by greedy halfedge collapses
// ordered by quadric error.
package simplify

import (
	"errors"
	"log"
	"math"

	"github.com/binzume/meshproc/geom"
	"github.com/binzume/meshproc/surface"
)

var ErrNotTriangleMesh = errors.New("simplify: not a triangle mesh")

// Option holds the collapse constraints. Zero values disable a constraint.
type Option struct {
	// AspectRatio is the maximum allowed triangle aspect ratio.
	AspectRatio float64
	// EdgeLength is the maximum length of edges created by a collapse.
	EdgeLength float64
	// MaxValence is the maximum allowed vertex valence.
	MaxValence int
	// NormalDeviation is the maximum normal deviation angle in degrees.
	NormalDeviation float64
	// HausdorffError is the maximum distance of the original surface samples.
	HausdorffError float64
}

type Simplifier struct {
	mesh *surface.Mesh

	initialized bool
	scope       *surface.PropertyScope

	aspectRatio     float64
	edgeLength      float64
	maxValence      int
	normalDeviation float64
	hausdorffError  float64

	hasSelection bool
	hasFeatures  bool

	points     *surface.Property[surface.Vertex, geom.Vector3]
	fnormal    *surface.Property[surface.Face, geom.Vector3]
	quadric    *surface.Property[surface.Vertex, geom.Quadric]
	normalCone *surface.Property[surface.Face, geom.NormalCone]
	facePoints *surface.Property[surface.Face, []geom.Vector3]
	selected   *surface.Property[surface.Vertex, bool]
	vfeature   *surface.Property[surface.Vertex, bool]
	efeature   *surface.Property[surface.Edge, bool]

	priority *surface.Property[surface.Vertex, float64]
	target   *surface.Property[surface.Vertex, surface.Halfedge]
	queue    *vertexQueue
}

func NewSimplifier(mesh *surface.Mesh) *Simplifier {
	return &Simplifier{mesh: mesh, points: mesh.Points()}
}

// Initialize prepares quadrics and the optional constraint data. nil selects the defaults.
func (s *Simplifier) Initialize(opt *Option) error {
	if !s.mesh.IsTriangleMesh() {
		log.Println("simplify: not a triangle mesh")
		return ErrNotTriangleMesh
	}
	if opt == nil {
		opt = &Option{}
	}
	if s.scope != nil {
		s.scope.Release()
	}
	s.scope = surface.NewPropertyScope(s.mesh)

	s.aspectRatio = opt.AspectRatio
	s.edgeLength = opt.EdgeLength
	s.maxValence = opt.MaxValence
	s.normalDeviation = opt.NormalDeviation / (180.0 * math.Pi)
	s.hausdorffError = opt.HausdorffError

	s.fnormal = surface.ScopedFaceProperty(s.scope, "f:normal", geom.Vector3{})
	for _, f := range s.mesh.Faces() {
		s.fnormal.Set(f, s.mesh.ComputeFaceNormal(f))
	}

	s.normalCone = nil
	if s.normalDeviation > 0 {
		s.normalCone = surface.ScopedFaceProperty(s.scope, "f:normalcone", geom.NormalCone{})
	}
	s.facePoints = nil
	if s.hausdorffError > 0 {
		s.facePoints = surface.ScopedFaceProperty[[]geom.Vector3](s.scope, "f:points", nil)
	}
	s.quadric = surface.ScopedVertexProperty(s.scope, "v:quadric", geom.Quadric{})

	s.hasSelection = false
	s.selected = surface.GetVertexProperty[bool](s.mesh, surface.SelectedProperty)
	if s.selected != nil {
		for _, v := range s.mesh.Vertices() {
			if s.selected.Get(v) {
				s.hasSelection = true
				break
			}
		}
	}

	s.hasFeatures = false
	s.vfeature = surface.GetVertexProperty[bool](s.mesh, surface.VertexFeatureProperty)
	s.efeature = surface.GetEdgeProperty[bool](s.mesh, surface.EdgeFeatureProperty)
	if s.vfeature != nil && s.efeature != nil {
		for _, v := range s.mesh.Vertices() {
			if s.vfeature.Get(v) {
				s.hasFeatures = true
				break
			}
		}
	}

	for _, v := range s.mesh.Vertices() {
		var q geom.Quadric
		for _, f := range s.mesh.VertexFaces(v) {
			q.AddTo(geom.NewQuadric(s.fnormal.Get(f), s.points.Get(v)))
		}
		s.quadric.Set(v, q)
	}

	for _, f := range s.mesh.Faces() {
		if s.normalCone != nil {
			s.normalCone.Set(f, geom.NewNormalCone(s.fnormal.Get(f), 0))
		}
		if s.facePoints != nil {
			s.facePoints.Set(f, nil)
		}
	}

	s.initialized = true
	return nil
}

// Simplify collapses edges until the mesh has at most n vertices or no legal collapse is left.
// The mesh is garbage collected afterwards.
func (s *Simplifier) Simplify(n int) error {
	if !s.mesh.IsTriangleMesh() {
		log.Println("simplify: not a triangle mesh")
		return ErrNotTriangleMesh
	}
	if !s.initialized {
		if err := s.Initialize(nil); err != nil {
			return err
		}
	}
	defer func() {
		s.queue = nil
		s.mesh.CollectGarbage()
		s.scope.Release()
		s.initialized = false
	}()

	s.priority = surface.ScopedVertexProperty(s.scope, "v:prio", 0.0)
	pos := surface.ScopedVertexProperty(s.scope, "v:heap", -1)
	s.target = surface.ScopedVertexProperty(s.scope, "v:target", surface.InvalidHalfedge)

	s.queue = newVertexQueue(s.priority, pos, s.mesh.NumVertices())
	for _, v := range s.mesh.Vertices() {
		s.queue.resetPosition(v)
		s.enqueueVertex(v)
	}

	nv := s.mesh.NumVertices()
	for nv > n && !s.queue.empty() {
		v := s.queue.popFront()
		h := s.target.Get(v)
		cd := newCollapseData(s.mesh, h)

		// the neighborhood may have changed since v was queued
		if !s.mesh.IsCollapseOK(h) {
			continue
		}

		oneRing := s.mesh.VertexNeighbors(cd.v0)

		s.mesh.Collapse(h)
		nv--

		s.postprocessCollapse(&cd)

		for _, vv := range oneRing {
			s.enqueueVertex(vv)
		}
	}
	return nil
}

// enqueueVertex finds the cheapest legal collapse starting at v and updates the queue.
func (s *Simplifier) enqueueVertex(v surface.Vertex) {
	minPrio := math.MaxFloat64
	minH := surface.InvalidHalfedge

	for _, h := range s.mesh.VertexOutgoing(v) {
		cd := newCollapseData(s.mesh, h)
		if s.isCollapseLegal(&cd) {
			prio := s.collapsePriority(&cd)
			if prio != -1 && prio < minPrio {
				minPrio = prio
				minH = h
			}
		}
	}

	if minH.IsValid() {
		s.priority.Set(v, minPrio)
		s.target.Set(v, minH)
		if s.queue.isStored(v) {
			s.queue.update(v)
		} else {
			s.queue.insert(v)
		}
	} else {
		if s.queue.isStored(v) {
			s.queue.remove(v)
		}
		s.priority.Set(v, -1)
		s.target.Set(v, minH)
	}
}

func (s *Simplifier) isCollapseLegal(cd *collapseData) bool {
	m := s.mesh

	if s.hasSelection && !s.selected.Get(cd.v0) {
		return false
	}

	if s.hasFeatures {
		if s.vfeature.Get(cd.v0) && !s.efeature.Get(m.EdgeOf(cd.v0v1)) {
			return false
		}
		if cd.vl.IsValid() && s.efeature.Get(m.EdgeOf(cd.vlv0)) {
			return false
		}
		if cd.vr.IsValid() && s.efeature.Get(m.EdgeOf(cd.v0vr)) {
			return false
		}
	}

	// do not collapse a boundary vertex to an interior vertex
	if m.IsBorderVertex(cd.v0) && !m.IsBorderVertex(cd.v1) {
		return false
	}

	// v0 needs at least two incident faces
	if m.CWRotated(m.CWRotated(cd.v0v1)) == cd.v0v1 {
		return false
	}

	if !m.IsCollapseOK(cd.v0v1) {
		return false
	}

	if s.maxValence > 0 {
		val0 := m.Valence(cd.v0)
		val1 := m.Valence(cd.v1)
		val := val0 + val1 - 1
		if cd.fl.IsValid() {
			val--
		}
		if cd.fr.IsValid() {
			val--
		}
		if val > s.maxValence && val >= max(val0, val1) {
			return false
		}
	}

	p0 := s.points.Get(cd.v0)
	p1 := s.points.Get(cd.v1)

	if s.edgeLength > 0 {
		for _, v := range m.VertexNeighbors(cd.v0) {
			if v != cd.v1 && v != cd.vl && v != cd.vr {
				if s.points.Get(v).Distance(p1) > s.edgeLength {
					return false
				}
			}
		}
	}

	// the remaining tests move v0 to p1 temporarily
	faces := m.VertexFaces(cd.v0)
	ok := true
	s.points.Set(cd.v0, p1)

	if s.normalDeviation == 0 {
		for _, f := range faces {
			if f != cd.fl && f != cd.fr {
				if s.fnormal.Get(f).Dot(m.ComputeFaceNormal(f)) < 0 {
					ok = false
					break
				}
			}
		}
	} else {
		fll, frr := surface.InvalidFace, surface.InvalidFace
		if cd.vl.IsValid() {
			fll = m.Face(m.Opposite(m.Prev(cd.v0v1)))
		}
		if cd.vr.IsValid() {
			frr = m.Face(m.Opposite(m.Next(cd.v1v0)))
		}
		for _, f := range faces {
			if f != cd.fl && f != cd.fr {
				nc := s.normalCone.Get(f)
				nc.Merge(m.ComputeFaceNormal(f))
				if f == fll {
					nc.MergeCone(s.normalCone.Get(cd.fl))
				}
				if f == frr {
					nc.MergeCone(s.normalCone.Get(cd.fr))
				}
				if nc.Angle > 0.5*s.normalDeviation {
					ok = false
					break
				}
			}
		}
	}

	if ok && s.aspectRatio > 0 {
		var ar0, ar1 float64
		for _, f := range faces {
			if f != cd.fl && f != cd.fr {
				s.points.Set(cd.v0, p1)
				ar1 = math.Max(ar1, s.faceAspectRatio(f))
				s.points.Set(cd.v0, p0)
				ar0 = math.Max(ar0, s.faceAspectRatio(f))
			}
		}
		s.points.Set(cd.v0, p1)
		if ar1 > s.aspectRatio && ar1 > ar0 {
			ok = false
		}
	}

	if ok && s.hausdorffError > 0 {
		var samples []geom.Vector3
		for _, f := range faces {
			samples = append(samples, s.facePoints.Get(f)...)
		}
		samples = append(samples, p0)

		for _, p := range samples {
			found := false
			for _, f := range faces {
				if f != cd.fl && f != cd.fr && s.faceDistance(f, p) < s.hausdorffError {
					found = true
					break
				}
			}
			if !found {
				ok = false
				break
			}
		}
	}

	s.points.Set(cd.v0, p0)
	return ok
}

// collapsePriority is the summed quadric error of both endpoints evaluated at v1.
func (s *Simplifier) collapsePriority(cd *collapseData) float64 {
	q := s.quadric.Get(cd.v0).Add(s.quadric.Get(cd.v1))
	return q.Eval(s.points.Get(cd.v1))
}

func (s *Simplifier) postprocessCollapse(cd *collapseData) {
	m := s.mesh
	s.quadric.Ptr(cd.v1).AddTo(s.quadric.Get(cd.v0))

	// f:normal keeps the input normals for the flip test
	faces := m.VertexFaces(cd.v1)

	if s.normalCone != nil {
		for _, f := range faces {
			s.normalCone.Ptr(f).Merge(m.ComputeFaceNormal(f))
		}
		if cd.vl.IsValid() {
			if f := m.Face(cd.v1vl); f.IsValid() {
				s.normalCone.Ptr(f).MergeCone(s.normalCone.Get(cd.fl))
			}
		}
		if cd.vr.IsValid() {
			if f := m.Face(cd.vrv1); f.IsValid() {
				s.normalCone.Ptr(f).MergeCone(s.normalCone.Get(cd.fr))
			}
		}
	}

	if s.facePoints != nil {
		var samples []geom.Vector3
		for _, f := range faces {
			samples = append(samples, s.facePoints.Get(f)...)
			s.facePoints.Set(f, nil)
		}
		if cd.fl.IsValid() {
			samples = append(samples, s.facePoints.Get(cd.fl)...)
			s.facePoints.Set(cd.fl, nil)
		}
		if cd.fr.IsValid() {
			samples = append(samples, s.facePoints.Get(cd.fr)...)
			s.facePoints.Set(cd.fr, nil)
		}
		samples = append(samples, s.points.Get(cd.v0))

		if len(faces) == 0 {
			return
		}
		for _, p := range samples {
			dd := math.MaxFloat64
			ff := faces[0]
			for _, f := range faces {
				if d := s.faceDistance(f, p); d < dd {
					ff = f
					dd = d
				}
			}
			s.facePoints.Set(ff, append(s.facePoints.Get(ff), p))
		}
	}
}

func (s *Simplifier) facePositions(f surface.Face) (geom.Vector3, geom.Vector3, geom.Vector3) {
	h := s.mesh.FaceHalfedge(f)
	p0 := s.points.Get(s.mesh.ToVertex(h))
	h = s.mesh.Next(h)
	p1 := s.points.Get(s.mesh.ToVertex(h))
	h = s.mesh.Next(h)
	p2 := s.points.Get(s.mesh.ToVertex(h))
	return p0, p1, p2
}

func (s *Simplifier) faceAspectRatio(f surface.Face) float64 {
	return geom.TriangleAspectRatio(s.facePositions(f))
}

func (s *Simplifier) faceDistance(f surface.Face, p geom.Vector3) float64 {
	p0, p1, p2 := s.facePositions(f)
	return geom.DistPointTriangle(p, p0, p1, p2)
}
