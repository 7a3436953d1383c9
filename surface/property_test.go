package surface

import (
	"testing"

	"github.com/binzume/meshproc/geom"
)

func TestProperty(t *testing.T) {
	m := NewGrid(1, 1)

	weight := AddVertexProperty(m, "v:weight", 1.5)
	if weight == nil || weight.Get(3) != 1.5 || len(weight.Data()) != 4 {
		t.Fatal("AddVertexProperty")
	}
	if AddVertexProperty(m, "v:weight", 2.0) != nil {
		t.Error("duplicated name should fail")
	}
	if GetVertexProperty[float64](m, "v:weight") != weight {
		t.Error("GetVertexProperty")
	}
	if GetVertexProperty[int](m, "v:weight") != nil {
		t.Error("type mismatch should return nil")
	}
	if VertexProperty(m, "v:weight", 0.0) != weight {
		t.Error("VertexProperty should return the existing property")
	}

	v := m.AddVertex(geom.NewVector3(2, 2, 0))
	if weight.Get(v) != 1.5 {
		t.Error("new element should have the default value")
	}

	if !m.RemoveVertexProperty("v:weight") || m.HasVertexProperty("v:weight") {
		t.Error("RemoveVertexProperty")
	}

	elen := AddEdgeProperty(m, "e:len", 0.0)
	for _, e := range m.Edges() {
		elen.Set(e, m.EdgeLength(e))
	}
	if *elen.Ptr(m.FindEdge(0, 1)) != 1 {
		t.Error("edge property")
	}
}

func TestPropertyFollowsGarbageCollection(t *testing.T) {
	m := NewIcosphere(1, 1)
	tag := AddVertexProperty(m, "v:tag", geom.Vector3{})
	for _, v := range m.Vertices() {
		tag.Set(v, m.Position(v))
	}
	ftag := AddFaceProperty(m, "f:tag", geom.Vector3{})
	for _, f := range m.Faces() {
		ftag.Set(f, m.ComputeFaceNormal(f))
	}

	for i := 0; i < 10; i++ {
		for _, h := range m.Halfedges() {
			if m.IsCollapseOK(h) {
				m.Collapse(h)
				break
			}
		}
	}
	m.CollectGarbage()
	checkConnectivity(t, m)

	for _, v := range m.Vertices() {
		if tag.Get(v) != m.Position(v) {
			t.Fatal("vertex property does not follow the vertex: ", v)
		}
	}
	if len(ftag.Data()) != m.FacesSize() {
		t.Error("face property size: ", len(ftag.Data()), m.FacesSize())
	}
}

func TestPropertyScope(t *testing.T) {
	m := NewGrid(1, 1)
	AddFaceProperty(m, "f:normal", geom.Vector3{})

	scope := NewPropertyScope(m)
	locked := ScopedVertexProperty(scope, "v:locked", true)
	ScopedEdgeProperty(scope, "e:locked", true)
	ScopedHalfedgeProperty(scope, "h:tmp", 0)
	normals := ScopedFaceProperty(scope, "f:normal", geom.Vector3{})
	if locked == nil || normals == nil || !locked.Get(0) {
		t.Fatal("scoped properties")
	}

	scope.Release()
	if m.HasVertexProperty("v:locked") || m.HasEdgeProperty("e:locked") || GetHalfedgeProperty[int](m, "h:tmp") != nil {
		t.Error("scoped properties should be removed")
	}
	if !m.HasFaceProperty("f:normal") {
		t.Error("existing property should be kept")
	}
	scope.Release()
}
