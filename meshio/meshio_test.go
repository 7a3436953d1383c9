package meshio

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/binzume/meshproc/geom"
	"github.com/binzume/meshproc/surface"
)

func checkSameMesh(t *testing.T, a, b *surface.Mesh) {
	t.Helper()
	if a.NumVertices() != b.NumVertices() || a.NumFaces() != b.NumFaces() || a.NumEdges() != b.NumEdges() {
		t.Fatal("topology mismatch", a.NumVertices(), b.NumVertices(), a.NumFaces(), b.NumFaces())
	}
	if math.Abs(a.SurfaceArea()-b.SurfaceArea()) > 1e-5 {
		t.Error("area mismatch", a.SurfaceArea(), b.SurfaceArea())
	}
	amin, amax := a.Bounds()
	bmin, bmax := b.Bounds()
	if amin.Distance(bmin) > 1e-5 || amax.Distance(bmax) > 1e-5 {
		t.Error("bounds mismatch", amin, amax, bmin, bmax)
	}
	av, aa := orientation(a)
	bv, ba := orientation(b)
	if math.Abs(av-bv) > 1e-4 || aa.Distance(ba) > 1e-4 {
		t.Error("orientation mismatch", av, bv, aa, ba)
	}
}

// orientation returns three times the signed volume and the vector area.
func orientation(m *surface.Mesh) (float64, geom.Vector3) {
	var vol float64
	var area geom.Vector3
	for _, f := range m.Faces() {
		var c geom.Vector3
		vs := m.FaceVertices(f)
		for _, v := range vs {
			c = c.Add(m.Position(v))
		}
		c = c.Scale(1 / float64(len(vs)))
		n := m.ComputeFaceNormal(f).Scale(m.FaceArea(f))
		vol += n.Dot(c)
		area = area.Add(n)
	}
	return vol, area
}

func TestWeld(t *testing.T) {
	points := []geom.Vector3{{X: 0}, {X: 1}, {X: 1e-9}, {X: 2}, {X: 1 + 1e-9}, {X: 0}}
	unique, index := Weld(points, 1e-6)
	if len(unique) != 3 {
		t.Fatal("unexpected unique points", unique)
	}
	expected := []int{0, 1, 0, 2, 1, 0}
	for i := range expected {
		if index[i] != expected[i] {
			t.Error("unexpected index", i, index[i])
		}
	}
	if unique[1] != points[1] {
		t.Error("first point of a cluster should be kept", unique[1])
	}

	if u, idx := Weld(nil, 1); len(u) != 0 || len(idx) != 0 {
		t.Error("empty input")
	}
}

func TestOBJ(t *testing.T) {
	src := `# test
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vn 0 0 1
f 1/1/1 2/1/1 3/1/1
f -4//1 -2//1 -1//1
`
	m, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if m.NumVertices() != 4 || m.NumFaces() != 2 {
		t.Fatal("unexpected mesh", m.NumVertices(), m.NumFaces())
	}
	if n := m.ComputeFaceNormal(0); n.Z < 0.99 {
		t.Error("unexpected normal", n)
	}

	var buf bytes.Buffer
	if err := WriteOBJ(&buf, m); err != nil {
		t.Fatal(err)
	}
	m2, err := ReadOBJ(&buf)
	if err != nil {
		t.Fatal(err)
	}
	checkSameMesh(t, m, m2)

	if _, err := ReadOBJ(strings.NewReader("v 1 2\n")); err == nil {
		t.Error("error expected")
	}
	if _, err := ReadOBJ(strings.NewReader("v 1 2 x\n")); err == nil {
		t.Error("error expected")
	}
}

func TestOFF(t *testing.T) {
	src := `OFF
# comment
4 1 4
0 0 0
1 0 0 # comment
1 1 0
0 1 0
4 0 1 2 3 255 0 0
`
	m, err := ReadOFF(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if m.NumVertices() != 4 || m.NumFaces() != 1 || m.FaceValence(0) != 4 {
		t.Fatal("unexpected mesh", m.NumVertices(), m.NumFaces())
	}

	mesh := surface.NewIcosphere(1, 1)
	var buf bytes.Buffer
	if err := WriteOFF(&buf, mesh); err != nil {
		t.Fatal(err)
	}
	m2, err := ReadOFF(&buf)
	if err != nil {
		t.Fatal(err)
	}
	checkSameMesh(t, mesh, m2)

	if _, err := ReadOFF(strings.NewReader("PLY\n")); err == nil {
		t.Error("error expected")
	}
	if _, err := ReadOFF(strings.NewReader("OFF\n3 1 0\n0 0 0\n")); err == nil {
		t.Error("error expected")
	}
}

func TestSTL(t *testing.T) {
	mesh := surface.NewIcosahedron(2)

	var buf bytes.Buffer
	if err := WriteSTL(&buf, mesh); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 84+50*20 {
		t.Error("unexpected size", buf.Len())
	}
	m, err := ReadSTL(&buf)
	if err != nil {
		t.Fatal(err)
	}
	checkSameMesh(t, mesh, m)

	buf.Reset()
	if err := WriteASCIISTL(&buf, mesh, "ico"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "solid ico") {
		t.Error("unexpected header")
	}
	m, err = ReadSTL(&buf)
	if err != nil {
		t.Fatal(err)
	}
	checkSameMesh(t, mesh, m)

	if _, err := ReadSTL(strings.NewReader("solid x\nvertex 0 0 0\nendsolid\n")); err == nil {
		t.Error("error expected")
	}
	if _, err := ReadSTL(bytes.NewReader(make([]byte, 10))); err == nil {
		t.Error("error expected")
	}
}

func TestMQO(t *testing.T) {
	mesh := surface.NewGrid(2, 3)
	var buf bytes.Buffer
	if err := Write(&buf, mesh, ".mqo"); err != nil {
		t.Fatal(err)
	}
	m, err := Read(&buf, ".mqo")
	if err != nil {
		t.Fatal(err)
	}
	checkSameMesh(t, mesh, m)

	// faces are clockwise in the document
	doc := ToMQO(mesh, "grid")
	f := doc.Objects[0].Faces[0]
	p := doc.Objects[0].Vertexes
	n := geom.TriangleNormal(p[f.Verts[0]], p[f.Verts[1]], p[f.Verts[2]])
	if n.Z > -0.99 {
		t.Error("unexpected winding", n)
	}

	doc.Objects[0].Visible = false
	if FromMQO(doc).NumVertices() != 0 {
		t.Error("hidden objects should be skipped")
	}
}

func TestGLTF(t *testing.T) {
	mesh := surface.NewIcosphere(1, 1)
	doc := ToGLTF(mesh, "ico")
	m, err := FromGLTF(doc)
	if err != nil {
		t.Fatal(err)
	}
	checkSameMesh(t, mesh, m)

	// node transform
	doc.Nodes[0].Translation = [3]float32{10, 0, 0}
	doc.Nodes[0].Scale = [3]float32{2, 2, 2}
	m, err = FromGLTF(doc)
	if err != nil {
		t.Fatal(err)
	}
	min, max := m.Bounds()
	if math.Abs(min.X-8) > 1e-5 || math.Abs(max.X-12) > 1e-5 {
		t.Error("unexpected bounds", min, max)
	}
	if math.Abs(m.SurfaceArea()-4*mesh.SurfaceArea()) > 1e-4 {
		t.Error("unexpected area", m.SurfaceArea())
	}

	// mirrored node keeps outward normals
	doc.Nodes[0].Translation = [3]float32{}
	doc.Nodes[0].Scale = [3]float32{-1, 1, 1}
	m, err = FromGLTF(doc)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range m.Faces() {
		c := geom.Vector3{}
		for _, v := range m.FaceVertices(f) {
			c = c.Add(m.Position(v))
		}
		if m.ComputeFaceNormal(f).Dot(c) <= 0 {
			t.Fatal("face points inward", f)
		}
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	mesh := surface.NewIcosphere(1, 1)
	for _, ext := range []string{".obj", ".off", ".stl", ".mqo", ".gltf", ".glb"} {
		path := filepath.Join(dir, "test"+ext)
		if err := Save(mesh, path); err != nil {
			t.Fatal(ext, err)
		}
		m, err := Load(path)
		if err != nil {
			t.Fatal(ext, err)
		}
		checkSameMesh(t, mesh, m)
	}

	if err := Save(mesh, filepath.Join(dir, "test.xyz")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Error("expected ErrUnsupportedFormat", err)
	}
	if _, err := Load(filepath.Join(dir, "notfound.obj")); err == nil {
		t.Error("error expected")
	}
}
