package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/binzume/meshproc/geom"
	"github.com/binzume/meshproc/meshio"
	"github.com/binzume/meshproc/surface"
)

func TestParseJob(t *testing.T) {
	job, err := ParseJob([]byte(`
input: in/a.obj
output: /tmp/b.stl
steps:
  - transform: {scale: 2, translate: [1, 0, 0]}
  - triangulate: {}
  - simplify: {ratio: 0.3}
`), "work")
	if err != nil {
		t.Fatal(err)
	}
	if job.Input != filepath.Join("work", "in", "a.obj") {
		t.Error("unexpected input", job.Input)
	}
	if job.Output != "/tmp/b.stl" {
		t.Error("unexpected output", job.Output)
	}
	if job.Preview != "" {
		t.Error("unexpected preview", job.Preview)
	}
	if len(job.Steps) != 3 {
		t.Fatal("unexpected steps", len(job.Steps))
	}
	if s, _ := job.Steps[0].step(); s != job.Steps[0].Transform || job.Steps[0].Transform.Scale != 2 {
		t.Error("unexpected transform step", s)
	}
	if job.Steps[2].Simplify == nil || job.Steps[2].Simplify.Ratio != 0.3 {
		t.Error("unexpected simplify step", job.Steps[2])
	}

	errorCases := map[string]string{
		"no input":      "output: a.obj",
		"unknown field": "input: a.obj\nfoo: 1",
		"unknown step":  "input: a.obj\nsteps:\n  - smooth: {}",
		"empty step":    "input: a.obj\nsteps:\n  - {}",
		"two ops":       "input: a.obj\nsteps:\n  - {triangulate: {}, simplify: {}}",
	}
	for name, src := range errorCases {
		if _, err := ParseJob([]byte(src), "."); err == nil {
			t.Error("expected error:", name)
		}
	}
}

func TestTransformStep(t *testing.T) {
	s := &TransformStep{Scale: 2, Rotate: []float64{0, 0, 90}, Translate: []float64{1, 0, 0}}
	m, _ := surface.FromPolygons([]geom.Vector3{{X: 1}, {Y: 1}, {Z: 1}}, [][]int{{0, 1, 2}})
	if err := s.apply(m); err != nil {
		t.Fatal(err)
	}
	// (1,0,0) -> scale (2,0,0) -> rotate (0,2,0) -> translate (1,2,0)
	p := m.Position(0)
	if math.Abs(p.X-1) > 1e-6 || math.Abs(p.Y-2) > 1e-6 || math.Abs(p.Z) > 1e-6 {
		t.Error("unexpected position", p)
	}
	if p := m.Position(2); math.Abs(p.X-1) > 1e-6 || math.Abs(p.Y) > 1e-6 || math.Abs(p.Z-2) > 1e-6 {
		t.Error("unexpected position", p)
	}

	if err := (&TransformStep{Rotate: []float64{1, 2}}).apply(m); err == nil {
		t.Error("expected error")
	}
	if err := (&FairStep{Sphere: []float64{1, 2}}).apply(m); err == nil {
		t.Error("expected error")
	}
}

func TestRunJob(t *testing.T) {
	dir := t.TempDir()

	sphere := surface.NewIcosphere(1, 2)
	sphere.DeleteVertex(0)
	sphere.CollectGarbage()
	nv := sphere.NumVertices()
	if err := meshio.Save(sphere, filepath.Join(dir, "in.obj")); err != nil {
		t.Fatal(err)
	}

	job := `
input: in.obj
output: out.stl
preview: out.png
steps:
  - fillholes: {no_refine: true}
  - simplify: {ratio: 0.5}
  - transform: {scale: 2}
`
	jobPath := filepath.Join(dir, "job.yaml")
	if err := os.WriteFile(jobPath, []byte(job), 0644); err != nil {
		t.Fatal(err)
	}
	j, err := LoadJob(jobPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Run(); err != nil {
		t.Fatal(err)
	}

	m, err := meshio.Load(filepath.Join(dir, "out.stl"))
	if err != nil {
		t.Fatal(err)
	}
	if m.NumVertices() >= nv {
		t.Error("not simplified", nv, m.NumVertices())
	}
	for _, e := range m.Edges() {
		if m.IsBorderEdge(e) {
			t.Error("hole remains", e)
			break
		}
	}
	min, max := m.Bounds()
	if max.X < 1.5 || min.X > -1.5 {
		t.Error("not scaled", min, max)
	}
	if st, err := os.Stat(filepath.Join(dir, "out.png")); err != nil || st.Size() == 0 {
		t.Error("preview not saved", err)
	}
}

func TestDefaultOutputFile(t *testing.T) {
	cases := map[string]string{
		"a/b.obj":   "a/b_out.obj",
		"b.GLB":     "b_out.glb",
		"c.mqoz":    "c_out.mqo",
		"d.unknown": "d_out.obj",
	}
	for in, expected := range cases {
		if out := defaultOutputFile(in, "out"); out != expected {
			t.Error("unexpected output", in, out)
		}
	}

	if v, err := parseFloats("1, 2,3", 3); err != nil || v[0] != 1 || v[2] != 3 {
		t.Error("unexpected values", v, err)
	}
	if v, err := parseFloats("", 3); err != nil || v != nil {
		t.Error("empty string should be nil", v, err)
	}
	for _, s := range []string{"1,2", "1,x,3"} {
		if _, err := parseFloats(s, 3); err == nil {
			t.Error("expected error", s)
		}
	}
}
