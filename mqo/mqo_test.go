package mqo

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/binzume/meshproc/geom"
	"golang.org/x/text/encoding/japanese"
)

const testDocument = `Metasequoia Document
Format Text Ver 1.1

Scene {
	pos 0.0000 0.0000 1500.0000
	dirlights 1 {
		light {
			dir 0.408 0.408 0.816
		}
	}
}
Material 2 {
	"mat1" shader(3) col(1.000 0.500 0.250 1.000) dif(0.800) amb(0.600) emi(0.000) spc(0.000) power(5.00)
	"mat2" col(0.000 0.000 1.000 0.500) tex("tex\a.png")
}
MaterialEx2 1 {
	material 0 {
		shadertype "hlsl"
		shaderparam 1 {
			"x" int 1
		}
	}
}
Object "四角形" {
	depth 0
	visible 15
	locking 0
	vertex 4 {
		-1.0000 0.0000 -1.0000
		1.0000 0.0000 -1.0000
		1.0000 0.0000 1.0000
		-1.0000 0.0000 1e-2
	}
	vertexattr {
		uid {
			1
			2
			3
			4
		}
	}
	face 2 {
		3 V(0 1 2) M(1) UV(0 0 1 0 1 1)
		3 V(0 2 3) M(0)
	}
}
Eof
`

func TestParse(t *testing.T) {
	src, err := japanese.ShiftJIS.NewEncoder().String(testDocument)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := NewParser(strings.NewReader(src), "test.mqo").Parse()
	if err != nil {
		t.Fatal(err)
	}

	if len(doc.Materials) != 2 || doc.Materials[0].Name != "mat1" || doc.Materials[0].Color[1] != 0.5 {
		t.Error("unexpected materials", doc.Materials)
	}
	if len(doc.Objects) != 1 {
		t.Fatal("unexpected objects", len(doc.Objects))
	}
	o := doc.GetObjectByName("四角形")
	if o == nil {
		t.Fatal("object not found", doc.Objects[0].Name)
	}
	if !o.Visible || len(o.Vertexes) != 4 || len(o.Faces) != 2 {
		t.Fatal("unexpected object", o)
	}
	if o.Vertexes[0] != (geom.Vector3{X: -1, Z: -1}) || o.Vertexes[3].Z != 0.01 {
		t.Error("unexpected vertices", o.Vertexes)
	}
	if len(o.Faces[0].Verts) != 3 || o.Faces[0].Verts[2] != 2 || o.Faces[0].Material != 1 {
		t.Error("unexpected face", o.Faces[0])
	}
	if o.Faces[1].Verts[2] != 3 || o.Faces[1].Material != 0 {
		t.Error("unexpected face", o.Faces[1])
	}
}

func TestWriteAndParse(t *testing.T) {
	doc := NewDocument()
	o := NewObject("obj1")
	o.Vertexes = []geom.Vector3{{X: 0.125}, {X: 1, Y: -2.5}, {Z: 3}, {X: 1, Y: 1, Z: 1}}
	o.Faces = []*Face{{Verts: []int{0, 1, 2}}, {Verts: []int{0, 2, 3, 1}}}
	o.Visible = false
	doc.Objects = append(doc.Objects, o)

	var buf bytes.Buffer
	if err := WriteMQO(doc, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "CodePage utf8") {
		t.Error("code page should be written")
	}

	doc2, err := NewParser(&buf, "").Parse()
	if err != nil {
		t.Fatal(err)
	}
	if len(doc2.Materials) != 1 {
		t.Error("default material expected", len(doc2.Materials))
	}
	o2 := doc2.GetObjectByName("obj1")
	if o2 == nil || o2.Visible {
		t.Fatal("unexpected object", o2)
	}
	for i, v := range o.Vertexes {
		if o2.Vertexes[i] != v {
			t.Error("vertex mismatch", i, o2.Vertexes[i], v)
		}
	}
	if len(o2.Faces) != 2 || len(o2.Faces[1].Verts) != 4 || o2.Faces[1].Verts[3] != 1 {
		t.Error("unexpected faces", o2.Faces)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mqo")
	doc := NewDocument()
	o := NewObject("tri")
	o.Vertexes = []geom.Vector3{{}, {X: 1}, {Y: 1}}
	o.Faces = []*Face{{Verts: []int{0, 2, 1}}}
	doc.Objects = append(doc.Objects, o)

	if err := Save(doc, path); err != nil {
		t.Fatal(err)
	}
	doc2, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc2.Objects) != 1 || len(doc2.Objects[0].Faces) != 1 {
		t.Error("unexpected document", doc2.Objects)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "notfound.mqo")); err == nil {
		t.Error("error expected")
	}
}
