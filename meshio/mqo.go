package meshio

import (
	"github.com/binzume/meshproc/geom"
	"github.com/binzume/meshproc/mqo"
	"github.com/binzume/meshproc/surface"
)

// FromMQO merges the visible objects of the document into one mesh.
// Metasequoia faces are clockwise, mesh faces are counter-clockwise.
func FromMQO(doc *mqo.Document) *surface.Mesh {
	var points []geom.Vector3
	var faces [][]int
	for _, obj := range doc.Objects {
		if !obj.Visible {
			continue
		}
		base := len(points)
		points = append(points, obj.Vertexes...)
		for _, f := range obj.Faces {
			if len(f.Verts) < 3 {
				continue
			}
			face := make([]int, len(f.Verts))
			for i, v := range f.Verts {
				face[len(face)-1-i] = base + v
			}
			faces = append(faces, face)
		}
	}
	return buildMesh(points, faces)
}

// ToMQO returns a document with a single object.
func ToMQO(m *surface.Mesh, name string) *mqo.Document {
	doc := mqo.NewDocument()
	obj := mqo.NewObject(name)
	points, faces := m.ToPolygons()
	obj.Vertexes = points
	for _, f := range faces {
		verts := make([]int, len(f))
		for i, v := range f {
			verts[len(verts)-1-i] = v
		}
		obj.Faces = append(obj.Faces, &mqo.Face{Verts: verts})
	}
	doc.Objects = append(doc.Objects, obj)
	return doc
}
