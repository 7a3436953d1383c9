// Package mqo reads and writes the geometry of Metasequoia documents.
package mqo

import "github.com/binzume/meshproc/geom"

type Material struct {
	Name  string
	Color [4]float64
}

type Face struct {
	Verts    []int
	Material int
}

type Object struct {
	Name     string
	Vertexes []geom.Vector3
	Faces    []*Face
	Visible  bool
	Locked   bool
	Depth    int
}

func NewObject(name string) *Object {
	return &Object{Name: name, Visible: true}
}

type Document struct {
	Materials []*Material
	Objects   []*Object
}

func NewDocument() *Document {
	return &Document{}
}

// GetObjectByName returns the first object with the name or nil.
func (doc *Document) GetObjectByName(name string) *Object {
	for _, o := range doc.Objects {
		if o.Name == name {
			return o
		}
	}
	return nil
}
