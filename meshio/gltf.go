package meshio

import (
	"log"

	"github.com/binzume/meshproc/geom"
	"github.com/binzume/meshproc/surface"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func nodeMatrix(n *gltf.Node) *geom.Matrix4 {
	if m := n.MatrixOrDefault(); m != gltf.DefaultMatrix {
		return geom.NewMatrix4FromArray(m)
	}
	rot := n.Rotation
	if rot == [4]float32{} {
		rot = [4]float32{0, 0, 0, 1}
	}
	scale := n.Scale
	if scale == [3]float32{} {
		scale = [3]float32{1, 1, 1}
	}
	return geom.NewTRSMatrix4(geom.NewVector3FromArray(n.Translation), geom.NewQuaternionFromArray(rot), geom.NewVector3FromArray(scale))
}

type gltfReader struct {
	doc    *gltf.Document
	points []geom.Vector3
	faces  [][]int
}

func (r *gltfReader) readNode(index uint32, parent *geom.Matrix4, depth int) error {
	if int(index) >= len(r.doc.Nodes) || depth > len(r.doc.Nodes) {
		return errors.Errorf("gltf: invalid node %d", index)
	}
	n := r.doc.Nodes[index]
	mat := parent.Mul(nodeMatrix(n))
	if n.Mesh != nil {
		if err := r.readMesh(r.doc.Meshes[*n.Mesh], mat); err != nil {
			return errors.Wrapf(err, "gltf: node %q", n.Name)
		}
	}
	for _, c := range n.Children {
		if err := r.readNode(c, mat, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (r *gltfReader) readMesh(m *gltf.Mesh, mat *geom.Matrix4) error {
	mirror := mat.Det() < 0
	for _, p := range m.Primitives {
		if p.Mode != gltf.PrimitiveTriangles {
			log.Printf("gltf: skip primitive of %q (mode %v)", m.Name, p.Mode)
			continue
		}
		a, ok := p.Attributes["POSITION"]
		if !ok {
			continue
		}
		pos, err := modeler.ReadPosition(r.doc, r.doc.Accessors[a], [][3]float32{})
		if err != nil {
			return err
		}
		var indices []uint32
		if p.Indices != nil {
			indices, err = modeler.ReadIndices(r.doc, r.doc.Accessors[*p.Indices], []uint32{})
			if err != nil {
				return err
			}
		} else {
			indices = make([]uint32, len(pos))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		base := len(r.points)
		for _, v := range pos {
			r.points = append(r.points, mat.ApplyTo(geom.NewVector3FromArray(v)))
		}
		for i := 0; i+2 < len(indices); i += 3 {
			f := []int{base + int(indices[i]), base + int(indices[i+1]), base + int(indices[i+2])}
			if mirror {
				f[1], f[2] = f[2], f[1]
			}
			r.faces = append(r.faces, f)
		}
	}
	return nil
}

// FromGLTF merges the triangle primitives of the default scene into one mesh in world coordinates.
// Vertices shared between primitives are welded.
func FromGLTF(doc *gltf.Document) (*surface.Mesh, error) {
	r := &gltfReader{doc: doc}
	var roots []uint32
	if len(doc.Scenes) > 0 {
		scene := 0
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			scene = int(*doc.Scene)
		}
		roots = doc.Scenes[scene].Nodes
	} else {
		for i, n := range doc.Nodes {
			if n.Mesh != nil {
				roots = append(roots, uint32(i))
			}
		}
	}
	for _, n := range roots {
		if err := r.readNode(n, geom.NewMatrix4(), 0); err != nil {
			return nil, err
		}
	}

	points, index := Weld(r.points, weldTolerance(r.points))
	for _, f := range r.faces {
		for i := range f {
			f[i] = index[f[i]]
		}
	}
	return buildMesh(points, r.faces), nil
}

// ToGLTF returns a document with a single node. Polygons are triangulated.
func ToGLTF(m *surface.Mesh, name string) *gltf.Document {
	doc := gltf.NewDocument()
	points, faces := m.ToPolygons()
	pos := make([][3]float32, len(points))
	for i, p := range points {
		pos[i] = p.ToArray()
	}
	var indices []uint32
	for _, f := range faces {
		poly := make([]geom.Vector3, len(f))
		for i, vi := range f {
			poly[i] = points[vi]
		}
		for _, t := range geom.Triangulate(poly) {
			indices = append(indices, uint32(f[t[0]]), uint32(f[t[1]]), uint32(f[t[2]]))
		}
	}

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: name,
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
			Attributes: map[string]uint32{"POSITION": modeler.WritePosition(doc, pos)},
		}},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: name, Mesh: gltf.Index(0)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc
}
