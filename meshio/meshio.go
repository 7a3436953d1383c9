// Package meshio loads and saves surface meshes. Only geometry is read and written.
package meshio

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/binzume/meshproc/geom"
	"github.com/binzume/meshproc/mqo"
	"github.com/binzume/meshproc/surface"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

// Formats lists the supported file extensions.
var Formats = []string{".obj", ".off", ".stl", ".mqo", ".mqoz", ".gltf", ".glb"}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// buildMesh creates a mesh from polygons. Faces which would break the manifold are skipped and logged.
func buildMesh(points []geom.Vector3, faces [][]int) *surface.Mesh {
	m, _ := surface.FromPolygons(points, faces)
	return m
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// Read decodes a mesh in the format of the extension (".obj", ".off", ".stl" or ".mqo").
func Read(r io.Reader, format string) (*surface.Mesh, error) {
	switch format {
	case ".obj":
		return ReadOBJ(r)
	case ".off":
		return ReadOFF(r)
	case ".stl":
		return ReadSTL(r)
	case ".mqo":
		doc, err := mqo.NewParser(r, "").Parse()
		if err != nil {
			return nil, err
		}
		return FromMQO(doc), nil
	}
	return nil, errors.Wrap(ErrUnsupportedFormat, format)
}

// Write encodes a mesh in the format of the extension (".obj", ".off", ".stl" or ".mqo").
func Write(w io.Writer, m *surface.Mesh, format string) error {
	switch format {
	case ".obj":
		return WriteOBJ(w, m)
	case ".off":
		return WriteOFF(w, m)
	case ".stl":
		return WriteSTL(w, m)
	case ".mqo":
		return mqo.WriteMQO(ToMQO(m, "mesh"), w)
	}
	return errors.Wrap(ErrUnsupportedFormat, format)
}

// IsSupported reports whether the extension of the path is a known format.
func IsSupported(path string) bool {
	for _, f := range Formats {
		if f == ext(path) {
			return true
		}
	}
	return false
}

// Load reads a mesh file. The format is chosen by the extension.
func Load(path string) (*surface.Mesh, error) {
	if !IsSupported(path) {
		return nil, errors.Wrap(ErrUnsupportedFormat, path)
	}
	switch ext(path) {
	case ".gltf", ".glb":
		doc, err := gltf.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", path)
		}
		m, err := FromGLTF(doc)
		return m, errors.Wrapf(err, "load %s", path)
	case ".mqo", ".mqoz":
		doc, err := mqo.Load(path)
		if err != nil {
			return nil, err
		}
		return FromMQO(doc), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	m, err := Read(f, ext(path))
	return m, errors.Wrapf(err, "load %s", path)
}

// Save writes a mesh file. The format is chosen by the extension.
func Save(m *surface.Mesh, path string) error {
	if !IsSupported(path) || ext(path) == ".mqoz" {
		return errors.Wrap(ErrUnsupportedFormat, path)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch ext(path) {
	case ".glb":
		return errors.Wrapf(gltf.SaveBinary(ToGLTF(m, name), path), "save %s", path)
	case ".gltf":
		doc := ToGLTF(m, name)
		for _, b := range doc.Buffers {
			if b.URI == "" {
				b.EmbeddedResource()
			}
		}
		return errors.Wrapf(gltf.Save(doc, path), "save %s", path)
	case ".mqo":
		return mqo.Save(ToMQO(m, name), path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()
	if err := Write(f, m, ext(path)); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	return errors.Wrapf(f.Close(), "save %s", path)
}
