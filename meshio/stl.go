package meshio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/binzume/meshproc/geom"
	"github.com/binzume/meshproc/surface"
	"github.com/pkg/errors"
)

type stlTriangle struct {
	Normal   [3]float32
	Vertices [3][3]float32
	Attr     uint16
}

const stlHeaderSize = 84
const stlTriangleSize = 50

// ReadSTL reads an ascii or binary STL stream and welds coincident corners.
func ReadSTL(r io.Reader) (*surface.Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "stl")
	}
	var corners []geom.Vector3
	if isBinarySTL(data) {
		corners, err = readBinarySTL(data)
	} else {
		corners, err = readASCIISTL(data)
	}
	if err != nil {
		return nil, err
	}

	points, index := Weld(corners, weldTolerance(corners))
	faces := make([][]int, len(corners)/3)
	for i := range faces {
		faces[i] = []int{index[i*3], index[i*3+1], index[i*3+2]}
	}
	return buildMesh(points, faces), nil
}

func isBinarySTL(data []byte) bool {
	if len(data) >= stlHeaderSize {
		n := binary.LittleEndian.Uint32(data[80:84])
		if uint64(len(data)) == stlHeaderSize+uint64(n)*stlTriangleSize {
			return true
		}
	}
	return !bytes.HasPrefix(bytes.TrimSpace(data), []byte("solid"))
}

func readBinarySTL(data []byte) ([]geom.Vector3, error) {
	if len(data) < stlHeaderSize {
		return nil, errors.New("stl: file too short")
	}
	n := binary.LittleEndian.Uint32(data[80:84])
	if uint64(len(data)) < stlHeaderSize+uint64(n)*stlTriangleSize {
		return nil, errors.Errorf("stl: truncated (%d triangles)", n)
	}
	r := bytes.NewReader(data[stlHeaderSize:])
	corners := make([]geom.Vector3, 0, n*3)
	var tri stlTriangle
	for i := uint32(0); i < n; i++ {
		if err := binary.Read(r, binary.LittleEndian, &tri); err != nil {
			return nil, errors.Wrapf(err, "stl: triangle %d", i)
		}
		for _, v := range tri.Vertices {
			corners = append(corners, geom.NewVector3FromArray(v))
		}
	}
	return corners, nil
}

func readASCIISTL(data []byte) ([]geom.Vector3, error) {
	var corners []geom.Vector3
	s := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for s.Scan() {
		line++
		fields := strings.Fields(s.Text())
		if len(fields) == 0 || fields[0] != "vertex" {
			continue
		}
		if len(fields) < 4 {
			return nil, errors.Errorf("stl: line %d: invalid vertex", line)
		}
		var v [3]float64
		for i := range v {
			f, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "stl: line %d", line)
			}
			v[i] = f
		}
		corners = append(corners, geom.Vector3{X: v[0], Y: v[1], Z: v[2]})
	}
	if len(corners)%3 != 0 {
		return nil, errors.Errorf("stl: %d vertices is not a multiple of 3", len(corners))
	}
	return corners, nil
}

func stlTriangles(m *surface.Mesh) []stlTriangle {
	var tris []stlTriangle
	points, faces := m.ToPolygons()
	for _, f := range faces {
		poly := make([]geom.Vector3, len(f))
		for i, vi := range f {
			poly[i] = points[vi]
		}
		for _, t := range geom.Triangulate(poly) {
			p0, p1, p2 := poly[t[0]], poly[t[1]], poly[t[2]]
			tris = append(tris, stlTriangle{
				Normal:   geom.TriangleNormal(p0, p1, p2).ToArray(),
				Vertices: [3][3]float32{p0.ToArray(), p1.ToArray(), p2.ToArray()},
			})
		}
	}
	return tris
}

// WriteSTL writes the mesh as binary STL. Polygons are triangulated.
func WriteSTL(w io.Writer, m *surface.Mesh) error {
	tris := stlTriangles(m)
	var header [80]byte
	copy(header[:], "binary stl")
	bw := bufio.NewWriter(w)
	bw.Write(header[:])
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(tris))); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, tris); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteASCIISTL writes the mesh as ascii STL.
func WriteASCIISTL(w io.Writer, m *surface.Mesh, name string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "solid %s\n", name)
	for _, t := range stlTriangles(m) {
		fmt.Fprintf(bw, "  facet normal %v %v %v\n", t.Normal[0], t.Normal[1], t.Normal[2])
		bw.WriteString("    outer loop\n")
		for _, v := range t.Vertices {
			fmt.Fprintf(bw, "      vertex %v %v %v\n", v[0], v[1], v[2])
		}
		bw.WriteString("    endloop\n")
		bw.WriteString("  endfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	return bw.Flush()
}
