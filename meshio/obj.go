package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/binzume/meshproc/geom"
	"github.com/binzume/meshproc/surface"
	"github.com/pkg/errors"
)

// ReadOBJ reads vertices and faces of a Wavefront OBJ stream. Other statements are ignored.
func ReadOBJ(r io.Reader) (*surface.Mesh, error) {
	var points []geom.Vector3
	var faces [][]int
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for s.Scan() {
		line++
		fields := strings.Fields(s.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, errors.Errorf("obj: line %d: invalid vertex", line)
			}
			var v [3]float64
			for i := range v {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, errors.Wrapf(err, "obj: line %d", line)
				}
				v[i] = f
			}
			points = append(points, geom.Vector3{X: v[0], Y: v[1], Z: v[2]})
		case "f":
			face := make([]int, 0, len(fields)-1)
			for _, f := range fields[1:] {
				// v, v/vt, v//vn or v/vt/vn
				idx, err := strconv.Atoi(strings.SplitN(f, "/", 2)[0])
				if err != nil {
					return nil, errors.Wrapf(err, "obj: line %d", line)
				}
				if idx < 0 {
					idx += len(points)
				} else {
					idx--
				}
				face = append(face, idx)
			}
			faces = append(faces, face)
		}
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "obj")
	}
	return buildMesh(points, faces), nil
}

func WriteOBJ(w io.Writer, m *surface.Mesh) error {
	bw := bufio.NewWriter(w)
	points, faces := m.ToPolygons()
	fmt.Fprintf(bw, "# vertices %d faces %d\n", len(points), len(faces))
	for _, p := range points {
		fmt.Fprintf(bw, "v %v %v %v\n", formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z))
	}
	for _, f := range faces {
		bw.WriteString("f")
		for _, i := range f {
			fmt.Fprintf(bw, " %d", i+1)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}
