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

// offTokens yields whitespace separated tokens, skipping comments.
type offTokens struct {
	s      *bufio.Scanner
	fields []string
}

func (t *offTokens) next() (string, error) {
	for len(t.fields) == 0 {
		if !t.s.Scan() {
			if err := t.s.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		line := t.s.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		t.fields = strings.Fields(line)
	}
	f := t.fields[0]
	t.fields = t.fields[1:]
	return f, nil
}

func (t *offTokens) nextInt() (int, error) {
	f, err := t.next()
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(f)
}

func (t *offTokens) nextFloat() (float64, error) {
	f, err := t.next()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(f, 64)
}

// ReadOFF reads an ascii OFF stream. Vertex and face colors are ignored.
func ReadOFF(r io.Reader) (*surface.Mesh, error) {
	t := &offTokens{s: bufio.NewScanner(r)}
	t.s.Buffer(make([]byte, 64*1024), 16*1024*1024)
	header, err := t.next()
	if err != nil {
		return nil, errors.Wrap(err, "off: header")
	}
	if !strings.HasSuffix(header, "OFF") {
		return nil, errors.Errorf("off: invalid header %q", header)
	}
	var counts [3]int
	for i := range counts {
		if counts[i], err = t.nextInt(); err != nil {
			return nil, errors.Wrap(err, "off: counts")
		}
	}

	points := make([]geom.Vector3, counts[0])
	for i := range points {
		var v [3]float64
		for j := range v {
			if v[j], err = t.nextFloat(); err != nil {
				return nil, errors.Wrapf(err, "off: vertex %d", i)
			}
		}
		points[i] = geom.Vector3{X: v[0], Y: v[1], Z: v[2]}
		if header != "OFF" {
			// remaining attributes of the line (normals, colors)
			t.fields = nil
		}
	}
	faces := make([][]int, counts[1])
	for i := range faces {
		n, err := t.nextInt()
		if err != nil {
			return nil, errors.Wrapf(err, "off: face %d", i)
		}
		faces[i] = make([]int, n)
		for j := range faces[i] {
			if faces[i][j], err = t.nextInt(); err != nil {
				return nil, errors.Wrapf(err, "off: face %d", i)
			}
		}
		// face colors
		t.fields = nil
	}
	return buildMesh(points, faces), nil
}

func WriteOFF(w io.Writer, m *surface.Mesh) error {
	bw := bufio.NewWriter(w)
	points, faces := m.ToPolygons()
	bw.WriteString("OFF\n")
	fmt.Fprintf(bw, "%d %d %d\n", len(points), len(faces), m.NumEdges())
	for _, p := range points {
		fmt.Fprintf(bw, "%v %v %v\n", formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z))
	}
	for _, f := range faces {
		fmt.Fprintf(bw, "%d", len(f))
		for _, i := range f {
			fmt.Fprintf(bw, " %d", i)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}
