package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/binzume/meshproc/holefill"
	"github.com/binzume/meshproc/meshio"
	"github.com/binzume/meshproc/surface"
)

func defaultOutputFile(input, suffix string) string {
	ext := strings.ToLower(filepath.Ext(input))
	base := input[0 : len(input)-len(ext)]
	if ext == ".mqoz" {
		ext = ".mqo"
	} else if !meshio.IsSupported(ext) {
		ext = ".obj"
	}
	return base + "_" + suffix + ext
}

// parseFloats parses "1,2,3". Empty string returns nil.
func parseFloats(s string, n int) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	if len(fields) != n {
		return nil, fmt.Errorf("%d values required: %q", n, s)
	}
	values := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number: %q", f)
		}
		values[i] = v
	}
	return values, nil
}

func printInfo(w io.Writer, name string, m *surface.Mesh) {
	min, max := m.Bounds()
	holes := holefill.FindHoles(m, 0)
	fmt.Fprintln(w, "File:", name)
	fmt.Fprintln(w, "  Vertices:", m.NumVertices())
	fmt.Fprintln(w, "  Faces:", m.NumFaces())
	fmt.Fprintln(w, "  Edges:", m.NumEdges())
	fmt.Fprintln(w, "  Triangles only:", m.IsTriangleMesh())
	fmt.Fprintln(w, "  Border loops:", len(holes))
	for i, h := range holes {
		fmt.Fprintf(w, "    #%d: %d edges\n", i, h.Size)
	}
	fmt.Fprintf(w, "  Bounds: (%g, %g, %g) - (%g, %g, %g)\n", min.X, min.Y, min.Z, max.X, max.Y, max.Z)
	fmt.Fprintf(w, "  Area: %g\n", m.SurfaceArea())
}
