package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/binzume/meshproc/meshio"
	"github.com/binzume/meshproc/preview"
	"github.com/binzume/meshproc/surface"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

var errArgs = errors.New("invalid arguments")

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s %s %s\n", filepath.Base(os.Args[0]), name, usages[name])
		fs.PrintDefaults()
	}
	return fs
}

// inOut returns the input and output files. The output defaults to input_name.ext.
func inOut(fs *flag.FlagSet, name string) (string, string, error) {
	switch fs.NArg() {
	case 1:
		return fs.Arg(0), defaultOutputFile(fs.Arg(0), name), nil
	case 2:
		return fs.Arg(0), fs.Arg(1), nil
	}
	fs.Usage()
	return "", "", errArgs
}

// process loads input, applies the steps and saves the result.
func process(input, output string, steps ...step) error {
	m, err := meshio.Load(input)
	if err != nil {
		return err
	}
	for _, s := range steps {
		if err := s.apply(m); err != nil {
			return err
		}
	}
	return meshio.Save(m, output)
}

func runInfo(args []string) error {
	fs := newFlagSet("info")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errArgs
	}
	m, err := meshio.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	printInfo(os.Stdout, fs.Arg(0), m)
	return nil
}

func runConvert(args []string) error {
	fs := newFlagSet("convert")
	var tr TransformStep
	fs.Float64Var(&tr.Scale, "scale", 1, "scale")
	rotate := fs.String("rotate", "", "rotation in degrees (X,Y,Z)")
	translate := fs.String("translate", "", "translation (X,Y,Z)")
	triangulate := fs.Bool("triangulate", false, "split polygons into triangles")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return errArgs
	}
	var err error
	if tr.Rotate, err = parseFloats(*rotate, 3); err != nil {
		return err
	}
	if tr.Translate, err = parseFloats(*translate, 3); err != nil {
		return err
	}
	steps := []step{&tr}
	if *triangulate {
		steps = append(steps, &TriangulateStep{})
	}
	return process(fs.Arg(0), fs.Arg(1), steps...)
}

func runSimplify(args []string) error {
	fs := newFlagSet("simplify")
	var s SimplifyStep
	fs.IntVar(&s.Target, "target", 0, "target vertex count")
	fs.Float64Var(&s.Ratio, "ratio", 0.5, "target vertex count relative to the input (used without -target)")
	fs.Float64Var(&s.AspectRatio, "aspect", 0, "max triangle aspect ratio (0: unlimited)")
	fs.Float64Var(&s.EdgeLength, "edge", 0, "max edge length (0: unlimited)")
	fs.IntVar(&s.MaxValence, "valence", 0, "max vertex valence (0: unlimited)")
	fs.Float64Var(&s.NormalDeviation, "normal", 0, "max normal deviation in degrees (0: unlimited)")
	fs.Float64Var(&s.HausdorffError, "hausdorff", 0, "max distance to the input surface (0: unlimited)")
	fs.Float64Var(&s.FeatureAngle, "features", 0, "keep edges sharper than this angle in degrees (0: none)")
	fs.BoolVar(&s.Boundary, "boundary", false, "keep boundary edges")
	if err := fs.Parse(args); err != nil {
		return err
	}
	input, output, err := inOut(fs, "simplified")
	if err != nil {
		return err
	}
	return process(input, output, &s)
}

func runFillHoles(args []string) error {
	fs := newFlagSet("fillholes")
	var s FillHolesStep
	fs.IntVar(&s.MaxSize, "maxsize", 0, "max number of boundary vertices of a hole (0: unlimited)")
	fs.BoolVar(&s.Smallest, "smallest", false, "fill the smallest hole only")
	fs.BoolVar(&s.NoRefine, "norefine", false, "skip refinement and fairing of the patches")
	if err := fs.Parse(args); err != nil {
		return err
	}
	input, output, err := inOut(fs, "filled")
	if err != nil {
		return err
	}
	return process(input, output, &s)
}

func runFair(args []string) error {
	fs := newFlagSet("fair")
	var s FairStep
	fs.IntVar(&s.K, "k", 2, "1: minimize area, 2: minimize curvature, 3: minimize variation of curvature")
	sphere := fs.String("sphere", "", "fair vertices inside the sphere (X,Y,Z,R)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	input, output, err := inOut(fs, "faired")
	if err != nil {
		return err
	}
	if s.Sphere, err = parseFloats(*sphere, 4); err != nil {
		return err
	}
	return process(input, output, &s)
}

func runPreview(args []string) error {
	fs := newFlagSet("preview")
	size := fs.Int("size", 512, "image size")
	wire := fs.Bool("wire", false, "draw edges")
	dir := fs.String("dir", "1,0.7,1.6", "view direction (X,Y,Z)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return errArgs
	}
	d, err := parseFloats(*dir, 3)
	if err != nil {
		return err
	}
	m, err := meshio.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	img := preview.Render(m, &preview.Option{
		Width:     *size,
		Wireframe: *wire,
		Camera:    preview.FitCamera(m, mgl64.Vec3{d[0], d[1], d[2]}),
	})
	return preview.Save(img, fs.Arg(1))
}

func runGenerate(args []string) error {
	fs := newFlagSet("generate")
	shape := fs.String("shape", "icosphere", "icosphere, icosahedron or grid")
	level := fs.Int("level", 3, "subdivision level of icosphere")
	size := fs.Int("size", 10, "cells of grid")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errArgs
	}
	var m *surface.Mesh
	switch *shape {
	case "icosphere":
		m = surface.NewIcosphere(1, *level)
	case "icosahedron":
		m = surface.NewIcosahedron(1)
	case "grid":
		m = surface.NewGrid(*size, *size)
	default:
		return fmt.Errorf("unknown shape: %s", *shape)
	}
	return meshio.Save(m, fs.Arg(0))
}

func runJob(args []string) error {
	fs := newFlagSet("job")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errArgs
	}
	for _, path := range fs.Args() {
		job, err := LoadJob(path)
		if err != nil {
			return err
		}
		if err := job.Run(); err != nil {
			return err
		}
	}
	return nil
}

