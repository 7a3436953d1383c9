package main

import (
	"fmt"
	"log"

	"github.com/binzume/meshproc/fairing"
	"github.com/binzume/meshproc/geom"
	"github.com/binzume/meshproc/holefill"
	"github.com/binzume/meshproc/simplify"
	"github.com/binzume/meshproc/surface"
)

type step interface {
	apply(m *surface.Mesh) error
}

type SimplifyStep struct {
	Target          int     `yaml:"target"`
	Ratio           float64 `yaml:"ratio"`
	AspectRatio     float64 `yaml:"aspect_ratio"`
	EdgeLength      float64 `yaml:"edge_length"`
	MaxValence      int     `yaml:"max_valence"`
	NormalDeviation float64 `yaml:"normal_deviation"`
	HausdorffError  float64 `yaml:"hausdorff_error"`
	FeatureAngle    float64 `yaml:"feature_angle"`
	Boundary        bool    `yaml:"boundary"`
}

func (s *SimplifyStep) apply(m *surface.Mesh) error {
	if !m.IsTriangleMesh() {
		log.Print("triangulate")
		m.Triangulate()
	}
	if s.FeatureAngle > 0 || s.Boundary {
		m.ClearFeatures()
	}
	if s.FeatureAngle > 0 {
		log.Print("feature edges: ", m.DetectAngleFeatures(s.FeatureAngle))
	}
	if s.Boundary {
		log.Print("boundary edges: ", m.DetectBoundaryFeatures())
	}

	target := s.Target
	if target <= 0 {
		ratio := s.Ratio
		if ratio <= 0 {
			ratio = 0.5
		}
		target = int(float64(m.NumVertices()) * ratio)
	}

	simplifier := simplify.NewSimplifier(m)
	err := simplifier.Initialize(&simplify.Option{
		AspectRatio:     s.AspectRatio,
		EdgeLength:      s.EdgeLength,
		MaxValence:      s.MaxValence,
		NormalDeviation: s.NormalDeviation,
		HausdorffError:  s.HausdorffError,
	})
	if err != nil {
		return err
	}
	before := m.NumVertices()
	if err := simplifier.Simplify(target); err != nil {
		return err
	}
	log.Printf("simplify: %d -> %d vertices (target %d)", before, m.NumVertices(), target)
	return nil
}

type FillHolesStep struct {
	MaxSize  int  `yaml:"max_size"`
	Smallest bool `yaml:"smallest"`
	NoRefine bool `yaml:"no_refine"`
}

func (s *FillHolesStep) apply(m *surface.Mesh) error {
	if !m.IsTriangleMesh() {
		log.Print("triangulate")
		m.Triangulate()
	}
	opt := &holefill.Option{SkipRefinement: s.NoRefine, MaxHoleSize: s.MaxSize}
	if s.Smallest {
		h := holefill.SmallestHole(m)
		if !h.IsValid() {
			log.Print("fillholes: no holes")
			return nil
		}
		return holefill.NewHoleFiller(m).FillHoleWithOption(h, opt)
	}
	n, err := holefill.FillHoles(m, s.MaxSize, opt)
	log.Printf("fillholes: %d holes filled", n)
	return err
}

type FairStep struct {
	K int `yaml:"k"`
	// Sphere selects the vertices inside (x, y, z, radius).
	Sphere []float64 `yaml:"sphere"`
}

func (s *FairStep) apply(m *surface.Mesh) error {
	k := s.K
	if k <= 0 {
		k = 2
	}
	if len(s.Sphere) == 0 {
		return fairing.Fair(m, k)
	}
	if len(s.Sphere) != 4 {
		return fmt.Errorf("fair: sphere needs 4 values: %v", s.Sphere)
	}
	scope := surface.NewPropertyScope(m)
	defer scope.Release()
	sel := surface.ScopedVertexProperty(scope, "meshproc:selected", false)
	center := geom.NewVector3FromSlice(s.Sphere)
	n := 0
	for _, v := range m.Vertices() {
		if m.Position(v).Distance(center) <= s.Sphere[3] {
			sel.Set(v, true)
			n++
		}
	}
	log.Printf("fair: %d vertices selected", n)
	if n == 0 {
		return nil
	}
	return fairing.FairSelected(m, k, sel)
}

type TransformStep struct {
	Scale     float64   `yaml:"scale"`
	Rotate    []float64 `yaml:"rotate"`
	Translate []float64 `yaml:"translate"`
}

// matrix returns translate * rotate * scale. Rotation angles are degrees in XYZ order.
func (s *TransformStep) matrix() (*geom.Matrix4, error) {
	mat := geom.NewMatrix4()
	if len(s.Translate) != 0 {
		if len(s.Translate) != 3 {
			return nil, fmt.Errorf("transform: translate needs 3 values: %v", s.Translate)
		}
		mat = mat.Mul(geom.NewTranslateMatrix4(s.Translate[0], s.Translate[1], s.Translate[2]))
	}
	if len(s.Rotate) != 0 {
		if len(s.Rotate) != 3 {
			return nil, fmt.Errorf("transform: rotate needs 3 values: %v", s.Rotate)
		}
		mat = mat.Mul(geom.NewEulerDegrees(s.Rotate[0], s.Rotate[1], s.Rotate[2], geom.RotationOrderXYZ).ToMatrix4())
	}
	if s.Scale != 0 && s.Scale != 1 {
		mat = mat.Mul(geom.NewScaleMatrix4(s.Scale, s.Scale, s.Scale))
	}
	return mat, nil
}

func (s *TransformStep) apply(m *surface.Mesh) error {
	mat, err := s.matrix()
	if err != nil {
		return err
	}
	m.Transform(mat)
	return nil
}

type TriangulateStep struct{}

func (s *TriangulateStep) apply(m *surface.Mesh) error {
	m.Triangulate()
	return nil
}
