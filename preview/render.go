// Package preview renders a flat shaded snapshot of a mesh.
package preview

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/binzume/meshproc/surface"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

var ErrUnsupportedFormat = errors.New("preview: unsupported image format")

type Option struct {
	Width  int
	Height int
	// Samples is the supersampling factor. 1 disables antialiasing.
	Samples    int
	Background color.Color
	Front      color.RGBA
	// Back is used for faces turned away from the camera, which are visible through holes.
	Back color.RGBA
	// Light is the direction to the light in view space.
	Light     mgl64.Vec3
	Wireframe bool
	// Camera defaults to FitCamera from the front right.
	Camera *Camera
}

func (opt *Option) withDefaults() Option {
	o := Option{}
	if opt != nil {
		o = *opt
	}
	if o.Width <= 0 {
		o.Width = 512
	}
	if o.Height <= 0 {
		o.Height = o.Width
	}
	if o.Samples <= 0 {
		o.Samples = 2
	}
	if o.Background == nil {
		o.Background = color.White
	}
	if o.Front == (color.RGBA{}) {
		o.Front = color.RGBA{R: 180, G: 190, B: 215, A: 255}
	}
	if o.Back == (color.RGBA{}) {
		o.Back = color.RGBA{R: 215, G: 110, B: 100, A: 255}
	}
	if o.Light.Len() == 0 {
		o.Light = mgl64.Vec3{0.3, 0.5, 1}
	}
	return o
}

type projected struct {
	p     [3]mgl64.Vec2
	depth float64
	col   color.RGBA
}

func shade(c color.RGBA, s float64) color.RGBA {
	return color.RGBA{R: uint8(float64(c.R) * s), G: uint8(float64(c.G) * s), B: uint8(float64(c.B) * s), A: c.A}
}

func (o *Option) project(m *surface.Mesh, w, h int) []projected {
	cam := o.Camera
	if cam == nil {
		cam = FitCamera(m, mgl64.Vec3{1, 0.7, 1.6})
	}
	view := cam.View()
	proj := cam.Projection(float64(w) / float64(h))
	light := o.Light.Normalize()

	toView := make([]mgl64.Vec3, m.VerticesSize())
	for _, v := range m.Vertices() {
		p := m.Position(v)
		toView[v] = view.Mul4x1(mgl64.Vec3{p.X, p.Y, p.Z}.Vec4(1)).Vec3()
	}
	toScreen := func(p mgl64.Vec3) (mgl64.Vec2, bool) {
		c := proj.Mul4x1(p.Vec4(1))
		if c.W() <= 0 {
			return mgl64.Vec2{}, false
		}
		return mgl64.Vec2{(c.X()/c.W() + 1) / 2 * float64(w), (1 - c.Y()/c.W()) / 2 * float64(h)}, true
	}

	var tris []projected
	for _, f := range m.Faces() {
		vs := m.FaceVertices(f)
		for i := 1; i+1 < len(vs); i++ {
			a, b, c := toView[vs[0]], toView[vs[i]], toView[vs[i+1]]
			n := b.Sub(a).Cross(c.Sub(a))
			if n.Len() == 0 {
				continue
			}
			n = n.Normalize()
			col := o.Front
			if n.Dot(a) > 0 {
				n = n.Mul(-1)
				col = o.Back
			}
			t := projected{depth: (a.Z() + b.Z() + c.Z()) / 3, col: shade(col, 0.25+0.75*math.Max(0, n.Dot(light)))}
			ok := true
			for j, p := range []mgl64.Vec3{a, b, c} {
				var visible bool
				t.p[j], visible = toScreen(p)
				ok = ok && visible
			}
			if ok {
				tris = append(tris, t)
			}
		}
	}
	// back to front
	sort.SliceStable(tris, func(i, j int) bool { return tris[i].depth < tris[j].depth })
	return tris
}

func strokeLine(r *vector.Rasterizer, a, b mgl64.Vec2, width float64) {
	d := b.Sub(a)
	if d.Len() == 0 {
		return
	}
	n := mgl64.Vec2{-d.Y(), d.X()}.Normalize().Mul(width / 2)
	r.MoveTo(float32(a.X()+n.X()), float32(a.Y()+n.Y()))
	r.LineTo(float32(b.X()+n.X()), float32(b.Y()+n.Y()))
	r.LineTo(float32(b.X()-n.X()), float32(b.Y()-n.Y()))
	r.LineTo(float32(a.X()-n.X()), float32(a.Y()-n.Y()))
	r.ClosePath()
}

// Render draws the faces of the mesh with the painter's algorithm.
func Render(m *surface.Mesh, opt *Option) *image.RGBA {
	o := opt.withDefaults()
	w, h := o.Width*o.Samples, o.Height*o.Samples
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(o.Background), image.Point{}, draw.Src)

	r := vector.NewRasterizer(w, h)
	edge := image.NewUniform(color.RGBA{R: 40, G: 40, B: 50, A: 255})
	for _, t := range o.project(m, w, h) {
		r.Reset(w, h)
		r.MoveTo(float32(t.p[0].X()), float32(t.p[0].Y()))
		r.LineTo(float32(t.p[1].X()), float32(t.p[1].Y()))
		r.LineTo(float32(t.p[2].X()), float32(t.p[2].Y()))
		r.ClosePath()
		r.Draw(img, img.Bounds(), image.NewUniform(t.col), image.Point{})
		if o.Wireframe {
			r.Reset(w, h)
			for i := 0; i < 3; i++ {
				strokeLine(r, t.p[i], t.p[(i+1)%3], 0.7*float64(o.Samples))
			}
			r.Draw(img, img.Bounds(), edge, image.Point{})
		}
	}

	if o.Samples == 1 {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, o.Width, o.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Encode writes the image as ".png" or ".bmp".
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case ".png":
		return png.Encode(w, img)
	case ".bmp":
		return bmp.Encode(w, img)
	}
	return errors.Wrap(ErrUnsupportedFormat, format)
}

func Save(img image.Image, path string) error {
	format := strings.ToLower(filepath.Ext(path))
	if format != ".png" && format != ".bmp" {
		return errors.Wrap(ErrUnsupportedFormat, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()
	if err := Encode(f, img, format); err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	return f.Close()
}
