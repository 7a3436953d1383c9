package preview

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"github.com/binzume/meshproc/surface"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/bmp"
)

func rgba(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestFitCamera(t *testing.T) {
	m := surface.NewGrid(2, 4)
	cam := FitCamera(m, mgl64.Vec3{0, 0, 2})
	if !cam.Center.ApproxEqual(mgl64.Vec3{1, 2, 0}) {
		t.Error("unexpected center", cam.Center)
	}
	if math.Abs(cam.Eye.X()-1) > 1e-9 || cam.Eye.Z() <= 0 {
		t.Error("unexpected eye", cam.Eye)
	}

	cam = FitCamera(m, mgl64.Vec3{0, 1, 0})
	if cam.Up.Dot(mgl64.Vec3{0, 1, 0}) != 0 {
		t.Error("up should not be parallel to the view direction", cam.Up)
	}
}

func TestRender(t *testing.T) {
	m := surface.NewIcosphere(1, 2)
	img := Render(m, &Option{Width: 64, Samples: 2})
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Fatal("unexpected size", img.Bounds())
	}
	if c := rgba(img, 0, 0); c != (color.RGBA{255, 255, 255, 255}) {
		t.Error("corner should be background", c)
	}
	if c := rgba(img, 32, 32); c.B <= c.R || c == (color.RGBA{255, 255, 255, 255}) {
		t.Error("center should be a front face", c)
	}

	wire := Render(m, &Option{Width: 64, Samples: 1, Wireframe: true})
	if wire.Bounds().Dx() != 64 {
		t.Error("unexpected size", wire.Bounds())
	}

	// the back of an open grid
	grid := surface.NewGrid(2, 2)
	img = Render(grid, &Option{Width: 32, Samples: 1, Camera: FitCamera(grid, mgl64.Vec3{0, 0, -1})})
	if c := rgba(img, 16, 16); c.R <= c.B {
		t.Error("center should be a back face", c)
	}

	empty := Render(surface.NewMesh(), &Option{Width: 8, Height: 4})
	if empty.Bounds().Dx() != 8 || empty.Bounds().Dy() != 4 || rgba(empty, 4, 2).R != 255 {
		t.Error("unexpected empty image")
	}
}

func TestEncode(t *testing.T) {
	img := Render(surface.NewIcosahedron(1), &Option{Width: 16, Samples: 1})

	var buf bytes.Buffer
	if err := Encode(&buf, img, ".png"); err != nil {
		t.Fatal(err)
	}
	if dec, err := png.Decode(&buf); err != nil || dec.Bounds() != img.Bounds() {
		t.Error("png decode failed", err)
	}

	buf.Reset()
	if err := Encode(&buf, img, ".BMP"); err != nil {
		t.Fatal(err)
	}
	if dec, err := bmp.Decode(&buf); err != nil || dec.Bounds() != img.Bounds() {
		t.Error("bmp decode failed", err)
	}

	if err := Encode(&buf, img, ".gif"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Error("expected ErrUnsupportedFormat", err)
	}

	dir := t.TempDir()
	if err := Save(img, filepath.Join(dir, "a.png")); err != nil {
		t.Error(err)
	}
	if err := Save(img, filepath.Join(dir, "a.jpg")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Error("expected ErrUnsupportedFormat", err)
	}
}
