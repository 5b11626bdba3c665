package render

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/terrascope/geometry"

	"redlist-maps/internal/boundary"
	"redlist-maps/internal/compute"
	"redlist-maps/internal/projzone"
)

const testDPI = 40

func testResolution() *boundary.Resolution {
	poly := orb.Polygon{{
		{20000, 20000}, {80000, 20000}, {80000, 50000}, {20000, 50000}, {20000, 20000},
	}}
	return &boundary.Resolution{
		Code:       "sg",
		Boundary:   poly,
		Projected:  poly,
		Extent:     geometry.BBox(0, 0, 100000, 70000),
		Projection: projzone.BuildProjection(48, false),
	}
}

func renderToTemp(t *testing.T, req Request, basemap *compute.RasterLayer) image.Image {
	t.Helper()

	req.OutputPath = filepath.Join(t.TempDir(), "out.png")
	out, err := Render(req, testResolution(), basemap)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != req.OutputPath {
		t.Fatalf("Render returned %q, want %q", out, req.OutputPath)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return img
}

// spinePoints returns midpoints of the four frame spines for the test
// canvas geometry (12x8 in at testDPI, 1/0.7/0.4/0.9 in margins).
func spinePoints() []image.Point {
	plot := image.Rect(
		int(1.0*testDPI), int(0.7*testDPI),
		int(12.0*testDPI)-int(0.4*testDPI), int(8.0*testDPI)-int(0.9*testDPI),
	)
	midX := (plot.Min.X + plot.Max.X) / 2
	midY := (plot.Min.Y + plot.Max.Y) / 2
	return []image.Point{
		{midX, plot.Min.Y},     // top
		{midX, plot.Max.Y - 1}, // bottom
		{plot.Min.X, midY},     // left
		{plot.Max.X - 1, midY}, // right
	}
}

func isDark(img image.Image, p image.Point) bool {
	r, g, b, _ := img.At(p.X, p.Y).RGBA()
	return r>>8 < 0x40 && g>>8 < 0x40 && b>>8 < 0x40
}

func isWhite(img image.Image, p image.Point) bool {
	r, g, b, _ := img.At(p.X, p.Y).RGBA()
	return r>>8 > 0xf0 && g>>8 > 0xf0 && b>>8 > 0xf0
}

func TestRenderGridShowsSpines(t *testing.T) {
	req := NewRequest()
	req.DPI = testDPI
	req.ShowContext = false
	req.ShowGrid = true

	img := renderToTemp(t, req, nil)
	for i, p := range spinePoints() {
		if !isDark(img, p) {
			t.Errorf("spine %d at %v not drawn with grid enabled", i, p)
		}
	}
}

// TestRenderNoGridHidesSpines checks the frame has no dangling axis box
// when gridlines are disabled.
func TestRenderNoGridHidesSpines(t *testing.T) {
	req := NewRequest()
	req.DPI = testDPI
	req.ShowContext = false
	req.ShowGrid = false

	img := renderToTemp(t, req, nil)
	for i, p := range spinePoints() {
		if isDark(img, p) {
			t.Errorf("spine %d at %v drawn with grid disabled", i, p)
		}
	}
}

// TestRenderAllMaskedBasemapTransparent renders a basemap whose mask is
// all zero: no basemap pixel may show through.
func TestRenderAllMaskedBasemapTransparent(t *testing.T) {
	req := NewRequest()
	req.DPI = testDPI
	req.ShowContext = false
	req.ShowGrid = false
	req.ShowBorder = false

	layer := testLayer(1, false)
	img := renderToTemp(t, req, layer)

	center := image.Point{int(6.0 * testDPI), int(4.0 * testDPI)}
	if !isWhite(img, center) {
		t.Errorf("masked-out basemap visible at %v: %v", center, img.At(center.X, center.Y))
	}
}

func TestRenderBinaryBasemapVisible(t *testing.T) {
	req := NewRequest()
	req.DPI = testDPI
	req.ShowContext = false
	req.ShowGrid = false
	req.ShowBorder = false
	req.FillColor = nil

	layer := testLayer(1, true)
	img := renderToTemp(t, req, layer)

	// Outside the region polygon but inside the basemap bounds: the
	// discrete presence color must show, unblended.
	probe := image.Point{int(1.5 * testDPI), int(1.0 * testDPI)}
	r, g, b, _ := img.At(probe.X, probe.Y).RGBA()
	if isWhite(img, probe) {
		t.Fatalf("binary basemap not drawn at %v", probe)
	}
	if g>>8 < r>>8 || g>>8 < b>>8 {
		t.Errorf("binary presence pixel at %v = (%d, %d, %d), want the green presence color",
			probe, r>>8, g>>8, b>>8)
	}
}

// testLayer builds an 8x6 single-band layer covering the full extent.
func testLayer(value float64, visible bool) *compute.RasterLayer {
	w, h := 8, 6
	layer := &compute.RasterLayer{
		Width:  w,
		Height: h,
		Values: make([]float64, w*h),
		Mask:   make([]bool, w*h),
		Bounds: geometry.BBox(0, 0, 100000, 70000),
	}
	for i := range layer.Values {
		layer.Values[i] = value
		layer.Mask[i] = visible
	}
	return layer
}

func TestRenderDefaultOutputPath(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	req := NewRequest()
	req.DPI = testDPI

	out, err := Render(req, testResolution(), nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "sg.png" {
		t.Errorf("default output path = %q, want sg.png", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "sg.png")); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestRenderTitleAndEdgeOptions(t *testing.T) {
	req := NewRequest()
	req.DPI = testDPI
	req.Title = "Singapore Habitat"
	req.EdgeWidth = 2.5

	// Only checking the configured render completes and writes a
	// decodable file.
	renderToTemp(t, req, nil)
}

func TestBasemapImageMaskAlpha(t *testing.T) {
	layer := testLayer(1, false)

	img := basemapImage(layer, nil, nil)
	for y := 0; y < layer.Height; y++ {
		for x := 0; x < layer.Width; x++ {
			if img.NRGBAAt(x, y).A != 0 {
				t.Fatalf("masked pixel (%d, %d) has alpha %d, want 0", x, y, img.NRGBAAt(x, y).A)
			}
		}
	}
}
