// Package render composites the basemap layers onto one canvas and
// writes the output PNG. Layers are drawn back to front: world reference
// background, context fills, the fetched raster basemap, border and
// coastline strokes, the styled region polygon, gridlines and title.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"

	xdraw "golang.org/x/image/draw"

	"redlist-maps/internal/boundary"
	"redlist-maps/internal/compute"
)

const (
	figWidthIn  = 12.0
	figHeightIn = 8.0

	marginLeftIn   = 1.0
	marginRightIn  = 0.4
	marginTopIn    = 0.7
	marginBottomIn = 0.9

	// polygonAlpha blends the region fill over the layers below so the
	// basemap stays readable through it.
	polygonAlpha = 0.7

	gridTickCount = 6

	labelFontPt   = 9
	captionFontPt = 10
	titleFontPt   = 16
)

var (
	defaultFill   = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	defaultEdge   = color.NRGBA{0x00, 0x00, 0x00, 0xff}
	oceanColor    = color.NRGBA{0xad, 0xd8, 0xe6, 0xff}
	landColor     = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	borderColor   = color.NRGBA{0x50, 0x50, 0x50, 0x80}
	gridColor     = color.NRGBA{0x80, 0x80, 0x80, 0x4d}
	labelColor    = color.NRGBA{0x33, 0x33, 0x33, 0xff}
	spineColor    = color.NRGBA{0x00, 0x00, 0x00, 0xff}
	defaultDPI    = 300
	defaultEdgeWd = 1.5
)

// Request configures one render. Construct with NewRequest and override
// fields as needed; all fields have working defaults.
type Request struct {
	// OutputPath of the PNG; empty means "<code>.png".
	OutputPath string
	// ShowContext draws surrounding land/ocean/border features. When
	// false the region sits on a flat white background.
	ShowContext bool
	// ShowGrid draws kilometer gridlines, tick labels and frame spines.
	// When false all four spines are hidden too.
	ShowGrid bool
	// ShowBorder strokes the region outline.
	ShowBorder bool
	Title      string
	FillColor  color.Color
	EdgeColor  color.Color
	EdgeWidth  float64
	DPI        int
	// Colormap names the palette for single-band basemaps.
	Colormap string
	// Vis is the caller's intensity range and palette for the basemap.
	Vis *compute.VisParams
	// World supplies the optional global reference layers.
	World *WorldRef
}

// NewRequest returns a Request with the documented defaults.
func NewRequest() Request {
	return Request{
		ShowContext: true,
		ShowGrid:    true,
		ShowBorder:  true,
		FillColor:   defaultFill,
		EdgeColor:   defaultEdge,
		EdgeWidth:   defaultEdgeWd,
		DPI:         defaultDPI,
	}
}

// Render draws all configured layers for a resolved region and writes the
// PNG. It returns the resolved output path; I/O errors propagate
// unmodified. The canvas lives only for this call.
func Render(req Request, res *boundary.Resolution, basemap *compute.RasterLayer) (string, error) {
	if req.DPI <= 0 {
		req.DPI = defaultDPI
	}
	if req.EdgeWidth <= 0 {
		req.EdgeWidth = defaultEdgeWd
	}
	if req.FillColor == nil {
		req.FillColor = defaultFill
	}
	if req.EdgeColor == nil {
		req.EdgeColor = defaultEdge
	}

	out := req.OutputPath
	if out == "" {
		out = string(res.Code) + ".png"
	}

	dpi := req.DPI
	width := int(figWidthIn * float64(dpi))
	height := int(figHeightIn * float64(dpi))
	plot := image.Rect(
		int(marginLeftIn*float64(dpi)),
		int(marginTopIn*float64(dpi)),
		width-int(marginRightIn*float64(dpi)),
		height-int(marginBottomIn*float64(dpi)),
	)

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	fillRect(canvas, canvas.Bounds(), color.White)

	fr := frame{rect: plot, extent: res.Extent}
	proj4 := res.Projection.Proj4()

	// 1. World reference background.
	if req.World != nil && req.World.Stock != nil {
		stock := warpWorld(req.World.Stock, Colormap("stock"), plot.Dx(), plot.Dy(), res.Extent, proj4, 0, 255, 0)
		draw.Draw(canvas, plot, stock, image.Point{}, draw.Src)
	}

	// 2. Context fills, or a flat white plot area when context is
	// suppressed. Fills go beneath the raster basemap so a fetched layer
	// is never painted over.
	if req.ShowContext {
		if req.World != nil && req.World.LandMask != nil {
			landOcean := warpWorld(req.World.LandMask, []color.NRGBA{oceanColor, landColor},
				plot.Dx(), plot.Dy(), res.Extent, proj4, 0, 1, 255)
			draw.Draw(canvas, plot, landOcean, image.Point{}, draw.Src)
		}
	} else {
		fillRect(canvas, plot, color.White)
	}

	// 3. Raster basemap at its georeferenced bounds; masked pixels stay
	// fully transparent.
	if basemap != nil {
		var cmap []color.NRGBA
		if req.Colormap != "" {
			cmap = Colormap(req.Colormap)
		}
		img := basemapImage(basemap, req.Vis, cmap)
		x0, y0 := fr.toPixel(basemap.Bounds.Min.X, basemap.Bounds.Max.Y)
		x1, y1 := fr.toPixel(basemap.Bounds.Max.X, basemap.Bounds.Min.Y)
		dst := canvas.SubImage(plot).(*image.RGBA)
		xdraw.ApproxBiLinear.Scale(dst, image.Rect(int(x0), int(y0), int(x1), int(y1)),
			img, img.Bounds(), xdraw.Over, nil)
	}

	// 4. Border and coastline strokes over the basemap.
	if req.ShowContext && req.World != nil && len(req.World.Borders) > 0 {
		projected := boundary.ProjectGeometry(req.World.Borders, proj4)
		bound := orb.Bound{
			Min: orb.Point{res.Extent.Min.X, res.Extent.Min.Y},
			Max: orb.Point{res.Extent.Max.X, res.Extent.Max.Y},
		}
		if clipped, ok := clip.Geometry(bound, projected).(orb.MultiLineString); ok {
			strokeLines(canvas, fr, clipped, borderColor, 0.5*float64(dpi)/72, nil)
		}
	}

	// 5. The target region polygon.
	fillPolygons(canvas, fr, res.Projected, withAlpha(req.FillColor, polygonAlpha))
	if req.ShowBorder {
		strokePolygons(canvas, fr, res.Projected, toNRGBA(req.EdgeColor), req.EdgeWidth*float64(dpi)/72)
	}

	// 6. Gridlines and spines, or neither.
	if req.ShowGrid {
		drawGrid(canvas, fr, res, dpi)
	}

	// 7. Title.
	if req.Title != "" {
		face := resolveFontFace(titleFontPt, dpi)
		w := measureText(req.Title, face)
		drawText(canvas, req.Title, (width-w)/2, plot.Min.Y-int(0.2*float64(dpi)), labelColor, face)
	}

	f, err := os.Create(out)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := png.Encode(f, canvas); err != nil {
		return "", err
	}

	return out, nil
}

// drawGrid draws the frame spines, kilometer gridlines, tick labels and
// axis captions.
func drawGrid(canvas *image.RGBA, fr frame, res *boundary.Resolution, dpi int) {
	plot := fr.rect
	spine := maxInt(1, dpi/100)

	// Frame spines.
	fillRect(canvas, image.Rect(plot.Min.X, plot.Min.Y, plot.Max.X, plot.Min.Y+spine), spineColor)
	fillRect(canvas, image.Rect(plot.Min.X, plot.Max.Y-spine, plot.Max.X, plot.Max.Y), spineColor)
	fillRect(canvas, image.Rect(plot.Min.X, plot.Min.Y, plot.Min.X+spine, plot.Max.Y), spineColor)
	fillRect(canvas, image.Rect(plot.Max.X-spine, plot.Min.Y, plot.Max.X, plot.Max.Y), spineColor)

	labelFace := resolveFontFace(labelFontPt, dpi)
	captionFace := resolveFontFace(captionFontPt, dpi)
	lineW := 0.5 * float64(dpi) / 72
	dash := 4 * float64(dpi) / 72

	var gridLines orb.MultiLineString

	for _, x := range niceTicks(fr.extent.Min.X, fr.extent.Max.X, gridTickCount) {
		gridLines = append(gridLines, orb.LineString{
			{x, fr.extent.Min.Y}, {x, fr.extent.Max.Y},
		})
		px, _ := fr.toPixel(x, fr.extent.Min.Y)
		label := fmt.Sprintf("%.0f", x/1000)
		drawText(canvas, label, int(px)-measureText(label, labelFace)/2,
			plot.Max.Y+int(0.25*float64(dpi)), labelColor, labelFace)
	}

	for _, y := range niceTicks(fr.extent.Min.Y, fr.extent.Max.Y, gridTickCount) {
		gridLines = append(gridLines, orb.LineString{
			{fr.extent.Min.X, y}, {fr.extent.Max.X, y},
		})
		_, py := fr.toPixel(fr.extent.Min.X, y)
		label := fmt.Sprintf("%.0f", y/1000)
		drawText(canvas, label, plot.Min.X-measureText(label, labelFace)-int(0.1*float64(dpi)),
			int(py)+labelFace.Metrics().Ascent.Ceil()/2, labelColor, labelFace)
	}

	strokeLines(canvas, fr, gridLines, gridColor, lineW, []float64{dash, dash})

	hemisphere := "N"
	if res.Projection.South {
		hemisphere = "S"
	}
	xCaption := fmt.Sprintf("Easting (km) - Zone %d%s", res.Projection.Zone, hemisphere)
	drawText(canvas, xCaption, plot.Min.X+(plot.Dx()-measureText(xCaption, captionFace))/2,
		plot.Max.Y+int(0.6*float64(dpi)), labelColor, captionFace)
	drawText(canvas, "Northing (km)", plot.Min.X, plot.Min.Y-int(0.15*float64(dpi)),
		labelColor, captionFace)
}

func withAlpha(c color.Color, alpha float64) color.NRGBA {
	n := toNRGBA(c)
	n.A = uint8(alpha * 255)
	return n
}

func toNRGBA(c color.Color) color.NRGBA {
	if n, ok := c.(color.NRGBA); ok {
		return n
	}
	r, g, b, a := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
