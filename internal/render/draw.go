package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/paulmach/orb"
	"github.com/srwiley/rasterx"
	"github.com/terrascope/geometry"
	"golang.org/x/image/math/fixed"
)

// frame maps projected meters to canvas pixels inside the plot rect.
type frame struct {
	rect   image.Rectangle
	extent geometry.BoundingBox
}

func (f frame) toPixel(x, y float64) (float64, float64) {
	w := f.extent.Max.X - f.extent.Min.X
	h := f.extent.Max.Y - f.extent.Min.Y

	px := float64(f.rect.Min.X) + (x-f.extent.Min.X)/w*float64(f.rect.Dx())
	py := float64(f.rect.Max.Y) - (y-f.extent.Min.Y)/h*float64(f.rect.Dy())
	return px, py
}

func fixp(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

// fillPolygons fills every ring of a polygonal geometry with one color,
// already carrying the desired alpha.
func fillPolygons(dst *image.RGBA, fr frame, g orb.Geometry, c color.NRGBA) {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	filler := rasterx.NewFiller(w, h, scanner)
	filler.SetColor(c)

	addPolygons(filler, fr, g)
	filler.Draw()
}

// strokePolygons strokes the outline of a polygonal geometry.
func strokePolygons(dst *image.RGBA, fr frame, g orb.Geometry, c color.NRGBA, width float64) {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	dasher.SetColor(c)
	dasher.SetStroke(fixed.Int26_6(width*64), 4*64, rasterx.RoundCap, nil, rasterx.RoundGap, rasterx.ArcClip, nil, 0)

	addPolygons(dasher, fr, g)
	dasher.Draw()
}

// strokeLines strokes open line strings, optionally dashed.
func strokeLines(dst *image.RGBA, fr frame, lines orb.MultiLineString, c color.NRGBA, width float64, dashes []float64) {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	dasher.SetColor(c)
	dasher.SetStroke(fixed.Int26_6(width*64), 4*64, rasterx.RoundCap, nil, rasterx.RoundGap, rasterx.ArcClip, dashes, 0)

	for _, ls := range lines {
		if len(ls) < 2 {
			continue
		}
		px, py := fr.toPixel(ls[0].X(), ls[0].Y())
		dasher.Start(fixp(px, py))
		for _, p := range ls[1:] {
			px, py = fr.toPixel(p.X(), p.Y())
			dasher.Line(fixp(px, py))
		}
		dasher.Stop(false)
	}
	dasher.Draw()
}

type pathAdder interface {
	Start(a fixed.Point26_6)
	Line(b fixed.Point26_6)
	Stop(closeLoop bool)
}

func addPolygons(p pathAdder, fr frame, g orb.Geometry) {
	switch gt := g.(type) {
	case orb.Polygon:
		addRings(p, fr, gt)
	case orb.MultiPolygon:
		for _, poly := range gt {
			addRings(p, fr, poly)
		}
	}
}

func addRings(p pathAdder, fr frame, poly orb.Polygon) {
	for _, ring := range poly {
		if len(ring) < 3 {
			continue
		}
		px, py := fr.toPixel(ring[0].X(), ring[0].Y())
		p.Start(fixp(px, py))
		for _, pt := range ring[1:] {
			px, py = fr.toPixel(pt.X(), pt.Y())
			p.Line(fixp(px, py))
		}
		p.Stop(true)
	}
}

// fillRect paints an axis-aligned rectangle with a solid color.
func fillRect(dst *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}
