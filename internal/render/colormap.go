package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"redlist-maps/internal/compute"
)

// twoColorDefault is the discrete map applied to binary 0/1 rasters when
// the caller supplies no palette.
var twoColorDefault = []color.NRGBA{
	{R: 0xd9, G: 0xd9, B: 0xd9, A: 0xff},
	{R: 0x1a, G: 0x66, B: 0x33, A: 0xff},
}

// basemapImage converts a fetched raster layer into a drawable NRGBA
// image. Pixels masked out by the validity raster get alpha zero, never a
// sentinel color.
func basemapImage(layer *compute.RasterLayer, vis *compute.VisParams, cmap []color.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, layer.Width, layer.Height))

	if layer.RGB != nil {
		draw.Draw(out, out.Bounds(), layer.RGB, layer.RGB.Bounds().Min, draw.Src)
		for y := 0; y < layer.Height; y++ {
			for x := 0; x < layer.Width; x++ {
				if !layer.Visible(x, y) {
					out.SetNRGBA(x, y, color.NRGBA{})
				} else {
					c := out.NRGBAAt(x, y)
					c.A = 0xff
					out.SetNRGBA(x, y, c)
				}
			}
		}
		return out
	}

	binary := binaryValues(layer)

	palette := cmap
	if vis != nil && len(vis.Palette) > 0 {
		palette = parsePalette(vis.Palette)
	}
	if len(palette) == 0 {
		if binary {
			palette = twoColorDefault
		} else {
			palette = Colormap("gray")
		}
	}

	lo, hi := 0.0, 1.0
	if !binary || vis != nil {
		lo, hi = valueRange(layer, vis)
	}

	for y := 0; y < layer.Height; y++ {
		for x := 0; x < layer.Width; x++ {
			if !layer.Visible(x, y) {
				continue
			}
			v := layer.Values[y*layer.Width+x]
			t := (v - lo) / (hi - lo)
			out.SetNRGBA(x, y, gradientColor(palette, t))
		}
	}
	return out
}

// valueRange resolves the caller's intensity range, or derives one from
// the visible pixels when none is supplied.
func valueRange(layer *compute.RasterLayer, vis *compute.VisParams) (float64, float64) {
	if vis != nil && vis.Max > vis.Min {
		return vis.Min, vis.Max
	}

	visible := make([]float64, 0, len(layer.Values))
	for i, v := range layer.Values {
		if layer.Mask[i] {
			visible = append(visible, v)
		}
	}
	if len(visible) == 0 {
		return 0, 1
	}

	sort.Float64s(visible)
	lo := stat.Quantile(0.02, stat.Empirical, visible, nil)
	hi := stat.Quantile(0.98, stat.Empirical, visible, nil)
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

func binaryValues(layer *compute.RasterLayer) bool {
	for i, v := range layer.Values {
		if layer.Mask[i] && v != 0 && v != 1 {
			return false
		}
	}
	return true
}

// gradientColor interpolates a palette at t in [0, 1].
func gradientColor(palette []color.NRGBA, t float64) color.NRGBA {
	if len(palette) == 1 {
		return palette[0]
	}
	t = math.Max(0, math.Min(1, t))

	pos := t * float64(len(palette)-1)
	i := int(pos)
	if i >= len(palette)-1 {
		return palette[len(palette)-1]
	}
	f := pos - float64(i)

	a, b := palette[i], palette[i+1]
	return color.NRGBA{
		R: uint8(float64(a.R) + f*(float64(b.R)-float64(a.R))),
		G: uint8(float64(a.G) + f*(float64(b.G)-float64(a.G))),
		B: uint8(float64(a.B) + f*(float64(b.B)-float64(a.B))),
		A: 0xff,
	}
}
