package render

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontOnce   sync.Once
	gofontData *opentype.Font
	gofontErr  error
)

// resolveFontFace returns a Go Regular face at the given point size and
// DPI, falling back to the fixed basic font if parsing fails.
func resolveFontFace(size float64, dpi int) font.Face {
	fontOnce.Do(func() {
		gofontData, gofontErr = opentype.Parse(goregular.TTF)
	})
	if gofontErr != nil {
		return basicfont.Face7x13
	}

	face, err := opentype.NewFace(gofontData, &opentype.FaceOptions{
		Size:    size,
		DPI:     float64(dpi),
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

// drawText renders a string with its baseline starting at (x, y).
func drawText(img draw.Image, text string, x, y int, c color.NRGBA, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func measureText(text string, face font.Face) int {
	d := &font.Drawer{Face: face}
	return d.MeasureString(text).Ceil()
}
