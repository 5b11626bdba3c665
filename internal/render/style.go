package render

import (
	"encoding/json"
	"image/color"
	"io/ioutil"
)

// Style is one named colormap, loadable from a metadata file.
type Style struct {
	Name    string        `json:"name"`
	Palette []color.NRGBA `json:"palette"`
}

// Styles maps colormap names to their definitions.
type Styles map[string]Style

// ReadStyles loads colormap definitions from a JSON metadata file and
// registers them for lookup by Colormap.
func ReadStyles(fileName string) (Styles, error) {
	styles := Styles{}

	bytes, err := ioutil.ReadFile(fileName)
	if err != nil {
		return styles, err
	}

	if err := json.Unmarshal(bytes, &styles); err != nil {
		return styles, err
	}

	for name, s := range styles {
		registered[name] = s.Palette
	}

	return styles, nil
}

var registered = map[string][]color.NRGBA{}

var builtinColormaps = map[string][]color.NRGBA{
	"gray": {
		{R: 0x00, G: 0x00, B: 0x00, A: 0xff},
		{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	},
	"terrain": {
		{R: 0x33, G: 0x30, B: 0x99, A: 0xff},
		{R: 0x00, G: 0x99, B: 0x66, A: 0xff},
		{R: 0xff, G: 0xff, B: 0x99, A: 0xff},
		{R: 0x99, G: 0x66, B: 0x33, A: 0xff},
		{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	},
	"stock": {
		{R: 0xa8, G: 0xc8, B: 0xe0, A: 0xff},
		{R: 0xdd, G: 0xe8, B: 0xd0, A: 0xff},
		{R: 0xc8, G: 0xb8, B: 0x98, A: 0xff},
		{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff},
	},
}

// Colormap resolves a colormap name against registered styles and the
// builtins, defaulting to gray for unknown names.
func Colormap(name string) []color.NRGBA {
	if p, ok := registered[name]; ok && len(p) > 0 {
		return p
	}
	if p, ok := builtinColormaps[name]; ok {
		return p
	}
	return builtinColormaps["gray"]
}

// namedColors covers the color words accepted in style fields and remote
// visualization palettes.
var namedColors = map[string]color.NRGBA{
	"black":     {0x00, 0x00, 0x00, 0xff},
	"white":     {0xff, 0xff, 0xff, 0xff},
	"grey":      {0x80, 0x80, 0x80, 0xff},
	"gray":      {0x80, 0x80, 0x80, 0xff},
	"red":       {0xff, 0x00, 0x00, 0xff},
	"darkred":   {0x8b, 0x00, 0x00, 0xff},
	"green":     {0x00, 0x80, 0x00, 0xff},
	"blue":      {0x00, 0x00, 0xff, 0xff},
	"lightblue": {0xad, 0xd8, 0xe6, 0xff},
	"yellow":    {0xff, 0xff, 0x00, 0xff},
	"orange":    {0xff, 0xa5, 0x00, 0xff},
	"brown":     {0xa5, 0x2a, 0x2a, 0xff},
	"purple":    {0x80, 0x00, 0x80, 0xff},
}

// ParseColor accepts a named color or a #rgb/#rrggbb hex code.
func ParseColor(s string) (color.NRGBA, bool) {
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	if len(s) == 0 || s[0] != '#' {
		return color.NRGBA{}, false
	}

	hex := s[1:]
	var r, g, b uint8
	switch len(hex) {
	case 3:
		r = hexNibble(hex[0]) * 17
		g = hexNibble(hex[1]) * 17
		b = hexNibble(hex[2]) * 17
	case 6:
		r = hexNibble(hex[0])<<4 | hexNibble(hex[1])
		g = hexNibble(hex[2])<<4 | hexNibble(hex[3])
		b = hexNibble(hex[4])<<4 | hexNibble(hex[5])
	default:
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, true
}

func hexNibble(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

func parsePalette(names []string) []color.NRGBA {
	out := make([]color.NRGBA, 0, len(names))
	for _, n := range names {
		if c, ok := ParseColor(n); ok {
			out = append(out, c)
		}
	}
	return out
}
