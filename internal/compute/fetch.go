package compute

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"math"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/terrascope/geometry"
	"golang.org/x/image/tiff"

	"redlist-maps/internal/projzone"
)

// downloadPixelFactor scales the requested ground sample distance so the
// downloaded raster roughly matches the final render resolution.
const downloadPixelFactor = 4.0

// FetchMode selects between the two observed request styles. They are
// kept as distinct named modes rather than unified.
type FetchMode int

const (
	// ModeStrict requests raw pixel values over the exact region.
	ModeStrict FetchMode = iota
	// ModeBestEffort requests a visualized raster and lets the service
	// degrade resolution for large regions.
	ModeBestEffort
)

// VisParams is the color scaling applied server-side in ModeBestEffort.
type VisParams struct {
	Min     float64
	Max     float64
	Palette []string
}

// BasemapRequest names a remote raster and how to fetch it.
type BasemapRequest struct {
	Handle         string
	Vis            *VisParams
	ClipToBoundary bool
	Mode           FetchMode
}

// RasterLayer is a decoded, mask-aware raster in projected meters.
// Exactly one of RGB and Values is set: RGB for visualized 3-band
// responses, Values (row-major) for single-band ones. Mask is row-major
// with true marking pixels that carry data; everything else renders
// fully transparent.
type RasterLayer struct {
	RGB    *image.NRGBA
	Values []float64
	Mask   []bool
	Width  int
	Height int
	Bounds geometry.BoundingBox
}

// Visible reports whether the pixel at (x, y) carries data.
func (l *RasterLayer) Visible(x, y int) bool {
	return l.Mask[y*l.Width+x]
}

type downloadRequest struct {
	Image        string            `json:"image"`
	Band         string            `json:"band"`
	Region       [][][2]float64    `json:"region"`
	CRS          string            `json:"crs"`
	CRSTransform [6]float64        `json:"crsTransform"`
	Format       string            `json:"format"`
	BestEffort   bool              `json:"bestEffort,omitempty"`
	Visualize    *VisParams        `json:"visualize,omitempty"`
	ClipGeometry *geojson.Geometry `json:"clipGeometry,omitempty"`
}

// FetchBasemap downloads the value raster and its validity mask for the
// given extent and returns them as one RasterLayer. Both rasters are
// requested against identical crs/crsTransform parameters so the grids
// are pixel-aligned without resampling, and the two requests run
// concurrently with a mandatory join before compositing.
//
// The clip geometry is always the WGS84 boundary: the remote clip
// operation is defined in geographic space and does not accept
// multi-part geometries in a projected CRS.
func (s *Session) FetchBasemap(ctx context.Context, req BasemapRequest, extent geometry.BoundingBox,
	spec projzone.Spec, dpi int, boundary orb.Geometry) (*RasterLayer, error) {

	extW := extent.Max.X - extent.Min.X
	extH := extent.Max.Y - extent.Min.Y

	// Resolution budget: ground sample distance from output DPI and
	// extent size.
	scale := math.Max(extW, extH) / (float64(dpi) * downloadPixelFactor)
	width := int(math.Ceil(extW / scale))
	height := int(math.Ceil(extH / scale))

	dl := downloadRequest{
		Image: req.Handle,
		Region: [][][2]float64{{
			{extent.Min.X, extent.Min.Y},
			{extent.Max.X, extent.Min.Y},
			{extent.Max.X, extent.Max.Y},
			{extent.Min.X, extent.Max.Y},
			{extent.Min.X, extent.Min.Y},
		}},
		CRS:          spec.CRS(),
		CRSTransform: [6]float64{scale, 0, extent.Min.X, 0, -scale, extent.Max.Y},
		Format:       "GEO_TIFF",
	}
	if req.Mode == ModeBestEffort {
		dl.BestEffort = true
		dl.Visualize = req.Vis
	}
	if req.ClipToBoundary {
		dl.ClipGeometry = geojson.NewGeometry(boundary)
	}

	url := fmt.Sprintf("%s/v1/projects/%s/image:download", s.BaseURL, s.Project)

	valueReq := dl
	valueReq.Band = "values"
	maskReq := dl
	maskReq.Band = "mask"
	maskReq.Visualize = nil

	var wg sync.WaitGroup
	var valueData, maskData []byte
	var valueErr, maskErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		valueData, valueErr = s.postJSON(ctx, url, valueReq)
	}()
	go func() {
		defer wg.Done()
		maskData, maskErr = s.postJSON(ctx, url, maskReq)
	}()
	wg.Wait()

	if valueErr != nil {
		return nil, fmt.Errorf("Error fetching value raster: %v", valueErr)
	}
	if maskErr != nil {
		return nil, fmt.Errorf("Error fetching mask raster: %v", maskErr)
	}

	valueImg, err := tiff.Decode(bytes.NewReader(valueData))
	if err != nil {
		return nil, fmt.Errorf("Error decoding value raster: %v", err)
	}
	maskImg, err := tiff.Decode(bytes.NewReader(maskData))
	if err != nil {
		return nil, fmt.Errorf("Error decoding mask raster: %v", err)
	}

	vb := valueImg.Bounds()
	if mb := maskImg.Bounds(); mb.Dx() != vb.Dx() || mb.Dy() != vb.Dy() {
		return nil, fmt.Errorf("value and mask rasters are not co-registered: %dx%d vs %dx%d",
			vb.Dx(), vb.Dy(), mb.Dx(), mb.Dy())
	}

	layer := &RasterLayer{
		Width:  vb.Dx(),
		Height: vb.Dy(),
		Mask:   decodeMask(maskImg),
		Bounds: geometry.BBox(
			extent.Min.X,
			extent.Max.Y-scale*float64(vb.Dy()),
			extent.Min.X+scale*float64(vb.Dx()),
			extent.Max.Y,
		),
	}

	switch im := valueImg.(type) {
	case *image.Gray:
		layer.Values = grayValues(im)
	case *image.Gray16:
		layer.Values = gray16Values(im)
	default:
		rgb := image.NewNRGBA(image.Rect(0, 0, vb.Dx(), vb.Dy()))
		draw.Draw(rgb, rgb.Bounds(), valueImg, vb.Min, draw.Src)
		layer.RGB = rgb
	}

	// Ignore the download width/height if the service resampled in
	// best-effort mode: the grid still shares the transform origin.
	if width != layer.Width || height != layer.Height {
		if req.Mode == ModeStrict {
			return nil, fmt.Errorf("strict fetch returned %dx%d raster, requested %dx%d",
				layer.Width, layer.Height, width, height)
		}
	}

	return layer, nil
}

// decodeMask flattens a mask raster to booleans: a pixel is visible iff
// its mask value is > 0.
func decodeMask(img image.Image) []bool {
	b := img.Bounds()
	mask := make([]bool, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			mask[y*b.Dx()+x] = r > 0 || g > 0 || bl > 0
		}
	}
	return mask
}

func grayValues(im *image.Gray) []float64 {
	b := im.Bounds()
	vals := make([]float64, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			vals[y*b.Dx()+x] = float64(im.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
		}
	}
	return vals
}

func gray16Values(im *image.Gray16) []float64 {
	b := im.Bounds()
	vals := make([]float64, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			vals[y*b.Dx()+x] = float64(im.Gray16At(b.Min.X+x, b.Min.Y+y).Y)
		}
	}
	return vals
}
