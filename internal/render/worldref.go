package render

import (
	"fmt"
	"image"
	"image/color"
	"io/ioutil"

	"cloud.google.com/go/storage"
	"github.com/golang/snappy"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/terrascope/geometry"
	"github.com/terrascope/proj4go"
	"github.com/terrascope/raster"
	"github.com/terrascope/scimage"
	"github.com/terrascope/scimage/scicolor"
	"golang.org/x/net/context"
)

const (
	wgs84 = "+proj=longlat +ellps=WGS84 +datum=WGS84 +no_defs "

	worldObjName = "world/%s.snp"

	// The world reference grids are stored at 0.1 degree resolution.
	worldGridW = 3600
	worldGridH = 1800
)

// WorldRef holds the optional global reference layers: a shaded stock
// background, a land/ocean mask and border/coastline lines, all in WGS84.
type WorldRef struct {
	Stock    *raster.Raster
	LandMask *raster.Raster
	Borders  orb.MultiLineString
}

// LoadWorldRef reads the world reference grids and border lines from a
// storage bucket. The grids are snappy-compressed byte arrays covering
// the full globe.
func LoadWorldRef(ctx context.Context, bucket string) (*WorldRef, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("Error creating client: %v", err)
	}
	bkt := client.Bucket(bucket)

	stockPix, err := readWorldGrid(ctx, bkt, bucket, "stock_gray")
	if err != nil {
		return nil, err
	}
	landPix, err := readWorldGrid(ctx, bkt, bucket, "land_mask")
	if err != nil {
		return nil, err
	}
	borders, err := readWorldLines(ctx, bkt, bucket, "borders")
	if err != nil {
		return nil, err
	}

	globe := geometry.BBox(-180, -90, 180, 90)

	return &WorldRef{
		Stock: &raster.Raster{
			Image:    &scimage.GrayU8{Pix: stockPix, Stride: worldGridW, Rect: image.Rect(0, 0, worldGridW, worldGridH), Min: 0, Max: 255, NoData: 0},
			Coverage: proj4go.Coverage{BoundingBox: globe, Proj4: wgs84},
		},
		LandMask: &raster.Raster{
			Image:    &scimage.GrayU8{Pix: landPix, Stride: worldGridW, Rect: image.Rect(0, 0, worldGridW, worldGridH), Min: 0, Max: 1, NoData: 255},
			Coverage: proj4go.Coverage{BoundingBox: globe, Proj4: wgs84},
		},
		Borders: borders,
	}, nil
}

func readWorldObject(ctx context.Context, bkt *storage.BucketHandle, bucket, name string) ([]byte, error) {
	objName := fmt.Sprintf(worldObjName, name)

	r, err := bkt.Object(objName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Error creating object reader: %s object: %s: %v", bucket, objName, err)
	}
	cdata, err := ioutil.ReadAll(r)
	r.Close()
	if err != nil {
		return nil, fmt.Errorf("Error reading from object: %s object: %s: %v", bucket, objName, err)
	}

	data, err := snappy.Decode(nil, cdata)
	if err != nil {
		return nil, fmt.Errorf("Error decompressing data: %s object: %s: %v", bucket, objName, err)
	}

	return data, nil
}

func readWorldGrid(ctx context.Context, bkt *storage.BucketHandle, bucket, name string) ([]uint8, error) {
	data, err := readWorldObject(ctx, bkt, bucket, name)
	if err != nil {
		return nil, err
	}
	if len(data) != worldGridW*worldGridH {
		return nil, fmt.Errorf("world grid %s has %d bytes, want %d", name, len(data), worldGridW*worldGridH)
	}
	return data, nil
}

func readWorldLines(ctx context.Context, bkt *storage.BucketHandle, bucket, name string) (orb.MultiLineString, error) {
	data, err := readWorldObject(ctx, bkt, bucket, name)
	if err != nil {
		return nil, err
	}

	g, err := wkb.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("Error decoding world lines %s: %v", name, err)
	}

	switch gt := g.(type) {
	case orb.MultiLineString:
		return gt, nil
	case orb.LineString:
		return orb.MultiLineString{gt}, nil
	default:
		return nil, fmt.Errorf("world lines %s are %s, want LineString or MultiLineString", name, g.GeoJSONType())
	}
}

// warpWorld reprojects a global WGS84 grid into the render extent and
// colorizes it with a gradient palette, matching the plot rect pixel for
// pixel.
func warpWorld(src *raster.Raster, palette []color.NRGBA, plotW, plotH int,
	extent geometry.BoundingBox, proj4 string, min, max, nodata uint8) *image.Paletted {

	img := scimage.NewGrayU8(image.Rect(0, 0, plotW, plotH), min, max, nodata)
	dst := &raster.Raster{
		Image:    img,
		Coverage: proj4go.Coverage{BoundingBox: extent, Proj4: proj4},
	}

	dst.Warp(src)

	return img.AsPaletted(scicolor.GradientNRGBAPalette(palette))
}
