// Package boundary resolves a 2-letter region code into a projected
// boundary geometry, a zone projection and a padded render extent.
package boundary

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/planar"
	"github.com/terrascope/geometry"
	"github.com/terrascope/proj4go"
	"golang.org/x/net/context"

	"redlist-maps/internal/projzone"
)

// extentPadding is the share of each axis range added on every side of
// the projected bounds so the rendered frame keeps a margin around the
// region.
const extentPadding = 0.15

// Resolution is the outcome of resolving one region code. All fields are
// derived per call and never cached.
type Resolution struct {
	Code       Code
	Boundary   orb.Geometry // WGS84 polygon or multi-polygon
	Projected  orb.Geometry // Boundary in zone projection meters
	Extent     geometry.BoundingBox
	Projection projzone.Spec
}

// Resolve validates the region code, fetches its WKB boundary from the
// store, picks the zone projection from the boundary centroid, reprojects
// the geometry and computes the padded extent.
func Resolve(ctx context.Context, store Store, codeInput interface{}) (*Resolution, error) {
	code, err := ParseCode(codeInput)
	if err != nil {
		return nil, err
	}

	wkbData, err := store.Boundary(ctx, code)
	if err != nil {
		return nil, err
	}

	geom, err := wkb.Unmarshal(wkbData)
	if err != nil {
		return nil, fmt.Errorf("Error decoding boundary WKB for %q: %v", code, err)
	}
	switch geom.(type) {
	case orb.Polygon, orb.MultiPolygon:
	default:
		return nil, fmt.Errorf("boundary for %q is %s, want Polygon or MultiPolygon", code, geom.GeoJSONType())
	}

	centroid, _ := planar.CentroidArea(geom)
	zone, _ := projzone.ComputeZone(centroid.X(), centroid.Y())
	spec := projzone.BuildProjection(zone, centroid.Y() < 0)

	projected := ProjectGeometry(geom, spec.Proj4())

	return &Resolution{
		Code:       code,
		Boundary:   geom,
		Projected:  projected,
		Extent:     PadBounds(projected.Bound()),
		Projection: spec,
	}, nil
}

// PadBounds expands a projected bounding box by extentPadding of each
// axis range on every side.
func PadBounds(b orb.Bound) geometry.BoundingBox {
	dx := (b.Max.X() - b.Min.X()) * extentPadding
	dy := (b.Max.Y() - b.Min.Y()) * extentPadding

	return geometry.BBox(b.Min.X()-dx, b.Min.Y()-dy, b.Max.X()+dx, b.Max.Y()+dy)
}

// ProjectGeometry transforms a geographic geometry into the projection
// given by a proj4 string, treating coordinates as (x=lon, y=lat).
func ProjectGeometry(g orb.Geometry, proj4 string) orb.Geometry {
	switch gt := g.(type) {
	case orb.Polygon:
		return projectPolygon(gt, proj4)
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(gt))
		for i, poly := range gt {
			out[i] = projectPolygon(poly, proj4)
		}
		return out
	case orb.LineString:
		return orb.LineString(projectPoints([]orb.Point(gt), proj4))
	case orb.MultiLineString:
		out := make(orb.MultiLineString, len(gt))
		for i, ls := range gt {
			out[i] = orb.LineString(projectPoints([]orb.Point(ls), proj4))
		}
		return out
	default:
		return g
	}
}

func projectPolygon(p orb.Polygon, proj4 string) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, ring := range p {
		out[i] = orb.Ring(projectPoints([]orb.Point(ring), proj4))
	}
	return out
}

func projectPoints(src []orb.Point, proj4 string) []orb.Point {
	pts := make([]geometry.Point, len(src))
	for i, p := range src {
		pts[i] = geometry.Point{p.X(), p.Y()}
	}

	proj4go.Forwards(proj4, pts)

	out := make([]orb.Point, len(src))
	for i, p := range pts {
		out[i] = orb.Point{p.X, p.Y}
	}
	return out
}
