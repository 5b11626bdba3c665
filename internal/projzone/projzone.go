// Package projzone derives a locally accurate transverse-Mercator zone
// projection for a point on the globe. Zones follow the standard 6 degree
// UTM layout, but the specs produced here deliberately widen the validity
// limits so geometries straddling a zone edge are never clipped.
package projzone

import (
	"fmt"
	"math"
)

const (
	// ScaleFactor is the standard UTM central-meridian scale factor.
	ScaleFactor = 0.9996

	// FalseEasting is the standard UTM false easting in meters.
	FalseEasting = 500000.0

	// FalseNorthingSouth is applied to southern-hemisphere zones so
	// northings stay positive.
	FalseNorthingSouth = 10000000.0

	// StandardHalfWidth is the x half-width a stock UTM zone is considered
	// valid over, roughly 1,250 km around the central meridian.
	StandardHalfWidth = 1.25e6

	// WidenedHalfWidth replaces StandardHalfWidth in specs built by this
	// package. Country coastlines routinely reach well past the nominal
	// zone edge, so the limit is widened to 20,000 km.
	WidenedHalfWidth = 2.0e7
)

// Spec describes one hemisphere-aware transverse-Mercator zone projection.
type Spec struct {
	Zone            int
	South           bool
	CentralMeridian float64
	ScaleFactor     float64
	FalseEasting    float64
	FalseNorthing   float64

	// XLimits and YLimits are the widened validity ranges in projected
	// meters, centered on the natural origin.
	XLimits [2]float64
	YLimits [2]float64
}

// ComputeZone maps a geographic coordinate to its zone number and the
// EPSG code of the matching zone projection. Longitudes outside the
// nominal +-180 domain clamp to the nearest valid zone instead of
// producing an out-of-range zone number.
func ComputeZone(lon, lat float64) (zone int, epsg int) {
	zone = int(math.Floor((lon+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}

	if lat < 0 {
		return zone, 32700 + zone
	}
	return zone, 32600 + zone
}

// BuildProjection returns the widened transverse-Mercator spec for a zone.
// Zone N covers longitudes (N-1)*6-180 to N*6-180, so the central meridian
// sits at (N-1)*6 - 180 + 3.
func BuildProjection(zone int, south bool) Spec {
	falseNorthing := 0.0
	if south {
		falseNorthing = FalseNorthingSouth
	}

	return Spec{
		Zone:            zone,
		South:           south,
		CentralMeridian: float64((zone-1)*6 - 180 + 3),
		ScaleFactor:     ScaleFactor,
		FalseEasting:    FalseEasting,
		FalseNorthing:   falseNorthing,
		XLimits:         [2]float64{-WidenedHalfWidth, WidenedHalfWidth},
		YLimits:         [2]float64{-WidenedHalfWidth, WidenedHalfWidth},
	}
}

// EPSG returns the EPSG code of the equivalent stock UTM zone.
func (s Spec) EPSG() int {
	if s.South {
		return 32700 + s.Zone
	}
	return 32600 + s.Zone
}

// CRS returns the "EPSG:xxxxx" form used on remote raster requests.
func (s Spec) CRS() string {
	return fmt.Sprintf("EPSG:%d", s.EPSG())
}

// Proj4 renders the spec as a proj4 string. A plain tmerc definition is
// used rather than "+proj=utm +zone=N" so no zone validity clipping is
// attached to the transform.
func (s Spec) Proj4() string {
	return fmt.Sprintf("+proj=tmerc +lat_0=0 +lon_0=%g +k=%g +x_0=%g +y_0=%g +datum=WGS84 +units=m +no_defs",
		s.CentralMeridian, s.ScaleFactor, s.FalseEasting, s.FalseNorthing)
}
