package projzone

import (
	"math"
	"strings"
	"testing"

	"github.com/terrascope/geometry"
	"github.com/terrascope/proj4go"
)

func TestComputeZone(t *testing.T) {
	tests := []struct {
		name string
		lon  float64
		lat  float64
		zone int
		epsg int
	}{
		{"san francisco", -122.4, 37.8, 10, 32610},
		{"singapore", 103.8, 1.3, 48, 32648},
		{"rio de janeiro", -43.2, -22.9, 23, 32723},
		{"sydney", 151.2, -33.9, 56, 32756},
		{"denver zone 13", -105.0, 39.7, 13, 32613},
		{"west antimeridian", -180.0, 0, 1, 32601},
		{"east antimeridian", 180.0, 10, 60, 32660},
		{"equator is north", 0.0, 0.0, 31, 32631},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zone, epsg := ComputeZone(tt.lon, tt.lat)
			if zone != tt.zone {
				t.Errorf("ComputeZone(%v, %v) zone = %d, want %d", tt.lon, tt.lat, zone, tt.zone)
			}
			if epsg != tt.epsg {
				t.Errorf("ComputeZone(%v, %v) epsg = %d, want %d", tt.lon, tt.lat, epsg, tt.epsg)
			}
		})
	}
}

// TestComputeZoneClamp feeds longitudes outside the nominal +-180 domain
// and expects the zone to degrade to the nearest valid one.
func TestComputeZoneClamp(t *testing.T) {
	for _, lon := range []float64{-720, -181, -180.0001, 180.0001, 200, 1e6} {
		zone, _ := ComputeZone(lon, 0)
		if zone < 1 || zone > 60 {
			t.Errorf("ComputeZone(%v, 0) zone = %d, outside [1, 60]", lon, zone)
		}
	}
}

func TestBuildProjectionInvariants(t *testing.T) {
	for zone := 1; zone <= 60; zone++ {
		spec := BuildProjection(zone, false)

		wantCM := float64((zone-1)*6 - 180 + 3)
		if spec.CentralMeridian != wantCM {
			t.Errorf("zone %d central meridian = %v, want %v", zone, spec.CentralMeridian, wantCM)
		}
		if spec.ScaleFactor != 0.9996 {
			t.Errorf("zone %d scale factor = %v, want 0.9996", zone, spec.ScaleFactor)
		}
		if spec.FalseEasting != 500000 {
			t.Errorf("zone %d false easting = %v, want 500000", zone, spec.FalseEasting)
		}
	}

	if fn := BuildProjection(13, false).FalseNorthing; fn != 0 {
		t.Errorf("northern false northing = %v, want 0", fn)
	}
	if fn := BuildProjection(13, true).FalseNorthing; fn != 10000000 {
		t.Errorf("southern false northing = %v, want 10000000", fn)
	}
}

func TestWidenedLimits(t *testing.T) {
	spec := BuildProjection(33, false)

	standardRange := 2 * StandardHalfWidth
	widenedRange := spec.XLimits[1] - spec.XLimits[0]
	if widenedRange < 10*standardRange {
		t.Errorf("widened x range = %v, want at least 10x the standard %v", widenedRange, standardRange)
	}
}

// TestCentralMeridianEasting projects a point sitting exactly on the zone
// 13 central meridian (-105) and expects the false easting back.
func TestCentralMeridianEasting(t *testing.T) {
	spec := BuildProjection(13, false)

	pts := []geometry.Point{{-105.0, 40.0}}
	proj4go.Forwards(spec.Proj4(), pts)

	if math.Abs(pts[0].X-500000) > 1.0 {
		t.Errorf("easting at central meridian = %v, want 500000 +- 1", pts[0].X)
	}
}

// TestSouthernFalseNorthing projects an equator point in a southern
// zone and expects the 10,000,000 m offset applied.
func TestSouthernFalseNorthing(t *testing.T) {
	spec := BuildProjection(56, true)

	pts := []geometry.Point{{spec.CentralMeridian, 0.0}}
	proj4go.Forwards(spec.Proj4(), pts)

	if pts[0].Y < 9000000 {
		t.Errorf("equator northing in southern zone = %v, want >= 9000000", pts[0].Y)
	}
}

func TestProj4String(t *testing.T) {
	spec := BuildProjection(48, false)
	p4 := spec.Proj4()

	for _, want := range []string{"+proj=tmerc", "+lon_0=105", "+k=0.9996", "+x_0=500000", "+y_0=0"} {
		if !strings.Contains(p4, want) {
			t.Errorf("Proj4() = %q, missing %q", p4, want)
		}
	}
	if strings.Contains(p4, "+proj=utm") {
		t.Errorf("Proj4() = %q, must not use the clipped utm projection", p4)
	}
}
