// Package rle computes spatial metrics for Red List of Ecosystems
// assessments against the remote compute service. The Extent of
// Occurrence (EOO) of an ecosystem is the area of the minimum convex
// polygon enclosing all of its known occurrences.
package rle

import (
	"context"

	"github.com/paulmach/orb"

	"redlist-maps/internal/compute"
)

// MakeEOO vectorizes the presence pixels of a binary classification
// raster and returns their convex hull.
//
// The hull is applied twice on purpose: a single call reproduces a known
// precision defect in the upstream service, and the second call is the
// documented workaround. Do not remove it without re-verifying against
// the live service.
func MakeEOO(ctx context.Context, s *compute.Session, classImage string, region orb.Geometry,
	maxError float64, bestEffort bool) (orb.Geometry, error) {

	polys, err := s.ReduceToVectors(ctx, classImage, region, 1, bestEffort)
	if err != nil {
		return nil, err
	}

	hull, err := s.ConvexHull(ctx, polys, maxError)
	if err != nil {
		return nil, err
	}

	// Apply hull twice (upstream precision defect workaround).
	return s.ConvexHull(ctx, hull, maxError)
}

// AreaKm2 returns the area of an EOO polygon in square kilometers.
func AreaKm2(ctx context.Context, s *compute.Session, eoo orb.Geometry) (float64, error) {
	m2, err := s.GeometryArea(ctx, eoo, 1)
	if err != nil {
		return 0, err
	}
	return m2 / 1e6, nil
}
