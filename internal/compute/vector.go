package compute

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ReduceToVectors asks the service to vectorize the presence pixels of a
// binary raster into polygons over the given region.
func (s *Session) ReduceToVectors(ctx context.Context, imageHandle string, region orb.Geometry,
	scale float64, bestEffort bool) (orb.Geometry, error) {

	payload := map[string]interface{}{
		"image":        imageHandle,
		"geometry":     geojson.NewGeometry(region),
		"geometryType": "polygon",
		"scale":        scale,
		"bestEffort":   bestEffort,
	}

	data, err := s.postJSON(ctx,
		fmt.Sprintf("%s/v1/projects/%s/image:reduceToVectors", s.BaseURL, s.Project), payload)
	if err != nil {
		return nil, fmt.Errorf("Error reducing %s to vectors: %v", imageHandle, err)
	}

	return decodeGeometry(data)
}

// ConvexHull asks the service for the convex hull of a geometry with the
// given maximum error in meters.
func (s *Session) ConvexHull(ctx context.Context, g orb.Geometry, maxError float64) (orb.Geometry, error) {
	payload := map[string]interface{}{
		"geometry": geojson.NewGeometry(g),
		"maxError": maxError,
	}

	data, err := s.postJSON(ctx,
		fmt.Sprintf("%s/v1/projects/%s/geometry:convexHull", s.BaseURL, s.Project), payload)
	if err != nil {
		return nil, fmt.Errorf("Error computing convex hull: %v", err)
	}

	return decodeGeometry(data)
}

// GeometryArea returns the geodesic area of a geometry in square meters.
func (s *Session) GeometryArea(ctx context.Context, g orb.Geometry, maxError float64) (float64, error) {
	payload := map[string]interface{}{
		"geometry": geojson.NewGeometry(g),
		"maxError": maxError,
	}

	data, err := s.postJSON(ctx,
		fmt.Sprintf("%s/v1/projects/%s/geometry:area", s.BaseURL, s.Project), payload)
	if err != nil {
		return 0, fmt.Errorf("Error computing geometry area: %v", err)
	}

	var resp struct {
		Area float64 `json:"area"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, fmt.Errorf("Error decoding area response: %v", err)
	}

	return resp.Area, nil
}

func decodeGeometry(data []byte) (orb.Geometry, error) {
	var g geojson.Geometry
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("Error decoding geometry response: %v", err)
	}
	return g.Geometry(), nil
}
