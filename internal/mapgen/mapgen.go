// Package mapgen runs one full basemap render: resolve the boundary,
// fetch the optional remote raster, composite and save.
package mapgen

import (
	"context"
	"log"

	"redlist-maps/internal/boundary"
	"redlist-maps/internal/compute"
	"redlist-maps/internal/render"
)

// Request bundles the inputs of one render invocation.
type Request struct {
	// Code is the region code; any value is accepted here and validated
	// before any network or geometry work happens.
	Code interface{}
	// Render holds the layer and styling options. A zero value gets the
	// defaults from render.NewRequest.
	Render *render.Request
	// Basemap optionally names a remote raster to fetch underneath the
	// vector layers. Requires a session.
	Basemap *compute.BasemapRequest
}

// CreateRegionMap renders a styled basemap for a region and returns the
// output path.
//
// A failed basemap fetch does not abort the render: the failure is
// logged as a warning, the layer is omitted and the file is still
// produced. Validation, lookup and output I/O errors are fatal.
func CreateRegionMap(ctx context.Context, store boundary.Store, session *compute.Session, req Request) (string, error) {
	res, err := boundary.Resolve(ctx, store, req.Code)
	if err != nil {
		return "", err
	}

	rreq := render.NewRequest()
	if req.Render != nil {
		rreq = *req.Render
	}
	if rreq.DPI <= 0 {
		rreq.DPI = render.NewRequest().DPI
	}

	var layer *compute.RasterLayer
	if req.Basemap != nil && session != nil {
		layer, err = session.FetchBasemap(ctx, *req.Basemap, res.Extent, res.Projection,
			rreq.DPI, res.Boundary)
		if err != nil {
			log.Printf("Warning: failed to fetch basemap %s: %v. Skipping basemap layer.",
				req.Basemap.Handle, err)
			layer = nil
		}
		if req.Basemap.Vis != nil && rreq.Vis == nil {
			rreq.Vis = req.Basemap.Vis
		}
	}

	return render.Render(rreq, res, layer)
}
