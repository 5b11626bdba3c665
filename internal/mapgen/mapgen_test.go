package mapgen

import (
	"context"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"

	"redlist-maps/internal/boundary"
	"redlist-maps/internal/compute"
	"redlist-maps/internal/render"
)

func testStore(t *testing.T) boundary.MemStore {
	t.Helper()

	poly := orb.Polygon{{
		{103.6, 1.2}, {104.0, 1.2}, {104.0, 1.5}, {103.6, 1.5}, {103.6, 1.2},
	}}
	data, err := wkb.Marshal(poly)
	if err != nil {
		t.Fatalf("marshal wkb: %v", err)
	}
	return boundary.MemStore{"sg": data}
}

func testRender(dir string) *render.Request {
	r := render.NewRequest()
	r.DPI = 40
	r.ShowContext = false
	r.OutputPath = filepath.Join(dir, "map.png")
	return &r
}

func TestCreateRegionMapNoBasemap(t *testing.T) {
	dir := t.TempDir()

	out, err := CreateRegionMap(context.Background(), testStore(t), nil, Request{
		Code:   "SG",
		Render: testRender(dir),
	})
	if err != nil {
		t.Fatalf("CreateRegionMap: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Fatalf("output is not a decodable PNG: %v", err)
	}
}

// TestCreateRegionMapFetchFailure verifies a failed basemap fetch is
// downgraded to a warning: the map is still written without the layer.
func TestCreateRegionMapFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	out, err := CreateRegionMap(context.Background(), testStore(t), compute.NewSession(srv.URL, "demo"), Request{
		Code:    "sg",
		Render:  testRender(dir),
		Basemap: &compute.BasemapRequest{Handle: "habitat/classified"},
	})
	if err != nil {
		t.Fatalf("CreateRegionMap: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output missing after fetch failure: %v", err)
	}
}

func TestCreateRegionMapFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	session := compute.NewSession(srv.URL, "demo")
	session.Client.Timeout = 50 * time.Millisecond

	dir := t.TempDir()
	out, err := CreateRegionMap(context.Background(), testStore(t), session, Request{
		Code:    "sg",
		Render:  testRender(dir),
		Basemap: &compute.BasemapRequest{Handle: "habitat/classified"},
	})
	if err != nil {
		t.Fatalf("CreateRegionMap: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output missing after fetch timeout: %v", err)
	}
}

func TestCreateRegionMapInvalidCode(t *testing.T) {
	_, err := CreateRegionMap(context.Background(), testStore(t), nil, Request{Code: 123})
	if err == nil {
		t.Fatal("expected type error for non-string code")
	}
	var te *boundary.ErrCodeType
	if !errors.As(err, &te) {
		t.Fatalf("error type = %T, want *boundary.ErrCodeType", err)
	}
}

func TestCreateRegionMapUnknownCode(t *testing.T) {
	_, err := CreateRegionMap(context.Background(), testStore(t), nil, Request{Code: "zz"})
	var nf *boundary.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v (%T), want *boundary.ErrNotFound", err, err)
	}
}

func TestCreateRegionMapDefaultPath(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	r := render.NewRequest()
	r.DPI = 40
	r.ShowContext = false

	out, err := CreateRegionMap(context.Background(), testStore(t), nil, Request{
		Code:   "SG",
		Render: &r,
	})
	if err != nil {
		t.Fatalf("CreateRegionMap: %v", err)
	}
	if out != "sg.png" {
		t.Errorf("output path = %q, want sg.png (lower-cased code)", out)
	}
}
