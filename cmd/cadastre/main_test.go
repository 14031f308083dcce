package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	cadastre "github.com/tingold/orb-cadastre"
	"github.com/tingold/orb-cadastre/internal/config"
)

func writeGeoJSON(t *testing.T, dir, name string, fc *geojson.FeatureCollection) string {
	t.Helper()
	data, err := fc.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func squareFeatures() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, p := range []orb.Point{{10, 10}, {0, 0}, {10, 0}, {0, 10}} {
		f := geojson.NewFeature(p)
		f.Properties = geojson.Properties{"order": []int{3, 1, 4, 2}[i], "name": []string{"c", "a", "d", "b"}[i]}
		fc.Append(f)
	}
	return fc
}

func TestRun_All(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")

	road := geojson.NewFeatureCollection()
	road.Append(geojson.NewFeature(orb.LineString{{5, -5}, {5, 5}}))

	landmarks := geojson.NewFeatureCollection()
	oak := geojson.NewFeature(orb.Point{10, 10})
	oak.Properties = geojson.Properties{"name": "Oak"}
	landmarks.Append(oak)

	opts := &options{
		points:     writeGeoJSON(t, dir, "points.geojson", squareFeatures()),
		orderField: "order",
		nameField:  "name",
		surfaces:   writeGeoJSON(t, dir, "road.geojson", road),
		benchmark:  "0,0",
		landmarks:  writeGeoJSON(t, dir, "landmarks.json", landmarks),
		lang:       "english",
		crs:        "EPSG:32637",
		out:        out,
		quiet:      true,
	}

	cfg := config.Default()
	opts.apply(cfg)

	var logs bytes.Buffer
	if err := run("all", cfg, opts, slog.New(slog.NewTextHandler(&logs, nil))); err != nil {
		t.Fatalf("run failed: %v\n%s", err, logs.String())
	}

	for _, name := range []string{"border.fgb", "guides.fgb", "borders.arrow", "coordinates.arrow", "landmarks.arrow"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}

	layer, err := cadastre.ReadLayerFile(filepath.Join(out, "border.fgb"))
	if err != nil {
		t.Fatalf("ReadLayerFile failed: %v", err)
	}
	if layer.CRS != "EPSG:32637" {
		t.Errorf("expected EPSG:32637, got %q", layer.CRS)
	}

	var crossed bool
	for _, f := range layer.Features.Features {
		if strings.HasSuffix(f.Properties["Desc"].(string), "along road") {
			crossed = true
		}
	}
	if !crossed {
		t.Error("expected a segment crossing the road")
	}
}

func TestRun_LoadsFlatGeobufPoints(t *testing.T) {
	dir := t.TempDir()

	// points stored as a layer with its own CRS
	layer := &cadastre.Layer{
		Name:     "points",
		CRS:      "EPSG:32637",
		Fields:   []cadastre.Field{{Name: "order", Type: cadastre.FieldInt}},
		Features: squareFeatures(),
	}
	path := filepath.Join(dir, "points.fgb")
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	err = cadastre.WriteLayer(file, layer, nil)
	_ = file.Close()
	if err != nil {
		t.Fatalf("WriteLayer failed: %v", err)
	}

	set, err := loadPoints(path, cadastre.WGS84, "order", "")
	if err != nil {
		t.Fatalf("loadPoints failed: %v", err)
	}
	if set.CRS != "EPSG:32637" {
		t.Errorf("expected file CRS, got %q", set.CRS)
	}
	pts := set.Geometries()
	if len(pts) != 4 || pts[0] != (orb.Point{0, 0}) || pts[3] != (orb.Point{10, 0}) {
		t.Errorf("unexpected order %v", pts)
	}
}

func TestRun_Failures(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Output.Dir = filepath.Join(dir, "out")
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	if err := run("nope", cfg, &options{quiet: true}, log); err == nil {
		t.Error("expected error for unknown command")
	}

	opts := &options{
		points:     writeGeoJSON(t, dir, "points.geojson", squareFeatures()),
		orderField: "order",
		parts:      "1-9",
		quiet:      true,
	}
	if err := run("borders", cfg, opts, log); err != errFailed {
		t.Errorf("expected errFailed for an invalid part, got %v", err)
	}

	if err := run("landmarks", cfg, &options{benchmark: "0,0", quiet: true}, log); err != errFailed {
		t.Errorf("expected errFailed without landmarks, got %v", err)
	}

	opts.points = filepath.Join(dir, "points.shp")
	if err := run("coords", cfg, opts, log); err == nil {
		t.Error("expected error for unsupported input")
	}
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint(" 12.5, -3 ")
	if err != nil || p != (orb.Point{12.5, -3}) {
		t.Errorf("unexpected %v, %v", p, err)
	}
	for _, s := range []string{"12.5", "a,1", "1,b"} {
		if _, err := parsePoint(s); err == nil {
			t.Errorf("%q: expected error", s)
		}
	}
}

func TestRenderTable(t *testing.T) {
	var tables cadastre.Tables
	out := renderTable(&tables.Landmarks)
	if !strings.Contains(out, "Landmarks") || !strings.Contains(out, "(no rows)") {
		t.Errorf("unexpected empty rendering %q", out)
	}

	en := cadastre.DefaultProfile(cadastre.English)
	b := &cadastre.SegmentBuilder{Profile: &en}
	if _, err := b.Build(&tables.Boundary, cadastre.Part{Start: 1, End: 2}, []orb.Point{{0, 0}, {0, 10}}); err != nil {
		t.Fatal(err)
	}
	out = renderTable(&tables.Boundary)
	for _, want := range []string{"From", "Desc", "0°0'0.0''", "10.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendering missing %q:\n%s", want, out)
		}
	}
}
