package cadastre

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func TestNewReaderFromData_Invalid(t *testing.T) {
	// Invalid data (not a FlatGeobuf file)
	_, err := NewReaderFromData([]byte("not a flatgeobuf"))
	if err == nil {
		t.Error("expected error for invalid data")
	}
}

func TestNewReaderFromData_Empty(t *testing.T) {
	_, err := NewReaderFromData([]byte{})
	if err == nil {
		t.Error("expected error for empty data")
	}
}

func TestNewReader_NonExistent(t *testing.T) {
	_, err := NewReader("/nonexistent/path/to/file.fgb")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func writeLayerFile(t *testing.T, l *Layer, opts *Options) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), l.Name+".fgb")

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	err = WriteLayer(file, l, opts)
	_ = file.Close()
	if err != nil {
		t.Fatalf("WriteLayer failed: %v", err)
	}
	return path
}

func squareBorderLayer(t *testing.T) *Layer {
	t.Helper()
	en := DefaultProfile(English)
	b := &SegmentBuilder{Profile: &en}
	segs, err := b.Build(nil, Part{Start: 1, End: 4}, squarePoints())
	if err != nil {
		t.Fatal(err)
	}
	return borderLayer(EPSG(32637), segs)
}

func TestRoundTrip_BorderLayer(t *testing.T) {
	path := writeLayerFile(t, squareBorderLayer(t), nil)

	layer, err := ReadLayerFile(path)
	if err != nil {
		t.Fatalf("ReadLayerFile failed: %v", err)
	}

	if layer.Name != "border" {
		t.Errorf("expected name 'border', got %q", layer.Name)
	}
	if layer.CRS != EPSG(32637) {
		t.Errorf("expected CRS EPSG:32637, got %q", layer.CRS)
	}
	if len(layer.Fields) != len(borderFields) {
		t.Fatalf("expected %d fields, got %d", len(borderFields), len(layer.Fields))
	}
	for i, f := range borderFields {
		if layer.Fields[i] != f {
			t.Errorf("field %d: expected %v, got %v", i, f, layer.Fields[i])
		}
	}

	if len(layer.Features.Features) != 4 {
		t.Fatalf("expected 4 features, got %d", len(layer.Features.Features))
	}

	// features come back in index order, find the closing segment
	var closing *geojson.Feature
	for _, f := range layer.Features.Features {
		if f.Properties["From"] == int64(4) {
			closing = f
		}
	}
	if closing == nil {
		t.Fatal("closing segment not found")
	}
	if closing.Properties["To"] != int64(1) {
		t.Errorf("expected To 1, got %v", closing.Properties["To"])
	}
	if closing.Properties["Len"] != 10.0 {
		t.Errorf("expected Len 10, got %v", closing.Properties["Len"])
	}
	if closing.Properties["Az"] != "270°0'0.0''" {
		t.Errorf("unexpected Az %v", closing.Properties["Az"])
	}
	if !orb.Equal(closing.Geometry, orb.LineString{{10, 0}, {0, 0}}) {
		t.Errorf("unexpected geometry %v", closing.Geometry)
	}
}

func TestHeader_BorderLayer(t *testing.T) {
	opts := &Options{Name: "parcel 12", Description: "north part", IncludeIndex: true}
	path := writeLayerFile(t, squareBorderLayer(t), opts)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer func() { _ = reader.Close() }()

	header := reader.Header()
	if header == nil {
		t.Fatal("expected non-nil header")
	}
	if header.Name != "parcel 12" || header.Description != "north part" {
		t.Errorf("unexpected name/description %q %q", header.Name, header.Description)
	}
	if header.GeometryType != "LineString" {
		t.Errorf("expected geometry type 'LineString', got %q", header.GeometryType)
	}
	if header.FeaturesCount != 4 {
		t.Errorf("expected 4 features, got %d", header.FeaturesCount)
	}
	if !header.HasIndex {
		t.Error("expected HasIndex to be true")
	}

	columnMap := make(map[string]string)
	for _, col := range header.Columns {
		columnMap[col.Name] = col.Type
	}
	if columnMap["From"] != "Long" || columnMap["Len"] != "Double" || columnMap["Desc"] != "String" {
		t.Errorf("unexpected column types %v", columnMap)
	}
}

func TestHeader_NamedCRS(t *testing.T) {
	l := &Layer{Name: "guides", CRS: "local grid", Fields: guideFields, Features: geojson.NewFeatureCollection()}
	f := geojson.NewFeature(orb.LineString{{0, 0}, {3, 4}})
	f.Properties = geojson.Properties{"Data": "Oak az. 36°52'11.632'' 5.0m"}
	l.Features.Append(f)

	reader, err := NewReader(writeLayerFile(t, l, nil))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer func() { _ = reader.Close() }()

	if got := reader.Header().CRS; got != "local grid" {
		t.Errorf("expected named CRS, got %q", got)
	}
}

func TestRoundTrip_Search(t *testing.T) {
	l := &Layer{Name: "grid", Fields: []Field{{"x", FieldInt}}, Features: geojson.NewFeatureCollection()}
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			f := geojson.NewFeature(orb.Point{float64(x), float64(y)})
			f.Properties = geojson.Properties{"x": x}
			l.Features.Append(f)
		}
	}

	reader, err := NewReader(writeLayerFile(t, l, nil))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer func() { _ = reader.Close() }()

	results, err := reader.Search(orb.Bound{Min: orb.Point{2, 2}, Max: orb.Point{4, 4}})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	// Should find points in the 2-4 range
	if len(results.Features) == 0 {
		t.Error("expected some results from search")
	}
	for _, f := range results.Features {
		if x := f.Properties["x"].(int64); x < 1 || x > 5 {
			t.Errorf("unexpected result x=%d", x)
		}
	}
}

func TestSearch_NoIndex(t *testing.T) {
	l := &Layer{Name: "single", Features: geojson.NewFeatureCollection()}
	l.Features.Append(geojson.NewFeature(orb.Point{1, 2}))

	reader, err := NewReader(writeLayerFile(t, l, &Options{IncludeIndex: false}))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer func() { _ = reader.Close() }()

	_, err = reader.Search(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}})
	if err != ErrNoIndex {
		t.Errorf("expected ErrNoIndex, got %v", err)
	}
}

func TestReader_Close(t *testing.T) {
	l := &Layer{Name: "single", Features: geojson.NewFeatureCollection()}
	l.Features.Append(geojson.NewFeature(orb.Point{1, 2}))

	// Open and close
	reader, err := NewReader(writeLayerFile(t, l, nil))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}

	err = reader.Close()
	if err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
