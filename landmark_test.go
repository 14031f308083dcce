package cadastre

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
)

func TestLandmarkLinker_Link(t *testing.T) {
	en := DefaultProfile(English)
	k := &LandmarkLinker{Profile: &en}
	set := &PointSet{
		CRS: EPSG(32637),
		Points: []OrderedPoint{
			{Point: orb.Point{10, 10}, Name: "Oak"},
			{Point: orb.Point{0, -5}, Name: "Well"},
		},
	}
	var table LandmarkTable

	rows, layer, err := k.Link(&table, orb.Point{0, 0}, set, set.Names())
	if err != nil {
		t.Fatalf("Link failed: %v", err)
	}
	if len(rows) != 2 || table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d rows and %d table rows", len(rows), table.Len())
	}

	if rows[0].Az != "45°0'0.0''" || rows[0].Length != 14.14 {
		t.Errorf("unexpected first row %+v", rows[0])
	}
	if rows[1].Az != "180°0'0.0''" || rows[1].Length != 5 {
		t.Errorf("unexpected second row %+v", rows[1])
	}

	if layer.Name != "guides" || layer.CRS != EPSG(32637) {
		t.Errorf("unexpected layer %s in %s", layer.Name, layer.CRS)
	}
	if len(layer.Features.Features) != 2 {
		t.Fatalf("expected 2 guide features, got %d", len(layer.Features.Features))
	}
	if got := layer.Features.Features[0].Properties["Data"]; got != "Oak az. 45°0'0.0'' 14.14m" {
		t.Errorf("unexpected guide data %q", got)
	}
	line, ok := layer.Features.Features[1].Geometry.(orb.LineString)
	if !ok || !orb.Equal(line, orb.LineString{{0, 0}, {0, -5}}) {
		t.Errorf("unexpected guide geometry %v", layer.Features.Features[1].Geometry)
	}
}

func TestLandmarkLinker_Russian(t *testing.T) {
	ru := DefaultProfile(Russian)
	k := &LandmarkLinker{Profile: &ru}
	set := &PointSet{Points: []OrderedPoint{{Point: orb.Point{0, 3}}}}

	_, layer, err := k.Link(nil, orb.Point{0, 0}, set, []string{"Дуб"})
	if err != nil {
		t.Fatalf("Link failed: %v", err)
	}
	if got := layer.Features.Features[0].Properties["Data"]; got != "Дуб аз. 0°0'0.0'' 3.0м" {
		t.Errorf("unexpected guide data %q", got)
	}
}

func TestLandmarkLinker_Errors(t *testing.T) {
	en := DefaultProfile(English)
	k := &LandmarkLinker{Profile: &en}
	var table LandmarkTable

	if _, _, err := k.Link(&table, orb.Point{}, nil, nil); !errors.Is(err, ErrMissingInput) {
		t.Errorf("expected ErrMissingInput, got %v", err)
	}
	if _, _, err := k.Link(&table, orb.Point{}, squareSet(), []string{"a"}); !errors.Is(err, ErrNameCount) {
		t.Errorf("expected ErrNameCount, got %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("expected no rows, got %d", table.Len())
	}
}

func TestHandler_LandmarksMissingBenchmark(t *testing.T) {
	h, sink, _ := newTestHandler(t)

	if h.Landmarks(LandmarksRequest{Landmarks: squareSet()}) {
		t.Error("expected failure without benchmark")
	}
	bm := orb.Point{0, 0}
	if h.Landmarks(LandmarksRequest{Benchmark: &bm}) {
		t.Error("expected failure without landmarks")
	}
	if !h.Landmarks(LandmarksRequest{Benchmark: &bm, Landmarks: squareSet(), Language: English}) {
		t.Fatal("expected success")
	}
	if sink.Last("guides") == nil {
		t.Error("expected guides layer")
	}
	if h.Tables.Landmarks.Len() != 4 {
		t.Errorf("expected 4 rows, got %d", h.Tables.Landmarks.Len())
	}
}
