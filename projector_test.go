package cadastre

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

func TestCoordinateProjector_WGS84ToMercator(t *testing.T) {
	p := &CoordinateProjector{Reprojector: NewRegistry()}
	set := &PointSet{CRS: WGS84, Points: []OrderedPoint{{Point: orb.Point{37.5, 55.75}}}}
	var table CoordinateTable

	rows, err := p.Project(&table, set, WebMercator, []string{"A"})
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if len(rows) != 1 || table.Len() != 1 {
		t.Fatalf("expected 1 row, got %d rows and %d table rows", len(rows), table.Len())
	}

	row := rows[0]
	if row.Name != "A" {
		t.Errorf("expected name A, got %q", row.Name)
	}
	if row.X != "55°45'0.0''" {
		t.Errorf("expected latitude in X, got %q", row.X)
	}
	if row.Y != "37°30'0.0''" {
		t.Errorf("expected longitude in Y, got %q", row.Y)
	}

	m := project.WGS84.ToMercator(orb.Point{37.5, 55.75})
	if row.X1 != Round(m.Y(), 3) || row.Y1 != Round(m.X(), 3) {
		t.Errorf("expected (%v, %v), got (%v, %v)", Round(m.Y(), 3), Round(m.X(), 3), row.X1, row.Y1)
	}
}

func TestCoordinateProjector_UTM(t *testing.T) {
	p := &CoordinateProjector{Reprojector: NewRegistry()}
	// on the central meridian of zone 37
	set := &PointSet{CRS: EPSG(32637), Points: []OrderedPoint{{Point: orb.Point{500000, 6000000}}}}

	rows, err := p.Project(nil, set, EPSG(32637), []string{"1"})
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	row := rows[0]
	if row.Y != "39°0'0.0''" {
		t.Errorf("expected central meridian 39°, got %q", row.Y)
	}
	if math.Abs(row.X1-6000000) > 2e-3 || math.Abs(row.Y1-500000) > 2e-3 {
		t.Errorf("round trip drifted: (%v, %v)", row.X1, row.Y1)
	}
}

func TestCoordinateProjector_RoundTripThroughDisplay(t *testing.T) {
	reg := NewRegistry()
	p := &CoordinateProjector{Reprojector: reg}
	in := orb.Point{512345.678, 6123456.789}
	set := &PointSet{CRS: EPSG(32637), Points: []OrderedPoint{{Point: in}}}

	// Pulkovo 1942 Gauss-Kruger zone 7 shares the UTM 37 central meridian
	rows, err := p.Project(nil, set, EPSG(28407), []string{"1"})
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if math.Abs(rows[0].Y1-in.X()) < 1 {
		t.Fatalf("expected display coordinates to differ from the source, got %v", rows[0])
	}

	back, err := reg.Transform(EPSG(28407), EPSG(32637))
	if err != nil {
		t.Fatal(err)
	}
	out, err := back(orb.Point{rows[0].Y1, rows[0].X1})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(out.X()-in.X()) > 5e-3 || math.Abs(out.Y()-in.Y()) > 5e-3 {
		t.Errorf("round trip drifted: %v -> %v", in, out)
	}
}

func TestCoordinateProjector_NameCount(t *testing.T) {
	p := &CoordinateProjector{Reprojector: NewRegistry()}
	var table CoordinateTable

	_, err := p.Project(&table, squareSet(), WGS84, []string{"only one"})
	if !errors.Is(err, ErrNameCount) {
		t.Errorf("expected ErrNameCount, got %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("expected no rows, got %d", table.Len())
	}
}

func TestCoordinateProjector_UnknownCRS(t *testing.T) {
	p := &CoordinateProjector{Reprojector: NewRegistry()}
	set := &PointSet{CRS: WGS84, Points: []OrderedPoint{{Point: orb.Point{1, 1}}}}

	if _, err := p.Project(nil, set, EPSG(999999), []string{"1"}); !errors.Is(err, ErrUnknownCRS) {
		t.Errorf("expected ErrUnknownCRS, got %v", err)
	}
}

func TestCoordinateProjector_PartialFailureAppendsNothing(t *testing.T) {
	calls := 0
	r := reprojectorFunc(func(from, to CRS) (Transform, error) {
		return func(p orb.Point) (orb.Point, error) {
			calls++
			if calls > 2 {
				return p, errors.New("out of range")
			}
			return p, nil
		}, nil
	})
	p := &CoordinateProjector{Reprojector: r}
	var table CoordinateTable

	if _, err := p.Project(&table, squareSet(), WGS84, nil); !errors.Is(err, ErrNameCount) {
		t.Fatalf("expected ErrNameCount for nil names, got %v", err)
	}
	if _, err := p.Project(&table, squareSet(), WGS84, []string{"1", "2", "3", "4"}); err == nil {
		t.Fatal("expected failure on the second point")
	}
	if table.Len() != 0 {
		t.Errorf("expected no rows after partial failure, got %d", table.Len())
	}
}

type reprojectorFunc func(from, to CRS) (Transform, error)

func (f reprojectorFunc) Transform(from, to CRS) (Transform, error) { return f(from, to) }
