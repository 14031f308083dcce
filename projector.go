package cadastre

import (
	"fmt"

	"github.com/paulmach/orb"
)

// CoordinateProjector lists points in WGS84 degrees and in a display CRS.
type CoordinateProjector struct {
	Reprojector Reprojector
}

// Project converts every point of set, in input order, first to WGS84 and then
// from WGS84 to display. names must hold one name per point. Nothing is appended
// to table unless every point converts.
//
// X and Y follow the surveying convention: X is the latitude or northing and Y
// the longitude or easting.
func (c *CoordinateProjector) Project(table *CoordinateTable, set *PointSet, display CRS, names []string) ([]CoordinateRow, error) {
	if set.Len() == 0 {
		return nil, ErrMissingInput
	}
	if len(names) != set.Len() {
		return nil, fmt.Errorf("%w: %d names for %d points", ErrNameCount, len(names), set.Len())
	}

	toWGS, err := c.Reprojector.Transform(set.CRS, WGS84)
	if err != nil {
		return nil, err
	}
	toDisplay, err := c.Reprojector.Transform(WGS84, display)
	if err != nil {
		return nil, err
	}

	rows := make([]CoordinateRow, 0, set.Len())
	for i, p := range set.Points {
		ll, err := toWGS(p.Point)
		if err != nil {
			return nil, fmt.Errorf("point %s to %s: %w", names[i], WGS84, err)
		}
		var d orb.Point
		if d, err = toDisplay(ll); err != nil {
			return nil, fmt.Errorf("point %s to %s: %w", names[i], display, err)
		}
		rows = append(rows, CoordinateRow{
			Name: names[i],
			X:    ToDMS(ll.Lat()),
			Y:    ToDMS(ll.Lon()),
			X1:   Round(d.Y(), 3),
			Y1:   Round(d.X(), 3),
		})
	}

	if table != nil {
		table.appendRows(rows)
	}
	return rows, nil
}
