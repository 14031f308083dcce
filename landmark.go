package cadastre

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LandmarkLinker draws guides from a benchmark to each landmark.
type LandmarkLinker struct {
	Profile *Profile
}

// Link measures one guide from benchmark to every landmark, in input order, and
// returns them as a guide layer whose Data field reads like "Oak az. 45°0'0.0'' 14.14m".
// names must hold one name per landmark.
func (k *LandmarkLinker) Link(table *LandmarkTable, benchmark orb.Point, landmarks *PointSet, names []string) ([]LandmarkRow, *Layer, error) {
	if landmarks.Len() == 0 {
		return nil, nil, ErrMissingInput
	}
	if len(names) != landmarks.Len() {
		return nil, nil, fmt.Errorf("%w: %d names for %d landmarks", ErrNameCount, len(names), landmarks.Len())
	}

	fc := geojson.NewFeatureCollection()
	rows := make([]LandmarkRow, 0, landmarks.Len())
	for i, lm := range landmarks.Points {
		az, length := measure(benchmark, lm.Point)
		row := LandmarkRow{Name: names[i], Az: ToDMS(az), Length: length}
		rows = append(rows, row)

		f := geojson.NewFeature(orb.LineString{benchmark, lm.Point})
		f.Properties = geojson.Properties{
			"Data": fmt.Sprintf("%s %s. %s %s%s", row.Name, k.Profile.AzimuthLabel, row.Az, formatNumber(row.Length), k.Profile.UnitLabel),
		}
		fc.Append(f)
	}

	if table != nil {
		table.appendRows(rows)
	}
	return rows, &Layer{Name: "guides", CRS: landmarks.CRS, Fields: guideFields, Features: fc}, nil
}
