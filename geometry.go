package cadastre

import (
	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/paulmach/orb"
)

// fgbGeometryType maps a layer geometry to its FlatGeobuf type. Rings and bounds
// are stored as polygons.
func fgbGeometryType(geom orb.Geometry) flattypes.GeometryType {
	switch geom.(type) {
	case orb.Point:
		return flattypes.GeometryTypePoint
	case orb.MultiPoint:
		return flattypes.GeometryTypeMultiPoint
	case orb.LineString:
		return flattypes.GeometryTypeLineString
	case orb.MultiLineString:
		return flattypes.GeometryTypeMultiLineString
	case orb.Ring, orb.Polygon, orb.Bound:
		return flattypes.GeometryTypePolygon
	case orb.MultiPolygon:
		return flattypes.GeometryTypeMultiPolygon
	default:
		return flattypes.GeometryTypeUnknown
	}
}

// layerGeometryType returns the common type of all geometries, or Unknown when they differ.
func layerGeometryType(geoms []orb.Geometry) flattypes.GeometryType {
	if len(geoms) == 0 {
		return flattypes.GeometryTypeUnknown
	}
	t := fgbGeometryType(geoms[0])
	for _, g := range geoms[1:] {
		if fgbGeometryType(g) != t {
			return flattypes.GeometryTypeUnknown
		}
	}
	return t
}

// encodeGeometry converts a geometry to a FlatGeobuf writer geometry. It returns
// nil for nil and unsupported geometries.
func encodeGeometry(geom orb.Geometry, builder *flatbuffers.Builder) *writer.Geometry {
	if geom == nil {
		return nil
	}

	g := writer.NewGeometry(builder)
	g.SetType(fgbGeometryType(geom))

	switch v := geom.(type) {
	case orb.Point:
		g.SetXY([]float64{v[0], v[1]})
	case orb.MultiPoint:
		g.SetXY(flatten(v))
	case orb.LineString:
		g.SetXY(flatten(v))
	case orb.MultiLineString:
		xy, ends := flattenParts(len(v), func(i int) []orb.Point { return v[i] })
		g.SetXY(xy)
		g.SetEnds(ends)
	case orb.Ring:
		setPolygon(g, orb.Polygon{v})
	case orb.Bound:
		setPolygon(g, v.ToPolygon())
	case orb.Polygon:
		setPolygon(g, v)
	case orb.MultiPolygon:
		parts := make([]writer.Geometry, 0, len(v))
		for _, poly := range v {
			pg := writer.NewGeometry(builder)
			pg.SetType(flattypes.GeometryTypePolygon)
			setPolygon(pg, poly)
			parts = append(parts, *pg)
		}
		g.SetParts(parts)
	default:
		return nil
	}

	return g
}

func setPolygon(g *writer.Geometry, poly orb.Polygon) {
	xy, ends := flattenParts(len(poly), func(i int) []orb.Point { return poly[i] })
	g.SetXY(xy)
	g.SetEnds(ends)
}

func flatten(pts []orb.Point) []float64 {
	xy := make([]float64, 0, len(pts)*2)
	for _, p := range pts {
		xy = append(xy, p[0], p[1])
	}
	return xy
}

// flattenParts concatenates n point sequences and records the cumulative point
// count at the end of each one.
func flattenParts(n int, part func(i int) []orb.Point) ([]float64, []uint32) {
	var xy []float64
	ends := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		xy = append(xy, flatten(part(i))...)
		ends = append(ends, uint32(len(xy)/2))
	}
	return xy, ends
}

// decodeGeometry converts a FlatGeobuf geometry back to orb.
func decodeGeometry(g *flattypes.Geometry) orb.Geometry {
	if g == nil {
		return nil
	}

	switch g.Type() {
	case flattypes.GeometryTypePoint:
		pts := readPoints(g, 0, g.XyLength()/2)
		if len(pts) == 0 {
			return orb.Point{}
		}
		return pts[0]
	case flattypes.GeometryTypeMultiPoint:
		return orb.MultiPoint(readPoints(g, 0, g.XyLength()/2))
	case flattypes.GeometryTypeLineString:
		return orb.LineString(readPoints(g, 0, g.XyLength()/2))
	case flattypes.GeometryTypeMultiLineString:
		mls := orb.MultiLineString{}
		for _, pts := range readParts(g) {
			mls = append(mls, orb.LineString(pts))
		}
		return mls
	case flattypes.GeometryTypePolygon:
		return readPolygon(g)
	case flattypes.GeometryTypeMultiPolygon:
		mp := orb.MultiPolygon{}
		if g.PartsLength() == 0 {
			if poly := readPolygon(g); len(poly) > 0 {
				mp = append(mp, poly)
			}
			return mp
		}
		for i := 0; i < g.PartsLength(); i++ {
			var part flattypes.Geometry
			if g.Parts(&part, i) {
				if poly := readPolygon(&part); len(poly) > 0 {
					mp = append(mp, poly)
				}
			}
		}
		return mp
	default:
		return nil
	}
}

func readPolygon(g *flattypes.Geometry) orb.Polygon {
	poly := orb.Polygon{}
	for _, pts := range readParts(g) {
		poly = append(poly, orb.Ring(pts))
	}
	return poly
}

// readParts splits the coordinates of g at its ends. Without ends all
// coordinates form one part.
func readParts(g *flattypes.Geometry) [][]orb.Point {
	n := g.XyLength() / 2
	if n == 0 {
		return nil
	}
	if g.EndsLength() == 0 {
		return [][]orb.Point{readPoints(g, 0, n)}
	}

	parts := make([][]orb.Point, 0, g.EndsLength())
	start := 0
	for i := 0; i < g.EndsLength(); i++ {
		end := int(g.Ends(i))
		if end > n {
			end = n
		}
		parts = append(parts, readPoints(g, start, end))
		start = end
	}
	return parts
}

// readPoints reads points [from, to) of g.
func readPoints(g *flattypes.Geometry, from, to int) []orb.Point {
	if to <= from {
		return []orb.Point{}
	}
	pts := make([]orb.Point, 0, to-from)
	for i := from; i < to; i++ {
		pts = append(pts, orb.Point{g.Xy(2 * i), g.Xy(2*i + 1)})
	}
	return pts
}
