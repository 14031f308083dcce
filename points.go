package cadastre

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// OrderedPoint is a surveyed point with its position in the boundary.
type OrderedPoint struct {
	Point orb.Point
	Order float64
	Name  string
}

// PointSet is a collection of survey points in one CRS. OrderKey names the
// attribute the Order values were read from; an empty key means the set has no
// defined ordering.
type PointSet struct {
	CRS      CRS
	OrderKey string
	Points   []OrderedPoint
}

// Len returns the number of points.
func (s *PointSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// Ordered returns a copy of the points sorted by Order. Points with equal Order
// keep their input order.
func (s *PointSet) Ordered() []OrderedPoint {
	out := make([]OrderedPoint, len(s.Points))
	copy(out, s.Points)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Geometries returns the points in order as bare coordinates.
func (s *PointSet) Geometries() []orb.Point {
	ordered := s.Ordered()
	pts := make([]orb.Point, len(ordered))
	for i, p := range ordered {
		pts[i] = p.Point
	}
	return pts
}

// Names returns the point names in input order.
func (s *PointSet) Names() []string {
	names := make([]string, len(s.Points))
	for i, p := range s.Points {
		names[i] = p.Name
	}
	return names
}

// PointSetFromFeatures reads point features into a PointSet. The order value is
// taken from the orderKey property and may be a number or a numeric string. When
// orderKey is empty the features keep their collection order and the set has no
// ordering key. nameKey is optional; unnamed points are named by their order value,
// or by their position when there is no orderKey, so coordinate rows carry the
// numbers the boundary table uses.
func PointSetFromFeatures(fc *geojson.FeatureCollection, crs CRS, orderKey, nameKey string) (*PointSet, error) {
	if fc == nil {
		return nil, ErrMissingInput
	}

	set := &PointSet{CRS: crs, OrderKey: orderKey}
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("feature %d: expected Point, got %s", i, f.Geometry.GeoJSONType())
		}

		op := OrderedPoint{Point: p, Order: float64(i + 1), Name: strconv.Itoa(i + 1)}
		if orderKey != "" {
			v, err := orderValue(f.Properties[orderKey])
			if err != nil {
				return nil, fmt.Errorf("feature %d: %s: %w", i, orderKey, err)
			}
			op.Order = v
			op.Name = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if nameKey != "" {
			if name, ok := f.Properties[nameKey]; ok && name != nil {
				op.Name = strings.TrimSpace(fmt.Sprint(name))
			}
		}
		set.Points = append(set.Points, op)
	}
	return set, nil
}

func orderValue(v interface{}) (float64, error) {
	if v == nil {
		return 0, ErrMissingOrder
	}
	if s, ok := v.(string); ok {
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	}
	if f, ok := toFloat64(v); ok {
		return f, nil
	}
	if i, ok := toInt64(v); ok {
		return float64(i), nil
	}
	return 0, fmt.Errorf("unsupported order value %T", v)
}

// SurfaceFromFeatures builds a surface layer from a feature collection.
func SurfaceFromFeatures(name string, crs CRS, fc *geojson.FeatureCollection) *SurfaceLayer {
	l := &SurfaceLayer{Name: name, CRS: crs}
	if fc == nil {
		return l
	}
	for _, f := range fc.Features {
		if f != nil && f.Geometry != nil {
			l.Geometries = append(l.Geometries, f.Geometry)
		}
	}
	return l
}

// Part is a 1-based inclusive range of ordered points treated as its own closed ring.
type Part struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Validate checks the part against a point set of n points.
func (p Part) Validate(n int) error {
	if p.Start < 1 || p.End < p.Start || p.End > n {
		return fmt.Errorf("%w: [%d,%d] of %d points", ErrInvalidPart, p.Start, p.End, n)
	}
	return nil
}

func (p Part) String() string {
	return strconv.Itoa(p.Start) + "-" + strconv.Itoa(p.End)
}

// ParseParts parses a comma separated list of ranges such as "1-4,5-9".
func ParseParts(s string) ([]Part, error) {
	var parts []Part
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		lo, hi, ok := strings.Cut(field, "-")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPart, field)
		}
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPart, field)
		}
		end, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPart, field)
		}
		parts = append(parts, Part{Start: start, End: end})
	}
	return parts, nil
}
