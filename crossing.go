package cadastre

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/peterstace/simplefeatures/geom"
)

// SurfaceLayer is named reference data, such as roads or water bodies, that
// boundary segments are tested against. It is never modified by this package.
type SurfaceLayer struct {
	Name       string
	CRS        CRS
	Geometries []orb.Geometry
}

// workingCopy returns the layer's geometries reprojected to crs. The layer itself
// keeps its CRS and geometries whatever happens.
func (l *SurfaceLayer) workingCopy(r Reprojector, crs CRS) ([]orb.Geometry, error) {
	if l.CRS == "" || l.CRS.normalize() == crs.normalize() {
		return l.Geometries, nil
	}
	tr, err := r.Transform(l.CRS, crs)
	if err != nil {
		return nil, err
	}
	out := make([]orb.Geometry, 0, len(l.Geometries))
	for _, g := range l.Geometries {
		if g == nil {
			continue
		}
		pg, err := Reproject(g, tr)
		if err != nil {
			return nil, fmt.Errorf("reproject %s: %w", l.Name, err)
		}
		out = append(out, pg)
	}
	return out, nil
}

type surfaceGeometry struct {
	geom  geom.Geometry
	bound orb.Bound
	name  string
}

// PreparedSurfaces holds surface geometries already in the working CRS.
type PreparedSurfaces struct {
	items []surfaceGeometry
}

// CrossingDetector finds the surface layers a boundary segment crosses or touches.
type CrossingDetector struct {
	Reprojector Reprojector
}

// Prepare reprojects every surface layer to the working CRS and converts it for
// the intersection tests. A geometry that cannot be converted fails the call.
func (d *CrossingDetector) Prepare(surfaces []*SurfaceLayer, working CRS) (*PreparedSurfaces, error) {
	ps := &PreparedSurfaces{}
	for _, l := range surfaces {
		if l == nil {
			continue
		}
		geoms, err := l.workingCopy(d.Reprojector, working)
		if err != nil {
			return nil, err
		}
		for i, g := range geoms {
			if g == nil {
				continue
			}
			sg, err := toSimple(g)
			if err != nil {
				return nil, fmt.Errorf("surface %s feature %d: %w", l.Name, i, err)
			}
			ps.items = append(ps.items, surfaceGeometry{geom: sg, bound: g.Bound(), name: l.Name})
		}
	}
	return ps, nil
}

// Match returns the layer names of every geometry seg intersects, joined with ", ".
// A layer is listed once per matching geometry, in layer then feature order.
func (ps *PreparedSurfaces) Match(seg orb.LineString) (string, error) {
	if ps == nil || len(ps.items) == 0 {
		return "", nil
	}
	sb := seg.Bound()
	var (
		line      geom.Geometry
		converted bool
		names     []string
	)
	for _, it := range ps.items {
		if !sb.Intersects(it.bound) {
			continue
		}
		if !converted {
			var err error
			if line, err = segmentGeometry(seg); err != nil {
				return "", err
			}
			converted = true
		}
		if geom.Intersects(line, it.geom) {
			names = append(names, it.name)
		}
	}
	return strings.Join(names, ", "), nil
}

// Detect returns the names of the surfaces seg crosses or touches once they are
// reprojected to the working CRS. It returns "" when no surfaces are given.
func (d *CrossingDetector) Detect(seg orb.LineString, surfaces []*SurfaceLayer, working CRS) (string, error) {
	if len(surfaces) == 0 {
		return "", nil
	}
	ps, err := d.Prepare(surfaces, working)
	if err != nil {
		return "", err
	}
	return ps.Match(seg)
}

// Intersects reports whether the line shares at least one point with g.
func Intersects(line orb.LineString, g orb.Geometry) (bool, error) {
	if g == nil {
		return false, ErrNilGeometry
	}
	lg, err := segmentGeometry(line)
	if err != nil {
		return false, err
	}
	sg, err := toSimple(g)
	if err != nil {
		return false, err
	}
	return geom.Intersects(lg, sg), nil
}

// segmentGeometry converts a boundary segment. Coincident survey points give a
// zero length segment, which is tested as the point itself.
func segmentGeometry(line orb.LineString) (geom.Geometry, error) {
	if len(line) == 0 {
		return geom.Geometry{}, ErrNilGeometry
	}
	for _, p := range line[1:] {
		if p != line[0] {
			return toSimple(line)
		}
	}
	return toSimple(line[0])
}

// toSimple converts an orb geometry through WKB. Rings and bounds are encoded
// as polygons.
func toSimple(g orb.Geometry) (geom.Geometry, error) {
	data, err := wkb.Marshal(g)
	if err != nil {
		return geom.Geometry{}, err
	}
	return geom.UnmarshalWKB(data)
}
