package cadastre

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/ctessum/geom/proj"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// CRS identifies a coordinate reference system, e.g. "EPSG:32637".
type CRS string

// WGS84 is the fixed global reference system all transformations pass through.
const WGS84 CRS = "EPSG:4326"

// WebMercator is the spherical mercator used by web maps.
const WebMercator CRS = "EPSG:3857"

// EPSG returns the identifier for an EPSG code.
func EPSG(code int) CRS {
	return CRS("EPSG:" + strconv.Itoa(code))
}

// Code returns the EPSG code of c, if it has one.
func (c CRS) Code() (int, bool) {
	s := strings.TrimSpace(string(c))
	if len(s) < 5 || !strings.EqualFold(s[:5], "EPSG:") {
		return 0, false
	}
	code, err := strconv.Atoi(s[5:])
	if err != nil || code <= 0 {
		return 0, false
	}
	return code, true
}

// normalize upper-cases the EPSG prefix so "epsg:4326" and "EPSG:4326" match.
func (c CRS) normalize() CRS {
	if code, ok := c.Code(); ok {
		return EPSG(code)
	}
	return CRS(strings.TrimSpace(string(c)))
}

// Projection converts between a CRS and WGS84 longitude/latitude degrees.
type Projection interface {
	ToWGS84(p orb.Point) (orb.Point, error)
	FromWGS84(p orb.Point) (orb.Point, error)
}

// Transform maps a point from one CRS to another.
type Transform func(p orb.Point) (orb.Point, error)

// Reprojector provides transformations between reference systems.
type Reprojector interface {
	Transform(from, to CRS) (Transform, error)
}

type identityProjection struct{}

func (identityProjection) ToWGS84(p orb.Point) (orb.Point, error)   { return p, nil }
func (identityProjection) FromWGS84(p orb.Point) (orb.Point, error) { return p, nil }

type mercatorProjection struct{}

func (mercatorProjection) ToWGS84(p orb.Point) (orb.Point, error) {
	return project.Mercator.ToWGS84(p), nil
}

func (mercatorProjection) FromWGS84(p orb.Point) (orb.Point, error) {
	return project.WGS84.ToMercator(p), nil
}

// proj4Projection wraps a pair of proj4 transformers to and from WGS84.
type proj4Projection struct {
	to, from proj.Transformer
}

func newProj4Projection(def string) (*proj4Projection, error) {
	sr, err := proj.Parse(def)
	if err != nil {
		return nil, err
	}
	// Parse accepts any +proj name; only the transformer lookup rejects unknown ones.
	if _, _, err := sr.Transformers(); err != nil {
		return nil, err
	}
	wgs, err := proj.Parse(wgs84Proj4)
	if err != nil {
		return nil, err
	}
	to, err := sr.NewTransform(wgs)
	if err != nil {
		return nil, err
	}
	from, err := wgs.NewTransform(sr)
	if err != nil {
		return nil, err
	}
	return &proj4Projection{to: to, from: from}, nil
}

func (p *proj4Projection) ToWGS84(pt orb.Point) (orb.Point, error) {
	x, y, err := p.to(pt[0], pt[1])
	return orb.Point{x, y}, err
}

func (p *proj4Projection) FromWGS84(pt orb.Point) (orb.Point, error) {
	x, y, err := p.from(pt[0], pt[1])
	return orb.Point{x, y}, err
}

const wgs84Proj4 = "+proj=longlat +datum=WGS84 +no_defs"

// Pulkovo 1942 to WGS84 datum shift used by the Gauss-Kruger zones.
const pulkovoToWGS84 = "+towgs84=23.57,-140.95,-79.8,0,0.35,0.79,-0.22"

// builtinProj4 returns a proj4 definition for the EPSG codes generated from zone
// numbers: WGS84 UTM north (326NN) and south (327NN), Pulkovo 1942 Gauss-Kruger (284NN).
func builtinProj4(code int) (string, bool) {
	switch {
	case code >= 32601 && code <= 32660:
		return utmProj4(code-32600, false), true
	case code >= 32701 && code <= 32760:
		return utmProj4(code-32700, true), true
	case code >= 28404 && code <= 28432:
		zone := code - 28400
		return fmt.Sprintf("+proj=tmerc +lat_0=0 +lon_0=%d +k=1 +x_0=%d +y_0=0 +ellps=krass %s +units=m +no_defs",
			6*zone-3, zone*1000000+500000, pulkovoToWGS84), true
	}
	return "", false
}

func utmProj4(zone int, south bool) string {
	y0 := 0
	if south {
		y0 = 10000000
	}
	return fmt.Sprintf("+proj=tmerc +lat_0=0 +lon_0=%d +k=0.9996 +x_0=500000 +y_0=%d +datum=WGS84 +units=m +no_defs",
		6*zone-183, y0)
}

// Registry resolves CRS identifiers to projections. Definitions are parsed lazily
// and cached. A Registry is safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	defs  map[CRS]string
	cache map[CRS]Projection
}

// NewRegistry returns a registry that knows WGS84, web mercator, the WGS84 UTM
// zones and the Pulkovo 1942 Gauss-Kruger zones.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[CRS]string),
		cache: map[CRS]Projection{
			WGS84:       identityProjection{},
			WebMercator: mercatorProjection{},
		},
	}
}

// Define registers a proj4 definition under crs, replacing any earlier one.
// The definition is parsed immediately so mistakes surface at configuration time.
func (r *Registry) Define(crs CRS, proj4 string) error {
	crs = crs.normalize()
	p, err := newProj4Projection(proj4)
	if err != nil {
		return fmt.Errorf("define %s: %w", crs, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[crs] = proj4
	r.cache[crs] = p
	return nil
}

// Lookup returns the projection for crs.
func (r *Registry) Lookup(crs CRS) (Projection, error) {
	crs = crs.normalize()

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.cache[crs]; ok {
		return p, nil
	}

	def, ok := r.defs[crs]
	if !ok {
		code, _ := crs.Code()
		def, ok = builtinProj4(code)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCRS, crs)
	}

	p, err := newProj4Projection(def)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", crs, err)
	}
	r.cache[crs] = p
	return p, nil
}

// Transform returns a transformation from one CRS to another through WGS84.
func (r *Registry) Transform(from, to CRS) (Transform, error) {
	if from.normalize() == to.normalize() {
		return func(p orb.Point) (orb.Point, error) { return p, nil }, nil
	}
	src, err := r.Lookup(from)
	if err != nil {
		return nil, err
	}
	dst, err := r.Lookup(to)
	if err != nil {
		return nil, err
	}
	return func(p orb.Point) (orb.Point, error) {
		ll, err := src.ToWGS84(p)
		if err != nil {
			return p, err
		}
		return dst.FromWGS84(ll)
	}, nil
}

// Reproject returns a copy of g transformed by tr. The input geometry is not modified.
func Reproject(g orb.Geometry, tr Transform) (orb.Geometry, error) {
	if g == nil {
		return nil, ErrNilGeometry
	}

	var terr error
	out := project.Geometry(orb.Clone(g), func(p orb.Point) orb.Point {
		if terr != nil {
			return p
		}
		q, err := tr(p)
		if err != nil {
			terr = err
			return p
		}
		return q
	})
	if terr != nil {
		return nil, terr
	}
	return out, nil
}
