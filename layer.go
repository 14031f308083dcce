package cadastre

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FieldType is the value type of a layer attribute.
type FieldType int

const (
	FieldString FieldType = iota
	FieldInt
	FieldDouble
)

// Field describes one attribute of a layer's features.
type Field struct {
	Name string
	Type FieldType
}

// Layer is a named collection of features in one CRS, ready to be drawn on a map.
// Fields fix the attribute order and types used when the layer is written.
type Layer struct {
	Name     string
	CRS      CRS
	Fields   []Field
	Features *geojson.FeatureCollection
}

// Geometries returns the non-nil feature geometries of the layer.
func (l *Layer) Geometries() []orb.Geometry {
	if l == nil || l.Features == nil {
		return nil
	}
	out := make([]orb.Geometry, 0, len(l.Features.Features))
	for _, f := range l.Features.Features {
		if f != nil && f.Geometry != nil {
			out = append(out, f.Geometry)
		}
	}
	return out
}

var borderFields = []Field{
	{"From", FieldInt},
	{"To", FieldInt},
	{"Desc", FieldString},
	{"Az", FieldString},
	{"Len", FieldDouble},
}

func borderLayer(crs CRS, segs []Segment) *Layer {
	fc := geojson.NewFeatureCollection()
	for _, s := range segs {
		f := geojson.NewFeature(s.Line)
		f.Properties = geojson.Properties{
			"From": s.From,
			"To":   s.To,
			"Desc": s.Description,
			"Az":   s.AzimuthDMS,
			"Len":  s.Length,
		}
		fc.Append(f)
	}
	return &Layer{Name: "border", CRS: crs, Fields: borderFields, Features: fc}
}

var guideFields = []Field{{"Data", FieldString}}

// LayerSink receives computed layers, typically to add them to a map.
type LayerSink interface {
	AddLayer(l *Layer) error
}

// MemorySink keeps every added layer. It is safe for concurrent use.
type MemorySink struct {
	mu     sync.Mutex
	layers []*Layer
}

func (s *MemorySink) AddLayer(l *Layer) error {
	if l == nil {
		return ErrNilGeometry
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers = append(s.layers, l)
	return nil
}

// Layers returns the layers added so far, oldest first.
func (s *MemorySink) Layers() []*Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Layer(nil), s.layers...)
}

// Last returns the most recent layer with the given name, or nil.
func (s *MemorySink) Last(name string) *Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.layers) - 1; i >= 0; i-- {
		if s.layers[i].Name == name {
			return s.layers[i]
		}
	}
	return nil
}

// DirSink writes each layer as <Dir>/<name>.fgb. A layer added twice under the
// same name gets a numeric suffix instead of overwriting the earlier file.
type DirSink struct {
	Dir     string
	Options *Options

	mu   sync.Mutex
	seen map[string]int
}

func (s *DirSink) AddLayer(l *Layer) error {
	if l == nil {
		return ErrNilGeometry
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen == nil {
		s.seen = make(map[string]int)
	}
	name := l.Name
	if n := s.seen[l.Name]; n > 0 {
		name = fmt.Sprintf("%s_%d", l.Name, n)
	}
	s.seen[l.Name]++

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(s.Dir, name+".fgb")
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	opts := DefaultOptions()
	if s.Options != nil {
		o := *s.Options
		opts = &o
	}
	if opts.Name == "" {
		opts.Name = l.Name
	}

	werr := WriteLayer(file, l, opts)
	cerr := file.Close()
	if werr != nil {
		return fmt.Errorf("write %s: %w", path, werr)
	}
	return cerr
}
