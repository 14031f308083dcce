package cadastre

import (
	"fmt"

	flatgeobuf "github.com/flatgeobuf/flatgeobuf/src/go"
	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Reader provides read access to a FlatGeobuf layer.
type Reader struct {
	fgb *flatgeobuf.FlatGeoBuf
}

// NewReader opens the layer file at path.
func NewReader(path string) (*Reader, error) {
	fgb, err := flatgeobuf.New(path)
	if err != nil {
		return nil, fmt.Errorf("open layer %s: %w", path, err)
	}
	return &Reader{fgb: fgb}, nil
}

// NewReaderFromData reads a layer held in memory, such as a border.fgb response.
func NewReaderFromData(data []byte) (*Reader, error) {
	fgb, err := flatgeobuf.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("read layer: %w", err)
	}
	return &Reader{fgb: fgb}, nil
}

// Header returns the layer's name, CRS, extent and column schema.
func (r *Reader) Header() *Header {
	h := r.fgb.Header()
	if h == nil {
		return nil
	}

	header := &Header{
		Name:          string(h.Name()),
		Description:   string(h.Description()),
		FeaturesCount: h.FeaturesCount(),
		HasIndex:      h.IndexNodeSize() > 0,
		GeometryType:  flattypes.EnumNamesGeometryType[h.GeometryType()],
	}

	if h.EnvelopeLength() >= 4 {
		header.Envelope = [4]float64{h.Envelope(0), h.Envelope(1), h.Envelope(2), h.Envelope(3)}
	}

	var crs flattypes.Crs
	if h.Crs(&crs) != nil {
		if crs.Code() > 0 {
			header.CRS = EPSG(int(crs.Code()))
		} else if name := string(crs.Name()); name != "" {
			header.CRS = CRS(name)
		}
	}

	if n := h.ColumnsLength(); n > 0 {
		header.Columns = make([]ColumnInfo, 0, n)
		for i := 0; i < n; i++ {
			var col flattypes.Column
			if h.Columns(&col, i) {
				header.Columns = append(header.Columns, ColumnInfo{
					Name:     string(col.Name()),
					Type:     flattypes.EnumNamesColumnType[col.Type()],
					Title:    string(col.Title()),
					Nullable: col.Nullable(),
				})
			}
		}
	}

	return header
}

// ReadLayer reads every feature into a Layer named after the file header.
// Features come back in spatial index order; the file must have an index because
// the underlying library can only iterate features through it.
func (r *Reader) ReadLayer() (*Layer, error) {
	h := r.fgb.Header()
	hdr := r.Header()

	layer := &Layer{Name: hdr.Name, CRS: hdr.CRS, Features: geojson.NewFeatureCollection()}
	for i := 0; i < h.ColumnsLength(); i++ {
		var col flattypes.Column
		if !h.Columns(&col, i) {
			continue
		}
		ft, err := fieldType(col.Type())
		if err != nil {
			return nil, err
		}
		layer.Fields = append(layer.Fields, Field{Name: string(col.Name()), Type: ft})
	}

	if h.FeaturesCount() == 0 {
		return layer, nil
	}
	if h.IndexNodeSize() == 0 || h.EnvelopeLength() < 4 {
		return nil, ErrNoIndex
	}

	fc, err := r.Search(orb.Bound{
		Min: orb.Point{h.Envelope(0), h.Envelope(1)},
		Max: orb.Point{h.Envelope(2), h.Envelope(3)},
	})
	if err != nil {
		return nil, err
	}
	layer.Features = fc
	return layer, nil
}

// Search returns the features whose envelopes overlap bounds. Surfaces are
// usually large, so callers narrow them to the boundary extent this way.
func (r *Reader) Search(bounds orb.Bound) (*geojson.FeatureCollection, error) {
	h := r.fgb.Header()
	if h.IndexNodeSize() == 0 {
		return nil, ErrNoIndex
	}

	found, err := r.fgb.Search(bounds.Min.X(), bounds.Min.Y(), bounds.Max.X(), bounds.Max.Y())
	if err != nil {
		return nil, fmt.Errorf("search layer: %w", err)
	}

	fc := geojson.NewFeatureCollection()
	for _, f := range found {
		if feature := convertFeature(f, h); feature != nil {
			fc.Append(feature)
		}
	}
	return fc, nil
}

// Close releases the reader. The library has no explicit close; dropping the
// reference lets the mapping be collected.
func (r *Reader) Close() error {
	r.fgb = nil
	return nil
}

// ReadLayerFile reads the layer stored at path.
func ReadLayerFile(path string) (*Layer, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return r.ReadLayer()
}

// convertFeature decodes one stored feature. Features without a supported
// geometry are dropped.
func convertFeature(f *flattypes.Feature, header *flattypes.Header) *geojson.Feature {
	if f == nil {
		return nil
	}

	var g flattypes.Geometry
	if f.Geometry(&g) == nil {
		return nil
	}
	geom := decodeGeometry(&g)
	if geom == nil {
		return nil
	}

	feature := geojson.NewFeature(geom)
	if n := f.PropertiesLength(); n > 0 && header.ColumnsLength() > 0 {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(f.Properties(i))
		}
		if props := decodeProperties(data, header); props != nil {
			feature.Properties = props
		}
	}
	return feature
}
