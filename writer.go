package cadastre

import (
	"io"

	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/paulmach/orb/geojson"
)

// WriteLayer writes a layer to FlatGeobuf format. Feature attributes are stored
// in the order and with the types of l.Fields; attributes not listed are dropped.
func WriteLayer(w io.Writer, l *Layer, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	if l == nil || l.Features == nil || len(l.Features.Features) == 0 {
		return ErrNilGeometry
	}

	// Encode properties up front so a bad value fails before anything is written.
	props := make([][]byte, len(l.Features.Features))
	for i, f := range l.Features.Features {
		if f == nil {
			continue
		}
		b, err := encodeProperties(f.Properties, l.Fields)
		if err != nil {
			return err
		}
		props[i] = b
	}

	builder := flatbuffers.NewBuilder(4096)

	header := writer.NewHeader(builder)
	header.SetGeometryType(layerGeometryType(l.Geometries()))

	name := opts.Name
	if name == "" {
		name = l.Name
	}
	if name != "" {
		header.SetName(name)
	}
	if opts.Description != "" {
		header.SetDescription(opts.Description)
	}
	if len(l.Fields) > 0 {
		header.SetColumns(buildColumns(l.Fields, builder))
	}

	if l.CRS != "" {
		crs := writer.NewCrs(builder)
		if code, ok := l.CRS.Code(); ok {
			crs.SetOrg("EPSG")
			crs.SetCode(int32(code))
		} else {
			crs.SetName(string(l.CRS))
		}
		header.SetCrs(crs)
	}

	gen := &layerFeatureGenerator{features: l.Features.Features, props: props}
	fgbWriter := writer.NewWriter(header, opts.IncludeIndex, gen, nil)

	_, err := fgbWriter.Write(w)
	return err
}

// layerFeatureGenerator feeds layer features with pre-encoded properties to the writer.
type layerFeatureGenerator struct {
	features []*geojson.Feature
	props    [][]byte
	index    int
}

func (g *layerFeatureGenerator) Generate() *writer.Feature {
	for g.index < len(g.features) {
		f := g.features[g.index]
		props := g.props[g.index]
		g.index++

		if f == nil || f.Geometry == nil {
			continue
		}

		builder := flatbuffers.NewBuilder(1024)
		geom := encodeGeometry(f.Geometry, builder)
		if geom == nil {
			continue
		}

		feature := writer.NewFeature(builder)
		feature.SetGeometry(geom)
		if len(props) > 0 {
			feature.SetProperties(props)
		}
		return feature
	}
	return nil
}
