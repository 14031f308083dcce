// Package cadastre turns ordered survey points into cadastral boundary descriptions.
// For each segment of a boundary it derives the bearing, length, compass direction and
// a sentence in one of three languages, and names the reference surfaces it crosses.
// Computed geometries are handed to a LayerSink and can be written as FlatGeobuf.
package cadastre

import (
	"errors"
)

// Errors reported by the engine and the layer codec.
var (
	ErrMissingInput    = errors.New("cadastre: required input missing")
	ErrMissingOrder    = errors.New("cadastre: point set has no ordering key")
	ErrInvalidPart     = errors.New("cadastre: invalid part range")
	ErrNameCount       = errors.New("cadastre: names do not match point count")
	ErrUnknownCRS      = errors.New("cadastre: unknown coordinate reference system")
	ErrInvalidTemplate = errors.New("cadastre: sentence template must take exactly three values")
	ErrInvalidProfile  = errors.New("cadastre: invalid language profile")
	ErrNilGeometry     = errors.New("cadastre: nil geometry")
	ErrNoIndex         = errors.New("cadastre: file has no spatial index")
	ErrInvalidColumn   = errors.New("cadastre: invalid column type")
)

// Options overrides what WriteLayer stores in the file header. Empty Name and
// Description fall back to the layer's own.
type Options struct {
	Name         string
	Description  string
	IncludeIndex bool // packed R-tree, needed by Reader.Search
}

// DefaultOptions writes an indexed layer.
func DefaultOptions() *Options {
	return &Options{IncludeIndex: true}
}

// ColumnInfo is one property column as stored in a layer file.
type ColumnInfo struct {
	Name     string
	Type     string // "Long", "Double", "String", ...
	Title    string
	Nullable bool
}

// Header summarizes a stored layer without decoding its features.
type Header struct {
	Name          string
	Description   string
	GeometryType  string
	FeaturesCount uint64
	Envelope      [4]float64 // minX, minY, maxX, maxY
	CRS           CRS        // empty when the file declares none
	HasIndex      bool
	Columns       []ColumnInfo
}
