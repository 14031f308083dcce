package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	cadastre "github.com/tingold/orb-cadastre"
)

// loadFeatures reads a GeoJSON or FlatGeobuf file. The returned CRS is the one
// stored in the file, or fallback when the file has none (GeoJSON never does).
func loadFeatures(path string, fallback cadastre.CRS) (*geojson.FeatureCollection, cadastre.CRS, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fgb":
		layer, err := cadastre.ReadLayerFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", path, err)
		}
		crs := layer.CRS
		if crs == "" {
			crs = fallback
		}
		return layer.Features, crs, nil
	case ".geojson", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", err
		}
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, "", fmt.Errorf("parse %s: %w", path, err)
		}
		return fc, fallback, nil
	default:
		return nil, "", fmt.Errorf("%s: unsupported input format", path)
	}
}

func loadPoints(path string, fallback cadastre.CRS, orderKey, nameKey string) (*cadastre.PointSet, error) {
	fc, crs, err := loadFeatures(path, fallback)
	if err != nil {
		return nil, err
	}
	return cadastre.PointSetFromFeatures(fc, crs, orderKey, nameKey)
}

// loadSurfaces reads each file as a surface layer named after the file.
func loadSurfaces(paths []string, fallback cadastre.CRS) ([]*cadastre.SurfaceLayer, error) {
	var layers []*cadastre.SurfaceLayer
	for _, path := range paths {
		fc, crs, err := loadFeatures(path, fallback)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		layers = append(layers, cadastre.SurfaceFromFeatures(name, crs, fc))
	}
	return layers, nil
}

// parsePoint parses "x,y".
func parsePoint(s string) (orb.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return orb.Point{}, fmt.Errorf("point %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	return orb.Point{x, y}, nil
}

// splitList splits a comma separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
