package cadastre

import (
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"
)

// Operation tags used in log records.
const (
	OpBorders     = "borders"
	OpCoordinates = "coordinates"
	OpLandmarks   = "landmarks"
)

// BordersRequest describes a boundary to be described.
type BordersRequest struct {
	Points   *PointSet
	Language Language
	Parts    []Part          // empty means one ring over all points
	Surfaces []*SurfaceLayer // optional
}

// CoordinatesRequest describes points to be listed in WGS84 and a display CRS.
type CoordinatesRequest struct {
	Points  *PointSet
	Display CRS      // defaults to the points' CRS
	Names   []string // one per point; defaults to the point names
}

// LandmarksRequest describes guides from a benchmark to landmarks.
type LandmarksRequest struct {
	Benchmark *orb.Point
	Landmarks *PointSet
	Names     []string // one per landmark; defaults to the landmark names
	Language  Language
}

// HandlerOptions configures a Handler. Zero values select defaults.
type HandlerOptions struct {
	Profiles    *ProfileSet
	Reprojector Reprojector
	Sink        LayerSink
	Logger      *slog.Logger
}

// Handler runs the description pipelines and accumulates their results in Tables.
// Every entry point reports success as a bool and logs the reason of a failure;
// no error or panic escapes. A Handler is not safe for concurrent use.
type Handler struct {
	Tables Tables

	profiles *ProfileSet
	crs      Reprojector
	sink     LayerSink
	log      *slog.Logger
}

// NewHandler creates a Handler with empty tables.
func NewHandler(opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	h := &Handler{
		profiles: opts.Profiles,
		crs:      opts.Reprojector,
		sink:     opts.Sink,
		log:      opts.Logger,
	}
	if h.profiles == nil {
		h.profiles = NewProfileSet()
	}
	if h.crs == nil {
		h.crs = NewRegistry()
	}
	if h.log == nil {
		h.log = slog.Default()
	}
	return h
}

// Clear empties all result tables.
func (h *Handler) Clear() {
	h.Tables.Reset()
}

// handled runs fn, converting an error or panic into false. Each outcome is logged
// under the operation tag.
func (h *Handler) handled(op string, fn func() error, attrs ...any) (ok bool) {
	log := h.log.With(append([]any{"op", op}, attrs...)...)
	defer func() {
		if r := recover(); r != nil {
			log.Error("operation failed", "err", fmt.Sprint(r))
			ok = false
		}
	}()

	if err := fn(); err != nil {
		log.Error("operation failed", "err", err)
		return false
	}
	log.Info("operation finished", "status", "success")
	return true
}

// Borders describes the boundary of req.Points. With parts, each part is built
// as its own closed ring and the result of the last part is returned; failures of
// earlier parts are only logged. Without parts all points form one ring.
func (h *Handler) Borders(req BordersRequest) bool {
	if len(req.Parts) == 0 {
		return h.handled(OpBorders, func() error {
			return h.borders(req, nil)
		})
	}

	var ok bool
	for _, part := range req.Parts {
		part := part
		ok = h.handled(OpBorders, func() error {
			return h.borders(req, &part)
		}, "part", part.String())
	}
	return ok
}

func (h *Handler) borders(req BordersRequest, part *Part) error {
	if req.Points.Len() == 0 {
		return fmt.Errorf("%w: points", ErrMissingInput)
	}
	if req.Points.OrderKey == "" {
		return ErrMissingOrder
	}

	points := req.Points.Geometries()
	run := Part{Start: 1, End: len(points)}
	if part != nil {
		run = *part
	}

	builder := &SegmentBuilder{Profile: h.profiles.Get(req.Language)}
	if len(req.Surfaces) > 0 {
		detector := &CrossingDetector{Reprojector: h.crs}
		ps, err := detector.Prepare(req.Surfaces, req.Points.CRS)
		if err != nil {
			return err
		}
		builder.Surfaces = ps
	}

	segs, err := builder.Build(nil, run, points)
	if err != nil {
		return err
	}
	// rows only land once the layer is accepted
	if err := h.addLayer(borderLayer(req.Points.CRS, segs)); err != nil {
		return err
	}
	h.Tables.Boundary.appendSegments(segs)
	return nil
}

// Coordinates lists req.Points in WGS84 degrees and in the display CRS.
func (h *Handler) Coordinates(req CoordinatesRequest) bool {
	return h.handled(OpCoordinates, func() error {
		if req.Points.Len() == 0 {
			return fmt.Errorf("%w: points", ErrMissingInput)
		}
		display := req.Display
		if display == "" {
			display = req.Points.CRS
		}
		names := req.Names
		if names == nil {
			names = req.Points.Names()
		}
		p := &CoordinateProjector{Reprojector: h.crs}
		_, err := p.Project(&h.Tables.Coordinates, req.Points, display, names)
		return err
	})
}

// Landmarks measures guides from the benchmark to every landmark.
func (h *Handler) Landmarks(req LandmarksRequest) bool {
	return h.handled(OpLandmarks, func() error {
		if req.Benchmark == nil {
			return fmt.Errorf("%w: benchmark", ErrMissingInput)
		}
		if req.Landmarks.Len() == 0 {
			return fmt.Errorf("%w: landmarks", ErrMissingInput)
		}
		names := req.Names
		if names == nil {
			names = req.Landmarks.Names()
		}
		k := &LandmarkLinker{Profile: h.profiles.Get(req.Language)}
		rows, layer, err := k.Link(nil, *req.Benchmark, req.Landmarks, names)
		if err != nil {
			return err
		}
		if err := h.addLayer(layer); err != nil {
			return err
		}
		h.Tables.Landmarks.appendRows(rows)
		return nil
	})
}

func (h *Handler) addLayer(l *Layer) error {
	if h.sink == nil {
		return nil
	}
	return h.sink.AddLayer(l)
}
