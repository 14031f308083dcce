package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/time/rate"

	cadastre "github.com/tingold/orb-cadastre"
)

// pointsInput is a point layer posted as GeoJSON.
type pointsInput struct {
	Features   *geojson.FeatureCollection `json:"features"`
	CRS        string                     `json:"crs"`
	OrderField string                     `json:"order_field"`
	NameField  string                     `json:"name_field"`
}

type surfaceInput struct {
	Name     string                     `json:"name"`
	CRS      string                     `json:"crs"`
	Features *geojson.FeatureCollection `json:"features"`
}

type bordersBody struct {
	Points   pointsInput    `json:"points"`
	Language string         `json:"language"`
	Parts    string         `json:"parts"`
	Surfaces []surfaceInput `json:"surfaces"`
}

type coordinatesBody struct {
	Points  pointsInput `json:"points"`
	Display string      `json:"display"`
}

type landmarksBody struct {
	Benchmark *[2]float64 `json:"benchmark"`
	Landmarks pointsInput `json:"landmarks"`
	Language  string      `json:"language"`
}

type result struct {
	OK   bool `json:"ok"`
	Rows int  `json:"rows"`
}

type tableJSON struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// server exposes one shared Handler. The Handler is not safe for concurrent use,
// so every request holds mu while it runs.
type server struct {
	mu      sync.Mutex
	h       *cadastre.Handler
	sink    *cadastre.MemorySink
	working cadastre.CRS
	lang    cadastre.Language
	log     *slog.Logger
}

func newServer(opts *cadastre.HandlerOptions, working cadastre.CRS, lang cadastre.Language) *server {
	sink := &cadastre.MemorySink{}
	o := *opts
	o.Sink = sink
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return &server{
		h:       cadastre.NewHandler(&o),
		sink:    sink,
		working: working,
		lang:    lang,
		log:     o.Logger,
	}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /borders", s.handleBorders)
	mux.HandleFunc("POST /coordinates", s.handleCoordinates)
	mux.HandleFunc("POST /landmarks", s.handleLandmarks)
	mux.HandleFunc("POST /clear", s.handleClear)
	mux.HandleFunc("GET /tables", s.handleTables)
	mux.HandleFunc("GET /border.fgb", s.handleBorderFGB)
	return mux
}

func (s *server) pointSet(in pointsInput) (*cadastre.PointSet, error) {
	crs := cadastre.CRS(in.CRS)
	if crs == "" {
		crs = s.working
	}
	return cadastre.PointSetFromFeatures(in.Features, crs, in.OrderField, in.NameField)
}

func (s *server) language(name string) cadastre.Language {
	if name == "" {
		return s.lang
	}
	return cadastre.ParseLanguage(name)
}

func (s *server) handleBorders(w http.ResponseWriter, r *http.Request) {
	var body bordersBody
	if !decode(w, r, &body) {
		return
	}
	points, err := s.pointSet(body.Points)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	parts, err := cadastre.ParseParts(body.Parts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req := cadastre.BordersRequest{Points: points, Language: s.language(body.Language), Parts: parts}
	for _, in := range body.Surfaces {
		crs := cadastre.CRS(in.CRS)
		if crs == "" {
			crs = points.CRS
		}
		req.Surfaces = append(req.Surfaces, cadastre.SurfaceFromFeatures(in.Name, crs, in.Features))
	}

	s.mu.Lock()
	ok := s.h.Borders(req)
	rows := s.h.Tables.Boundary.Len()
	s.mu.Unlock()

	respond(w, result{OK: ok, Rows: rows})
}

func (s *server) handleCoordinates(w http.ResponseWriter, r *http.Request) {
	var body coordinatesBody
	if !decode(w, r, &body) {
		return
	}
	points, err := s.pointSet(body.Points)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	ok := s.h.Coordinates(cadastre.CoordinatesRequest{Points: points, Display: cadastre.CRS(body.Display)})
	rows := s.h.Tables.Coordinates.Len()
	s.mu.Unlock()

	respond(w, result{OK: ok, Rows: rows})
}

func (s *server) handleLandmarks(w http.ResponseWriter, r *http.Request) {
	var body landmarksBody
	if !decode(w, r, &body) {
		return
	}
	req := cadastre.LandmarksRequest{Language: s.language(body.Language)}
	if body.Benchmark != nil {
		bm := orb.Point(*body.Benchmark)
		req.Benchmark = &bm
	}
	if body.Landmarks.Features != nil {
		set, err := s.pointSet(body.Landmarks)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Landmarks = set
	}

	s.mu.Lock()
	ok := s.h.Landmarks(req)
	rows := s.h.Tables.Landmarks.Len()
	s.mu.Unlock()

	respond(w, result{OK: ok, Rows: rows})
}

func (s *server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.h.Clear()
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleTables(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]tableJSON)

	s.mu.Lock()
	for _, t := range s.h.Tables.All() {
		tj := tableJSON{Header: t.Header(), Rows: make([][]string, 0, t.Len())}
		for i := 0; i < t.Len(); i++ {
			tj.Rows = append(tj.Rows, t.Row(i))
		}
		out[t.Name()] = tj
	}
	s.mu.Unlock()

	respond(w, out)
}

// handleBorderFGB serves the most recent border layer as FlatGeobuf.
func (s *server) handleBorderFGB(w http.ResponseWriter, r *http.Request) {
	layer := s.sink.Last("border")
	if layer == nil {
		http.Error(w, "no border computed yet", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := cadastre.WriteLayer(&buf, layer, nil); err != nil {
		s.log.Error("encode border", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(buf.Bytes())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func respond(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// withMiddleware rejects requests over the rate limit and logs every request
// under a fresh request id.
func withMiddleware(next http.Handler, limiter *rate.Limiter, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		reqLog := log.With("request_id", id, "method", r.Method, "path", r.URL.Path)

		if !limiter.Allow() {
			reqLog.Warn("rate limited")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}

		start := time.Now()
		next.ServeHTTP(w, r)
		reqLog.Info("request handled", "duration", time.Since(start))
	})
}
