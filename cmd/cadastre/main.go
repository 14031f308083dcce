package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	cadastre "github.com/tingold/orb-cadastre"
	"github.com/tingold/orb-cadastre/internal/config"
)

const usage = `Usage: cadastre [flags] borders|coords|landmarks|all

Describes a surveyed boundary, lists its coordinates and links landmarks to a
benchmark. Inputs are GeoJSON (.geojson, .json) or FlatGeobuf (.fgb) files.

Flags:
`

type options struct {
	configPath string
	points     string
	orderField string
	nameField  string
	parts      string
	surfaces   string
	lang       string
	crs        string
	display    string
	benchmark  string
	landmarks  string
	out        string
	quiet      bool
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.configPath, "config", "cadastre.yaml", "Path to YAML config file (defaults apply if missing)")
	flag.StringVar(&opts.points, "points", "", "Boundary points file")
	flag.StringVar(&opts.orderField, "order-field", "order", "Attribute holding the point order")
	flag.StringVar(&opts.nameField, "name-field", "", "Attribute holding point names (optional)")
	flag.StringVar(&opts.parts, "parts", "", "Boundary parts as 1-based ranges, e.g. 1-4,5-8")
	flag.StringVar(&opts.surfaces, "surface", "", "Comma separated surface files to detect crossings with")
	flag.StringVar(&opts.lang, "lang", "", "Description language: English, Deutsch or Russian")
	flag.StringVar(&opts.crs, "crs", "", "CRS of inputs without one, e.g. EPSG:32637")
	flag.StringVar(&opts.display, "display", "", "Display CRS of the coordinates table")
	flag.StringVar(&opts.benchmark, "benchmark", "", "Benchmark point as x,y")
	flag.StringVar(&opts.landmarks, "landmarks", "", "Landmark points file")
	flag.StringVar(&opts.out, "out", "", "Output directory")
	flag.BoolVar(&opts.quiet, "q", false, "Do not print tables")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	opts.apply(cfg)

	log := cfg.NewLogger(os.Stderr)
	if err := run(flag.Arg(0), cfg, &opts, log); err != nil {
		log.Error("cadastre failed", "err", err)
		os.Exit(1)
	}
}

// apply lets flags override the config file.
func (o *options) apply(cfg *config.Config) {
	if o.lang != "" {
		cfg.Language = o.lang
	}
	if o.crs != "" {
		cfg.CRS.Working = o.crs
	}
	if o.display != "" {
		cfg.CRS.Display = o.display
	}
	if o.out != "" {
		cfg.Output.Dir = o.out
	}
}

var errFailed = errors.New("one or more operations failed")

func run(cmd string, cfg *config.Config, opts *options, log *slog.Logger) error {
	profiles, err := cfg.ProfileSet()
	if err != nil {
		return err
	}
	registry, err := cfg.Registry()
	if err != nil {
		return err
	}

	hopts := &cadastre.HandlerOptions{Profiles: profiles, Reprojector: registry, Logger: log}
	if cfg.Output.Layers == "fgb" {
		hopts.Sink = &cadastre.DirSink{Dir: cfg.Output.Dir}
	}
	h := cadastre.NewHandler(hopts)

	working := cadastre.CRS(cfg.CRS.Working)
	r := &runner{h: h, log: log, opts: opts, lang: cfg.DefaultLanguage(), working: working}

	ok := true
	switch cmd {
	case "borders", "coords", "all":
		points, err := loadPoints(opts.points, working, opts.orderField, opts.nameField)
		if err != nil {
			return err
		}
		if cmd != "coords" {
			ok = r.borders(points) && ok
		}
		if cmd != "borders" {
			ok = h.Coordinates(cadastre.CoordinatesRequest{
				Points:  points,
				Display: cadastre.CRS(cfg.CRS.Display),
			}) && ok
		}
		if cmd == "all" && opts.landmarks != "" {
			ok = r.landmarks() && ok
		}
	case "landmarks":
		ok = r.landmarks()
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	if cfg.Output.Tables == "arrow" {
		paths, err := cadastre.WriteArrowDir(cfg.Output.Dir, h.Tables.All()...)
		if err != nil {
			return err
		}
		log.Info("tables written", "files", paths)
	}
	if !opts.quiet {
		printTables(os.Stdout, h.Tables.All()...)
	}

	if !ok {
		return errFailed
	}
	return nil
}

// runner feeds loaded inputs to the handler. Input errors are logged like handler
// failures so every command still writes and prints what it has.
type runner struct {
	h       *cadastre.Handler
	log     *slog.Logger
	opts    *options
	lang    cadastre.Language
	working cadastre.CRS
}

func (r *runner) borders(points *cadastre.PointSet) bool {
	parts, err := cadastre.ParseParts(r.opts.parts)
	if err != nil {
		r.log.Error("invalid parts", "err", err)
		return false
	}
	surfaces, err := loadSurfaces(splitList(r.opts.surfaces), points.CRS)
	if err != nil {
		r.log.Error("invalid surfaces", "err", err)
		return false
	}
	return r.h.Borders(cadastre.BordersRequest{
		Points:   points,
		Language: r.lang,
		Parts:    parts,
		Surfaces: surfaces,
	})
}

func (r *runner) landmarks() bool {
	req := cadastre.LandmarksRequest{Language: r.lang}

	if r.opts.benchmark != "" {
		bm, err := parsePoint(r.opts.benchmark)
		if err != nil {
			r.log.Error("invalid benchmark", "err", err)
			return false
		}
		req.Benchmark = &bm
	}
	if r.opts.landmarks != "" {
		set, err := loadPoints(r.opts.landmarks, r.working, "", r.opts.nameField)
		if err != nil {
			r.log.Error("invalid landmarks", "err", err)
			return false
		}
		req.Landmarks = set
	}
	return r.h.Landmarks(req)
}
