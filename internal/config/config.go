package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	cadastre "github.com/tingold/orb-cadastre"
)

// CRSConfig selects reference systems and adds proj4 definitions to the registry.
type CRSConfig struct {
	// Working is the CRS of point and surface inputs that do not carry one.
	Working string `yaml:"working"`
	// Display is the second CRS of the coordinates table. Empty means the points' CRS.
	Display     string            `yaml:"display"`
	Definitions map[string]string `yaml:"definitions,omitempty"`
}

// ProfileConfig overrides parts of a built-in language profile. Empty fields keep
// the built-in value.
type ProfileConfig struct {
	UnitLabel        string   `yaml:"unit_label,omitempty"`
	AzimuthLabel     string   `yaml:"azimuth_label,omitempty"`
	SentenceTemplate string   `yaml:"sentence_template,omitempty"`
	CompassLabels    []string `yaml:"compass_labels,omitempty"`
}

// OutputConfig controls where and how results are written.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Layers string `yaml:"layers"` // "fgb" or "none"
	Tables string `yaml:"tables"` // "arrow" or "none"
}

// ServerConfig configures the demo HTTP server.
type ServerConfig struct {
	Addr           string  `yaml:"addr"`
	RequestsPerSec float64 `yaml:"requests_per_sec"`
	Burst          int     `yaml:"burst"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Config is the root configuration.
type Config struct {
	Language string                   `yaml:"language"`
	CRS      CRSConfig                `yaml:"crs"`
	Profiles map[string]ProfileConfig `yaml:"profiles,omitempty"`
	Output   OutputConfig             `yaml:"output"`
	Server   ServerConfig             `yaml:"server"`
	Log      LogConfig                `yaml:"log"`
}

// Environment variables that override the file.
const (
	EnvLanguage  = "CADASTRE_LANG"
	EnvCRS       = "CADASTRE_CRS"
	EnvAddr      = "CADASTRE_ADDR"
	EnvLogLevel  = "CADASTRE_LOG_LEVEL"
	EnvOutputDir = "CADASTRE_OUTPUT_DIR"
)

// Load reads a config from path. If the file does not exist, defaults are used.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			cfg = &Config{}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
			applyDefaults(cfg)
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Language == "" {
		cfg.Language = cadastre.English.String()
	}
	if cfg.CRS.Working == "" {
		cfg.CRS.Working = string(cadastre.WGS84)
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "out"
	}
	if cfg.Output.Layers == "" {
		cfg.Output.Layers = "fgb"
	}
	if cfg.Output.Tables == "" {
		cfg.Output.Tables = "arrow"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.RequestsPerSec == 0 {
		cfg.Server.RequestsPerSec = 10
	}
	if cfg.Server.Burst == 0 {
		cfg.Server.Burst = 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvLanguage); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv(EnvCRS); v != "" {
		cfg.CRS.Working = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.Output.Dir = v
	}
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Output.Layers {
	case "fgb", "none":
	default:
		return fmt.Errorf("output.layers: unknown value %q", c.Output.Layers)
	}
	switch c.Output.Tables {
	case "arrow", "none":
	default:
		return fmt.Errorf("output.tables: unknown value %q", c.Output.Tables)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown value %q", c.Log.Format)
	}
	if c.Server.RequestsPerSec < 0 || c.Server.Burst < 0 {
		return errors.New("server: rate limits must not be negative")
	}
	for name := range c.Profiles {
		if _, err := profileLanguage(name); err != nil {
			return err
		}
	}
	return nil
}

// DefaultLanguage returns the configured language.
func (c *Config) DefaultLanguage() cadastre.Language {
	return cadastre.ParseLanguage(c.Language)
}

// profileLanguage resolves a profile key strictly: unknown names are an error
// rather than the Russian fallback, so a typo cannot replace the Russian profile.
func profileLanguage(name string) (cadastre.Language, error) {
	l := cadastre.ParseLanguage(name)
	if !strings.EqualFold(strings.TrimSpace(name), l.String()) {
		return 0, fmt.Errorf("profiles: unknown language %q", name)
	}
	return l, nil
}

// ProfileSet returns the built-in profiles with the configured overrides applied.
func (c *Config) ProfileSet() (*cadastre.ProfileSet, error) {
	set := cadastre.NewProfileSet()
	for name, pc := range c.Profiles {
		l, err := profileLanguage(name)
		if err != nil {
			return nil, err
		}

		p := *set.Get(l)
		if pc.UnitLabel != "" {
			p.UnitLabel = pc.UnitLabel
		}
		if pc.AzimuthLabel != "" {
			p.AzimuthLabel = pc.AzimuthLabel
		}
		if pc.SentenceTemplate != "" {
			p.SentenceTemplate = pc.SentenceTemplate
		}
		if len(pc.CompassLabels) > 0 {
			if len(pc.CompassLabels) != len(p.CompassLabels) {
				return nil, fmt.Errorf("profile %s: %w: %d compass labels, want %d",
					l, cadastre.ErrInvalidProfile, len(pc.CompassLabels), len(p.CompassLabels))
			}
			copy(p.CompassLabels[:], pc.CompassLabels)
		}

		if err := set.Override(l, p); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// Registry returns a CRS registry holding the configured definitions.
func (c *Config) Registry() (*cadastre.Registry, error) {
	r := cadastre.NewRegistry()
	for name, def := range c.CRS.Definitions {
		if err := r.Define(cadastre.CRS(name), def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewLogger builds the logger described by the log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// String describes the listener and its limits for log output.
func (s ServerConfig) String() string {
	return s.Addr + " @ " + strconv.FormatFloat(s.RequestsPerSec, 'f', -1, 64) + "/s burst " + strconv.Itoa(s.Burst)
}
