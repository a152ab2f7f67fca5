package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/ritzau/award-network/pkg/model"
	"github.com/spf13/pflag"
)

// DefaultFile is the optional config file read from the working directory
const DefaultFile = "network-analyzer.toml"

// EnvPrefix prefixes environment overrides (e.g. NETWORK_ANALYZER_PORT=9090)
const EnvPrefix = "NETWORK_ANALYZER_"

// StrengthConfig overrides the relationship strength constants
type StrengthConfig struct {
	ValueUnit   float64 `koanf:"valueunit"`
	ValueCap    float64 `koanf:"valuecap"`
	CountWeight float64 `koanf:"countweight"`
	CountCap    float64 `koanf:"countcap"`
	SizeUnit    float64 `koanf:"sizeunit"`
	SizeCap     float64 `koanf:"sizecap"`
	Max         float64 `koanf:"max"`
}

// Config holds all configuration for the application
type Config struct {
	Input       string         `koanf:"input"`       // events file (.json or .csv)
	Focal       string         `koanf:"focal"`       // focal entity UEI
	AsOf        string         `koanf:"asof"`        // evaluation date, empty = now
	WebMode     bool           `koanf:"web"`
	Port        int            `koanf:"port"`
	Watch       bool           `koanf:"watch"`
	OpenBrowser bool           `koanf:"open"`
	JSONLogs    bool           `koanf:"json"`
	Coordinates string         `koanf:"coordinates"` // optional TOML location table
	Verbosity   string         `koanf:"verbosity"`
	VerboseCnt  int            `koanf:"verbose"`
	CacheSize   int            `koanf:"cachesize"`
	Top         int            `koanf:"top"` // rows per section in the console report
	Strength    StrengthConfig `koanf:"strength"`
}

// Defaults returns the built-in configuration values
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"input":       "",
		"focal":       "",
		"asof":        "",
		"web":         false,
		"port":        8080,
		"watch":       false,
		"open":        false,
		"json":        false,
		"coordinates": "",
		"verbosity":   "",
		"verbose":     0,
		"cachesize":   256,
		"top":         10,
		"strength": map[string]interface{}{
			"valueunit":   1_000_000.0,
			"valuecap":    100.0,
			"countweight": 10.0,
			"countcap":    50.0,
			"sizeunit":    100_000.0,
			"sizecap":     25.0,
			"max":         100.0,
		},
	}
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	return LoadFile(f, DefaultFile)
}

// LoadFile is Load with an explicit config file path
func LoadFile(f *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file (optional, missing file is fine)
	if path != "" {
		_ = k.Load(file.Provider(path), toml.Parser())
	}

	// 3. Environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// RegisterFlags declares the command-line flags understood by Load
func RegisterFlags(f *pflag.FlagSet) {
	f.StringP("input", "i", "", "Path to the activity events file (.json or .csv)")
	f.StringP("focal", "f", "", "UEI of the focal contractor")
	f.String("asof", "", "Evaluate active awards as of this date (YYYY-MM-DD), default now")
	f.Bool("web", false, "Serve the graph over HTTP instead of printing a report")
	f.Int("port", 8080, "Port for the web server (only used with --web)")
	f.Bool("watch", false, "Rebuild the graph when input files change (only used with --web)")
	f.Bool("open", false, "Open a browser when the web server starts")
	f.Bool("json", false, "Log as JSON instead of compact console lines")
	f.String("coordinates", "", "Optional TOML table mapping states/cities to coordinates")
	f.String("verbosity", "", "Log level: trace, debug, info, warn, error")
	f.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	f.Int("top", 10, "Rows per section in the console report")
}

// Validate checks fields required to build a graph
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Input) == "" {
		errs = append(errs, errors.New("input file is required"))
	}
	if strings.TrimSpace(c.Focal) == "" {
		errs = append(errs, errors.New("focal entity is required"))
	}
	if _, err := c.AsOfTime(); err != nil {
		errs = append(errs, err)
	}
	if c.WebMode && (c.Port <= 0 || c.Port > 65535) {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}
	return errors.Join(errs...)
}

// AsOfTime parses AsOf; the zero time means "now"
func (c *Config) AsOfTime() (time.Time, error) {
	if strings.TrimSpace(c.AsOf) == "" {
		return time.Time{}, nil
	}
	t, err := model.ParseEventDate(c.AsOf)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid asof: %w", err)
	}
	return t, nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
