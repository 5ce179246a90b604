// Package config loads postersort settings from defaults and an optional
// TOML file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/postersort/internal/colour"
	imgutil "github.com/jmylchreest/postersort/internal/image"
	"github.com/jmylchreest/postersort/internal/seed"
)

//go:embed sample_config.toml
var sampleConfig string

// Sampling controls the pixel sampler.
type Sampling struct {
	MaxWidth  int    `toml:"max_width"`
	MaxHeight int    `toml:"max_height"`
	Cap       int    `toml:"cap"`
	SeedMode  string `toml:"seed_mode"`
	Seed      *int64 `toml:"seed,omitempty"`
}

// Catalog controls where catalogs, covers and outputs live.
type Catalog struct {
	NameColumn   string `toml:"name_column"`
	CoversDir    string `toml:"covers_dir"`
	OutputDir    string `toml:"output_dir"`
	OutputPrefix string `toml:"output_prefix"`
	Workers      int    `toml:"workers"`
	CachePath    string `toml:"cache_path"`
	Bundle       string `toml:"bundle"`
}

// Config is the full postersort configuration. It is built once and then
// passed by value; nothing mutates it after Load.
type Config struct {
	Thresholds colour.Thresholds     `toml:"thresholds"`
	Sampling   Sampling              `toml:"sampling"`
	Strategies colour.StrategyConfig `toml:"strategies"`
	Catalog    Catalog               `toml:"catalog"`
}

// Default returns the built-in configuration.
func Default() Config {
	sampler := imgutil.DefaultSamplerConfig()
	return Config{
		Thresholds: colour.DefaultThresholds(),
		Sampling: Sampling{
			MaxWidth:  sampler.MaxWidth,
			MaxHeight: sampler.MaxHeight,
			Cap:       sampler.Cap,
			SeedMode:  string(seed.ModeRandom),
		},
		Strategies: colour.DefaultStrategyConfig(),
		Catalog: Catalog{
			NameColumn:   "Name",
			CoversDir:    "covers",
			OutputDir:    "sorted",
			OutputPrefix: "watched",
		},
	}
}

// SampleConfig returns an annotated example configuration file.
func SampleConfig() string {
	return sampleConfig
}

// DefaultConfigPath returns the per-user configuration file location.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine config directory: %w", err)
	}
	return filepath.Join(dir, "postersort", "config.toml"), nil
}

// Load returns the defaults overlaid with the TOML file at path. An empty
// path falls back to DefaultConfigPath, which may be absent. An explicit
// path must exist. The returned string is the file that was read, if any.
func Load(path string) (Config, string, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return cfg, "", cfg.Validate()
		}
		path = p
	}

	file, err := os.Open(path) // #nosec G304 - User-specified config path, intended to be read
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, "", cfg.Validate()
		}
		return Config{}, "", fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := Decode(file, &cfg); err != nil {
		return Config{}, "", err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, path, nil
}

// Decode overlays TOML from r onto cfg. Unknown keys are rejected.
func Decode(r io.Reader, cfg *Config) error {
	decoder := toml.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	if err := c.SamplerConfig().Validate(); err != nil {
		return fmt.Errorf("sampling: %w", err)
	}
	if _, err := c.SeedConfig(); err != nil {
		return fmt.Errorf("sampling: %w", err)
	}
	if err := c.Strategies.Validate(); err != nil {
		return fmt.Errorf("strategies: %w", err)
	}
	if strings.TrimSpace(c.Catalog.NameColumn) == "" {
		return fmt.Errorf("catalog: name_column cannot be empty")
	}
	if c.Catalog.Workers < 0 {
		return fmt.Errorf("catalog: workers cannot be negative, got %d", c.Catalog.Workers)
	}
	return nil
}

// SamplerConfig returns the pixel sampler limits.
func (c Config) SamplerConfig() imgutil.SamplerConfig {
	return imgutil.SamplerConfig{
		MaxWidth:  c.Sampling.MaxWidth,
		MaxHeight: c.Sampling.MaxHeight,
		Cap:       c.Sampling.Cap,
	}
}

// SeedConfig returns the sampler seed configuration.
func (c Config) SeedConfig() (seed.Config, error) {
	mode, err := seed.ParseMode(c.Sampling.SeedMode)
	if err != nil {
		return seed.Config{}, err
	}
	if mode == seed.ModeManual && c.Sampling.Seed == nil {
		return seed.Config{}, fmt.Errorf("seed is required when seed_mode is manual")
	}
	return seed.Config{Mode: mode, Value: c.Sampling.Seed}, nil
}

// Registry builds the strategy registry for this configuration.
func (c Config) Registry() *colour.Registry {
	return colour.NewRegistry(c.Strategies, c.SamplerConfig(), c.Thresholds)
}
