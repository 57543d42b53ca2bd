// Package config loads service settings from config/dcf.yaml, a .env file
// and the environment, in that order of precedence (environment wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"dcf_valuation/pkg/core/llm"
	"dcf_valuation/pkg/core/valuation"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultPath is read when DCF_CONFIG is unset.
const DefaultPath = "config/dcf.yaml"

type Config struct {
	Env        string           `yaml:"env" json:"env"`
	Server     ServerConfig     `yaml:"server" json:"server"`
	Grid       GridConfig       `yaml:"grid" json:"grid"`
	Commentary CommentaryConfig `yaml:"commentary" json:"commentary"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// GridConfig limits and shapes sensitivity grids. Spans and steps are
// percentage points.
type GridConfig struct {
	MaxCells              int `yaml:"max_cells" json:"max_cells"`
	valuation.RangeConfig `yaml:",inline"`
}

type CommentaryConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Model   string `yaml:"model" json:"model"`
	APIKey  string `yaml:"-" json:"-"`
}

// Default is the configuration used when no file is present.
func Default() Config {
	return Config{
		Env:    "prod",
		Server: ServerConfig{Addr: ":8080"},
		Grid: GridConfig{
			MaxCells:    400,
			RangeConfig: valuation.DefaultRangeConfig(),
		},
		Commentary: CommentaryConfig{Model: llm.DefaultGeminiModel},
	}
}

// Load reads .env, then the YAML file at path (DCF_CONFIG or DefaultPath
// when empty), then environment overrides. Missing files are not errors.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("DCF_CONFIG")
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("DCF_ADDR"); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup("DCF_ENV"); ok && v != "" {
		c.Env = v
	}
	if v, ok := lookup("GEMINI_API_KEY"); ok && v != "" {
		c.Commentary.APIKey = v
	}
	if v, ok := lookup("DCF_GEMINI_MODEL"); ok && v != "" {
		c.Commentary.Model = v
	}
	if v, ok := lookup("DCF_MAX_GRID_CELLS"); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("DCF_MAX_GRID_CELLS must be an integer: %w", err)
		}
		c.Grid.MaxCells = n
	}
	return nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Grid.MaxCells <= 0 {
		return fmt.Errorf("grid.max_cells must be positive, got %d", c.Grid.MaxCells)
	}
	if c.Grid.WACCSpan < 0 || c.Grid.GrowthSpan < 0 {
		return fmt.Errorf("grid spans must not be negative")
	}
	return nil
}

// CommentaryAvailable reports whether commentary is enabled and has a key.
func (c Config) CommentaryAvailable() bool {
	return c.Commentary.Enabled && c.Commentary.APIKey != ""
}

// Provider returns the commentary backend, or nil when unavailable.
func (c Config) Provider() llm.Provider {
	if !c.CommentaryAvailable() {
		return nil
	}
	return &llm.GeminiProvider{APIKey: c.Commentary.APIKey, Model: c.Commentary.Model}
}
