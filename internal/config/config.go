// Package config loads planforge configuration from YAML with sane defaults.
// The core packages receive plain parameters; only this layer and the CLI
// touch files and the environment.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/planforge/internal/errors"
)

// Duration parses YAML duration strings ("30m", "24h") into time.Duration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return err
	}
	*d = Duration(time.Duration(n) * time.Second)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full planforge configuration.
type Config struct {
	// Provider selects the model backend: "auto", "anthropic", or "openai".
	Provider string `yaml:"provider"`
	// Model overrides the provider's default model name.
	Model string `yaml:"model"`
	// BaseURL overrides the provider endpoint (e.g. a compatible proxy).
	BaseURL string `yaml:"base_url"`

	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`

	// MaxConcurrency caps simultaneous in-flight model calls.
	MaxConcurrency int `yaml:"max_concurrency"`

	CacheTTL    Duration `yaml:"cache_ttl"`
	StateMaxAge Duration `yaml:"state_max_age"`

	// Listen is the serve-mode address.
	Listen string `yaml:"listen"`

	Log LogConfig `yaml:"log"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider:       "auto",
		MaxTokens:      4096,
		Temperature:    0.7,
		MaxConcurrency: 3,
		CacheTTL:       Duration(24 * time.Hour),
		StateMaxAge:    Duration(time.Hour),
		Listen:         ":8080",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults; a missing or malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.NewFileNotFoundError(path)
		}
		return cfg, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.NewFileUnmarshalError(path, "YAML", err)
	}

	cfg.normalize()
	return cfg, nil
}

// normalize clamps nonsense values back to defaults.
func (c *Config) normalize() {
	def := Default()
	if c.MaxTokens <= 0 {
		c.MaxTokens = def.MaxTokens
	}
	if c.Temperature < 0 {
		c.Temperature = def.Temperature
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = def.MaxConcurrency
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = def.CacheTTL
	}
	if c.StateMaxAge <= 0 {
		c.StateMaxAge = def.StateMaxAge
	}
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Provider == "" {
		c.Provider = def.Provider
	}
}
