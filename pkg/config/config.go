// Package config loads pixedit settings from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Fepozopo/pixedit/pkg/logging"
	"github.com/Fepozopo/pixedit/pkg/mask"
	"github.com/Fepozopo/pixedit/pkg/stdimg"
)

// Config is the full application configuration.
type Config struct {
	Log struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
		File  string `yaml:"file"`
	} `yaml:"log"`

	Server struct {
		Addr string `yaml:"addr"`
		Auth struct {
			Enabled bool   `yaml:"enabled"`
			Secret  string `yaml:"secret"`
		} `yaml:"auth"`
	} `yaml:"server"`

	Advisor struct {
		Model     string        `yaml:"model"`
		BaseURL   string        `yaml:"base_url"`
		APIKey    string        `yaml:"api_key"`
		MaxTokens int           `yaml:"max_tokens"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"advisor"`

	Limits struct {
		MaxFileSize    int64    `yaml:"max_file_size"`
		MaxWidth       int      `yaml:"max_width"`
		MaxHeight      int      `yaml:"max_height"`
		MaxPixels      int64    `yaml:"max_pixels"`
		AllowedFormats []string `yaml:"allowed_formats"`
	} `yaml:"limits"`

	Engine struct {
		Brightness string `yaml:"brightness"`
		Workers    int    `yaml:"workers"`
	} `yaml:"engine"`

	Mask struct {
		BrushSize float64 `yaml:"brush_size"`
	} `yaml:"mask"`
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{}
	c.Log.Level = string(logging.InfoLevel)
	c.Server.Addr = ":8080"
	c.Advisor.Model = "gpt-4o"
	c.Advisor.MaxTokens = 500
	c.Advisor.Timeout = 30 * time.Second
	c.Limits.MaxFileSize = 5 << 20
	c.Limits.MaxWidth = 8192
	c.Limits.MaxHeight = 8192
	c.Limits.MaxPixels = 40_000_000
	c.Limits.AllowedFormats = []string{"jpeg", "png", "gif", "webp"}
	c.Engine.Brightness = stdimg.PercentBrightness.String()
	c.Mask.BrushSize = mask.DefaultBrushSize
	return c
}

// Load reads .config.yaml, falling back to config.yaml, over Default. A
// missing file is not an error. .env is then loaded (without overriding the
// real environment) and PIXEDIT_* variables applied. The returned path is
// the YAML file used, or "" when none was found.
func Load() (*Config, string, error) {
	path := ".config.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = "config.yaml"
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg, path, err = Default(), "", nil
	}
	if err != nil {
		return nil, path, err
	}
	return cfg, path, cfg.finish()
}

// LoadPath is Load for an explicit file, which must exist.
func LoadPath(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.finish()
}

func (c *Config) finish() error {
	_ = godotenv.Load()
	if err := c.ApplyEnv(); err != nil {
		return err
	}
	return c.Validate()
}

// LoadFile reads one YAML file over Default.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from PIXEDIT_* environment variables.
func (c *Config) ApplyEnv() error {
	str := map[string]*string{
		"PIXEDIT_OPENAI_API_KEY":  &c.Advisor.APIKey,
		"PIXEDIT_OPENAI_BASE_URL": &c.Advisor.BaseURL,
		"PIXEDIT_MODEL":           &c.Advisor.Model,
		"PIXEDIT_LOG_LEVEL":       &c.Log.Level,
		"PIXEDIT_ADDR":            &c.Server.Addr,
		"PIXEDIT_AUTH_SECRET":     &c.Server.Auth.Secret,
		"PIXEDIT_BRIGHTNESS":      &c.Engine.Brightness,
	}
	for k, dst := range str {
		if v, ok := os.LookupEnv(k); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("PIXEDIT_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PIXEDIT_WORKERS: %w", err)
		}
		c.Engine.Workers = n
	}
	if c.Server.Auth.Secret != "" {
		c.Server.Auth.Enabled = true
	}
	return nil
}

// Validate checks enumerations and limits.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := stdimg.ParseBrightnessStrategy(c.Engine.Brightness); err != nil {
		return fmt.Errorf("engine.brightness: %w", err)
	}
	if c.Server.Auth.Enabled && c.Server.Auth.Secret == "" {
		return errors.New("server.auth.enabled requires server.auth.secret")
	}
	if c.Limits.MaxFileSize <= 0 || c.Limits.MaxWidth <= 0 || c.Limits.MaxHeight <= 0 || c.Limits.MaxPixels <= 0 {
		return errors.New("limits must be positive")
	}
	for _, f := range c.Limits.AllowedFormats {
		switch f {
		case "jpeg", "png", "gif", "webp", "bmp":
		default:
			return fmt.Errorf("limits.allowed_formats: unsupported %q", f)
		}
	}
	if c.Mask.BrushSize < mask.MinBrushSize || c.Mask.BrushSize > mask.MaxBrushSize {
		return fmt.Errorf("mask.brush_size must be within %d..%d", mask.MinBrushSize, mask.MaxBrushSize)
	}
	return nil
}

// Pipeline builds the filter pipeline described by the engine section.
func (c *Config) Pipeline() stdimg.Pipeline {
	s, _ := stdimg.ParseBrightnessStrategy(c.Engine.Brightness)
	return stdimg.Pipeline{Brightness: s, Workers: c.Engine.Workers}
}

// Logger builds the logger described by the log section.
func (c *Config) Logger() (*logging.Logger, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{Level: level, Dir: c.Log.Dir, File: c.Log.File})
}
