// Package config loads the server settings from defaults, an optional YAML
// file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iziplay/freebooks-api/pkg/catalog"
	"github.com/iziplay/freebooks-api/pkg/googlebooks"
	"github.com/iziplay/freebooks-api/pkg/gutenberg"
	"github.com/iziplay/freebooks-api/pkg/openlibrary"
	"gopkg.in/yaml.v3"
)

// FileEnv names the variable pointing at the YAML configuration file.
const FileEnv = "FREEBOOKS_CONFIG"

type OpenLibraryConfig struct {
	BaseURL   string `yaml:"base_url"`
	CoversURL string `yaml:"covers_url"`
}

type GutenbergConfig struct {
	BaseURL string `yaml:"base_url"`
}

type GoogleBooksConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Duration is a timeout written either as a Go duration ("45s") or as a
// plain number of seconds, in the YAML file as in the environment.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a duration", value.Line)
	}
	parsed, err := parseTimeout(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the root of the configuration tree
type Config struct {
	Addr     string `yaml:"addr"`
	Host     string `yaml:"host"`
	LogLevel string `yaml:"log_level"`
	Tracing  bool   `yaml:"tracing"`

	UpstreamTimeout Duration `yaml:"upstream_timeout"`

	OpenLibrary OpenLibraryConfig `yaml:"openlibrary"`
	Gutenberg   GutenbergConfig   `yaml:"gutenberg"`
	GoogleBooks GoogleBooksConfig `yaml:"googlebooks"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Addr:            ":80",
		LogLevel:        "info",
		Tracing:         true,
		UpstreamTimeout: Duration(catalog.DefaultTimeout),
		OpenLibrary: OpenLibraryConfig{
			BaseURL:   openlibrary.DefaultBaseURL,
			CoversURL: openlibrary.DefaultCoversURL,
		},
		Gutenberg:   GutenbergConfig{BaseURL: gutenberg.DefaultBaseURL},
		GoogleBooks: GoogleBooksConfig{BaseURL: googlebooks.DefaultBaseURL},
	}
}

// FromEnv is Load backed by the process environment.
func FromEnv() (*Config, error) {
	return Load(os.LookupEnv)
}

// Load builds the configuration, reading the file named by FREEBOOKS_CONFIG
// when set and then applying environment overrides through lookup.
func Load(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path, ok := lookup(FileEnv); ok && path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if cfg.Host == "" {
		cfg.Host = "http://localhost" + cfg.Addr
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	f, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(f, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if port, ok := lookup("API_PORT"); ok {
		c.Addr = ":" + port
	}
	if host, ok := lookup("API_HOST"); ok {
		c.Host = host
	}
	if level, ok := lookup("LOG_LEVEL"); ok {
		c.LogLevel = level
	}
	if key, ok := lookup("GOOGLE_BOOKS_API_KEY"); ok {
		c.GoogleBooks.APIKey = key
	}
	if raw, ok := lookup("UPSTREAM_TIMEOUT"); ok {
		d, err := parseTimeout(raw)
		if err != nil {
			return fmt.Errorf("UPSTREAM_TIMEOUT: %w", err)
		}
		c.UpstreamTimeout = Duration(d)
	}
	if raw, ok := lookup("TRACING_ENABLED"); ok {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("TRACING_ENABLED: %w", err)
		}
		c.Tracing = enabled
	}
	return nil
}

// parseTimeout accepts a Go duration ("45s") or a plain number of seconds.
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(raw)
}

func (c *Config) validate() error {
	if c.UpstreamTimeout <= 0 {
		return errors.New("upstream timeout must be positive")
	}
	if c.Addr == "" || c.Addr == ":" {
		return errors.New("listen address must not be empty")
	}
	return nil
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
