// Package config holds session configuration for ghostly test runs.
//
// Configuration is a plain YAML file loaded at startup:
//
//	browser: chromium
//	headless: true
//	base_url: http://localhost:8000
//	timeout: 10s
//	poll_interval: 100ms
//
// All fields have working defaults; an empty file is a valid configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the configuration for a ghostly browser session.
type Config struct {
	// Browser kind to launch: chromium, firefox or webkit
	Browser string `yaml:"browser"`

	// Headless controls whether the browser runs without a visible window
	Headless bool `yaml:"headless"`

	// BaseURL, when set, is prefixed to relative paths passed to Get
	BaseURL string `yaml:"base_url"`

	// Timeout is the default element-resolution timeout
	Timeout Duration `yaml:"timeout"`

	// PollInterval is the delay between resolver attempts
	PollInterval Duration `yaml:"poll_interval"`

	// Viewport sets the initial browser viewport
	Viewport ViewportConfig `yaml:"viewport"`
}

// ViewportConfig defines the initial viewport dimensions. Leaving either
// dimension at zero lets the driver pick its default size.
type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Defaults for new sessions.
const (
	DefaultBrowser        = "chromium"
	DefaultTimeout        = 10 * time.Second
	DefaultPollInterval   = 100 * time.Millisecond
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)

// DefaultConfig returns a configuration with all defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Browser:      DefaultBrowser,
		Headless:     true,
		Timeout:      Duration(DefaultTimeout),
		PollInterval: Duration(DefaultPollInterval),
		Viewport: ViewportConfig{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		},
	}
}

// LoadFile loads configuration from a YAML file, applying defaults for any
// field the file omits.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Browser == "" {
		return fmt.Errorf("browser kind is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", time.Duration(c.Timeout))
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", time.Duration(c.PollInterval))
	}
	if c.BaseURL != "" {
		if _, err := url.Parse(c.BaseURL); err != nil {
			return fmt.Errorf("invalid base_url: %w", err)
		}
	}
	if c.Viewport.Width < 0 || c.Viewport.Height < 0 {
		return fmt.Errorf("viewport dimensions must be non-negative")
	}
	return nil
}

// Duration is a time.Duration that unmarshals from YAML as either a Go
// duration string ("10s", "250ms") or a bare number of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case float64:
		*d = Duration(time.Duration(v * float64(time.Second)))
	default:
		return fmt.Errorf("invalid duration value %v (%T)", raw, raw)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}
