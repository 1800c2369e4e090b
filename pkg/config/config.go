// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/thumbnailer/pkg/ports"
)

// Config represents the full configuration file for thumbnailer.
type Config struct {
	// Input/Output
	Input  string `yaml:"input"`
	Output string `yaml:"output"`

	// Seek
	Seek         Duration `yaml:"seek"`
	SeekFallback bool     `yaml:"seek_fallback"`

	// Output image
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	Quality int `yaml:"quality"`

	// Decoding
	FFmpegPath string `yaml:"ffmpeg_path"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// Duration is a time.Duration that reads "10s"-style strings or plain
// numbers of seconds from YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", node.Line)
	}
	if secs, err := strconv.ParseFloat(node.Value, 64); err == nil {
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Output:    "thumbnail.jpg",
		Seek:      Duration(10 * time.Second),
		Quality:   90,
		LogLevel:  "info",
		LogFormat: "console",
		DebugDir:  "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file over the defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Validate reports values no extraction can use.
func (c Config) Validate() error {
	switch {
	case c.Seek < 0:
		return fmt.Errorf("seek must not be negative, got %s", time.Duration(c.Seek))
	case c.Width < 0 || c.Height < 0:
		return fmt.Errorf("width and height must not be negative, got %dx%d", c.Width, c.Height)
	case c.Quality < 0 || c.Quality > 100:
		return fmt.Errorf("quality must be between 1 and 100, got %d", c.Quality)
	case c.LogFormat != "" && c.LogFormat != "console" && c.LogFormat != "json":
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// Level returns the parsed log level.
func (c Config) Level() ports.LogLevel {
	return ports.ParseLogLevel(c.LogLevel)
}
