// Package thumbnailer provides a high-level API for extracting video
// thumbnails.
package thumbnailer

import (
	"time"

	"github.com/user/thumbnailer/pkg/orchestrator"
)

// QualityPreset represents an output quality preset name.
type QualityPreset string

const (
	QualityLow    QualityPreset = "low"
	QualityMedium QualityPreset = "medium"
	QualityHigh   QualityPreset = "high"
)

// GetQuality returns the JPEG quality for the given preset.
func GetQuality(preset QualityPreset) int {
	switch preset {
	case QualityLow:
		return 60
	case QualityHigh:
		return 95
	default: // medium
		return 90
	}
}

// Config represents the configuration for thumbnail extraction.
type Config struct {
	// Seek
	Seek         time.Duration // Offset from the start of the timeline (default: 10s)
	SeekFallback bool          // Retry at the start when Seek is unreachable

	// Output size (0 keeps the source size, one side 0 keeps aspect ratio)
	Width  int
	Height int

	// Encoding
	Quality int // JPEG quality (1-100)

	// Decoding
	FFmpegPath string // Custom ffmpeg binary ("" = auto-detect)

	// Debug
	DebugDir string // Per-run debug output root ("" = disabled)
}

// ConfigBuilder provides a fluent interface for building Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a new ConfigBuilder with default values.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: defaults(),
	}
}

func defaults() Config {
	return Config{
		Seek:    10 * time.Second,
		Quality: GetQuality(QualityMedium),
	}
}

// Build returns the final Config, applying validation and constraints.
func (b *ConfigBuilder) Build() Config {
	cfg := b.config

	if cfg.Seek < 0 {
		cfg.Seek = 0
	}
	cfg.Width = max(cfg.Width, 0)
	cfg.Height = max(cfg.Height, 0)
	if cfg.Quality < 1 || cfg.Quality > 100 {
		cfg.Quality = GetQuality(QualityMedium)
	}

	return cfg
}

// WithSeek sets the seek offset.
// Negative values will be forced to 0.
func (b *ConfigBuilder) WithSeek(d time.Duration) *ConfigBuilder {
	b.config.Seek = d
	return b
}

// WithSeekFallback enables retrying from the start when the seek fails.
func (b *ConfigBuilder) WithSeekFallback(enabled bool) *ConfigBuilder {
	b.config.SeekFallback = enabled
	return b
}

// WithWidth sets the output width.
func (b *ConfigBuilder) WithWidth(width int) *ConfigBuilder {
	b.config.Width = width
	return b
}

// WithHeight sets the output height.
func (b *ConfigBuilder) WithHeight(height int) *ConfigBuilder {
	b.config.Height = height
	return b
}

// WithQuality sets the JPEG quality (1-100).
// Out-of-range values fall back to the medium preset.
func (b *ConfigBuilder) WithQuality(quality int) *ConfigBuilder {
	b.config.Quality = quality
	return b
}

// WithQualityPreset applies a quality preset (low, medium, high).
func (b *ConfigBuilder) WithQualityPreset(preset QualityPreset) *ConfigBuilder {
	b.config.Quality = GetQuality(preset)
	return b
}

// WithFFmpegPath sets a custom ffmpeg binary.
func (b *ConfigBuilder) WithFFmpegPath(path string) *ConfigBuilder {
	b.config.FFmpegPath = path
	return b
}

// WithDebugDir enables debug output under dir.
func (b *ConfigBuilder) WithDebugDir(dir string) *ConfigBuilder {
	b.config.DebugDir = dir
	return b
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig(inputPath, outputPath string) orchestrator.Config {
	return orchestrator.Config{
		InputPath:    inputPath,
		OutputPath:   outputPath,
		SeekTarget:   c.Seek.Microseconds(),
		SeekFallback: c.SeekFallback,
		Width:        c.Width,
		Height:       c.Height,
		Quality:      c.Quality,
	}
}
