package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/thumbnailer/pkg/ports"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "thumbnailer.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Output != "thumbnail.jpg" {
		t.Errorf("expected default output thumbnail.jpg, got %s", cfg.Output)
	}
	if time.Duration(cfg.Seek) != 10*time.Second {
		t.Errorf("expected default seek 10s, got %s", time.Duration(cfg.Seek))
	}
	if cfg.Quality != 90 {
		t.Errorf("expected default quality 90, got %d", cfg.Quality)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
input: movie.mp4
output: out/poster.png
seek: 1m30s
seek_fallback: true
width: 320
quality: 75
ffmpeg_path: /opt/ffmpeg/bin/ffmpeg
log_level: debug
log_format: json
debug: true
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Input != "movie.mp4" || cfg.Output != "out/poster.png" {
		t.Errorf("unexpected paths: %s -> %s", cfg.Input, cfg.Output)
	}
	if time.Duration(cfg.Seek) != 90*time.Second {
		t.Errorf("expected seek 90s, got %s", time.Duration(cfg.Seek))
	}
	if !cfg.SeekFallback || cfg.Width != 320 || cfg.Height != 0 || cfg.Quality != 75 {
		t.Errorf("unexpected values: %+v", cfg)
	}
	if cfg.Level() != ports.LevelDebug {
		t.Errorf("expected debug level, got %s", cfg.Level())
	}
	// Unset keys keep their defaults
	if cfg.DebugDir != "./debug" {
		t.Errorf("expected default debug dir, got %s", cfg.DebugDir)
	}
}

func TestDuration_Seconds(t *testing.T) {
	var v struct {
		Seek Duration `yaml:"seek"`
	}
	if err := yaml.Unmarshal([]byte("seek: 2.5"), &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if time.Duration(v.Seek) != 2500*time.Millisecond {
		t.Errorf("expected 2.5s, got %s", time.Duration(v.Seek))
	}

	out, err := yaml.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(out), "2.5s") {
		t.Errorf("expected 2.5s in output, got %s", out)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	tests := map[string]string{
		"bad duration":     "seek: soon",
		"negative seek":    "seek: -1s",
		"quality too high": "quality: 101",
		"negative width":   "width: -5",
		"unknown format":   "log_format: xml",
		"duration as map":  "seek: {value: 1}",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFromFile(writeConfig(t, content)); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
