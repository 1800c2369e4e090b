// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/thumbnailer/pkg/ports"
)

// Sink saves debug output to files under one directory per run.
type Sink struct {
	baseDir string
	fs      ports.FileSystem
	codec   ports.ImageCodec
}

// New creates a new FileSink writing to baseDir.
func New(baseDir string, fs ports.FileSystem, codec ports.ImageCodec) *Sink {
	return &Sink{
		baseDir: baseDir,
		fs:      fs,
		codec:   codec,
	}
}

// ForRun returns a sink writing into baseDir/runID.
func ForRun(baseDir, runID string, fs ports.FileSystem, codec ports.ImageCodec) *Sink {
	return New(filepath.Join(baseDir, runID), fs, codec)
}

// Dir returns the directory files are written to.
func (s *Sink) Dir() string {
	return s.baseDir
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveStreamsJSON saves the container stream listing as streams.json.
func (s *Sink) SaveStreamsJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "streams.json"), data)
}

// SavePacketsJSON saves the packet trace as packets.json.
func (s *Sink) SavePacketsJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "packets.json"), data)
}

// SaveNativeFrame saves the decoded frame as frame-native.png.
func (s *Sink) SaveNativeFrame(img image.Image) error {
	data, err := s.codec.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode native frame: %w", err)
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, "frame-native.png"), data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
