// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"image"

	"github.com/user/thumbnailer/pkg/ports"
)

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

// SaveStreamsJSON does nothing.
func (s *Sink) SaveStreamsJSON(data []byte) error {
	return nil
}

// SavePacketsJSON does nothing.
func (s *Sink) SavePacketsJSON(data []byte) error {
	return nil
}

// SaveNativeFrame does nothing.
func (s *Sink) SaveNativeFrame(img image.Image) error {
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
