package mocks

import (
	"image"
	"sync"

	"github.com/user/thumbnailer/pkg/ports"
)

// DebugSink records everything saved to it.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	StreamsJSON []byte
	PacketsJSON []byte
	NativeFrame image.Image

	SaveErr error
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{enabled: enabled}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveStreamsJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StreamsJSON = data
	return m.SaveErr
}

func (m *DebugSink) SavePacketsJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PacketsJSON = data
	return m.SaveErr
}

func (m *DebugSink) SaveNativeFrame(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NativeFrame = img
	return m.SaveErr
}

var _ ports.DebugSink = (*DebugSink)(nil)
