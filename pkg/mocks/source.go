package mocks

import (
	"io"

	"github.com/user/thumbnailer/pkg/ports"
)

// MediaSource replays a fixed packet list.
//
// The default Seek positions on the last keyframe of the stream whose
// PTS is at or before the target, falling back to its first keyframe.
type MediaSource struct {
	FormatName     string
	StreamList     []ports.StreamDescriptor
	DurationMicros int64
	Packets        []ports.Packet

	SeekFunc func(streamIndex int, target int64) error
	// ReadErrAt makes ReadPacket fail when the cursor reaches the index.
	ReadErrAt map[int]error

	// Recorded calls for verification
	SeekCalls []SeekCall
	Reads     int
	Closed    int

	cursor int
}

// SeekCall records a call to Seek.
type SeekCall struct {
	StreamIndex int
	Target      int64
}

func (m *MediaSource) Format() string {
	if m.FormatName == "" {
		return "mock"
	}
	return m.FormatName
}

func (m *MediaSource) Streams() []ports.StreamDescriptor {
	return append([]ports.StreamDescriptor(nil), m.StreamList...)
}

func (m *MediaSource) Duration() int64 {
	return m.DurationMicros
}

func (m *MediaSource) Seek(streamIndex int, target int64) error {
	m.SeekCalls = append(m.SeekCalls, SeekCall{StreamIndex: streamIndex, Target: target})
	if m.SeekFunc != nil {
		return m.SeekFunc(streamIndex, target)
	}
	if streamIndex < 0 || streamIndex >= len(m.StreamList) {
		return ports.Errorf(ports.ErrSeek, "seek", "stream %d does not exist", streamIndex)
	}
	if target < 0 || target > m.DurationMicros {
		return ports.Errorf(ports.ErrSeek, "seek", "target %d out of range", target)
	}

	tb := m.StreamList[streamIndex].TimeBase
	first, best := -1, -1
	for i, p := range m.Packets {
		if p.StreamIndex != streamIndex || !p.Keyframe {
			continue
		}
		if first < 0 {
			first = i
		}
		if tb.ToMicros(p.PTS) <= target {
			best = i
		}
	}
	if first < 0 {
		return ports.Errorf(ports.ErrSeek, "seek", "no keyframes")
	}
	if best < 0 {
		best = first
	}
	m.cursor = best
	return nil
}

func (m *MediaSource) ReadPacket() (ports.Packet, error) {
	if err, ok := m.ReadErrAt[m.cursor]; ok {
		return ports.Packet{}, err
	}
	if m.cursor >= len(m.Packets) {
		return ports.Packet{}, io.EOF
	}
	p := m.Packets[m.cursor]
	m.cursor++
	m.Reads++
	return p, nil
}

func (m *MediaSource) Close() error {
	m.Closed++
	return nil
}

var _ ports.MediaSource = (*MediaSource)(nil)

// SourceOpener returns a fixed source or error.
type SourceOpener struct {
	Source ports.MediaSource
	Err    error

	OpenedPaths []string
}

func (m *SourceOpener) Open(path string) (ports.MediaSource, error) {
	m.OpenedPaths = append(m.OpenedPaths, path)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Source, nil
}

var _ ports.SourceOpener = (*SourceOpener)(nil)
