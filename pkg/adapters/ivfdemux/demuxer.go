package ivfdemux

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/user/thumbnailer/pkg/ports"
)

var errClosed = errors.New("ivfdemux: source is closed")

// Demuxer is an opened IVF file with a single video stream.
type Demuxer struct {
	file      *os.File
	desc      ports.StreamDescriptor
	frames    []frame
	durations []int64
	cursor    int
	closed    bool
}

// Format returns "ivf".
func (d *Demuxer) Format() string { return "ivf" }

// Streams returns the single video stream.
func (d *Demuxer) Streams() []ports.StreamDescriptor {
	return []ports.StreamDescriptor{d.desc}
}

// Duration returns the stream duration in microseconds.
func (d *Demuxer) Duration() int64 {
	return d.desc.TimeBase.ToMicros(d.desc.Duration)
}

// Seek moves to the last keyframe at or before target, or to the first
// keyframe when none precedes it.
func (d *Demuxer) Seek(streamIndex int, target int64) error {
	if d.closed {
		return ports.NewError(ports.ErrSeek, "seek", errClosed)
	}
	if streamIndex != 0 {
		return ports.Errorf(ports.ErrSeek, "seek", "stream %d does not exist", streamIndex)
	}
	if target < 0 || target > d.Duration() {
		return ports.Errorf(ports.ErrSeek, "seek", "target %dus outside [0, %dus]", target, d.Duration())
	}

	ts := d.desc.StartTime + d.desc.TimeBase.FromMicros(target)
	first, best := -1, -1
	for i, fr := range d.frames {
		if !fr.key {
			continue
		}
		if first < 0 {
			first = i
		}
		if fr.pts <= ts {
			best = i
		}
	}
	if first < 0 {
		return ports.Errorf(ports.ErrSeek, "seek", "stream has no keyframes")
	}
	if best < 0 {
		best = first
	}
	d.cursor = best
	return nil
}

// ReadPacket returns the next frame.
func (d *Demuxer) ReadPacket() (ports.Packet, error) {
	if d.closed {
		return ports.Packet{}, errClosed
	}
	if d.cursor >= len(d.frames) {
		return ports.Packet{}, io.EOF
	}
	fr := d.frames[d.cursor]
	dur := d.durations[d.cursor]
	d.cursor++

	data := make([]byte, fr.size)
	if _, err := d.file.ReadAt(data, fr.offset); err != nil {
		return ports.Packet{}, fmt.Errorf("read frame at %d: %w", fr.offset, err)
	}

	return ports.Packet{
		StreamIndex: 0,
		PTS:         fr.pts,
		DTS:         fr.pts,
		Duration:    dur,
		Keyframe:    fr.key,
		Pos:         fr.offset,
		Data:        data,
	}, nil
}

// Close releases the file. It is safe to call more than once.
func (d *Demuxer) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.file.Close()
}

var _ ports.MediaSource = (*Demuxer)(nil)
