package mp4demux

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/thumbnailer/pkg/ports"
)

var errClosed = errors.New("mp4demux: source is closed")

// Demuxer is an opened MP4 file.
//
// H.264 and HEVC packets are delivered in Annex B form; keyframes carry
// the track's parameter sets in front of the slice data.
type Demuxer struct {
	file     *os.File
	tracks   []*track
	entries  []entry
	cursor   int
	duration int64
	closed   bool
}

func newDemuxer(file *os.File, parsed *mp4.File) (*Demuxer, error) {
	tracks, err := buildTracks(moovOf(parsed))
	if err != nil {
		return nil, err
	}
	entries, err := index(parsed, tracks)
	if err != nil {
		return nil, err
	}

	d := &Demuxer{file: file, tracks: tracks, entries: entries}
	for _, t := range tracks {
		if us := t.desc.TimeBase.ToMicros(t.desc.Duration); us > d.duration {
			d.duration = us
		}
	}
	return d, nil
}

// Format returns "mp4".
func (d *Demuxer) Format() string { return "mp4" }

// Streams lists every track in moov order.
func (d *Demuxer) Streams() []ports.StreamDescriptor {
	out := make([]ports.StreamDescriptor, len(d.tracks))
	for i, t := range d.tracks {
		out[i] = t.desc
	}
	return out
}

// Duration returns the longest track duration in microseconds.
func (d *Demuxer) Duration() int64 { return d.duration }

// Seek positions the cursor on the last keyframe of streamIndex whose
// presentation time is at or before target. When the stream has no such
// keyframe the first keyframe is used.
func (d *Demuxer) Seek(streamIndex int, target int64) error {
	if d.closed {
		return ports.NewError(ports.ErrSeek, "seek", errClosed)
	}
	if streamIndex < 0 || streamIndex >= len(d.tracks) {
		return ports.Errorf(ports.ErrSeek, "seek", "stream %d does not exist", streamIndex)
	}
	if target < 0 {
		return ports.Errorf(ports.ErrSeek, "seek", "negative target %d", target)
	}
	desc := d.tracks[streamIndex].desc
	if limit := desc.TimeBase.ToMicros(desc.Duration); target > limit {
		return ports.Errorf(ports.ErrSeek, "seek", "target %dus is beyond stream duration %dus", target, limit)
	}

	ts := desc.StartTime + desc.TimeBase.FromMicros(target)

	first, best := -1, -1
	for i, e := range d.entries {
		if e.stream != streamIndex || !e.key {
			continue
		}
		if first < 0 {
			first = i
		}
		if e.pts <= ts && (best < 0 || e.pts >= d.entries[best].pts) {
			best = i
		}
	}
	if first < 0 {
		return ports.Errorf(ports.ErrSeek, "seek", "stream %d has no keyframes", streamIndex)
	}
	if best < 0 {
		best = first
	}
	d.cursor = best
	return nil
}

// ReadPacket returns the next sample in file order.
func (d *Demuxer) ReadPacket() (ports.Packet, error) {
	if d.closed {
		return ports.Packet{}, errClosed
	}
	if d.cursor >= len(d.entries) {
		return ports.Packet{}, io.EOF
	}
	e := d.entries[d.cursor]
	d.cursor++

	data := e.data
	if data == nil {
		data = make([]byte, e.size)
		if _, err := d.file.ReadAt(data, e.offset); err != nil {
			return ports.Packet{}, fmt.Errorf("read sample at %d: %w", e.offset, err)
		}
	}

	t := d.tracks[e.stream]
	if t.nal {
		data = lengthPrefixedToAnnexB(data, t.nalLen)
		if e.key && len(t.config) > 0 {
			data = append(append(make([]byte, 0, len(t.config)+len(data)), t.config...), data...)
		}
	}

	return ports.Packet{
		StreamIndex: e.stream,
		PTS:         e.pts,
		DTS:         e.dts,
		Duration:    e.dur,
		Keyframe:    e.key,
		Pos:         e.offset,
		Data:        data,
	}, nil
}

// Close releases the underlying file. It is safe to call more than once.
func (d *Demuxer) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.file.Close()
}

var _ ports.MediaSource = (*Demuxer)(nil)
