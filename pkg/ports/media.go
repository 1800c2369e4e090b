package ports

import "io"

// TimeBaseMicros is the container-level time unit: positions passed to
// MediaSource.Seek and reported by MediaSource.Duration are microseconds.
const TimeBaseMicros int64 = 1_000_000

// DefaultSeekTarget is where thumbnails are taken from unless a caller
// asks otherwise: 10 seconds into the timeline.
const DefaultSeekTarget = 10 * TimeBaseMicros

// MediaKind classifies an elementary stream.
type MediaKind int

const (
	KindUnknown MediaKind = iota
	KindVideo
	KindAudio
	KindSubtitle
	KindData
)

// String returns the lowercase name of the kind.
func (k MediaKind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindSubtitle:
		return "subtitle"
	case KindData:
		return "data"
	default:
		return "unknown"
	}
}

// MarshalText lets descriptors render kinds by name in JSON and YAML.
func (k MediaKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Rational is a stream time base: one tick lasts Num/Den seconds.
type Rational struct {
	Num int64 `json:"num" yaml:"num"`
	Den int64 `json:"den" yaml:"den"`
}

// ToMicros converts a timestamp in this time base to microseconds.
func (r Rational) ToMicros(ts int64) int64 {
	if r.Den == 0 {
		return 0
	}
	return ts * r.Num * TimeBaseMicros / r.Den
}

// FromMicros converts microseconds to a timestamp in this time base,
// rounding toward zero.
func (r Rational) FromMicros(us int64) int64 {
	if r.Num == 0 {
		return 0
	}
	return us * r.Den / (r.Num * TimeBaseMicros)
}

// StreamDescriptor describes one elementary stream of an opened container.
type StreamDescriptor struct {
	Index      int       `json:"index" yaml:"index"`
	Kind       MediaKind `json:"kind" yaml:"kind"`
	Codec      Codec     `json:"codec" yaml:"codec"`
	FourCC     string    `json:"fourcc,omitempty" yaml:"fourcc,omitempty"`
	Width      int       `json:"width,omitempty" yaml:"width,omitempty"`
	Height     int       `json:"height,omitempty" yaml:"height,omitempty"`
	BitRate    int64     `json:"bit_rate,omitempty" yaml:"bit_rate,omitempty"`
	TimeBase   Rational  `json:"time_base" yaml:"time_base"`
	StartTime  int64     `json:"start_time" yaml:"start_time"`
	Duration   int64     `json:"duration" yaml:"duration"`
	FrameCount int       `json:"frame_count" yaml:"frame_count"`
	Keyframes  int       `json:"keyframes" yaml:"keyframes"`

	// CodecConfig holds out-of-band parameter sets in Annex B form
	// (SPS/PPS for H.264, VPS/SPS/PPS for HEVC). Nil for other codecs.
	CodecConfig []byte `json:"-" yaml:"-"`
}

// Area returns the pixel area of a video stream.
func (s StreamDescriptor) Area() int {
	return s.Width * s.Height
}

// Packet is one compressed unit of a stream. Timestamps are in the
// stream's TimeBase.
type Packet struct {
	StreamIndex int
	PTS         int64
	DTS         int64
	Duration    int64
	Keyframe    bool
	Pos         int64
	Data        []byte
}

// MediaSource is an opened container.
//
// A MediaSource is owned by a single extraction; it is not safe for
// concurrent use.
type MediaSource interface {
	// Format returns the short container name, e.g. "mp4".
	Format() string

	// Streams lists every stream in container order.
	Streams() []StreamDescriptor

	// Duration returns the container duration in microseconds.
	Duration() int64

	// Seek repositions reading so that the next packet of streamIndex is
	// the nearest keyframe at or before target (microseconds). Packets
	// of other streams resume from the same container position.
	Seek(streamIndex int, target int64) error

	// ReadPacket returns the next packet in container order, or io.EOF.
	ReadPacket() (Packet, error)

	io.Closer
}

// ContainerFormat is a demuxer that can recognize and open a container.
type ContainerFormat interface {
	// Name returns the short format name.
	Name() string

	// Probe reports whether header (the first bytes of the file) with the
	// sniffed MIME type belongs to this format.
	Probe(header []byte, mime string) bool

	// Open opens path as this format.
	Open(path string) (MediaSource, error)
}

// SourceOpener opens a media file, choosing the container format.
type SourceOpener interface {
	Open(path string) (MediaSource, error)
}
