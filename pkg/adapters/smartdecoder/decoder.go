// Package smartdecoder picks a decoding backend for a stream's codec.
package smartdecoder

import (
	"errors"
	"fmt"

	"github.com/user/thumbnailer/pkg/adapters/av1decoder"
	"github.com/user/thumbnailer/pkg/adapters/ffmpegdecoder"
	"github.com/user/thumbnailer/pkg/adapters/jpegdecoder"
	"github.com/user/thumbnailer/pkg/ports"
)

// Backend represents the decoding backend used.
type Backend string

const (
	// BackendNative is the pure Go Motion JPEG decoder.
	BackendNative Backend = "native"
	// BackendFFmpeg is the external ffmpeg process.
	BackendFFmpeg Backend = "ffmpeg"
	// BackendLibaom is libaom for AV1.
	BackendLibaom Backend = "libaom"
)

// Info describes the decoder chosen for a stream.
type Info struct {
	Codec   ports.Codec
	Backend Backend
}

// Options configures backend discovery.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
}

var (
	// ErrUnsupportedCodec is returned when no backend handles the codec.
	ErrUnsupportedCodec = errors.New("smartdecoder: unsupported codec")
	// ErrNoDecoderAvailable is returned when the backend for a codec is
	// not installed or not compiled in.
	ErrNoDecoderAvailable = errors.New("smartdecoder: no decoder available")
)

// Factory creates decoders and answers capability queries.
//
// The selection flow:
//   - MJPEG: pure Go decoder
//   - H.264, HEVC, VP8, VP9: ffmpeg
//   - AV1: libaom when compiled in, else ffmpeg
type Factory struct {
	ffmpegAvailable func() bool
	av1Available    func() bool
}

// New creates a Factory. A non-empty FFmpegPath overrides ffmpeg
// discovery process-wide.
func New(opts Options) *Factory {
	if opts.FFmpegPath != "" {
		ffmpegdecoder.SetFFmpegPath(opts.FFmpegPath)
	}
	return &Factory{
		ffmpegAvailable: ffmpegdecoder.IsAvailable,
		av1Available:    av1decoder.Available,
	}
}

// BackendFor returns the backend that would decode codec.
func (f *Factory) BackendFor(codec ports.Codec) (Backend, error) {
	switch codec {
	case ports.CodecMJPEG:
		return BackendNative, nil
	case ports.CodecH264, ports.CodecHEVC, ports.CodecVP8, ports.CodecVP9:
		if f.ffmpegAvailable() {
			return BackendFFmpeg, nil
		}
		return "", fmt.Errorf("%w: %s needs ffmpeg", ErrNoDecoderAvailable, codec)
	case ports.CodecAV1:
		if f.av1Available() {
			return BackendLibaom, nil
		}
		if f.ffmpegAvailable() {
			return BackendFFmpeg, nil
		}
		return "", fmt.Errorf("%w: %s needs libaom or ffmpeg", ErrNoDecoderAvailable, codec)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCodec, codec)
	}
}

// CanDecode reports whether a backend is available for codec.
func (f *Factory) CanDecode(codec ports.Codec) bool {
	_, err := f.BackendFor(codec)
	return err == nil
}

// NewDecoder creates a decoder for stream.
func (f *Factory) NewDecoder(stream ports.StreamDescriptor) (ports.VideoDecoder, error) {
	d, _, err := f.Create(stream)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Create is NewDecoder that also reports the chosen backend.
func (f *Factory) Create(stream ports.StreamDescriptor) (*Decoder, Info, error) {
	backend, err := f.BackendFor(stream.Codec)
	if err != nil {
		return nil, Info{}, err
	}
	info := Info{Codec: stream.Codec, Backend: backend}

	var inner ports.VideoDecoder
	switch backend {
	case BackendNative:
		inner = jpegdecoder.New()
	case BackendFFmpeg:
		inner, err = ffmpegdecoder.New(stream)
	case BackendLibaom:
		inner, err = av1decoder.New()
	}
	if err != nil {
		return nil, Info{}, err
	}
	return &Decoder{inner: inner, info: info}, info, nil
}

// Decoder wraps the backend decoder with the selection result.
type Decoder struct {
	inner ports.VideoDecoder
	info  Info
}

func (d *Decoder) SendPacket(pkt ports.Packet) error          { return d.inner.SendPacket(pkt) }
func (d *Decoder) ReceiveFrame() (*ports.DecodedFrame, error) { return d.inner.ReceiveFrame() }
func (d *Decoder) Flush() error                               { return d.inner.Flush() }
func (d *Decoder) Close()                                     { d.inner.Close() }

// Info returns information about the decoder.
func (d *Decoder) Info() Info {
	return d.info
}

// String returns "codec/backend", e.g. "h264/ffmpeg".
func (d *Decoder) String() string {
	return fmt.Sprintf("%s/%s", d.info.Codec, d.info.Backend)
}

var (
	_ ports.VideoDecoder   = (*Decoder)(nil)
	_ ports.DecoderFactory = (*Factory)(nil)
)
