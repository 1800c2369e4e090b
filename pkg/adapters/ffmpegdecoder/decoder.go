// Package ffmpegdecoder decodes video by piping packets through an
// external ffmpeg process. H.264 and HEVC go in as Annex B elementary
// streams; VP8, VP9 and AV1 are wrapped in IVF.
package ffmpegdecoder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"

	"github.com/user/thumbnailer/pkg/ports"
)

var (
	// ErrDecodeFailed is returned when ffmpeg rejects the stream.
	ErrDecodeFailed = errors.New("ffmpegdecoder: decode failed")

	// ErrFFmpegNotFound is returned when no ffmpeg binary is available.
	ErrFFmpegNotFound = errors.New("ffmpegdecoder: ffmpeg not found")

	// ErrUnsupportedCodec is returned for codecs ffmpeg is not used for.
	ErrUnsupportedCodec = errors.New("ffmpegdecoder: unsupported codec")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("ffmpegdecoder: decoder closed")
)

// inputFormat is how packets of a codec are fed to ffmpeg.
type inputFormat struct {
	demuxer string
	// fourcc selects IVF framing; empty means a raw elementary stream.
	fourcc string
}

var formats = map[ports.Codec]inputFormat{
	ports.CodecH264: {demuxer: "h264"},
	ports.CodecHEVC: {demuxer: "hevc"},
	ports.CodecVP8:  {demuxer: "ivf", fourcc: "VP80"},
	ports.CodecVP9:  {demuxer: "ivf", fourcc: "VP90"},
	ports.CodecAV1:  {demuxer: "ivf", fourcc: "AV01"},
}

// Decoder accumulates the access units of the current GOP and asks ffmpeg
// for the next picture after each packet. Output is yuv420p.
type Decoder struct {
	ffmpegPath string
	format     inputFormat
	width      int
	height     int
	config     []byte

	units   [][]byte
	pts     []int64
	emitted int
	frames  []*ports.DecodedFrame
	flushed bool
	closed  bool
}

// New creates a decoder for stream. The stream must carry its
// dimensions so raw output can be split into pictures.
func New(stream ports.StreamDescriptor) (*Decoder, error) {
	format, ok := formats[stream.Codec]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, stream.Codec)
	}
	if stream.Width <= 0 || stream.Height <= 0 {
		return nil, fmt.Errorf("%w: unknown frame dimensions", ErrDecodeFailed)
	}
	path, err := FindFFmpeg()
	if err != nil {
		return nil, err
	}
	return &Decoder{
		ffmpegPath: path,
		format:     format,
		width:      stream.Width,
		height:     stream.Height,
		config:     stream.CodecConfig,
	}, nil
}

// SendPacket appends pkt to the pending GOP and decodes it.
func (d *Decoder) SendPacket(pkt ports.Packet) error {
	if d.closed {
		return ErrClosed
	}
	if len(pkt.Data) == 0 {
		return fmt.Errorf("%w: empty packet", ErrDecodeFailed)
	}

	unit := make([]byte, 0, len(d.config)+len(pkt.Data))
	if pkt.Keyframe {
		d.units = d.units[:0]
		d.pts = d.pts[:0]
		d.emitted = 0
		if !bytes.Contains(pkt.Data, d.config) {
			unit = append(unit, d.config...)
		}
	} else if len(d.units) == 0 {
		// Leading non-key packets cannot be decoded on their own.
		return nil
	}
	d.units = append(d.units, append(unit, pkt.Data...))
	d.pts = append(d.pts, pkt.PTS)

	return d.decode()
}

// decode runs ffmpeg over the GOP so far and keeps any pictures beyond
// those already emitted.
func (d *Decoder) decode() error {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(d.ffmpegPath,
		"-hide_banner",
		"-loglevel", "error",
		"-xerror",
		"-err_detect", "explode",
		"-f", d.format.demuxer,
		"-i", "pipe:0",
		"-f", "rawvideo",
		"-pix_fmt", "yuv420p",
		"pipe:1",
	)
	cmd.Stdin = bytes.NewReader(d.input())
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %v: %s", ErrDecodeFailed, err, bytes.TrimSpace(stderr.Bytes()))
	}

	size := d.frameSize()
	total := stdout.Len() / size
	if total <= d.emitted {
		return nil
	}

	// Pictures come out in presentation order.
	order := append([]int64(nil), d.pts...)
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	raw := stdout.Bytes()
	for i := d.emitted; i < total; i++ {
		frame := d.splitFrame(raw[i*size : (i+1)*size])
		if i < len(order) {
			frame.PTS = order[i]
		}
		frame.Keyframe = i == 0
		d.frames = append(d.frames, frame)
	}
	d.emitted = total
	return nil
}

// input is the pending GOP in the form ffmpeg reads for the codec.
func (d *Decoder) input() []byte {
	if d.format.fourcc != "" {
		return ivfStream(d.format.fourcc, d.width, d.height, d.units)
	}
	return bytes.Join(d.units, nil)
}

func (d *Decoder) chromaSize() (int, int) {
	return (d.width + 1) / 2, (d.height + 1) / 2
}

func (d *Decoder) frameSize() int {
	cw, ch := d.chromaSize()
	return d.width*d.height + 2*cw*ch
}

func (d *Decoder) splitFrame(raw []byte) *ports.DecodedFrame {
	cw, ch := d.chromaSize()
	ySize := d.width * d.height
	cSize := cw * ch
	buf := make([]byte, len(raw))
	copy(buf, raw)
	return &ports.DecodedFrame{
		Format:  ports.PixFmtYUV420P,
		Width:   d.width,
		Height:  d.height,
		Planes:  [][]byte{buf[:ySize], buf[ySize : ySize+cSize], buf[ySize+cSize:]},
		Strides: []int{d.width, cw, cw},
	}
}

// ReceiveFrame returns the next decoded picture.
func (d *Decoder) ReceiveFrame() (*ports.DecodedFrame, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if len(d.frames) == 0 {
		if d.flushed {
			return nil, io.EOF
		}
		return nil, ports.ErrAgain
	}
	frame := d.frames[0]
	d.frames = d.frames[1:]
	return frame, nil
}

// Flush marks the end of input. Every packet is already decoded with
// end-of-stream semantics, so nothing further is produced.
func (d *Decoder) Flush() error {
	if d.closed {
		return ErrClosed
	}
	d.flushed = true
	return nil
}

// Close releases buffered data.
func (d *Decoder) Close() {
	d.closed = true
	d.frames = nil
	d.units = nil
}

var _ ports.VideoDecoder = (*Decoder)(nil)
