// Package jpegdecoder decodes Motion JPEG packets with the standard
// library's baseline and progressive JPEG decoder.
package jpegdecoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/user/thumbnailer/pkg/ports"
)

var (
	// ErrDecodeFailed is returned when a packet is not a decodable JPEG.
	ErrDecodeFailed = errors.New("jpegdecoder: decode failed")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("jpegdecoder: decoder closed")
)

// Decoder is an intra-only decoder: every packet yields exactly one frame
// with no delay.
type Decoder struct {
	pending []*ports.DecodedFrame
	flushed bool
	closed  bool
}

// New creates a Motion JPEG decoder.
func New() *Decoder {
	return &Decoder{}
}

// SendPacket decodes pkt immediately and queues the frame.
func (d *Decoder) SendPacket(pkt ports.Packet) error {
	if d.closed {
		return ErrClosed
	}
	img, err := jpeg.Decode(bytes.NewReader(pkt.Data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	frame, err := toFrame(img)
	if err != nil {
		return err
	}
	frame.PTS = pkt.PTS
	frame.Keyframe = true
	d.pending = append(d.pending, frame)
	return nil
}

// ReceiveFrame returns the oldest queued frame.
func (d *Decoder) ReceiveFrame() (*ports.DecodedFrame, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if len(d.pending) == 0 {
		if d.flushed {
			return nil, io.EOF
		}
		return nil, ports.ErrAgain
	}
	frame := d.pending[0]
	d.pending = d.pending[1:]
	return frame, nil
}

// Flush marks the end of input.
func (d *Decoder) Flush() error {
	if d.closed {
		return ErrClosed
	}
	d.flushed = true
	return nil
}

// Close drops any queued frames.
func (d *Decoder) Close() {
	d.closed = true
	d.pending = nil
}

var subsampling = map[image.YCbCrSubsampleRatio]ports.PixelFormat{
	image.YCbCrSubsampleRatio444: ports.PixFmtYUVJ444P,
	image.YCbCrSubsampleRatio422: ports.PixFmtYUVJ422P,
	image.YCbCrSubsampleRatio420: ports.PixFmtYUVJ420P,
	image.YCbCrSubsampleRatio440: ports.PixFmtYUVJ440P,
	image.YCbCrSubsampleRatio411: ports.PixFmtYUVJ411P,
	image.YCbCrSubsampleRatio410: ports.PixFmtYUVJ410P,
}

// toFrame exposes the decoder's planes without copying. JPEG is full
// range, so YCbCr maps to the YUVJ formats.
func toFrame(img image.Image) (*ports.DecodedFrame, error) {
	b := img.Bounds()
	switch m := img.(type) {
	case *image.YCbCr:
		format, ok := subsampling[m.SubsampleRatio]
		if !ok {
			return nil, fmt.Errorf("%w: unsupported subsampling %v", ErrDecodeFailed, m.SubsampleRatio)
		}
		return &ports.DecodedFrame{
			Format:  format,
			Width:   b.Dx(),
			Height:  b.Dy(),
			Planes:  [][]byte{m.Y, m.Cb, m.Cr},
			Strides: []int{m.YStride, m.CStride, m.CStride},
		}, nil
	case *image.Gray:
		return &ports.DecodedFrame{
			Format:  ports.PixFmtGray8,
			Width:   b.Dx(),
			Height:  b.Dy(),
			Planes:  [][]byte{m.Pix},
			Strides: []int{m.Stride},
		}, nil
	case *image.CMYK:
		return &ports.DecodedFrame{
			Format:  ports.PixFmtCMYK,
			Width:   b.Dx(),
			Height:  b.Dy(),
			Planes:  [][]byte{m.Pix},
			Strides: []int{m.Stride},
		}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected image type %T", ErrDecodeFailed, img)
	}
}

var _ ports.VideoDecoder = (*Decoder)(nil)
