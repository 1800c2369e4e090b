package ports

import "errors"

// ErrAgain is returned by VideoDecoder.ReceiveFrame when the decoder
// needs more input before it can emit a frame.
var ErrAgain = errors.New("decoder: needs more input")

// PixelFormat is the memory layout of a decoded picture.
type PixelFormat int

const (
	PixFmtNone PixelFormat = iota
	PixFmtYUV420P
	PixFmtYUVJ420P
	PixFmtYUV422P
	PixFmtYUVJ422P
	PixFmtYUV444P
	PixFmtYUVJ444P
	PixFmtYUV440P
	PixFmtYUVJ440P
	PixFmtYUV411P
	PixFmtYUVJ411P
	PixFmtYUV410P
	PixFmtYUVJ410P
	PixFmtNV12
	PixFmtGray8
	PixFmtRGB24
	PixFmtRGBA
	PixFmtCMYK
)

var pixFmtNames = map[PixelFormat]string{
	PixFmtNone:     "none",
	PixFmtYUV420P:  "yuv420p",
	PixFmtYUVJ420P: "yuvj420p",
	PixFmtYUV422P:  "yuv422p",
	PixFmtYUVJ422P: "yuvj422p",
	PixFmtYUV444P:  "yuv444p",
	PixFmtYUVJ444P: "yuvj444p",
	PixFmtYUV440P:  "yuv440p",
	PixFmtYUVJ440P: "yuvj440p",
	PixFmtYUV411P:  "yuv411p",
	PixFmtYUVJ411P: "yuvj411p",
	PixFmtYUV410P:  "yuv410p",
	PixFmtYUVJ410P: "yuvj410p",
	PixFmtNV12:     "nv12",
	PixFmtGray8:    "gray",
	PixFmtRGB24:    "rgb24",
	PixFmtRGBA:     "rgba",
	PixFmtCMYK:     "cmyk",
}

// String returns the conventional lowercase pixel format name.
func (f PixelFormat) String() string {
	if name, ok := pixFmtNames[f]; ok {
		return name
	}
	return "unknown"
}

// DecodedFrame is an uncompressed picture in the decoder's native layout.
// Planes and Strides are parallel; planar YUV uses Y, U, V order.
type DecodedFrame struct {
	Format   PixelFormat
	Width    int
	Height   int
	Planes   [][]byte
	Strides  []int
	PTS      int64
	Keyframe bool
}

// VideoDecoder is a push/pull codec backend.
//
// SendPacket feeds one compressed packet. ReceiveFrame returns the next
// decoded frame, ErrAgain when more input is needed, or io.EOF once
// Flush has been called and every buffered frame was returned.
type VideoDecoder interface {
	SendPacket(pkt Packet) error
	ReceiveFrame() (*DecodedFrame, error)
	Flush() error
	Close()
}

// DecoderFactory creates decoders for streams.
type DecoderFactory interface {
	// CanDecode reports whether a backend is available for codec.
	CanDecode(codec Codec) bool

	// NewDecoder creates a decoder configured from the stream's parameters.
	NewDecoder(stream StreamDescriptor) (VideoDecoder, error)
}
