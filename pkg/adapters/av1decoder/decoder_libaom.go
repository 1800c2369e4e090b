//go:build libaom

package av1decoder

/*
#cgo pkg-config: aom
#include <aom/aom_decoder.h>
#include <aom/aomdx.h>
#include <stdlib.h>
#include <string.h>

static aom_codec_iface_t* get_av1_decoder_interface() {
    return aom_codec_av1_dx();
}

static aom_codec_err_t init_decoder(aom_codec_ctx_t *ctx, aom_codec_iface_t *iface) {
    return aom_codec_dec_init(ctx, iface, NULL, 0);
}

static unsigned char* get_plane(aom_image_t *img, int plane) {
    return img->planes[plane];
}

static int get_stride(aom_image_t *img, int plane) {
    return img->stride[plane];
}

static unsigned int get_width(aom_image_t *img) {
    return img->d_w;
}

static unsigned int get_height(aom_image_t *img) {
    return img->d_h;
}

static int get_fmt(aom_image_t *img) {
    return (int)img->fmt;
}

static int is_monochrome(aom_image_t *img) {
    return img->monochrome;
}
*/
import "C"

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/user/thumbnailer/pkg/ports"
)

// Available reports whether the libaom backend is compiled in.
func Available() bool { return true }

// Decoder wraps a libaom decoding context.
type Decoder struct {
	codec   *C.aom_codec_ctx_t
	iter    C.aom_codec_iter_t
	pts     []int64
	flushed bool
}

// New creates and initializes a libaom decoder.
func New() (*Decoder, error) {
	codec := (*C.aom_codec_ctx_t)(C.malloc(C.sizeof_aom_codec_ctx_t))
	if codec == nil {
		return nil, fmt.Errorf("failed to allocate decoder context")
	}
	C.memset(unsafe.Pointer(codec), 0, C.sizeof_aom_codec_ctx_t)

	iface := C.get_av1_decoder_interface()
	if res := C.init_decoder(codec, iface); res != C.AOM_CODEC_OK {
		C.free(unsafe.Pointer(codec))
		return nil, fmt.Errorf("failed to initialize decoder: %d", res)
	}
	return &Decoder{codec: codec}, nil
}

// SendPacket submits one temporal unit.
func (d *Decoder) SendPacket(pkt ports.Packet) error {
	if d.codec == nil {
		return ErrClosed
	}
	if len(pkt.Data) == 0 {
		return fmt.Errorf("%w: empty packet", ErrDecodeFailed)
	}

	res := C.aom_codec_decode(
		d.codec,
		(*C.uint8_t)(unsafe.Pointer(&pkt.Data[0])),
		C.size_t(len(pkt.Data)),
		nil,
	)
	if res != C.AOM_CODEC_OK {
		return fmt.Errorf("%w: %d", ErrDecodeFailed, res)
	}
	d.iter = nil
	d.pts = append(d.pts, pkt.PTS)
	return nil
}

// ReceiveFrame copies the next picture out of libaom.
func (d *Decoder) ReceiveFrame() (*ports.DecodedFrame, error) {
	if d.codec == nil {
		return nil, ErrClosed
	}
	img := C.aom_codec_get_frame(d.codec, &d.iter)
	if img == nil {
		if d.flushed {
			return nil, io.EOF
		}
		return nil, ports.ErrAgain
	}

	frame, err := copyImage(img)
	if err != nil {
		return nil, err
	}
	if len(d.pts) > 0 {
		frame.PTS = d.pts[0]
		d.pts = d.pts[1:]
	}
	return frame, nil
}

// Flush drains frames held back by the decoder.
func (d *Decoder) Flush() error {
	if d.codec == nil {
		return ErrClosed
	}
	if res := C.aom_codec_decode(d.codec, nil, 0, nil); res != C.AOM_CODEC_OK {
		return fmt.Errorf("%w: flush: %d", ErrDecodeFailed, res)
	}
	d.iter = nil
	d.flushed = true
	return nil
}

// Close releases decoder resources.
func (d *Decoder) Close() {
	if d.codec != nil {
		C.aom_codec_destroy(d.codec)
		C.free(unsafe.Pointer(d.codec))
		d.codec = nil
	}
}

func copyImage(img *C.aom_image_t) (*ports.DecodedFrame, error) {
	width := int(C.get_width(img))
	height := int(C.get_height(img))

	var format ports.PixelFormat
	var ch int
	switch C.get_fmt(img) {
	case C.AOM_IMG_FMT_I420:
		format, ch = ports.PixFmtYUV420P, (height+1)/2
	case C.AOM_IMG_FMT_I422:
		format, ch = ports.PixFmtYUV422P, height
	case C.AOM_IMG_FMT_I444:
		format, ch = ports.PixFmtYUV444P, height
	default:
		return nil, fmt.Errorf("%w: aom format %#x", ErrUnsupportedFormat, int(C.get_fmt(img)))
	}

	plane := func(i, rows int) ([]byte, int) {
		stride := int(C.get_stride(img, C.int(i)))
		return C.GoBytes(unsafe.Pointer(C.get_plane(img, C.int(i))), C.int(stride*rows)), stride
	}

	y, ys := plane(0, height)
	if C.is_monochrome(img) != 0 {
		return &ports.DecodedFrame{
			Format:  ports.PixFmtGray8,
			Width:   width,
			Height:  height,
			Planes:  [][]byte{y},
			Strides: []int{ys},
		}, nil
	}
	u, us := plane(1, ch)
	v, vs := plane(2, ch)

	return &ports.DecodedFrame{
		Format:  format,
		Width:   width,
		Height:  height,
		Planes:  [][]byte{y, u, v},
		Strides: []int{ys, us, vs},
	}, nil
}

var _ ports.VideoDecoder = (*Decoder)(nil)
