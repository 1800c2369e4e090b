package mocks

import (
	"image"

	"github.com/user/thumbnailer/pkg/ports"
)

// ImageCodec is a mock implementation of ports.ImageCodec.
type ImageCodec struct {
	EncodeImageFunc func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)

	EncodeCalls []EncodeCall
}

// EncodeCall records a call to EncodeImage.
type EncodeCall struct {
	Bounds  image.Rectangle
	Format  ports.ImageFormat
	Quality int
}

func (m *ImageCodec) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	m.EncodeCalls = append(m.EncodeCalls, EncodeCall{Bounds: img.Bounds(), Format: format, Quality: quality})
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{byte(format), byte(quality)}, nil
}

var _ ports.ImageCodec = (*ImageCodec)(nil)
