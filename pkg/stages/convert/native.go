package convert

import (
	"image"

	"github.com/user/thumbnailer/pkg/ports"
)

var subsampleRatios = map[layout]image.YCbCrSubsampleRatio{
	{1, 1, false}: image.YCbCrSubsampleRatio420,
	{1, 0, false}: image.YCbCrSubsampleRatio422,
	{0, 0, false}: image.YCbCrSubsampleRatio444,
	{0, 1, false}: image.YCbCrSubsampleRatio440,
	{2, 0, false}: image.YCbCrSubsampleRatio411,
	{2, 1, false}: image.YCbCrSubsampleRatio410,
}

// NativeImage wraps a decoded frame as an image.Image without color
// conversion where the standard library has a matching type. Planes are
// shared with the frame. Other formats go through the RGB24 path.
func NativeImage(f *ports.DecodedFrame) (image.Image, error) {
	rect := image.Rect(0, 0, f.Width, f.Height)

	if l, ok := yuvLayouts[f.Format]; ok {
		cw, ch := l.chromaSize(f.Width, f.Height)
		if err := checkPlanes(f, [][2]int{{f.Width, f.Height}, {cw, ch}, {cw, ch}}); err != nil {
			return nil, err
		}
		if f.Strides[1] == f.Strides[2] {
			ratio := subsampleRatios[layout{l.hshift, l.vshift, false}]
			return &image.YCbCr{
				Y: f.Planes[0], Cb: f.Planes[1], Cr: f.Planes[2],
				YStride: f.Strides[0], CStride: f.Strides[1],
				SubsampleRatio: ratio, Rect: rect,
			}, nil
		}
	}

	if f.Format == ports.PixFmtGray8 {
		if err := checkPlanes(f, [][2]int{{f.Width, f.Height}}); err != nil {
			return nil, err
		}
		return &image.Gray{Pix: f.Planes[0], Stride: f.Strides[0], Rect: rect}, nil
	}

	raster, err := toRGB24(f)
	if err != nil {
		return nil, err
	}
	return raster.RGBA(), nil
}
