// Package convert implements the pixel conversion stage: decoder-native
// frames to packed RGB24.
package convert

import (
	"context"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/user/thumbnailer/pkg/pipeline"
	"github.com/user/thumbnailer/pkg/ports"
)

// Stage converts decoded frames to RasterImages.
type Stage struct {
	logger ports.Logger
}

// NewStage creates a new convert stage.
func NewStage(logger ports.Logger) *Stage {
	return &Stage{
		logger: logger.WithComponent("convert"),
	}
}

// Execute converts input.Frame to RGB24 at the requested size.
func (s *Stage) Execute(ctx context.Context, input pipeline.ConvertInput) (pipeline.ConvertResult, error) {
	if input.Frame == nil {
		return pipeline.ConvertResult{}, ports.Errorf(ports.ErrConversion, "convert", "nil frame")
	}
	if input.Frame.Width <= 0 || input.Frame.Height <= 0 {
		return pipeline.ConvertResult{}, ports.Errorf(ports.ErrConversion, "convert",
			"invalid frame dimensions %dx%d", input.Frame.Width, input.Frame.Height)
	}
	w, h := TargetSize(input.Frame.Width, input.Frame.Height, input.Width, input.Height)
	s.logger.Debug("Converting %s %dx%d to rgb24 %dx%d",
		input.Frame.Format, input.Frame.Width, input.Frame.Height, w, h)

	img, err := Convert(input.Frame, ports.PixFmtRGB24, w, h)
	if err != nil {
		return pipeline.ConvertResult{}, err
	}
	return pipeline.ConvertResult{Image: img, SourceFormat: input.Frame.Format}, nil
}

// TargetSize resolves requested output dimensions. Zero for both keeps
// the source size; zero for one side keeps the aspect ratio. A source
// without dimensions leaves the request as is.
func TargetSize(srcW, srcH, w, h int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return w, h
	}
	switch {
	case w <= 0 && h <= 0:
		return srcW, srcH
	case w <= 0:
		w = max(1, (srcW*h+srcH/2)/srcH)
	case h <= 0:
		h = max(1, (srcH*w+srcW/2)/srcW)
	}
	return w, h
}

// Convert remaps frame into target at width x height, resampling
// bilinearly when the size differs from the frame. RGB24 is the only
// supported target.
func Convert(frame *ports.DecodedFrame, target ports.PixelFormat, width, height int) (ports.RasterImage, error) {
	if target != ports.PixFmtRGB24 {
		return ports.RasterImage{}, ports.Errorf(ports.ErrConversion, "convert",
			"unsupported target format %s", target)
	}
	if frame.Width <= 0 || frame.Height <= 0 {
		return ports.RasterImage{}, ports.Errorf(ports.ErrConversion, "convert",
			"invalid frame dimensions %dx%d", frame.Width, frame.Height)
	}
	if width <= 0 || height <= 0 {
		return ports.RasterImage{}, ports.Errorf(ports.ErrConversion, "convert",
			"invalid target dimensions %dx%d", width, height)
	}

	out, err := toRGB24(frame)
	if err != nil {
		return ports.RasterImage{}, err
	}
	if width != frame.Width || height != frame.Height {
		out = resize(out, width, height)
	}
	if err := out.Validate(); err != nil {
		return ports.RasterImage{}, ports.NewError(ports.ErrConversion, "convert", err)
	}
	return out, nil
}

func toRGB24(f *ports.DecodedFrame) (ports.RasterImage, error) {
	if l, ok := yuvLayouts[f.Format]; ok {
		return planarYUV(f, l)
	}
	switch f.Format {
	case ports.PixFmtNV12:
		return nv12(f)
	case ports.PixFmtGray8:
		return packed(f, 1)
	case ports.PixFmtRGB24:
		return packed(f, 3)
	case ports.PixFmtRGBA:
		return packed(f, 4)
	}
	return ports.RasterImage{}, ports.Errorf(ports.ErrConversion, "convert",
		"unsupported pixel format %s", f.Format)
}

// layout describes a planar YUV format by its chroma subsampling shifts.
type layout struct {
	hshift, vshift uint
	full           bool
}

var yuvLayouts = map[ports.PixelFormat]layout{
	ports.PixFmtYUV420P:  {1, 1, false},
	ports.PixFmtYUVJ420P: {1, 1, true},
	ports.PixFmtYUV422P:  {1, 0, false},
	ports.PixFmtYUVJ422P: {1, 0, true},
	ports.PixFmtYUV444P:  {0, 0, false},
	ports.PixFmtYUVJ444P: {0, 0, true},
	ports.PixFmtYUV440P:  {0, 1, false},
	ports.PixFmtYUVJ440P: {0, 1, true},
	ports.PixFmtYUV411P:  {2, 0, false},
	ports.PixFmtYUVJ411P: {2, 0, true},
	ports.PixFmtYUV410P:  {2, 1, false},
	ports.PixFmtYUVJ410P: {2, 1, true},
}

func (l layout) chromaSize(w, h int) (int, int) {
	return (w + 1<<l.hshift - 1) >> l.hshift, (h + 1<<l.vshift - 1) >> l.vshift
}

func planarYUV(f *ports.DecodedFrame, l layout) (ports.RasterImage, error) {
	cw, ch := l.chromaSize(f.Width, f.Height)
	if err := checkPlanes(f, [][2]int{{f.Width, f.Height}, {cw, ch}, {cw, ch}}); err != nil {
		return ports.RasterImage{}, err
	}

	out := ports.NewRasterImage(f.Width, f.Height)
	yp, up, vp := f.Planes[0], f.Planes[1], f.Planes[2]
	ys, us, vs := f.Strides[0], f.Strides[1], f.Strides[2]
	i := 0
	for y := 0; y < f.Height; y++ {
		cy := y >> l.vshift
		for x := 0; x < f.Width; x++ {
			cx := x >> l.hshift
			r, g, b := yuvToRGB(yp[y*ys+x], up[cy*us+cx], vp[cy*vs+cx], l.full)
			out.Pix[i], out.Pix[i+1], out.Pix[i+2] = r, g, b
			i += 3
		}
	}
	return out, nil
}

func nv12(f *ports.DecodedFrame) (ports.RasterImage, error) {
	cw, ch := (f.Width+1)/2, (f.Height+1)/2
	if err := checkPlanes(f, [][2]int{{f.Width, f.Height}, {cw * 2, ch}}); err != nil {
		return ports.RasterImage{}, err
	}

	out := ports.NewRasterImage(f.Width, f.Height)
	yp, uv := f.Planes[0], f.Planes[1]
	ys, uvs := f.Strides[0], f.Strides[1]
	i := 0
	for y := 0; y < f.Height; y++ {
		row := (y / 2) * uvs
		for x := 0; x < f.Width; x++ {
			c := row + (x/2)*2
			r, g, b := yuvToRGB(yp[y*ys+x], uv[c], uv[c+1], false)
			out.Pix[i], out.Pix[i+1], out.Pix[i+2] = r, g, b
			i += 3
		}
	}
	return out, nil
}

// packed handles single-plane gray, RGB and RGBA frames.
func packed(f *ports.DecodedFrame, bpp int) (ports.RasterImage, error) {
	if err := checkPlanes(f, [][2]int{{f.Width * bpp, f.Height}}); err != nil {
		return ports.RasterImage{}, err
	}

	out := ports.NewRasterImage(f.Width, f.Height)
	src, stride := f.Planes[0], f.Strides[0]
	i := 0
	for y := 0; y < f.Height; y++ {
		row := src[y*stride:]
		for x := 0; x < f.Width; x++ {
			p := row[x*bpp:]
			if bpp == 1 {
				out.Pix[i], out.Pix[i+1], out.Pix[i+2] = p[0], p[0], p[0]
			} else {
				out.Pix[i], out.Pix[i+1], out.Pix[i+2] = p[0], p[1], p[2]
			}
			i += 3
		}
	}
	return out, nil
}

// checkPlanes verifies plane count and that each plane holds rows of
// at least the given byte width.
func checkPlanes(f *ports.DecodedFrame, dims [][2]int) error {
	if len(f.Planes) < len(dims) || len(f.Strides) < len(dims) {
		return ports.Errorf(ports.ErrConversion, "convert",
			"%s frame has %d planes, want %d", f.Format, len(f.Planes), len(dims))
	}
	for i, d := range dims {
		rowBytes, rows := d[0], d[1]
		stride := f.Strides[i]
		if stride < rowBytes {
			return ports.Errorf(ports.ErrConversion, "convert",
				"plane %d stride %d shorter than row of %d bytes", i, stride, rowBytes)
		}
		if need := stride*(rows-1) + rowBytes; len(f.Planes[i]) < need {
			return ports.Errorf(ports.ErrConversion, "convert",
				"plane %d is %d bytes, want at least %d", i, len(f.Planes[i]), need)
		}
	}
	return nil
}

// yuvToRGB converts one BT.601 sample. Limited range uses the integer
// approximation; full range (JPEG) defers to image/color.
func yuvToRGB(y, u, v byte, full bool) (byte, byte, byte) {
	if full {
		return color.YCbCrToRGB(y, u, v)
	}
	c := int(y) - 16
	d := int(u) - 128
	e := int(v) - 128
	r := clamp((298*c + 409*e + 128) >> 8)
	g := clamp((298*c - 100*d - 208*e + 128) >> 8)
	b := clamp((298*c + 516*d + 128) >> 8)
	return r, g, b
}

func clamp(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func resize(src ports.RasterImage, width, height int) ports.RasterImage {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src.RGBA(), image.Rect(0, 0, src.Width, src.Height), draw.Src, nil)

	out := ports.NewRasterImage(width, height)
	for i, j := 0, 0; j < len(out.Pix); i, j = i+4, j+3 {
		out.Pix[j], out.Pix[j+1], out.Pix[j+2] = dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2]
	}
	return out
}
