package ports

import (
	"fmt"
	"image"
)

// RasterImage is a tightly packed RGB24 picture: 3 bytes per pixel,
// rows top to bottom, no padding.
type RasterImage struct {
	Width  int
	Height int
	Pix    []byte
}

// NewRasterImage allocates a zeroed RGB24 image.
func NewRasterImage(width, height int) RasterImage {
	return RasterImage{Width: width, Height: height, Pix: make([]byte, width*height*3)}
}

// Validate checks that the buffer length matches the dimensions.
func (r RasterImage) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("invalid raster dimensions %dx%d", r.Width, r.Height)
	}
	if want := r.Width * r.Height * 3; len(r.Pix) != want {
		return fmt.Errorf("raster buffer is %d bytes, want %d", len(r.Pix), want)
	}
	return nil
}

// RGBA expands the raster into an opaque *image.RGBA for encoding.
func (r RasterImage) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for i, j := 0, 0; i+2 < len(r.Pix) && j+3 < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j] = r.Pix[i]
		img.Pix[j+1] = r.Pix[i+1]
		img.Pix[j+2] = r.Pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}
