package ports

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
)

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
	FormatBMP
	FormatTIFF
)

// String returns the canonical file extension without the dot.
func (f ImageFormat) String() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	case FormatPNG:
		return "png"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	default:
		return "unknown"
	}
}

// FormatFromPath infers the image format from a file extension.
func FormatFromPath(path string) (ImageFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".png":
		return FormatPNG, nil
	case ".bmp":
		return FormatBMP, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	default:
		return FormatJPEG, fmt.Errorf("unsupported image extension %q", filepath.Ext(path))
	}
}

// ImageCodec encodes still images.
type ImageCodec interface {
	// EncodeImage encodes an image to the specified format.
	// Quality applies to lossy formats only (1-100).
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)
}
