package imagecodec

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/user/thumbnailer/pkg/ports"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 90, A: 255})
		}
	}
	return img
}

func TestCodec_RoundTrip(t *testing.T) {
	c := New()

	tests := []struct {
		format ports.ImageFormat
		name   string
		magic  []byte
		exact  bool
	}{
		{ports.FormatJPEG, "jpeg", []byte{0xFF, 0xD8}, false},
		{ports.FormatPNG, "png", []byte{0x89, 'P', 'N', 'G'}, true},
		{ports.FormatBMP, "bmp", []byte("BM"), true},
		{ports.FormatTIFF, "tiff", []byte("II"), true},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			data, err := c.EncodeImage(testImage(), tt.format, 90)
			if err != nil {
				t.Fatalf("EncodeImage failed: %v", err)
			}
			if !bytes.HasPrefix(data, tt.magic) {
				t.Errorf("expected %s magic, got % x", tt.format, data[:4])
			}

			img, name, err := image.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("decode %s: %v", tt.format, err)
			}
			if name != tt.name {
				t.Errorf("decoded as %q, want %q", name, tt.name)
			}
			if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 8 {
				t.Errorf("expected 16x8, got %v", img.Bounds())
			}
			if tt.exact {
				r, g, b, _ := img.At(3, 3).RGBA()
				if r>>8 != 200 || g>>8 != 40 || b>>8 != 90 {
					t.Errorf("pixel changed: (%d,%d,%d)", r>>8, g>>8, b>>8)
				}
			}
		})
	}
}

func TestCodec_JPEGQuality(t *testing.T) {
	c := New()
	noisy := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for i := range noisy.Pix {
		noisy.Pix[i] = byte(i * 7)
	}

	low, err := c.EncodeImage(noisy, ports.FormatJPEG, 10)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	high, err := c.EncodeImage(noisy, ports.FormatJPEG, 100)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	if len(low) >= len(high) {
		t.Errorf("expected quality 10 (%d bytes) smaller than quality 100 (%d bytes)", len(low), len(high))
	}

	// Out-of-range quality falls back to the default
	def, _ := c.EncodeImage(noisy, ports.FormatJPEG, DefaultQuality)
	zero, _ := c.EncodeImage(noisy, ports.FormatJPEG, 0)
	if !bytes.Equal(def, zero) {
		t.Error("expected quality 0 to encode like the default quality")
	}
}

func TestCodec_UnsupportedFormat(t *testing.T) {
	if _, err := New().EncodeImage(testImage(), ports.ImageFormat(99), 90); err == nil {
		t.Error("expected error for unsupported format")
	}
}
