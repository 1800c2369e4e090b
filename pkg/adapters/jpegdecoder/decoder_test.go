package jpegdecoder

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"testing"

	"github.com/user/thumbnailer/pkg/fixtures"
	"github.com/user/thumbnailer/pkg/ports"
)

func TestDecoder_PushPull(t *testing.T) {
	d := New()
	defer d.Close()

	if _, err := d.ReceiveFrame(); !errors.Is(err, ports.ErrAgain) {
		t.Fatalf("expected ErrAgain before input, got %v", err)
	}

	data, err := fixtures.SolidJPEG(64, 48, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.SendPacket(ports.Packet{PTS: 42, Data: data, Keyframe: true}); err != nil {
		t.Fatalf("SendPacket failed: %v", err)
	}

	frame, err := d.ReceiveFrame()
	if err != nil {
		t.Fatalf("ReceiveFrame failed: %v", err)
	}
	if frame.Width != 64 || frame.Height != 48 {
		t.Errorf("dims = %dx%d, want 64x48", frame.Width, frame.Height)
	}
	if frame.PTS != 42 {
		t.Errorf("PTS = %d, want 42", frame.PTS)
	}
	if frame.Format != ports.PixFmtYUVJ420P {
		t.Errorf("format = %v, want yuvj420p", frame.Format)
	}
	if len(frame.Planes) != 3 || len(frame.Strides) != 3 {
		t.Errorf("expected 3 planes")
	}

	if _, err := d.ReceiveFrame(); !errors.Is(err, ports.ErrAgain) {
		t.Errorf("expected ErrAgain after drain, got %v", err)
	}
	if err := d.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if _, err := d.ReceiveFrame(); err != io.EOF {
		t.Errorf("expected io.EOF after flush, got %v", err)
	}
}

func TestDecoder_Gray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 16, 8))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}

	d := New()
	if err := d.SendPacket(ports.Packet{Data: buf.Bytes()}); err != nil {
		t.Fatalf("SendPacket failed: %v", err)
	}
	frame, err := d.ReceiveFrame()
	if err != nil {
		t.Fatalf("ReceiveFrame failed: %v", err)
	}
	if frame.Format != ports.PixFmtGray8 {
		t.Errorf("format = %v, want gray", frame.Format)
	}
}

func TestDecoder_Corrupt(t *testing.T) {
	d := New()
	err := d.SendPacket(ports.Packet{Data: []byte{0xde, 0xad, 0xbe, 0xef}})
	if !errors.Is(err, ErrDecodeFailed) {
		t.Errorf("expected ErrDecodeFailed, got %v", err)
	}
}

func TestDecoder_Closed(t *testing.T) {
	d := New()
	d.Close()
	if err := d.SendPacket(ports.Packet{}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
