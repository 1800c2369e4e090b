package ffmpegdecoder

import (
	"bytes"
	"errors"
	"io"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/pion/webrtc/v4/pkg/media/ivfreader"

	"github.com/user/thumbnailer/pkg/ports"
)

func TestNew_UnsupportedCodec(t *testing.T) {
	_, err := New(ports.StreamDescriptor{Codec: ports.CodecMJPEG, Width: 16, Height: 16})
	if !errors.Is(err, ErrUnsupportedCodec) {
		t.Errorf("expected ErrUnsupportedCodec, got %v", err)
	}
}

func TestNew_UnknownDimensions(t *testing.T) {
	_, err := New(ports.StreamDescriptor{Codec: ports.CodecH264})
	if !errors.Is(err, ErrDecodeFailed) {
		t.Errorf("expected ErrDecodeFailed, got %v", err)
	}
}

func TestFindFFmpeg_CustomPathMissing(t *testing.T) {
	SetFFmpegPath(filepath.Join(t.TempDir(), "no-ffmpeg"))
	defer SetFFmpegPath("")

	if _, err := FindFFmpeg(); !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("expected ErrFFmpegNotFound, got %v", err)
	}
	if IsAvailable() {
		t.Error("expected IsAvailable to be false")
	}
}

func TestFindFFmpeg_EnvPathMissing(t *testing.T) {
	t.Setenv("FFMPEG_PATH", filepath.Join(t.TempDir(), "no-ffmpeg"))

	if _, err := FindFFmpeg(); !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("expected ErrFFmpegNotFound, got %v", err)
	}
}

func TestFrameSize_OddDimensions(t *testing.T) {
	d := &Decoder{width: 5, height: 3}
	// 15 luma + 2 * (3*2) chroma
	if got := d.frameSize(); got != 27 {
		t.Errorf("frameSize = %d, want 27", got)
	}
	frame := d.splitFrame(make([]byte, 27))
	if len(frame.Planes[0]) != 15 || len(frame.Planes[1]) != 6 || len(frame.Planes[2]) != 6 {
		t.Errorf("unexpected plane sizes %d/%d/%d", len(frame.Planes[0]), len(frame.Planes[1]), len(frame.Planes[2]))
	}
	if frame.Strides[1] != 3 {
		t.Errorf("chroma stride = %d, want 3", frame.Strides[1])
	}
}

// encodeH264 produces a short Annex B stream with ffmpeg, skipping the
// test when ffmpeg or libx264 is unavailable.
func encodeH264(t *testing.T) []byte {
	t.Helper()
	path, err := FindFFmpeg()
	if err != nil {
		t.Skip("ffmpeg not available")
	}
	var out bytes.Buffer
	cmd := exec.Command(path,
		"-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=size=64x48:rate=5",
		"-t", "1",
		"-c:v", "libx264", "-g", "5", "-bf", "0",
		"-f", "h264", "pipe:1",
	)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		t.Skipf("cannot encode h264 fixture: %v", err)
	}
	return out.Bytes()
}

func TestDecoder_DecodesGOP(t *testing.T) {
	data := encodeH264(t)

	d, err := New(ports.StreamDescriptor{Codec: ports.CodecH264, Width: 64, Height: 48})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer d.Close()

	if err := d.SendPacket(ports.Packet{PTS: 7, Keyframe: true, Data: data}); err != nil {
		t.Fatalf("SendPacket failed: %v", err)
	}
	frame, err := d.ReceiveFrame()
	if err != nil {
		t.Fatalf("ReceiveFrame failed: %v", err)
	}
	if frame.Format != ports.PixFmtYUV420P || frame.Width != 64 || frame.Height != 48 {
		t.Errorf("frame = %v %dx%d, want yuv420p 64x48", frame.Format, frame.Width, frame.Height)
	}
	if frame.PTS != 7 {
		t.Errorf("PTS = %d, want 7", frame.PTS)
	}
}

func TestDecoder_Garbage(t *testing.T) {
	if !IsAvailable() {
		t.Skip("ffmpeg not available")
	}
	d, err := New(ports.StreamDescriptor{Codec: ports.CodecH264, Width: 64, Height: 48})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer d.Close()

	garbage := append([]byte{0, 0, 0, 1, 0x65}, bytes.Repeat([]byte{0xff}, 64)...)
	if err := d.SendPacket(ports.Packet{Keyframe: true, Data: garbage}); err == nil {
		if _, err := d.ReceiveFrame(); err == nil {
			t.Error("expected garbage input to produce no frame")
		}
	}
}

func TestInput_Framing(t *testing.T) {
	units := [][]byte{{0, 0, 0, 1, 0x65, 1}, {0, 0, 0, 1, 0x41, 2}}

	annexB := &Decoder{format: formats[ports.CodecH264], width: 16, height: 16, units: units}
	if got := annexB.input(); !bytes.Equal(got, bytes.Join(units, nil)) {
		t.Errorf("h264 input = %x, want concatenated units", got)
	}

	for codec, fourcc := range map[ports.Codec]string{
		ports.CodecVP8: "VP80",
		ports.CodecVP9: "VP90",
		ports.CodecAV1: "AV01",
	} {
		d := &Decoder{format: formats[codec], width: 64, height: 48, units: units}
		reader, header, err := ivfreader.NewWith(bytes.NewReader(d.input()))
		if err != nil {
			t.Fatalf("%s: read IVF header: %v", codec, err)
		}
		if header.FourCC != fourcc || header.Width != 64 || header.Height != 48 {
			t.Errorf("%s: header = %s %dx%d, want %s 64x48", codec, header.FourCC, header.Width, header.Height, fourcc)
		}
		if header.NumFrames != uint32(len(units)) {
			t.Errorf("%s: NumFrames = %d, want %d", codec, header.NumFrames, len(units))
		}
		for i, want := range units {
			data, fh, err := reader.ParseNextFrame()
			if err != nil {
				t.Fatalf("%s: frame %d: %v", codec, i, err)
			}
			if !bytes.Equal(data, want) || fh.Timestamp != uint64(i) {
				t.Errorf("%s: frame %d = %x at %d, want %x at %d", codec, i, data, fh.Timestamp, want, i)
			}
		}
		if _, _, err := reader.ParseNextFrame(); !errors.Is(err, io.EOF) {
			t.Errorf("%s: expected EOF after %d frames, got %v", codec, len(units), err)
		}
	}
}

func TestSendPacket_SkipsLeadingNonKeyframes(t *testing.T) {
	d := &Decoder{format: formats[ports.CodecVP9], width: 16, height: 16}
	if err := d.SendPacket(ports.Packet{Data: []byte{1, 2, 3}}); err != nil {
		t.Fatalf("SendPacket failed: %v", err)
	}
	if len(d.units) != 0 {
		t.Errorf("buffered %d units, want 0", len(d.units))
	}
	if _, err := d.ReceiveFrame(); !errors.Is(err, ports.ErrAgain) {
		t.Errorf("expected ErrAgain, got %v", err)
	}
}

// encodeVP9 produces IVF-framed VP9 packets with ffmpeg, skipping the
// test when ffmpeg or libvpx is unavailable.
func encodeVP9(t *testing.T) [][]byte {
	t.Helper()
	path, err := FindFFmpeg()
	if err != nil {
		t.Skip("ffmpeg not available")
	}
	var out bytes.Buffer
	cmd := exec.Command(path,
		"-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=size=64x48:rate=5",
		"-t", "1",
		"-c:v", "libvpx-vp9", "-g", "5", "-deadline", "realtime",
		"-f", "ivf", "pipe:1",
	)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		t.Skipf("cannot encode vp9 fixture: %v", err)
	}

	reader, _, err := ivfreader.NewWith(&out)
	if err != nil {
		t.Fatalf("read IVF: %v", err)
	}
	var packets [][]byte
	for {
		data, _, err := reader.ParseNextFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("read IVF frame: %v", err)
		}
		packets = append(packets, data)
	}
	if len(packets) < 2 {
		t.Skipf("encoder produced %d packets", len(packets))
	}
	return packets
}

func TestDecoder_DecodesVP9(t *testing.T) {
	packets := encodeVP9(t)

	d, err := New(ports.StreamDescriptor{Codec: ports.CodecVP9, Width: 64, Height: 48})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer d.Close()

	for i, data := range packets[:2] {
		if err := d.SendPacket(ports.Packet{PTS: int64(100 + i), Keyframe: i == 0, Data: data}); err != nil {
			t.Fatalf("SendPacket %d failed: %v", i, err)
		}
	}
	for i := 0; i < 2; i++ {
		frame, err := d.ReceiveFrame()
		if err != nil {
			t.Fatalf("ReceiveFrame %d failed: %v", i, err)
		}
		if frame.Width != 64 || frame.Height != 48 || frame.Format != ports.PixFmtYUV420P {
			t.Errorf("frame %d = %v %dx%d, want yuv420p 64x48", i, frame.Format, frame.Width, frame.Height)
		}
		if frame.PTS != int64(100+i) {
			t.Errorf("frame %d PTS = %d, want %d", i, frame.PTS, 100+i)
		}
	}
}
