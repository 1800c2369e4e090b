package mp4demux

import (
	"bytes"
	"errors"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Eyevinn/mp4ff/hevc"
	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/thumbnailer/pkg/fixtures"
	"github.com/user/thumbnailer/pkg/ports"
)

func writeFixture(t *testing.T, opts fixtures.MJPEGOptions) string {
	t.Helper()
	data, err := fixtures.MJPEGMP4(opts)
	if err != nil {
		t.Fatalf("build fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "fixture.mp4")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func openFixture(t *testing.T, opts fixtures.MJPEGOptions) ports.MediaSource {
	t.Helper()
	src, err := Format{}.Open(writeFixture(t, opts))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { src.Close() })
	return src
}

func TestFormat_Probe(t *testing.T) {
	f := Format{}
	if !f.Probe(nil, "video/mp4") {
		t.Error("expected video/mp4 to be accepted")
	}
	if !f.Probe([]byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p'}, "application/octet-stream") {
		t.Error("expected ftyp header to be accepted")
	}
	if f.Probe([]byte("DKIF\x00\x00\x20\x00"), "video/x-ivf") {
		t.Error("expected IVF header to be rejected")
	}
}

func TestOpen_NotMP4(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.mp4")
	if err := os.WriteFile(path, []byte("this is not a media file"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Format{}.Open(path)
	if !errors.Is(err, ports.ErrOpen) {
		t.Errorf("expected ErrOpen, got %v", err)
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := Format{}.Open(filepath.Join(t.TempDir(), "missing.mp4"))
	if !errors.Is(err, ports.ErrOpen) {
		t.Errorf("expected ErrOpen, got %v", err)
	}
}

func TestStreams(t *testing.T) {
	for _, fragmented := range []bool{false, true} {
		src := openFixture(t, fixtures.MJPEGOptions{
			Width: 64, Height: 48, Duration: 4 * time.Second, FPS: 5,
			KeyframeInterval: 2 * time.Second, Fragmented: fragmented, WithAudio: true,
		})

		streams := src.Streams()
		if len(streams) != 2 {
			t.Fatalf("fragmented=%v: expected 2 streams, got %d", fragmented, len(streams))
		}

		v := streams[0]
		if v.Kind != ports.KindVideo || v.Codec != ports.CodecMJPEG {
			t.Errorf("fragmented=%v: stream 0 = %v/%v, want video/mjpeg", fragmented, v.Kind, v.Codec)
		}
		if v.Width != 64 || v.Height != 48 {
			t.Errorf("fragmented=%v: dims = %dx%d, want 64x48", fragmented, v.Width, v.Height)
		}
		if v.FrameCount != 20 {
			t.Errorf("fragmented=%v: FrameCount = %d, want 20", fragmented, v.FrameCount)
		}
		if v.Keyframes != 2 {
			t.Errorf("fragmented=%v: Keyframes = %d, want 2", fragmented, v.Keyframes)
		}
		if v.BitRate <= 0 {
			t.Errorf("fragmented=%v: expected positive bitrate", fragmented)
		}

		if streams[1].Kind != ports.KindAudio {
			t.Errorf("fragmented=%v: stream 1 kind = %v, want audio", fragmented, streams[1].Kind)
		}

		if got := src.Duration(); got != 4*ports.TimeBaseMicros {
			t.Errorf("fragmented=%v: Duration = %d, want %d", fragmented, got, 4*ports.TimeBaseMicros)
		}
	}
}

func TestReadPacket_InterleavedOrder(t *testing.T) {
	src := openFixture(t, fixtures.MJPEGOptions{
		Width: 32, Height: 32, Duration: 2 * time.Second, FPS: 5, WithAudio: true,
	})

	counts := map[int]int{}
	var sawAudioBeforeLastVideo bool
	videoLeft := 10
	for {
		pkt, err := src.ReadPacket()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadPacket failed: %v", err)
		}
		counts[pkt.StreamIndex]++
		if pkt.StreamIndex == 0 {
			videoLeft--
		} else if videoLeft > 0 {
			sawAudioBeforeLastVideo = true
		}
	}

	if counts[0] != 10 {
		t.Errorf("video packets = %d, want 10", counts[0])
	}
	if counts[1] != 100 {
		t.Errorf("audio packets = %d, want 100", counts[1])
	}
	if !sawAudioBeforeLastVideo {
		t.Error("expected audio and video packets to be interleaved")
	}
}

func TestReadPacket_MultiTrackFragments(t *testing.T) {
	opts := fixtures.MJPEGOptions{
		Width: 32, Height: 32, Duration: 3 * time.Second, FPS: 5,
		KeyframeInterval: time.Second, Fragmented: true, MultiTrackFragments: true, WithAudio: true,
	}
	src := openFixture(t, opts)

	streams := src.Streams()
	if len(streams) != 2 {
		t.Fatalf("expected 2 streams, got %d", len(streams))
	}
	if streams[0].FrameCount != 15 {
		t.Errorf("FrameCount = %d, want 15", streams[0].FrameCount)
	}
	if streams[0].Keyframes != 3 {
		t.Errorf("Keyframes = %d, want 3", streams[0].Keyframes)
	}

	counts := map[int]int{}
	lastPTS := map[int]int64{0: -1, 1: -1}
	switches, prev := 0, -1
	for {
		pkt, err := src.ReadPacket()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadPacket failed: %v", err)
		}
		if pkt.PTS <= lastPTS[pkt.StreamIndex] {
			t.Errorf("stream %d: pts %d after %d", pkt.StreamIndex, pkt.PTS, lastPTS[pkt.StreamIndex])
		}
		lastPTS[pkt.StreamIndex] = pkt.PTS
		if prev >= 0 && pkt.StreamIndex != prev {
			switches++
		}
		prev = pkt.StreamIndex

		if pkt.StreamIndex == 0 {
			img, err := jpeg.Decode(bytes.NewReader(pkt.Data))
			if err != nil {
				t.Fatalf("video packet %d is not a JPEG: %v", counts[0], err)
			}
			want := fixtures.FrameColor(counts[0])
			r, g, b, _ := img.At(16, 16).RGBA()
			if diff(uint8(r>>8), want.R) > 10 || diff(uint8(g>>8), want.G) > 10 || diff(uint8(b>>8), want.B) > 10 {
				t.Errorf("video packet %d has the wrong frame", counts[0])
			}
		}
		counts[pkt.StreamIndex]++
	}

	if counts[0] != 15 {
		t.Errorf("video packets = %d, want 15", counts[0])
	}
	if counts[1] != 150 {
		t.Errorf("audio packets = %d, want 150", counts[1])
	}
	// Samples are interleaved inside each mdat, not grouped per traf.
	if switches < 20 {
		t.Errorf("stream switches = %d, expected packets in mdat order", switches)
	}
}

func TestSeek_MultiTrackFragments(t *testing.T) {
	opts := fixtures.MJPEGOptions{
		Width: 32, Height: 32, Duration: 4 * time.Second, FPS: 5,
		KeyframeInterval: 2 * time.Second, Fragmented: true, MultiTrackFragments: true, WithAudio: true,
	}
	src := openFixture(t, opts)

	if err := src.Seek(0, 3*ports.TimeBaseMicros); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	for {
		pkt, err := src.ReadPacket()
		if err != nil {
			t.Fatalf("ReadPacket failed: %v", err)
		}
		if pkt.StreamIndex != 0 {
			continue
		}
		if !pkt.Keyframe {
			t.Error("first video packet after seek is not a keyframe")
		}
		tb := src.Streams()[0].TimeBase
		if got := tb.ToMicros(pkt.PTS); got != 2*ports.TimeBaseMicros {
			t.Errorf("first video packet at %dus, want %dus", got, 2*ports.TimeBaseMicros)
		}
		break
	}
}

func TestSeek_LandsOnPrecedingKeyframe(t *testing.T) {
	for _, fragmented := range []bool{false, true} {
		opts := fixtures.MJPEGOptions{
			Width: 32, Height: 32, Duration: 30 * time.Second, FPS: 5,
			KeyframeInterval: 2 * time.Second, Fragmented: fragmented,
		}
		src := openFixture(t, opts)

		// 11s lies between the keyframes at 10s and 12s.
		if err := src.Seek(0, 11*ports.TimeBaseMicros); err != nil {
			t.Fatalf("Seek failed: %v", err)
		}
		pkt, err := src.ReadPacket()
		if err != nil {
			t.Fatalf("ReadPacket failed: %v", err)
		}
		if !pkt.Keyframe {
			t.Errorf("fragmented=%v: expected keyframe after seek", fragmented)
		}
		streams := src.Streams()
		if got := streams[0].TimeBase.ToMicros(pkt.PTS); got != 10*ports.TimeBaseMicros {
			t.Errorf("fragmented=%v: PTS = %dus, want 10s", fragmented, got)
		}

		img, err := jpeg.Decode(bytes.NewReader(pkt.Data))
		if err != nil {
			t.Fatalf("decode sample: %v", err)
		}
		want := fixtures.FrameColor(opts.FrameIndexAt(10 * time.Second))
		r, g, b, _ := img.At(0, 0).RGBA()
		if diff(uint8(r>>8), want.R) > 4 || diff(uint8(g>>8), want.G) > 4 || diff(uint8(b>>8), want.B) > 4 {
			t.Errorf("fragmented=%v: sample color = %d,%d,%d, want about %v", fragmented, r>>8, g>>8, b>>8, want)
		}
	}
}

func TestSeek_ExactKeyframe(t *testing.T) {
	src := openFixture(t, fixtures.MJPEGOptions{
		Width: 32, Height: 32, Duration: 10 * time.Second, FPS: 5, KeyframeInterval: 2 * time.Second,
	})

	if err := src.Seek(0, 4*ports.TimeBaseMicros); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	pkt, _ := src.ReadPacket()
	if got := src.Streams()[0].TimeBase.ToMicros(pkt.PTS); got != 4*ports.TimeBaseMicros {
		t.Errorf("PTS = %dus, want 4s", got)
	}
}

func TestSeek_Zero(t *testing.T) {
	src := openFixture(t, fixtures.MJPEGOptions{Width: 32, Height: 32, Duration: 2 * time.Second, FPS: 5})

	if err := src.Seek(0, 0); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	pkt, _ := src.ReadPacket()
	if pkt.PTS != 0 || !pkt.Keyframe {
		t.Errorf("expected first keyframe at 0, got PTS %d keyframe %v", pkt.PTS, pkt.Keyframe)
	}
}

func TestSeek_Errors(t *testing.T) {
	src := openFixture(t, fixtures.MJPEGOptions{Width: 32, Height: 32, Duration: 5 * time.Second, FPS: 5})

	tests := []struct {
		name   string
		stream int
		target int64
	}{
		{"beyond duration", 0, 10 * ports.TimeBaseMicros},
		{"negative", 0, -1},
		{"unknown stream", 3, 0},
	}
	for _, tt := range tests {
		if err := src.Seek(tt.stream, tt.target); !errors.Is(err, ports.ErrSeek) {
			t.Errorf("%s: expected ErrSeek, got %v", tt.name, err)
		}
	}
}

func TestClose_Idempotent(t *testing.T) {
	src := openFixture(t, fixtures.MJPEGOptions{Width: 32, Height: 32, Duration: time.Second, FPS: 5})

	if err := src.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if _, err := src.ReadPacket(); err == nil {
		t.Error("expected ReadPacket to fail after Close")
	}
}

func TestLengthPrefixedToAnnexB(t *testing.T) {
	tests := []struct {
		name       string
		lengthSize int
		in         []byte
		want       []byte
	}{
		{
			name:       "four byte prefix",
			lengthSize: 4,
			in:         []byte{0, 0, 0, 2, 0x65, 0x88, 0, 0, 0, 1, 0x41},
			want:       []byte{0, 0, 0, 1, 0x65, 0x88, 0, 0, 0, 1, 0x41},
		},
		{
			name:       "two byte prefix",
			lengthSize: 2,
			in:         []byte{0, 2, 0x26, 0x01, 0, 1, 0x02},
			want:       []byte{0, 0, 0, 1, 0x26, 0x01, 0, 0, 0, 1, 0x02},
		},
		{
			name:       "one byte prefix",
			lengthSize: 1,
			in:         []byte{3, 0x26, 0x01, 0xaf},
			want:       []byte{0, 0, 0, 1, 0x26, 0x01, 0xaf},
		},
		{
			name:       "truncated unit dropped",
			lengthSize: 4,
			in:         []byte{0, 0, 0, 9, 0x65},
			want:       []byte{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lengthPrefixedToAnnexB(tt.in, tt.lengthSize)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %x, want %x", got, tt.want)
			}
		})
	}
}

func TestNALLengthSize(t *testing.T) {
	if got := nalLengthSize(nil); got != 4 {
		t.Errorf("no sample entry: got %d, want 4", got)
	}

	avc := &mp4.VisualSampleEntryBox{AvcC: &mp4.AvcCBox{}}
	if got := nalLengthSize(avc); got != 4 {
		t.Errorf("avcC: got %d, want 4", got)
	}

	for _, minusOne := range []byte{0, 1, 3} {
		vse := &mp4.VisualSampleEntryBox{
			HvcC: &mp4.HvcCBox{DecConfRec: hevc.DecConfRec{LengthSizeMinusOne: minusOne}},
		}
		if got := nalLengthSize(vse); got != int(minusOne)+1 {
			t.Errorf("hvcC LengthSizeMinusOne=%d: got %d, want %d", minusOne, got, minusOne+1)
		}
	}
}

func diff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
