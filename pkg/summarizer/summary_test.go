package summarizer

import (
	"testing"
	"time"

	"github.com/user/thumbnailer/pkg/orchestrator"
	"github.com/user/thumbnailer/pkg/pipeline"
	"github.com/user/thumbnailer/pkg/ports"
)

func sampleRun() orchestrator.RunResult {
	return orchestrator.RunResult{
		RunID: "run-1",
		Stream: ports.StreamDescriptor{
			Index:  1,
			Kind:   ports.KindVideo,
			Codec:  ports.CodecMJPEG,
			Width:  640,
			Height: 360,
		},
		Decoder:        "mjpeg/native",
		SeekTarget:     10_000_000,
		FramePTS:       10_000_000,
		SourceFormat:   ports.PixFmtYUVJ420P,
		PacketsRead:    3,
		PacketsDropped: 2,
		Image:          ports.RasterImage{Width: 320, Height: 180},
		Output: pipeline.WriteResult{
			Path:   "out/thumb.jpg",
			Format: ports.FormatJPEG,
			Bytes:  2048,
		},
	}
}

func TestNewSummary(t *testing.T) {
	before := time.Now()
	summary := NewSummary()
	after := time.Now()

	if summary.GeneratedAt.Before(before) || summary.GeneratedAt.After(after) {
		t.Errorf("GeneratedAt should be between %v and %v, got %v",
			before, after, summary.GeneratedAt)
	}
}

func TestBuilder_WithInput(t *testing.T) {
	summary := NewBuilder().WithInput("clip.mp4").Build()

	if summary.Input.Path != "clip.mp4" {
		t.Errorf("expected path 'clip.mp4', got '%s'", summary.Input.Path)
	}
}

func TestBuilder_WithRun(t *testing.T) {
	summary := NewBuilder().WithRun(sampleRun()).Build()

	if summary.RunID != "run-1" {
		t.Errorf("expected run ID 'run-1', got '%s'", summary.RunID)
	}
	if summary.Stream.Index != 1 || summary.Stream.Codec != "mjpeg" {
		t.Errorf("unexpected stream info: %+v", summary.Stream)
	}
	if summary.Stream.Decoder != "mjpeg/native" {
		t.Errorf("expected decoder 'mjpeg/native', got '%s'", summary.Stream.Decoder)
	}
	if summary.Seek.FramePTSMicros != 10_000_000 {
		t.Errorf("expected frame PTS 10000000, got %d", summary.Seek.FramePTSMicros)
	}
	if summary.Seek.PacketsRead != 3 || summary.Seek.PacketsDropped != 2 {
		t.Errorf("unexpected packet counts: %+v", summary.Seek)
	}
	if summary.Output.Format != "jpg" {
		t.Errorf("expected format 'jpg', got '%s'", summary.Output.Format)
	}
	if summary.Output.Width != 320 || summary.Output.Height != 180 {
		t.Errorf("expected 320x180, got %dx%d", summary.Output.Width, summary.Output.Height)
	}
}

func TestBuilder_WithRun_NotWritten(t *testing.T) {
	run := sampleRun()
	run.Output = pipeline.WriteResult{}

	summary := NewBuilder().WithRun(run).Build()

	if summary.Output.Format != "" {
		t.Errorf("expected empty format for an unwritten image, got '%s'", summary.Output.Format)
	}
}
