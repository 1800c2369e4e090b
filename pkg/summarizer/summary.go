// Package summarizer provides summary generation for extraction results.
package summarizer

import (
	"time"

	"github.com/user/thumbnailer/pkg/orchestrator"
)

// Summary contains all data collected during an extraction run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string

	// Input information
	Input InputInfo

	// Stream selection and decoding
	Stream StreamInfo

	// Seek results
	Seek SeekInfo

	// Output image details
	Output OutputInfo
}

// InputInfo describes the opened container.
type InputInfo struct {
	Path string
}

// StreamInfo describes the chosen video stream.
type StreamInfo struct {
	Index   int
	Codec   string
	Width   int
	Height  int
	Decoder string
}

// SeekInfo contains seek and frame timing.
type SeekInfo struct {
	TargetMicros   int64
	FellBack       bool
	FramePTSMicros int64
	PacketsRead    int
	PacketsDropped int
}

// OutputInfo contains information about the written thumbnail.
type OutputInfo struct {
	Path         string
	Format       string
	FileSize     int64
	Width        int
	Height       int
	SourceFormat string
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithInput sets input information.
func (b *Builder) WithInput(path string) *Builder {
	b.summary.Input = InputInfo{Path: path}
	return b
}

// WithRun copies the stream, seek and output details of a finished run.
func (b *Builder) WithRun(result orchestrator.RunResult) *Builder {
	b.summary.RunID = result.RunID
	b.summary.Stream = StreamInfo{
		Index:   result.Stream.Index,
		Codec:   string(result.Stream.Codec),
		Width:   result.Stream.Width,
		Height:  result.Stream.Height,
		Decoder: result.Decoder,
	}
	b.summary.Seek = SeekInfo{
		TargetMicros:   result.SeekTarget,
		FellBack:       result.SeekFellBack,
		FramePTSMicros: result.FramePTS,
		PacketsRead:    result.PacketsRead,
		PacketsDropped: result.PacketsDropped,
	}
	b.summary.Output = OutputInfo{
		Path:         result.Output.Path,
		FileSize:     result.Output.Bytes,
		Width:        result.Image.Width,
		Height:       result.Image.Height,
		SourceFormat: result.SourceFormat.String(),
	}
	if result.Output.Path != "" {
		b.summary.Output.Format = result.Output.Format.String()
	}
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
