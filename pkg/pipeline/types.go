package pipeline

import (
	"github.com/user/thumbnailer/pkg/ports"
)

// =============================================================================
// Select Stage Types
// =============================================================================

// SelectInput lists the streams of an opened container.
type SelectInput struct {
	Streams []ports.StreamDescriptor
}

// SelectResult is the chosen video stream.
type SelectResult struct {
	Stream ports.StreamDescriptor
}

// =============================================================================
// Seek Stage Types
// =============================================================================

// SeekInput positions Source on a stream.
type SeekInput struct {
	Source      ports.MediaSource
	StreamIndex int
	Target      int64 // Microseconds from the start of the container
	Fallback    bool  // Retry at 0 when Target cannot be reached
}

// SeekResult reports where reading resumed.
type SeekResult struct {
	Target   int64 // Effective target in microseconds
	FellBack bool  // True when Target was replaced by 0
}

// =============================================================================
// Convert Stage Types
// =============================================================================

// ConvertInput is a decoded frame and the requested output size. Zero
// dimensions keep the frame's own size.
type ConvertInput struct {
	Frame  *ports.DecodedFrame
	Width  int
	Height int
}

// ConvertResult is the packed RGB24 picture.
type ConvertResult struct {
	Image        ports.RasterImage
	SourceFormat ports.PixelFormat
}

// =============================================================================
// Write Stage Types
// =============================================================================

// WriteInput is an image and its destination.
type WriteInput struct {
	Image   ports.RasterImage
	Path    string
	Quality int // JPEG quality 1-100 (default: 90)
}

// WriteResult describes the written file.
type WriteResult struct {
	Path   string
	Format ports.ImageFormat
	Bytes  int64
}
