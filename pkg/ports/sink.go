package ports

import (
	"image"
)

// DebugSink receives intermediate extraction results for inspection.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveStreamsJSON saves the stream listing of the opened container.
	SaveStreamsJSON(data []byte) error

	// SavePacketsJSON saves the trace of packets read after seeking.
	SavePacketsJSON(data []byte) error

	// SaveNativeFrame saves the selected frame before color conversion.
	SaveNativeFrame(img image.Image) error
}
