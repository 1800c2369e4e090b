// Package av1decoder decodes AV1 temporal units with libaom.
//
// The libaom backend is compiled only with the "libaom" build tag; other
// builds report the codec as unavailable.
package av1decoder

import "errors"

var (
	// ErrNotAvailable is returned by New when built without libaom.
	ErrNotAvailable = errors.New("av1decoder: built without libaom")

	// ErrDecodeFailed is returned when libaom rejects a packet.
	ErrDecodeFailed = errors.New("av1decoder: decode failed")

	// ErrUnsupportedFormat is returned for high bit depth or unknown
	// chroma layouts.
	ErrUnsupportedFormat = errors.New("av1decoder: unsupported picture format")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("av1decoder: decoder closed")
)
