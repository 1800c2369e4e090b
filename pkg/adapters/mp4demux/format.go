// Package mp4demux reads ISO base media files (MP4, MOV, fragmented MP4).
package mp4demux

import (
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/thumbnailer/pkg/ports"
)

// Format is the ISO BMFF container format.
type Format struct{}

var mimeTypes = map[string]bool{
	"video/mp4":       true,
	"audio/mp4":       true,
	"video/quicktime": true,
	"video/3gpp":      true,
	"video/3gpp2":     true,
	"video/x-m4v":     true,
	"audio/x-m4a":     true,
}

// Name returns "mp4".
func (Format) Name() string { return "mp4" }

// Probe accepts MP4 family MIME types or a leading ftyp, styp or moov box.
func (Format) Probe(header []byte, mime string) bool {
	if mimeTypes[mime] {
		return true
	}
	if len(header) < 8 {
		return false
	}
	switch string(header[4:8]) {
	case "ftyp", "styp", "moov":
		return true
	}
	return false
}

// Open parses the file's box structure and indexes every sample.
func (Format) Open(path string) (ports.MediaSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ports.NewError(ports.ErrOpen, "open", err)
	}

	parsed, err := mp4.DecodeFile(f)
	if err != nil {
		f.Close()
		return nil, ports.NewError(ports.ErrOpen, "parse mp4", err)
	}

	d, err := newDemuxer(f, parsed)
	if err != nil {
		f.Close()
		return nil, ports.NewError(ports.ErrOpen, "index mp4", err)
	}
	return d, nil
}

var _ ports.ContainerFormat = Format{}
