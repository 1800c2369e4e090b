// Package media is the entry point for opening media files. It owns the
// registry of container formats; Init must run before Open.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/user/thumbnailer/pkg/adapters/ivfdemux"
	"github.com/user/thumbnailer/pkg/adapters/mp4demux"
	"github.com/user/thumbnailer/pkg/ports"
)

// sniffSize is how much of a file is read to identify its format.
const sniffSize = 3072

var (
	// ErrNotInitialized is returned by Open before Init has succeeded.
	ErrNotInitialized = errors.New("media: Init has not been called")

	// ErrAlreadyInitialized is returned by RegisterFormat after Init.
	ErrAlreadyInitialized = errors.New("media: already initialized")
)

var (
	mu          sync.RWMutex
	initOnce    sync.Once
	initErr     error
	initialized bool
	extra       []ports.ContainerFormat
	formats     []ports.ContainerFormat
)

// RegisterFormat adds a container format ahead of the built-in ones.
// It must be called before Init.
func RegisterFormat(f ports.ContainerFormat) error {
	mu.Lock()
	defer mu.Unlock()
	if initialized {
		return ErrAlreadyInitialized
	}
	extra = append(extra, f)
	return nil
}

// Init builds the format registry. It is safe to call from several
// goroutines and more than once; only the first call does work and its
// result is returned to every caller.
func Init() error {
	initOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()

		all := append(append([]ports.ContainerFormat{}, extra...), mp4demux.Format{}, ivfdemux.Format{})
		seen := make(map[string]bool, len(all))
		for _, f := range all {
			if seen[f.Name()] {
				initErr = fmt.Errorf("media: format %q registered twice", f.Name())
				return
			}
			seen[f.Name()] = true
		}
		formats = all
		initialized = true
	})
	return initErr
}

// Formats returns the registered format names in probe order.
func Formats() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.Name()
	}
	return names
}

// Open identifies the container at path and opens it.
func Open(path string) (ports.MediaSource, error) {
	mu.RLock()
	ready := initialized
	registered := formats
	mu.RUnlock()
	if !ready {
		return nil, ports.NewError(ports.ErrOpen, "open", ErrNotInitialized)
	}

	header, err := readHeader(path)
	if err != nil {
		return nil, ports.NewError(ports.ErrOpen, "open", err)
	}
	mime := mimetype.Detect(header)

	for _, f := range registered {
		if f.Probe(header, mime.String()) {
			return f.Open(path)
		}
	}
	return nil, ports.Errorf(ports.ErrOpen, "open", "%s: unrecognized container format (%s)", path, mime.String())
}

func readHeader(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, sniffSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}
	return buf[:n], nil
}

// Opener adapts the package-level registry to ports.SourceOpener,
// initializing it on first use.
type Opener struct{}

// Open initializes the registry if needed and opens path.
func (Opener) Open(path string) (ports.MediaSource, error) {
	if err := Init(); err != nil {
		return nil, ports.NewError(ports.ErrOpen, "init", err)
	}
	return Open(path)
}

var _ ports.SourceOpener = Opener{}
