package media

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/user/thumbnailer/pkg/fixtures"
	"github.com/user/thumbnailer/pkg/ports"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func reset() {
	mu.Lock()
	defer mu.Unlock()
	initOnce = sync.Once{}
	initErr = nil
	initialized = false
	extra = nil
	formats = nil
}

func TestOpen_NotInitialized(t *testing.T) {
	reset()
	t.Cleanup(reset)

	_, err := Open(writeFile(t, "clip.mp4", []byte("data")))
	if !errors.Is(err, ErrNotInitialized) || !errors.Is(err, ports.ErrOpen) {
		t.Errorf("expected ErrNotInitialized wrapped as ErrOpen, got %v", err)
	}
}

type namedFormat struct{ ports.ContainerFormat }

func (namedFormat) Name() string { return "mp4" }

func TestInit_DuplicateFormat(t *testing.T) {
	reset()
	t.Cleanup(reset)

	if err := RegisterFormat(namedFormat{}); err != nil {
		t.Fatalf("RegisterFormat failed: %v", err)
	}
	first := Init()
	if first == nil {
		t.Fatal("expected duplicate format error")
	}
	if second := Init(); second != first {
		t.Errorf("expected sticky error %v, got %v", first, second)
	}
}

func TestInit_ConcurrentAndIdempotent(t *testing.T) {
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = Init()
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Init #%d failed: %v", i, err)
		}
	}
	if err := Init(); err != nil {
		t.Errorf("repeated Init failed: %v", err)
	}

	names := Formats()
	if len(names) < 2 {
		t.Fatalf("expected built-in formats, got %v", names)
	}
	if err := RegisterFormat(nil); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestOpen_DetectsFormat(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatal(err)
	}

	mp4Data, err := fixtures.MJPEGMP4(fixtures.MJPEGOptions{Width: 32, Height: 32, Duration: time.Second, FPS: 5})
	if err != nil {
		t.Fatal(err)
	}
	ivfData, err := fixtures.MJPEGIVF(32, 32, 5, 5)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		data   []byte
		format string
	}{
		// Extensions are deliberately misleading; detection uses content.
		{"clip.bin", mp4Data, "mp4"},
		{"clip.mp4", ivfData, "ivf"},
	}
	for _, tt := range tests {
		src, err := Open(writeFile(t, tt.name, tt.data))
		if err != nil {
			t.Errorf("%s: Open failed: %v", tt.name, err)
			continue
		}
		if src.Format() != tt.format {
			t.Errorf("%s: format = %q, want %q", tt.name, src.Format(), tt.format)
		}
		src.Close()
	}
}

func TestOpen_Errors(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(t.TempDir(), "missing.mp4")},
		{"empty", writeFile(t, "empty.mp4", nil)},
		{"text", writeFile(t, "notes.mp4", []byte("plain text, not media"))},
	}
	for _, tt := range tests {
		if _, err := Open(tt.path); !errors.Is(err, ports.ErrOpen) {
			t.Errorf("%s: expected ErrOpen, got %v", tt.name, err)
		}
	}
}

func TestOpener(t *testing.T) {
	data, err := fixtures.MJPEGMP4(fixtures.MJPEGOptions{Width: 32, Height: 32, Duration: time.Second, FPS: 5})
	if err != nil {
		t.Fatal(err)
	}
	src, err := Opener{}.Open(writeFile(t, "clip.mp4", data))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	if len(src.Streams()) != 1 {
		t.Errorf("expected one stream, got %d", len(src.Streams()))
	}
}
