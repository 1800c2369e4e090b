// Package ivfdemux reads IVF files, the simple frame container used for
// VP8, VP9 and AV1 elementary streams.
package ivfdemux

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pion/webrtc/v4/pkg/media/ivfreader"

	"github.com/user/thumbnailer/pkg/adapters/codecdetect"
	"github.com/user/thumbnailer/pkg/ports"
)

const signature = "DKIF"

// Format is the IVF container format.
type Format struct{}

// Name returns "ivf".
func (Format) Name() string { return "ivf" }

// Probe accepts files starting with the DKIF signature.
func (Format) Probe(header []byte, mime string) bool {
	return mime == "video/x-ivf" || bytes.HasPrefix(header, []byte(signature))
}

// Open reads the file header and indexes every frame.
func (Format) Open(path string) (ports.MediaSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ports.NewError(ports.ErrOpen, "open", err)
	}

	d, err := newDemuxer(f)
	if err != nil {
		f.Close()
		return nil, ports.NewError(ports.ErrOpen, "parse ivf", err)
	}
	return d, nil
}

// countingReader tracks the file offset consumed by the ivf reader.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

type frame struct {
	offset int64
	size   int
	pts    int64
	key    bool
}

func newDemuxer(f *os.File) (*Demuxer, error) {
	cr := &countingReader{r: f}
	reader, header, err := ivfreader.NewWith(cr)
	if err != nil {
		return nil, err
	}
	if header.TimebaseDenominator == 0 || header.TimebaseNumerator == 0 {
		return nil, errors.New("invalid time base")
	}

	codec := codecdetect.FromFourCC(header.FourCC)
	var frames []frame
	for {
		data, fh, err := reader.ParseNextFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", len(frames), err)
		}
		frames = append(frames, frame{
			offset: cr.n - int64(len(data)),
			size:   len(data),
			pts:    int64(fh.Timestamp),
			key:    isKeyframe(codec, data),
		})
	}

	desc := ports.StreamDescriptor{
		Index:      0,
		Kind:       ports.KindVideo,
		Codec:      codec,
		FourCC:     header.FourCC,
		Width:      int(header.Width),
		Height:     int(header.Height),
		TimeBase:   ports.Rational{Num: int64(header.TimebaseNumerator), Den: int64(header.TimebaseDenominator)},
		FrameCount: len(frames),
	}

	var bytesTotal int64
	durations := make([]int64, len(frames))
	for i, fr := range frames {
		bytesTotal += int64(fr.size)
		if fr.key {
			desc.Keyframes++
		}
		switch {
		case i+1 < len(frames):
			durations[i] = frames[i+1].pts - fr.pts
		case i > 0:
			durations[i] = durations[i-1]
		default:
			durations[i] = 1
		}
	}
	if len(frames) > 0 {
		desc.StartTime = frames[0].pts
		last := len(frames) - 1
		desc.Duration = frames[last].pts + durations[last] - desc.StartTime
		if us := desc.TimeBase.ToMicros(desc.Duration); us > 0 {
			desc.BitRate = bytesTotal * 8 * ports.TimeBaseMicros / us
		}
	}

	return &Demuxer{
		file:      f,
		desc:      desc,
		frames:    frames,
		durations: durations,
	}, nil
}

var _ ports.ContainerFormat = Format{}
