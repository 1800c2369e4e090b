// Package fixtures generates small media files for tests.
//
// Video is Motion JPEG so that every frame can be decoded without an
// external codec. Each frame is a solid color derived from its index,
// which lets tests identify the frame that was extracted.
package fixtures

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"sort"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
)

const (
	videoTimescale = 90000
	audioTimescale = 48000
)

// MJPEGOptions describes a generated Motion JPEG MP4.
type MJPEGOptions struct {
	Width    int
	Height   int
	Duration time.Duration
	FPS      int

	// KeyframeInterval marks every frame at a multiple of this interval as
	// a sync sample; the rest are flagged non-sync. Zero marks only the
	// first frame.
	KeyframeInterval time.Duration

	// Fragmented writes moof/mdat fragments instead of a single moov
	// sample table.
	Fragmented bool

	// MultiTrackFragments puts every track into each fragment, one traf
	// per track, with samples interleaved in decode order inside the
	// mdat. Only meaningful with Fragmented.
	MultiTrackFragments bool

	// WithAudio adds an audio track (track 2) whose packets are
	// interleaved with the video.
	WithAudio bool

	// AudioOnly omits the video track.
	AudioOnly bool

	// Corrupt lists frame indices whose payload is replaced by garbage.
	Corrupt map[int]bool
}

// FrameColor is the solid color of frame i.
func FrameColor(i int) color.RGBA {
	return color.RGBA{
		R: uint8(16 + (i*37)%224),
		G: uint8(16 + (i*11)%224),
		B: uint8(16 + (i*5)%224),
		A: 0xff,
	}
}

// FrameCount returns the number of video frames opts produces.
func (o MJPEGOptions) FrameCount() int {
	return int(o.Duration * time.Duration(o.FPS) / time.Second)
}

// FrameIndexAt returns the index of the frame presented at t.
func (o MJPEGOptions) FrameIndexAt(t time.Duration) int {
	return int(t * time.Duration(o.FPS) / time.Second)
}

func (o MJPEGOptions) isKeyframe(i int) bool {
	if i == 0 {
		return true
	}
	if o.KeyframeInterval <= 0 {
		return false
	}
	every := int(o.KeyframeInterval * time.Duration(o.FPS) / time.Second)
	return every > 0 && i%every == 0
}

// SolidJPEG encodes a width x height JPEG filled with c.
func SolidJPEG(width, height int, c color.Color) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

type sample struct {
	data []byte
	dur  uint32
	sync bool
}

func (o MJPEGOptions) videoSamples() ([]sample, error) {
	n := o.FrameCount()
	dur := uint32(videoTimescale / o.FPS)
	samples := make([]sample, 0, n)
	for i := 0; i < n; i++ {
		var data []byte
		if o.Corrupt[i] {
			data = bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 64)
		} else {
			var err error
			data, err = SolidJPEG(o.Width, o.Height, FrameColor(i))
			if err != nil {
				return nil, err
			}
		}
		samples = append(samples, sample{data: data, dur: dur, sync: o.isKeyframe(i)})
	}
	return samples, nil
}

// One 20ms audio packet per sample; payloads are opaque filler.
func (o MJPEGOptions) audioSamples() []sample {
	n := int(o.Duration / (20 * time.Millisecond))
	samples := make([]sample, n)
	for i := range samples {
		samples[i] = sample{data: bytes.Repeat([]byte{byte(i)}, 32), dur: audioTimescale / 50, sync: true}
	}
	return samples
}

// MJPEGMP4 builds an MP4 file according to opts.
func MJPEGMP4(opts MJPEGOptions) ([]byte, error) {
	if opts.FPS <= 0 {
		opts.FPS = 25
	}

	var tracks [][]sample
	var timescales []uint32

	init := mp4.CreateEmptyInit()
	if !opts.AudioOnly {
		video, err := opts.videoSamples()
		if err != nil {
			return nil, err
		}
		init.AddEmptyTrack(videoTimescale, "video", "und")
		trak := init.Moov.Traks[len(init.Moov.Traks)-1]
		entry := mp4.CreateVisualSampleEntryBox("jpeg", uint16(opts.Width), uint16(opts.Height), nil)
		trak.Mdia.Minf.Stbl.Stsd.AddChild(entry)
		trak.Tkhd.Width = mp4.Fixed32(opts.Width << 16)
		trak.Tkhd.Height = mp4.Fixed32(opts.Height << 16)
		tracks = append(tracks, video)
		timescales = append(timescales, videoTimescale)
	}
	if opts.WithAudio || opts.AudioOnly {
		init.AddEmptyTrack(audioTimescale, "audio", "und")
		tracks = append(tracks, opts.audioSamples())
		timescales = append(timescales, audioTimescale)
	}

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode ftyp: %w", err)
	}

	switch {
	case opts.Fragmented && opts.MultiTrackFragments:
		if err := writeMultiTrackFragmented(&buf, init, tracks, timescales); err != nil {
			return nil, err
		}
	case opts.Fragmented:
		if err := writeFragmented(&buf, init, tracks, timescales); err != nil {
			return nil, err
		}
	default:
		if err := writeProgressive(&buf, init, tracks); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// writeFragmented emits one fragment per track per second of media so
// that tracks interleave in file order.
func writeFragmented(buf *bytes.Buffer, init *mp4.InitSegment, tracks [][]sample, timescales []uint32) error {
	if err := init.Moov.Encode(buf); err != nil {
		return fmt.Errorf("encode moov: %w", err)
	}

	next := make([]int, len(tracks))
	decodeTimes := make([]uint64, len(tracks))
	seq := uint32(1)
	for {
		wrote := false
		for ti, samples := range tracks {
			if next[ti] >= len(samples) {
				continue
			}
			frag, err := mp4.CreateFragment(seq, uint32(ti+1))
			if err != nil {
				return fmt.Errorf("create fragment: %w", err)
			}
			seq++

			var elapsed uint64
			for next[ti] < len(samples) && elapsed < uint64(timescales[ti]) {
				s := samples[next[ti]]
				flags := mp4.NonSyncSampleFlags
				if s.sync {
					flags = mp4.SyncSampleFlags
				}
				frag.AddFullSample(mp4.FullSample{
					Sample: mp4.Sample{
						Flags: flags,
						Size:  uint32(len(s.data)),
						Dur:   s.dur,
					},
					DecodeTime: decodeTimes[ti],
					Data:       s.data,
				})
				decodeTimes[ti] += uint64(s.dur)
				elapsed += uint64(s.dur)
				next[ti]++
			}
			if err := frag.Encode(buf); err != nil {
				return fmt.Errorf("encode fragment: %w", err)
			}
			wrote = true
		}
		if !wrote {
			return nil
		}
	}
}

// writeMultiTrackFragmented emits one fragment per second of media
// holding a traf for every track that still has samples.
func writeMultiTrackFragmented(buf *bytes.Buffer, init *mp4.InitSegment, tracks [][]sample, timescales []uint32) error {
	if err := init.Moov.Encode(buf); err != nil {
		return fmt.Errorf("encode moov: %w", err)
	}

	next := make([]int, len(tracks))
	decodeTimes := make([]uint64, len(tracks))
	for seq := uint32(1); ; seq++ {
		var ids []uint32
		for ti, samples := range tracks {
			if next[ti] < len(samples) {
				ids = append(ids, uint32(ti+1))
			}
		}
		if len(ids) == 0 {
			return nil
		}
		frag, err := mp4.CreateMultiTrackFragment(seq, ids)
		if err != nil {
			return fmt.Errorf("create fragment: %w", err)
		}

		// Window end in seconds; every track fills up to it.
		end := float64(seq)
		for {
			pick := -1
			var pickTime float64
			for ti, samples := range tracks {
				if next[ti] >= len(samples) {
					continue
				}
				t := float64(decodeTimes[ti]) / float64(timescales[ti])
				if t >= end {
					continue
				}
				if pick < 0 || t < pickTime {
					pick, pickTime = ti, t
				}
			}
			if pick < 0 {
				break
			}

			s := tracks[pick][next[pick]]
			flags := mp4.NonSyncSampleFlags
			if s.sync {
				flags = mp4.SyncSampleFlags
			}
			err := frag.AddFullSampleToTrack(mp4.FullSample{
				Sample: mp4.Sample{
					Flags: flags,
					Size:  uint32(len(s.data)),
					Dur:   s.dur,
				},
				DecodeTime: decodeTimes[pick],
				Data:       s.data,
			}, uint32(pick+1))
			if err != nil {
				return fmt.Errorf("add sample: %w", err)
			}
			decodeTimes[pick] += uint64(s.dur)
			next[pick]++
		}

		if err := frag.Encode(buf); err != nil {
			return fmt.Errorf("encode fragment: %w", err)
		}
	}
}

// writeProgressive fills each track's sample table and writes a single
// mdat with one sample per chunk, interleaving tracks in decode order.
func writeProgressive(buf *bytes.Buffer, init *mp4.InitSegment, tracks [][]sample) error {
	moov := init.Moov
	moov.Mvex = nil
	children := moov.Children[:0]
	for _, child := range moov.Children {
		if child.Type() != "mvex" {
			children = append(children, child)
		}
	}
	moov.Children = children

	type placed struct {
		track, index int
		time         float64
	}
	var order []placed
	for ti, samples := range tracks {
		ts := float64(moov.Traks[ti].Mdia.Mdhd.Timescale)
		var t uint64
		for i, s := range samples {
			order = append(order, placed{track: ti, index: i, time: float64(t) / ts})
			t += uint64(s.dur)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		if order[a].time != order[b].time {
			return order[a].time < order[b].time
		}
		return order[a].track < order[b].track
	})

	offsets := make([][]uint32, len(tracks))
	for ti, samples := range tracks {
		offsets[ti] = make([]uint32, len(samples))
		stbl := moov.Traks[ti].Mdia.Minf.Stbl
		var total uint64
		var sync []uint32
		for i, s := range samples {
			if n := len(stbl.Stts.SampleTimeDelta); n > 0 && stbl.Stts.SampleTimeDelta[n-1] == s.dur {
				stbl.Stts.SampleCount[n-1]++
			} else {
				stbl.Stts.SampleCount = append(stbl.Stts.SampleCount, 1)
				stbl.Stts.SampleTimeDelta = append(stbl.Stts.SampleTimeDelta, s.dur)
			}
			stbl.Stsz.SampleSize = append(stbl.Stsz.SampleSize, uint32(len(s.data)))
			if s.sync {
				sync = append(sync, uint32(i+1))
			}
			total += uint64(s.dur)
		}
		stbl.Stsz.SampleNumber = uint32(len(samples))
		if err := stbl.Stsc.AddEntry(1, 1, 1); err != nil {
			return fmt.Errorf("stsc: %w", err)
		}
		if len(sync) != len(samples) {
			stbl.AddChild(&mp4.StssBox{SampleNumber: sync})
		}
		moov.Traks[ti].Mdia.Mdhd.Duration = total
	}

	// Chunk offsets depend on the moov size, which does not depend on
	// their values: encode once to measure, then again for real.
	for ti := range tracks {
		moov.Traks[ti].Mdia.Minf.Stbl.Stco.ChunkOffset = offsets[ti]
	}
	var sized bytes.Buffer
	if err := moov.Encode(&sized); err != nil {
		return fmt.Errorf("encode moov: %w", err)
	}

	pos := uint32(buf.Len() + sized.Len() + 8)
	var mdat bytes.Buffer
	for _, p := range order {
		s := tracks[p.track][p.index]
		offsets[p.track][p.index] = pos
		mdat.Write(s.data)
		pos += uint32(len(s.data))
	}

	if err := moov.Encode(buf); err != nil {
		return fmt.Errorf("encode moov: %w", err)
	}
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(8+mdat.Len()))
	copy(hdr[4:], "mdat")
	buf.Write(hdr[:])
	buf.Write(mdat.Bytes())
	return nil
}
