package mp4demux

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/thumbnailer/pkg/adapters/codecdetect"
	"github.com/user/thumbnailer/pkg/ports"
)

// entry locates one sample. Progressive samples are read lazily from
// offset; fragment samples carry their payload.
type entry struct {
	stream int
	dts    int64
	pts    int64
	dur    int64
	key    bool
	offset int64
	size   uint32
	data   []byte
}

// track is the per-stream state derived from a trak box.
type track struct {
	id     uint32
	desc   ports.StreamDescriptor
	nal    bool
	nalLen int
	config []byte
	trex   *mp4.TrexBox
}

func moovOf(f *mp4.File) *mp4.MoovBox {
	if f.Moov != nil {
		return f.Moov
	}
	if f.Init != nil {
		return f.Init.Moov
	}
	return nil
}

func buildTracks(moov *mp4.MoovBox) ([]*track, error) {
	if moov == nil {
		return nil, errors.New("no moov box found")
	}
	if len(moov.Traks) == 0 {
		return nil, errors.New("no tracks found")
	}

	tracks := make([]*track, 0, len(moov.Traks))
	for i, trak := range moov.Traks {
		t := &track{desc: ports.StreamDescriptor{Index: i, TimeBase: ports.Rational{Num: 1, Den: 1000}}}
		if trak.Tkhd != nil {
			t.id = trak.Tkhd.TrackID
			t.desc.Width = int(uint32(trak.Tkhd.Width) >> 16)
			t.desc.Height = int(uint32(trak.Tkhd.Height) >> 16)
		}
		if trak.Mdia != nil {
			if trak.Mdia.Hdlr != nil {
				t.desc.Kind = codecdetect.KindFromHandler(trak.Mdia.Hdlr.HandlerType)
			}
			if trak.Mdia.Mdhd != nil && trak.Mdia.Mdhd.Timescale > 0 {
				t.desc.TimeBase.Den = int64(trak.Mdia.Mdhd.Timescale)
			}
		}
		t.desc.Codec, t.desc.FourCC = codecdetect.FromTrack(trak)
		t.nal = t.desc.Codec == ports.CodecH264 || t.desc.Codec == ports.CodecHEVC

		vse := visualEntry(trak)
		t.nalLen = nalLengthSize(vse)
		if vse != nil {
			if vse.Width > 0 && vse.Height > 0 {
				t.desc.Width = int(vse.Width)
				t.desc.Height = int(vse.Height)
			}
			t.config = parameterSets(vse)
			t.desc.CodecConfig = t.config
		}
		if t.desc.Kind != ports.KindVideo {
			t.desc.Width, t.desc.Height = 0, 0
		}

		if moov.Mvex != nil {
			for _, trex := range moov.Mvex.Trexs {
				if trex.TrackID == t.id {
					t.trex = trex
					break
				}
			}
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

func visualEntry(trak *mp4.TrakBox) *mp4.VisualSampleEntryBox {
	if trak.Mdia == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return nil
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			return vse
		}
	}
	return nil
}

// parameterSets returns the out-of-band SPS/PPS (and VPS for HEVC) in
// Annex B form.
func parameterSets(entry *mp4.VisualSampleEntryBox) []byte {
	var out []byte
	if entry.AvcC != nil {
		for _, sps := range entry.AvcC.SPSnalus {
			out = appendNALU(out, sps)
		}
		for _, pps := range entry.AvcC.PPSnalus {
			out = appendNALU(out, pps)
		}
	}
	if entry.HvcC != nil {
		for _, arr := range entry.HvcC.NaluArrays {
			for _, nalu := range arr.Nalus {
				out = appendNALU(out, nalu)
			}
		}
	}
	return out
}

// progressiveEntries indexes the moov sample table of one track.
func progressiveEntries(trak *mp4.TrakBox, stream int) ([]entry, error) {
	if trak.Mdia == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return nil, nil
	}
	stbl := trak.Mdia.Minf.Stbl
	if stbl.Stsz == nil || stbl.Stsz.SampleNumber == 0 {
		return nil, nil
	}
	if stbl.Stsc == nil || stbl.Stts == nil {
		return nil, fmt.Errorf("track %d: missing stsc or stts box", stream)
	}

	var sync map[uint32]bool
	if stbl.Stss != nil {
		sync = make(map[uint32]bool, len(stbl.Stss.SampleNumber))
		for _, nr := range stbl.Stss.SampleNumber {
			sync[nr] = true
		}
	}

	count := stbl.Stsz.SampleNumber
	entries := make([]entry, 0, count)
	var (
		lastChunk = -1
		offset    uint64
	)
	for nr := uint32(1); nr <= count; nr++ {
		chunkNr, firstInChunk, err := stbl.Stsc.ChunkNrFromSampleNr(int(nr))
		if err != nil {
			return nil, fmt.Errorf("track %d sample %d: %w", stream, nr, err)
		}
		if chunkNr != lastChunk {
			offset, err = chunkOffset(stbl, chunkNr)
			if err != nil {
				return nil, fmt.Errorf("track %d sample %d: %w", stream, nr, err)
			}
			for s := uint32(firstInChunk); s < nr; s++ {
				offset += uint64(stbl.Stsz.GetSampleSize(int(s)))
			}
			lastChunk = chunkNr
		}
		size := stbl.Stsz.GetSampleSize(int(nr))

		dts, dur := stbl.Stts.GetDecodeTime(nr)
		pts := int64(dts)
		if stbl.Ctts != nil {
			pts += int64(stbl.Ctts.GetCompositionTimeOffset(nr))
		}

		entries = append(entries, entry{
			stream: stream,
			dts:    int64(dts),
			pts:    pts,
			dur:    int64(dur),
			key:    sync == nil || sync[nr],
			offset: int64(offset),
			size:   size,
		})
		offset += uint64(size)
	}
	return entries, nil
}

func chunkOffset(stbl *mp4.StblBox, chunkNr int) (uint64, error) {
	switch {
	case stbl.Stco != nil:
		return stbl.Stco.GetOffset(chunkNr)
	case stbl.Co64 != nil:
		if chunkNr < 1 || chunkNr > len(stbl.Co64.ChunkOffset) {
			return 0, fmt.Errorf("chunk %d out of range", chunkNr)
		}
		return stbl.Co64.ChunkOffset[chunkNr-1], nil
	default:
		return 0, errors.New("no stco or co64 box")
	}
}

// fragmentEntries indexes moof/mdat pairs in file order. Within a
// fragment, samples of all its trafs are ordered by mdat position.
func fragmentEntries(f *mp4.File, tracks []*track) ([]entry, error) {
	byID := make(map[uint32]*track, len(tracks))
	for _, t := range tracks {
		byID[t.id] = t
	}

	var entries []entry
	for _, seg := range f.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil || frag.Mdat == nil {
				continue
			}
			var fragEntries []entry
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd == nil {
					continue
				}
				t, ok := byID[traf.Tfhd.TrackID]
				if !ok {
					continue
				}
				e, err := trafEntries(frag, traf, t)
				if err != nil {
					return nil, fmt.Errorf("track %d: %w", t.desc.Index, err)
				}
				fragEntries = append(fragEntries, e...)
			}
			sort.SliceStable(fragEntries, func(a, b int) bool {
				return fragEntries[a].offset < fragEntries[b].offset
			})
			for i := range fragEntries {
				fragEntries[i].offset = -1
			}
			entries = append(entries, fragEntries...)
		}
	}
	return entries, nil
}

// trafEntries resolves the samples of one traf against the fragment's
// mdat. offset is set to the position in the mdat for ordering only.
func trafEntries(frag *mp4.Fragment, traf *mp4.TrafBox, t *track) ([]entry, error) {
	tfhd := traf.Tfhd
	var baseTime uint64
	if traf.Tfdt != nil {
		baseTime = traf.Tfdt.BaseMediaDecodeTime()
	}
	mdat := frag.Mdat
	mdatStart := mdat.PayloadAbsoluteOffset()
	mdatLen := uint64(len(mdat.Data))

	var entries []entry
	for _, trun := range traf.Truns {
		totalDur := trun.AddSampleDefaultValues(tfhd, t.trex)

		base := frag.Moof.StartPos
		if tfhd.HasBaseDataOffset() {
			base = tfhd.BaseDataOffset
		}
		if trun.HasDataOffset() {
			base = uint64(int64(base) + int64(trun.DataOffset))
		}
		if base < mdatStart {
			return nil, fmt.Errorf("sample data at %d precedes mdat at %d", base, mdatStart)
		}
		pos := base - mdatStart

		dts := baseTime
		for _, s := range trun.Samples {
			end := pos + uint64(s.Size)
			if end > mdatLen {
				return nil, fmt.Errorf("sample of %d bytes at %d exceeds mdat of %d bytes", s.Size, pos, mdatLen)
			}
			entries = append(entries, entry{
				stream: t.desc.Index,
				dts:    int64(dts),
				pts:    int64(dts) + int64(s.CompositionTimeOffset),
				dur:    int64(s.Dur),
				key:    mp4.IsSyncSampleFlags(s.Flags),
				offset: int64(pos),
				size:   s.Size,
				data:   mdat.Data[pos:end],
			})
			dts += uint64(s.Dur)
			pos = end
		}
		baseTime += totalDur
	}
	return entries, nil
}

// index builds the container-order packet list and fills in the
// per-stream statistics that depend on it.
func index(f *mp4.File, tracks []*track) ([]entry, error) {
	moov := moovOf(f)

	var progressive []entry
	for i, trak := range moov.Traks {
		e, err := progressiveEntries(trak, i)
		if err != nil {
			return nil, err
		}
		progressive = append(progressive, e...)
	}
	sort.SliceStable(progressive, func(a, b int) bool {
		return progressive[a].offset < progressive[b].offset
	})

	fragmented, err := fragmentEntries(f, tracks)
	if err != nil {
		return nil, err
	}
	entries := append(progressive, fragmented...)

	type stats struct {
		first, end   int64
		bytes        int64
		frames, keys int
		seen         bool
	}
	st := make([]stats, len(tracks))
	for _, e := range entries {
		s := &st[e.stream]
		if !s.seen || e.pts < s.first {
			s.first = e.pts
		}
		if !s.seen || e.pts+e.dur > s.end {
			s.end = e.pts + e.dur
		}
		s.seen = true
		s.bytes += int64(e.size)
		s.frames++
		if e.key {
			s.keys++
		}
	}
	for i, t := range tracks {
		s := st[i]
		t.desc.StartTime = s.first
		t.desc.Duration = s.end - s.first
		t.desc.FrameCount = s.frames
		t.desc.Keyframes = s.keys
		if us := t.desc.TimeBase.ToMicros(t.desc.Duration); us > 0 {
			t.desc.BitRate = s.bytes * 8 * ports.TimeBaseMicros / us
		}
	}
	return entries, nil
}
