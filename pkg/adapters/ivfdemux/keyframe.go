package ivfdemux

import "github.com/user/thumbnailer/pkg/ports"

// isKeyframe inspects the start of a frame payload. Codecs it cannot
// inspect are treated as intra-only.
func isKeyframe(codec ports.Codec, data []byte) bool {
	if len(data) == 0 {
		return false
	}
	switch codec {
	case ports.CodecVP8:
		// frame tag bit 0: 0 = key frame
		return data[0]&0x01 == 0
	case ports.CodecVP9:
		return vp9Keyframe(data[0])
	case ports.CodecAV1:
		return av1HasSequenceHeader(data)
	case ports.CodecH264:
		return annexBHasNAL(data, func(b byte) bool {
			t := b & 0x1f
			return t == 5 || t == 7
		})
	case ports.CodecHEVC:
		return annexBHasNAL(data, func(b byte) bool {
			t := (b >> 1) & 0x3f
			return t >= 16 && t <= 23
		})
	default:
		return true
	}
}

// vp9Keyframe reads frame_type from the uncompressed header.
func vp9Keyframe(b byte) bool {
	bit := 7
	next := func() byte {
		v := (b >> uint(bit)) & 1
		bit--
		return v
	}
	if next()<<1|next() != 2 { // frame_marker
		return false
	}
	profile := next() | next()<<1
	if profile == 3 {
		next()
	}
	if next() == 1 { // show_existing_frame
		return false
	}
	return next() == 0
}

// av1HasSequenceHeader walks the OBUs of a temporal unit.
func av1HasSequenceHeader(data []byte) bool {
	for len(data) > 0 {
		h := data[0]
		obuType := (h >> 3) & 0x0f
		if obuType == 1 {
			return true
		}
		hdr := 1
		if h&0x04 != 0 {
			hdr++
		}
		if h&0x02 == 0 || hdr > len(data) {
			return false
		}
		size, n := leb128(data[hdr:])
		if n == 0 {
			return false
		}
		end := hdr + n + int(size)
		if end > len(data) || end <= 0 {
			return false
		}
		data = data[end:]
	}
	return false
}

func leb128(b []byte) (uint64, int) {
	var v uint64
	for i := 0; i < 8 && i < len(b); i++ {
		v |= uint64(b[i]&0x7f) << (7 * uint(i))
		if b[i]&0x80 == 0 {
			return v, i + 1
		}
	}
	return 0, 0
}

func annexBHasNAL(data []byte, match func(header byte) bool) bool {
	for i := 0; i+3 < len(data); i++ {
		if data[i] == 0 && data[i+1] == 0 && data[i+2] == 1 {
			if match(data[i+3]) {
				return true
			}
			i += 2
		}
	}
	return false
}
