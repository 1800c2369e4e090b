package mp4demux

import "github.com/Eyevinn/mp4ff/mp4"

// defaultNALLengthSize is the prefix width of avcC streams; mp4ff refuses
// avcC records with any other size.
const defaultNALLengthSize = 4

// nalLengthSize returns the NAL unit length prefix width declared by the
// sample entry.
func nalLengthSize(vse *mp4.VisualSampleEntryBox) int {
	if vse != nil && vse.HvcC != nil {
		return int(vse.HvcC.LengthSizeMinusOne&0x03) + 1
	}
	return defaultNALLengthSize
}

// lengthPrefixedToAnnexB converts NAL units prefixed by a big-endian
// length of lengthSize bytes to start-code-prefixed ones. A truncated
// trailing unit is dropped.
func lengthPrefixedToAnnexB(data []byte, lengthSize int) []byte {
	if lengthSize < 1 || lengthSize > 4 {
		lengthSize = defaultNALLengthSize
	}
	out := make([]byte, 0, len(data)+16)
	offset := 0

	for offset+lengthSize <= len(data) {
		n := 0
		for _, b := range data[offset : offset+lengthSize] {
			n = n<<8 | int(b)
		}
		offset += lengthSize

		if offset+n > len(data) {
			break
		}
		out = appendNALU(out, data[offset:offset+n])
		offset += n
	}

	return out
}

func appendNALU(dst, nalu []byte) []byte {
	dst = append(dst, 0, 0, 0, 1)
	return append(dst, nalu...)
}
