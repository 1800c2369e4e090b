package ffmpegdecoder

import (
	"bytes"
	"encoding/binary"
)

const (
	ivfHeaderSize      = 32
	ivfFrameHeaderSize = 12
)

// ivfStream frames units as an IVF file. Timestamps are the unit index
// in a 1/1 time base; real presentation times are restored from the
// packets after decoding.
func ivfStream(fourcc string, width, height int, units [][]byte) []byte {
	size := ivfHeaderSize
	for _, u := range units {
		size += ivfFrameHeaderSize + len(u)
	}

	var buf bytes.Buffer
	buf.Grow(size)

	var hdr [ivfHeaderSize]byte
	copy(hdr[0:4], "DKIF")
	binary.LittleEndian.PutUint16(hdr[6:], ivfHeaderSize)
	copy(hdr[8:12], fourcc)
	binary.LittleEndian.PutUint16(hdr[12:], uint16(width))
	binary.LittleEndian.PutUint16(hdr[14:], uint16(height))
	binary.LittleEndian.PutUint32(hdr[16:], 1)
	binary.LittleEndian.PutUint32(hdr[20:], 1)
	binary.LittleEndian.PutUint32(hdr[24:], uint32(len(units)))
	buf.Write(hdr[:])

	for i, u := range units {
		var fh [ivfFrameHeaderSize]byte
		binary.LittleEndian.PutUint32(fh[0:], uint32(len(u)))
		binary.LittleEndian.PutUint64(fh[4:], uint64(i))
		buf.Write(fh[:])
		buf.Write(u)
	}
	return buf.Bytes()
}
