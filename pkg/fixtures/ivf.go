package fixtures

import (
	"bytes"
	"encoding/binary"
)

// IVFFrame is one frame of a generated IVF file.
type IVFFrame struct {
	Timestamp uint64
	Data      []byte
}

// IVF builds an IVF file. The time base is timebaseNum/timebaseDen
// seconds per timestamp tick.
func IVF(fourcc string, width, height int, timebaseDen, timebaseNum uint32, frames []IVFFrame) []byte {
	var buf bytes.Buffer
	hdr := make([]byte, 32)
	copy(hdr[0:4], "DKIF")
	binary.LittleEndian.PutUint16(hdr[4:], 0)
	binary.LittleEndian.PutUint16(hdr[6:], 32)
	copy(hdr[8:12], fourcc)
	binary.LittleEndian.PutUint16(hdr[12:], uint16(width))
	binary.LittleEndian.PutUint16(hdr[14:], uint16(height))
	binary.LittleEndian.PutUint32(hdr[16:], timebaseDen)
	binary.LittleEndian.PutUint32(hdr[20:], timebaseNum)
	binary.LittleEndian.PutUint32(hdr[24:], uint32(len(frames)))
	buf.Write(hdr)

	for _, f := range frames {
		var fh [12]byte
		binary.LittleEndian.PutUint32(fh[0:], uint32(len(f.Data)))
		binary.LittleEndian.PutUint64(fh[4:], f.Timestamp)
		buf.Write(fh[:])
		buf.Write(f.Data)
	}
	return buf.Bytes()
}

// MJPEGIVF builds an MJPG IVF with one solid-color frame per tick at fps.
func MJPEGIVF(width, height, fps, count int) ([]byte, error) {
	frames := make([]IVFFrame, count)
	for i := range frames {
		data, err := SolidJPEG(width, height, FrameColor(i))
		if err != nil {
			return nil, err
		}
		frames[i] = IVFFrame{Timestamp: uint64(i), Data: data}
	}
	return IVF("MJPG", width, height, uint32(fps), 1, frames), nil
}
