package mocks

import (
	"io"

	"github.com/user/thumbnailer/pkg/ports"
)

// VideoDecoder emits a gray frame per packet after Delay packets of
// latency. Frame luma equals the low byte of the packet PTS.
type VideoDecoder struct {
	Width  int
	Height int
	Delay  int

	SendPacketFunc func(pkt ports.Packet) error

	// Recorded calls for verification
	Sent        []ports.Packet
	FlushCalled bool
	Closed      bool

	queue   []ports.Packet
	ready   []*ports.DecodedFrame
	flushed bool
}

func (m *VideoDecoder) SendPacket(pkt ports.Packet) error {
	m.Sent = append(m.Sent, pkt)
	if m.SendPacketFunc != nil {
		if err := m.SendPacketFunc(pkt); err != nil {
			return err
		}
	}
	m.queue = append(m.queue, pkt)
	for len(m.queue) > m.Delay {
		m.ready = append(m.ready, m.frame(m.queue[0]))
		m.queue = m.queue[1:]
	}
	return nil
}

func (m *VideoDecoder) ReceiveFrame() (*ports.DecodedFrame, error) {
	if len(m.ready) == 0 {
		if m.flushed {
			return nil, io.EOF
		}
		return nil, ports.ErrAgain
	}
	f := m.ready[0]
	m.ready = m.ready[1:]
	return f, nil
}

func (m *VideoDecoder) Flush() error {
	m.FlushCalled = true
	m.flushed = true
	for _, pkt := range m.queue {
		m.ready = append(m.ready, m.frame(pkt))
	}
	m.queue = nil
	return nil
}

func (m *VideoDecoder) Close() {
	m.Closed = true
}

func (m *VideoDecoder) frame(pkt ports.Packet) *ports.DecodedFrame {
	w, h := m.Width, m.Height
	if w == 0 || h == 0 {
		w, h = 4, 4
	}
	pix := make([]byte, w*h)
	for i := range pix {
		pix[i] = byte(pkt.PTS)
	}
	return &ports.DecodedFrame{
		Format:   ports.PixFmtGray8,
		Width:    w,
		Height:   h,
		Planes:   [][]byte{pix},
		Strides:  []int{w},
		PTS:      pkt.PTS,
		Keyframe: pkt.Keyframe,
	}
}

var _ ports.VideoDecoder = (*VideoDecoder)(nil)

// DecoderFactory hands out a fixed decoder.
type DecoderFactory struct {
	Decoder       ports.VideoDecoder
	Err           error
	CanDecodeFunc func(codec ports.Codec) bool

	Created []ports.StreamDescriptor
}

func (m *DecoderFactory) CanDecode(codec ports.Codec) bool {
	if m.CanDecodeFunc != nil {
		return m.CanDecodeFunc(codec)
	}
	return true
}

func (m *DecoderFactory) NewDecoder(stream ports.StreamDescriptor) (ports.VideoDecoder, error) {
	m.Created = append(m.Created, stream)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Decoder, nil
}

var _ ports.DecoderFactory = (*DecoderFactory)(nil)
