// Package decode wraps a codec backend in the push/pull state machine
// used by the extraction loop.
package decode

import (
	"errors"
	"io"

	"github.com/user/thumbnailer/pkg/ports"
)

var (
	// ErrNotReady means the decoder needs more packets. It is not a failure.
	ErrNotReady = errors.New("decode: not ready")

	// ErrDecoderErrored is returned by every call after a failure.
	ErrDecoderErrored = errors.New("decode: decoder is in errored state")

	// ErrDrained is returned by ReceiveFrame after Flush once every
	// buffered frame has been returned.
	ErrDrained = errors.New("decode: drained")
)

// State is the decoder lifecycle state.
type State int

const (
	Idle State = iota
	Buffering
	FrameReady
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Buffering:
		return "buffering"
	case FrameReady:
		return "frame-ready"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Decoder drives a ports.VideoDecoder backend.
//
// Frames the backend emits are collected eagerly after every packet so
// State reflects whether a frame is available.
type Decoder struct {
	backend ports.VideoDecoder
	logger  ports.Logger
	state   State
	pending []*ports.DecodedFrame
	flushed bool
	closed  bool
}

// New creates a decoder over backend. The decoder owns backend and
// closes it on Close.
func New(backend ports.VideoDecoder, logger ports.Logger) *Decoder {
	return &Decoder{
		backend: backend,
		logger:  logger.WithComponent("decode"),
	}
}

// State returns the current state.
func (d *Decoder) State() State {
	return d.state
}

// SendPacket feeds one packet to the backend.
func (d *Decoder) SendPacket(pkt ports.Packet) error {
	if d.state == Errored {
		return ports.NewError(ports.ErrDecode, "send packet", ErrDecoderErrored)
	}
	if d.flushed {
		return ports.Errorf(ports.ErrDecode, "send packet", "decoder already flushed")
	}
	if err := d.backend.SendPacket(pkt); err != nil {
		return d.fail("send packet", err)
	}
	if err := d.drain(); err != nil {
		return err
	}
	d.settle()
	return nil
}

// ReceiveFrame returns the next frame, or ErrNotReady if none is
// available yet. After Flush it returns ErrDrained instead.
func (d *Decoder) ReceiveFrame() (*ports.DecodedFrame, error) {
	if d.state == Errored {
		return nil, ports.NewError(ports.ErrDecode, "receive frame", ErrDecoderErrored)
	}
	if len(d.pending) == 0 {
		if d.flushed {
			return nil, ErrDrained
		}
		return nil, ErrNotReady
	}
	frame := d.pending[0]
	d.pending = d.pending[1:]
	d.settle()
	return frame, nil
}

// Flush signals end of input and collects every frame the backend was
// still holding.
func (d *Decoder) Flush() error {
	if d.state == Errored {
		return ports.NewError(ports.ErrDecode, "flush", ErrDecoderErrored)
	}
	if d.flushed {
		return nil
	}
	d.logger.Debug("Flushing decoder")
	d.flushed = true
	if err := d.backend.Flush(); err != nil {
		return d.fail("flush", err)
	}
	if err := d.drain(); err != nil {
		return err
	}
	d.settle()
	return nil
}

// Close releases the backend. It is safe to call more than once.
func (d *Decoder) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.pending = nil
	d.backend.Close()
}

func (d *Decoder) drain() error {
	for {
		frame, err := d.backend.ReceiveFrame()
		switch {
		case err == nil:
			d.pending = append(d.pending, frame)
		case errors.Is(err, ports.ErrAgain), errors.Is(err, io.EOF):
			return nil
		default:
			return d.fail("receive frame", err)
		}
	}
}

func (d *Decoder) settle() {
	next := Buffering
	if len(d.pending) > 0 {
		next = FrameReady
	}
	d.transition(next)
}

func (d *Decoder) fail(op string, err error) error {
	d.transition(Errored)
	d.pending = nil
	if errors.Is(err, ports.ErrDecode) {
		return err
	}
	return ports.NewError(ports.ErrDecode, op, err)
}

func (d *Decoder) transition(next State) {
	if d.state == next {
		return
	}
	d.logger.Debug("Decoder state %s -> %s", d.state, next)
	d.state = next
}
