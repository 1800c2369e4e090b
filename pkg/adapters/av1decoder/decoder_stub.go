//go:build !libaom

package av1decoder

import "github.com/user/thumbnailer/pkg/ports"

// Available reports whether the libaom backend is compiled in.
func Available() bool { return false }

// Decoder is a placeholder that cannot be constructed without libaom.
type Decoder struct{}

// New always fails without the libaom build tag.
func New() (*Decoder, error) {
	return nil, ErrNotAvailable
}

func (d *Decoder) SendPacket(ports.Packet) error              { return ErrNotAvailable }
func (d *Decoder) ReceiveFrame() (*ports.DecodedFrame, error) { return nil, ErrNotAvailable }
func (d *Decoder) Flush() error                               { return ErrNotAvailable }
func (d *Decoder) Close()                                     {}

var _ ports.VideoDecoder = (*Decoder)(nil)
