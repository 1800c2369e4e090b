//go:build libaom

package av1decoder

import (
	"errors"
	"testing"

	"github.com/user/thumbnailer/pkg/ports"
)

func TestDecoder_Lifecycle(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := d.ReceiveFrame(); !errors.Is(err, ports.ErrAgain) {
		t.Errorf("expected ErrAgain before input, got %v", err)
	}
	if err := d.SendPacket(ports.Packet{}); !errors.Is(err, ErrDecodeFailed) {
		t.Errorf("expected ErrDecodeFailed for empty packet, got %v", err)
	}

	d.Close()
	d.Close()
	if err := d.SendPacket(ports.Packet{Data: []byte{0}}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
