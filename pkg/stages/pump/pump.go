// Package pump reads the packets of one stream from a positioned source.
package pump

import (
	"errors"
	"io"

	"github.com/user/thumbnailer/pkg/ports"
)

// Pump is a forward-only iterator over the packets of a single stream.
// It is not restartable; seek the source again and create a new Pump.
type Pump struct {
	source  ports.MediaSource
	stream  int
	read    int
	dropped int
	trace   []Entry
	tracing bool
	done    bool
}

// Entry is one packet seen by the pump, kept for debug output.
type Entry struct {
	StreamIndex int   `json:"stream"`
	PTS         int64 `json:"pts"`
	DTS         int64 `json:"dts"`
	Size        int   `json:"size"`
	Keyframe    bool  `json:"keyframe"`
	Dropped     bool  `json:"dropped,omitempty"`
}

// New creates a pump that yields only packets of streamIndex.
func New(source ports.MediaSource, streamIndex int) *Pump {
	return &Pump{source: source, stream: streamIndex}
}

// EnableTrace records every packet read, including dropped ones.
func (p *Pump) EnableTrace() {
	p.tracing = true
}

// Next returns the next packet of the selected stream, or io.EOF once
// the source is exhausted. Read failures are reported as ErrDecode.
func (p *Pump) Next() (ports.Packet, error) {
	for !p.done {
		pkt, err := p.source.ReadPacket()
		if errors.Is(err, io.EOF) {
			p.done = true
			break
		}
		if err != nil {
			return ports.Packet{}, ports.NewError(ports.ErrDecode, "read packet", err)
		}

		keep := pkt.StreamIndex == p.stream
		if p.tracing {
			p.trace = append(p.trace, Entry{
				StreamIndex: pkt.StreamIndex,
				PTS:         pkt.PTS,
				DTS:         pkt.DTS,
				Size:        len(pkt.Data),
				Keyframe:    pkt.Keyframe,
				Dropped:     !keep,
			})
		}
		if !keep {
			p.dropped++
			continue
		}
		p.read++
		return pkt, nil
	}
	return ports.Packet{}, io.EOF
}

// Read returns the number of packets yielded so far.
func (p *Pump) Read() int { return p.read }

// Dropped returns the number of packets skipped for other streams.
func (p *Pump) Dropped() int { return p.dropped }

// Trace returns the recorded packet trace.
func (p *Pump) Trace() []Entry { return p.trace }
