// Package selector implements the video stream selection stage.
package selector

import (
	"context"
	"sort"

	"github.com/user/thumbnailer/pkg/pipeline"
	"github.com/user/thumbnailer/pkg/ports"
)

// Capabilities reports which codecs a decoder backend exists for.
type Capabilities interface {
	CanDecode(codec ports.Codec) bool
}

// Stage picks the best video stream of a container.
type Stage struct {
	caps   Capabilities
	logger ports.Logger
}

// NewStage creates a new select stage. caps may be nil, in which case
// every codec counts as decodable.
func NewStage(caps Capabilities, logger ports.Logger) *Stage {
	return &Stage{
		caps:   caps,
		logger: logger.WithComponent("select"),
	}
}

// Execute returns the highest ranked video stream.
func (s *Stage) Execute(ctx context.Context, input pipeline.SelectInput) (pipeline.SelectResult, error) {
	s.logger.Debug("Considering %d streams", len(input.Streams))
	for _, st := range input.Streams {
		s.logger.Debug("Stream #%d: %s %s %dx%d, decodable=%v",
			st.Index, st.Kind, st.Codec, st.Width, st.Height, s.decodable(st.Codec))
	}

	best, err := Best(input.Streams, s.caps)
	if err != nil {
		return pipeline.SelectResult{}, err
	}
	return pipeline.SelectResult{Stream: best}, nil
}

func (s *Stage) decodable(codec ports.Codec) bool {
	return s.caps == nil || s.caps.CanDecode(codec)
}

// Best ranks video streams by decodability, then pixel area, then
// bitrate. Ties go to the lowest stream index.
func Best(streams []ports.StreamDescriptor, caps Capabilities) (ports.StreamDescriptor, error) {
	candidates := make([]ports.StreamDescriptor, 0, len(streams))
	for _, st := range streams {
		if st.Kind == ports.KindVideo {
			candidates = append(candidates, st)
		}
	}
	if len(candidates) == 0 {
		return ports.StreamDescriptor{}, ports.Errorf(ports.ErrNoVideoStream, "select stream",
			"%d streams, none of kind video", len(streams))
	}

	decodable := func(st ports.StreamDescriptor) bool {
		return caps == nil || caps.CanDecode(st.Codec)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if da, db := decodable(a), decodable(b); da != db {
			return da
		}
		if a.Area() != b.Area() {
			return a.Area() > b.Area()
		}
		if a.BitRate != b.BitRate {
			return a.BitRate > b.BitRate
		}
		return a.Index < b.Index
	})
	return candidates[0], nil
}
