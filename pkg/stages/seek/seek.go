// Package seek implements the keyframe seek stage.
package seek

import (
	"context"
	"errors"

	"github.com/user/thumbnailer/pkg/pipeline"
	"github.com/user/thumbnailer/pkg/ports"
)

// Stage positions a source on the keyframe at or before a target.
type Stage struct {
	logger ports.Logger
}

// NewStage creates a new seek stage.
func NewStage(logger ports.Logger) *Stage {
	return &Stage{
		logger: logger.WithComponent("seek"),
	}
}

// Execute seeks input.Source. A failed seek is reported as ErrSeek
// unless input.Fallback is set, in which case the stage retries once
// at the start of the timeline.
func (s *Stage) Execute(ctx context.Context, input pipeline.SeekInput) (pipeline.SeekResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.SeekResult{}, err
	}

	s.logger.Debug("Seeking stream #%d to %dus", input.StreamIndex, input.Target)
	err := Seek(input.Source, input.StreamIndex, input.Target)
	if err == nil {
		return pipeline.SeekResult{Target: input.Target}, nil
	}
	if !input.Fallback || input.Target == 0 {
		return pipeline.SeekResult{}, err
	}

	s.logger.Warn("Seek to %dus failed, retrying from start", input.Target)
	if err := Seek(input.Source, input.StreamIndex, 0); err != nil {
		return pipeline.SeekResult{}, err
	}
	return pipeline.SeekResult{Target: 0, FellBack: true}, nil
}

// Seek repositions source and guarantees the error, if any, is an ErrSeek.
func Seek(source ports.MediaSource, streamIndex int, target int64) error {
	if target < 0 {
		return ports.Errorf(ports.ErrSeek, "seek", "negative target %dus", target)
	}
	err := source.Seek(streamIndex, target)
	if err == nil {
		return nil
	}
	if errors.Is(err, ports.ErrSeek) {
		return err
	}
	return ports.NewError(ports.ErrSeek, "seek", err)
}
