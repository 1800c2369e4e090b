// Package write implements the image output stage.
package write

import (
	"context"

	"github.com/user/thumbnailer/pkg/pipeline"
	"github.com/user/thumbnailer/pkg/ports"
)

// DefaultQuality is the JPEG quality used when none is given.
const DefaultQuality = 90

// Stage encodes a RasterImage by destination extension and writes it.
type Stage struct {
	codec  ports.ImageCodec
	fs     ports.FileSystem
	logger ports.Logger
}

// NewStage creates a new write stage.
func NewStage(codec ports.ImageCodec, fs ports.FileSystem, logger ports.Logger) *Stage {
	return &Stage{
		codec:  codec,
		fs:     fs,
		logger: logger.WithComponent("write"),
	}
}

// Execute writes input.Image to input.Path. Every failure is an ErrWrite;
// nothing is written when encoding fails.
func (s *Stage) Execute(ctx context.Context, input pipeline.WriteInput) (pipeline.WriteResult, error) {
	result := pipeline.WriteResult{Path: input.Path}

	if input.Path == "" {
		return result, ports.Errorf(ports.ErrWrite, "write", "empty destination path")
	}
	format, err := ports.FormatFromPath(input.Path)
	if err != nil {
		return result, ports.NewError(ports.ErrWrite, "write", err)
	}
	if err := input.Image.Validate(); err != nil {
		return result, ports.NewError(ports.ErrWrite, "write", err)
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	quality := input.Quality
	if quality <= 0 {
		quality = DefaultQuality
	}

	s.logger.Debug("Writing %s image to %s", format, input.Path)
	data, err := s.codec.EncodeImage(input.Image.RGBA(), format, quality)
	if err != nil {
		return result, ports.NewError(ports.ErrWrite, "encode "+format.String(), err)
	}
	if err := s.fs.WriteFile(input.Path, data); err != nil {
		return result, ports.NewError(ports.ErrWrite, "write file", err)
	}

	result.Format = format
	result.Bytes = int64(len(data))
	return result, nil
}
