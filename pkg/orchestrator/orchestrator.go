// Package orchestrator coordinates the extraction stages.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/user/thumbnailer/pkg/pipeline"
	"github.com/user/thumbnailer/pkg/ports"
	"github.com/user/thumbnailer/pkg/stages/convert"
	"github.com/user/thumbnailer/pkg/stages/decode"
	"github.com/user/thumbnailer/pkg/stages/pump"
)

// Config contains all configuration for one extraction.
type Config struct {
	// RunID names the run in logs and debug output. Generated when empty.
	RunID string

	// Input
	InputPath string

	// Seek
	SeekTarget   int64 // Microseconds from the start of the timeline
	SeekFallback bool  // Retry at 0 when SeekTarget cannot be reached

	// Conversion (0 keeps the source size, one side 0 keeps aspect ratio)
	Width  int
	Height int

	// Output
	OutputPath string
	Quality    int // JPEG quality (1-100)
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		SeekTarget: ports.DefaultSeekTarget,
		OutputPath: "thumbnail.jpg",
		Quality:    90,
	}
}

// RunResult describes a finished extraction.
type RunResult struct {
	RunID string

	// Stream information
	Stream  ports.StreamDescriptor
	Decoder string

	// Seek information
	SeekTarget   int64
	SeekFellBack bool

	// Frame information
	FramePTS       int64 // Microseconds from the start of the stream
	SourceFormat   ports.PixelFormat
	PacketsRead    int
	PacketsDropped int

	// Image is the converted frame. It stays valid when only writing fails.
	Image ports.RasterImage

	// Output is set by Run once the image is written.
	Output pipeline.WriteResult
}

// Orchestrator coordinates the execution of all extraction stages.
type Orchestrator struct {
	opener       ports.SourceOpener
	decoders     ports.DecoderFactory
	selectStage  pipeline.Stage[pipeline.SelectInput, pipeline.SelectResult]
	seekStage    pipeline.Stage[pipeline.SeekInput, pipeline.SeekResult]
	convertStage pipeline.Stage[pipeline.ConvertInput, pipeline.ConvertResult]
	writeStage   pipeline.Stage[pipeline.WriteInput, pipeline.WriteResult]
	sink         ports.DebugSink
	logger       ports.Logger
}

// New creates a new Orchestrator.
func New(
	opener ports.SourceOpener,
	decoders ports.DecoderFactory,
	selectStage pipeline.Stage[pipeline.SelectInput, pipeline.SelectResult],
	seekStage pipeline.Stage[pipeline.SeekInput, pipeline.SeekResult],
	convertStage pipeline.Stage[pipeline.ConvertInput, pipeline.ConvertResult],
	writeStage pipeline.Stage[pipeline.WriteInput, pipeline.WriteResult],
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		opener:       opener,
		decoders:     decoders,
		selectStage:  selectStage,
		seekStage:    seekStage,
		convertStage: convertStage,
		writeStage:   writeStage,
		sink:         sink,
		logger:       logger,
	}
}

// Run extracts a thumbnail and writes it to config.OutputPath. On a
// write failure the returned result still carries the converted image.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	result, err := o.Extract(ctx, config)
	if err != nil {
		return result, err
	}

	written, err := o.writeStage.Execute(ctx, pipeline.WriteInput{
		Image:   result.Image,
		Path:    config.OutputPath,
		Quality: config.Quality,
	})
	if err != nil {
		o.logger.Error("Extraction failed: %v", err)
		return result, err
	}
	result.Output = written

	o.logger.Info("Thumbnail saved to %s (%dx%d, %d bytes)",
		written.Path, result.Image.Width, result.Image.Height, written.Bytes)
	return result, nil
}

// Extract runs the pipeline up to the converted image without writing it.
func (o *Orchestrator) Extract(ctx context.Context, config Config) (RunResult, error) {
	result := RunResult{RunID: config.RunID}
	if result.RunID == "" {
		result.RunID = uuid.NewString()
	}
	o.logger.Info("Run %s started", result.RunID)
	o.logger.Info("Extracting thumbnail from %s", config.InputPath)

	if err := o.extract(ctx, config, &result); err != nil {
		o.logger.Error("Extraction failed: %v", err)
		return result, err
	}
	return result, nil
}

func (o *Orchestrator) extract(ctx context.Context, config Config, result *RunResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// 1. Open container
	source, err := o.opener.Open(config.InputPath)
	if err != nil {
		if errors.Is(err, ports.ErrOpen) {
			return err
		}
		return ports.NewError(ports.ErrOpen, "open", err)
	}
	defer source.Close()

	streams := source.Streams()
	o.saveJSON(o.sink.SaveStreamsJSON, streams)

	// 2. Select stream
	selected, err := o.selectStage.Execute(ctx, pipeline.SelectInput{Streams: streams})
	if err != nil {
		return err
	}
	stream := selected.Stream
	result.Stream = stream
	o.logger.Info("Selected stream #%d (%s, %dx%d)", stream.Index, stream.Codec, stream.Width, stream.Height)

	// 3. Create decoder
	backend, err := o.decoders.NewDecoder(stream)
	if err != nil {
		return ports.NewError(ports.ErrDecode, "create decoder", err)
	}
	dec := decode.New(backend, o.logger)
	defer dec.Close()

	result.Decoder = string(stream.Codec)
	if s, ok := backend.(fmt.Stringer); ok {
		result.Decoder = s.String()
	}
	o.logger.Info("Decoder backend: %s", result.Decoder)

	// 4. Seek
	sought, err := o.seekStage.Execute(ctx, pipeline.SeekInput{
		Source:      source,
		StreamIndex: stream.Index,
		Target:      config.SeekTarget,
		Fallback:    config.SeekFallback,
	})
	if err != nil {
		return err
	}
	result.SeekTarget = sought.Target
	result.SeekFellBack = sought.FellBack

	// 5. Pump and decode until the first frame
	p := pump.New(source, stream.Index)
	if o.sink.Enabled() {
		p.EnableTrace()
		defer func() { o.saveJSON(o.sink.SavePacketsJSON, p.Trace()) }()
	}

	frame, err := firstFrame(ctx, p, dec)
	result.PacketsRead = p.Read()
	result.PacketsDropped = p.Dropped()
	if err != nil {
		return err
	}
	result.FramePTS = stream.TimeBase.ToMicros(frame.PTS - stream.StartTime)
	o.logger.Info("Frame found at %.3fs after %d packets",
		float64(result.FramePTS)/float64(ports.TimeBaseMicros), result.PacketsRead)

	if o.sink.Enabled() {
		if img, err := convert.NativeImage(frame); err == nil {
			if err := o.sink.SaveNativeFrame(img); err != nil {
				o.logger.Warn("Debug output failed: %v", err)
			}
		}
	}

	// 6. Convert
	converted, err := o.convertStage.Execute(ctx, pipeline.ConvertInput{
		Frame:  frame,
		Width:  config.Width,
		Height: config.Height,
	})
	if err != nil {
		return err
	}
	if err := converted.Image.Validate(); err != nil {
		return ports.NewError(ports.ErrConversion, "convert", err)
	}
	result.Image = converted.Image
	result.SourceFormat = converted.SourceFormat
	return nil
}

// firstFrame pumps packets into dec until it yields a frame. When the
// packets run out the decoder is flushed for any frame it still holds.
func firstFrame(ctx context.Context, p *pump.Pump, dec *decode.Decoder) (*ports.DecodedFrame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pkt, err := p.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if err := dec.SendPacket(pkt); err != nil {
			return nil, err
		}
		frame, err := dec.ReceiveFrame()
		if err == nil {
			return frame, nil
		}
		if !errors.Is(err, decode.ErrNotReady) {
			return nil, err
		}
	}

	if err := dec.Flush(); err != nil {
		return nil, err
	}
	frame, err := dec.ReceiveFrame()
	if err == nil {
		return frame, nil
	}
	if errors.Is(err, decode.ErrDrained) {
		return nil, ports.Errorf(ports.ErrNoFrameDecoded, "extract",
			"%d packets read without a decoded frame", p.Read())
	}
	return nil, err
}

func (o *Orchestrator) saveJSON(save func([]byte) error, v interface{}) {
	if !o.sink.Enabled() {
		return
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err == nil {
		err = save(data)
	}
	if err != nil {
		o.logger.Warn("Debug output failed: %v", err)
	}
}
