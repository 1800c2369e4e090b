package thumbnailer

import (
	"context"

	"github.com/google/uuid"

	"github.com/user/thumbnailer/pkg/adapters/filesink"
	"github.com/user/thumbnailer/pkg/adapters/imagecodec"
	"github.com/user/thumbnailer/pkg/adapters/nullsink"
	"github.com/user/thumbnailer/pkg/adapters/osfilesystem"
	"github.com/user/thumbnailer/pkg/adapters/smartdecoder"
	"github.com/user/thumbnailer/pkg/media"
	"github.com/user/thumbnailer/pkg/orchestrator"
	"github.com/user/thumbnailer/pkg/ports"
	"github.com/user/thumbnailer/pkg/stages/convert"
	"github.com/user/thumbnailer/pkg/stages/seek"
	"github.com/user/thumbnailer/pkg/stages/selector"
	"github.com/user/thumbnailer/pkg/stages/write"
)

// Thumbnailer extracts thumbnails with the default adapters.
// It holds no per-run state; concurrent calls are independent.
type Thumbnailer struct {
	config   Config
	decoders *smartdecoder.Factory
	fs       ports.FileSystem
	codec    ports.ImageCodec
	logger   ports.Logger
}

// New initializes the media subsystem and returns a Thumbnailer.
func New(config Config, logger ports.Logger) (*Thumbnailer, error) {
	if err := media.Init(); err != nil {
		return nil, err
	}
	return &Thumbnailer{
		config:   config,
		decoders: smartdecoder.New(smartdecoder.Options{FFmpegPath: config.FFmpegPath}),
		fs:       osfilesystem.New(),
		codec:    imagecodec.New(),
		logger:   logger,
	}, nil
}

// Generate extracts a thumbnail from inputPath and writes it to outputPath.
func (t *Thumbnailer) Generate(ctx context.Context, inputPath, outputPath string) (orchestrator.RunResult, error) {
	cfg := t.config.ToOrchestratorConfig(inputPath, outputPath)
	cfg.RunID = uuid.NewString()
	return t.orchestrator(cfg.RunID).Run(ctx, cfg)
}

// Extract returns the thumbnail of inputPath without writing it.
func (t *Thumbnailer) Extract(ctx context.Context, inputPath string) (orchestrator.RunResult, error) {
	cfg := t.config.ToOrchestratorConfig(inputPath, "")
	cfg.RunID = uuid.NewString()
	return t.orchestrator(cfg.RunID).Extract(ctx, cfg)
}

// Probe lists the streams of inputPath and the one extraction would use.
func (t *Thumbnailer) Probe(inputPath string) (ProbeResult, error) {
	source, err := media.Open(inputPath)
	if err != nil {
		return ProbeResult{}, err
	}
	defer source.Close()

	result := ProbeResult{
		Path:     inputPath,
		Format:   source.Format(),
		Duration: source.Duration(),
	}
	for _, st := range source.Streams() {
		result.Streams = append(result.Streams, ProbedStream{
			StreamDescriptor: st,
			Decodable:        st.Kind == ports.KindVideo && t.decoders.CanDecode(st.Codec),
		})
	}

	best, err := selector.Best(source.Streams(), t.decoders)
	if err == nil {
		result.Selected = &best.Index
	}
	return result, nil
}

// ProbeResult describes an opened container.
type ProbeResult struct {
	Path     string         `yaml:"path"`
	Format   string         `yaml:"format"`
	Duration int64          `yaml:"duration_us"`
	Streams  []ProbedStream `yaml:"streams"`
	Selected *int           `yaml:"selected,omitempty"`
}

// ProbedStream is a stream plus whether a decoder backend handles it.
type ProbedStream struct {
	ports.StreamDescriptor `yaml:",inline"`
	Decodable              bool `yaml:"decodable"`
}

func (t *Thumbnailer) orchestrator(runID string) *orchestrator.Orchestrator {
	var sink ports.DebugSink = nullsink.New()
	if t.config.DebugDir != "" {
		sink = filesink.ForRun(t.config.DebugDir, runID, t.fs, t.codec)
	}

	return orchestrator.New(
		media.Opener{},
		t.decoders,
		selector.NewStage(t.decoders, t.logger),
		seek.NewStage(t.logger),
		convert.NewStage(t.logger),
		write.NewStage(t.codec, t.fs, t.logger),
		sink,
		t.logger,
	)
}
