// Package main provides the CLI entry point for thumbnailer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/user/thumbnailer/pkg/adapters/logger"
	"github.com/user/thumbnailer/pkg/adapters/osfilesystem"
	"github.com/user/thumbnailer/pkg/config"
	"github.com/user/thumbnailer/pkg/ports"
	"github.com/user/thumbnailer/pkg/status"
	"github.com/user/thumbnailer/pkg/summarizer"
	"github.com/user/thumbnailer/pkg/thumbnailer"
)

var version = "dev"

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("Error: %v", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "thumbnailer",
		Usage:     l10n.T("Extract a still thumbnail from a video file"),
		ArgsUsage: "<input>",
		Version:   version,
		Flags:     append(globalFlags(), extractFlags()...),
		Action:    runExtract,
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     l10n.T("Decode the frame at the seek position and save it as an image"),
				ArgsUsage: "<input>",
				Flags:     extractFlags(),
				Action:    runExtract,
			},
			{
				Name:      "probe",
				Usage:     l10n.T("List the streams of a video file as YAML"),
				ArgsUsage: "<input>",
				Action:    runProbe,
			},
			{
				Name:  "serve",
				Usage: l10n.T("Run the HTTP status endpoint"),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Value:   status.DefaultAddr,
						Usage:   l10n.T("Listen address"),
						EnvVars: []string{"THUMBNAILER_ADDR"},
					},
				},
				Action: runServe,
			},
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, l10n.F("thumbnailer version %s", version))
					return nil
				},
			},
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   l10n.T("YAML configuration file"),
			EnvVars: []string{"THUMBNAILER_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Aliases: []string{"l"},
			Value:   "info",
			Usage:   l10n.T("Log level (debug, info, warn, error)"),
			EnvVars: []string{"THUMBNAILER_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "console",
			Usage:   l10n.T("Log format (console, json)"),
			EnvVars: []string{"THUMBNAILER_LOG_FORMAT"},
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"Q"},
			Usage:   l10n.T("Suppress all log output"),
		},
	}
}

func extractFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Value:   "thumbnail.jpg",
			Usage:   l10n.T("Output image path (.jpg, .png, .bmp, .tiff)"),
			EnvVars: []string{"THUMBNAILER_OUTPUT"},
		},
		&cli.DurationFlag{
			Name:    "seek",
			Aliases: []string{"s"},
			Value:   10 * time.Second,
			Usage:   l10n.T("Position of the thumbnail from the start of the video"),
			EnvVars: []string{"THUMBNAILER_SEEK"},
		},
		&cli.BoolFlag{
			Name:    "seek-fallback",
			Usage:   l10n.T("Use the first frame when the seek position is unreachable"),
			EnvVars: []string{"THUMBNAILER_SEEK_FALLBACK"},
		},
		&cli.IntFlag{
			Name:    "width",
			Aliases: []string{"W"},
			Usage:   l10n.T("Output width (0 keeps the aspect ratio)"),
			EnvVars: []string{"THUMBNAILER_WIDTH"},
		},
		&cli.IntFlag{
			Name:    "height",
			Aliases: []string{"H"},
			Usage:   l10n.T("Output height (0 keeps the aspect ratio)"),
			EnvVars: []string{"THUMBNAILER_HEIGHT"},
		},
		&cli.IntFlag{
			Name:    "quality",
			Aliases: []string{"q"},
			Value:   90,
			Usage:   l10n.T("JPEG quality (1-100)"),
			EnvVars: []string{"THUMBNAILER_QUALITY"},
		},
		&cli.StringFlag{
			Name:  "quality-preset",
			Usage: l10n.T("Quality preset (low, medium, high)"),
		},
		&cli.StringFlag{
			Name:    "ffmpeg-path",
			Usage:   l10n.T("Path to the ffmpeg executable"),
			EnvVars: []string{"THUMBNAILER_FFMPEG_PATH", "FFMPEG_PATH"},
		},
		&cli.StringFlag{
			Name:  "summary",
			Usage: l10n.T("Output execution summary to file (Markdown format)"),
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
			Usage:   l10n.T("Enable debug output"),
			EnvVars: []string{"THUMBNAILER_DEBUG"},
		},
		&cli.StringFlag{
			Name:    "debug-dir",
			Value:   "./debug",
			Usage:   l10n.T("Directory for debug output"),
			EnvVars: []string{"THUMBNAILER_DEBUG_DIR"},
		},
	}
}

func runExtract(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Input == "" {
		return errors.New(l10n.T("input file argument is required"))
	}
	if preset := c.String("quality-preset"); preset != "" {
		switch thumbnailer.QualityPreset(preset) {
		case thumbnailer.QualityLow, thumbnailer.QualityMedium, thumbnailer.QualityHigh:
		default:
			return fmt.Errorf("%s: %q", l10n.T("unknown quality preset"), preset)
		}
	}

	log, closeLog, err := newLogger(c, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signalContext(c.Context, log)
	defer cancel()

	t, err := thumbnailer.New(buildConfig(c, cfg), log)
	if err != nil {
		return err
	}

	result, err := t.Generate(ctx, cfg.Input, cfg.Output)
	if err != nil {
		return err
	}

	if path := c.String("summary"); path != "" {
		summary := summarizer.NewBuilder().
			WithInput(cfg.Input).
			WithRun(result).
			Build()
		w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(), osfilesystem.New())
		if err := w.Write(path, summary); err != nil {
			log.Warn("Failed to write summary: %s", err.Error())
		} else {
			log.Info("Summary saved to %s", path)
		}
	}

	return nil
}

func runProbe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Input == "" {
		return errors.New(l10n.T("input file argument is required"))
	}

	log, closeLog, err := newLogger(c, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	t, err := thumbnailer.New(buildConfig(c, cfg), log)
	if err != nil {
		return err
	}

	result, err := t.Probe(cfg.Input)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(c.App.Writer)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(result)
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(c, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signalContext(c.Context, log)
	defer cancel()

	return status.NewServer(c.String("addr"), log).Run(ctx)
}

// loadConfig reads the optional config file and applies flags set on the
// command line or through the environment.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg = loaded
	}

	if c.Args().Present() {
		cfg.Input = c.Args().First()
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("seek") {
		cfg.Seek = config.Duration(c.Duration("seek"))
	}
	if c.IsSet("seek-fallback") {
		cfg.SeekFallback = c.Bool("seek-fallback")
	}
	if c.IsSet("width") {
		cfg.Width = c.Int("width")
	}
	if c.IsSet("height") {
		cfg.Height = c.Int("height")
	}
	if c.IsSet("quality") {
		cfg.Quality = c.Int("quality")
	}
	if c.IsSet("ffmpeg-path") {
		cfg.FFmpegPath = c.String("ffmpeg-path")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}

	return cfg, cfg.Validate()
}

// buildConfig turns the file-level configuration into extraction settings.
func buildConfig(c *cli.Context, cfg config.Config) thumbnailer.Config {
	builder := thumbnailer.NewConfigBuilder().
		WithSeek(time.Duration(cfg.Seek)).
		WithSeekFallback(cfg.SeekFallback).
		WithWidth(cfg.Width).
		WithHeight(cfg.Height).
		WithQuality(cfg.Quality).
		WithFFmpegPath(cfg.FFmpegPath)

	// An explicit quality wins over the preset.
	if preset := c.String("quality-preset"); preset != "" && !c.IsSet("quality") {
		builder.WithQualityPreset(thumbnailer.QualityPreset(preset))
	}
	if cfg.Debug {
		builder.WithDebugDir(cfg.DebugDir)
	}

	return builder.Build()
}

func newLogger(c *cli.Context, cfg config.Config) (ports.Logger, func(), error) {
	if c.Bool("quiet") {
		return logger.NewNoop(), func() {}, nil
	}

	log, err := logger.New(cfg.LogFormat, cfg.Level())
	if err != nil {
		return nil, nil, err
	}
	if z, ok := log.(*logger.ZapLogger); ok {
		return log, func() { _ = z.Sync() }, nil
	}
	return log, func() {}, nil
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(parent context.Context, log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}
