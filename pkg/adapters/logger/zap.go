package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/user/thumbnailer/pkg/ports"
)

// ZapLogger emits structured JSON lines through zap. Messages are not
// translated so that log pipelines see stable text.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZap creates a JSON logger on stderr at the given level.
func NewZap(level ports.LogLevel) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &ZapLogger{logger: z}, nil
}

// NewZapFrom wraps an existing zap logger.
func NewZapFrom(z *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: z}
}

func zapLevel(level ports.LogLevel) zapcore.Level {
	switch level {
	case ports.LevelDebug:
		return zapcore.DebugLevel
	case ports.LevelWarn:
		return zapcore.WarnLevel
	case ports.LevelError:
		return zapcore.ErrorLevel
	case ports.LevelQuiet:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *ZapLogger) Debug(msg string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(msg, args...))
}

func (l *ZapLogger) Info(msg string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(msg, args...))
}

func (l *ZapLogger) Warn(msg string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(msg, args...))
}

func (l *ZapLogger) Error(msg string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(msg, args...))
}

// WithComponent adds a "component" field.
func (l *ZapLogger) WithComponent(component string) ports.Logger {
	return &ZapLogger{logger: l.logger.With(zap.String("component", component))}
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

var _ ports.Logger = (*ZapLogger)(nil)

// New returns the logger for a format name: "json" selects zap, anything
// else the console logger. LevelQuiet always yields a NoopLogger.
func New(format string, level ports.LogLevel) (ports.Logger, error) {
	if level == ports.LevelQuiet {
		return NewNoop(), nil
	}
	if format == "json" {
		return NewZap(level)
	}
	return NewConsole(level), nil
}
