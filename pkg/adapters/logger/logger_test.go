package logger

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/user/thumbnailer/pkg/ports"
)

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewConsoleWriter(ports.LevelInfo, &out, &errOut)

	l.Debug("hidden %d", 1)
	l.Info("shown %d", 2)
	l.Warn("warned %d", 3)
	l.Error("failed %d", 4)

	if strings.Contains(out.String(), "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(out.String(), "shown 2") {
		t.Errorf("expected info on out, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "warned 3") || !strings.Contains(errOut.String(), "failed 4") {
		t.Errorf("expected warn and error on errOut, got %q", errOut.String())
	}
	if strings.Contains(out.String(), "warned") {
		t.Error("warnings must not go to out")
	}
}

func TestConsoleLogger_WithComponent(t *testing.T) {
	var out bytes.Buffer
	l := NewConsoleWriter(ports.LevelDebug, &out, &out)

	l.WithComponent("decode").Debug("state %s", "idle")

	if got := out.String(); got != "[decode] state idle\n" {
		t.Errorf("got %q", got)
	}
}

func TestConsoleLogger_Quiet(t *testing.T) {
	var out bytes.Buffer
	l := NewConsoleWriter(ports.LevelQuiet, &out, &out)
	l.Error("nothing")
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestZapLogger_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapFrom(zap.New(core))

	l.WithComponent("seek").Warn("target %dus", 5)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Message != "target 5us" || e.Level != zapcore.WarnLevel {
		t.Errorf("entry = %q at %v", e.Message, e.Level)
	}
	if e.ContextMap()["component"] != "seek" {
		t.Errorf("component field = %v", e.ContextMap()["component"])
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		format string
		level  ports.LogLevel
		want   string
	}{
		{"console", ports.LevelInfo, "*logger.ConsoleLogger"},
		{"json", ports.LevelInfo, "*logger.ZapLogger"},
		{"json", ports.LevelQuiet, "*logger.NoopLogger"},
	}
	for _, tt := range tests {
		l, err := New(tt.format, tt.level)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", tt.format, err)
		}
		if got := typeName(l); got != tt.want {
			t.Errorf("New(%q, %v) = %s, want %s", tt.format, tt.level, got, tt.want)
		}
	}
}

func typeName(l ports.Logger) string {
	switch l.(type) {
	case *ConsoleLogger:
		return "*logger.ConsoleLogger"
	case *ZapLogger:
		return "*logger.ZapLogger"
	case *NoopLogger:
		return "*logger.NoopLogger"
	}
	return "unknown"
}
