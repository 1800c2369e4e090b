// Package ports defines the interfaces and value types shared by the
// extraction stages and their adapters.
package ports

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug covers per-packet and per-stage detail.
	LevelDebug LogLevel = iota
	// LevelInfo covers extraction progress: stream chosen, frame found.
	LevelInfo
	// LevelWarn covers recoverable problems such as a seek fallback.
	LevelWarn
	// LevelError covers failures that end an extraction.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

var logLevelNames = [...]string{"debug", "info", "warn", "error", "quiet"}

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	if l < LevelDebug || l > LevelQuiet {
		return "unknown"
	}
	return logLevelNames[l]
}

// ParseLogLevel parses a level name. Unknown names map to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	for i, name := range logLevelNames {
		if name == s {
			return LogLevel(i)
		}
	}
	if s == "warning" {
		return LevelWarn
	}
	return LevelInfo
}

// Logger is the logging abstraction used by every stage.
//
// msg is a translatable format key; args are its format arguments.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with component.
	WithComponent(component string) Logger
}
