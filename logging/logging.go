// Package logging provides the structured logging interface used across the
// simulation packages and a log/slog backed implementation.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level represents different logging levels.
type Level int

const (
	// LevelDebug represents debug level logging
	LevelDebug Level = iota

	// LevelInfo represents info level logging
	LevelInfo

	// LevelWarn represents warn level logging
	LevelWarn

	// LevelError represents error level logging
	LevelError
)

// String returns a string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a case-insensitive level name to a Level. Unknown names yield LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger provides structured logging capabilities.
type Logger interface {
	// Debug logs a debug message
	Debug(msg string, fields ...Field)

	// Info logs an info message
	Info(msg string, fields ...Field)

	// Warn logs a warning message
	Warn(msg string, fields ...Field)

	// Error logs an error message
	Error(msg string, fields ...Field)

	// With returns a new logger with additional fields
	With(fields ...Field) Logger
}

// Field represents a structured log field.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for constructing a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Options configures New.
type Options struct {
	Level  Level
	Format string // "json" or "text"
	Output io.Writer
}

// SlogLogger adapts *slog.Logger to the Logger interface.
type SlogLogger struct {
	logger *slog.Logger
}

// New builds a slog-backed Logger.
func New(opts Options) Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{Level: slogLevel(opts.Level)}
	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	}
	return &SlogLogger{logger: slog.New(handler)}
}

// NewDefault creates an info level text logger writing to stdout.
func NewDefault() Logger {
	return New(Options{Level: LevelInfo, Format: "text", Output: os.Stdout})
}

// FromSlog wraps an existing *slog.Logger.
func FromSlog(l *slog.Logger) Logger {
	return &SlogLogger{logger: l}
}

// Debug logs a debug message.
func (l *SlogLogger) Debug(msg string, fields ...Field) { l.logger.Debug(msg, attrs(fields)...) }

// Info logs an info message.
func (l *SlogLogger) Info(msg string, fields ...Field) { l.logger.Info(msg, attrs(fields)...) }

// Warn logs a warning message.
func (l *SlogLogger) Warn(msg string, fields ...Field) { l.logger.Warn(msg, attrs(fields)...) }

// Error logs an error message.
func (l *SlogLogger) Error(msg string, fields ...Field) { l.logger.Error(msg, attrs(fields)...) }

// With returns a new logger with additional fields.
func (l *SlogLogger) With(fields ...Field) Logger {
	return &SlogLogger{logger: l.logger.With(attrs(fields)...)}
}

func attrs(fields []Field) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, slog.Any(f.Key, f.Value))
	}
	return out
}

func slogLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MultiLogger allows logging to multiple loggers simultaneously.
type MultiLogger struct {
	loggers []Logger
}

// NewMulti creates a new multi-logger.
func NewMulti(loggers ...Logger) Logger {
	return &MultiLogger{loggers: loggers}
}

// Debug logs a debug message to all loggers.
func (m *MultiLogger) Debug(msg string, fields ...Field) {
	for _, logger := range m.loggers {
		logger.Debug(msg, fields...)
	}
}

// Info logs an info message to all loggers.
func (m *MultiLogger) Info(msg string, fields ...Field) {
	for _, logger := range m.loggers {
		logger.Info(msg, fields...)
	}
}

// Warn logs a warning message to all loggers.
func (m *MultiLogger) Warn(msg string, fields ...Field) {
	for _, logger := range m.loggers {
		logger.Warn(msg, fields...)
	}
}

// Error logs an error message to all loggers.
func (m *MultiLogger) Error(msg string, fields ...Field) {
	for _, logger := range m.loggers {
		logger.Error(msg, fields...)
	}
}

// With returns a new multi-logger with additional fields.
func (m *MultiLogger) With(fields ...Field) Logger {
	next := make([]Logger, len(m.loggers))
	for i, logger := range m.loggers {
		next[i] = logger.With(fields...)
	}
	return &MultiLogger{loggers: next}
}

// NoOpLogger provides a logger that does nothing (useful for testing).
type NoOpLogger struct{}

// NewNoOp creates a new no-op logger.
func NewNoOp() Logger {
	return NoOpLogger{}
}

// Debug does nothing.
func (NoOpLogger) Debug(string, ...Field) {}

// Info does nothing.
func (NoOpLogger) Info(string, ...Field) {}

// Warn does nothing.
func (NoOpLogger) Warn(string, ...Field) {}

// Error does nothing.
func (NoOpLogger) Error(string, ...Field) {}

// With returns the same no-op logger.
func (l NoOpLogger) With(...Field) Logger { return l }
