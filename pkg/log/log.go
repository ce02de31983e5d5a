// Package log provides crosstalk's structured logging facade.
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context, backed by Go's standard library slog.
// Construct one at startup and pass it down explicitly; there is no global
// logger.
//
//	l := log.NewLogger(log.WithLevel(log.DebugLevel), log.WithFormat("text"))
//	l = l.With(log.Str("store", "redis"))
//	l.Info("joined", log.Int("channel", 1), log.Int("id", 2))
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level represents the severity level of a log message.
type Level int

// Log levels
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("log: unknown level %q", s)
	}
}

func (l Level) slog() slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Field is one structured key/value pair.
type Field struct {
	Key   string
	Value any
}

// Str builds a string field.
func Str(key, value string) Field { return Field{Key: key, Value: value} }

// Int builds an int field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Err builds an error field.
func Err(err error) Field { return Field{Key: "error", Value: err} }

// Any builds a field from an arbitrary value.
func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// Logger is the leveled, structured logging interface crosstalk components
// are written against.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger carrying additional fields.
	With(fields ...Field) Logger
}

// Option configures NewLogger.
type Option func(*config)

type config struct {
	level  Level
	format string
	out    io.Writer
}

// WithLevel sets the minimum level. Default InfoLevel.
func WithLevel(level Level) Option {
	return func(c *config) { c.level = level }
}

// WithFormat selects "text" or "json" output. Default text.
func WithFormat(format string) Option {
	return func(c *config) { c.format = format }
}

// WithWriter directs output somewhere other than stderr.
func WithWriter(w io.Writer) Option {
	return func(c *config) { c.out = w }
}

type slogLogger struct {
	inner *slog.Logger
}

// NewLogger builds a Logger from the given options.
func NewLogger(options ...Option) Logger {
	cfg := config{level: InfoLevel, format: "text", out: os.Stderr}
	for _, option := range options {
		option(&cfg)
	}
	ho := &slog.HandlerOptions{Level: cfg.level.slog()}
	var h slog.Handler
	if cfg.format == "json" {
		h = slog.NewJSONHandler(cfg.out, ho)
	} else {
		h = slog.NewTextHandler(cfg.out, ho)
	}
	return &slogLogger{inner: slog.New(h)}
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger {
	return &slogLogger{inner: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

func (l *slogLogger) Debug(msg string, fields ...Field) { l.inner.Debug(msg, args(fields)...) }
func (l *slogLogger) Info(msg string, fields ...Field)  { l.inner.Info(msg, args(fields)...) }
func (l *slogLogger) Warn(msg string, fields ...Field)  { l.inner.Warn(msg, args(fields)...) }
func (l *slogLogger) Error(msg string, fields ...Field) { l.inner.Error(msg, args(fields)...) }

func (l *slogLogger) With(fields ...Field) Logger {
	return &slogLogger{inner: l.inner.With(args(fields)...)}
}

func args(fields []Field) []any {
	out := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		out = append(out, f.Key, f.Value)
	}
	return out
}
