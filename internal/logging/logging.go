// Package logging builds the leveled slog loggers used across the tool.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel is the environment variable that overrides the configured level.
const EnvLevel = "LOG_LEVEL"

// Format selects the slog handler.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format name. Unknown names give FormatText.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, "json") {
		return FormatJSON
	}
	return FormatText
}

// ParseLevel parses a log level string. Unknown names give Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromEnv returns the LOG_LEVEL value when set, fallback otherwise.
func LevelFromEnv(fallback string) string {
	if v := os.Getenv(EnvLevel); v != "" {
		return v
	}
	return fallback
}

type options struct {
	output io.Writer
	format Format
}

// Option configures New.
type Option func(*options)

// WithOutput sets the log output destination (stderr by default).
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// WithFormat selects text or JSON records.
func WithFormat(f Format) Option {
	return func(o *options) { o.format = f }
}

// New creates a logger writing records at or above level.
func New(level slog.Level, opts ...Option) *slog.Logger {
	o := options{output: os.Stderr, format: FormatText}
	for _, opt := range opts {
		opt(&o)
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if o.format == FormatJSON {
		h = slog.NewJSONHandler(o.output, handlerOpts)
	} else {
		h = slog.NewTextHandler(o.output, handlerOpts)
	}
	return slog.New(h)
}

// Discard returns a logger that discards all output.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
