// Package logger implements a logging adapter using log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"go.trai.ch/featreg/internal/core/ports"
	"go.trai.ch/zerr"
)

// Format selects how log records are rendered.
type Format int

const (
	// FormatPretty renders colored lines for humans.
	FormatPretty Format = iota
	// FormatText renders logfmt-style slog text records.
	FormatText
	// FormatJSON renders one JSON object per record.
	FormatJSON
)

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger *slog.Logger
	mu     sync.RWMutex
	format Format
	output io.Writer
}

// New creates a Logger writing pretty output to stderr.
func New() ports.Logger {
	return newLogger(os.Stderr, FormatPretty)
}

// NewWithWriter creates a Logger writing slog text records to w.
func NewWithWriter(w io.Writer) *Logger {
	return newLogger(w, FormatText)
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return NewWithWriter(io.Discard)
}

func newLogger(w io.Writer, format Format) *Logger {
	return &Logger{
		logger: slog.New(newHandler(w, format)),
		format: format,
		output: w,
	}
}

func newHandler(w io.Writer, format Format) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatText:
		return slog.NewTextHandler(w, opts)
	default:
		return NewPrettyHandler(w, opts)
	}
}

// SetOutput updates the output destination, keeping the current format.
// A nil w selects stderr.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.logger = slog.New(newHandler(w, l.format))
}

// SetFormat switches the rendering format, keeping the output destination.
func (l *Logger) SetFormat(format Format) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.format = format
	l.logger = slog.New(newHandler(l.output, format))
}

// SetJSON switches between JSON and pretty logging.
func (l *Logger) SetJSON(enable bool) {
	if enable {
		l.SetFormat(FormatJSON)
		return
	}
	l.SetFormat(FormatPretty)
}

// Info logs an informational message with optional key/value pairs.
func (l *Logger) Info(msg string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg, args...)
}

// Warn logs a warning message with optional key/value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg, args...)
}

// Error logs err. Pretty output shows the cause chain one link per line;
// the other formats emit zerr metadata as structured fields.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.format == FormatPretty {
		l.logger.Error(formatErrorEntries(collectErrorEntries(err)))
		return
	}
	zerr.Log(context.Background(), l.logger, err)
}
