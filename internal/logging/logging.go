// =============================================================================
// Liquidacion XLSX - Logging
// =============================================================================
//
// Structured logging on top of zerolog. The converter only depends on a small
// printf-style Logger interface; this package provides the implementation
// used by the CLI:
//   - human-readable console output on stderr
//   - optional JSON lines appended to a log file
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures a Logger.
type Options struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string

	// File, when set, receives JSON log lines in addition to the console.
	File string

	// Console is the human-readable output. Defaults to os.Stderr.
	Console io.Writer
}

// Logger adapts zerolog to the printf-style logger used by the converter.
type Logger struct {
	zl zerolog.Logger
}

// ParseLevel maps a configuration level name to a zerolog level.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// New builds a Logger. The returned closer releases the log file and must be
// called when the program ends; it is a no-op without a file.
func New(opts Options) (*Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()
	return &Logger{zl: zl}, closer, nil
}

// NewWithWriter builds a Logger writing JSON lines to w, mostly for tests.
func NewWithWriter(w io.Writer, level zerolog.Level) *Logger {
	return &Logger{zl: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a child logger carrying an extra field.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

// Zerolog exposes the underlying logger for structured events.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zl
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.zl.Debug().Msgf(msg, args...) }
func (l *Logger) Info(msg string, args ...interface{})  { l.zl.Info().Msgf(msg, args...) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.zl.Warn().Msgf(msg, args...) }
func (l *Logger) Error(msg string, args ...interface{}) { l.zl.Error().Msgf(msg, args...) }

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
