// Package logging provides the leveled, optionally colored logger used by
// every command. It keeps a printf-style surface (Info, Success, Warn, Error,
// Debug) on top of log/slog so job-scoped attributes and a JSON file sink
// come for free.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/speedy/internal/config"
	"github.com/backmassage/speedy/internal/term"
)

// LevelSuccess sits between Info and Warn so it survives a "warn" filter
// only when explicitly lowered to info.
const LevelSuccess = slog.Level(2)

// Options describes logger construction parameters.
type Options struct {
	Level      string    // debug | info | warn | error. Default: info.
	Color      bool      // Colorize the console level tag.
	File       string    // Optional file sink, appended to.
	FileFormat string    // "console" (default) or "json".
	Stdout     io.Writer // Default: os.Stdout.
	Stderr     io.Writer // Error-level console records. Default: os.Stderr.
}

// Logger wraps a slog.Logger with printf-style helpers.
type Logger struct {
	slog   *slog.Logger
	closer io.Closer
}

// New builds a Logger writing to the console and, when opts.File is set, to
// a log file as well.
func New(opts Options) (*Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	handlers := []slog.Handler{newConsoleHandler(stdout, stderr, levelVar, opts.Color)}

	l := &Logger{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.closer = f

		switch strings.ToLower(strings.TrimSpace(opts.FileFormat)) {
		case "", "console":
			handlers = append(handlers, newConsoleHandler(f, nil, levelVar, false))
		case "json":
			handlers = append(handlers, newJSONHandler(f, levelVar))
		default:
			f.Close()
			return nil, fmt.Errorf("log format: unsupported value %q", opts.FileFormat)
		}
	}

	l.slog = slog.New(newFanoutHandler(handlers...))
	return l, nil
}

// NewFromConfig configures terminal colors from cfg and builds the logger.
// Call Close when done if a log file was configured.
func NewFromConfig(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.Logging.Color)
	return New(Options{
		Level:      cfg.Logging.Level,
		Color:      term.Enabled(),
		File:       cfg.Logging.File,
		FileFormat: cfg.Logging.Format,
	})
}

// Discard returns a Logger that drops everything. Intended for tests.
func Discard() *Logger {
	return &Logger{slog: slog.New(newFanoutHandler())}
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

// With returns a child logger that adds args (slog key/value pairs) to
// every record. The child shares the parent's sinks.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

// Slog exposes the underlying structured logger.
func (l *Logger) Slog() *slog.Logger { return l.slog }

func (l *Logger) log(level slog.Level, format string, args ...any) {
	ctx := context.Background()
	if !l.slog.Enabled(ctx, level) {
		return
	}
	l.slog.Log(ctx, level, fmt.Sprintf(format, args...))
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...any) { l.log(slog.LevelInfo, format, args...) }

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...any) { l.log(LevelSuccess, format, args...) }

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...any) { l.log(slog.LevelWarn, format, args...) }

// Error logs at ERROR level (red), to stderr on the console.
func (l *Logger) Error(format string, args ...any) { l.log(slog.LevelError, format, args...) }

// Debug logs at DEBUG level (cyan). Dropped unless the level is debug.
func (l *Logger) Debug(format string, args ...any) { l.log(slog.LevelDebug, format, args...) }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// levelLabel returns the bracketed tag and its color for a level.
func levelLabel(level slog.Level) (string, string) {
	switch {
	case level >= slog.LevelError:
		return "ERROR", term.Red
	case level >= slog.LevelWarn:
		return "WARN", term.Yellow
	case level >= LevelSuccess:
		return "SUCCESS", term.Green
	case level >= slog.LevelInfo:
		return "INFO", term.Blue
	default:
		return "DEBUG", term.Cyan
	}
}
