// Package logging builds the charm logger shared by every component.
//
// CLI commands log to stderr. The TUI owns the terminal, so it logs to a
// file under the cache directory instead.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
)

// FileName is the log file written in TUI mode.
const FileName = "scribe.log"

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// File, when set, receives the output instead of Output.
	File   string
	Prefix string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// Logger is a *log.Logger that may own a file.
type Logger struct {
	*log.Logger
	closer io.Closer
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// New creates a logger. Terminals get the colored text formatter, anything
// else (files, pipes) gets logfmt.
func New(opts Options) (*Logger, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		lvl, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = lvl
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var closer io.Closer
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closer = f
	}

	formatter := log.LogfmtFormatter
	if isTerminal(out) {
		formatter = log.TextFormatter
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		Prefix:          opts.Prefix,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Formatter:       formatter,
	})
	return &Logger{Logger: logger, closer: closer}, nil
}

// FilePath returns the TUI log file inside cacheDir.
func FilePath(cacheDir string) string {
	return filepath.Join(cacheDir, FileName)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
