// Package logger provides leveled logging for the free domain finder.
// Records go to the console and, optionally, to a persistent JSON log file.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus logger with one console and one optional file destination
type Logger struct {
	base         *logrus.Logger
	debugEnabled bool
	file         *os.File
	fileHook     *levelHook
}

// New creates a new logger writing info to stdout and everything else to stderr.
// DEBUG=true in the environment enables debug output.
func New() *Logger {
	return NewWithWriters(os.Stdout, os.Stderr)
}

// NewWithWriters creates a logger with explicit console writers
func NewWithWriters(stdout, stderr io.Writer) *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	base.SetLevel(logrus.DebugLevel)

	l := &Logger{
		base:         base,
		debugEnabled: strings.ToLower(os.Getenv("DEBUG")) == "true",
	}

	console := &logrus.TextFormatter{DisableTimestamp: true, DisableQuote: true}
	base.AddHook(&levelHook{
		out:       stdout,
		formatter: console,
		levels:    []logrus.Level{logrus.InfoLevel},
	})
	base.AddHook(&levelHook{
		out:       stderr,
		formatter: console,
		levels: []logrus.Level{
			logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel,
		},
	})
	base.AddHook(&levelHook{
		out:       stderr,
		formatter: console,
		levels:    []logrus.Level{logrus.DebugLevel},
		enabled:   func() bool { return l.debugEnabled },
	})

	return l
}

// AddFile appends JSON records to the file at path. Debug records are written
// only while debug logging is enabled.
func (l *Logger) AddFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	l.file = f
	l.fileHook = &levelHook{
		out:       f,
		formatter: &logrus.JSONFormatter{},
		levels:    logrus.AllLevels,
		minimum: func() logrus.Level {
			if l.debugEnabled {
				return logrus.DebugLevel
			}
			return logrus.InfoLevel
		},
	}
	l.base.AddHook(l.fileHook)
	return nil
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	l.fileHook.out = io.Discard
	err := l.file.Close()
	l.file = nil
	return err
}

// WithField returns an entry carrying one structured field
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.base.WithField(key, value)
}

// WithFields returns an entry carrying structured fields
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.base.WithFields(fields)
}

// Debugf logs debug messages when debug is enabled
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.base.Debugf(format, args...)
}

// Infof logs informational messages
func (l *Logger) Infof(format string, args ...interface{}) {
	l.base.Infof(format, args...)
}

// Warnf logs warning messages
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.base.Warnf(format, args...)
}

// Errorf logs error messages
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.base.Errorf(format, args...)
}

// SetDebug enables or disables debug logging
func (l *Logger) SetDebug(enabled bool) {
	l.debugEnabled = enabled
}

// DebugEnabled reports whether debug logging is on
func (l *Logger) DebugEnabled() bool {
	return l.debugEnabled
}

// levelHook formats entries of the given levels onto its own writer
type levelHook struct {
	out       io.Writer
	formatter logrus.Formatter
	levels    []logrus.Level
	enabled   func() bool
	minimum   func() logrus.Level
}

func (h *levelHook) Levels() []logrus.Level {
	return h.levels
}

func (h *levelHook) Fire(entry *logrus.Entry) error {
	if h.enabled != nil && !h.enabled() {
		return nil
	}
	if h.minimum != nil && entry.Level > h.minimum() {
		return nil
	}

	line, err := h.formatter.Format(entry)
	if err != nil {
		return fmt.Errorf("format log entry: %w", err)
	}
	_, err = h.out.Write(line)
	return err
}
