// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package logger provides the leveled logger shared by the simulation kernel,
// device models and test benches.
//
// A nil *Logger is valid and discards everything.
package logger

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/pkg/errors"
)

// Level is a logging severity.
type Level int

// Logging levels, from least to most verbose.
const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var levelNames = [...]string{"error", "warn", "info", "debug"}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel returns the Level named s (case insensitive).
func ParseLevel(s string) (Level, error) {
	for i, n := range levelNames {
		if strings.EqualFold(s, n) {
			return Level(i), nil
		}
	}
	return LevelInfo, errors.Errorf("unknown log level %q", s)
}

// Logger writes leveled messages to an underlying log.Logger.
type Logger struct {
	level Level
	l     *log.Logger
}

// New returns a Logger writing messages up to level to w. Lines are prefixed
// with prefix and carry no wall-clock timestamp: simulation output is stamped
// with simulated time by the callers.
func New(w io.Writer, level Level, prefix string) *Logger {
	return &Logger{
		level: level,
		l:     log.New(w, prefix, 0),
	}
}

// Discard returns a Logger that drops every message.
func Discard() *Logger {
	return New(io.Discard, LevelError, "")
}

// Level returns the current logging level.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelError
	}
	return l.level
}

// SetLevel adjusts the logging level.
func (l *Logger) SetLevel(level Level) {
	if l == nil {
		return
	}
	l.level = level
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return l != nil && level <= l.level && l.l.Writer() != io.Discard
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	l.l.Output(3, fmt.Sprintf(format, args...))
}

// Debugf logs a debug message.
func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(LevelDebug, format, args...) }

// Infof logs an informational message.
func (l *Logger) Infof(format string, args ...interface{}) { l.logf(LevelInfo, format, args...) }

// Warnf logs a warning.
func (l *Logger) Warnf(format string, args ...interface{}) { l.logf(LevelWarn, format, args...) }

// Errorf logs an error.
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(LevelError, format, args...) }
