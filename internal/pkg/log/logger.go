// Package log provides a simple wrapper around the standard log package
// with support for different log levels (ERROR, WARN, INFO, DEBUG)
package log

import (
	"fmt"
	"io"
	"log"
	"os"
)

type Level uint8

const (
	Silent Level = iota
	Error
	Warn
	Info
	Debug
)

var levelNames = map[string]Level{
	"silent": Silent,
	"error":  Error,
	"warn":   Warn,
	"info":   Info,
	"debug":  Debug,
}

// ParseLevel converts a level name as accepted by the --log-level flag
func ParseLevel(name string) (Level, error) {
	level, ok := levelNames[name]
	if !ok {
		return Info, fmt.Errorf("unknown log level: %s", name)
	}
	return level, nil
}

// NewLogger creates a new logger instance writing to stderr
func NewLogger(level Level) *Logger {
	return NewLoggerWithWriter(os.Stderr, level)
}

// NewLoggerWithWriter creates a new logger instance writing to w
func NewLoggerWithWriter(w io.Writer, level Level) *Logger {
	return &Logger{
		level:  level,
		logger: log.New(w, "qjson: ", log.LstdFlags),
	}
}

// Logger wraps the standard logger with additional log level functionality
type Logger struct {
	level Level
	// logger is the underlying standard logger instance
	logger *log.Logger
}

func (l *Logger) logf(level Level, tag string, format string, args ...any) {
	if l.level < level {
		return
	}
	l.logger.Printf(tag+format, args...)
}

// Errorf logs a message at ERROR level using printf style formatting
func (l *Logger) Errorf(format string, args ...any) {
	l.logf(Error, "[ERROR] ", format, args...)
}

// Warnf logs a message at WARN level using printf style formatting
func (l *Logger) Warnf(format string, args ...any) {
	l.logf(Warn, "[WARN] ", format, args...)
}

// Infof logs a message at INFO level using printf style formatting
func (l *Logger) Infof(format string, args ...any) {
	l.logf(Info, "[INFO] ", format, args...)
}

// Debugf logs a message at DEBUG level using printf style formatting
func (l *Logger) Debugf(format string, args ...any) {
	l.logf(Debug, "[DEBUG] ", format, args...)
}
