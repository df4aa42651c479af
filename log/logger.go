// Package log exposes the logger interface accepted by qjson components.
package log

import "github.com/mazrean/qjson/internal/pkg/log"

// Logger defines the interface for logging operations used by the transcode pipeline
// and the command line tool. It provides methods for each log level.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

var DefaultLogger Logger = log.NewLogger(log.Info) // DefaultLogger logs at info level to stderr
