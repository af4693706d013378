package logging

import (
	"github.com/go-logr/logr"
)

const (
	LEVEL_INFO  = 0
	LEVEL_DEBUG = 1
	LEVEL_TRACE = 2
)

// NewLogger wraps a logr.Logger. A logger without a sink is replaced by one that discards everything.
func NewLogger(log logr.Logger) *Logger {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Logger{log: log}
}

// DefaultLogger returns a Logger that discards all output.
func DefaultLogger() *Logger {
	return &Logger{log: logr.Discard()}
}

// Logger is a struct that wraps the logr.Logger interface.
type Logger struct {
	log logr.Logger
}

// WithName returns a Logger whose messages are prefixed with name.
func (l *Logger) WithName(name string) *Logger {
	if l == nil {
		return DefaultLogger()
	}
	return &Logger{log: l.log.WithName(name)}
}

// WithValues returns a Logger that attaches the given key/value pairs to every message.
func (l *Logger) WithValues(keysAndValues ...interface{}) *Logger {
	if l == nil {
		return DefaultLogger()
	}
	return &Logger{log: l.log.WithValues(keysAndValues...)}
}

// Logr exposes the wrapped logr.Logger.
func (l *Logger) Logr() logr.Logger {
	if l == nil {
		return logr.Discard()
	}
	return l.log
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logr().V(LEVEL_DEBUG).Info(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.Logr().Info(msg, keysAndValues...)
}

func (l *Logger) Trace(msg string, keysAndValues ...interface{}) {
	l.Logr().V(LEVEL_TRACE).Info(msg, keysAndValues...)
}

// Warn logs a recoverable problem. logr has no warning level so these are
// info messages tagged with severity=warning.
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logr().Info(msg, append([]interface{}{"severity", "warning"}, keysAndValues...)...)
}

func (l *Logger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.Logr().Error(err, msg, keysAndValues...)
}
