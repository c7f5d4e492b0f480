// Package logx defines the two-sink logger interface the driver consumes
// (§6.4). Formatting is unspecified beyond requiring an info/error split;
// the default implementation mirrors the teacher's reliance on the stdlib
// log package, formalized into a replaceable interface.
package logx

import (
	"log"
	"os"
	"sync/atomic"
)

// Logger is the two-sink contract the driver logs through.
type Logger interface {
	Info(msg string)
	Error(msg string)
}

// stdLogger writes Info to stdout and Error to stderr via the stdlib log
// package, both with the same "[etherdream] " prefix.
type stdLogger struct {
	info *log.Logger
	err  *log.Logger
}

func (l *stdLogger) Info(msg string)  { l.info.Println(msg) }
func (l *stdLogger) Error(msg string) { l.err.Println(msg) }

// NewStdLogger builds the default Logger: info to stdout, error to
// stderr, both timestamped.
func NewStdLogger() Logger {
	return &stdLogger{
		info: log.New(os.Stdout, "[etherdream] ", log.LstdFlags),
		err:  log.New(os.Stderr, "[etherdream] ", log.LstdFlags),
	}
}

var defaultLogger atomic.Value // Logger

func init() {
	defaultLogger.Store(loggerBox{NewStdLogger()})
}

// loggerBox exists because atomic.Value requires identical concrete types
// across Store calls, and Logger is an interface.
type loggerBox struct{ Logger }

// Default returns the process-wide default logger (§6.4: "Replaceable
// process-wide").
func Default() Logger {
	return defaultLogger.Load().(loggerBox).Logger
}

// SetDefault replaces the process-wide default logger.
func SetDefault(l Logger) {
	if l == nil {
		l = NewStdLogger()
	}
	defaultLogger.Store(loggerBox{l})
}

// noop is handy for tests that want to silence logging entirely.
type noop struct{}

func (noop) Info(string)  {}
func (noop) Error(string) {}

// NewNoop returns a Logger that discards everything.
func NewNoop() Logger { return noop{} }
