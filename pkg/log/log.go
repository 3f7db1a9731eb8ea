// Package log provides the leveled logger shared by the emulated
// components.
package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// New returns a logger writing to stdout at info level.
func New() Logger {
	return NewWithWriter(os.Stdout, false)
}

// NewWithWriter returns a logger writing plain text lines to w,
// including debug output if debug is set.
func NewWithWriter(w io.Writer, debug bool) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
		DisableQuote:     true,
	}
	return l
}
