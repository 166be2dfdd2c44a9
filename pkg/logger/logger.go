// Package logger provides the structured logger used across the application.
// It is a thin wrapper around logrus that pins a component field so every
// line can be attributed to the module that emitted it.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is a component-scoped structured logger. The embedded entry carries
// the component field; WithField/WithError chains behave as in logrus.
type Logger struct {
	*logrus.Entry
}

// New creates a logger writing to the given sink at the given level.
func New(component string, out io.Writer, level logrus.Level) *Logger {
	base := logrus.New()
	base.SetOutput(out)
	base.SetLevel(level)
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	return &Logger{Entry: base.WithField("component", component)}
}

// NewDefault creates a logger for the given component writing to stderr.
// The level is taken from LOG_LEVEL when set, defaulting to info.
func NewDefault(component string) *Logger {
	return New(component, os.Stderr, levelFromEnv())
}

// Named returns a child logger scoped to a sub-component.
func (l *Logger) Named(component string) *Logger {
	return &Logger{Entry: l.Entry.WithField("component", component)}
}

func levelFromEnv() logrus.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug", "trace":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
