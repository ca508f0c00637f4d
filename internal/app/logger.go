package app

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// Logger is the component-tagged logger every subsystem receives.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

// CharmLogger writes timestamped, leveled lines with the component as a key.
type CharmLogger struct{ l *log.Logger }

// NewLogger returns a CharmLogger writing to w at level. Timestamps are
// formatted as "HH:MM:SS.ms".
func NewLogger(w io.Writer, level log.Level) CharmLogger {
	return CharmLogger{l: log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})}
}

func (c CharmLogger) Infof(component string, format string, args ...interface{}) {
	c.l.Info(fmt.Sprintf(format, args...), "component", component)
}

func (c CharmLogger) Errorf(component string, format string, args ...interface{}) {
	c.l.Error(fmt.Sprintf(format, args...), "component", component)
}

// Debugf is only emitted at debug level (--verbose).
func (c CharmLogger) Debugf(component string, format string, args ...interface{}) {
	c.l.Debug(fmt.Sprintf(format, args...), "component", component)
}

// MultiLogger fans each line out to several loggers.
type MultiLogger []Logger

func (m MultiLogger) Infof(component string, format string, args ...interface{}) {
	for _, l := range m {
		l.Infof(component, format, args...)
	}
}

func (m MultiLogger) Errorf(component string, format string, args ...interface{}) {
	for _, l := range m {
		l.Errorf(component, format, args...)
	}
}
