//go:build !linux

package input

import (
	"context"
	"errors"
)

type readerLogger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// Reader is only implemented on Linux.
type Reader struct {
	Glob                  string
	PageWidth, PageHeight int
	Logger                readerLogger

	OnPointer func(Event)
	OnKey     func(code uint16)
}

func (r *Reader) Start(ctx context.Context) error {
	return errors.New("evdev input is only supported on linux")
}
