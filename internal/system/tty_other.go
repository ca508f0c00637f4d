//go:build !linux

package system

import "errors"

var errNoConsole = errors.New("console mode switching requires linux")

type Console struct {
	Logger logger
}

func (c Console) EnterGraphics() error { return errNoConsole }
func (c Console) Restore() error       { return errNoConsole }
