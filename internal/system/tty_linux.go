//go:build linux

package system

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A // KDSETMODE ioctl
)

var vtPaths = []string{"/dev/tty", "/dev/tty0"}

// Console switches the active VT between text and graphics mode so the
// framebuffer card is not overdrawn by the blinking cursor.
type Console struct {
	Logger logger
}

// EnterGraphics sets KD_GRAPHICS and hides the cursor. Both steps are
// attempted; the first error is returned.
func (c Console) EnterGraphics() error {
	err := setMode(kdGraphics)
	c.report(err, "KD_GRAPHICS set", "KD_GRAPHICS failed")
	cursorErr := writeVT("\x1b[?25l")
	c.report(cursorErr, "cursor hidden", "hide cursor failed")
	if err != nil {
		return err
	}
	return cursorErr
}

// Restore shows the cursor and returns the console to text mode.
func (c Console) Restore() error {
	cursorErr := writeVT("\x1b[?25h")
	c.report(cursorErr, "cursor shown", "show cursor failed")
	err := setMode(kdText)
	c.report(err, "KD_TEXT set", "KD_TEXT failed")
	if cursorErr != nil {
		return cursorErr
	}
	return err
}

func (c Console) report(err error, ok, failed string) {
	if c.Logger == nil {
		return
	}
	if err != nil {
		c.Logger.Errorf("tty", "%s: %v", failed, err)
		return
	}
	c.Logger.Infof("tty", "%s", ok)
}

func setMode(mode int) error {
	var lastErr error
	for _, p := range vtPaths {
		fd, err := unix.Open(p, unix.O_RDONLY, 0)
		if err != nil {
			lastErr = fmt.Errorf("open %s: %w", p, err)
			continue
		}
		err = unix.IoctlSetInt(fd, kdSetMode, mode)
		_ = unix.Close(fd)
		if err != nil {
			lastErr = fmt.Errorf("KDSETMODE %d on %s: %w", mode, p, err)
			continue
		}
		return nil
	}
	return lastErr
}

func writeVT(s string) error {
	var lastErr error
	for _, p := range vtPaths {
		f, err := os.OpenFile(p, os.O_WRONLY, 0)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = f.WriteString(s)
		_ = f.Close()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("write VT failed: %w", lastErr)
}
