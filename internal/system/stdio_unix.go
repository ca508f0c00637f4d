//go:build unix

package system

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// RedirectStdIO sends stdout and stderr to path, appending.
func RedirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open stdio log: %w", err)
	}
	defer f.Close()

	// Duplicate the file descriptor onto stdout/stderr so panics and all prints
	// (including from other goroutines) end up in the file.
	if err := unix.Dup2(int(f.Fd()), int(os.Stdout.Fd())); err != nil {
		return err
	}
	if err := unix.Dup2(int(f.Fd()), int(os.Stderr.Fd())); err != nil {
		return err
	}
	return nil
}
