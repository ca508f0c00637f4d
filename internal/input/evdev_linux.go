//go:build linux

package input

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"
)

type readerLogger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// Reader watches evdev devices and decodes their pointer and key events.
// Callbacks run on per-device goroutines.
type Reader struct {
	Glob                  string
	PageWidth, PageHeight int
	Logger                readerLogger

	OnPointer func(Event)
	OnKey     func(code uint16)
}

// Start opens every device matching Glob and reads it until ctx is done.
// It fails only when no device can be found at all.
func (r *Reader) Start(ctx context.Context) error {
	glob := r.Glob
	if glob == "" {
		glob = "/dev/input/event*"
	}
	paths, err := filepath.Glob(glob)
	if err != nil {
		return fmt.Errorf("input glob %q: %w", glob, err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no evdev devices match %q", glob)
	}
	for _, path := range paths {
		go r.readDevice(ctx, path)
	}
	return nil
}

func (r *Reader) readDevice(ctx context.Context, path string) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		r.errorf("open %s: %v", path, err)
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer func() { _ = f.Close() }()

	dec := NewDecoder(r.PageWidth, r.PageHeight)
	dec.OnPointer = r.OnPointer
	dec.OnKey = r.OnKey
	if rng, ok := absRange(fd, absX); ok {
		dec.AbsX = rng
	} else if rng, ok := absRange(fd, absMTPositionX); ok {
		dec.AbsX = rng
	}
	if rng, ok := absRange(fd, absY); ok {
		dec.AbsY = rng
	} else if rng, ok := absRange(fd, absMTPositionY); ok {
		dec.AbsY = rng
	}
	r.infof("reading %s (abs x %d..%d, y %d..%d)", path, dec.AbsX.Min, dec.AbsX.Max, dec.AbsY.Min, dec.AbsY.Max)

	// input_event = timeval + u16 type + u16 code + s32 value.
	tvSize := binary.Size(unix.Timeval{})
	eventSize := tvSize + 2 + 2 + 4
	buf := make([]byte, eventSize*64)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			r.errorf("poll %s: %v", path, err)
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			r.errorf("read %s: %v", path, err)
			return
		}
		for off := 0; off+eventSize <= n; off += eventSize {
			rec := buf[off : off+eventSize]
			typ := binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
			code := binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4])
			value := int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8]))
			dec.Feed(typ, code, value)
		}
	}
}

// inputAbsInfo mirrors struct input_absinfo.
type inputAbsInfo struct {
	Value, Minimum, Maximum, Fuzz, Flat, Resolution int32
}

// absRange queries EVIOCGABS(axis).
func absRange(fd int, axis uint16) (AbsRange, bool) {
	var info inputAbsInfo
	req := uintptr(2<<30 | uint32(unsafe.Sizeof(info))<<16 | uint32('E')<<8 | uint32(0x40+axis))
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(&info)))
	if errno != 0 || info.Maximum <= info.Minimum {
		return AbsRange{}, false
	}
	return AbsRange{Min: info.Minimum, Max: info.Maximum}, true
}

func (r *Reader) infof(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Infof("input", format, args...)
	}
}

func (r *Reader) errorf(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Errorf("input", format, args...)
	}
}
