package render

import (
	"context"
	"image/draw"
	"sync"
	"sync/atomic"
	"time"

	fb "github.com/gonutz/framebuffer"
	xdraw "golang.org/x/image/draw"

	"github.com/rook-computer/scratchcard/internal/state"
)

// FBRenderer renders to the Linux framebuffer using an offscreen page canvas.
type FBRenderer struct {
	Device                string
	PageWidth, PageHeight int
	Logger                logger

	fbDev   *fb.Device
	page    *PageCanvas
	running atomic.Bool

	mu      sync.Mutex
	current Screen
}

func NewFBRenderer(device string, pageWidth, pageHeight int) *FBRenderer {
	return &FBRenderer{Device: device, PageWidth: pageWidth, PageHeight: pageHeight}
}

func (r *FBRenderer) Start(ctx context.Context) error {
	path := r.Device
	if path == "" {
		path = "/dev/fb0"
	}
	dev, err := fb.Open(path)
	if err != nil {
		return err
	}
	r.fbDev = dev
	if r.Logger != nil {
		bounds := dev.Bounds()
		r.Logger.Infof("fb", "framebuffer %s open, bounds=%dx%d, page=%dx%d", path, bounds.Dx(), bounds.Dy(), r.PageWidth, r.PageHeight)
	}
	r.page = NewPageCanvas(r.PageWidth, r.PageHeight, r.Logger)
	r.running.Store(true)
	return nil
}

func (r *FBRenderer) Stop() error {
	r.running.Store(false)
	if r.fbDev != nil {
		r.fbDev.Close()
	}
	return nil
}

// SetScreen sets the screen drawn from the next frame on.
func (r *FBRenderer) SetScreen(screen Screen) {
	r.mu.Lock()
	r.current = screen
	r.mu.Unlock()
}

func (r *FBRenderer) screen() Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// RedrawWithState draws the current screen and scales it onto the framebuffer.
func (r *FBRenderer) RedrawWithState(snap state.State) {
	screen := r.screen()
	if !r.running.Load() || screen == nil || r.fbDev == nil {
		return
	}
	frame := r.page.Render(screen, snap)
	xdraw.NearestNeighbor.Scale(r.fbDev, r.fbDev.Bounds(), frame, frame.Bounds(), draw.Src, nil)
}

// RunLoop continuously redraws at ~30 FPS until the context is done.
func (r *FBRenderer) RunLoop(ctx context.Context, store *state.Store) {
	ticker := time.NewTicker(time.Second / 30)
	defer ticker.Stop()
	lastLog := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := store.Snapshot()
			r.RedrawWithState(snap)
			if r.Logger != nil && time.Since(lastLog) > 10*time.Second {
				r.Logger.Infof("fb", "heartbeat frame, phase=%s strokes=%d", snap.Phase, snap.Card.Strokes)
				lastLog = time.Now()
			}
		}
	}
}
