package screens

import (
	"fmt"
	"image"

	"github.com/rook-computer/scratchcard/internal/render"
	"github.com/rook-computer/scratchcard/internal/state"
)

const qrSizePx = 220

// LoadingScreen is the loading indicator shown until both layers arrive.
type LoadingScreen struct {
	// QR is drawn under the progress text when set.
	QR image.Image
}

func (screen *LoadingScreen) Draw(drawer render.Drawer, currentState state.State) {
	drawer.FillBackground()
	title := render.TextStyle{Color: render.Foreground}
	drawer.DrawTextCentered("loading", -80, title)

	load := currentState.Load
	progress := render.TextStyle{Color: render.Muted, Size: 24}
	if load.Total > 0 {
		drawer.DrawTextCentered(fmt.Sprintf("%d / %d images", load.Loaded, load.Total), -30, progress)
	}

	if screen.QR == nil {
		return
	}
	w, h := drawer.Size()
	rect := image.Rect(0, 0, qrSizePx, qrSizePx).Add(image.Pt((w-qrSizePx)/2, h/2))
	drawer.DrawImageInRect(screen.QR, rect, render.ScaleModeFit)
	if url := currentState.Network.URL; url != "" {
		drawer.DrawText(url, w/2, rect.Max.Y+8, render.TextStyle{Color: render.Muted, Size: 20, Align: render.TextAlignCenter})
	}
}
