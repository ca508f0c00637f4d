package screens

import (
	"fmt"
	"image"

	"github.com/rook-computer/scratchcard/internal/document"
	"github.com/rook-computer/scratchcard/internal/render"
	"github.com/rook-computer/scratchcard/internal/state"
)

// FrameSource returns the most recently composited card, or nil before the
// first composite.
type FrameSource interface {
	Frame() image.Image
}

// CardScreen draws the main view: the composited card at the canvas
// element's page position and the reset button.
type CardScreen struct {
	Doc    *document.Document
	Frames FrameSource
}

func (screen *CardScreen) Draw(drawer render.Drawer, currentState state.State) {
	drawer.FillBackground()
	if screen.Doc == nil {
		return
	}

	if canvas := screen.Doc.ByID(document.IDCanvas); canvas != nil && canvas.Displayed() {
		if frame := screen.Frames.Frame(); frame != nil {
			drawer.DrawImage(frame, canvas.PageRect())
		}
	}

	if button := screen.Doc.ByID(document.IDResetButton); button != nil && button.Displayed() {
		rect := button.PageRect()
		drawer.FillRect(rect, render.Accent)
		label := render.TextStyle{Color: render.AccentText, Size: 24, Align: render.TextAlignCenter}
		m := drawer.MeasureText("reset", label)
		drawer.DrawText("reset", rect.Min.X+rect.Dx()/2, rect.Min.Y+(rect.Dy()-m.Height)/2, label)
	}

	_, h := drawer.Size()
	stats := fmt.Sprintf("%d strokes", currentState.Card.Strokes)
	drawer.DrawText(stats, 24, h-48, render.TextStyle{Color: render.Muted, Size: 20})
}
