package render

import (
	"context"
	"image"
	"image/color"

	"github.com/rook-computer/scratchcard/internal/state"
)

type Renderer interface {
	Start(ctx context.Context) error
	Stop() error
	SetScreen(screen Screen)
	RunLoop(ctx context.Context, store *state.Store)
	RedrawWithState(snap state.State)
}

type Screen interface {
	Draw(r Drawer, s state.State)
}

type NoopRenderer struct{}

func (n *NoopRenderer) Start(ctx context.Context) error                 { return nil }
func (n *NoopRenderer) Stop() error                                     { return nil }
func (n *NoopRenderer) SetScreen(screen Screen)                         {}
func (n *NoopRenderer) RunLoop(ctx context.Context, store *state.Store) {}
func (n *NoopRenderer) RedrawWithState(snap state.State)                {}

// Drawer is an abstraction the renderer provides to screens to draw primitives
// without exposing the output device.
type Drawer interface {
	// Size returns the page size (in pixels) that screens draw into.
	Size() (width int, height int)

	FillBackground()
	FillRect(rect image.Rectangle, c color.Color)

	// Generic text primitives.
	MeasureText(text string, style TextStyle) TextMetrics
	DrawText(text string, x, y int, style TextStyle) TextMetrics

	// DrawImage copies img unscaled with its top-left at rect.Min,
	// clipped to rect.
	DrawImage(img image.Image, rect image.Rectangle)
	DrawImageInRect(img image.Image, rect image.Rectangle, mode ScaleMode)

	// DrawTextCentered draws text centered on the page.
	DrawTextCentered(text string, yOffset int, style TextStyle)
}

type TextAlign int

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

// TextStyle describes how to render text.
// Coordinates for DrawText use a top-left anchor for Y.
// For X, Align controls how x is interpreted.
type TextStyle struct {
	Color color.Color
	Size  int // pixel size; 0 means DefaultTextSize
	Align TextAlign
}

type TextMetrics struct {
	Width      int
	Height     int
	Ascent     int
	Descent    int
	LineHeight int
}

type ScaleMode int

const (
	ScaleModeFit ScaleMode = iota
	ScaleModeFill
	ScaleModeStretch
)
