package card

import (
	"github.com/rook-computer/scratchcard/internal/document"
	"github.com/rook-computer/scratchcard/internal/input"
)

// Controller owns the drag state and routes pointer events to the stroke
// renderer and compositor. It is not safe for concurrent use; the app event
// loop is its only caller.
type Controller struct {
	Target     document.Offsetter
	Stroke     *StrokeRenderer
	Compositor *Compositor

	mask     *Surface
	dragging bool
	strokes  int
}

// NewController allocates an empty mask and performs the first composite.
func NewController(target document.Offsetter, compositor *Compositor, stroke *StrokeRenderer) *Controller {
	if stroke == nil {
		stroke = NewStrokeRenderer(DefaultStrokeWidth)
	}
	c := &Controller{Target: target, Stroke: stroke, Compositor: compositor}
	c.mask = NewSurface(compositor.Size())
	compositor.Composite(c.mask)
	return c
}

// Handle dispatches ev by type. The result reports whether the host should
// suppress the event's default action.
func (c *Controller) Handle(ev input.Event) bool {
	switch ev.Type {
	case input.Down:
		return c.PointerDown(ev)
	case input.Move:
		return c.PointerMove(ev)
	case input.Up:
		return c.PointerUp(ev)
	}
	return false
}

// PointerDown starts a fresh stroke at the event position. Events without
// coordinates are ignored.
func (c *Controller) PointerDown(ev input.Event) bool {
	p, ok := input.LocalCoords(c.Target, ev)
	if !ok {
		return false
	}
	c.dragging = true
	c.strokes++
	c.Stroke.Line(c.mask, p.X, p.Y, true)
	c.Compositor.Composite(c.mask)
	return ev.Cancelable
}

func (c *Controller) PointerMove(ev input.Event) bool {
	if !c.dragging {
		return false
	}
	p, ok := input.LocalCoords(c.Target, ev)
	if !ok {
		return false
	}
	c.Stroke.Line(c.mask, p.X, p.Y, false)
	c.Compositor.Composite(c.mask)
	return ev.Cancelable
}

func (c *Controller) PointerUp(ev input.Event) bool {
	if !c.dragging {
		return false
	}
	c.dragging = false
	return ev.Cancelable
}

// Reset re-allocates the mask and recomposites. It cannot be undone.
func (c *Controller) Reset() {
	c.mask = NewSurface(c.Compositor.Size())
	c.Stroke.Reset()
	c.strokes = 0
	c.Compositor.Composite(c.mask)
}

func (c *Controller) Dragging() bool { return c.dragging }

// Strokes counts strokes started since the last reset.
func (c *Controller) Strokes() int { return c.strokes }

// Visible is the current composited output.
func (c *Controller) Visible() *Surface { return c.Compositor.Visible() }

// Mask exposes the accumulated stroke mask.
func (c *Controller) Mask() *Surface { return c.mask }
