package card

import "fmt"

// Compositor rebuilds the visible surface from the two layers and the mask.
// The background is clipped to the mask on a scratch surface with
// source-atop, then stamped over the full foreground.
type Compositor struct {
	background *Layer
	foreground *Layer
	scratch    *Surface
	visible    *Surface
}

// NewCompositor requires layers of identical size; see Reconcile.
func NewCompositor(background, foreground *Layer) (*Compositor, error) {
	bw, bh := background.Size()
	fw, fh := foreground.Size()
	if bw != fw || bh != fh {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, bw, bh, fw, fh)
	}
	return &Compositor{
		background: background,
		foreground: foreground,
		scratch:    NewSurface(bw, bh),
		visible:    NewSurface(bw, bh),
	}, nil
}

func (c *Compositor) Size() (int, int) {
	return c.background.Size()
}

// Composite recomputes the whole visible surface. Output depends only on the
// layers and mask, so repeated calls without new strokes are pixel-identical.
func (c *Compositor) Composite(mask *Surface) {
	c.scratch.Clear()
	c.scratch.DrawOver(mask.RGBA)
	c.scratch.DrawAtop(c.background.Image)

	c.visible.Clear()
	c.visible.DrawOver(c.foreground.Image)
	c.visible.DrawOver(c.scratch.RGBA)
}

// Visible is the composited output. It is overwritten by every Composite.
func (c *Compositor) Visible() *Surface {
	return c.visible
}
