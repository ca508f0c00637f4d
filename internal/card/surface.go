// Package card is the scratch-off engine: two image layers, an accumulated
// stroke mask and the compositing that reveals the background through the
// foreground wherever the mask is painted.
package card

import (
	"image"
	"image/draw"
)

// Surface is an off-screen RGBA buffer with premultiplied alpha.
type Surface struct {
	*image.RGBA
}

func NewSurface(width, height int) *Surface {
	return &Surface{RGBA: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Clear resets every pixel to transparent.
func (s *Surface) Clear() {
	clear(s.Pix)
}

// DrawOver paints src at the origin with source-over compositing.
func (s *Surface) DrawOver(src image.Image) {
	draw.Draw(s.RGBA, s.Bounds(), src, src.Bounds().Min, draw.Over)
}

// DrawAtop paints src at the origin with source-atop compositing: src is
// kept only where the surface already has coverage, and the surface's alpha
// is unchanged. result = S*Da + D*(1-Sa).
func (s *Surface) DrawAtop(src *image.RGBA) {
	r := s.Bounds().Intersect(src.Bounds().Sub(src.Bounds().Min))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		di := s.PixOffset(r.Min.X, y)
		si := src.PixOffset(src.Bounds().Min.X+r.Min.X, src.Bounds().Min.Y+y)
		for x := r.Min.X; x < r.Max.X; x, di, si = x+1, di+4, si+4 {
			da := uint32(s.Pix[di+3])
			if da == 0 {
				continue
			}
			sa := uint32(src.Pix[si+3])
			for c := 0; c < 3; c++ {
				sc := uint32(src.Pix[si+c])
				dc := uint32(s.Pix[di+c])
				s.Pix[di+c] = uint8((sc*da + dc*(255-sa) + 127) / 255)
			}
		}
	}
}

// Clone returns an independent copy of the surface pixels.
func (s *Surface) Clone() *image.RGBA {
	out := image.NewRGBA(s.Bounds())
	copy(out.Pix, s.Pix)
	return out
}
