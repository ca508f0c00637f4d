package card

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// ErrSizeMismatch is returned when strict sizing is requested and the two
// layers differ in dimensions.
var ErrSizeMismatch = errors.New("layer sizes differ")

type Role string

const (
	Background Role = "background"
	Foreground Role = "foreground"
)

// Layer is a decoded, immutable input image.
type Layer struct {
	Role   Role
	Source string
	Image  *image.RGBA
}

// NewLayer converts img to RGBA anchored at the origin.
func NewLayer(role Role, source string, img image.Image) *Layer {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return &Layer{Role: role, Source: source, Image: rgba}
}

func (l *Layer) Size() (int, int) {
	return l.Image.Bounds().Dx(), l.Image.Bounds().Dy()
}

// Reconcile makes fg match bg's dimensions. With strict set a mismatch is an
// error; otherwise fg is resampled to bg's size. bg always defines the size.
func Reconcile(bg, fg *Layer, strict bool) (*Layer, error) {
	bw, bh := bg.Size()
	fw, fh := fg.Size()
	if bw == fw && bh == fh {
		return fg, nil
	}
	if strict {
		return nil, fmt.Errorf("%w: %s is %dx%d, %s is %dx%d", ErrSizeMismatch, bg.Role, bw, bh, fg.Role, fw, fh)
	}
	scaled := image.NewRGBA(image.Rect(0, 0, bw, bh))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), fg.Image, fg.Image.Bounds(), xdraw.Src, nil)
	return &Layer{Role: fg.Role, Source: fg.Source, Image: scaled}, nil
}
