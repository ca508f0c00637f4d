package card

import (
	"image"
	"image/color"
	"math"

	"github.com/golang/freetype/raster"
	"golang.org/x/image/math/fixed"
)

const (
	// DefaultStrokeWidth is the scratch line width in pixels.
	DefaultStrokeWidth = 50.0

	// freshOffset displaces the start of a new path so a tap without
	// movement still forms a zero-length segment that paints as a dot.
	freshOffset = 0.01

	// Segments shorter than this (|dx|+|dy| in 26.6 units, 1/8 px) upset
	// the freetype stroker's cap and join geometry, so they are dropped.
	minSegment = 8
)

// StrokeRenderer paints round-capped lines into a mask. Each call strokes
// only the newest segment; since the mask accumulates coverage the result
// matches stroking the whole path with round joins.
type StrokeRenderer struct {
	Width float64
	// Color only matters for its alpha; the mask is used as coverage.
	Color color.Color

	lastX, lastY float64
	started      bool

	rast *raster.Rasterizer
	size image.Point
}

func NewStrokeRenderer(width float64) *StrokeRenderer {
	if width <= 0 {
		width = DefaultStrokeWidth
	}
	return &StrokeRenderer{Width: width, Color: color.RGBA{R: 0xFF, A: 0xFF}}
}

// Line extends the current path to (x, y) and strokes the new segment into
// mask. With fresh set the previous path is discarded first and a dot is
// painted at (x, y). Non-finite coordinates are ignored.
func (sr *StrokeRenderer) Line(mask *Surface, x, y float64, fresh bool) {
	if !finite(x) || !finite(y) {
		return
	}
	if fresh {
		sr.lastX, sr.lastY, sr.started = x+freshOffset, y, true
	}
	if !sr.started {
		// A lone point is a move without a line; nothing is painted.
		sr.lastX, sr.lastY, sr.started = x, y, true
		return
	}
	ax, ay := sr.lastX, sr.lastY
	if math.Abs(x-ax)+math.Abs(y-ay) <= minSegment/64.0 {
		if fresh {
			sr.dot(mask, x, y)
			sr.lastX, sr.lastY = x, y
		}
		// Too short to stroke; the next point continues from the last one.
		return
	}
	sr.lastX, sr.lastY = x, y
	sr.segment(mask, ax, ay, x, y)
}

// Reset forgets the current path.
func (sr *StrokeRenderer) Reset() {
	sr.started = false
}

// clip bounds painting to the mask grown by the stroke width. Anything
// beyond it cannot reach a mask pixel, and it keeps coordinates well inside
// the 26.6 range.
func (sr *StrokeRenderer) clip(mask *Surface) (minX, minY, maxX, maxY float64) {
	b := mask.Bounds()
	pad := sr.Width
	return float64(b.Min.X) - pad, float64(b.Min.Y) - pad, float64(b.Max.X) + pad, float64(b.Max.Y) + pad
}

func (sr *StrokeRenderer) dot(mask *Surface, x, y float64) {
	minX, minY, maxX, maxY := sr.clip(mask)
	if x < minX || x > maxX || y < minY || y > maxY {
		return
	}
	r := sr.rasterizer(mask.Bounds().Size())
	addCircle(r, toFixed(x, y), fixed.Int26_6(math.Round(sr.Width*32)))
	sr.paint(mask, r)
}

func (sr *StrokeRenderer) segment(mask *Surface, ax, ay, bx, by float64) {
	minX, minY, maxX, maxY := sr.clip(mask)
	ax, ay, bx, by, ok := clipSegment(ax, ay, bx, by, minX, minY, maxX, maxY)
	if !ok {
		return
	}
	a, b := toFixed(ax, ay), toFixed(bx, by)
	r := sr.rasterizer(mask.Bounds().Size())
	width := fixed.Int26_6(math.Round(sr.Width * 64))
	if abs26(b.X-a.X)+abs26(b.Y-a.Y) <= minSegment {
		// Clipping left a sliver; its caps still cover a dot.
		addCircle(r, b, width/2)
	} else {
		var path raster.Path
		path.Start(a)
		path.Add1(b)
		r.AddStroke(path, width, raster.RoundCapper, raster.RoundJoiner)
	}
	sr.paint(mask, r)
}

func (sr *StrokeRenderer) paint(mask *Surface, r *raster.Rasterizer) {
	painter := raster.NewRGBAPainter(mask.RGBA)
	painter.SetColor(sr.Color)
	r.Rasterize(painter)
}

func (sr *StrokeRenderer) rasterizer(size image.Point) *raster.Rasterizer {
	if sr.rast == nil || sr.size != size {
		sr.rast = raster.NewRasterizer(size.X, size.Y)
		sr.size = size
	}
	sr.rast.Clear()
	sr.rast.UseNonZeroWinding = true
	return sr.rast
}

// addCircle approximates a circle with eight quadratic arcs.
func addCircle(r *raster.Rasterizer, c fixed.Point26_6, radius fixed.Int26_6) {
	const n = 8
	rad := float64(radius)
	cx, cy := float64(c.X), float64(c.Y)
	step := 2 * math.Pi / n
	ctrl := rad / math.Cos(step/2)
	pt := func(rr, a float64) fixed.Point26_6 {
		return fixed.Point26_6{
			X: fixed.Int26_6(math.Round(cx + rr*math.Cos(a))),
			Y: fixed.Int26_6(math.Round(cy + rr*math.Sin(a))),
		}
	}
	r.Start(pt(rad, 0))
	for i := 0; i < n; i++ {
		a := float64(i) * step
		r.Add2(pt(ctrl, a+step/2), pt(rad, a+step))
	}
}

func toFixed(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(math.Round(x * 64)), Y: fixed.Int26_6(math.Round(y * 64))}
}

// clipSegment trims the segment a-b to the given box (Liang-Barsky). ok is
// false when no part of it lies inside.
func clipSegment(ax, ay, bx, by, minX, minY, maxX, maxY float64) (float64, float64, float64, float64, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := bx-ax, by-ay
	for _, e := range [4][2]float64{
		{-dx, ax - minX},
		{dx, maxX - ax},
		{-dy, ay - minY},
		{dy, maxY - ay},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return 0, 0, 0, 0, false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return 0, 0, 0, 0, false
			}
			if t < t1 {
				t1 = t
			}
		}
	}
	return ax + t0*dx, ay + t0*dy, ax + t1*dx, ay + t1*dy, true
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func abs26(v fixed.Int26_6) fixed.Int26_6 {
	if v < 0 {
		return -v
	}
	return v
}
