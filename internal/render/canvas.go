package render

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/rook-computer/scratchcard/internal/assets"
	"github.com/rook-computer/scratchcard/internal/state"
)

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// PageCanvas is an offscreen page that screens draw into. It implements
// Drawer. Render is safe for concurrent use; the Drawer methods are only
// valid inside a Render call.
type PageCanvas struct {
	mu     sync.Mutex
	canvas *image.RGBA
	otf    *opentype.Font
	ttf    *truetype.Font
	faces  map[int]font.Face
	logger logger
}

func NewPageCanvas(width, height int, l logger) *PageCanvas {
	c := &PageCanvas{
		canvas: image.NewRGBA(image.Rect(0, 0, width, height)),
		faces:  map[int]font.Face{},
		logger: l,
	}
	if otf, err := opentype.Parse(assets.FontTTF); err != nil {
		c.errorf("opentype parse failed, using basicfont: %v", err)
	} else {
		c.otf = otf
	}
	if ttf, err := truetype.Parse(assets.FontTTF); err != nil {
		c.errorf("truetype parse failed: %v", err)
	} else {
		c.ttf = ttf
	}
	return c
}

// Render clears the page, draws screen and returns a copy of the result.
func (c *PageCanvas) Render(screen Screen, snap state.State) *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.FillBackground()
	if screen != nil {
		screen.Draw(c, snap)
	}
	out := image.NewRGBA(c.canvas.Bounds())
	copy(out.Pix, c.canvas.Pix)
	return out
}

func (c *PageCanvas) Size() (int, int) {
	return c.canvas.Bounds().Dx(), c.canvas.Bounds().Dy()
}

func (c *PageCanvas) FillBackground() {
	draw.Draw(c.canvas, c.canvas.Bounds(), &image.Uniform{C: Background}, image.Point{}, draw.Src)
}

func (c *PageCanvas) FillRect(rect image.Rectangle, col color.Color) {
	draw.Draw(c.canvas, rect.Intersect(c.canvas.Bounds()), &image.Uniform{C: col}, image.Point{}, draw.Over)
}

func (c *PageCanvas) DrawImage(img image.Image, rect image.Rectangle) {
	if img == nil {
		return
	}
	draw.Draw(c.canvas, rect, img, img.Bounds().Min, draw.Over)
}

func (c *PageCanvas) DrawImageInRect(img image.Image, rect image.Rectangle, mode ScaleMode) {
	if img == nil || rect.Empty() {
		return
	}
	src := img.Bounds()
	dst := rect
	switch mode {
	case ScaleModeFit, ScaleModeFill:
		sx := float64(rect.Dx()) / float64(src.Dx())
		sy := float64(rect.Dy()) / float64(src.Dy())
		scale := min(sx, sy)
		if mode == ScaleModeFill {
			scale = max(sx, sy)
		}
		w, h := int(float64(src.Dx())*scale), int(float64(src.Dy())*scale)
		x := rect.Min.X + (rect.Dx()-w)/2
		y := rect.Min.Y + (rect.Dy()-h)/2
		dst = image.Rect(x, y, x+w, y+h)
	}
	// Scale into a temporary RGBA, then composite clipped to rect.
	temp := image.NewRGBA(dst)
	xdraw.NearestNeighbor.Scale(temp, temp.Bounds(), img, src, xdraw.Over, nil)
	draw.Draw(c.canvas, dst.Intersect(rect), temp, dst.Intersect(rect).Min, draw.Over)
}

func (c *PageCanvas) MeasureText(text string, style TextStyle) TextMetrics {
	face := c.face(style.Size)
	metrics := face.Metrics()
	return TextMetrics{
		Width:      font.MeasureString(face, text).Ceil(),
		Height:     metrics.Height.Ceil(),
		Ascent:     metrics.Ascent.Ceil(),
		Descent:    metrics.Descent.Ceil(),
		LineHeight: metrics.Height.Ceil(),
	}
}

func (c *PageCanvas) DrawText(text string, x, y int, style TextStyle) TextMetrics {
	m := c.MeasureText(text, style)
	switch style.Align {
	case TextAlignCenter:
		x -= m.Width / 2
	case TextAlignRight:
		x -= m.Width
	}
	col := style.Color
	if col == nil {
		col = Foreground
	}
	drawer := &font.Drawer{
		Dst:  c.canvas,
		Src:  image.NewUniform(col),
		Face: c.face(style.Size),
		Dot:  fixed.P(x, y+m.Ascent),
	}
	drawer.DrawString(text)
	return m
}

func (c *PageCanvas) DrawTextCentered(text string, yOffset int, style TextStyle) {
	w, h := c.Size()
	m := c.MeasureText(text, style)
	style.Align = TextAlignCenter
	c.DrawText(text, w/2, h/2-m.Height/2+yOffset, style)
}

// face returns a cached face for size, preferring freetype for small text.
func (c *PageCanvas) face(size int) font.Face {
	if size <= 0 {
		size = DefaultTextSize
	}
	if f, ok := c.faces[size]; ok {
		return f
	}
	var f font.Face
	switch {
	case size < labelMaxSize && c.ttf != nil:
		f = truetype.NewFace(c.ttf, &truetype.Options{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
	case c.otf != nil:
		otf, err := opentype.NewFace(c.otf, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			c.errorf("font face create failed, using basicfont: %v", err)
			f = basicfont.Face7x13
		} else {
			f = otf
		}
	default:
		f = basicfont.Face7x13
	}
	c.faces[size] = f
	return f
}

func (c *PageCanvas) errorf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Errorf("render", format, args...)
	}
}
