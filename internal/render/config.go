package render

import "image/color"

// Page theme.
var (
	Foreground = color.RGBA{R: 0x22, G: 0x22, B: 0x33, A: 0xFF}
	Background = color.RGBA{R: 0xF4, G: 0xF1, B: 0xEA, A: 0xFF}
	Accent     = color.RGBA{R: 0xC0, G: 0x39, B: 0x2B, A: 0xFF}
	AccentText = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	Muted      = color.RGBA{R: 0x88, G: 0x84, B: 0x7C, A: 0xFF}
)

const (
	// DefaultTextSize is used when TextStyle.Size is zero.
	DefaultTextSize = 40

	// Text below this size uses the freetype face.
	labelMaxSize = 28
)
