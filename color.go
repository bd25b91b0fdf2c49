package qd

import "image/color"

// Color is an RGBA color with float32 components in the range [0, 1].
// Components are not premultiplied by alpha.
//
// The zero value is fully transparent black.
type Color struct {
	R, G, B, A float32
}

// Common colors.
var (
	Transparent = Color{0, 0, 0, 0}
	Black       = Color{0, 0, 0, 1}
	White       = Color{1, 1, 1, 1}
	Red         = Color{1, 0, 0, 1}
	Green       = Color{0, 1, 0, 1}
	Blue        = Color{0, 0, 1, 1}
	Yellow      = Color{1, 1, 0, 1}
	Cyan        = Color{0, 1, 1, 1}
	Magenta     = Color{1, 0, 1, 1}
	Gray        = Color{0.5, 0.5, 0.5, 1}
	DarkGray    = Color{0.25, 0.25, 0.25, 1}
	LightGray   = Color{0.75, 0.75, 0.75, 1}
)

// RGB returns an opaque color with the given components in [0, 1].
func RGB(r, g, b float32) Color {
	return Color{r, g, b, 1}
}

// RGBA returns a color with the given components in [0, 1].
func RGBA(r, g, b, a float32) Color {
	return Color{r, g, b, a}
}

// RGB8 returns an opaque color from 8-bit components.
func RGB8(r, g, b uint8) Color {
	return Color{float32(r) / 255, float32(g) / 255, float32(b) / 255, 1}
}

// RGBA8 returns a color from 8-bit components.
func RGBA8(r, g, b, a uint8) Color {
	return Color{float32(r) / 255, float32(g) / 255, float32(b) / 255, float32(a) / 255}
}

// FromColor converts a standard library color.
func FromColor(c color.Color) Color {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return Color{}
	}
	// color.Color returns alpha-premultiplied 16-bit components.
	af := float32(a) / 0xffff
	return Color{
		R: float32(r) / float32(a),
		G: float32(g) / float32(a),
		B: float32(b) / float32(a),
		A: af,
	}
}

// RGBA implements the standard library [color.Color] interface.
// Returned components are alpha-premultiplied 16-bit values.
func (c Color) RGBA() (r, g, b, a uint32) {
	conv := func(v float32) uint32 {
		v = clamp01(v) * c.A
		return uint32(v*0xffff + 0.5)
	}
	return conv(c.R), conv(c.G), conv(c.B), uint32(clamp01(c.A)*0xffff + 0.5)
}

// WithAlpha returns the color with its alpha component replaced.
func (c Color) WithAlpha(a float32) Color {
	c.A = a
	return c
}

// IsOpaque reports whether the color has full alpha.
func (c Color) IsOpaque() bool {
	return c.A >= 1
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
