package qd

import (
	"image/color"
	"testing"
)

func TestColorConstructors(t *testing.T) {
	if got := RGB(0.1, 0.2, 0.3); got != (Color{0.1, 0.2, 0.3, 1}) {
		t.Errorf("RGB = %v", got)
	}
	if got := RGBA(0.1, 0.2, 0.3, 0.4); got != (Color{0.1, 0.2, 0.3, 0.4}) {
		t.Errorf("RGBA = %v", got)
	}
	if got := RGB8(255, 0, 255); got != (Color{1, 0, 1, 1}) {
		t.Errorf("RGB8 = %v", got)
	}
	if got := RGBA8(0, 0, 0, 255); got != (Color{0, 0, 0, 1}) {
		t.Errorf("RGBA8 = %v", got)
	}
}

func TestColorRGBAInterface(t *testing.T) {
	r, g, b, a := White.RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff || a != 0xffff {
		t.Errorf("White.RGBA() = (%d, %d, %d, %d)", r, g, b, a)
	}

	// Premultiplied output for a half-transparent color.
	r, _, _, a = Color{1, 0, 0, 0.5}.RGBA()
	if a < 0x7f00 || a > 0x8100 {
		t.Errorf("alpha = %#x, want ~0x8000", a)
	}
	if r < 0x7f00 || r > 0x8100 {
		t.Errorf("premultiplied red = %#x, want ~0x8000", r)
	}
}

func TestFromColorRoundTrip(t *testing.T) {
	src := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	c := FromColor(src)

	if !approx(c.R, 200.0/255) || !approx(c.G, 100.0/255) || !approx(c.B, 50.0/255) {
		t.Errorf("FromColor = %v", c)
	}
	if c.A != 1 {
		t.Errorf("alpha = %v, want 1", c.A)
	}

	if got := FromColor(color.RGBA{}); got != (Color{}) {
		t.Errorf("FromColor(transparent) = %v, want zero", got)
	}
}

func TestColorHelpers(t *testing.T) {
	if got := Red.WithAlpha(0.25); got != (Color{1, 0, 0, 0.25}) {
		t.Errorf("WithAlpha = %v", got)
	}
	if !White.IsOpaque() {
		t.Error("White not opaque")
	}
	if Transparent.IsOpaque() {
		t.Error("Transparent reported opaque")
	}
}
