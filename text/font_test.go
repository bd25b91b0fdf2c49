package text

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func newTestFont(t *testing.T) *Font {
	t.Helper()
	f, err := NewFont(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFont: %v", err)
	}
	return f
}

func TestNewFontInvalidData(t *testing.T) {
	if _, err := NewFont([]byte("not a font")); err == nil {
		t.Fatal("NewFont accepted garbage data")
	}
}

func TestFontIDsUnique(t *testing.T) {
	a := newTestFont(t)
	b := newTestFont(t)
	if a.ID() == b.ID() {
		t.Errorf("two fonts share ID %d", a.ID())
	}
}

func TestLookupGlyph(t *testing.T) {
	f := newTestFont(t)

	g, ok := f.LookupGlyph('A')
	if !ok {
		t.Fatal("no glyph for 'A'")
	}
	if g.GID == 0 {
		t.Error("glyph for 'A' has ID 0")
	}
	if g.Font != f {
		t.Error("glyph does not reference its font")
	}

	if _, ok := f.LookupGlyph('你'); ok {
		t.Error("found glyph for CJK codepoint in goregular")
	}
}

func TestFontMetrics(t *testing.T) {
	f := newTestFont(t)
	m := f.EmptyLineMetrics(32)

	if m.Ascent <= 0 {
		t.Errorf("ascent = %v, want > 0", m.Ascent)
	}
	if m.Descent >= 0 {
		t.Errorf("descent = %v, want < 0", m.Descent)
	}
	if m.LineGap < 0 {
		t.Errorf("line gap = %v, want >= 0", m.LineGap)
	}
	if m.Height() != m.Ascent-m.Descent {
		t.Errorf("height = %v, want %v", m.Height(), m.Ascent-m.Descent)
	}
}

func TestFontMetricsScaleProportional(t *testing.T) {
	f := newTestFont(t)
	small := f.EmptyLineMetrics(16)
	large := f.EmptyLineMetrics(32)

	if large.Ascent <= small.Ascent {
		t.Errorf("ascent did not grow with scale: %v vs %v", small.Ascent, large.Ascent)
	}
}

func TestRasterizeGlyph(t *testing.T) {
	f := newTestFont(t)

	img, ok := f.RasterizeGlyph('A', 32, 0, 0)
	if !ok {
		t.Fatal("RasterizeGlyph('A') failed")
	}
	if img.Mask == nil || img.Mask.Bounds().Empty() {
		t.Fatal("empty mask for 'A'")
	}
	if img.Bounds.Min.Y >= 0 {
		t.Errorf("bounds min Y = %d, want < 0 (above baseline)", img.Bounds.Min.Y)
	}
	if img.Mask.Bounds().Dx() != img.Bounds.Dx() || img.Mask.Bounds().Dy() != img.Bounds.Dy() {
		t.Errorf("mask size %v does not match bounds %v", img.Mask.Bounds(), img.Bounds)
	}

	var covered bool
	for _, a := range img.Mask.Pix {
		if a > 0 {
			covered = true
			break
		}
	}
	if !covered {
		t.Error("mask has no coverage")
	}
}

func TestRasterizeGlyphSpace(t *testing.T) {
	f := newTestFont(t)
	if _, ok := f.RasterizeGlyph(' ', 32, 0, 0); ok {
		t.Error("space produced a visible glyph image")
	}

	// Fractional offsets yield a nonempty rect for whitespace, but never
	// any coverage.
	for _, off := range [][2]float32{{0.3, 0}, {0, 0.2}, {-0.4, 0.5}} {
		if _, ok := f.RasterizeGlyph(' ', 32, off[0], off[1]); ok {
			t.Errorf("space at offset (%v, %v) produced a visible glyph image",
				off[0], off[1])
		}
	}
}

func TestRasterizeGlyphSubpixel(t *testing.T) {
	f := newTestFont(t)

	a, ok := f.RasterizeGlyph('l', 24, 0, 0)
	if !ok {
		t.Fatal("RasterizeGlyph('l', 0) failed")
	}
	b, ok := f.RasterizeGlyph('l', 24, 0.5, 0)
	if !ok {
		t.Fatal("RasterizeGlyph('l', 0.5) failed")
	}

	// A half-pixel shift must change the rendered coverage.
	same := a.Bounds == b.Bounds
	if same {
		same = len(a.Mask.Pix) == len(b.Mask.Pix)
		if same {
			for i := range a.Mask.Pix {
				if a.Mask.Pix[i] != b.Mask.Pix[i] {
					same = false
					break
				}
			}
		}
	}
	if same {
		t.Error("subpixel offset had no effect on rasterization")
	}
}

func TestFontFamilyFallback(t *testing.T) {
	f := newTestFont(t)
	ff := NewFontFamily(f)

	if _, ok := ff.LookupGlyph('A'); !ok {
		t.Error("family missing glyph for 'A'")
	}
	if _, ok := ff.LookupGlyph('你'); ok {
		t.Error("family found glyph for CJK codepoint")
	}

	m := ff.EmptyLineMetrics(32)
	if m != f.EmptyLineMetrics(32) {
		t.Error("family metrics differ from first font")
	}

	empty := NewFontFamily()
	if got := empty.EmptyLineMetrics(32); got != (LineMetrics{}) {
		t.Errorf("empty family metrics = %+v, want zero", got)
	}
}
