package text

import (
	"image"
	"image/draw"

	"golang.org/x/image/math/fixed"
)

// GlyphImage is a rasterized glyph: an alpha mask plus its placement
// relative to the glyph origin on the baseline.
type GlyphImage struct {
	// Mask is the coverage mask. Its bounds start at (0, 0).
	Mask *image.Alpha

	// Bounds is the pixel rectangle the mask occupies relative to the
	// glyph origin. Min.Y is negative for glyphs that extend above the
	// baseline.
	Bounds image.Rectangle
}

// RasterizeGlyph renders the glyph for r at the given pixel scale.
//
// offsetX and offsetY shift the glyph origin by a fraction of a pixel
// before rasterization, so that the returned mask is exact for that
// fractional position. Both must be in [-0.5, 0.5].
//
// The second return value is false when the font has no glyph for r or the
// glyph has no visible extent (such as a space).
func (f *Font) RasterizeGlyph(r rune, scale, offsetX, offsetY float32) (*GlyphImage, bool) {
	face, err := f.face(scale)
	if err != nil {
		return nil, false
	}

	dot := fixed.Point26_6{X: floatToFixed(offsetX), Y: floatToFixed(offsetY)}

	f.mu.Lock()
	defer f.mu.Unlock()

	dr, mask, maskp, _, ok := face.Glyph(dot, r)
	if !ok || dr.Empty() {
		return nil, false
	}

	// The face reuses its mask buffer on the next Glyph call, so copy it
	// out while still holding the lock.
	out := image.NewAlpha(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	draw.Draw(out, out.Bounds(), mask, maskp, draw.Src)

	// At fractional offsets a whitespace glyph can come back as a nonempty
	// rect whose mask is fully transparent. Treat it like an empty glyph.
	covered := false
	for _, a := range out.Pix {
		if a != 0 {
			covered = true
			break
		}
	}
	if !covered {
		return nil, false
	}

	return &GlyphImage{Mask: out, Bounds: dr}, true
}
