package text

import (
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ErrInvalidFont is returned when font data cannot be parsed.
var ErrInvalidFont = errors.New("text: failed to parse font")

// FontID uniquely identifies a loaded font within the process.
type FontID uint64

// GlyphID identifies a glyph within a font. Zero is the missing-glyph slot.
type GlyphID uint16

// Font IDs start above a fixed offset so that they are recognizable in
// logs and cache keys.
var fontIDCounter atomic.Uint64

func init() {
	fontIDCounter.Store(10000)
}

// FontGlyph is a glyph resolved from a codepoint, together with the font
// that contains it.
type FontGlyph struct {
	Font *Font
	GID  GlyphID
	Rune rune
}

// LineMetrics holds the vertical metrics of a line of text, in pixels.
type LineMetrics struct {
	// Ascent is the maximum glyph height above the baseline.
	Ascent float32

	// Descent is the furthest distance below the baseline. It is negative
	// or zero: a value of -10 means glyphs can extend 10 pixels below the
	// baseline.
	Descent float32

	// LineGap is the recommended gap between lines, as encoded by the
	// font authors.
	LineGap float32
}

// Height returns the height of the line, equal to Ascent minus Descent.
func (m LineMetrics) Height() float32 {
	return m.Ascent - m.Descent
}

// Layouter resolves codepoints to glyphs for text layout. It is implemented
// by [Font] and [FontFamily]; callers may provide their own implementation
// to customize glyph selection.
type Layouter interface {
	// LookupGlyph returns the glyph for the given rune. The second return
	// value is false if no font provides the rune.
	LookupGlyph(r rune) (FontGlyph, bool)

	// EmptyLineMetrics returns the vertical metrics to use for a line
	// containing no glyphs, at the given scale in pixels.
	EmptyLineMetrics(scale float32) LineMetrics
}

// Font is a single parsed font. Fonts are cheap to share; all methods are
// safe for concurrent use.
type Font struct {
	id  FontID
	fnt *opentype.Font

	mu    sync.Mutex
	buf   sfnt.Buffer
	faces map[float32]font.Face
}

// NewFont parses a TrueType or OpenType font from the given bytes.
func NewFont(data []byte) (*Font, error) {
	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, errors.Join(ErrInvalidFont, err)
	}
	return &Font{
		id:    FontID(fontIDCounter.Add(1)),
		fnt:   fnt,
		faces: make(map[float32]font.Face),
	}, nil
}

// ID returns the unique identifier of this font.
func (f *Font) ID() FontID { return f.id }

// LookupGlyph implements [Layouter]. The second return value is false when
// the font has no glyph for the rune.
func (f *Font) LookupGlyph(r rune) (FontGlyph, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	gid, err := f.fnt.GlyphIndex(&f.buf, r)
	if err != nil || gid == 0 {
		return FontGlyph{}, false
	}
	return FontGlyph{Font: f, GID: GlyphID(gid), Rune: r}, true
}

// EmptyLineMetrics implements [Layouter].
func (f *Font) EmptyLineMetrics(scale float32) LineMetrics {
	return f.metrics(scale)
}

// metrics returns the font's vertical metrics at the given pixel scale.
func (f *Font) metrics(scale float32) LineMetrics {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.fnt.Metrics(&f.buf, floatToFixed(scale), font.HintingNone)
	if err != nil {
		return LineMetrics{}
	}
	ascent := fixedToFloat(m.Ascent)
	descent := -fixedToFloat(m.Descent)
	lineGap := fixedToFloat(m.Height) - (ascent - descent)
	if lineGap < 0 {
		lineGap = 0
	}
	return LineMetrics{Ascent: ascent, Descent: descent, LineGap: lineGap}
}

// advance returns the horizontal advance of gid at the given pixel scale.
func (f *Font) advance(gid GlyphID, scale float32) float32 {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, err := f.fnt.GlyphAdvance(&f.buf, sfnt.GlyphIndex(gid), floatToFixed(scale), font.HintingNone)
	if err != nil {
		return 0
	}
	return fixedToFloat(a)
}

// kern returns the kerning adjustment between two consecutive glyphs at the
// given pixel scale. Fonts without kerning data yield zero.
func (f *Font) kern(prev, next GlyphID, scale float32) float32 {
	f.mu.Lock()
	defer f.mu.Unlock()

	k, err := f.fnt.Kern(&f.buf, sfnt.GlyphIndex(prev), sfnt.GlyphIndex(next),
		floatToFixed(scale), font.HintingNone)
	if err != nil {
		return 0
	}
	return fixedToFloat(k)
}

// face returns a rasterization face at the given pixel scale, creating and
// caching it on first use. Faces are hinted off so that glyphs can be
// rendered at fractional subpixel offsets.
func (f *Font) face(scale float32) (font.Face, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if face, ok := f.faces[scale]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f.fnt, &opentype.FaceOptions{
		Size:    float64(scale),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	f.faces[scale] = face
	return face, nil
}

// FontFamily is a collection of fonts in decreasing order of priority.
// When laying out text, if a codepoint cannot be found in the first font,
// the subsequent fonts are also searched.
type FontFamily struct {
	fonts []*Font
}

// NewFontFamily creates a family from the given fonts, in decreasing order
// of priority.
func NewFontFamily(fonts ...*Font) *FontFamily {
	return &FontFamily{fonts: fonts}
}

// LookupGlyph implements [Layouter], searching each font in priority order.
func (ff *FontFamily) LookupGlyph(r rune) (FontGlyph, bool) {
	for _, f := range ff.fonts {
		if g, ok := f.LookupGlyph(r); ok {
			return g, true
		}
	}
	return FontGlyph{}, false
}

// EmptyLineMetrics implements [Layouter], using the highest-priority font.
func (ff *FontFamily) EmptyLineMetrics(scale float32) LineMetrics {
	if len(ff.fonts) == 0 {
		return LineMetrics{}
	}
	return ff.fonts[0].metrics(scale)
}

func floatToFixed(v float32) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
