package text

import (
	"golang.org/x/text/unicode/norm"
)

// ZeroWidthSpace is the Unicode codepoint for a zero width space. It may be
// used to denote places where it would be appropriate to insert a line
// break when wrapping. It never produces a glyph.
const ZeroWidthSpace = '\u200B'

// Fallback runes tried, in order, when a codepoint has no glyph in any
// font. Codepoints that cannot be resolved at all are dropped.
const (
	missingGlyphRune = '□' // white square
	fallbackRune     = '?'
)

// Codepoint is a single Unicode codepoint for the purposes of text layout.
// UserIndex is carried through layout unchanged, allowing the caller to
// determine which output glyph corresponds to which input codepoint.
type Codepoint struct {
	UserIndex uint32
	Rune      rune
}

// CodepointsFromRunes assigns each rune its index as the user index.
func CodepointsFromRunes(runes []rune) []Codepoint {
	cps := make([]Codepoint, len(runes))
	for i, r := range runes {
		cps[i] = Codepoint{UserIndex: uint32(i), Rune: r}
	}
	return cps
}

// FormattedGlyph is a glyph which has been laid out as part of a line of
// text. X and Y position the glyph origin on its line's baseline, relative
// to the top left of the block.
type FormattedGlyph struct {
	// UserIndex identifies the input [Codepoint] this glyph was produced
	// from.
	UserIndex uint32

	// Font is the font the glyph was resolved in.
	Font *Font

	// GID is the glyph within Font.
	GID GlyphID

	// Rune is the codepoint that resolved to GID. For unresolvable input
	// this is the substituted fallback rune, not the original codepoint.
	Rune rune

	// Scale is the pixel scale the glyph was laid out at.
	Scale float32

	X float32
	Y float32
}

// FontID returns the identifier of the glyph's font.
func (g *FormattedGlyph) FontID() FontID { return g.Font.ID() }

// FormattedTextLine is a line of text laid out as part of a block.
type FormattedTextLine struct {
	// Glyphs are the line's glyphs in visual order.
	Glyphs []FormattedGlyph

	// Y is the vertical position of the top of this line within the block.
	Y float32

	// Width is the width of the line in pixels.
	Width float32

	// Height is the height of the line, equal to Ascent minus Descent.
	Height float32

	// Ascent is the maximum glyph height above the baseline.
	Ascent float32

	// Descent is the furthest distance below the baseline, negative or
	// zero.
	Descent float32

	// LineGap is the recommended gap between this line and the next.
	LineGap float32
}

// BaselineY returns the vertical position of this line's baseline within
// the block. Glyphs on the line have their Y at this position.
func (l *FormattedTextLine) BaselineY() float32 { return l.Y + l.Ascent }

func (l *FormattedTextLine) addOffsetX(offset float32) {
	for i := range l.Glyphs {
		l.Glyphs[i].X += offset
	}
}

// FormattedTextBlock is a block of text which has been laid out. Blocks are
// immutable: they may be drawn many times, shared between canvases, and
// read from multiple goroutines.
type FormattedTextBlock struct {
	// Lines are the block's lines, top to bottom.
	Lines []*FormattedTextLine

	// Width is the width in pixels of the widest line.
	Width float32

	// Height is the total height of the block in pixels.
	Height float32
}

// LayoutText lays out a string with the specified scale (in pixels) and
// options. The string undergoes Unicode NFC normalization first, so the
// UserIndex of each output glyph refers to the normalized rune sequence.
func LayoutText(s string, l Layouter, scale float32, opts TextOptions) *FormattedTextBlock {
	return LayoutRunes([]rune(norm.NFC.String(s)), l, scale, opts)
}

// LayoutRunes lays out a rune slice. The UserIndex of each output glyph is
// the index of its rune in runes.
func LayoutRunes(runes []rune, l Layouter, scale float32, opts TextOptions) *FormattedTextBlock {
	return LayoutCodepoints(CodepointsFromRunes(runes), l, scale, opts)
}

// LayoutCodepoints lays out codepoints carrying caller-chosen user indices.
func LayoutCodepoints(cps []Codepoint, l Layouter, scale float32, opts TextOptions) *FormattedTextBlock {
	it := newWordsIterator(splitWords(cps))

	var (
		lines []*FormattedTextLine
		posY  float32
		width float32
	)

	for it.hasNext() {
		line := layoutLine(l, it, scale, &opts, posY)

		if opts.WrapWidth > 0 {
			switch opts.Alignment {
			case AlignCenter:
				line.addOffsetX((opts.WrapWidth - line.Width) / 2)
			case AlignRight:
				line.addOffsetX(opts.WrapWidth - line.Width)
			}
		}

		posY += line.Height * opts.LineSpacing
		if it.hasNext() {
			posY += line.LineGap * opts.LineSpacing
		}

		width = max(width, line.Width)
		lines = append(lines, line)
	}

	return &FormattedTextBlock{Lines: lines, Width: width, Height: posY}
}

// word is a run of codepoints treated as an unbreakable unit during
// wrapping: either a newline marker, a single whitespace codepoint, or a
// run of non-whitespace codepoints.
type word struct {
	codepoints []Codepoint
	whitespace bool
	newline    bool
}

// from returns the tail of the word starting at codepoint index i.
func (w word) from(i int) word {
	return word{codepoints: w.codepoints[i:], whitespace: w.whitespace}
}

func splitWords(cps []Codepoint) []word {
	var result []word

	for i := 0; i < len(cps); i++ {
		switch cps[i].Rune {
		case ZeroWidthSpace, '\r':
			// Ignored entirely.

		case '\n':
			result = append(result, word{newline: true})

		case ' ', '\t':
			result = append(result, word{
				codepoints: cps[i : i+1],
				whitespace: true,
			})

		default:
			start := i
			for i+1 < len(cps) {
				switch cps[i+1].Rune {
				case ' ', '\t', '\r', '\n', ZeroWidthSpace:
				default:
					i++
					continue
				}
				break
			}
			result = append(result, word{codepoints: cps[start : i+1]})
		}
	}

	return result
}

// wordsIterator yields words in order, with a pending queue for words (or
// word tails) pushed back during wrapping. Pending words take priority.
type wordsIterator struct {
	words   []word
	pos     int
	pending []word
}

func newWordsIterator(words []word) *wordsIterator {
	return &wordsIterator{words: words}
}

func (it *wordsIterator) hasNext() bool {
	return len(it.pending) > 0 || it.pos < len(it.words)
}

func (it *wordsIterator) peek() (word, bool) {
	if len(it.pending) > 0 {
		return it.pending[0], true
	}
	if it.pos < len(it.words) {
		return it.words[it.pos], true
	}
	return word{}, false
}

func (it *wordsIterator) next() (word, bool) {
	if len(it.pending) > 0 {
		w := it.pending[0]
		it.pending = it.pending[1:]
		return w, true
	}
	if it.pos < len(it.words) {
		w := it.words[it.pos]
		it.pos++
		return w, true
	}
	return word{}, false
}

func (it *wordsIterator) addPending(w word) {
	it.pending = append(it.pending, w)
}

// lineLayoutMetrics accumulates the state of a line while glyphs are added
// to it. It is a value type: taking a copy snapshots the line state, and
// assigning a modified copy back commits it. Failed placements simply
// discard their copy.
type lineLayoutMetrics struct {
	xPos       float32
	maxAscent  float32
	minDescent float32
	maxLineGap float32

	hasLast    bool
	lastGID    GlyphID
	lastFontID FontID
}

func (m *lineLayoutMetrics) height() float32 {
	return m.maxAscent - m.minDescent
}

// advanceGlyph accounts for one glyph: kerning against the previous glyph
// when both come from the same font, tracking, vertical metrics (widened
// only when the font changes), and the glyph's advance. It returns the X
// position the glyph should be rendered at.
func (m *lineLayoutMetrics) advanceGlyph(g FontGlyph, scale float32, opts *TextOptions) float32 {
	fid := g.Font.ID()

	if m.hasLast {
		if m.lastFontID == fid {
			m.xPos += g.Font.kern(m.lastGID, g.GID, scale)
		}
		m.xPos += opts.Tracking
	}

	if !m.hasLast || m.lastFontID != fid {
		fm := g.Font.metrics(scale)
		m.maxAscent = max(m.maxAscent, fm.Ascent)
		m.minDescent = min(m.minDescent, fm.Descent)
		m.maxLineGap = max(m.maxLineGap, fm.LineGap)
	}

	startX := m.xPos
	m.xPos += g.Font.advance(g.GID, scale)

	m.hasLast = true
	m.lastGID = g.GID
	m.lastFontID = fid

	return startX
}

type wordResult uint8

const (
	// wordSuccess: the whole word fit on the line.
	wordSuccess wordResult = iota
	// wordPartial: the word was the first on its line and did not fit; a
	// leading portion was emitted and the rest pushed back.
	wordPartial
	// wordNotEnoughSpace: the word did not fit and was pushed back whole.
	wordNotEnoughSpace
)

// tryLayoutWord attempts to place w on the current line. Committed glyphs
// are appended to out with their final X and Y positions.
func tryLayoutWord(
	l Layouter,
	w word,
	it *wordsIterator,
	scale float32,
	opts *TextOptions,
	lineTopY float32,
	firstWordOnLine bool,
	prev lineLayoutMetrics,
	out *[]FormattedGlyph,
) (lineLayoutMetrics, wordResult) {
	wordMetrics := prev
	var glyphs []FormattedGlyph

	commit := func() {
		// The line's ascent may have grown while this word was placed, so
		// the baseline is only known now.
		baseline := lineTopY + wordMetrics.maxAscent
		for i := range glyphs {
			glyphs[i].Y = baseline
		}
		*out = append(*out, glyphs...)
	}

	for i, cp := range w.codepoints {
		// Nothing is committed until the glyph is known to fit.
		glyphMetrics := wordMetrics

		g, ok := l.LookupGlyph(cp.Rune)
		if !ok {
			g, ok = l.LookupGlyph(missingGlyphRune)
			if !ok {
				g, ok = l.LookupGlyph(fallbackRune)
			}
			if !ok {
				continue
			}
		}

		startX := glyphMetrics.advanceGlyph(g, scale, opts)

		fg := FormattedGlyph{
			UserIndex: cp.UserIndex,
			Font:      g.Font,
			GID:       g.GID,
			Rune:      g.Rune,
			Scale:     scale,
			X:         startX,
		}

		if opts.WrapWidth > 0 && glyphMetrics.xPos > opts.WrapWidth {
			if !firstWordOnLine {
				it.addPending(w)
				return prev, wordNotEnoughSpace
			}

			if i == 0 {
				// First glyph on the line: render it even though it goes
				// over the boundary, otherwise layout can never progress.
				glyphs = append(glyphs, fg)
				wordMetrics = glyphMetrics
				if len(w.codepoints) > 1 {
					it.addPending(w.from(i + 1))
				}
			} else {
				it.addPending(w.from(i))
			}

			commit()
			return wordMetrics, wordPartial
		}

		glyphs = append(glyphs, fg)
		wordMetrics = glyphMetrics
	}

	commit()
	return wordMetrics, wordSuccess
}

// layoutLine consumes words from it until the line is full or a newline or
// the end of input is reached.
func layoutLine(
	l Layouter,
	it *wordsIterator,
	scale float32,
	opts *TextOptions,
	posY float32,
) *FormattedTextLine {
	var metrics lineLayoutMetrics
	var glyphs []FormattedGlyph

	if opts.TrimLeadingWhitespace {
		for {
			w, ok := it.peek()
			if !ok || w.newline || !w.whitespace {
				break
			}
			it.next()
		}
	}

	firstWordOnLine := true
	for {
		w, ok := it.next()
		if !ok || w.newline {
			// A newline is consumed here and terminates the line.
			break
		}

		m, result := tryLayoutWord(
			l, w, it, scale, opts, posY, firstWordOnLine, metrics, &glyphs)
		metrics = m

		if result != wordSuccess {
			break
		}
		firstWordOnLine = false
	}

	if len(glyphs) == 0 {
		em := l.EmptyLineMetrics(scale)
		metrics.maxAscent = em.Ascent
		metrics.minDescent = em.Descent
		metrics.maxLineGap = em.LineGap
	}

	return &FormattedTextLine{
		Glyphs:  glyphs,
		Y:       posY,
		Width:   metrics.xPos,
		Height:  metrics.height(),
		Ascent:  metrics.maxAscent,
		Descent: metrics.minDescent,
		LineGap: metrics.maxLineGap,
	}
}
