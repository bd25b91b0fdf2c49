// Package text lays out Unicode text into positioned glyphs, ready for
// rendering.
//
// Text is laid out against a [Layouter], usually a [Font] or a [FontFamily],
// producing an immutable [FormattedTextBlock]. Layout handles word wrapping,
// alignment, kerning, tracking and per-line vertical metrics. A block may be
// laid out once and drawn many times, on any canvas.
//
// Font parsing and glyph rasterization are built on
// golang.org/x/image/font/sfnt and golang.org/x/image/font/opentype.
package text
