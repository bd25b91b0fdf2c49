package text

// Alignment is the horizontal alignment of a block of text within its wrap
// width. It has no effect unless a wrap width is set.
type Alignment uint8

const (
	// AlignLeft aligns the text to the left.
	AlignLeft Alignment = iota
	// AlignCenter centers each line within the wrap width.
	AlignCenter
	// AlignRight aligns each line to the rightmost point within the wrap
	// width.
	AlignRight
)

// TextOptions specifies how text should be laid out.
type TextOptions struct {
	// Tracking is the amount of extra space, in pixels, to put between
	// each pair of characters.
	Tracking float32

	// WrapWidth limits the width of the text block to the given pixel
	// value, wrapping words to a new line when they exceed it. Zero or
	// negative disables wrapping.
	WrapWidth float32

	// Alignment positions each line within WrapWidth. Ignored when
	// wrapping is disabled.
	Alignment Alignment

	// LineSpacing multiplies the vertical distance between lines.
	LineSpacing float32

	// TrimLeadingWhitespace drops whitespace at the start of each line.
	// This keeps wrapped lines flush with the left edge.
	TrimLeadingWhitespace bool
}

// DefaultTextOptions returns the default layout options: no tracking, no
// wrapping, left alignment, single line spacing, and leading whitespace
// trimmed.
func DefaultTextOptions() TextOptions {
	return TextOptions{
		LineSpacing:           1,
		TrimLeadingWhitespace: true,
	}
}
