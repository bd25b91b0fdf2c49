// Package qd is a batched, hardware-accelerated 2D rendering core.
//
// It converts application-level draw requests (text, shapes, images) into a
// minimal, ordered sequence of GPU draw calls, amortizing the cost of glyph
// rasterization through a dynamic texture atlas.
//
// The package is built from four cooperating parts:
//
//   - qd/text lays out Unicode text into immutable, shareable
//     [text.FormattedTextBlock] values, with word wrapping, alignment,
//     kerning and per-line metrics.
//   - qd/atlas packs glyph bitmaps into fixed-size texture pages.
//   - the glyph cache rasterizes glyphs on demand, places them in atlas
//     pages and reclaims space from glyphs no longer in use.
//   - [Canvas] queues heterogeneous draw operations and flushes them as the
//     minimum number of draw calls that still preserves submission order
//     (painter's algorithm).
//
// Rendering goes through a [backend.Backend]. The bundled software backend
// renders on the CPU and is registered by default; GPU hosts register their
// own backend and supply the device through the qd/backend device seam.
//
// Basic usage:
//
//	canvas, err := qd.New(800, 600)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer canvas.Close()
//
//	font, err := text.NewFont(goregular.TTF)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	block := text.LayoutText("Hello, world!", font, 32, text.DefaultTextOptions())
//
//	canvas.ClearScreen(qd.Black)
//	canvas.DrawText(qd.V2(20, 20), qd.White, block)
//	canvas.Flush()
//
// All mutable state in this package is single-threaded by design: a Canvas
// and its glyph cache are owned by one goroutine. FormattedTextBlock values
// are immutable after layout and may be shared freely across draw calls and
// frames.
package qd
