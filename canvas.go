package qd

import (
	"image"
	"math"

	"github.com/gogpu/qd/backend"
	"github.com/gogpu/qd/text"
)

// Canvas is the drawing surface of qd. Draw calls are queued and rendered
// in submission order on Flush, batched into as few backend draw calls as
// texture changes allow.
//
// A Canvas is owned by a single goroutine.
type Canvas struct {
	b      backend.Backend
	r      *renderer2D
	width  int
	height int
	closed bool
}

// New creates a canvas of the given size on the best available backend.
// With no GPU backend registered this is the bundled software backend.
func New(width, height int) (*Canvas, error) {
	b := backend.Default()
	if b == nil {
		return nil, renderErr("create canvas", backend.ErrBackendNotAvailable)
	}
	return NewCanvas(b, width, height, DefaultRendererConfig())
}

// NewCanvas creates a canvas on a specific backend.
func NewCanvas(b backend.Backend, width, height int, cfg RendererConfig) (*Canvas, error) {
	if err := b.Init(); err != nil {
		return nil, renderErr("init backend", err)
	}
	b.SetViewport(width, height)

	return &Canvas{
		b:      b,
		r:      newRenderer2D(b, cfg.withDefaults()),
		width:  width,
		height: height,
	}, nil
}

// Backend returns the backend the canvas renders with.
func (c *Canvas) Backend() backend.Backend { return c.b }

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// DrawText draws a block of laid-out text with its top-left corner at pos.
// The block may be drawn any number of times, at any position.
func (c *Canvas) DrawText(pos Vec2, color Color, block *text.FormattedTextBlock) {
	if c.closed || block == nil {
		return
	}
	c.r.drawText(pos, color, block)
}

// DrawTriangle draws a solid triangle. Vertices are in clockwise order.
func (c *Canvas) DrawTriangle(color Color, v0, v1, v2 Vec2) {
	c.DrawTriangleThreeColor([3]Vec2{v0, v1, v2}, [3]Color{color, color, color})
}

// DrawTriangleThreeColor draws a triangle with a color per vertex,
// interpolated across the face. Vertices are in clockwise order.
func (c *Canvas) DrawTriangleThreeColor(positions [3]Vec2, colors [3]Color) {
	if c.closed {
		return
	}
	c.r.drawTriangleThreeColor(positions, colors)
}

// DrawQuad draws a solid quadrilateral. Vertices are in clockwise order.
func (c *Canvas) DrawQuad(color Color, v0, v1, v2, v3 Vec2) {
	c.DrawQuadFourColor(
		[4]Vec2{v0, v1, v2, v3},
		[4]Color{color, color, color, color})
}

// DrawQuadFourColor draws a quadrilateral with a color per vertex.
// Vertices are in clockwise order.
func (c *Canvas) DrawQuadFourColor(positions [4]Vec2, colors [4]Color) {
	if c.closed {
		return
	}
	c.r.drawTriangleThreeColor(
		[3]Vec2{positions[0], positions[1], positions[2]},
		[3]Color{colors[0], colors[1], colors[2]})
	c.r.drawTriangleThreeColor(
		[3]Vec2{positions[2], positions[3], positions[0]},
		[3]Color{colors[2], colors[3], colors[0]})
}

// DrawRectangle draws a solid axis-aligned rectangle.
func (c *Canvas) DrawRectangle(color Color, r Rect) {
	c.DrawQuad(color, r.TopLeft(), r.TopRight(), r.BottomRight(), r.BottomLeft())
}

// DrawLine draws a line of the given thickness between two points.
// Zero-length lines are dropped.
func (c *Canvas) DrawLine(color Color, thickness float32, start, end Vec2) {
	dir, ok := end.Sub(start).Normalized()
	if !ok {
		return
	}
	perp := dir.Rotate90CW().Mul(thickness / 2)

	c.DrawQuad(color,
		start.Add(perp), end.Add(perp),
		end.Sub(perp), start.Sub(perp))
}

// DrawCircle draws a solid circle. The circle is rendered as a quad whose
// fragments outside the inscribed unit circle are discarded, so edges stay
// smooth at any radius.
func (c *Canvas) DrawCircle(color Color, center Vec2, radius float32) {
	if c.closed {
		return
	}
	r := Vec2{radius, radius}
	tl := center.Sub(r)
	br := center.Add(r)
	tr := Vec2{br.X, tl.Y}
	bl := Vec2{tl.X, br.Y}
	colors := [3]Color{color, color, color}

	c.r.drawCircleSection(
		[3]Vec2{tl, tr, br}, colors,
		[3]Vec2{{-1, -1}, {1, -1}, {1, 1}})
	c.r.drawCircleSection(
		[3]Vec2{br, bl, tl}, colors,
		[3]Vec2{{1, 1}, {-1, 1}, {-1, -1}})
}

// DrawCircleSectionThreeColor draws a triangular section of a circle, with
// a color per vertex. circleCoords give each vertex's normalized position
// within the circle field: the unit circle spans [-1, 1] on both axes, and
// fragments outside it are discarded. Vertices are in clockwise order.
func (c *Canvas) DrawCircleSectionThreeColor(positions [3]Vec2, colors [3]Color, circleCoords [3]Vec2) {
	if c.closed {
		return
	}
	c.r.drawCircleSection(positions, colors, circleCoords)
}

// ClearScreen fills the canvas with a solid color, respecting the current
// clip. Queued operations that would be fully covered by an opaque clear
// are discarded rather than rendered.
func (c *Canvas) ClearScreen(color Color) {
	if c.closed {
		return
	}
	c.r.clearScreen(color)
}

// SetClip restricts subsequent rendering to the given rectangle, in pixel
// coordinates. Pass nil to disable clipping. Queued operations are flushed
// first, since the clip applies at draw time.
func (c *Canvas) SetClip(r *Rect) {
	if c.closed {
		return
	}
	c.r.flush()

	if r == nil {
		c.b.SetScissor(nil)
		return
	}
	clip := image.Rect(
		int(math.Floor(float64(r.Min.X))),
		int(math.Floor(float64(r.Min.Y))),
		int(math.Ceil(float64(r.Max.X))),
		int(math.Ceil(float64(r.Max.Y))),
	)
	c.b.SetScissor(&clip)
}

// Flush renders everything queued since the last flush.
func (c *Canvas) Flush() {
	if c.closed {
		return
	}
	c.r.flush()
}

// SetViewportSize resizes the render target. Queued operations are flushed
// at the old size first.
func (c *Canvas) SetViewportSize(width, height int) {
	if c.closed {
		return
	}
	c.r.flush()
	c.b.SetViewport(width, height)
	c.width = width
	c.height = height
}

// Capture flushes and reads back the rendered image. Rows are returned
// top-down regardless of the backend's native origin.
func (c *Canvas) Capture() (*image.RGBA, error) {
	if c.closed {
		return nil, ErrCanvasClosed
	}
	c.r.flush()

	pix, w, h, err := c.b.Capture()
	if err != nil {
		return nil, renderErr("capture", err)
	}

	if c.b.OriginBottomLeft() {
		stride := w * 4
		for y := 0; y < h/2; y++ {
			top := pix[y*stride : (y+1)*stride]
			bot := pix[(h-1-y)*stride : (h-y)*stride]
			for i := range top {
				top[i], bot[i] = bot[i], top[i]
			}
		}
	}

	return &image.RGBA{
		Pix:    pix,
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, h),
	}, nil
}

// Close flushes pending operations and releases the canvas, its glyph
// cache and its backend. The canvas must not be used afterwards.
func (c *Canvas) Close() {
	if c.closed {
		return
	}
	c.r.flush()
	c.r.close()
	c.b.Close()
	c.closed = true
}
