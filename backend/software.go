package backend

import (
	"image"
	"math"
)

// init registers the software backend on package import.
func init() {
	Register(NameSoftware, func() Backend {
		return NewSoftware()
	})
}

// Software is a CPU-based rendering backend. It rasterizes triangle
// batches into an in-memory RGBA framebuffer and supports full pixel
// readback via Capture.
//
// Software implements the same semantics GPU backends are expected to
// provide, so it doubles as the reference implementation for tests.
type Software struct {
	initialized bool
	valid       bool

	width  int
	height int
	pix    []uint8 // RGBA, rows top-down

	scissor *image.Rectangle
	bound   *softwareTexture

	drawCalls int
	triangles int
}

// NewSoftware creates a new software rendering backend.
func NewSoftware() *Software {
	return &Software{valid: true}
}

// Name returns the backend identifier.
func (b *Software) Name() string { return NameSoftware }

// Init initializes the backend.
func (b *Software) Init() error {
	b.initialized = true
	return nil
}

// SetViewport sets the framebuffer size, reallocating it if needed.
func (b *Software) SetViewport(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if width == b.width && height == b.height && b.pix != nil {
		return
	}
	b.width = width
	b.height = height
	b.pix = make([]uint8, width*height*4)
}

// Clear fills the scissor region (or the full framebuffer) with a color.
func (b *Software) Clear(r, g, bl, a float32) {
	if b.pix == nil {
		return
	}
	cr := to8(r)
	cg := to8(g)
	cb := to8(bl)
	ca := to8(a)

	x0, y0, x1, y1 := b.clipBounds()
	for y := y0; y < y1; y++ {
		row := y * b.width * 4
		for x := x0; x < x1; x++ {
			i := row + x*4
			b.pix[i+0] = cr
			b.pix[i+1] = cg
			b.pix[i+2] = cb
			b.pix[i+3] = ca
		}
	}
}

// SetScissor restricts rendering to rect. A nil rect disables scissoring.
func (b *Software) SetScissor(rect *image.Rectangle) {
	if rect == nil {
		b.scissor = nil
		return
	}
	r := *rect
	b.scissor = &r
}

// BindTexture makes t the active texture for subsequent draws.
func (b *Software) BindTexture(t Texture) {
	st, _ := t.(*softwareTexture)
	b.bound = st
}

// UnbindTexture clears the active texture.
func (b *Software) UnbindTexture() {
	b.bound = nil
}

// NewTexture creates an RGBA texture stored in CPU memory.
func (b *Software) NewTexture(desc TextureDescriptor) (Texture, error) {
	if !b.valid {
		return nil, ErrInvalidated
	}
	return &softwareTexture{
		backend: b,
		width:   desc.Width,
		height:  desc.Height,
		pix:     make([]uint8, desc.Width*desc.Height*4),
	}, nil
}

// Capture returns a copy of the framebuffer contents.
func (b *Software) Capture() ([]uint8, int, int, error) {
	if b.pix == nil {
		return nil, 0, 0, ErrNotInitialized
	}
	out := make([]uint8, len(b.pix))
	copy(out, b.pix)
	return out, b.width, b.height, nil
}

// OriginBottomLeft reports row order of Capture. The software framebuffer
// is stored top-down.
func (b *Software) OriginBottomLeft() bool { return false }

// Valid reports whether the backend is still usable.
func (b *Software) Valid() bool { return b.valid }

// Invalidate marks the backend as lost. Draw calls become no-ops and
// textures detach on Close instead of freeing.
func (b *Software) Invalidate() {
	b.valid = false
}

// Close releases backend resources.
func (b *Software) Close() {
	b.valid = false
	b.initialized = false
	b.pix = nil
	b.bound = nil
}

// DrawCalls returns the number of DrawTriangles invocations since the last
// ResetStats.
func (b *Software) DrawCalls() int { return b.drawCalls }

// TrianglesDrawn returns the number of triangles submitted since the last
// ResetStats.
func (b *Software) TrianglesDrawn() int { return b.triangles }

// ResetStats zeroes the draw statistics.
func (b *Software) ResetStats() {
	b.drawCalls = 0
	b.triangles = 0
}

// DrawTriangles rasterizes the batch into the framebuffer.
func (b *Software) DrawTriangles(blend BlendMode, data *AttributeData) {
	if !b.valid || b.pix == nil || data == nil {
		return
	}
	n := data.VertexCount() / 3
	if n == 0 {
		return
	}
	b.drawCalls++
	b.triangles += n

	for t := 0; t < n; t++ {
		b.rasterize(blend, data, t*3)
	}
}

// clipBounds returns the intersection of the viewport and scissor as
// half-open pixel bounds.
func (b *Software) clipBounds() (x0, y0, x1, y1 int) {
	x0, y0, x1, y1 = 0, 0, b.width, b.height
	if b.scissor != nil {
		x0 = max(x0, b.scissor.Min.X)
		y0 = max(y0, b.scissor.Min.Y)
		x1 = min(x1, b.scissor.Max.X)
		y1 = min(y1, b.scissor.Max.Y)
	}
	return
}

func (b *Software) rasterize(blend BlendMode, d *AttributeData, v0 int) {
	v1, v2 := v0+1, v0+2

	x0, y0 := d.Positions[v0*2], d.Positions[v0*2+1]
	x1, y1 := d.Positions[v1*2], d.Positions[v1*2+1]
	x2, y2 := d.Positions[v2*2], d.Positions[v2*2+1]

	area := (x1-x0)*(y2-y0) - (x2-x0)*(y1-y0)
	if area == 0 {
		return
	}
	// Accept both windings. s flips the edge directions so the fill rule
	// below sees a consistent orientation.
	inv := 1 / area
	s := float32(1)
	if area < 0 {
		s = -1
	}

	minX := int(math.Floor(float64(min3(x0, x1, x2))))
	minY := int(math.Floor(float64(min3(y0, y1, y2))))
	maxX := int(math.Ceil(float64(max3(x0, x1, x2))))
	maxY := int(math.Ceil(float64(max3(y0, y1, y2))))

	cx0, cy0, cx1, cy1 := b.clipBounds()
	minX = max(minX, cx0)
	minY = max(minY, cy0)
	maxX = min(maxX, cx1)
	maxY = min(maxY, cy1)

	for py := minY; py < maxY; py++ {
		fy := float32(py) + 0.5
		for px := minX; px < maxX; px++ {
			fx := float32(px) + 0.5

			// Barycentric weights via edge functions, sampled at the
			// pixel center.
			w0 := ((x1-fx)*(y2-fy) - (x2-fx)*(y1-fy)) * inv
			w1 := ((x2-fx)*(y0-fy) - (x0-fx)*(y2-fy)) * inv
			w2 := ((x0-fx)*(y1-fy) - (x1-fx)*(y0-fy)) * inv
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			// A pixel center exactly on an edge belongs to only one of the
			// two triangles sharing that edge: top and left edges fill,
			// bottom and right edges do not.
			if w0 == 0 && !topLeftEdge(s*(x2-x1), s*(y2-y1)) {
				continue
			}
			if w1 == 0 && !topLeftEdge(s*(x0-x2), s*(y0-y2)) {
				continue
			}
			if w2 == 0 && !topLeftEdge(s*(x1-x0), s*(y1-y0)) {
				continue
			}

			r := w0*d.Colors[v0*4+0] + w1*d.Colors[v1*4+0] + w2*d.Colors[v2*4+0]
			g := w0*d.Colors[v0*4+1] + w1*d.Colors[v1*4+1] + w2*d.Colors[v2*4+1]
			bl := w0*d.Colors[v0*4+2] + w1*d.Colors[v1*4+2] + w2*d.Colors[v2*4+2]
			a := w0*d.Colors[v0*4+3] + w1*d.Colors[v1*4+3] + w2*d.Colors[v2*4+3]

			u := w0*d.TexCoords[v0*2] + w1*d.TexCoords[v1*2] + w2*d.TexCoords[v2*2]
			v := w0*d.TexCoords[v0*2+1] + w1*d.TexCoords[v1*2+1] + w2*d.TexCoords[v2*2+1]

			texMix := w0*d.TexMix[v0] + w1*d.TexMix[v1] + w2*d.TexMix[v2]
			circleMix := w0*d.CircleMix[v0] + w1*d.CircleMix[v1] + w2*d.CircleMix[v2]

			if texMix > 0 && b.bound != nil {
				tr, tg, tb, ta := b.bound.sample(u, v)
				r *= 1 + texMix*(tr-1)
				g *= 1 + texMix*(tg-1)
				bl *= 1 + texMix*(tb-1)
				a *= 1 + texMix*(ta-1)
			}

			if circleMix > 0 {
				// TexCoords span [-1, 1] across the quad; fragments
				// outside the unit circle are discarded.
				var inside float32
				if u*u+v*v <= 1 {
					inside = 1
				}
				a *= 1 + circleMix*(inside-1)
			}

			if a <= 0 {
				continue
			}

			b.blendPixel(blend, px, py, r, g, bl, a)
		}
	}
}

func (b *Software) blendPixel(blend BlendMode, x, y int, r, g, bl, a float32) {
	i := (y*b.width + x) * 4

	if blend == BlendNone || a >= 1 {
		b.pix[i+0] = to8(r)
		b.pix[i+1] = to8(g)
		b.pix[i+2] = to8(bl)
		b.pix[i+3] = to8(a)
		return
	}

	// Source-over on straight alpha.
	dr := float32(b.pix[i+0]) / 255
	dg := float32(b.pix[i+1]) / 255
	db := float32(b.pix[i+2]) / 255
	da := float32(b.pix[i+3]) / 255

	outA := a + da*(1-a)
	if outA <= 0 {
		b.pix[i+0] = 0
		b.pix[i+1] = 0
		b.pix[i+2] = 0
		b.pix[i+3] = 0
		return
	}
	b.pix[i+0] = to8((r*a + dr*da*(1-a)) / outA)
	b.pix[i+1] = to8((g*a + dg*da*(1-a)) / outA)
	b.pix[i+2] = to8((bl*a + db*da*(1-a)) / outA)
	b.pix[i+3] = to8(outA)
}

// softwareTexture is a CPU-resident RGBA texture.
type softwareTexture struct {
	backend *Software
	width   int
	height  int
	pix     []uint8
}

func (t *softwareTexture) Width() int  { return t.width }
func (t *softwareTexture) Height() int { return t.height }

func (t *softwareTexture) SetData(pix []uint8) error {
	if len(pix) != t.width*t.height*4 {
		return ErrTextureSizeMismatch
	}
	copy(t.pix, pix)
	return nil
}

func (t *softwareTexture) Close() {
	if t.backend != nil && !t.backend.Valid() {
		// The context is gone; the resource went with it.
		Logger().Warn("released texture after context loss",
			"width", t.width, "height", t.height)
	}
	t.pix = nil
	t.backend = nil
}

// sample returns the nearest texel at normalized coordinates (u, v),
// clamped to the texture edges.
func (t *softwareTexture) sample(u, v float32) (r, g, b, a float32) {
	if t.pix == nil || t.width == 0 || t.height == 0 {
		return 1, 1, 1, 1
	}
	x := int(u * float32(t.width))
	y := int(v * float32(t.height))
	x = min(max(x, 0), t.width-1)
	y = min(max(y, 0), t.height-1)
	i := (y*t.width + x) * 4
	return float32(t.pix[i]) / 255, float32(t.pix[i+1]) / 255,
		float32(t.pix[i+2]) / 255, float32(t.pix[i+3]) / 255
}

func to8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// topLeftEdge reports whether the edge with direction (dx, dy) is a top
// or left edge of a clockwise triangle in Y-down coordinates.
func topLeftEdge(dx, dy float32) bool {
	return dy < 0 || (dy == 0 && dx > 0)
}

func min3(a, b, c float32) float32 {
	return min(a, min(b, c))
}

func max3(a, b, c float32) float32 {
	return max(a, max(b, c))
}
