package qd

import (
	"github.com/gogpu/qd/backend"
	"github.com/gogpu/qd/text"
)

// vertex is one corner of a render action triangle.
type vertex struct {
	pos       Vec2
	uv        Vec2
	col       Color
	texMix    float32
	circleMix float32
}

// renderAction is a single triangle ready for batching. Actions with a nil
// texture batch with any neighbor; textured actions batch only with
// actions sharing the same texture.
type renderAction struct {
	texture backend.Texture
	v       [3]vertex
}

// renderQueueItem is a queued draw operation. Items are expanded into
// render actions at flush time, after the glyph cache has been updated.
type renderQueueItem interface {
	generateActions(cache *glyphCache, emit func(renderAction))
}

type textItem struct {
	pos   Vec2
	color Color
	block *text.FormattedTextBlock
}

func (it *textItem) generateActions(cache *glyphCache, emit func(renderAction)) {
	for _, line := range it.block.Lines {
		for i := range line.Glyphs {
			cache.getActions(&line.Glyphs[i], it.pos, it.color, emit)
		}
	}
}

type triangleItem struct {
	// Vertices in clockwise order.
	pos    [3]Vec2
	colors [3]Color
}

func (it *triangleItem) generateActions(_ *glyphCache, emit func(renderAction)) {
	var a renderAction
	for i := 0; i < 3; i++ {
		a.v[i] = vertex{pos: it.pos[i], col: it.colors[i]}
	}
	emit(a)
}

type circleSectionItem struct {
	pos    [3]Vec2
	colors [3]Color

	// Normalized coordinates within the circle field: the unit circle
	// covers [-1, 1] on both axes.
	circleCoords [3]Vec2
}

func (it *circleSectionItem) generateActions(_ *glyphCache, emit func(renderAction)) {
	var a renderAction
	for i := 0; i < 3; i++ {
		a.v[i] = vertex{
			pos:       it.pos[i],
			uv:        it.circleCoords[i],
			col:       it.colors[i],
			circleMix: 1,
		}
	}
	emit(a)
}

type texturedTriangleItem struct {
	pos     [3]Vec2
	colors  [3]Color
	uvs     [3]Vec2
	texture backend.Texture
}

func (it *texturedTriangleItem) generateActions(_ *glyphCache, emit func(renderAction)) {
	a := renderAction{texture: it.texture}
	for i := 0; i < 3; i++ {
		a.v[i] = vertex{pos: it.pos[i], uv: it.uvs[i], col: it.colors[i], texMix: 1}
	}
	emit(a)
}

// renderer2D queues draw operations and flushes them as the minimum number
// of backend draw calls that preserves submission order.
type renderer2D struct {
	backend backend.Backend
	cfg     RendererConfig

	queue   []renderQueueItem
	actions []renderAction

	cache *glyphCache

	attribs backend.AttributeData
	current backend.Texture
}

func newRenderer2D(b backend.Backend, cfg RendererConfig) *renderer2D {
	return &renderer2D{
		backend: b,
		cfg:     cfg,
		cache:   newGlyphCache(b, cfg),
	}
}

func (r *renderer2D) add(item renderQueueItem) {
	r.queue = append(r.queue, item)

	if len(r.queue) > r.cfg.MaxQueueLength {
		Logger().Debug("draw queue limit reached, flushing early",
			"limit", r.cfg.MaxQueueLength)
		r.flush()
	}
}

// flush renders everything queued since the last flush.
//
// Text is handled in two passes: first all glyphs are registered with the
// cache so that rasterization and atlas placement happen once per flush,
// then every item expands to triangles. Consecutive triangles that agree
// on texture state are merged into a single draw call.
func (r *renderer2D) flush() {
	if len(r.queue) == 0 {
		return
	}

	r.actions = r.actions[:0]
	r.attribs.Reset()

	hasText := false
	for _, item := range r.queue {
		if _, ok := item.(*textItem); ok {
			hasText = true
			break
		}
	}

	if hasText {
		r.cache.onNewFrameStart()

		for _, item := range r.queue {
			ti, ok := item.(*textItem)
			if !ok {
				continue
			}
			for _, line := range ti.block.Lines {
				for i := range line.Glyphs {
					r.cache.addToCache(&line.Glyphs[i], ti.pos)
				}
			}
		}

		if err := r.cache.prepareForDraw(); err != nil {
			Logger().Error("error updating glyph cache texture, continuing anyway",
				"error", err)
		}
	}

	emit := func(a renderAction) {
		r.actions = append(r.actions, a)
	}
	for _, item := range r.queue {
		item.generateActions(r.cache, emit)
	}
	r.queue = r.queue[:0]

	for i := range r.actions {
		a := &r.actions[i]

		if !r.textureCompatible(a.texture) {
			r.drawBuffers()
			r.current = a.texture
		}

		for _, v := range a.v {
			r.attribs.AppendVertex(
				v.pos.X, v.pos.Y,
				v.col.R, v.col.G, v.col.B, v.col.A,
				v.uv.X, v.uv.Y,
				v.texMix, v.circleMix,
			)
		}
	}
	r.actions = r.actions[:0]

	r.drawBuffers()
}

// textureCompatible reports whether an action using tex can join the
// current batch, adopting tex as the batch texture when the batch has none.
func (r *renderer2D) textureCompatible(tex backend.Texture) bool {
	if tex == nil {
		return true
	}
	if r.current == nil {
		r.current = tex
		return true
	}
	return r.current == tex
}

func (r *renderer2D) drawBuffers() {
	if r.attribs.VertexCount() == 0 {
		return
	}

	if r.current != nil {
		r.backend.BindTexture(r.current)
	} else {
		r.backend.UnbindTexture()
	}

	r.backend.DrawTriangles(backend.BlendAlpha, &r.attribs)

	r.attribs.Reset()
	r.current = nil
}

// clearScreen fills the render target. An opaque clear makes everything
// queued so far invisible, so the queue is discarded instead of flushed.
func (r *renderer2D) clearScreen(color Color) {
	if color.A < 1 {
		r.flush()
	} else {
		r.queue = r.queue[:0]
	}
	r.backend.Clear(color.R, color.G, color.B, color.A)
}

func (r *renderer2D) drawText(pos Vec2, color Color, block *text.FormattedTextBlock) {
	r.add(&textItem{pos: pos, color: color, block: block})
}

func (r *renderer2D) drawTriangleThreeColor(pos [3]Vec2, colors [3]Color) {
	r.add(&triangleItem{pos: pos, colors: colors})
}

func (r *renderer2D) drawCircleSection(pos [3]Vec2, colors [3]Color, circleCoords [3]Vec2) {
	r.add(&circleSectionItem{pos: pos, colors: colors, circleCoords: circleCoords})
}

func (r *renderer2D) drawTriangleTextured(pos [3]Vec2, colors [3]Color, uvs [3]Vec2, tex backend.Texture) {
	r.add(&texturedTriangleItem{pos: pos, colors: colors, uvs: uvs, texture: tex})
}

func (r *renderer2D) close() {
	r.queue = nil
	r.actions = nil
	r.cache.close()
}
