package qd

import (
	"fmt"
	"math"
	"sort"

	"github.com/gogpu/qd/atlas"
	"github.com/gogpu/qd/backend"
	"github.com/gogpu/qd/text"
)

// glyphCacheKey identifies one rendered variant of a glyph: the glyph
// itself plus its quantized scale and quantized subpixel screen offset.
type glyphCacheKey struct {
	fontID text.FontID

	// Quantized subpixel offsets, each derived from a value in
	// [-0.5, 0.5].
	offsetX int32
	offsetY int32

	// Quantized uniform scale.
	scale int32

	gid text.GlyphID
}

// glyphBitmap is a rasterized glyph as RGBA pixels: white with the glyph
// coverage in the alpha channel, so that vertex color modulation tints it.
type glyphBitmap struct {
	pix  []uint8
	w, h int
}

type glyphCacheEntry struct {
	bitmap *glyphBitmap

	// Bounding box offset from the rounded screen position to the
	// bitmap's top-left corner.
	offsetX int
	offsetY int

	// Index of the page holding the bitmap, or -1 while unplaced.
	page int
}

// cachePage is one texture page of the glyph cache: a CPU-side bitmap, the
// packer tracking free space within it, and the texture it uploads to.
type cachePage struct {
	size    int
	bitmap  []uint8
	texture backend.Texture
	packer  *atlas.Packer
	areas   map[glyphCacheKey]atlas.Region
	dirty   bool
}

func newCachePage(b backend.Backend, size int) (*cachePage, error) {
	desc := backend.DefaultTextureDescriptor(size, size)
	desc.Label = "glyph cache page"
	tex, err := b.NewTexture(desc)
	if err != nil {
		return nil, err
	}
	return &cachePage{
		size:    size,
		bitmap:  make([]uint8, size*size*4),
		texture: tex,
		packer:  atlas.NewPacker(size, size),
		areas:   make(map[glyphCacheKey]atlas.Region),
	}, nil
}

func (p *cachePage) reset() {
	p.dirty = false
	p.packer = atlas.NewPacker(p.size, p.size)
	clear(p.areas)
	clear(p.bitmap)
}

// tryAppend places bm into the page, blitting it into the CPU bitmap.
// Returns atlas.ErrNotEnoughSpace when the page is full.
func (p *cachePage) tryAppend(key glyphCacheKey, bm *glyphBitmap) error {
	area, err := p.packer.Allocate(bm.w, bm.h)
	if err != nil {
		return err
	}

	rowBytes := bm.w * 4
	for row := 0; row < bm.h; row++ {
		src := bm.pix[row*rowBytes : (row+1)*rowBytes]
		dst := ((area.MinY+row)*p.size + area.MinX) * 4
		copy(p.bitmap[dst:dst+rowBytes], src)
	}

	p.areas[key] = area
	p.dirty = true
	return nil
}

// upload pushes the CPU bitmap to the texture if it changed since the
// last upload.
func (p *cachePage) upload() error {
	if !p.dirty {
		return nil
	}
	p.dirty = false
	return p.texture.SetData(p.bitmap)
}

// glyphCache rasterizes glyphs on demand, packs them into texture pages,
// and reclaims space from glyphs unused for two frames.
//
// Entries are keyed by quantized subpixel offset, so the same glyph drawn
// at different fractional positions renders from distinct cache slots and
// stays crisp without per-frame rasterization.
type glyphCache struct {
	backend  backend.Backend
	pageSize int
	step     float32

	// Keys seen in the previous and current frame. Entries absent from
	// both are dropped during a repack.
	lastFrame map[glyphCacheKey]struct{}
	thisFrame map[glyphCacheKey]struct{}

	entries map[glyphCacheKey]*glyphCacheEntry
	pages   []*cachePage
}

func newGlyphCache(b backend.Backend, cfg RendererConfig) *glyphCache {
	return &glyphCache{
		backend:   b,
		pageSize:  cfg.AtlasPageSize,
		step:      cfg.QuantizeStep,
		lastFrame: make(map[glyphCacheKey]struct{}),
		thisFrame: make(map[glyphCacheKey]struct{}),
		entries:   make(map[glyphCacheKey]*glyphCacheEntry),
	}
}

func (c *glyphCache) quantize(v float32) int32 {
	return int32(v/c.step + 0.5)
}

func (c *glyphCache) dequantize(q int32) float32 {
	return float32(q) * c.step
}

func roundf(v float32) float32 {
	return float32(math.Round(float64(v)))
}

// keyFor derives the cache key for glyph g drawn with its block at pos.
func (c *glyphCache) keyFor(g *text.FormattedGlyph, pos Vec2) glyphCacheKey {
	px := g.X + pos.X
	py := g.Y + pos.Y
	return glyphCacheKey{
		fontID:  g.Font.ID(),
		offsetX: c.quantize(px - roundf(px)),
		offsetY: c.quantize(py - roundf(py)),
		scale:   c.quantize(g.Scale),
		gid:     g.GID,
	}
}

// addToCache marks the glyph as used this frame and rasterizes it if it is
// not cached yet. Placement into a page happens later in prepareForDraw.
func (c *glyphCache) addToCache(g *text.FormattedGlyph, pos Vec2) {
	key := c.keyFor(g, pos)
	c.thisFrame[key] = struct{}{}

	if _, ok := c.entries[key]; ok {
		return
	}

	// Rasterize at the quantized offsets so that every position mapping
	// to this key renders identically.
	img, ok := g.Font.RasterizeGlyph(
		g.Rune,
		c.dequantize(key.scale),
		c.dequantize(key.offsetX),
		c.dequantize(key.offsetY),
	)
	if !ok {
		// Valid for many glyphs, e.g. space.
		return
	}

	w, h := img.Bounds.Dx(), img.Bounds.Dy()
	if w > c.pageSize || h > c.pageSize {
		Logger().Error("glyph too big to render",
			"width", w, "height", h, "limit", c.pageSize)
		return
	}

	bm := &glyphBitmap{pix: make([]uint8, w*h*4), w: w, h: h}
	for i, a := range img.Mask.Pix {
		bm.pix[i*4+0] = 255
		bm.pix[i*4+1] = 255
		bm.pix[i*4+2] = 255
		bm.pix[i*4+3] = a
	}

	c.entries[key] = &glyphCacheEntry{
		bitmap:  bm,
		offsetX: img.Bounds.Min.X,
		offsetY: img.Bounds.Min.Y,
		page:    -1,
	}
}

// onNewFrameStart rotates the used-key sets. A glyph survives repacking if
// it was used in this frame or the previous one.
func (c *glyphCache) onNewFrameStart() {
	c.lastFrame, c.thisFrame = c.thisFrame, c.lastFrame
	clear(c.thisFrame)
}

// prepareForDraw places all pending glyphs into pages and uploads any page
// whose contents changed. When the incremental placement runs out of
// space, the whole cache is repacked.
func (c *glyphCache) prepareForDraw() error {
	if err := c.tryInsertPending(); err != nil {
		if err := c.repack(); err != nil {
			return err
		}
	}

	for _, p := range c.pages {
		if err := p.upload(); err != nil {
			return fmt.Errorf("failed to upload glyph cache page: %w", err)
		}
	}
	return nil
}

func (c *glyphCache) tryInsertPending() error {
	for key, e := range c.entries {
		if e.page >= 0 {
			continue
		}
		idx, err := c.appendToExistingPage(key, e.bitmap)
		if err != nil {
			return err
		}
		e.page = idx
	}
	return nil
}

func (c *glyphCache) appendToExistingPage(key glyphCacheKey, bm *glyphBitmap) (int, error) {
	err := error(atlas.ErrNotEnoughSpace)
	for i, p := range c.pages {
		appendErr := p.tryAppend(key, bm)
		if appendErr == nil {
			return i, nil
		}
		err = appendErr
	}
	return 0, err
}

// repack rebuilds every page from scratch: entries unused for two frames
// are dropped, survivors are reinserted in descending height order for
// tighter packing, and surplus pages beyond one spare are released.
func (c *glyphCache) repack() error {
	for _, e := range c.entries {
		e.page = -1
	}
	for key := range c.entries {
		if _, ok := c.lastFrame[key]; ok {
			continue
		}
		if _, ok := c.thisFrame[key]; ok {
			continue
		}
		delete(c.entries, key)
	}

	type pendingEntry struct {
		key   glyphCacheKey
		entry *glyphCacheEntry
	}
	pending := make([]pendingEntry, 0, len(c.entries))
	for key, e := range c.entries {
		pending = append(pending, pendingEntry{key, e})
	}
	sort.Slice(pending, func(i, j int) bool {
		a, b := pending[i], pending[j]
		if a.entry.bitmap.h != b.entry.bitmap.h {
			return a.entry.bitmap.h > b.entry.bitmap.h
		}
		if a.entry.bitmap.w != b.entry.bitmap.w {
			return a.entry.bitmap.w > b.entry.bitmap.w
		}
		// Map iteration order is random; break ties on the key so that
		// repacking is deterministic.
		if a.key.fontID != b.key.fontID {
			return a.key.fontID < b.key.fontID
		}
		if a.key.gid != b.key.gid {
			return a.key.gid < b.key.gid
		}
		if a.key.offsetX != b.key.offsetX {
			return a.key.offsetX < b.key.offsetX
		}
		return a.key.offsetY < b.key.offsetY
	})

	cleared := c.pages
	c.pages = nil
	for _, p := range cleared {
		p.reset()
	}

	for _, pe := range pending {
		idx, err := c.rearrangeAppend(&cleared, pe.key, pe.entry.bitmap)
		if err != nil {
			return fmt.Errorf("glyph rearrangement failed: %w", err)
		}
		pe.entry.page = idx
	}

	// Keep one spare empty page to absorb the next growth spurt; release
	// the rest.
	if n := len(cleared); n > 0 {
		c.pages = append(c.pages, cleared[n-1])
		cleared = cleared[:n-1]
	}
	for _, p := range cleared {
		p.texture.Close()
	}

	return nil
}

// rearrangeAppend places bm during a repack: into a current page if one
// fits, else into a recycled cleared page, else into a newly created page.
func (c *glyphCache) rearrangeAppend(cleared *[]*cachePage, key glyphCacheKey, bm *glyphBitmap) (int, error) {
	for i, p := range c.pages {
		if p.tryAppend(key, bm) == nil {
			return i, nil
		}
	}

	if n := len(*cleared); n > 0 {
		p := (*cleared)[n-1]
		*cleared = (*cleared)[:n-1]
		c.pages = append(c.pages, p)
		if p.tryAppend(key, bm) == nil {
			return len(c.pages) - 1, nil
		}
	}

	Logger().Info("no more space in existing glyph cache pages, creating new",
		"pages", len(c.pages))

	p, err := newCachePage(c.backend, c.pageSize)
	if err != nil {
		return 0, fmt.Errorf("failed to create glyph cache page: %w", err)
	}
	c.pages = append(c.pages, p)

	if err := p.tryAppend(key, bm); err != nil {
		return 0, fmt.Errorf("could not append %dx%d glyph to empty page: %w", bm.w, bm.h, err)
	}
	return len(c.pages) - 1, nil
}

// getActions emits two textured triangles for the glyph, or nothing when
// the glyph has no cached bitmap (spaces, skipped glyphs).
func (c *glyphCache) getActions(g *text.FormattedGlyph, pos Vec2, color Color, emit func(renderAction)) {
	key := c.keyFor(g, pos)

	e, ok := c.entries[key]
	if !ok || e.page < 0 {
		return
	}

	p := c.pages[e.page]
	area := p.areas[key]
	ts := float32(c.pageSize)

	u0 := float32(area.MinX) / ts
	v0 := float32(area.MinY) / ts
	u1 := float32(area.MaxX) / ts
	v1 := float32(area.MaxY) / ts

	// The subpixel offset is baked into the bitmap, so the screen
	// placement rounds to whole pixels.
	px := g.X + pos.X
	py := g.Y + pos.Y
	x0 := roundf(px) + float32(e.offsetX)
	y0 := roundf(py) + float32(e.offsetY)
	x1 := x0 + float32(area.Width())
	y1 := y0 + float32(area.Height())

	tl := vertex{pos: Vec2{x0, y0}, uv: Vec2{u0, v0}, col: color, texMix: 1}
	tr := vertex{pos: Vec2{x1, y0}, uv: Vec2{u1, v0}, col: color, texMix: 1}
	br := vertex{pos: Vec2{x1, y1}, uv: Vec2{u1, v1}, col: color, texMix: 1}
	bl := vertex{pos: Vec2{x0, y1}, uv: Vec2{u0, v1}, col: color, texMix: 1}

	emit(renderAction{texture: p.texture, v: [3]vertex{tl, tr, br}})
	emit(renderAction{texture: p.texture, v: [3]vertex{br, bl, tl}})
}

// close releases all page textures.
func (c *glyphCache) close() {
	for _, p := range c.pages {
		p.texture.Close()
	}
	c.pages = nil
	clear(c.entries)
}
