package qd

import (
	"testing"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/qd/backend"
	"github.com/gogpu/qd/text"
)

func newTestCanvas(t *testing.T, width, height int) (*Canvas, *backend.Software) {
	t.Helper()
	b := backend.NewSoftware()
	c, err := NewCanvas(b, width, height, DefaultRendererConfig())
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}
	t.Cleanup(c.Close)
	return c, b
}

func TestFlushEmptyQueueIsNoop(t *testing.T) {
	c, b := newTestCanvas(t, 16, 16)
	c.Flush()
	if b.DrawCalls() != 0 {
		t.Errorf("empty flush issued %d draw calls", b.DrawCalls())
	}
}

func TestBatchingMergesUntexturedShapes(t *testing.T) {
	c, b := newTestCanvas(t, 64, 64)

	for i := 0; i < 10; i++ {
		c.DrawRectangle(Red, NewRect(Vec2{float32(i * 6), 0}, Vec2{5, 5}))
	}
	c.DrawCircle(Blue, Vec2{32, 32}, 10)
	c.DrawLine(Green, 2, Vec2{0, 60}, Vec2{60, 60})
	c.Flush()

	if b.DrawCalls() != 1 {
		t.Errorf("untextured shapes took %d draw calls, want 1", b.DrawCalls())
	}
	// 10 quads + circle quad + line quad, two triangles each.
	if b.TrianglesDrawn() != 24 {
		t.Errorf("drew %d triangles, want 24", b.TrianglesDrawn())
	}
}

func TestBatchingSplitsOnTextureChange(t *testing.T) {
	c, b := newTestCanvas(t, 64, 64)

	red := []uint8{255, 0, 0, 255}
	blue := []uint8{0, 0, 255, 255}
	imgA, err := c.CreateImageFromPixels(1, 1, ImageFormatRGBA, red, false)
	if err != nil {
		t.Fatalf("CreateImageFromPixels: %v", err)
	}
	imgB, err := c.CreateImageFromPixels(1, 1, ImageFormatRGBA, blue, false)
	if err != nil {
		t.Fatalf("CreateImageFromPixels: %v", err)
	}

	c.DrawImage(Vec2{0, 0}, imgA)
	c.DrawImage(Vec2{2, 0}, imgB)
	c.Flush()

	if b.DrawCalls() != 2 {
		t.Errorf("two textures took %d draw calls, want 2", b.DrawCalls())
	}
}

func TestBatchingUntexturedJoinsTexturedBatch(t *testing.T) {
	c, b := newTestCanvas(t, 64, 64)

	img, err := c.CreateImageFromPixels(1, 1, ImageFormatRGBA,
		[]uint8{255, 255, 255, 255}, false)
	if err != nil {
		t.Fatalf("CreateImageFromPixels: %v", err)
	}

	// Untextured triangles are compatible with any batch, so texture,
	// rectangle and texture again all merge into one draw call.
	c.DrawRectangle(Red, NewRect(Vec2{0, 0}, Vec2{4, 4}))
	c.DrawImage(Vec2{8, 0}, img)
	c.DrawRectangle(Blue, NewRect(Vec2{16, 0}, Vec2{4, 4}))
	c.DrawImage(Vec2{24, 0}, img)
	c.Flush()

	if b.DrawCalls() != 1 {
		t.Errorf("mixed batch took %d draw calls, want 1", b.DrawCalls())
	}
}

func TestClearScreenOpaqueDiscardsQueue(t *testing.T) {
	c, b := newTestCanvas(t, 16, 16)

	c.DrawRectangle(Red, NewRect(Vec2{0, 0}, Vec2{16, 16}))
	c.ClearScreen(Black)
	c.Flush()

	if b.DrawCalls() != 0 {
		t.Errorf("opaque clear still issued %d draw calls", b.DrawCalls())
	}

	img, err := c.Capture()
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if got := img.RGBAAt(8, 8); got.R != 0 || got.G != 0 || got.B != 0 {
		t.Errorf("pixel after opaque clear = %v, want black", got)
	}
}

func TestClearScreenTranslucentFlushesFirst(t *testing.T) {
	c, b := newTestCanvas(t, 16, 16)

	c.DrawRectangle(Red, NewRect(Vec2{0, 0}, Vec2{16, 16}))
	c.ClearScreen(RGBA(0, 0, 0, 0.5))

	if b.DrawCalls() != 1 {
		t.Errorf("translucent clear flushed %d draw calls, want 1", b.DrawCalls())
	}
}

func TestQueueOverflowFlushesImplicitly(t *testing.T) {
	b := backend.NewSoftware()
	cfg := DefaultRendererConfig()
	cfg.MaxQueueLength = 4
	c, err := NewCanvas(b, 16, 16, cfg)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}
	defer c.Close()

	for i := 0; i < 5; i++ {
		c.DrawTriangle(Red, Vec2{0, 0}, Vec2{4, 0}, Vec2{0, 4})
	}
	if b.DrawCalls() == 0 {
		t.Error("exceeding the queue bound did not flush")
	}
}

func TestTextRendersPixels(t *testing.T) {
	c, b := newTestCanvas(t, 128, 64)

	f, err := text.NewFont(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFont: %v", err)
	}
	block := text.LayoutText("Hello", f, 32, text.DefaultTextOptions())

	c.ClearScreen(Black)
	c.DrawText(Vec2{4, 4}, White, block)
	c.Flush()

	img, err := c.Capture()
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	var lit int
	for y := 0; y < 64; y++ {
		for x := 0; x < 128; x++ {
			p := img.RGBAAt(x, y)
			if p.R > 0 || p.G > 0 || p.B > 0 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Fatal("text rendered no visible pixels")
	}

	// All glyphs live in the same cache page texture.
	if b.DrawCalls() != 1 {
		t.Errorf("text took %d draw calls, want 1", b.DrawCalls())
	}
}

func TestTextBatchesWithShapes(t *testing.T) {
	c, b := newTestCanvas(t, 128, 64)

	f, err := text.NewFont(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFont: %v", err)
	}
	block := text.LayoutText("Hi", f, 24, text.DefaultTextOptions())

	c.DrawRectangle(Blue, NewRect(Vec2{0, 0}, Vec2{128, 64}))
	c.DrawText(Vec2{4, 4}, White, block)
	c.DrawRectangle(Red, NewRect(Vec2{100, 0}, Vec2{8, 8}))
	c.Flush()

	// The rectangle before the text adopts the glyph page texture, and the
	// one after is texture-agnostic, so everything merges.
	if b.DrawCalls() != 1 {
		t.Errorf("shapes and text took %d draw calls, want 1", b.DrawCalls())
	}
}

func TestTextTwoFontsShareBatch(t *testing.T) {
	c, b := newTestCanvas(t, 128, 64)

	regular, err := text.NewFont(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFont: %v", err)
	}
	mono, err := text.NewFont(gomono.TTF)
	if err != nil {
		t.Fatalf("NewFont: %v", err)
	}
	blockA := text.LayoutText("abc", regular, 24, text.DefaultTextOptions())
	blockB := text.LayoutText("xyz", mono, 24, text.DefaultTextOptions())

	c.DrawText(Vec2{2, 2}, White, blockA)
	c.DrawText(Vec2{2, 32}, White, blockB)
	c.Flush()

	// Cache pages hold glyphs from every font, so text in two fonts still
	// shares one page and one draw call.
	if b.DrawCalls() != 1 {
		t.Errorf("two fonts took %d draw calls, want 1", b.DrawCalls())
	}
	if got := len(c.r.cache.pages); got != 1 {
		t.Errorf("two fonts used %d cache pages, want 1", got)
	}
}

func TestTextRedrawSameBlock(t *testing.T) {
	c, _ := newTestCanvas(t, 128, 64)

	f, err := text.NewFont(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFont: %v", err)
	}
	block := text.LayoutText("cache me", f, 20, text.DefaultTextOptions())

	for frame := 0; frame < 3; frame++ {
		c.ClearScreen(Black)
		c.DrawText(Vec2{2, 2}, White, block)
		c.Flush()
	}

	if got := len(c.r.cache.pages); got != 1 {
		t.Errorf("steady-state cache has %d pages, want 1", got)
	}
}
