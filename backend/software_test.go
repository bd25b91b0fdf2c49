package backend

import (
	"errors"
	"image"
	"testing"
)

func newTestBackend(t *testing.T, w, h int) *Software {
	t.Helper()
	b := NewSoftware()
	if err := b.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	b.SetViewport(w, h)
	return b
}

func pixelAt(t *testing.T, b *Software, x, y int) [4]uint8 {
	t.Helper()
	pix, w, _, err := b.Capture()
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	i := (y*w + x) * 4
	return [4]uint8{pix[i], pix[i+1], pix[i+2], pix[i+3]}
}

// fullQuad returns two triangles covering the given pixel rectangle with a
// solid color.
func fullQuad(x0, y0, x1, y1, r, g, b, a float32) *AttributeData {
	d := &AttributeData{}
	d.AppendVertex(x0, y0, r, g, b, a, 0, 0, 0, 0)
	d.AppendVertex(x1, y0, r, g, b, a, 0, 0, 0, 0)
	d.AppendVertex(x1, y1, r, g, b, a, 0, 0, 0, 0)
	d.AppendVertex(x0, y0, r, g, b, a, 0, 0, 0, 0)
	d.AppendVertex(x1, y1, r, g, b, a, 0, 0, 0, 0)
	d.AppendVertex(x0, y1, r, g, b, a, 0, 0, 0, 0)
	return d
}

func TestSoftwareClear(t *testing.T) {
	b := newTestBackend(t, 8, 8)
	b.Clear(1, 0, 0, 1)

	got := pixelAt(t, b, 3, 3)
	want := [4]uint8{255, 0, 0, 255}
	if got != want {
		t.Errorf("pixel after clear: got %v, want %v", got, want)
	}
}

func TestSoftwareDrawQuad(t *testing.T) {
	b := newTestBackend(t, 16, 16)
	b.Clear(0, 0, 0, 1)
	b.DrawTriangles(BlendAlpha, fullQuad(4, 4, 12, 12, 0, 1, 0, 1))

	if got, want := pixelAt(t, b, 8, 8), [4]uint8{0, 255, 0, 255}; got != want {
		t.Errorf("inside quad: got %v, want %v", got, want)
	}
	if got, want := pixelAt(t, b, 1, 1), [4]uint8{0, 0, 0, 255}; got != want {
		t.Errorf("outside quad: got %v, want %v", got, want)
	}
	if b.DrawCalls() != 1 || b.TrianglesDrawn() != 2 {
		t.Errorf("stats: %d calls, %d triangles; want 1, 2",
			b.DrawCalls(), b.TrianglesDrawn())
	}
}

func TestSoftwareWindingIndependent(t *testing.T) {
	b := newTestBackend(t, 16, 16)
	b.Clear(0, 0, 0, 1)

	// Counterclockwise triangle.
	d := &AttributeData{}
	d.AppendVertex(2, 2, 1, 1, 1, 1, 0, 0, 0, 0)
	d.AppendVertex(2, 14, 1, 1, 1, 1, 0, 0, 0, 0)
	d.AppendVertex(14, 2, 1, 1, 1, 1, 0, 0, 0, 0)
	b.DrawTriangles(BlendAlpha, d)

	if got, want := pixelAt(t, b, 4, 4), [4]uint8{255, 255, 255, 255}; got != want {
		t.Errorf("ccw triangle not filled: got %v, want %v", got, want)
	}
}

func TestSoftwareScissor(t *testing.T) {
	b := newTestBackend(t, 16, 16)
	b.Clear(0, 0, 0, 1)

	clip := image.Rect(0, 0, 8, 16)
	b.SetScissor(&clip)
	b.DrawTriangles(BlendAlpha, fullQuad(0, 0, 16, 16, 1, 0, 0, 1))
	b.Clear(0, 0, 1, 1) // clear is clipped too
	b.SetScissor(nil)

	if got, want := pixelAt(t, b, 4, 4), [4]uint8{0, 0, 255, 255}; got != want {
		t.Errorf("inside scissor: got %v, want %v", got, want)
	}
	if got, want := pixelAt(t, b, 12, 4), [4]uint8{0, 0, 0, 255}; got != want {
		t.Errorf("outside scissor: got %v, want %v", got, want)
	}
}

func TestSoftwareAlphaBlend(t *testing.T) {
	b := newTestBackend(t, 4, 4)
	b.Clear(0, 0, 0, 1)
	b.DrawTriangles(BlendAlpha, fullQuad(0, 0, 4, 4, 1, 1, 1, 0.5))

	got := pixelAt(t, b, 1, 1)
	// 50% white over black.
	for i := 0; i < 3; i++ {
		if got[i] < 125 || got[i] > 130 {
			t.Errorf("blended channel %d: got %d, want ~128", i, got[i])
		}
	}
	if got[3] != 255 {
		t.Errorf("blended alpha: got %d, want 255", got[3])
	}
}

func TestSoftwareQuadSeamDrawsOnce(t *testing.T) {
	b := newTestBackend(t, 4, 4)
	b.Clear(0, 0, 0, 1)
	b.DrawTriangles(BlendAlpha, fullQuad(0, 0, 4, 4, 1, 1, 1, 0.5))

	// Pixel centers (1.5, 1.5) and (2.5, 2.5) sit exactly on the diagonal
	// shared by the quad's two triangles. Blending twice there would give
	// ~192 instead of ~128.
	for _, p := range [][2]int{{1, 1}, {2, 2}, {1, 2}, {2, 1}} {
		got := pixelAt(t, b, p[0], p[1])
		for i := 0; i < 3; i++ {
			if got[i] < 125 || got[i] > 130 {
				t.Errorf("pixel (%d, %d) channel %d: got %d, want ~128",
					p[0], p[1], i, got[i])
			}
		}
	}
}

func TestSoftwareTextureSampling(t *testing.T) {
	b := newTestBackend(t, 8, 8)
	b.Clear(0, 0, 0, 1)

	tex, err := b.NewTexture(DefaultTextureDescriptor(2, 2))
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	// Left column red, right column blue.
	err = tex.SetData([]uint8{
		255, 0, 0, 255, 0, 0, 255, 255,
		255, 0, 0, 255, 0, 0, 255, 255,
	})
	if err != nil {
		t.Fatalf("SetData: %v", err)
	}

	d := &AttributeData{}
	d.AppendVertex(0, 0, 1, 1, 1, 1, 0, 0, 1, 0)
	d.AppendVertex(8, 0, 1, 1, 1, 1, 1, 0, 1, 0)
	d.AppendVertex(8, 8, 1, 1, 1, 1, 1, 1, 1, 0)
	d.AppendVertex(0, 0, 1, 1, 1, 1, 0, 0, 1, 0)
	d.AppendVertex(8, 8, 1, 1, 1, 1, 1, 1, 1, 0)
	d.AppendVertex(0, 8, 1, 1, 1, 1, 0, 1, 1, 0)

	b.BindTexture(tex)
	b.DrawTriangles(BlendAlpha, d)
	b.UnbindTexture()

	if got, want := pixelAt(t, b, 1, 4), [4]uint8{255, 0, 0, 255}; got != want {
		t.Errorf("left half: got %v, want %v", got, want)
	}
	if got, want := pixelAt(t, b, 6, 4), [4]uint8{0, 0, 255, 255}; got != want {
		t.Errorf("right half: got %v, want %v", got, want)
	}
}

func TestSoftwareCircleDiscard(t *testing.T) {
	b := newTestBackend(t, 16, 16)
	b.Clear(0, 0, 0, 1)

	// Quad with corner UVs at ±1 and full circle mix: only the inscribed
	// circle is filled.
	d := &AttributeData{}
	d.AppendVertex(0, 0, 1, 1, 1, 1, -1, -1, 0, 1)
	d.AppendVertex(16, 0, 1, 1, 1, 1, 1, -1, 0, 1)
	d.AppendVertex(16, 16, 1, 1, 1, 1, 1, 1, 0, 1)
	d.AppendVertex(0, 0, 1, 1, 1, 1, -1, -1, 0, 1)
	d.AppendVertex(16, 16, 1, 1, 1, 1, 1, 1, 0, 1)
	d.AppendVertex(0, 16, 1, 1, 1, 1, -1, 1, 0, 1)
	b.DrawTriangles(BlendAlpha, d)

	if got, want := pixelAt(t, b, 8, 8), [4]uint8{255, 255, 255, 255}; got != want {
		t.Errorf("circle center: got %v, want %v", got, want)
	}
	if got, want := pixelAt(t, b, 0, 0), [4]uint8{0, 0, 0, 255}; got != want {
		t.Errorf("quad corner outside circle: got %v, want %v", got, want)
	}
}

func TestSoftwareInvalidate(t *testing.T) {
	b := newTestBackend(t, 4, 4)

	tex, err := b.NewTexture(DefaultTextureDescriptor(2, 2))
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}

	b.Invalidate()
	if b.Valid() {
		t.Fatal("Valid after Invalidate")
	}
	if _, err := b.NewTexture(DefaultTextureDescriptor(2, 2)); !errors.Is(err, ErrInvalidated) {
		t.Errorf("NewTexture after Invalidate: got %v, want ErrInvalidated", err)
	}

	// Closing a texture after context loss must not panic.
	tex.Close()
}

func TestSoftwareSetDataSizeMismatch(t *testing.T) {
	b := newTestBackend(t, 4, 4)
	tex, err := b.NewTexture(DefaultTextureDescriptor(2, 2))
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	if err := tex.SetData(make([]uint8, 7)); !errors.Is(err, ErrTextureSizeMismatch) {
		t.Errorf("SetData with wrong length: got %v, want ErrTextureSizeMismatch", err)
	}
}
