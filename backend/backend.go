// Package backend defines the rendering backend interface used by qd and
// provides a CPU-based software backend as the default implementation.
//
// Backends are registered via Register and selected via Get or Default.
// GPU hosts implement Backend on top of their device and register it with
// a higher priority than the software fallback.
package backend

import (
	"errors"
	"image"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when no requested backend is registered.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")

	// ErrInvalidated is returned when operating on a backend whose rendering
	// context has been lost.
	ErrInvalidated = errors.New("backend: context invalidated")

	// ErrTextureSizeMismatch is returned when pixel data does not match the
	// texture dimensions.
	ErrTextureSizeMismatch = errors.New("backend: pixel data does not match texture size")

	// ErrCaptureUnsupported is returned by backends that cannot read pixels back.
	ErrCaptureUnsupported = errors.New("backend: capture not supported")
)

// BlendMode selects how fragments are combined with the framebuffer.
type BlendMode uint8

const (
	// BlendAlpha is standard source-over blending on straight
	// (non-premultiplied) alpha.
	BlendAlpha BlendMode = iota

	// BlendNone overwrites the destination.
	BlendNone
)

// AttributeData holds per-vertex attributes for a batch of triangles in
// struct-of-arrays form, ready for upload as vertex buffers. Every three
// consecutive vertices form one triangle.
type AttributeData struct {
	// Positions holds two components per vertex, in pixel coordinates with
	// the origin at the top left.
	Positions []float32

	// Colors holds four non-premultiplied RGBA components per vertex.
	Colors []float32

	// TexCoords holds two components per vertex. For untextured geometry
	// the values are ignored.
	TexCoords []float32

	// TexMix holds one component per vertex: 0 means flat color, 1 means
	// the sampled texture modulates the color.
	TexMix []float32

	// CircleMix holds one component per vertex: 0 means no rounding, 1
	// means TexCoords are reinterpreted as a unit-circle field and
	// fragments outside it are discarded.
	CircleMix []float32
}

// VertexCount returns the number of vertices in the batch.
func (d *AttributeData) VertexCount() int {
	return len(d.Positions) / 2
}

// Reset empties the batch, retaining capacity.
func (d *AttributeData) Reset() {
	d.Positions = d.Positions[:0]
	d.Colors = d.Colors[:0]
	d.TexCoords = d.TexCoords[:0]
	d.TexMix = d.TexMix[:0]
	d.CircleMix = d.CircleMix[:0]
}

// AppendVertex adds one vertex to the batch.
func (d *AttributeData) AppendVertex(x, y, r, g, b, a, u, v, texMix, circleMix float32) {
	d.Positions = append(d.Positions, x, y)
	d.Colors = append(d.Colors, r, g, b, a)
	d.TexCoords = append(d.TexCoords, u, v)
	d.TexMix = append(d.TexMix, texMix)
	d.CircleMix = append(d.CircleMix, circleMix)
}

// Texture is a 2D RGBA texture owned by a backend.
type Texture interface {
	// Width returns the texture width in pixels.
	Width() int

	// Height returns the texture height in pixels.
	Height() int

	// SetData replaces the full texture contents with RGBA pixel data of
	// length Width*Height*4.
	SetData(pix []uint8) error

	// Close releases the texture. If the owning backend has been
	// invalidated, the underlying resource is already gone and Close only
	// detaches the handle.
	Close()
}

// Backend is the rendering device abstraction used by qd.
//
// A backend is owned by a single goroutine. All calls happen on the thread
// that created it.
type Backend interface {
	// Name returns the backend identifier (e.g. "software").
	Name() string

	// Init prepares the backend for rendering.
	Init() error

	// NewTexture creates a texture described by desc.
	NewTexture(desc TextureDescriptor) (Texture, error)

	// BindTexture makes t the active texture for subsequent draws.
	BindTexture(t Texture)

	// UnbindTexture clears the active texture.
	UnbindTexture()

	// DrawTriangles renders the batch with the active texture.
	DrawTriangles(blend BlendMode, data *AttributeData)

	// Clear fills the current scissor region (or the whole target) with a
	// solid color.
	Clear(r, g, b, a float32)

	// SetScissor restricts rendering to rect in pixel coordinates.
	// A nil rect disables scissoring.
	SetScissor(rect *image.Rectangle)

	// SetViewport sets the render target size in pixels.
	SetViewport(width, height int)

	// Capture reads back the rendered RGBA pixels.
	Capture() (pix []uint8, width, height int, err error)

	// OriginBottomLeft reports whether Capture returns rows bottom-up.
	OriginBottomLeft() bool

	// Valid reports whether the rendering context is still usable.
	// Textures check this on Close to avoid releasing resources that were
	// destroyed with the context.
	Valid() bool

	// Invalidate marks the rendering context as lost. The host calls this
	// when the underlying surface or device goes away; resources created
	// before the call become detached handles.
	Invalidate()

	// Close releases all backend resources.
	Close()
}
