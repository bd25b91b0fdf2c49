package qd

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/qd/backend"
)

// ImageFormat describes the pixel layout of raw image data.
type ImageFormat uint8

const (
	// ImageFormatRGBA is 8 bits per channel, 4 bytes per pixel.
	ImageFormatRGBA ImageFormat = iota

	// ImageFormatRGB is 8 bits per channel, 3 bytes per pixel. Alpha is
	// treated as fully opaque.
	ImageFormatRGB
)

func (f ImageFormat) bytesPerPixel() int {
	if f == ImageFormatRGB {
		return 3
	}
	return 4
}

// ImageHandle is a texture uploaded to the canvas backend, ready to be
// drawn with [Canvas.DrawImage]. It is only valid on the canvas that
// created it.
type ImageHandle struct {
	texture backend.Texture
	width   int
	height  int
}

// Width returns the image width in pixels.
func (h *ImageHandle) Width() int { return h.width }

// Height returns the image height in pixels.
func (h *ImageHandle) Height() int { return h.height }

// Size returns the image size in pixels.
func (h *ImageHandle) Size() Vec2 {
	return Vec2{float32(h.width), float32(h.height)}
}

// Close releases the backing texture. The handle must not be drawn
// afterwards.
func (h *ImageHandle) Close() {
	if h.texture != nil {
		h.texture.Close()
		h.texture = nil
	}
}

// CreateImageFromPixels uploads raw pixel data as a drawable image. Rows
// are top-down with no padding. With smooth set, sampling interpolates
// between neighboring pixels on backends that support it.
func (c *Canvas) CreateImageFromPixels(width, height int, format ImageFormat, data []uint8, smooth bool) (*ImageHandle, error) {
	if c.closed {
		return nil, ErrCanvasClosed
	}
	if width <= 0 || height <= 0 {
		return nil, renderErr("create image",
			fmt.Errorf("%w: size %dx%d", ErrInvalidImageData, width, height))
	}
	if want := width * height * format.bytesPerPixel(); len(data) != want {
		return nil, renderErr("create image",
			fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidImageData, len(data), want))
	}

	pix := data
	if format == ImageFormatRGB {
		pix = make([]uint8, width*height*4)
		for i := 0; i < width*height; i++ {
			pix[i*4+0] = data[i*3+0]
			pix[i*4+1] = data[i*3+1]
			pix[i*4+2] = data[i*3+2]
			pix[i*4+3] = 0xff
		}
	}

	desc := backend.DefaultTextureDescriptor(width, height)
	desc.Label = "image"
	desc.Smooth = smooth

	tex, err := c.b.NewTexture(desc)
	if err != nil {
		return nil, renderErr("create image", err)
	}
	if err := tex.SetData(pix); err != nil {
		tex.Close()
		return nil, renderErr("create image", err)
	}

	return &ImageHandle{texture: tex, width: width, height: height}, nil
}

// CreateImageFromImage uploads a standard library image as a drawable
// image, converting to RGBA as needed.
func (c *Canvas) CreateImageFromImage(img image.Image, smooth bool) (*ImageHandle, error) {
	if c.closed {
		return nil, ErrCanvasClosed
	}

	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), img, b.Min, xdraw.Src)

	return c.CreateImageFromPixels(b.Dx(), b.Dy(), ImageFormatRGBA, rgba.Pix, smooth)
}

// DrawImage draws an image at its native size with its top-left corner
// at pos.
func (c *Canvas) DrawImage(pos Vec2, img *ImageHandle) {
	c.DrawImageTinted(pos, White, img)
}

// DrawImageTinted draws an image at its native size, multiplying each
// pixel by the tint color.
func (c *Canvas) DrawImageTinted(pos Vec2, tint Color, img *ImageHandle) {
	c.DrawImageRect(NewRect(pos, img.Size()), tint, img)
}

// DrawImageRect draws an image stretched to fill dest, multiplying each
// pixel by the tint color.
func (c *Canvas) DrawImageRect(dest Rect, tint Color, img *ImageHandle) {
	c.DrawImageSubsetRect(dest, tint, NewRect(Vec2{0, 0}, Vec2{1, 1}), img)
}

// DrawImageSubsetRect draws a portion of an image stretched to fill dest.
// The subset is in normalized image coordinates, so the full image is
// (0, 0) to (1, 1).
func (c *Canvas) DrawImageSubsetRect(dest Rect, tint Color, subset Rect, img *ImageHandle) {
	if c.closed || img == nil || img.texture == nil {
		return
	}

	tl, tr := dest.TopLeft(), dest.TopRight()
	br, bl := dest.BottomRight(), dest.BottomLeft()
	colors := [3]Color{tint, tint, tint}

	c.r.drawTriangleTextured(
		[3]Vec2{tl, tr, br}, colors,
		[3]Vec2{subset.TopLeft(), subset.TopRight(), subset.BottomRight()},
		img.texture)
	c.r.drawTriangleTextured(
		[3]Vec2{br, bl, tl}, colors,
		[3]Vec2{subset.BottomRight(), subset.BottomLeft(), subset.TopLeft()},
		img.texture)
}

// DrawTriangleImage draws one textured triangle with a color per vertex,
// multiplied into the sampled texels. uvs are in normalized image
// coordinates. Vertices are in clockwise order.
func (c *Canvas) DrawTriangleImage(positions [3]Vec2, colors [3]Color, uvs [3]Vec2, img *ImageHandle) {
	if c.closed || img == nil || img.texture == nil {
		return
	}
	c.r.drawTriangleTextured(positions, colors, uvs, img.texture)
}
