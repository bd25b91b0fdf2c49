package qd

import "math"

// Vec2 is a two-dimensional vector of float32 components.
// Positions are in pixels with the origin at the top left and the Y axis
// pointing down.
type Vec2 struct {
	X, Y float32
}

// V2 is shorthand for constructing a Vec2.
func V2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Mul returns the vector scaled by s.
func (v Vec2) Mul(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Length returns the Euclidean length of the vector.
func (v Vec2) Length() float32 {
	return float32(math.Hypot(float64(v.X), float64(v.Y)))
}

// Normalized returns the unit vector in the direction of v.
// The second return value is false for the zero vector.
func (v Vec2) Normalized() (Vec2, bool) {
	l := v.Length()
	if l == 0 {
		return Vec2{}, false
	}
	return Vec2{v.X / l, v.Y / l}, true
}

// Rotate90CW returns the vector rotated 90 degrees clockwise
// (in a Y-down coordinate system).
func (v Vec2) Rotate90CW() Vec2 {
	return Vec2{-v.Y, v.X}
}

// Rotate90CCW returns the vector rotated 90 degrees counterclockwise
// (in a Y-down coordinate system).
func (v Vec2) Rotate90CCW() Vec2 {
	return Vec2{v.Y, -v.X}
}

// Round returns the vector with both components rounded to the nearest
// integer value.
func (v Vec2) Round() Vec2 {
	return Vec2{
		float32(math.Round(float64(v.X))),
		float32(math.Round(float64(v.Y))),
	}
}

// Rect is an axis-aligned rectangle described by its top-left and
// bottom-right corners, in pixels.
type Rect struct {
	Min Vec2
	Max Vec2
}

// NewRect constructs a rectangle from its top-left corner and size.
func NewRect(topLeft, size Vec2) Rect {
	return Rect{Min: topLeft, Max: topLeft.Add(size)}
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float32 { return r.Max.X - r.Min.X }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float32 { return r.Max.Y - r.Min.Y }

// Size returns the rectangle's extent.
func (r Rect) Size() Vec2 { return r.Max.Sub(r.Min) }

// TopLeft returns the minimum corner.
func (r Rect) TopLeft() Vec2 { return r.Min }

// TopRight returns the top-right corner.
func (r Rect) TopRight() Vec2 { return Vec2{r.Max.X, r.Min.Y} }

// BottomLeft returns the bottom-left corner.
func (r Rect) BottomLeft() Vec2 { return Vec2{r.Min.X, r.Max.Y} }

// BottomRight returns the maximum corner.
func (r Rect) BottomRight() Vec2 { return r.Max }

// IsEmpty reports whether the rectangle encloses zero area.
func (r Rect) IsEmpty() bool {
	return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y
}
