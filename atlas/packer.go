// Package atlas provides rectangle packing for texture atlas pages.
//
// A Packer hands out non-overlapping regions inside a fixed-size area using
// a guillotine strategy: each allocation splits the chosen free region into
// a piece to the right and a piece underneath. Regions are never returned
// individually; the whole packer is reset when its page is rebuilt.
package atlas

import (
	"errors"
	"fmt"
)

// ErrNotEnoughSpace is returned when no free region can hold the
// requested size.
var ErrNotEnoughSpace = errors.New("atlas: not enough space")

// Region is a rectangular area inside an atlas page, in pixels.
// Max is exclusive of the border but inclusive of the content: a region
// spans the half-open pixel range [Min, Max).
type Region struct {
	// MinX and MinY are the top-left corner.
	MinX, MinY int
	// MaxX and MaxY are the bottom-right corner.
	MaxX, MaxY int
}

// Width returns the horizontal extent of the region.
func (r Region) Width() int { return r.MaxX - r.MinX }

// Height returns the vertical extent of the region.
func (r Region) Height() int { return r.MaxY - r.MinY }

func (r Region) isZeroArea() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}

// String returns a string representation of the region.
func (r Region) String() string {
	return fmt.Sprintf("Region(%d,%d)-(%d,%d)", r.MinX, r.MinY, r.MaxX, r.MaxY)
}

// Packer allocates rectangular regions inside a fixed-size area.
//
// Packer is not safe for concurrent use.
type Packer struct {
	free []Region
}

// NewPacker returns a packer managing a width by height area.
func NewPacker(width, height int) *Packer {
	p := &Packer{free: make([]Region, 1, 8)}
	p.free[0] = Region{MaxX: width, MaxY: height}
	return p
}

// Allocate finds space for a width by height rectangle and returns its
// placement. Each allocation is surrounded by a one-pixel border so that
// texture sampling at the edges never bleeds into a neighbor. A request
// with a zero dimension succeeds without consuming space.
//
// Returns ErrNotEnoughSpace when no free region can hold the rectangle.
func (p *Packer) Allocate(width, height int) (Region, error) {
	if width == 0 || height == 0 {
		return Region{MaxX: width, MaxY: height}, nil
	}

	// Account for the one-pixel border on every side.
	bw := width + 2
	bh := height + 2

	best := -1
	for i, area := range p.free {
		if bw > area.Width() || bh > area.Height() {
			continue
		}
		if best < 0 ||
			(p.free[best].Width() >= area.Width() && p.free[best].Height() >= area.Height()) {
			best = i
		}
	}
	if best < 0 {
		return Region{}, ErrNotEnoughSpace
	}

	area := p.free[best]
	withBorder := Region{
		MinX: area.MinX, MinY: area.MinY,
		MaxX: area.MinX + bw, MaxY: area.MinY + bh,
	}

	underneath := Region{
		MinX: area.MinX, MinY: withBorder.MaxY,
		MaxX: area.MaxX, MaxY: area.MaxY,
	}
	right := Region{
		MinX: withBorder.MaxX, MinY: area.MinY,
		MaxX: area.MaxX, MaxY: withBorder.MaxY,
	}

	if right.isZeroArea() {
		p.free[best] = underneath
	} else {
		p.free[best] = right
		if !underneath.isZeroArea() {
			p.free = append(p.free, underneath)
		}
	}

	return Region{
		MinX: withBorder.MinX + 1, MinY: withBorder.MinY + 1,
		MaxX: withBorder.MaxX - 1, MaxY: withBorder.MaxY - 1,
	}, nil
}
