// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package atlas

import (
	"image"

	"golang.org/x/exp/constraints"

	"github.com/gogpu/rendertask"
)

// Allocator hands out rectangles from a growing set of slices.
//
// The allocator is owned by exactly one render target list and is not safe
// for concurrent use.
type Allocator struct {
	ideal int
	mask  int
	max   int

	slices         []*Slice
	maxDynamicSize image.Point
}

// NewAllocator creates an allocator with no slices using the texture
// dimension limits from cfg.
func NewAllocator(cfg rendertask.Config) *Allocator {
	return &Allocator{
		ideal: cfg.IdealMaxTextureDimension,
		mask:  cfg.TextureDimensionMask,
		max:   cfg.MaxTextureDimension,
	}
}

// GrowMaxDynamicSize extends the largest dynamic size seen this frame.
// It never shrinks.
func (a *Allocator) GrowMaxDynamicSize(size image.Point) {
	a.maxDynamicSize.X = max(a.maxDynamicSize.X, size.X)
	a.maxDynamicSize.Y = max(a.maxDynamicSize.Y, size.Y)
}

// MaxDynamicSize returns the largest dynamic size seen so far.
func (a *Allocator) MaxDynamicSize() image.Point {
	return a.maxDynamicSize
}

// NewSliceSize returns the dimensions the next created slice would get.
func (a *Allocator) NewSliceSize() image.Point {
	w := alignUp(a.maxDynamicSize.X, a.mask)
	h := alignUp(a.maxDynamicSize.Y, a.mask)
	return image.Pt(max(a.ideal, w), max(a.ideal, h))
}

// Allocate places a rectangle of the given size and returns its slice index
// and origin. A new slice is appended when no existing slice fits.
//
// An empty request on an allocator without slices still creates one slice so
// that downstream texture arrays always have at least one layer.
func (a *Allocator) Allocate(size image.Point) (int, image.Point) {
	a.GrowMaxDynamicSize(size)

	empty := size.X <= 0 || size.Y <= 0
	if empty && len(a.slices) > 0 {
		return 0, image.Point{}
	}
	if !empty {
		for i, s := range a.slices {
			if origin, ok := s.allocate(size); ok {
				return i, origin
			}
		}
	}

	dims := a.NewSliceSize()
	if size.X > dims.X || size.Y > dims.Y || dims.X > a.max || dims.Y > a.max {
		rendertask.Invariant(rendertask.ErrAllocationTooLarge,
			"request %dx%d, slice %dx%d, device limit %d", size.X, size.Y, dims.X, dims.Y, a.max)
	}

	s := newSlice(dims)
	origin, _ := s.allocate(size)
	a.slices = append(a.slices, s)
	rendertask.Logger().Debug("atlas: slice created",
		"slice", len(a.slices)-1, "width", dims.X, "height", dims.Y,
		"request_w", size.X, "request_h", size.Y)
	return len(a.slices) - 1, origin
}

// EnsureSlice makes sure slice 0 exists.
func (a *Allocator) EnsureSlice() {
	if len(a.slices) == 0 {
		a.Allocate(image.Point{})
	}
}

// Reserve blocks a top band of a slice covering rect so dynamic allocations
// are placed below it. It fails once dynamic allocations exist and rect
// reaches below the band.
func (a *Allocator) Reserve(slice int, rect image.Rectangle) bool {
	if slice < 0 || slice >= len(a.slices) {
		return false
	}
	return a.slices[slice].reserve(rect)
}

// SliceCount returns the number of slices.
func (a *Allocator) SliceCount() int {
	return len(a.slices)
}

// Slice returns slice i, or nil if out of range.
func (a *Allocator) Slice(i int) *Slice {
	if i < 0 || i >= len(a.slices) {
		return nil
	}
	return a.slices[i]
}

// UsedRect returns the used rectangle of slice i.
func (a *Allocator) UsedRect(i int) image.Rectangle {
	if s := a.Slice(i); s != nil {
		return s.used
	}
	return image.Rectangle{}
}

// TextureSize returns the per-layer size a texture array needs to hold
// every slice, or the zero point when there are no slices.
func (a *Allocator) TextureSize() image.Point {
	var size image.Point
	for _, s := range a.slices {
		size.X = max(size.X, s.size.X)
		size.Y = max(size.Y, s.size.Y)
	}
	return size
}

// alignUp rounds x up to the next multiple of mask+1. mask must be one less
// than a power of two.
func alignUp[T constraints.Integer](x, mask T) T {
	return (x + mask) &^ mask
}
