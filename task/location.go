// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package task

import (
	"image"

	"github.com/gogpu/rendertask/resource"
)

// Location is where a task writes its output.
type Location interface {
	isLocation()
}

// Fixed writes to a rectangle chosen by the caller, usually in the
// framebuffer.
type Fixed struct {
	Rect image.Rectangle
}

// Dynamic asks the pass to pack a rectangle of Size into an atlas slice.
type Dynamic struct {
	Size image.Point
}

// TextureCache writes into a persistent texture-cache entry.
type TextureCache struct {
	Texture resource.CacheTextureID
	Layer   int
	Rect    image.Rectangle
}

// PictureCache writes one tile of a picture cache.
type PictureCache struct {
	Texture resource.CacheTextureID
	Layer   int
	Size    image.Point
}

func (Fixed) isLocation() {}
func (Dynamic) isLocation() {}
func (TextureCache) isLocation() {}
func (PictureCache) isLocation() {}

// Placement is the concrete position of a Dynamic task.
type Placement struct {
	Slice  int
	Origin image.Point
}

// ClearMode controls how a task's rect is cleared before drawing.
type ClearMode uint8

// Clear modes. Zero and One are only legal for alpha targets, Transparent
// only for color targets.
const (
	DontCare ClearMode = iota
	Transparent
	Zero
	One
)

var clearModeNames = [...]string{
	DontCare:    "DontCare",
	Transparent: "Transparent",
	Zero:        "Zero",
	One:         "One",
}

// String implements fmt.Stringer.
func (m ClearMode) String() string {
	if int(m) < len(clearModeNames) {
		return clearModeNames[m]
	}
	return "ClearMode(?)"
}
