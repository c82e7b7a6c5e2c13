// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package batch

import (
	"image"

	"github.com/gogpu/rendertask/gpucache"
)

// ZBufferID orders primitives for depth testing. Later primitives get
// larger ids.
type ZBufferID int32

// ZGenerator hands out increasing z ids for one frame.
type ZGenerator struct {
	next ZBufferID
}

// Next returns the next z id.
func (g *ZGenerator) Next() ZBufferID {
	z := g.next
	g.next++
	return z
}

// PrimitiveHeader is the per-primitive record shared by every instance of
// the primitive.
type PrimitiveHeader struct {
	LocalRect       image.Rectangle
	LocalClipRect   image.Rectangle
	SpecificAddress gpucache.Address
	TransformID     TransformPaletteID
	Z               ZBufferID
	UserData        [4]int32
}

// HeaderIndex indexes PrimitiveHeaders.
type HeaderIndex int32

// PrimitiveHeaders is the header table of one frame.
type PrimitiveHeaders struct {
	Headers []PrimitiveHeader
}

// Push appends h and returns its index.
func (p *PrimitiveHeaders) Push(h PrimitiveHeader) HeaderIndex {
	p.Headers = append(p.Headers, h)
	return HeaderIndex(len(p.Headers) - 1) //nolint:gosec // bounded by instance count
}

// Len returns the number of headers.
func (p *PrimitiveHeaders) Len() int {
	return len(p.Headers)
}
