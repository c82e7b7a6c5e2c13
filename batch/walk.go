// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package batch

import (
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendertask/gpucache"
	"github.com/gogpu/rendertask/resource"
	"github.com/gogpu/rendertask/task"
)

// Primitive is a prepared primitive of a picture.
type Primitive struct {
	Kind  Kind
	Blend BlendMode
	Mix   uint8

	LocalRect image.Rectangle
	// ClipRect limits the primitive in local space. Empty means unclipped.
	ClipRect    image.Rectangle
	SpatialNode task.SpatialNodeIndex
	// VisMask selects the picture-cache tiles the primitive is visible in.
	// Zero means visible everywhere.
	VisMask task.VisibilityMask

	// Data is the primitive-specific GPU cache entry.
	Data *gpucache.Handle
	// Image is sampled by image primitives.
	Image *resource.ImageRequest
	// Input is a task whose output the primitive samples.
	Input *task.ID
	// Clip is the clip mask task of the primitive.
	Clip *task.ID
	// Child is a pass-through picture drawn in place of this primitive.
	Child *task.PictureIndex

	Segment  int32
	Flags    int32
	UserData [4]int32
}

func (p *Primitive) visibility() task.VisibilityMask {
	if p.VisMask == 0 {
		return task.VisibleEverywhere
	}
	return p.VisMask
}

// TileCache describes the picture cache a picture renders into.
type TileCache struct {
	// BackgroundColor is set when the cache has a known backdrop.
	BackgroundColor *gputypes.Color
	// Slice is the cache's position in the compositor stack, 0 at the
	// bottom.
	Slice int
}

// IsOpaque reports whether the cache backdrop covers every pixel.
func (tc *TileCache) IsOpaque() bool {
	return tc.BackgroundColor != nil && tc.BackgroundColor.A >= 1
}

// Picture is a list of primitives sharing a raster space.
type Picture struct {
	Primitives        []Primitive
	RasterSpatialNode task.SpatialNodeIndex
	TileCache         *TileCache
}

// PictureStore resolves picture indices.
type PictureStore interface {
	Picture(index task.PictureIndex) *Picture
}

// PictureList is a PictureStore backed by a slice.
type PictureList []Picture

// Picture implements PictureStore.
func (l PictureList) Picture(index task.PictureIndex) *Picture {
	if int(index) < len(l) {
		return &l[index]
	}
	return nil
}

// TaskSource returns the binding that samples the output of id: its saved
// target list once resolved, otherwise the previous pass of its kind.
func TaskSource(g *task.Graph, id task.ID) resource.TextureSource {
	t := g.Get(id)
	if idx, ok := t.Saved().Index(); ok {
		return resource.RenderTaskCache(uint32(idx))
	}
	if t.Kind.TargetKind() == task.Alpha {
		return resource.PrevPassAlpha
	}
	return resource.PrevPassColor
}

func addressWord(a gpucache.Address) int32 {
	if !a.IsValid() {
		return -1
	}
	return int32(a.Index()) //nolint:gosec // cache stays far below 2^31 blocks
}

// Walker emits the instances of a picture into one or more builders.
type Walker struct {
	Pictures   PictureStore
	Graph      *task.Graph
	Transforms *TransformPalette
	Headers    *PrimitiveHeaders
	Z          *ZGenerator
	GPUCache   *gpucache.Cache
	Resources  resource.Cache
	Deferred   *[]resource.DeferredResolve
}

// Walk visits every primitive of pic once, descending into pass-through
// children. Each primitive gets one header; every builder whose visibility
// mask intersects the primitive's gets an instance.
func (w *Walker) Walk(pic task.PictureIndex, raster task.SpatialNodeIndex, builders []*Builder) {
	p := w.Pictures.Picture(pic)
	if p == nil || len(builders) == 0 {
		return
	}
	targets := make([]*Builder, 0, len(builders))
	for i := range p.Primitives {
		prim := &p.Primitives[i]
		if prim.Child != nil {
			w.Walk(*prim.Child, raster, builders)
			continue
		}
		targets = targets[:0]
		mask := prim.visibility()
		for _, b := range builders {
			if b.visMask.Intersects(mask) {
				targets = append(targets, b)
			}
		}
		if len(targets) > 0 {
			w.add(prim, raster, targets)
		}
	}
}

func (w *Walker) add(prim *Primitive, raster task.SpatialNodeIndex, targets []*Builder) {
	rel := w.Transforms.Relative(prim.SpatialNode, raster)
	bounds := rel.TransformRect(prim.LocalRect)
	if !prim.ClipRect.Empty() {
		bounds = bounds.Intersect(rel.TransformRect(prim.ClipRect))
	}
	if bounds.Empty() {
		return
	}

	textures := NoTextures
	resourceAddr := int32(-1)
	switch {
	case prim.Input != nil:
		textures = ColorTextures(TaskSource(w.Graph, *prim.Input))
		resourceAddr = addressWord(w.Graph.Get(*prim.Input).UVRectAddress(w.GPUCache))
	case prim.Image != nil:
		src, addr := resource.Resolve(*prim.Image, w.Resources, w.GPUCache, w.Deferred)
		textures = ColorTextures(src)
		resourceAddr = addressWord(addr)
	}

	specific := gpucache.InvalidAddress
	if prim.Data != nil {
		specific = w.GPUCache.Address(prim.Data)
	}
	clipAddr := OpaqueTaskAddress
	if prim.Clip != nil {
		clipAddr = w.Graph.Address(*prim.Clip)
	}

	header := w.Headers.Push(PrimitiveHeader{
		LocalRect:       prim.LocalRect,
		LocalClipRect:   prim.ClipRect,
		SpecificAddress: specific,
		TransformID:     w.Transforms.GetID(prim.SpatialNode, raster),
		Z:               w.Z.Next(),
		UserData:        prim.UserData,
	})
	key := Key{Kind: prim.Kind, Blend: prim.Blend, Mix: prim.Mix, Textures: textures}
	for _, b := range targets {
		b.Add(key, bounds, NewInstance(header, b.taskAddress, clipAddr, prim.Segment, prim.Flags, resourceAddr))
	}
}
