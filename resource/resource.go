// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package resource describes the images and textures render tasks sample
// from, and how image requests resolve to texture-cache entries.
package resource

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/rendertask"
	"github.com/gogpu/rendertask/gpucache"
)

// ErrNotResident is returned by a Cache when an image has not been uploaded
// yet.
var ErrNotResident = errors.New("resource: image not resident")

// ImageKey identifies an image registered with the resource cache.
type ImageKey uint64

// ImageRendering selects the sampling filter of an image.
type ImageRendering uint8

// Image rendering modes.
const (
	RenderingAuto ImageRendering = iota
	RenderingCrispEdges
	RenderingPixelated
)

// ImageRequest asks for one rendition of an image.
type ImageRequest struct {
	Key       ImageKey
	Rendering ImageRendering
}

// ImageCacheKey names a cached image, optionally restricted to a texel
// sub-rectangle.
type ImageCacheKey struct {
	Request   ImageRequest
	TexelRect *image.Rectangle
}

// CacheTextureID identifies a texture owned by the texture cache.
type CacheTextureID uint32

// ExternalImageID identifies an image whose texture is owned by the embedder.
type ExternalImageID uint64

// SourceKind enumerates where a batch samples its input.
type SourceKind uint8

// Texture source kinds.
const (
	SourceInvalid SourceKind = iota
	SourceTextureCache
	SourceExternal
	SourcePrevPassColor
	SourcePrevPassAlpha
	SourceRenderTaskCache
	SourceDeferred
)

var sourceKindNames = [...]string{
	SourceInvalid:         "Invalid",
	SourceTextureCache:    "TextureCache",
	SourceExternal:        "External",
	SourcePrevPassColor:   "PrevPassColor",
	SourcePrevPassAlpha:   "PrevPassAlpha",
	SourceRenderTaskCache: "RenderTaskCache",
	SourceDeferred:        "Deferred",
}

// String implements fmt.Stringer.
func (k SourceKind) String() string {
	if int(k) < len(sourceKindNames) {
		return sourceKindNames[k]
	}
	return fmt.Sprintf("SourceKind(%d)", k)
}

// TextureSource is a texture binding. ID is the cache texture id, the
// external image id or the saved target index depending on Kind.
type TextureSource struct {
	Kind SourceKind
	ID   uint64
}

// Invalid is the wildcard source that is compatible with anything.
var Invalid = TextureSource{}

// CacheTexture returns a texture-cache source.
func CacheTexture(id CacheTextureID) TextureSource {
	return TextureSource{Kind: SourceTextureCache, ID: uint64(id)}
}

// External returns an external image source.
func External(id ExternalImageID) TextureSource {
	return TextureSource{Kind: SourceExternal, ID: uint64(id)}
}

// PrevPassColor samples the color targets of the previous pass.
var PrevPassColor = TextureSource{Kind: SourcePrevPassColor}

// PrevPassAlpha samples the alpha targets of the previous pass.
var PrevPassAlpha = TextureSource{Kind: SourcePrevPassAlpha}

// RenderTaskCache samples a saved target list.
func RenderTaskCache(saved uint32) TextureSource {
	return TextureSource{Kind: SourceRenderTaskCache, ID: uint64(saved)}
}

// IsValid reports whether s names a real texture.
func (s TextureSource) IsValid() bool {
	return s.Kind != SourceInvalid
}

// IsCompatible reports whether s and other can share a draw call.
func (s TextureSource) IsCompatible(other TextureSource) bool {
	return !s.IsValid() || !other.IsValid() || s == other
}

// Combine returns the binding that satisfies both sources. It must only be
// called on compatible sources.
func (s TextureSource) Combine(other TextureSource) TextureSource {
	if s.IsValid() {
		return s
	}
	return other
}

// String implements fmt.Stringer.
func (s TextureSource) String() string {
	if !s.IsValid() {
		return "Invalid"
	}
	return fmt.Sprintf("%s(%d)", s.Kind, s.ID)
}

// CacheItem is a resolved image inside a texture.
type CacheItem struct {
	Texture      TextureSource
	Layer        int
	UVRect       image.Rectangle
	UVRectHandle *gpucache.Handle
}

// ImageProperties describes a registered image.
type ImageProperties struct {
	Size     image.Point
	External *ExternalImageID
}

// Cache is the resource-cache collaborator.
type Cache interface {
	// ImageProperties returns the properties of key, or false when the
	// key is unknown.
	ImageProperties(key ImageKey) (ImageProperties, bool)

	// CachedImage returns the texture-cache entry for req or
	// ErrNotResident.
	CachedImage(req ImageRequest) (CacheItem, error)
}

// DeferredResolve is an external or not-yet-resident image whose UV rect
// must be patched into the GPU cache before the frame is drawn.
type DeferredResolve struct {
	Address gpucache.Address
	Request ImageRequest
	Image   *ExternalImageID
}

// Resolve turns an image request into a texture source and a GPU cache
// address holding its UV rect. External images and images that are not
// resident yet are appended to deferred and reserve one placeholder block.
func Resolve(req ImageRequest, rc Cache, gc *gpucache.Cache, deferred *[]DeferredResolve) (TextureSource, gpucache.Address) {
	item, addr := ResolveItem(req, rc, gc, deferred)
	return item.Texture, addr
}

// ResolveItem is Resolve returning the whole cache item. Deferred items
// cover the full image rect on layer 0.
func ResolveItem(req ImageRequest, rc Cache, gc *gpucache.Cache, deferred *[]DeferredResolve) (CacheItem, gpucache.Address) {
	props, ok := rc.ImageProperties(req.Key)
	full := image.Rectangle{Max: props.Size}
	if ok && props.External != nil {
		addr := gc.PushDeferredPerFrameBlocks(1)
		*deferred = append(*deferred, DeferredResolve{Address: addr, Request: req, Image: props.External})
		return CacheItem{Texture: External(*props.External), UVRect: full}, addr
	}

	item, err := rc.CachedImage(req)
	if err != nil {
		addr := gc.PushDeferredPerFrameBlocks(1)
		*deferred = append(*deferred, DeferredResolve{Address: addr, Request: req})
		rendertask.Logger().Debug("resource: deferred resolve", "key", req.Key, "err", err)
		return CacheItem{Texture: TextureSource{Kind: SourceDeferred, ID: uint64(req.Key)}, UVRect: full}, addr
	}

	r := item.UVRect
	if item.UVRectHandle == nil {
		return item, gc.PushPerFrameBlocks(gpucache.Block{
			float32(r.Min.X), float32(r.Min.Y), float32(r.Max.X), float32(r.Max.Y),
		})
	}
	if w := gc.Request(item.UVRectHandle); w != nil {
		w.PushRect(float32(r.Min.X), float32(r.Min.Y), float32(r.Max.X), float32(r.Max.Y))
		w.Close()
	}
	return item, gc.Address(item.UVRectHandle)
}
