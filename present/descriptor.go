// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendertask"
	"github.com/gogpu/rendertask/pass"
	"github.com/gogpu/rendertask/target"
)

// TargetUsage is the usage of every texture array backing a target list.
// Later passes sample it and the presenter may copy saved layers out.
const TargetUsage = gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding |
	gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst

var (
	transparent = gputypes.Color{}
	opaqueWhite = gputypes.Color{R: 1, G: 1, B: 1, A: 1}
)

// ArrayDescriptor describes the texture array backing l: one layer per
// target, each sized to the largest slice. It returns nil for an empty list.
func ArrayDescriptor[T target.Target](label string, l *target.List[T]) *hal.TextureDescriptor {
	if l == nil || l.IsEmpty() {
		return nil
	}
	size := l.TextureSize()
	return &hal.TextureDescriptor{
		Label:         label,
		Size:          extent(size, l.Len()),
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        l.Format(),
		Usage:         TargetUsage,
	}
}

// DepthDescriptor describes a depth texture array matching a color array.
func DepthDescriptor(cfg rendertask.Config, label string, size image.Point, layers int) *hal.TextureDescriptor {
	return &hal.TextureDescriptor{
		Label:         label,
		Size:          extent(size, layers),
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        cfg.DepthFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	}
}

// FramebufferDepthDescriptor describes the depth texture of the framebuffer
// pass, or nil when no batch needs depth.
func FramebufferDepthDescriptor(cfg rendertask.Config, screen image.Point, p *pass.Pass) *hal.TextureDescriptor {
	if p.Kind() != pass.Framebuffer || !p.Framebuffer.NeedsDepth() {
		return nil
	}
	return DepthDescriptor(cfg, "framebuffer depth", screen, 1)
}

func extent(size image.Point, layers int) hal.Extent3D {
	return hal.Extent3D{
		Width:              uint32(max(size.X, 1)), //nolint:gosec // atlas sizes are bounded by MaxTextureDimension
		Height:             uint32(max(size.Y, 1)), //nolint:gosec // atlas sizes are bounded by MaxTextureDimension
		DepthOrArrayLayers: uint32(max(layers, 1)), //nolint:gosec // one layer per slice
	}
}

// ColorAttachment loads the previous contents when clearColor is nil and
// clears to *clearColor otherwise.
func ColorAttachment(view hal.TextureView, clearColor *gputypes.Color) hal.RenderPassColorAttachment {
	a := hal.RenderPassColorAttachment{
		View:    view,
		LoadOp:  gputypes.LoadOpLoad,
		StoreOp: gputypes.StoreOpStore,
	}
	if clearColor != nil {
		a.LoadOp = gputypes.LoadOpClear
		a.ClearValue = *clearColor
	}
	return a
}

// DepthAttachment clears depth to the far plane. Depth never outlives the
// pass.
func DepthAttachment(view hal.TextureView) *hal.RenderPassDepthStencilAttachment {
	return &hal.RenderPassDepthStencilAttachment{
		View:              view,
		DepthLoadOp:       gputypes.LoadOpClear,
		DepthStoreOp:      gputypes.StoreOpDiscard,
		DepthClearValue:   1.0,
		StencilLoadOp:     gputypes.LoadOpClear,
		StencilStoreOp:    gputypes.StoreOpDiscard,
		StencilClearValue: 0,
	}
}

// ListClearColor is the whole-layer clear of an off-screen target list.
// Without fast clears layers are loaded and the per-task clear rects are
// drawn instead. Alpha layers clear to one so unmasked texels stay visible.
func ListClearColor(cfg rendertask.Config, alpha bool) *gputypes.Color {
	if !cfg.GPUSupportsFastClears {
		return nil
	}
	c := transparent
	if alpha {
		c = opaqueWhite
	}
	return &c
}

// FramebufferPassDescriptor describes the render pass of the framebuffer.
// depthView may be nil when the pass needs no depth.
func FramebufferPassDescriptor(p *pass.Pass, view, depthView hal.TextureView) (*hal.RenderPassDescriptor, error) {
	if p.Kind() != pass.Framebuffer {
		return nil, fmt.Errorf("present: %s pass has no framebuffer", p.Kind())
	}
	clearColor := p.ClearColor
	desc := &hal.RenderPassDescriptor{
		Label:            "framebuffer",
		ColorAttachments: []hal.RenderPassColorAttachment{ColorAttachment(view, &clearColor)},
	}
	if p.Framebuffer.NeedsDepth() {
		if depthView == nil {
			return nil, ErrMissingDepth
		}
		desc.DepthStencilAttachment = DepthAttachment(depthView)
	}
	return desc, nil
}

// PictureCachePassDescriptor describes the render pass of one picture-cache
// tile. The tile is cleared only when its clear policy asks for it.
func PictureCachePassDescriptor(t *target.PictureCacheTarget, view, depthView hal.TextureView) *hal.RenderPassDescriptor {
	desc := &hal.RenderPassDescriptor{
		Label:            fmt.Sprintf("picture cache %d/%d", t.Texture, t.Layer),
		ColorAttachments: []hal.RenderPassColorAttachment{ColorAttachment(view, t.ClearColor)},
	}
	if depthView != nil && len(t.Container.OpaqueBatches) > 0 {
		desc.DepthStencilAttachment = DepthAttachment(depthView)
	}
	return desc
}
