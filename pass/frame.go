// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pass

import (
	"image"

	"github.com/gogpu/gputypes"
	"honnef.co/go/safeish"

	"github.com/gogpu/rendertask"
	"github.com/gogpu/rendertask/batch"
	"github.com/gogpu/rendertask/gpucache"
	"github.com/gogpu/rendertask/resource"
	"github.com/gogpu/rendertask/target"
	"github.com/gogpu/rendertask/task"
)

// Frame is the finished output of a frame build. It is immutable apart
// from the rendered flag and is owned by one side at a time.
type Frame struct {
	Passes []*Pass
	// TaskData is the render task table, indexed by task address.
	TaskData   []task.Data
	Transforms []batch.TransformData
	Headers    []batch.PrimitiveHeader
	GPUBlocks  []gpucache.Block
	// DeferredResolves are image addresses the presenter patches once the
	// images are resident.
	DeferredResolves []resource.DeferredResolve

	// HasTextureCacheTasks is set when a pass writes the texture cache.
	HasTextureCacheTasks bool
	BackgroundColor      gputypes.Color

	rendered bool
}

// MustBeDrawn reports whether the frame has texture cache writes that have
// not been rendered yet. Such a frame must not be skipped.
func (f *Frame) MustBeDrawn() bool {
	return f.HasTextureCacheTasks && !f.rendered
}

// MarkRendered records that the presenter drew the frame.
func (f *Frame) MarkRendered() {
	f.rendered = true
}

// TaskDataBytes returns the task table as raw bytes for a buffer upload.
func (f *Frame) TaskDataBytes() []byte {
	return safeish.SliceCast[[]byte](f.TaskData)
}

// GPUBlockBytes returns the GPU cache blocks as raw bytes.
func (f *Frame) GPUBlockBytes() []byte {
	return safeish.SliceCast[[]byte](f.GPUBlocks)
}

// IsEmpty reports whether no pass has any task.
func (f *Frame) IsEmpty() bool {
	for _, p := range f.Passes {
		if !p.IsEmpty() {
			return false
		}
	}
	return true
}

// Builder builds frames from partitioned passes. The zero value of each
// optional field is replaced by an empty default.
type Builder struct {
	Config     rendertask.Config
	ScreenSize image.Point

	Pictures  batch.PictureStore
	Spatial   batch.SpatialTree
	Resources resource.Cache
	GPUCache  *gpucache.Cache

	// TileClearColor overrides target.DefaultTileClearColor.
	TileClearColor target.TileClearColorFunc
}

// Context returns the frame context Build would use.
func (b *Builder) Context(g *task.Graph) *target.Context {
	pictures := b.Pictures
	if pictures == nil {
		pictures = batch.PictureList(nil)
	}
	spatial := b.Spatial
	if spatial == nil {
		spatial = batch.SpatialList{batch.Identity()}
	}
	resources := b.Resources
	if resources == nil {
		resources = resource.NewMemoryCache(0)
	}
	gc := b.GPUCache
	if gc == nil {
		gc = gpucache.New()
		gc.BeginFrame()
	}

	ctx := target.NewContext(b.Config, b.ScreenSize, g, pictures, spatial, resources, gc)
	if b.TileClearColor != nil {
		ctx.TileClearColor = b.TileClearColor
	}
	return ctx
}

// Build builds every pass in order with one shared context and assembles
// the frame. The task table is written after all passes so it sees every
// placement.
func (b *Builder) Build(g *task.Graph, passes []*Pass) *Frame {
	ctx := b.Context(g)
	f := &Frame{
		Passes:          passes,
		BackgroundColor: b.Config.FramebufferClearColor,
	}
	for _, p := range passes {
		p.Build(ctx)
		if p.HasTextureCacheTasks() {
			f.HasTextureCacheTasks = true
		}
	}

	f.TaskData = g.TaskData()
	f.Transforms = ctx.Transforms.Transforms()
	f.Headers = ctx.Headers.Headers
	f.GPUBlocks = ctx.GPUCache.Blocks()
	f.DeferredResolves = ctx.Deferred

	rendertask.Logger().Debug("pass: frame built",
		"passes", len(passes), "tasks", g.Len(), "headers", len(f.Headers),
		"gpu_blocks", len(f.GPUBlocks), "deferred", len(f.DeferredResolves))
	return f
}

// Schedule partitions the tasks reachable from root into passes. The pass
// holding root draws into the framebuffer; every earlier pass renders off
// screen.
func Schedule(cfg rendertask.Config, g *task.Graph, root task.ID) []*Pass {
	buckets := g.AssignPasses(root)
	passes := make([]*Pass, len(buckets))
	for i, ids := range buckets {
		if i == len(buckets)-1 {
			passes[i] = NewFramebuffer(cfg, g)
		} else {
			passes[i] = NewOffScreen(cfg, g)
		}
		for _, id := range ids {
			passes[i].AddTask(id)
		}
	}
	return passes
}
