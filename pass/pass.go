// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pass

import (
	"image"
	"slices"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendertask"
	"github.com/gogpu/rendertask/batch"
	"github.com/gogpu/rendertask/target"
	"github.com/gogpu/rendertask/task"
)

// Kind distinguishes the terminal framebuffer pass from off-screen passes.
type Kind uint8

// Pass kinds.
const (
	Framebuffer Kind = iota
	OffScreen
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k == Framebuffer {
		return "Framebuffer"
	}
	return "OffScreen"
}

// Pass is one scheduling epoch of a frame.
//
// A framebuffer pass owns a single color target drawn at fixed rects. An
// off-screen pass owns a color and an alpha target list plus the texture
// cache and picture cache targets written this pass.
type Pass struct {
	kind  Kind
	graph *task.Graph
	tasks []task.ID
	built bool

	// Framebuffer is set for framebuffer passes.
	Framebuffer *target.ColorTarget
	// ClearColor is the framebuffer clear color.
	ClearColor gputypes.Color

	Color        *target.List[*target.ColorTarget]
	Alpha        *target.List[*target.AlphaTarget]
	TextureCache map[target.TextureCacheKey]*target.TextureCacheTarget
	PictureCache []target.PictureCacheTarget

	textureCacheKeys []target.TextureCacheKey
}

// NewFramebuffer creates the terminal pass of a frame.
func NewFramebuffer(cfg rendertask.Config, g *task.Graph) *Pass {
	return &Pass{
		kind:        Framebuffer,
		graph:       g,
		Framebuffer: target.NewColorTarget(),
		ClearColor:  cfg.FramebufferClearColor,
	}
}

// NewOffScreen creates an empty off-screen pass.
func NewOffScreen(cfg rendertask.Config, g *task.Graph) *Pass {
	return &Pass{
		kind:         OffScreen,
		graph:        g,
		Color:        target.NewColorList(cfg),
		Alpha:        target.NewAlphaList(cfg),
		TextureCache: make(map[target.TextureCacheKey]*target.TextureCacheTarget),
	}
}

// Kind returns the pass kind.
func (p *Pass) Kind() Kind {
	return p.kind
}

// Tasks returns the tasks of the pass in insertion order.
func (p *Pass) Tasks() []task.ID {
	return p.tasks
}

// IsBuilt reports whether Build has run.
func (p *Pass) IsBuilt() bool {
	return p.built
}

// AddTask appends id to the pass. Dynamic tasks grow the size hint of the
// list they will be allocated from so slices created later fit them.
func (p *Pass) AddTask(id task.ID) {
	if p.built {
		rendertask.Invariant(rendertask.ErrPassBuilt, "task %d added to a built %s pass", id, p.kind)
	}
	p.tasks = append(p.tasks, id)
	if p.kind != OffScreen {
		return
	}

	t := p.graph.Get(id)
	var size image.Point
	switch loc := t.Location.(type) {
	case task.Dynamic:
		size = loc.Size
	case task.Fixed:
		size = loc.Rect.Max
	default:
		return
	}
	if t.Kind.TargetKind() == task.Alpha {
		p.Alpha.GrowMaxDynamicSize(size)
	} else {
		p.Color.GrowMaxDynamicSize(size)
	}
}

// TextureCacheKeys returns the texture cache keys in order of first use.
func (p *Pass) TextureCacheKeys() []target.TextureCacheKey {
	return p.textureCacheKeys
}

// HasTextureCacheTasks reports whether the pass writes the texture cache.
func (p *Pass) HasTextureCacheTasks() bool {
	return len(p.textureCacheKeys) > 0
}

// Build assigns every task to a target and batches the pass. It runs once.
func (p *Pass) Build(ctx *target.Context) {
	if p.built {
		rendertask.Invariant(rendertask.ErrPassBuilt, "%s pass built twice", p.kind)
	}
	p.built = true

	if p.kind == Framebuffer {
		p.buildFramebuffer(ctx)
	} else {
		p.buildOffScreen(ctx)
	}
}

func (p *Pass) buildFramebuffer(ctx *target.Context) {
	for _, id := range p.tasks {
		ctx.Graph.Get(id).WriteGPUBlocks(ctx.GPUCache)
		p.Framebuffer.AddTask(id, ctx)
	}
	p.Framebuffer.Build(ctx)
	rendertask.Logger().Debug("pass: framebuffer built",
		"tasks", len(p.tasks), "containers", len(p.Framebuffer.AlphaBatchContainers))
}

// pictureGroup collects the picture-cache tiles of one picture.
type pictureGroup struct {
	picture task.PictureIndex
	tasks   []task.ID
}

func (p *Pass) buildOffScreen(ctx *target.Context) {
	g := ctx.Graph
	colorSaved, alphaSaved := p.savedIndices(g)

	var groups []pictureGroup
	for _, id := range fixedFirst(g, p.tasks) {
		t := g.Get(id)
		if t.Saved().IsPending() {
			if t.Kind.TargetKind() == task.Alpha {
				t.ResolveSaved(*alphaSaved)
			} else {
				t.ResolveSaved(*colorSaved)
			}
		}

		switch loc := t.Location.(type) {
		case task.PictureCache:
			pic, ok := t.Kind.(*task.Picture)
			if !ok {
				rendertask.Invariant(rendertask.ErrTargetKindMismatch,
					"%s task %d in picture cache texture %d", t.Kind.Name(), id, loc.Texture)
			}
			t.WriteGPUBlocks(ctx.GPUCache)
			groups = addToGroup(groups, pic.PicIndex, id)
		case task.TextureCache:
			key := target.TextureCacheKey{Texture: loc.Texture, Layer: loc.Layer}
			tc, ok := p.TextureCache[key]
			if !ok {
				tc = target.NewTextureCacheTarget(key)
				p.TextureCache[key] = tc
				p.textureCacheKeys = append(p.textureCacheKeys, key)
			}
			t.WriteGPUBlocks(ctx.GPUCache)
			tc.AddTask(id, ctx)
		case task.Fixed:
			if t.Kind.TargetKind() == task.Alpha {
				i := p.Alpha.FixedTarget(loc.Rect)
				t.WriteGPUBlocks(ctx.GPUCache)
				p.Alpha.Target(i).AddTask(id, ctx)
			} else {
				i := p.Color.FixedTarget(loc.Rect)
				t.WriteGPUBlocks(ctx.GPUCache)
				p.Color.Target(i).AddTask(id, ctx)
			}
		case task.Dynamic:
			if t.Kind.TargetKind() == task.Alpha {
				slice, origin := p.Alpha.Allocate(loc.Size)
				t.Place(slice, origin)
				t.WriteGPUBlocks(ctx.GPUCache)
				p.Alpha.Target(slice).AddTask(id, ctx)
			} else {
				slice, origin := p.Color.Allocate(loc.Size)
				t.Place(slice, origin)
				t.WriteGPUBlocks(ctx.GPUCache)
				p.Color.Target(slice).AddTask(id, ctx)
			}
		}
	}

	for _, grp := range groups {
		p.buildPictureCache(ctx, grp)
	}

	p.Color.Build(ctx, colorSaved)
	p.Alpha.Build(ctx, alphaSaved)

	rendertask.Logger().Debug("pass: off-screen built",
		"tasks", len(p.tasks),
		"color_targets", p.Color.Len(), "alpha_targets", p.Alpha.Len(),
		"texture_cache_targets", len(p.textureCacheKeys),
		"picture_cache_targets", len(p.PictureCache))
}

// savedIndices allocates one saved index per target kind that has a task
// pending a save.
func (p *Pass) savedIndices(g *task.Graph) (color, alpha *task.SavedIndex) {
	for _, id := range p.tasks {
		t := g.Get(id)
		if !t.Saved().IsPending() {
			continue
		}
		if t.Kind.TargetKind() == task.Alpha {
			if alpha == nil {
				idx := g.SaveTarget()
				alpha = &idx
			}
		} else if color == nil {
			idx := g.SaveTarget()
			color = &idx
		}
	}
	return color, alpha
}

// fixedFirst returns ids with Fixed tasks moved to the front, so their bands
// in target 0 are reserved before any dynamic allocation. Relative order is
// kept within each group.
func fixedFirst(g *task.Graph, ids []task.ID) []task.ID {
	out := make([]task.ID, 0, len(ids))
	for _, id := range ids {
		if _, ok := g.Get(id).Location.(task.Fixed); ok {
			out = append(out, id)
		}
	}
	for _, id := range ids {
		if _, ok := g.Get(id).Location.(task.Fixed); !ok {
			out = append(out, id)
		}
	}
	return out
}

func addToGroup(groups []pictureGroup, pic task.PictureIndex, id task.ID) []pictureGroup {
	i := slices.IndexFunc(groups, func(g pictureGroup) bool { return g.picture == pic })
	if i < 0 {
		return append(groups, pictureGroup{picture: pic, tasks: []task.ID{id}})
	}
	groups[i].tasks = append(groups[i].tasks, id)
	return groups
}

// buildPictureCache batches every tile of one picture with a single walk of
// its primitives.
func (p *Pass) buildPictureCache(ctx *target.Context, grp pictureGroup) {
	cfg := ctx.BuilderConfig()
	builders := make([]*batch.Builder, len(grp.tasks))
	var raster task.SpatialNodeIndex
	for i, id := range grp.tasks {
		t := ctx.Graph.Get(id)
		pic := t.Kind.(*task.Picture)
		raster = pic.RasterSpatialNode
		mask := pic.VisMask
		if mask == 0 {
			mask = task.VisibleEverywhere
		}
		rect, _ := t.TargetRect()
		builders[i] = batch.NewBuilder(cfg, ctx.Graph.Address(id), rect, nil, mask)
	}

	ctx.Walker().Walk(grp.picture, raster, builders)

	var tc *batch.TileCache
	if pic := ctx.Pictures.Picture(grp.picture); pic != nil {
		tc = pic.TileCache
	}
	for i, id := range grp.tasks {
		loc := ctx.Graph.Get(id).Location.(task.PictureCache)
		p.PictureCache = append(p.PictureCache, target.PictureCacheTarget{
			Texture:    loc.Texture,
			Layer:      loc.Layer,
			ClearColor: ctx.TileClear(tc),
			Container:  builders[i].Finish(),
		})
	}
}

// IsEmpty reports whether the pass has no tasks.
func (p *Pass) IsEmpty() bool {
	return len(p.tasks) == 0
}
