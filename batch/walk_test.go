// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package batch

import (
	"image"
	"testing"

	"github.com/gogpu/rendertask"
	"github.com/gogpu/rendertask/gpucache"
	"github.com/gogpu/rendertask/resource"
	"github.com/gogpu/rendertask/task"
)

type walkFixture struct {
	walker   *Walker
	graph    *task.Graph
	cfg      BuilderConfig
	deferred []resource.DeferredResolve
}

func newWalkFixture(pictures PictureList) *walkFixture {
	f := &walkFixture{
		graph: task.NewGraph(),
		cfg:   NewBuilderConfig(rendertask.DefaultConfig(), screen),
	}
	gc := gpucache.New()
	gc.BeginFrame()
	f.walker = &Walker{
		Pictures:   pictures,
		Graph:      f.graph,
		Transforms: NewTransformPalette(SpatialList{Identity()}),
		Headers:    &PrimitiveHeaders{},
		Z:          &ZGenerator{},
		GPUCache:   gc,
		Resources:  resource.NewMemoryCache(0),
		Deferred:   &f.deferred,
	}
	return f
}

func solid(x int, mask task.VisibilityMask) Primitive {
	return Primitive{
		Kind:      KindSolid,
		Blend:     BlendAlpha,
		LocalRect: image.Rect(x, 0, x+10, 10),
		VisMask:   mask,
	}
}

func TestWalker_SharedWalk(t *testing.T) {
	child := task.PictureIndex(1)
	f := newWalkFixture(PictureList{
		{Primitives: []Primitive{
			solid(0, 0b01),
			solid(20, 0b10),
			solid(40, 0b11),
			{Child: &child},
		}},
		{Primitives: []Primitive{solid(60, 0)}},
	})

	rect := image.Rect(0, 0, 256, 256)
	left := NewBuilder(f.cfg, 5, rect, nil, 0b01)
	right := NewBuilder(f.cfg, 6, rect, nil, 0b10)

	f.walker.Walk(0, 0, []*Builder{left, right})

	if got := f.walker.Headers.Len(); got != 4 {
		t.Errorf("headers = %d, want 4 (one per primitive)", got)
	}

	lc, rc := left.Finish(), right.Finish()
	if got := lc.InstanceCount(); got != 3 {
		t.Errorf("left instances = %d, want 3", got)
	}
	if got := rc.InstanceCount(); got != 3 {
		t.Errorf("right instances = %d, want 3", got)
	}
	for _, b := range lc.AlphaBatches {
		for _, in := range b.Instances {
			if in.TaskAddress() != 5 {
				t.Errorf("left instance task address = %d, want 5", in.TaskAddress())
			}
		}
	}

	// The shared primitive uses the same header in both builders.
	var shared [2]HeaderIndex
	for i, c := range []Container{lc, rc} {
		for _, in := range c.AlphaBatches[0].Instances {
			if h := f.walker.Headers.Headers[in.Header()]; h.LocalRect.Min.X == 40 {
				shared[i] = in.Header()
			}
		}
	}
	if shared[0] != shared[1] {
		t.Errorf("shared primitive headers differ: %v", shared)
	}
}

func TestWalker_InputTaskTexture(t *testing.T) {
	f := newWalkFixture(nil)
	saved := f.graph.Add(&task.Readback{}, task.Fixed{}, nil, task.DontCare)
	alpha := f.graph.Add(&task.CacheMask{}, task.Fixed{}, nil, task.DontCare)
	plain := f.graph.Add(&task.Readback{}, task.Fixed{}, nil, task.DontCare)
	f.graph.MarkForSaving(saved)
	f.graph.Get(saved).ResolveSaved(f.graph.SaveTarget())

	if got := TaskSource(f.graph, saved); got != resource.RenderTaskCache(0) {
		t.Errorf("saved source = %v", got)
	}
	if got := TaskSource(f.graph, alpha); got != resource.PrevPassAlpha {
		t.Errorf("alpha source = %v", got)
	}
	if got := TaskSource(f.graph, plain); got != resource.PrevPassColor {
		t.Errorf("color source = %v", got)
	}

	f.walker.Pictures = PictureList{{Primitives: []Primitive{
		{Kind: KindComposite, Blend: BlendPremultipliedAlpha, LocalRect: image.Rect(0, 0, 8, 8), Input: &saved, Clip: &alpha},
	}}}
	b := NewBuilder(f.cfg, 9, image.Rect(0, 0, 8, 8), nil, task.VisibleEverywhere)
	f.walker.Walk(0, 0, []*Builder{b})

	c := b.Finish()
	if len(c.AlphaBatches) != 1 {
		t.Fatalf("alpha batches = %d", len(c.AlphaBatches))
	}
	batch := c.AlphaBatches[0]
	if batch.Key.Textures.Colors[0] != resource.RenderTaskCache(0) {
		t.Errorf("batch texture = %v", batch.Key.Textures.Colors[0])
	}
	if got := batch.Instances[0].ClipAddress(); got != task.Address(alpha) {
		t.Errorf("clip address = %d, want %d", got, alpha)
	}
}

func TestWalker_ImageNotResidentIsDeferred(t *testing.T) {
	req := resource.ImageRequest{Key: 12}
	f := newWalkFixture(PictureList{{Primitives: []Primitive{
		{Kind: KindImage, Blend: BlendNone, LocalRect: image.Rect(0, 0, 8, 8), Image: &req},
	}}})
	b := NewBuilder(f.cfg, 0, image.Rect(0, 0, 8, 8), nil, task.VisibleEverywhere)
	f.walker.Walk(0, 0, []*Builder{b})

	if len(f.deferred) != 1 || f.deferred[0].Request != req {
		t.Fatalf("deferred = %+v", f.deferred)
	}
	c := b.Finish()
	if len(c.OpaqueBatches) != 1 {
		t.Errorf("opaque batches = %d, want 1", len(c.OpaqueBatches))
	}
}

func TestWalker_CulledPrimitive(t *testing.T) {
	f := newWalkFixture(PictureList{{Primitives: []Primitive{
		{Kind: KindSolid, LocalRect: image.Rect(0, 0, 8, 8), ClipRect: image.Rect(20, 20, 30, 30)},
	}}})
	b := NewBuilder(f.cfg, 0, image.Rect(0, 0, 8, 8), nil, task.VisibleEverywhere)
	f.walker.Walk(0, 0, []*Builder{b})

	if f.walker.Headers.Len() != 0 {
		t.Error("fully clipped primitive produced a header")
	}
}
