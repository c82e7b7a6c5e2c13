// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pass

import (
	"image"
	"testing"

	"github.com/gogpu/rendertask"
	"github.com/gogpu/rendertask/batch"
	"github.com/gogpu/rendertask/resource"
	"github.com/gogpu/rendertask/task"
)

func TestSchedule_PassKinds(t *testing.T) {
	cfg := rendertask.DefaultConfig()
	g := task.NewGraph()
	src := g.Add(&task.Picture{}, dynamic(64, 64), nil, task.DontCare)
	v := g.Add(&task.VerticalBlur{}, dynamic(64, 64), []task.ID{src}, task.DontCare)
	h := g.Add(&task.HorizontalBlur{}, dynamic(64, 64), []task.ID{v}, task.DontCare)
	root := g.Add(&task.Picture{}, screenRect(), []task.ID{h, src}, task.DontCare)

	passes := Schedule(cfg, g, root)
	if len(passes) != 4 {
		t.Fatalf("passes = %d, want 4", len(passes))
	}
	for i, p := range passes[:3] {
		if p.Kind() != OffScreen {
			t.Errorf("pass %d kind = %v", i, p.Kind())
		}
	}
	if last := passes[3]; last.Kind() != Framebuffer || len(last.Tasks()) != 1 || last.Tasks()[0] != root {
		t.Errorf("framebuffer pass = %v %v", last.Kind(), last.Tasks())
	}
	if !g.Get(src).Saved().IsPending() {
		t.Fatal("source read two passes later should be pending a save")
	}

	newTestBuilder(nil).Build(g, passes)
	if _, ok := g.Get(src).Saved().Index(); !ok {
		t.Error("saved source was not resolved by its pass")
	}
	if _, ok := passes[0].Color.SavedIndex(); !ok {
		t.Error("first pass color list was not stamped")
	}
}

func TestBuilder_FrameTables(t *testing.T) {
	pictures := batch.PictureList{
		{Primitives: []batch.Primitive{
			{Kind: batch.KindImage, Blend: batch.BlendPremultipliedAlpha, LocalRect: image.Rect(0, 0, 100, 100),
				Image: &resource.ImageRequest{Key: 42}},
			{Kind: batch.KindSolid, Blend: batch.BlendNone, LocalRect: image.Rect(0, 0, 800, 600), SpatialNode: 1},
		}},
	}
	cfg := rendertask.DefaultConfig()
	g := task.NewGraph()
	root := g.Add(&task.Picture{}, screenRect(), nil, task.DontCare)
	fb := NewFramebuffer(cfg, g)
	fb.AddTask(root)

	b := newTestBuilder(pictures)
	b.Spatial = batch.SpatialList{batch.Identity(), batch.Translate(10, 20)}
	frame := b.Build(g, []*Pass{fb})

	if len(frame.Headers) != 2 {
		t.Errorf("headers = %d, want 2", len(frame.Headers))
	}
	if len(frame.Transforms) != 2 {
		t.Errorf("transforms = %d, want identity plus one", len(frame.Transforms))
	}
	if len(frame.DeferredResolves) != 1 || frame.DeferredResolves[0].Request.Key != 42 {
		t.Errorf("deferred resolves = %+v", frame.DeferredResolves)
	}
	if len(frame.GPUBlocks) == 0 {
		t.Error("frame has no GPU blocks")
	}
	if len(frame.TaskData) != g.Len() {
		t.Errorf("task data = %d rows, want %d", len(frame.TaskData), g.Len())
	}
	if got, want := len(frame.TaskDataBytes()), g.Len()*32; got != want {
		t.Errorf("task data bytes = %d, want %d", got, want)
	}
	if got, want := len(frame.GPUBlockBytes()), len(frame.GPUBlocks)*16; got != want {
		t.Errorf("gpu block bytes = %d, want %d", got, want)
	}
	if frame.IsEmpty() || frame.MustBeDrawn() {
		t.Errorf("frame: IsEmpty=%v MustBeDrawn=%v", frame.IsEmpty(), frame.MustBeDrawn())
	}
	if !fb.Framebuffer.NeedsDepth() {
		t.Error("opaque primitive should need depth")
	}
}

func TestKind_String(t *testing.T) {
	if Framebuffer.String() != "Framebuffer" || OffScreen.String() != "OffScreen" {
		t.Errorf("kind names = %q, %q", Framebuffer, OffScreen)
	}
}
