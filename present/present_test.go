// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendertask"
	"github.com/gogpu/rendertask/batch"
	"github.com/gogpu/rendertask/pass"
	"github.com/gogpu/rendertask/target"
	"github.com/gogpu/rendertask/task"
)

// fakeDevice records texture traffic.
type fakeDevice struct {
	created   []*hal.TextureDescriptor
	destroyed int
	views     int
	failWith  error
}

func (d *fakeDevice) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	if d.failWith != nil {
		return nil, d.failWith
	}
	d.created = append(d.created, desc)
	return &fakeTexture{}, nil
}

func (d *fakeDevice) DestroyTexture(hal.Texture) { d.destroyed++ }

func (d *fakeDevice) CreateTextureView(hal.Texture, *hal.TextureViewDescriptor) (hal.TextureView, error) {
	d.views++
	return &fakeView{}, nil
}

func (d *fakeDevice) DestroyTextureView(hal.TextureView) {}

// fakeTexture embeds hal.Texture so methods the pool never calls stay
// unimplemented.
type fakeTexture struct {
	hal.Texture
}

func (*fakeTexture) Destroy() {}

func (*fakeTexture) NativeHandle() uintptr { return 0 }

type fakeView struct {
	hal.TextureView
}

func (*fakeView) Destroy() {}

func (*fakeView) NativeHandle() uintptr { return 0 }

var (
	_ hal.Texture     = (*fakeTexture)(nil)
	_ hal.TextureView = (*fakeView)(nil)
	_ TextureDevice   = (*fakeDevice)(nil)
)

func buildFrame(t *testing.T) (*pass.Frame, *pass.Pass, *pass.Pass) {
	t.Helper()
	cfg := rendertask.DefaultConfig()
	pictures := batch.PictureList{{Primitives: []batch.Primitive{
		{Kind: batch.KindSolid, Blend: batch.BlendNone, LocalRect: image.Rect(0, 0, 50, 50)},
	}}}
	g := task.NewGraph()
	pic := g.Add(&task.Picture{PicIndex: 0}, task.Dynamic{Size: image.Pt(3000, 100)}, nil, task.DontCare)
	mask := g.Add(&task.CacheMask{}, task.Dynamic{Size: image.Pt(64, 64)}, nil, task.One)
	root := g.Add(&task.Picture{PicIndex: 0}, task.Fixed{Rect: image.Rect(0, 0, 640, 480)}, []task.ID{pic, mask}, task.DontCare)

	off := pass.NewOffScreen(cfg, g)
	off.AddTask(pic)
	off.AddTask(mask)
	fb := pass.NewFramebuffer(cfg, g)
	fb.AddTask(root)

	b := &pass.Builder{Config: cfg, ScreenSize: image.Pt(640, 480), Pictures: pictures}
	return b.Build(g, []*pass.Pass{off, fb}), off, fb
}

func TestArrayDescriptor_Sizing(t *testing.T) {
	_, off, _ := buildFrame(t)

	color := ArrayDescriptor("color", off.Color)
	if color == nil {
		t.Fatal("color descriptor is nil")
	}
	want := hal.Extent3D{Width: 3072, Height: 2048, DepthOrArrayLayers: 1}
	if color.Size != want {
		t.Errorf("color size = %+v, want %+v", color.Size, want)
	}
	if color.Format != gputypes.TextureFormatRGBA8Unorm || color.Usage != TargetUsage {
		t.Errorf("color format/usage = %v/%v", color.Format, color.Usage)
	}

	alpha := ArrayDescriptor("alpha", off.Alpha)
	if alpha == nil || alpha.Format != gputypes.TextureFormatR8Unorm {
		t.Fatalf("alpha descriptor = %+v", alpha)
	}
	if alpha.Size.Width != 2048 || alpha.Size.Height != 2048 {
		t.Errorf("alpha size = %+v", alpha.Size)
	}

	empty := target.NewColorList(rendertask.DefaultConfig())
	if ArrayDescriptor("empty", empty) != nil {
		t.Error("empty list should have no descriptor")
	}
}

func TestColorAttachment_ClearPolicy(t *testing.T) {
	view := &fakeView{}
	load := ColorAttachment(view, nil)
	if load.LoadOp != gputypes.LoadOpLoad || load.StoreOp != gputypes.StoreOpStore {
		t.Errorf("load attachment = %+v", load)
	}
	red := gputypes.Color{R: 1, A: 1}
	cleared := ColorAttachment(view, &red)
	if cleared.LoadOp != gputypes.LoadOpClear || cleared.ClearValue != red {
		t.Errorf("clear attachment = %+v", cleared)
	}
}

func TestListClearColor(t *testing.T) {
	cfg := rendertask.DefaultConfig()
	if c := ListClearColor(cfg, false); c == nil || *c != transparent {
		t.Errorf("color list clear = %v", c)
	}
	if c := ListClearColor(cfg, true); c == nil || *c != opaqueWhite {
		t.Errorf("alpha list clear = %v", c)
	}
	cfg.GPUSupportsFastClears = false
	if ListClearColor(cfg, false) != nil {
		t.Error("lists without fast clears must load")
	}
}

func TestFramebufferPassDescriptor(t *testing.T) {
	_, off, fb := buildFrame(t)

	if _, err := FramebufferPassDescriptor(off, &fakeView{}, nil); err == nil {
		t.Error("off-screen pass accepted as framebuffer")
	}
	if _, err := FramebufferPassDescriptor(fb, &fakeView{}, nil); !errors.Is(err, ErrMissingDepth) {
		t.Errorf("missing depth error = %v", err)
	}

	desc, err := FramebufferPassDescriptor(fb, &fakeView{}, &fakeView{})
	if err != nil {
		t.Fatal(err)
	}
	ca := desc.ColorAttachments[0]
	if ca.LoadOp != gputypes.LoadOpClear || ca.ClearValue != opaqueWhite {
		t.Errorf("framebuffer attachment = %+v", ca)
	}
	if desc.DepthStencilAttachment == nil || desc.DepthStencilAttachment.DepthClearValue != 1.0 {
		t.Errorf("depth attachment = %+v", desc.DepthStencilAttachment)
	}
	if d := FramebufferDepthDescriptor(rendertask.DefaultConfig(), image.Pt(640, 480), fb); d == nil ||
		d.Format != gputypes.TextureFormatDepth24PlusStencil8 || d.Size.Width != 640 {
		t.Errorf("framebuffer depth = %+v", d)
	}
}

func TestPictureCachePassDescriptor(t *testing.T) {
	white := opaqueWhite
	tile := &target.PictureCacheTarget{Texture: 4, Layer: 1, ClearColor: &white}
	desc := PictureCachePassDescriptor(tile, &fakeView{}, &fakeView{})
	if desc.ColorAttachments[0].LoadOp != gputypes.LoadOpClear {
		t.Error("tile with a clear color must clear")
	}
	if desc.DepthStencilAttachment != nil {
		t.Error("tile without opaque batches needs no depth")
	}

	tile.ClearColor = nil
	if PictureCachePassDescriptor(tile, &fakeView{}, nil).ColorAttachments[0].LoadOp != gputypes.LoadOpLoad {
		t.Error("opaque tile must load")
	}
}

func TestTexturePool_Reuse(t *testing.T) {
	dev := &fakeDevice{}
	pool, err := NewTexturePool(dev)
	if err != nil {
		t.Fatal(err)
	}
	frame, _, _ := buildFrame(t)
	cfg := rendertask.DefaultConfig()

	ft, err := pool.AcquireFrame(cfg, frame)
	if err != nil {
		t.Fatal(err)
	}
	pt := ft.Passes[0]
	if pt.Color == nil || pt.Alpha == nil || pt.ColorDepth == nil {
		t.Errorf("pass textures = %+v", pt)
	}
	if ft.Passes[1] != (PassTextures{}) {
		t.Error("framebuffer pass should not acquire arrays")
	}
	if len(dev.created) != 3 || dev.views != 3 {
		t.Errorf("created %d textures, %d views", len(dev.created), dev.views)
	}

	pool.ReleaseFrame(ft)
	again, err := pool.AcquireFrame(cfg, frame)
	if err != nil {
		t.Fatal(err)
	}
	if len(dev.created) != 3 {
		t.Errorf("second frame created %d textures, want reuse", len(dev.created)-3)
	}
	if s := pool.Stats(); s.Created != 3 || s.Reused != 3 || s.Free != 0 {
		t.Errorf("stats = %+v", s)
	}

	pool.ReleaseFrame(again)
	pool.Trim()
	if s := pool.Stats(); s.Destroyed != 3 || s.Free != 0 || dev.destroyed != 3 {
		t.Errorf("after trim stats = %+v, destroyed %d", s, dev.destroyed)
	}
}

func TestTexturePool_CreateError(t *testing.T) {
	boom := errors.New("out of memory")
	pool, err := NewTexturePool(&fakeDevice{failWith: boom})
	if err != nil {
		t.Fatal(err)
	}
	frame, _, _ := buildFrame(t)
	if _, err := pool.AcquireFrame(rendertask.DefaultConfig(), frame); !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped %v", err, boom)
	}
}

func TestNewTexturePool_Errors(t *testing.T) {
	if _, err := NewTexturePool(nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("nil device error = %v", err)
	}
	if _, err := NewTexturePoolFromProvider(nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("nil provider error = %v", err)
	}
}
