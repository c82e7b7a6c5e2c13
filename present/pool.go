// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendertask"
	"github.com/gogpu/rendertask/pass"
)

// Pool errors.
var (
	// ErrNilDevice is returned when a pool is created without a device.
	ErrNilDevice = errors.New("present: device is nil")

	// ErrNoHalDevice is returned when a provider does not expose a HAL
	// device.
	ErrNoHalDevice = errors.New("present: provider does not expose a HAL device")

	// ErrMissingDepth is returned when a pass needs depth and no depth view
	// was supplied.
	ErrMissingDepth = errors.New("present: pass needs a depth attachment")
)

// TextureDevice is the part of hal.Device the pool uses.
type TextureDevice interface {
	CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error)
	DestroyTexture(texture hal.Texture)
	CreateTextureView(texture hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error)
	DestroyTextureView(view hal.TextureView)
}

type poolKey struct {
	format gputypes.TextureFormat
	usage  gputypes.TextureUsage
	size   hal.Extent3D
}

func keyOf(desc *hal.TextureDescriptor) poolKey {
	return poolKey{format: desc.Format, usage: desc.Usage, size: desc.Size}
}

// Texture is a pooled texture with its default view.
type Texture struct {
	Texture hal.Texture
	View    hal.TextureView
	key     poolKey
}

// PoolStats counts pool activity.
type PoolStats struct {
	Created   int
	Reused    int
	Destroyed int
	Free      int
}

// TexturePool recycles target textures across frames. Textures are matched
// on format, usage and exact size. It is safe for concurrent use.
type TexturePool struct {
	mu     sync.Mutex
	device TextureDevice
	free   map[poolKey][]*Texture
	stats  PoolStats
}

// NewTexturePool creates a pool over device.
func NewTexturePool(device TextureDevice) (*TexturePool, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	return &TexturePool{device: device, free: make(map[poolKey][]*Texture)}, nil
}

// NewTexturePoolFromProvider creates a pool over the HAL device of a
// provider. The provider must expose HalDevice() returning a hal.Device.
func NewTexturePoolFromProvider(provider gpucontext.DeviceProvider) (*TexturePool, error) {
	if provider == nil {
		return nil, ErrNilDevice
	}
	hp, ok := provider.(interface{ HalDevice() any })
	if !ok {
		return nil, ErrNoHalDevice
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, ErrNoHalDevice
	}
	return NewTexturePool(device)
}

// Acquire returns a free texture matching desc or creates one.
func (p *TexturePool) Acquire(desc *hal.TextureDescriptor) (*Texture, error) {
	key := keyOf(desc)

	p.mu.Lock()
	if list := p.free[key]; len(list) > 0 {
		t := list[len(list)-1]
		p.free[key] = list[:len(list)-1]
		p.stats.Reused++
		p.mu.Unlock()
		return t, nil
	}
	p.mu.Unlock()

	tex, err := p.device.CreateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("present: create texture %q: %w", desc.Label, err)
	}
	view, err := p.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: desc.Label + " view"})
	if err != nil {
		p.device.DestroyTexture(tex)
		return nil, fmt.Errorf("present: create view %q: %w", desc.Label, err)
	}

	p.mu.Lock()
	p.stats.Created++
	p.mu.Unlock()
	rendertask.Logger().Debug("present: texture created", "label", desc.Label,
		"width", desc.Size.Width, "height", desc.Size.Height, "layers", desc.Size.DepthOrArrayLayers)
	return &Texture{Texture: tex, View: view, key: key}, nil
}

// Release returns t to the pool. Nil textures are ignored.
func (p *TexturePool) Release(t *Texture) {
	if t == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free[t.key] = append(p.free[t.key], t)
}

// Trim destroys every free texture.
func (p *TexturePool) Trim() {
	p.mu.Lock()
	free := p.free
	p.free = make(map[poolKey][]*Texture)
	p.mu.Unlock()

	n := 0
	for _, list := range free {
		for _, t := range list {
			p.device.DestroyTextureView(t.View)
			p.device.DestroyTexture(t.Texture)
			n++
		}
	}
	p.mu.Lock()
	p.stats.Destroyed += n
	p.mu.Unlock()
}

// Stats returns a snapshot of the pool counters.
func (p *TexturePool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	for _, list := range p.free {
		s.Free += len(list)
	}
	return s
}

// PassTextures are the textures of one off-screen pass. Fields are nil for
// empty lists.
type PassTextures struct {
	Color      *Texture
	ColorDepth *Texture
	Alpha      *Texture
}

// FrameTextures holds the pass textures of a frame in pass order.
// Framebuffer passes get an empty entry.
type FrameTextures struct {
	Passes []PassTextures
}

// AcquireFrame acquires the texture arrays every off-screen pass of f
// needs. On error every texture acquired so far is released.
func (p *TexturePool) AcquireFrame(cfg rendertask.Config, f *pass.Frame) (*FrameTextures, error) {
	out := &FrameTextures{Passes: make([]PassTextures, len(f.Passes))}
	for i, ps := range f.Passes {
		if ps.Kind() != pass.OffScreen {
			continue
		}
		pt := &out.Passes[i]
		var err error
		if desc := ArrayDescriptor(fmt.Sprintf("pass %d color", i), ps.Color); desc != nil {
			if pt.Color, err = p.Acquire(desc); err != nil {
				p.ReleaseFrame(out)
				return nil, err
			}
			if ps.Color.NeedsDepth() {
				depth := DepthDescriptor(cfg, fmt.Sprintf("pass %d depth", i), ps.Color.TextureSize(), ps.Color.Len())
				if pt.ColorDepth, err = p.Acquire(depth); err != nil {
					p.ReleaseFrame(out)
					return nil, err
				}
			}
		}
		if desc := ArrayDescriptor(fmt.Sprintf("pass %d alpha", i), ps.Alpha); desc != nil {
			if pt.Alpha, err = p.Acquire(desc); err != nil {
				p.ReleaseFrame(out)
				return nil, err
			}
		}
	}
	return out, nil
}

// ReleaseFrame returns every texture of ft to the pool.
func (p *TexturePool) ReleaseFrame(ft *FrameTextures) {
	if ft == nil {
		return
	}
	for i := range ft.Passes {
		pt := &ft.Passes[i]
		p.Release(pt.Color)
		p.Release(pt.ColorDepth)
		p.Release(pt.Alpha)
		*pt = PassTextures{}
	}
}
