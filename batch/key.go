// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package batch

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendertask/resource"
	"github.com/gogpu/rendertask/task"
)

// Kind selects the shader of a batch.
type Kind uint8

// Batch kinds.
const (
	KindSolid Kind = iota
	KindImage
	KindTextRun
	KindLinearGradient
	KindRadialGradient
	KindComposite
	KindMixBlend
	KindYuvImage
	KindSplitComposite
)

var kindNames = [...]string{
	KindSolid:          "Solid",
	KindImage:          "Image",
	KindTextRun:        "TextRun",
	KindLinearGradient: "LinearGradient",
	KindRadialGradient: "RadialGradient",
	KindComposite:      "Composite",
	KindMixBlend:       "MixBlend",
	KindYuvImage:       "YuvImage",
	KindSplitComposite: "SplitComposite",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// BlendMode is the fixed-function blend of a batch.
type BlendMode uint8

// Blend modes. BlendNone batches are opaque.
const (
	BlendNone BlendMode = iota
	BlendAlpha
	BlendPremultipliedAlpha
	BlendPremultipliedDestOut
	BlendSubpixelDualSource
	BlendAdvanced
)

// IsAdvanced reports whether m needs an advanced blend equation.
func (m BlendMode) IsAdvanced() bool {
	return m == BlendAdvanced
}

// State returns the pipeline blend state for m, or nil when blending is
// disabled or emulated in the shader.
func (m BlendMode) State() *gputypes.BlendState {
	switch m {
	case BlendAlpha:
		return &gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorSrcAlpha,
				DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
				Operation: gputypes.BlendOperationAdd,
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
				Operation: gputypes.BlendOperationAdd,
			},
		}
	case BlendPremultipliedAlpha, BlendSubpixelDualSource:
		s := gputypes.BlendStatePremultiplied()
		return &s
	case BlendPremultipliedDestOut:
		c := gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorZero,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		}
		return &gputypes.BlendState{Color: c, Alpha: c}
	}
	return nil
}

// Textures are the color texture bindings of a batch.
type Textures struct {
	Colors [3]resource.TextureSource
}

// NoTextures binds nothing and is compatible with every binding.
var NoTextures = Textures{}

// ColorTextures binds src to the first slot.
func ColorTextures(src resource.TextureSource) Textures {
	return Textures{Colors: [3]resource.TextureSource{src}}
}

// IsCompatible reports whether every slot of t and o can be bound at once.
func (t Textures) IsCompatible(o Textures) bool {
	for i := range t.Colors {
		if !t.Colors[i].IsCompatible(o.Colors[i]) {
			return false
		}
	}
	return true
}

// Combine merges two compatible bindings.
func (t Textures) Combine(o Textures) Textures {
	var out Textures
	for i := range t.Colors {
		out.Colors[i] = t.Colors[i].Combine(o.Colors[i])
	}
	return out
}

// Key identifies the draw state of a batch.
type Key struct {
	Kind     Kind
	Blend    BlendMode
	Mix      uint8
	Textures Textures
}

// IsCompatible reports whether instances of k and o can share a draw call.
func (k Key) IsCompatible(o Key) bool {
	return k.Kind == o.Kind && k.Blend == o.Blend && k.Mix == o.Mix && k.Textures.IsCompatible(o.Textures)
}

// OpaqueTaskAddress is the clip address of primitives without a clip mask.
const OpaqueTaskAddress = task.NoAddress

// Instance is the four-int record of one primitive instance.
type Instance [4]int32

// NewInstance packs an instance record. Flags occupy the high 16 bits of
// the segment word.
func NewInstance(header HeaderIndex, taskAddr, clipAddr task.Address, segment, flags, resourceAddr int32) Instance {
	return Instance{
		int32(header),
		int32(taskAddr)<<16 | int32(clipAddr),
		segment&0xFFFF | flags<<16,
		resourceAddr,
	}
}

// Header returns the header index of i.
func (i Instance) Header() HeaderIndex {
	return HeaderIndex(i[0])
}

// TaskAddress returns the render task address of i.
func (i Instance) TaskAddress() task.Address {
	return task.Address(uint32(i[1]) >> 16) //nolint:gosec // packed from a 16-bit address
}

// ClipAddress returns the clip task address of i.
func (i Instance) ClipAddress() task.Address {
	return task.Address(i[1] & 0xFFFF) //nolint:gosec // packed from a 16-bit address
}

// Batch is a run of instances drawn with one key.
type Batch struct {
	Key       Key
	Instances []Instance
}
