// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package task defines render tasks and the graph that owns them.
//
// A task is one unit of GPU work with a closed set of kinds, an output
// location, and children that must already exist in the graph when the task
// is added. Dynamic tasks receive their concrete placement exactly once,
// while the pass that contains them is built.
package task

import (
	"image"

	"github.com/gogpu/rendertask"
	"github.com/gogpu/rendertask/gpucache"
)

// ID indexes a task in its graph.
type ID uint32

// InvalidID never names a task.
const InvalidID = ^ID(0)

// Address is the index shaders use to read a task's data record.
type Address uint16

// NoAddress marks an unused address slot, such as a missing clip mask or
// filter input. No task is ever given it.
const NoAddress Address = 0x7FFF

// SavedIndex identifies a saved target list that later passes may sample.
type SavedIndex uint32

type savedState uint8

const (
	notSaved savedState = iota
	savePending
	saveResolved
)

// Saved is the saved-target state of a task: not saved, pending, or resolved
// to a SavedIndex once its pass is built.
type Saved struct {
	state savedState
	index SavedIndex
}

// IsSaved reports whether the task output must outlive its pass.
func (s Saved) IsSaved() bool {
	return s.state != notSaved
}

// IsPending reports whether the task is saved but not yet resolved.
func (s Saved) IsPending() bool {
	return s.state == savePending
}

// Index returns the resolved saved index.
func (s Saved) Index() (SavedIndex, bool) {
	return s.index, s.state == saveResolved
}

// Task is one node of the render task graph.
type Task struct {
	Kind      Kind
	Location  Location
	Children  []ID
	ClearMode ClearMode

	saved     Saved
	placement *Placement
}

// Saved returns the saved-target state.
func (t *Task) Saved() Saved {
	return t.saved
}

// ResolveSaved stamps idx into a pending task. Tasks that are not pending
// are left untouched.
func (t *Task) ResolveSaved(idx SavedIndex) {
	if t.saved.state == savePending {
		t.saved = Saved{state: saveResolved, index: idx}
	}
}

// Placement returns the placement of a Dynamic task, or nil before it is
// placed.
func (t *Task) Placement() *Placement {
	return t.placement
}

// Place records the allocation of a Dynamic task.
func (t *Task) Place(slice int, origin image.Point) {
	if _, ok := t.Location.(Dynamic); !ok {
		rendertask.Invariant(rendertask.ErrTaskPlaced, "%s task has location %T", t.Kind.Name(), t.Location)
	}
	if t.placement != nil {
		rendertask.Invariant(rendertask.ErrTaskPlaced, "%s task already placed at slice %d", t.Kind.Name(), t.placement.Slice)
	}
	t.placement = &Placement{Slice: slice, Origin: origin}
}

// TargetRect returns the rect the task writes and its target layer.
func (t *Task) TargetRect() (image.Rectangle, int) {
	switch loc := t.Location.(type) {
	case Fixed:
		return loc.Rect, 0
	case Dynamic:
		if t.placement == nil {
			rendertask.Invariant(rendertask.ErrTaskNotPlaced, "%s task of size %v", t.Kind.Name(), loc.Size)
		}
		return image.Rectangle{Min: t.placement.Origin, Max: t.placement.Origin.Add(loc.Size)}, t.placement.Slice
	case TextureCache:
		return loc.Rect, loc.Layer
	case PictureCache:
		return image.Rectangle{Max: loc.Size}, loc.Layer
	}
	rendertask.Invariant(rendertask.ErrTaskNotPlaced, "unknown location %T", t.Location)
	return image.Rectangle{}, 0
}

// SourceRect returns the rect and layer other tasks sample this task's
// output from. Picture-cache tiles are never sampled as task inputs.
func (t *Task) SourceRect() (image.Rectangle, int) {
	if _, ok := t.Location.(PictureCache); ok {
		rendertask.Invariant(rendertask.ErrTaskNotPlaced, "%s task in a picture cache used as a source", t.Kind.Name())
	}
	return t.TargetRect()
}

// uvHandle returns the handle a kind publishes its output rect through.
func (t *Task) uvHandle() *gpucache.Handle {
	switch k := t.Kind.(type) {
	case *Picture:
		return &k.UVRectHandle
	case *VerticalBlur:
		return &k.UVRectHandle
	case *HorizontalBlur:
		return &k.UVRectHandle
	case *SvgFilter:
		return &k.UVRectHandle
	}
	return nil
}

// UVRectAddress returns the GPU cache address of the task's published output
// rect, or gpucache.InvalidAddress when the kind publishes none or it was not
// written this frame.
func (t *Task) UVRectAddress(gc *gpucache.Cache) gpucache.Address {
	h := t.uvHandle()
	if h == nil {
		return gpucache.InvalidAddress
	}
	return gc.Address(h)
}

// WriteGPUBlocks publishes the task's output rect, and the parameters of
// SVG filter stages, into the GPU cache. The task must be placed.
func (t *Task) WriteGPUBlocks(gc *gpucache.Cache) {
	h := t.uvHandle()
	if h == nil {
		return
	}
	rect, layer := t.TargetRect()
	if req := gc.Request(h); req != nil {
		req.PushRect(float32(rect.Min.X), float32(rect.Min.Y), float32(rect.Max.X), float32(rect.Max.Y))
		req.Push(gpucache.Block{float32(layer), 0, 0, 0})
		req.Close()
	}

	svg, ok := t.Kind.(*SvgFilter)
	if !ok || len(svg.Info.Values) == 0 {
		return
	}
	if req := gc.Request(&svg.ExtraHandle); req != nil {
		vals := svg.Info.Values
		for len(vals) > 0 {
			var b gpucache.Block
			n := copy(b[:], vals)
			vals = vals[n:]
			req.Push(b)
		}
		req.Close()
	}
}

// Data is the per-task record shaders read at the task's Address:
// x, y, width, height, layer and three kind-specific parameters.
type Data [8]float32

// data returns the task record. The rect is the one the task is drawn at,
// the same rect its consumers sample through SourceRect.
func (t *Task) data() Data {
	var d Data
	if _, ok := t.Location.(Dynamic); ok && t.placement == nil {
		return d
	}
	rect, layer := t.TargetRect()
	d[0], d[1] = float32(rect.Min.X), float32(rect.Min.Y)
	d[2], d[3] = float32(rect.Dx()), float32(rect.Dy())
	d[4] = float32(layer)

	switch k := t.Kind.(type) {
	case *Picture:
		d[5], d[6], d[7] = float32(k.ContentOrigin.X), float32(k.ContentOrigin.Y), k.DevicePixelScale
	case *VerticalBlur:
		d[5], d[6], d[7] = k.StdDeviation, float32(k.BlurRegion.X), float32(k.BlurRegion.Y)
	case *HorizontalBlur:
		d[5], d[6], d[7] = k.StdDeviation, float32(k.BlurRegion.X), float32(k.BlurRegion.Y)
	case *CacheMask:
		d[5], d[6], d[7] = float32(k.ActualRect.Min.X), float32(k.ActualRect.Min.Y), k.DevicePixelScale
	case *ClipRegion:
		d[5], d[6] = k.LocalPos[0], k.LocalPos[1]
	}
	return d
}
