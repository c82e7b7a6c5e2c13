// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package task

import (
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendertask/gpucache"
	"github.com/gogpu/rendertask/resource"
)

// TargetKind is the kind of render target a task writes to.
type TargetKind uint8

// Target kinds.
const (
	Color TargetKind = iota
	Alpha
)

// String implements fmt.Stringer.
func (k TargetKind) String() string {
	if k == Alpha {
		return "Alpha"
	}
	return "Color"
}

// PictureIndex identifies a picture in the scene's picture store.
type PictureIndex uint32

// SpatialNodeIndex identifies a node in the scene's spatial tree.
type SpatialNodeIndex uint32

// VisibilityMask selects the tiles of a picture cache a primitive is
// visible in. Bit i stands for the i-th dirty region.
type VisibilityMask uint64

// VisibleEverywhere matches every tile.
const VisibleEverywhere VisibilityMask = ^VisibilityMask(0)

// Intersects reports whether m and o share a bit.
func (m VisibilityMask) Intersects(o VisibilityMask) bool {
	return m&o != 0
}

// SideOffsets is an inset on each side of a rectangle.
type SideOffsets struct {
	Top, Right, Bottom, Left int
}

// Kind is the payload of a render task. The set of kinds is closed; every
// consumer must handle all of them and treat an unexpected kind as fatal.
type Kind interface {
	// TargetKind returns the kind of target the task renders into.
	TargetKind() TargetKind

	// Name returns a short name for logs.
	Name() string

	isKind()
}

// Picture composites the primitives of a picture into its task rect.
type Picture struct {
	PicIndex           PictureIndex
	CanMerge           bool
	ContentOrigin      image.Point
	SurfaceSpatialNode SpatialNodeIndex
	RasterSpatialNode  SpatialNodeIndex
	DevicePixelScale   float32
	VisMask            VisibilityMask
	UVRectHandle       gpucache.Handle
}

// BlurTask is the shared payload of both blur directions.
type BlurTask struct {
	StdDeviation float32
	Target       TargetKind
	BlurRegion   image.Point
	UVRectHandle gpucache.Handle
}

// VerticalBlur blurs its single child vertically.
type VerticalBlur struct{ BlurTask }

// HorizontalBlur blurs its single child horizontally.
type HorizontalBlur struct{ BlurTask }

// Scaling downscales either an image or its single child.
type Scaling struct {
	Target  TargetKind
	Image   *resource.ImageCacheKey
	Padding SideOffsets
}

// BlitSource is either an image or the output of another task.
type BlitSource struct {
	Image *resource.ImageCacheKey
	Task  ID
}

// ImageSource returns a blit source reading an image.
func ImageSource(key resource.ImageCacheKey) BlitSource {
	return BlitSource{Image: &key, Task: InvalidID}
}

// TaskSource returns a blit source reading a task's output.
func TaskSource(id ID) BlitSource {
	return BlitSource{Task: id}
}

// Blit copies a source rectangle into the task rect.
type Blit struct {
	Source  BlitSource
	Padding SideOffsets
}

// ClipItemKind is the kind of clip drawn into a mask.
type ClipItemKind uint8

// Clip item kinds.
const (
	ClipRectangle ClipItemKind = iota
	ClipImage
	ClipBoxShadow
)

// ClipItem is one clip contributing to a mask.
type ClipItem struct {
	Kind        ClipItemKind
	SpatialNode SpatialNodeIndex
	// Data holds the clip parameters in the GPU cache.
	Data *gpucache.Handle
	// Image is the mask image for ClipImage and the cached shadow mask for
	// ClipBoxShadow.
	Image resource.ImageRequest
	// Rect is the clip rect in local space.
	Rect image.Rectangle
}

// CacheMask renders the combined clip mask of a primitive.
type CacheMask struct {
	ActualRect       image.Rectangle
	RootSpatialNode  SpatialNodeIndex
	Clips            []ClipItem
	DevicePixelScale float32
}

// ClipRegion renders a single rounded-rect clip region.
type ClipRegion struct {
	ClipDataAddress gpucache.Address
	LocalPos        [2]float32
}

// Readback copies a rectangle of the framebuffer for later passes.
type Readback struct {
	Rect image.Rectangle
}

// BorderStyle is the style of one border side.
type BorderStyle int32

// Border styles.
const (
	BorderNone BorderStyle = iota
	BorderSolid
	BorderDouble
	BorderDotted
	BorderDashed
	BorderHidden
	BorderGroove
	BorderRidge
	BorderInset
	BorderOutset
)

// Border segment flag layout. Bits 8..15 and 16..23 hold the two side
// styles of a segment.
const (
	BorderStyleMask  int32 = 0x00FF_FF00
	BorderStyleSolid       = int32(BorderSolid)<<8 | int32(BorderSolid)<<16
)

// BorderInstance is one border segment.
type BorderInstance struct {
	TaskOrigin [2]float32
	LocalRect  [4]float32
	Color0     gputypes.Color
	Color1     gputypes.Color
	Flags      int32
	Widths     [2]float32
	Radius     [2]float32
	ClipParams [8]float32
}

// IsSolid reports whether both sides of the segment are solid.
func (b *BorderInstance) IsSolid() bool {
	return b.Flags&BorderStyleMask == BorderStyleSolid
}

// Border renders border segments into the texture cache.
type Border struct {
	Instances []BorderInstance
}

// LineStyle is the style of a text decoration line.
type LineStyle uint8

// Line styles.
const (
	LineSolid LineStyle = iota
	LineDotted
	LineDashed
	LineWavy
)

// Orientation of a line or gradient.
type Orientation uint8

// Orientations.
const (
	Horizontal Orientation = iota
	Vertical
)

// LineDecoration renders one repeating segment of a decoration line.
type LineDecoration struct {
	Style             LineStyle
	Orientation       Orientation
	WavyLineThickness float32
	LocalSize         [2]float32
}

// GradientStopCount is the number of stops of a cached fast-path gradient.
const GradientStopCount = 4

// Gradient renders a simple axis-aligned gradient.
type Gradient struct {
	Stops       [GradientStopCount]float32
	Colors      [GradientStopCount]gputypes.Color
	Orientation Orientation
	Start       float32
	End         float32
}

// SvgFilterOp is an SVG filter primitive.
type SvgFilterOp uint8

// SVG filter primitives.
const (
	SvgBlend SvgFilterOp = iota
	SvgFlood
	SvgLinearToSrgb
	SvgSrgbToLinear
	SvgOpacity
	SvgColorMatrix
	SvgDropShadow
	SvgOffset
	SvgComponentTransfer
	SvgIdentity
	SvgComposite
)

// Inputs returns how many input tasks op reads.
func (op SvgFilterOp) Inputs() int {
	switch op {
	case SvgFlood:
		return 0
	case SvgBlend, SvgComposite:
		return 2
	default:
		return 1
	}
}

// SvgFilterInfo is the operation and parameters of a filter stage.
type SvgFilterInfo struct {
	Op         SvgFilterOp
	GenericInt int32
	Values     []float32
}

// SvgFilter runs one SVG filter primitive over its children.
type SvgFilter struct {
	Info         SvgFilterInfo
	ExtraHandle  gpucache.Handle
	UVRectHandle gpucache.Handle
}

// TargetKind implements Kind.
func (*Picture) TargetKind() TargetKind { return Color }

// TargetKind implements Kind.
func (k *VerticalBlur) TargetKind() TargetKind { return k.Target }

// TargetKind implements Kind.
func (k *HorizontalBlur) TargetKind() TargetKind { return k.Target }

// TargetKind implements Kind.
func (k *Scaling) TargetKind() TargetKind { return k.Target }

// TargetKind implements Kind.
func (*Blit) TargetKind() TargetKind { return Color }

// TargetKind implements Kind.
func (*CacheMask) TargetKind() TargetKind { return Alpha }

// TargetKind implements Kind.
func (*ClipRegion) TargetKind() TargetKind { return Alpha }

// TargetKind implements Kind.
func (*Readback) TargetKind() TargetKind { return Color }

// TargetKind implements Kind.
func (*Border) TargetKind() TargetKind { return Color }

// TargetKind implements Kind.
func (*LineDecoration) TargetKind() TargetKind { return Color }

// TargetKind implements Kind.
func (*Gradient) TargetKind() TargetKind { return Color }

// TargetKind implements Kind.
func (*SvgFilter) TargetKind() TargetKind { return Color }

// Name implements Kind.
func (*Picture) Name() string { return "Picture" }

// Name implements Kind.
func (*VerticalBlur) Name() string { return "VerticalBlur" }

// Name implements Kind.
func (*HorizontalBlur) Name() string { return "HorizontalBlur" }

// Name implements Kind.
func (*Scaling) Name() string { return "Scaling" }

// Name implements Kind.
func (*Blit) Name() string { return "Blit" }

// Name implements Kind.
func (*CacheMask) Name() string { return "CacheMask" }

// Name implements Kind.
func (*ClipRegion) Name() string { return "ClipRegion" }

// Name implements Kind.
func (*Readback) Name() string { return "Readback" }

// Name implements Kind.
func (*Border) Name() string { return "Border" }

// Name implements Kind.
func (*LineDecoration) Name() string { return "LineDecoration" }

// Name implements Kind.
func (*Gradient) Name() string { return "Gradient" }

// Name implements Kind.
func (*SvgFilter) Name() string { return "SvgFilter" }

func (*Picture) isKind() {}
func (*VerticalBlur) isKind() {}
func (*HorizontalBlur) isKind() {}
func (*Scaling) isKind() {}
func (*Blit) isKind() {}
func (*CacheMask) isKind() {}
func (*ClipRegion) isKind() {}
func (*Readback) isKind() {}
func (*Border) isKind() {}
func (*LineDecoration) isKind() {}
func (*Gradient) isKind() {}
func (*SvgFilter) isKind() {}
