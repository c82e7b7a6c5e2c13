// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package batch

import (
	"image"
	"math"

	"github.com/gogpu/rendertask/task"
)

// Matrix is a 2D affine transform in row-major order:
//
//	| a  b  c |
//	| d  e  f |
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{A: 1, E: 1}
}

// Translate returns a translation.
func Translate(x, y float64) Matrix {
	return Matrix{A: 1, C: x, E: 1, F: y}
}

// Scale returns a scale.
func Scale(x, y float64) Matrix {
	return Matrix{A: x, E: y}
}

// Rotate returns a rotation by angle radians.
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{A: cos, B: -sin, D: sin, E: cos}
}

// Multiply returns m * o.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		A: m.A*o.A + m.B*o.D,
		B: m.A*o.B + m.B*o.E,
		C: m.A*o.C + m.B*o.F + m.C,
		D: m.D*o.A + m.E*o.D,
		E: m.D*o.B + m.E*o.E,
		F: m.D*o.C + m.E*o.F + m.F,
	}
}

// Invert returns the inverse, or the identity if m is singular.
func (m Matrix) Invert() Matrix {
	det := m.A*m.E - m.B*m.D
	if math.Abs(det) < 1e-10 {
		return Identity()
	}
	inv := 1 / det
	return Matrix{
		A: m.E * inv,
		B: -m.B * inv,
		C: (m.B*m.F - m.C*m.E) * inv,
		D: -m.D * inv,
		E: m.A * inv,
		F: (m.C*m.D - m.A*m.F) * inv,
	}
}

// IsIdentity reports whether m is the identity.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// IsAxisAligned reports whether m maps axis-aligned rects to axis-aligned
// rects.
func (m Matrix) IsAxisAligned() bool {
	return (m.B == 0 && m.D == 0) || (m.A == 0 && m.E == 0)
}

// TransformRect returns the integer bounding box of r after m.
func (m Matrix) TransformRect(r image.Rectangle) image.Rectangle {
	xs := [4]float64{float64(r.Min.X), float64(r.Max.X), float64(r.Min.X), float64(r.Max.X)}
	ys := [4]float64{float64(r.Min.Y), float64(r.Min.Y), float64(r.Max.Y), float64(r.Max.Y)}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range xs {
		x := m.A*xs[i] + m.B*ys[i] + m.C
		y := m.D*xs[i] + m.E*ys[i] + m.F
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	const eps = 1e-6
	return image.Rect(
		int(math.Floor(minX+eps)), int(math.Floor(minY+eps)),
		int(math.Ceil(maxX-eps)), int(math.Ceil(maxY-eps)),
	)
}

// SpatialTree resolves spatial nodes to world transforms.
type SpatialTree interface {
	WorldTransform(node task.SpatialNodeIndex) Matrix
}

// SpatialList is a SpatialTree backed by a slice of world transforms.
// Nodes past the end map to the identity.
type SpatialList []Matrix

// WorldTransform implements SpatialTree.
func (l SpatialList) WorldTransform(node task.SpatialNodeIndex) Matrix {
	if int(node) < len(l) {
		return l[node]
	}
	return Identity()
}

// TransformPaletteID indexes the transform palette. Bit 23 is set when the
// transform is not axis-aligned.
type TransformPaletteID uint32

const transformComplexBit = 1 << 23

// IdentityTransformID is the palette entry of the identity transform.
const IdentityTransformID TransformPaletteID = 0

// Index returns the palette index.
func (id TransformPaletteID) Index() int {
	return int(id &^ transformComplexBit)
}

// IsAxisAligned reports whether the transform is axis-aligned.
func (id TransformPaletteID) IsAxisAligned() bool {
	return id&transformComplexBit == 0
}

// TransformData is one palette entry.
type TransformData struct {
	Transform Matrix
	Inverse   Matrix
}

type transformKey struct {
	from, to task.SpatialNodeIndex
}

// TransformPalette deduplicates the relative transforms of one frame.
type TransformPalette struct {
	tree       SpatialTree
	transforms []TransformData
	ids        map[transformKey]TransformPaletteID
}

// NewTransformPalette creates a palette whose entry 0 is the identity.
func NewTransformPalette(tree SpatialTree) *TransformPalette {
	return &TransformPalette{
		tree:       tree,
		transforms: []TransformData{{Transform: Identity(), Inverse: Identity()}},
		ids:        make(map[transformKey]TransformPaletteID),
	}
}

// Relative returns the transform from node from into the space of node to.
func (p *TransformPalette) Relative(from, to task.SpatialNodeIndex) Matrix {
	if from == to {
		return Identity()
	}
	return p.tree.WorldTransform(to).Invert().Multiply(p.tree.WorldTransform(from))
}

// GetID returns the palette entry mapping from into to, adding it on first
// use.
func (p *TransformPalette) GetID(from, to task.SpatialNodeIndex) TransformPaletteID {
	if from == to {
		return IdentityTransformID
	}
	key := transformKey{from: from, to: to}
	if id, ok := p.ids[key]; ok {
		return id
	}
	m := p.Relative(from, to)
	id := TransformPaletteID(len(p.transforms)) //nolint:gosec // palette stays far below 2^23 entries
	if !m.IsAxisAligned() {
		id |= transformComplexBit
	}
	p.transforms = append(p.transforms, TransformData{Transform: m, Inverse: m.Invert()})
	p.ids[key] = id
	return id
}

// Transforms returns every palette entry in index order.
func (p *TransformPalette) Transforms() []TransformData {
	return p.transforms
}
