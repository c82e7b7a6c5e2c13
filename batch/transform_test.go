// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package batch

import (
	"image"
	"math"
	"testing"
)

func TestMatrix_Invert(t *testing.T) {
	m := Translate(10, 20).Multiply(Scale(2, 4))
	got := m.Multiply(m.Invert())
	if !got.IsIdentity() {
		t.Errorf("m * m^-1 = %+v, want identity", got)
	}
	if !(Matrix{}).Invert().IsIdentity() {
		t.Error("singular matrix should invert to identity")
	}
}

func TestMatrix_TransformRect(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		want image.Rectangle
	}{
		{"identity", Identity(), image.Rect(0, 0, 10, 20)},
		{"translate", Translate(5, -5), image.Rect(5, -5, 15, 15)},
		{"scale", Scale(0.5, 0.5), image.Rect(0, 0, 5, 10)},
		{"rotate 90", Rotate(math.Pi / 2), image.Rect(-20, 0, 0, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.TransformRect(image.Rect(0, 0, 10, 20)); got != tt.want {
				t.Errorf("TransformRect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransformPalette_GetID(t *testing.T) {
	tree := SpatialList{Identity(), Translate(100, 0), Rotate(0.3)}
	p := NewTransformPalette(tree)

	if id := p.GetID(1, 1); id != IdentityTransformID {
		t.Errorf("same node id = %d, want identity", id)
	}

	a := p.GetID(1, 0)
	if a.Index() != 1 || !a.IsAxisAligned() {
		t.Errorf("translation id = %#x", a)
	}
	if again := p.GetID(1, 0); again != a {
		t.Errorf("palette did not deduplicate: %#x vs %#x", again, a)
	}

	r := p.GetID(2, 0)
	if r.Index() != 2 || r.IsAxisAligned() {
		t.Errorf("rotation id = %#x", r)
	}
	if n := len(p.Transforms()); n != 3 {
		t.Errorf("palette size = %d, want 3", n)
	}

	rel := p.Relative(1, 0)
	if rel.C != 100 {
		t.Errorf("relative translation = %v, want 100", rel.C)
	}
}
