// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package batch

import (
	"image"
	"slices"
)

// opaqueList collects opaque batches. Instances are drawn front to back
// after finalize.
type opaqueList struct {
	batches  []Batch
	current  int
	lookback int
	// largeArea is the item area above which only the last batch is
	// searched, so large occluders stay early in the draw order.
	largeArea int
}

func newOpaqueList(screen image.Point, lookback int) opaqueList {
	return opaqueList{
		current:   -1,
		lookback:  lookback,
		largeArea: screen.X * screen.Y / 4,
	}
}

func (l *opaqueList) batchFor(key Key, rect image.Rectangle) *Batch {
	if l.current < 0 || !l.batches[l.current].Key.IsCompatible(key) {
		selected := -1
		if rect.Dx()*rect.Dy() > l.largeArea {
			if n := len(l.batches); n > 0 && l.batches[n-1].Key.IsCompatible(key) {
				selected = n - 1
			}
		} else {
			for i := len(l.batches) - 1; i >= 0 && i >= len(l.batches)-l.lookback; i-- {
				if l.batches[i].Key.IsCompatible(key) {
					selected = i
					break
				}
			}
		}
		if selected < 0 {
			l.batches = append(l.batches, Batch{Key: key})
			selected = len(l.batches) - 1
		}
		l.current = selected
	}
	b := &l.batches[l.current]
	b.Key.Textures = b.Key.Textures.Combine(key.Textures)
	return b
}

func (l *opaqueList) finalize() {
	for i := range l.batches {
		slices.Reverse(l.batches[i].Instances)
	}
}

// alphaList collects blended batches in painter's order.
type alphaList struct {
	batches       []Batch
	itemRects     [][]image.Rectangle
	lookback      int
	breakAdvanced bool
}

func newAlphaList(lookback int, breakAdvanced bool) alphaList {
	return alphaList{lookback: lookback, breakAdvanced: breakAdvanced}
}

// batchFor searches the last lookback batches for a compatible key and
// stops at the first batch holding an item that overlaps rect.
func (l *alphaList) batchFor(key Key, rect image.Rectangle) *Batch {
	selected := -1
	if !key.Blend.IsAdvanced() || !l.breakAdvanced {
	search:
		for i := len(l.batches) - 1; i >= 0 && i >= len(l.batches)-l.lookback; i-- {
			if l.batches[i].Key.IsCompatible(key) {
				selected = i
				break
			}
			for _, r := range l.itemRects[i] {
				if r.Overlaps(rect) {
					break search
				}
			}
		}
	}
	if selected < 0 {
		l.batches = append(l.batches, Batch{Key: key})
		l.itemRects = append(l.itemRects, nil)
		selected = len(l.batches) - 1
	}
	l.itemRects[selected] = append(l.itemRects[selected], rect)
	b := &l.batches[selected]
	b.Key.Textures = b.Key.Textures.Combine(key.Textures)
	return b
}

// List routes instances to the opaque or alpha list by blend mode.
type List struct {
	opaque opaqueList
	alpha  alphaList
}

// NewList creates an empty list. screen sizes the large-primitive threshold
// of the opaque list.
func NewList(screen image.Point, lookback int, breakAdvanced bool) *List {
	return &List{
		opaque: newOpaqueList(screen, lookback),
		alpha:  newAlphaList(lookback, breakAdvanced),
	}
}

// Add appends inst under key. rect is the item's bounds in the target's
// raster space.
func (l *List) Add(key Key, rect image.Rectangle, inst Instance) {
	var b *Batch
	if key.Blend == BlendNone {
		b = l.opaque.batchFor(key, rect)
	} else {
		b = l.alpha.batchFor(key, rect)
	}
	b.Instances = append(b.Instances, inst)
}

// Finalize reverses opaque instances into front-to-back order and returns
// the opaque and alpha batches.
func (l *List) Finalize() (opaque, alpha []Batch) {
	l.opaque.finalize()
	return l.opaque.batches, l.alpha.batches
}
