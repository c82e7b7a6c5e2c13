// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package atlas

import "image"

// shelf is a horizontal strip of a slice.
type shelf struct {
	y      int // top edge
	height int // tallest item placed so far
	nextX  int // next free x on this shelf
}

// Slice is one layer of a texture array, packed with horizontal shelves.
//
// Items are placed left to right on the first shelf that has room; the last
// shelf may grow taller because nothing has been placed below it. When no
// shelf fits, a new shelf starts below the last one.
type Slice struct {
	size    image.Point
	shelves []shelf

	used       image.Rectangle
	usedArea   int
	allocCount int
	// reserved is the height of the top band held for fixed tasks.
	reserved int
}

func newSlice(size image.Point) *Slice {
	return &Slice{
		size:    size,
		shelves: make([]shelf, 0, 16),
	}
}

// Size returns the slice dimensions.
func (s *Slice) Size() image.Point {
	return s.size
}

// UsedRect returns the union of all rectangles allocated in the slice.
func (s *Slice) UsedRect() image.Rectangle {
	return s.used
}

// AllocCount returns the number of non-empty allocations in the slice.
func (s *Slice) AllocCount() int {
	return s.allocCount
}

// Utilization returns the fraction of the slice area handed out (0.0 to 1.0).
func (s *Slice) Utilization() float64 {
	total := s.size.X * s.size.Y
	if total <= 0 {
		return 0
	}
	return float64(s.usedArea) / float64(total)
}

// allocate places a w×h item. Empty requests always succeed at the origin
// and leave the slice untouched.
func (s *Slice) allocate(size image.Point) (image.Point, bool) {
	w, h := size.X, size.Y
	if w <= 0 || h <= 0 {
		return image.Point{}, true
	}
	if w > s.size.X || h > s.size.Y {
		return image.Point{}, false
	}

	last := len(s.shelves) - 1
	for i := range s.shelves {
		sh := &s.shelves[i]
		if sh.nextX+w > s.size.X {
			continue
		}
		if h > sh.height {
			if i != last || sh.y+h > s.size.Y {
				continue
			}
			sh.height = h
		}
		origin := image.Pt(sh.nextX, sh.y)
		sh.nextX += w
		s.record(origin, size)
		return origin, true
	}

	y := 0
	if last >= 0 {
		y = s.shelves[last].y + s.shelves[last].height
	}
	if y+h > s.size.Y {
		return image.Point{}, false
	}
	s.shelves = append(s.shelves, shelf{y: y, height: h, nextX: w})
	origin := image.Pt(0, y)
	s.record(origin, size)
	return origin, true
}

func (s *Slice) record(origin, size image.Point) {
	r := image.Rectangle{Min: origin, Max: origin.Add(size)}
	s.used = s.used.Union(r)
	s.usedArea += size.X * size.Y
	s.allocCount++
}

// reserve blocks a full-width band covering r at the top of the slice. The
// band can be created or grown while nothing else is allocated; afterwards
// only rects inside the band are accepted.
func (s *Slice) reserve(r image.Rectangle) bool {
	if r.Empty() {
		return true
	}
	if r.Min.X < 0 || r.Min.Y < 0 || r.Max.X > s.size.X || r.Max.Y > s.size.Y {
		return false
	}
	switch {
	case len(s.shelves) == 0:
		s.shelves = append(s.shelves, shelf{y: 0, height: r.Max.Y, nextX: s.size.X})
		s.reserved = r.Max.Y
		s.usedArea += r.Dx() * r.Dy()
	case len(s.shelves) == 1 && s.reserved > 0:
		if r.Max.Y > s.reserved {
			s.shelves[0].height = r.Max.Y
			s.reserved = r.Max.Y
		}
	case r.Max.Y > s.reserved:
		return false
	}
	s.used = s.used.Union(r)
	return true
}
