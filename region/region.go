// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package region implements sets of non-overlapping integer rectangles.
//
// A Region is stored in y-x banded form: rectangles are sorted by their top
// edge and then by their left edge, rectangles in one band share the same
// vertical extent, horizontally touching spans inside a band are merged and
// vertically touching bands with identical spans are merged. The form is
// canonical, so two regions covering the same pixels compare equal.
//
// Regions are immutable values. Every operation returns a new Region and
// never modifies its operands.
package region

import (
	"fmt"
	"image"
	"math"
	"slices"
	"strings"
)

const (
	infiniteMin = -(1 << 30)
	infiniteMax = 1 << 30
)

// infiniteRect is the sentinel used for "paint everything" regions.
var infiniteRect = image.Rect(infiniteMin, infiniteMin, infiniteMax, infiniteMax)

// Region is a minimal set of non-overlapping rectangles.
// The zero value is the empty region.
type Region struct {
	rects []image.Rectangle
}

// New returns the union of the given rectangles.
func New(rects ...image.Rectangle) Region {
	var r Region
	for _, rc := range rects {
		r = r.UnionRect(rc)
	}
	return r
}

// Rect returns a region covering exactly rc.
func Rect(rc image.Rectangle) Region {
	rc = rc.Canon()
	if rc.Empty() {
		return Region{}
	}
	return Region{rects: []image.Rectangle{rc}}
}

// Infinite returns the sentinel region that covers every reachable pixel.
// Painters use it when damage math is meaningless, e.g. under transforms.
func Infinite() Region {
	return Region{rects: []image.Rectangle{infiniteRect}}
}

// IsInfinite reports whether r is the infinite sentinel.
func (r Region) IsInfinite() bool {
	return len(r.rects) == 1 && r.rects[0] == infiniteRect
}

// IsEmpty reports whether r covers no pixels.
func (r Region) IsEmpty() bool {
	return len(r.rects) == 0
}

// Len returns the number of rectangles in r.
func (r Region) Len() int {
	return len(r.rects)
}

// Rects returns a copy of the rectangles of r in banded order.
func (r Region) Rects() []image.Rectangle {
	return slices.Clone(r.rects)
}

// Bounds returns the smallest rectangle containing r.
func (r Region) Bounds() image.Rectangle {
	var b image.Rectangle
	for _, rc := range r.rects {
		b = b.Union(rc)
	}
	return b
}

// Area returns the number of pixels covered by r.
func (r Region) Area() int64 {
	var a int64
	for _, rc := range r.rects {
		a += int64(rc.Dx()) * int64(rc.Dy())
	}
	return a
}

// Equal reports whether r and o cover the same pixels.
func (r Region) Equal(o Region) bool {
	return slices.Equal(r.rects, o.rects)
}

// Contains reports whether p lies inside r.
func (r Region) Contains(p image.Point) bool {
	for _, rc := range r.rects {
		if p.In(rc) {
			return true
		}
	}
	return false
}

// ContainsRect reports whether rc is entirely covered by r.
func (r Region) ContainsRect(rc image.Rectangle) bool {
	return Rect(rc).Subtract(r).IsEmpty()
}

// Intersects reports whether r and o share at least one pixel.
func (r Region) Intersects(o Region) bool {
	for _, a := range r.rects {
		for _, b := range o.rects {
			if a.Overlaps(b) {
				return true
			}
		}
	}
	return false
}

// Union returns r ∪ o.
func (r Region) Union(o Region) Region {
	switch {
	case o.IsEmpty():
		return r
	case r.IsEmpty():
		return o
	case r.IsInfinite() || o.IsInfinite():
		return Infinite()
	}
	return combine(r, o, func(a, b bool) bool { return a || b })
}

// UnionRect returns r ∪ rc.
func (r Region) UnionRect(rc image.Rectangle) Region {
	return r.Union(Rect(rc))
}

// Intersect returns r ∩ o.
func (r Region) Intersect(o Region) Region {
	if r.IsEmpty() || o.IsEmpty() {
		return Region{}
	}
	if r.IsInfinite() {
		return o
	}
	if o.IsInfinite() {
		return r
	}
	return combine(r, o, func(a, b bool) bool { return a && b })
}

// IntersectRect returns r ∩ rc.
func (r Region) IntersectRect(rc image.Rectangle) Region {
	return r.Intersect(Rect(rc))
}

// Subtract returns r minus o.
func (r Region) Subtract(o Region) Region {
	if r.IsEmpty() || o.IsEmpty() {
		return r
	}
	return combine(r, o, func(a, b bool) bool { return a && !b })
}

// SubtractRect returns r minus rc.
func (r Region) SubtractRect(rc image.Rectangle) Region {
	return r.Subtract(Rect(rc))
}

// Xor returns the pixels covered by exactly one of r and o.
func (r Region) Xor(o Region) Region {
	return combine(r, o, func(a, b bool) bool { return a != b })
}

// Translate returns r shifted by (dx, dy). The infinite region is
// translation invariant.
func (r Region) Translate(dx, dy int) Region {
	if r.IsEmpty() || r.IsInfinite() || (dx == 0 && dy == 0) {
		return r
	}
	d := image.Pt(dx, dy)
	out := make([]image.Rectangle, len(r.rects))
	for i, rc := range r.rects {
		out[i] = rc.Add(d)
	}
	return Region{rects: out}
}

// Add returns r shifted by p.
func (r Region) Add(p image.Point) Region {
	return r.Translate(p.X, p.Y)
}

// Scale returns r with every coordinate multiplied by s, rounding outwards.
func (r Region) Scale(s float64) Region {
	if s == 1 || r.IsEmpty() || r.IsInfinite() {
		return r
	}
	var out Region
	for _, rc := range r.rects {
		out = out.UnionRect(scaleRect(rc, s))
	}
	return out
}

// String renders r for logs and test failures.
func (r Region) String() string {
	if r.IsEmpty() {
		return "{}"
	}
	if r.IsInfinite() {
		return "{infinite}"
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for i, rc := range r.rects {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d,%d %dx%d", rc.Min.X, rc.Min.Y, rc.Dx(), rc.Dy())
	}
	sb.WriteByte('}')
	return sb.String()
}

func scaleRect(rc image.Rectangle, s float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(float64(rc.Min.X)*s)), int(math.Floor(float64(rc.Min.Y)*s)),
		int(math.Ceil(float64(rc.Max.X)*s)), int(math.Ceil(float64(rc.Max.Y)*s)),
	)
}
