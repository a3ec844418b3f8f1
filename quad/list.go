package quad

import (
	"image"
	"math"
	"slices"
)

// List is an ordered set of quads making up one window.
type List []Quad

// Clone returns an independent copy of l.
func (l List) Clone() List {
	return slices.Clone(l)
}

// Filter returns the quads of type t.
func (l List) Filter(t Type) List {
	var out List
	for _, q := range l {
		if q.Type == t {
			out = append(out, q)
		}
	}
	return out
}

// Without returns the quads that are not of type t.
func (l List) Without(t Type) List {
	var out List
	for _, q := range l {
		if q.Type != t {
			out = append(out, q)
		}
	}
	return out
}

// IsTransformed reports whether any quad has been moved off its axis
// aligned shape.
func (l List) IsTransformed() bool {
	return slices.ContainsFunc(l, Quad.IsTransformed)
}

// Translate returns a copy of l moved by (dx, dy).
func (l List) Translate(dx, dy float64) List {
	out := make(List, len(l))
	for i, q := range l {
		out[i] = q.Translate(dx, dy)
	}
	return out
}

// Bounds returns the integer rectangle enclosing every quad.
func (l List) Bounds() image.Rectangle {
	var b image.Rectangle
	for _, q := range l {
		b = b.Union(q.Bounds())
	}
	return b
}

// MakeGrid splits every quad into cells no larger than maxSize, aligned to
// a maxSize grid anchored at the list's top-left corner. Transformed lists
// are returned unchanged.
func (l List) MakeGrid(maxSize int) List {
	if len(l) == 0 || maxSize <= 0 || l.IsTransformed() {
		return l.Clone()
	}
	left, top := math.Inf(1), math.Inf(1)
	for _, q := range l {
		left = min(left, q.Left())
		top = min(top, q.Top())
	}
	step := float64(maxSize)

	var out List
	for _, q := range l {
		ql, qt, qr, qb := q.Left(), q.Top(), q.Right(), q.Bottom()
		for y := top + math.Floor((qt-top)/step)*step; y < qb; y += step {
			for x := left + math.Floor((ql-left)/step)*step; x < qr; x += step {
				out = append(out, q.MakeSubQuad(
					max(x, ql), max(y, qt),
					min(x+step, qr), min(y+step, qb),
				))
			}
		}
	}
	return out
}

// MakeRegularGrid splits the bounding box of the list into xSubdivisions by
// ySubdivisions cells and keeps the parts of every quad that fall in each
// cell. Transformed lists are returned unchanged.
func (l List) MakeRegularGrid(xSubdivisions, ySubdivisions int) List {
	if len(l) == 0 || xSubdivisions <= 0 || ySubdivisions <= 0 || l.IsTransformed() {
		return l.Clone()
	}
	left, top := math.Inf(1), math.Inf(1)
	right, bottom := math.Inf(-1), math.Inf(-1)
	for _, q := range l {
		left = min(left, q.Left())
		top = min(top, q.Top())
		right = max(right, q.Right())
		bottom = max(bottom, q.Bottom())
	}
	xStep := (right - left) / float64(xSubdivisions)
	yStep := (bottom - top) / float64(ySubdivisions)

	var out List
	for _, q := range l {
		ql, qt, qr, qb := q.Left(), q.Top(), q.Right(), q.Bottom()
		for j := range ySubdivisions {
			y0 := max(top+float64(j)*yStep, qt)
			y1 := min(top+float64(j+1)*yStep, qb)
			if y1 <= y0 {
				continue
			}
			for i := range xSubdivisions {
				x0 := max(left+float64(i)*xStep, ql)
				x1 := min(left+float64(i+1)*xStep, qr)
				if x1 <= x0 {
					continue
				}
				out = append(out, q.MakeSubQuad(x0, y0, x1, y1))
			}
		}
	}
	return out
}
