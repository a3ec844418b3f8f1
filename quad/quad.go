// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package quad describes window geometry as lists of textured quads.
//
// A window is drawn as a set of quads: one or more for its contents, four
// for its decoration, eight for its shadow and any number of quads added by
// effects. Each quad carries four vertices in window-local coordinates
// together with texture coordinates into the source the quad samples.
package quad

import (
	"image"
	"image/color"
	"math"
)

// Type identifies the source a quad samples from.
type Type int

// Built-in quad types. Effects allocate their own types starting at
// TypeEffectStart.
const (
	TypeInvalid Type = iota
	TypeContents
	TypeDecoration
	TypeShadow

	TypeEffectStart Type = 100
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeInvalid:
		return "invalid"
	case TypeContents:
		return "contents"
	case TypeDecoration:
		return "decoration"
	case TypeShadow:
		return "shadow"
	}
	if t >= TypeEffectStart {
		return "effect"
	}
	return "unknown"
}

// Vertex is one corner of a quad. X and Y are window-local positions, U and
// V are texture coordinates. The original position is kept so that effects
// that move vertices can still derive sub quads from untransformed geometry.
type Vertex struct {
	X, Y float64
	U, V float64

	ox, oy float64
}

// NewVertex returns a vertex at (x, y) sampling (u, v).
func NewVertex(x, y, u, v float64) Vertex {
	return Vertex{X: x, Y: y, U: u, V: v, ox: x, oy: y}
}

// OriginalX returns the untransformed x position.
func (v Vertex) OriginalX() float64 { return v.ox }

// OriginalY returns the untransformed y position.
func (v Vertex) OriginalY() float64 { return v.oy }

// Quad is a textured quadrilateral. Vertices run top-left, top-right,
// bottom-right, bottom-left.
type Quad struct {
	Type Type
	// ID identifies the source within its type: the window id for content
	// quads, the element index for shadow quads.
	ID int
	// UVSwapped marks quads whose texture coordinates are transposed, as
	// used by the vertical decoration sprites.
	UVSwapped bool
	V         [4]Vertex
	// Fill is used by effect quads that draw a solid colour.
	Fill color.RGBA
}

// New returns an axis aligned quad covering r and sampling the texture
// rectangle src.
func New(t Type, id int, r image.Rectangle, src image.Rectangle) Quad {
	x0, y0 := float64(r.Min.X), float64(r.Min.Y)
	x1, y1 := float64(r.Max.X), float64(r.Max.Y)
	u0, v0 := float64(src.Min.X), float64(src.Min.Y)
	u1, v1 := float64(src.Max.X), float64(src.Max.Y)
	return Quad{
		Type: t,
		ID:   id,
		V: [4]Vertex{
			NewVertex(x0, y0, u0, v0),
			NewVertex(x1, y0, u1, v0),
			NewVertex(x1, y1, u1, v1),
			NewVertex(x0, y1, u0, v1),
		},
	}
}

// NewSwapped returns a UV-swapped quad covering r. The texture rectangle src
// is stored transposed, so a w×h quad samples an h×w area of src whose x
// axis follows the quad's y axis.
func NewSwapped(t Type, id int, r image.Rectangle, src image.Rectangle) Quad {
	x0, y0 := float64(r.Min.X), float64(r.Min.Y)
	x1, y1 := float64(r.Max.X), float64(r.Max.Y)
	u0, v0 := float64(src.Min.X), float64(src.Min.Y)
	u1, v1 := float64(src.Max.X), float64(src.Max.Y)
	return Quad{
		Type:      t,
		ID:        id,
		UVSwapped: true,
		V: [4]Vertex{
			NewVertex(x0, y0, u0, v0),
			NewVertex(x1, y0, u0, v1),
			NewVertex(x1, y1, u1, v1),
			NewVertex(x0, y1, u1, v0),
		},
	}
}

// Left returns the smallest x of the quad.
func (q Quad) Left() float64 {
	return min(q.V[0].X, q.V[1].X, q.V[2].X, q.V[3].X)
}

// Right returns the largest x of the quad.
func (q Quad) Right() float64 {
	return max(q.V[0].X, q.V[1].X, q.V[2].X, q.V[3].X)
}

// Top returns the smallest y of the quad.
func (q Quad) Top() float64 {
	return min(q.V[0].Y, q.V[1].Y, q.V[2].Y, q.V[3].Y)
}

// Bottom returns the largest y of the quad.
func (q Quad) Bottom() float64 {
	return max(q.V[0].Y, q.V[1].Y, q.V[2].Y, q.V[3].Y)
}

// Bounds returns the integer rectangle enclosing the quad.
func (q Quad) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(q.Left())), int(math.Floor(q.Top())),
		int(math.Ceil(q.Right())), int(math.Ceil(q.Bottom())),
	)
}

// IsTransformed reports whether the quad is no longer an axis aligned
// rectangle.
func (q Quad) IsTransformed() bool {
	return q.V[0].Y != q.V[1].Y || q.V[2].Y != q.V[3].Y ||
		q.V[0].X != q.V[3].X || q.V[1].X != q.V[2].X
}

// Translate moves the quad by (dx, dy). Original positions move too.
func (q Quad) Translate(dx, dy float64) Quad {
	for i := range q.V {
		q.V[i].X += dx
		q.V[i].Y += dy
		q.V[i].ox += dx
		q.V[i].oy += dy
	}
	return q
}

// MakeSubQuad returns the part of an untransformed quad between the given
// positions. Texture coordinates are interpolated from all four corners, so
// UV-swapped quads stay swapped.
func (q Quad) MakeSubQuad(x1, y1, x2, y2 float64) Quad {
	l, t, r, b := q.Left(), q.Top(), q.Right(), q.Bottom()
	w, h := r-l, b-t

	sub := q
	corners := [4][2]float64{{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}}
	for i, c := range corners {
		u, v := q.uvAt(c[0], c[1], l, t, w, h)
		sub.V[i] = NewVertex(c[0], c[1], u, v)
	}
	return sub
}

// uvAt bilinearly interpolates texture coordinates at (x, y) inside an axis
// aligned quad with the given bounds.
func (q Quad) uvAt(x, y, l, t, w, h float64) (float64, float64) {
	fx, fy := 0.0, 0.0
	if w > 0 {
		fx = (x - l) / w
	}
	if h > 0 {
		fy = (y - t) / h
	}
	lerp := func(a, b, f float64) float64 { return a + (b-a)*f }
	u := lerp(lerp(q.V[0].U, q.V[1].U, fx), lerp(q.V[3].U, q.V[2].U, fx), fy)
	v := lerp(lerp(q.V[0].V, q.V[1].V, fx), lerp(q.V[3].V, q.V[2].V, fx), fy)
	return u, v
}
