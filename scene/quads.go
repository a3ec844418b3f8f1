package scene

import (
	"image"
	"math"

	"github.com/gogpu/compositor/quad"
	"github.com/gogpu/compositor/region"
	"github.com/gogpu/compositor/win"
)

const atlasPadding = 1

// DecorationAtlas is the layout of a window's decoration texture. The four
// border strips are packed in rows separated by padding; left and right
// strips are stored transposed so every row is horizontal.
type DecorationAtlas struct {
	// Strips in frame coordinates.
	Left, Top, Right, Bottom image.Rectangle
	// Texture origin of each strip.
	LeftPos, TopPos, RightPos, BottomPos image.Point
	Size                                 image.Point
}

// NewDecorationAtlas lays out the borders of d around a frame of the
// given size.
func NewDecorationAtlas(d win.Decoration, frame image.Point) DecorationAtlas {
	var a DecorationAtlas
	a.Left, a.Top, a.Right, a.Bottom = d.Rects(frame)

	a.TopPos = image.Pt(atlasPadding, atlasPadding)
	a.BottomPos = image.Pt(atlasPadding, a.TopPos.Y+a.Top.Dy()+2*atlasPadding)
	a.LeftPos = image.Pt(atlasPadding, a.BottomPos.Y+a.Bottom.Dy()+2*atlasPadding)
	a.RightPos = image.Pt(atlasPadding, a.LeftPos.Y+a.Left.Dx()+2*atlasPadding)

	w := max(a.Top.Dx(), a.Bottom.Dx(), a.Left.Dy(), a.Right.Dy())
	a.Size = image.Pt(w+2*atlasPadding, a.RightPos.Y+a.Right.Dx()+atlasPadding)
	return a
}

// Quads returns decoration quads for the parts of shape inside each
// strip. shape is relative to the frame origin.
func (a DecorationAtlas) Quads(shape region.Region) quad.List {
	var list quad.List
	strips := [...]struct {
		rect    image.Rectangle
		pos     image.Point
		swapped bool
	}{
		{a.Left, a.LeftPos, true},
		{a.Top, a.TopPos, false},
		{a.Right, a.RightPos, true},
		{a.Bottom, a.BottomPos, false},
	}
	for _, s := range strips {
		if s.rect.Empty() {
			continue
		}
		for _, r := range shape.IntersectRect(s.rect).Rects() {
			t := r.Sub(s.rect.Min)
			if !s.swapped {
				list = append(list, quad.New(quad.TypeDecoration, 0, r, t.Add(s.pos)))
				continue
			}
			src := image.Rect(t.Min.Y+s.pos.X, t.Min.X+s.pos.Y, t.Max.Y+s.pos.X, t.Max.X+s.pos.Y)
			list = append(list, quad.NewSwapped(quad.TypeDecoration, 0, r, src))
		}
	}
	return list
}

// scaleRect maps a logical rectangle into buffer pixels.
func scaleRect(r image.Rectangle, s float64) image.Rectangle {
	if s == 1 {
		return r
	}
	f := func(v int) int { return int(math.Round(float64(v) * s)) }
	return image.Rect(f(r.Min.X), f(r.Min.Y), f(r.Max.X), f(r.Max.Y))
}

// contentsQuads returns one quad per rectangle of w's content region,
// placed at offset from the frame of the window the quads belong to,
// followed by the quads of annexed children.
func (w *Window) contentsQuads(id int, offset image.Point) quad.List {
	content := w.top.ContentRegion()
	if content.IsEmpty() {
		return nil
	}
	o := offset.Add(w.BufferOffset())
	scale := w.top.BufferScale()
	if scale <= 0 {
		scale = 1
	}

	quads := make(quad.List, 0, content.Len())
	for _, r := range content.Rects() {
		quads = append(quads, quad.New(quad.TypeContents, id, r.Add(o), scaleRect(r, scale)))
	}

	w.children = w.children[:0]
	deleted := w.top.State().Has(win.Deleted)
	for _, child := range w.top.AnnexedChildren() {
		if child.State().Has(win.Deleted) && !deleted {
			continue
		}
		cw := w.scene.windowFor(child)
		cw.parent = w
		w.children = append(w.children, cw)
		if b := cw.current; b == nil || !b.IsValid() {
			continue
		}
		off := offset.Add(child.Geometry().Min.Sub(w.top.Geometry().Min))
		quads = append(quads, cw.contentsQuads(int(cw.id), off)...)
	}
	return quads
}

// decorationQuads returns the quads drawing w's borders.
func (w *Window) decorationQuads() quad.List {
	d, ok := w.top.Decoration()
	if !ok || d.Margins.IsZero() {
		return nil
	}
	atlas := NewDecorationAtlas(d, w.top.Geometry().Size())
	return atlas.Quads(w.DecorationShape())
}

// baseQuads builds the quads without effect contributions.
func (w *Window) baseQuads() quad.List {
	quads := w.contentsQuads(int(w.id), image.Point{})
	quads = append(quads, w.decorationQuads()...)
	if w.shadow != nil {
		quads = append(quads, w.shadow.Quads()...)
	}
	return quads
}
