package scene

import (
	"image"

	"github.com/gogpu/compositor/quad"
	"github.com/gogpu/compositor/region"
	"github.com/gogpu/compositor/win"
)

// Shadow is the render side of a window's drop shadow.
type Shadow struct {
	src    win.Shadow
	region region.Region
	quads  quad.List
}

// NewShadow lays out s around a frame of the given size. A shadow whose
// elements do not fit the frame is dropped: it has an empty region and
// no quads.
func NewShadow(s win.Shadow, size image.Point) *Shadow {
	sh := &Shadow{src: s}
	off := s.Offset

	left := s.ElementSize(win.ShadowLeft)
	right := s.ElementSize(win.ShadowRight)
	top := s.ElementSize(win.ShadowTop)
	bottom := s.ElementSize(win.ShadowBottom)
	if left.X-off.Left > size.X || right.X-off.Right > size.X ||
		top.Y-off.Top > size.Y || bottom.Y-off.Bottom > size.Y {
		return sh
	}

	sh.region = region.New(
		image.Rect(0, -off.Top, size.X, 0),
		image.Rect(size.X, -off.Top, size.X+off.Right, size.Y+off.Bottom),
		image.Rect(0, size.Y, size.X, size.Y+off.Bottom),
		image.Rect(-off.Left, -off.Top, 0, size.Y+off.Bottom),
	)

	outer := image.Rect(-off.Left, -off.Top, size.X+off.Right, size.Y+off.Bottom)
	tl := s.ElementSize(win.ShadowTopLeft)
	tr := s.ElementSize(win.ShadowTopRight)
	br := s.ElementSize(win.ShadowBottomRight)
	bl := s.ElementSize(win.ShadowBottomLeft)

	rects := [win.ShadowElementCount]image.Rectangle{
		win.ShadowTopLeft:     image.Rect(outer.Min.X, outer.Min.Y, outer.Min.X+tl.X, outer.Min.Y+tl.Y),
		win.ShadowTop:         image.Rect(outer.Min.X+tl.X, outer.Min.Y, outer.Max.X-tr.X, outer.Min.Y+top.Y),
		win.ShadowTopRight:    image.Rect(outer.Max.X-tr.X, outer.Min.Y, outer.Max.X, outer.Min.Y+tr.Y),
		win.ShadowRight:       image.Rect(outer.Max.X-right.X, outer.Min.Y+tr.Y, outer.Max.X, outer.Max.Y-br.Y),
		win.ShadowBottomRight: image.Rect(outer.Max.X-br.X, outer.Max.Y-br.Y, outer.Max.X, outer.Max.Y),
		win.ShadowBottom:      image.Rect(outer.Min.X+bl.X, outer.Max.Y-bottom.Y, outer.Max.X-br.X, outer.Max.Y),
		win.ShadowBottomLeft:  image.Rect(outer.Min.X, outer.Max.Y-bl.Y, outer.Min.X+bl.X, outer.Max.Y),
		win.ShadowLeft:        image.Rect(outer.Min.X, outer.Min.Y+tl.Y, outer.Min.X+left.X, outer.Max.Y-bl.Y),
	}
	for i, r := range rects {
		if s.Elements[i] == nil || r.Empty() {
			continue
		}
		src := image.Rectangle{Max: s.ElementSize(i)}
		sh.quads = append(sh.quads, quad.New(quad.TypeShadow, i, r, src))
	}
	return sh
}

// Region returns the area the shadow covers, relative to the frame
// origin.
func (s *Shadow) Region() region.Region { return s.region }

// Quads returns the shadow quads. A quad's ID is the index of the
// element it draws.
func (s *Shadow) Quads() quad.List { return s.quads.Clone() }

// Element returns shadow element i.
func (s *Shadow) Element(i int) image.Image { return s.src.Elements[i] }

// Offset returns how far the shadow extends beyond the frame.
func (s *Shadow) Offset() win.Margins { return s.src.Offset }

// IsDropped reports whether the shadow was too large for its window.
func (s *Shadow) IsDropped() bool { return s.region.IsEmpty() }
