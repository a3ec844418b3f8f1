package software

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/compositor/region"
	"github.com/gogpu/compositor/scene"
)

// Buffer holds a copy of a window's client content.
type Buffer struct {
	scene.BufferBase
	owner    *Backend
	w        *scene.Window
	img      *image.RGBA
	released bool
}

var (
	_ scene.Buffer  = (*Buffer)(nil)
	_ scene.Updater = (*Buffer)(nil)
)

// Create copies the window content. It fails while the window has none.
func (b *Buffer) Create() bool {
	if b.released {
		return false
	}
	if b.img != nil {
		return true
	}
	content, ok := b.w.Toplevel().Content()
	if !ok {
		return false
	}
	r := content.Bounds()
	b.img = image.NewRGBA(image.Rectangle{Max: r.Size()})
	xdraw.Copy(b.img, image.Point{}, content, r, xdraw.Src, nil)
	return true
}

func (b *Buffer) IsValid() bool { return b.img != nil && !b.released }

// Update copies r, relative to the render origin, from the window
// content. A content size change recopies everything.
func (b *Buffer) Update(r region.Region) {
	if !b.IsValid() {
		return
	}
	content, ok := b.w.Toplevel().Content()
	if !ok {
		return
	}
	cb := content.Bounds()
	if cb.Size() != b.img.Rect.Size() {
		b.img = image.NewRGBA(image.Rectangle{Max: cb.Size()})
		xdraw.Copy(b.img, image.Point{}, content, cb, xdraw.Src, nil)
		return
	}
	scale := b.w.Toplevel().BufferScale()
	for _, rect := range r.Scale(scale).Rects() {
		rect = rect.Intersect(b.img.Rect)
		if rect.Empty() {
			continue
		}
		xdraw.Copy(b.img, rect.Min, content, rect.Add(cb.Min), xdraw.Src, nil)
	}
}

func (b *Buffer) Release() {
	if b.released {
		return
	}
	b.released = true
	b.img = nil
	if b.owner != nil {
		b.owner.forget(b)
	}
}

// Image returns the buffer pixels, or nil while invalid.
func (b *Buffer) Image() *image.RGBA { return b.img }
