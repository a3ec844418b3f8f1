package win

import (
	"image"
	"image/draw"
	"sync"

	"github.com/gogpu/compositor/event"
	"github.com/gogpu/compositor/region"
)

// Window is an in-process Toplevel. All methods are safe for concurrent
// use. A Window belongs to the Space that created it.
type Window struct {
	space *Space
	id    uint64
	kind  Kind

	mu            sync.Mutex
	caption       string
	frame         image.Rectangle
	shape         region.Region // only used when hasShape
	hasShape      bool
	opaque        region.Region
	hasOpaque     bool
	opacity       float64
	hasAlpha      bool
	scale         float64
	decoration    Decoration
	hasDecoration bool
	shadow        Shadow
	hasShadow     bool
	state         State
	desktop       int // 0 is every desktop
	content       *image.RGBA
	children      []*Window
	parent        *Window
	repaints      region.Region
	refs          int
}

var _ Toplevel = (*Window)(nil)

func (w *Window) ID() uint64 { return w.id }

func (w *Window) Kind() Kind { return w.kind }

func (w *Window) Caption() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.caption
}

// Geometry returns the frame rectangle.
func (w *Window) Geometry() image.Rectangle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frame
}

// RenderGeometry returns the client area: the frame minus decoration
// borders.
func (w *Window) RenderGeometry() image.Rectangle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.renderGeometryLocked()
}

func (w *Window) renderGeometryLocked() image.Rectangle {
	if !w.hasDecoration {
		return w.frame
	}
	return w.decoration.ClientRect(w.frame.Size()).Add(w.frame.Min)
}

func (w *Window) ContentRegion() region.Region {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.contentRegionLocked()
}

func (w *Window) contentRegionLocked() region.Region {
	full := image.Rectangle{Max: w.renderGeometryLocked().Size()}
	if w.hasShape {
		return w.shape.IntersectRect(full)
	}
	return region.Rect(full)
}

// OpaqueRegion returns the declared opaque region. Windows without an
// alpha channel are opaque over their whole content.
func (w *Window) OpaqueRegion() region.Region {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.hasAlpha {
		return w.contentRegionLocked()
	}
	if w.hasOpaque {
		return w.opaque.Intersect(w.contentRegionLocked())
	}
	return region.Region{}
}

func (w *Window) Opacity() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.opacity
}

func (w *Window) HasAlpha() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hasAlpha
}

func (w *Window) BufferScale() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scale
}

func (w *Window) Decoration() (Decoration, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.decoration, w.hasDecoration
}

func (w *Window) Shadow() (Shadow, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.shadow, w.hasShadow
}

func (w *Window) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Desktop returns the window's desktop. Zero means every desktop.
func (w *Window) Desktop() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.desktop
}

func (w *Window) OnCurrentDesktop() bool {
	w.mu.Lock()
	d := w.desktop
	w.mu.Unlock()
	return d == 0 || w.space == nil || d == w.space.CurrentDesktop()
}

func (w *Window) AnnexedChildren() []Toplevel {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Toplevel, len(w.children))
	for i, c := range w.children {
		out[i] = c
	}
	return out
}

// Content returns the client pixels. Mutations never write into a
// returned image, so callers may keep it as a snapshot.
func (w *Window) Content() (image.Image, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.content == nil {
		return nil, false
	}
	return w.content, true
}

func (w *Window) Repaints() region.Region {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.repaints
}

func (w *Window) ResetRepaints() {
	w.mu.Lock()
	w.repaints = region.Region{}
	w.mu.Unlock()
}

func (w *Window) AddRepaint(r region.Region) {
	w.mu.Lock()
	w.repaints = w.repaints.Union(r.Add(w.frame.Min))
	w.mu.Unlock()
	w.space.wake()
}

func (w *Window) AddLayerRepaint(r region.Region) {
	w.mu.Lock()
	w.repaints = w.repaints.Union(r)
	w.mu.Unlock()
	w.space.wake()
}

// Ref adds a remnant reference.
func (w *Window) Ref() {
	w.mu.Lock()
	w.refs++
	w.mu.Unlock()
}

// Unref drops a remnant reference. When the last reference of a deleted
// window goes away it leaves the stacking order.
func (w *Window) Unref() {
	w.mu.Lock()
	if w.refs > 0 {
		w.refs--
	}
	gone := w.refs == 0 && w.state.Has(Deleted)
	w.mu.Unlock()
	if gone {
		w.space.remove(w)
	}
}

// RefCount returns the number of remnant references.
func (w *Window) RefCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refs
}

// Mutators. Each one records the change and notifies the scene.

// SetCaption changes the window title shown in the decoration.
func (w *Window) SetCaption(s string) {
	w.mu.Lock()
	w.caption = s
	w.decoration.Title = s
	w.mu.Unlock()
	w.emit(event.Event{Kind: event.DecorationChanged})
}

// SetGeometry moves or resizes the frame. A resize reallocates the
// content, so the client must redraw.
func (w *Window) SetGeometry(r image.Rectangle) {
	w.mu.Lock()
	old := w.frame
	if old == r {
		w.mu.Unlock()
		return
	}
	w.frame = r
	resized := old.Size() != r.Size()
	if resized && w.content != nil {
		w.reallocLocked()
	}
	w.mu.Unlock()

	// Geometry observers must find the old content as the previous buffer.
	if resized {
		w.emit(event.Event{Kind: event.ContentStale})
	}
	w.emit(event.Event{Kind: event.GeometryChanged, Old: old})
}

func (w *Window) reallocLocked() {
	size := w.renderGeometryLocked().Size()
	sx := int(float64(size.X) * w.scale)
	sy := int(float64(size.Y) * w.scale)
	next := image.NewRGBA(image.Rect(0, 0, sx, sy))
	draw.Draw(next, next.Bounds(), w.content, image.Point{}, draw.Src)
	w.content = next
}

// Move places the frame at p without resizing.
func (w *Window) Move(p image.Point) {
	w.SetGeometry(w.Geometry().Sub(w.Geometry().Min).Add(p))
}

// SetContent replaces the client pixels and damages the whole buffer.
func (w *Window) SetContent(img image.Image) {
	w.mu.Lock()
	size := w.renderGeometryLocked().Size()
	sx := int(float64(size.X) * w.scale)
	sy := int(float64(size.Y) * w.scale)
	dst := image.NewRGBA(image.Rect(0, 0, sx, sy))
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	mapped := w.content != nil
	w.content = dst
	w.mu.Unlock()

	if !mapped {
		w.emit(event.Event{Kind: event.ContentStale})
	}
	w.emit(event.Event{Kind: event.ContentDamaged, Region: region.Rect(image.Rectangle{Max: size})})
}

// Paint lets the client draw into a copy of its buffer and damages r,
// given relative to the render geometry origin. It is a no-op while
// unmapped.
func (w *Window) Paint(r image.Rectangle, fn func(dst *image.RGBA)) {
	w.mu.Lock()
	if w.content == nil {
		w.mu.Unlock()
		return
	}
	next := image.NewRGBA(w.content.Rect)
	copy(next.Pix, w.content.Pix)
	fn(next)
	w.content = next
	w.mu.Unlock()
	w.emit(event.Event{Kind: event.ContentDamaged, Region: region.Rect(r)})
}

// Unmap drops the client content.
func (w *Window) Unmap() {
	w.mu.Lock()
	w.content = nil
	w.mu.Unlock()
	w.emit(event.Event{Kind: event.ContentStale})
}

// SetShape restricts the visible buffer to r, relative to the render
// origin. An empty r restores the full rectangle.
func (w *Window) SetShape(r region.Region) {
	w.mu.Lock()
	w.shape, w.hasShape = r, !r.IsEmpty()
	w.mu.Unlock()
	w.emit(event.Event{Kind: event.ShapeChanged})
}

// SetOpaqueRegion declares the part of an alpha buffer that is opaque.
func (w *Window) SetOpaqueRegion(r region.Region) {
	w.mu.Lock()
	w.opaque, w.hasOpaque = r, true
	w.mu.Unlock()
	w.emit(event.Event{Kind: event.ShapeChanged})
}

func (w *Window) SetOpacity(o float64) {
	w.mu.Lock()
	w.opacity = min(max(o, 0), 1)
	w.mu.Unlock()
	w.emit(event.Event{Kind: event.OpacityChanged})
}

func (w *Window) SetHasAlpha(v bool) {
	w.mu.Lock()
	w.hasAlpha = v
	w.mu.Unlock()
	w.emit(event.Event{Kind: event.ShapeChanged})
}

func (w *Window) SetBufferScale(s float64) {
	if s <= 0 {
		s = 1
	}
	w.mu.Lock()
	w.scale = s
	if w.content != nil {
		w.reallocLocked()
	}
	w.mu.Unlock()
	w.emit(event.Event{Kind: event.ContentStale})
}

// SetDecoration installs or removes server-side borders. The frame keeps
// its size, so the client area changes.
func (w *Window) SetDecoration(d Decoration, ok bool) {
	w.mu.Lock()
	old := w.frame
	w.decoration, w.hasDecoration = d, ok
	if ok && d.Title == "" {
		w.decoration.Title = w.caption
	}
	if w.content != nil {
		w.reallocLocked()
	}
	w.mu.Unlock()
	w.emit(event.Event{Kind: event.DecorationChanged, Old: old})
	w.emit(event.Event{Kind: event.ContentStale})
}

func (w *Window) SetShadow(s Shadow, ok bool) {
	w.mu.Lock()
	old := w.frame
	w.shadow, w.hasShadow = s, ok
	w.mu.Unlock()
	w.emit(event.Event{Kind: event.ShadowChanged, Old: old})
}

// SetState sets or clears the flags in f.
func (w *Window) SetState(f State, on bool) {
	w.mu.Lock()
	prev := w.state
	if on {
		w.state |= f
	} else {
		w.state &^= f
	}
	changed := prev != w.state
	if f.Has(Active) && w.hasDecoration {
		w.decoration.Active = on
	}
	w.mu.Unlock()
	if changed {
		w.emit(event.Event{Kind: event.StateChanged})
	}
}

// SetDesktop places the window on desktop d. Zero means every desktop.
func (w *Window) SetDesktop(d int) {
	w.mu.Lock()
	w.desktop = d
	w.mu.Unlock()
	w.emit(event.Event{Kind: event.StateChanged})
}

// Annex makes child part of w. The child leaves the stacking order and is
// drawn with its parent.
func (w *Window) Annex(child *Window) {
	if child == w {
		return
	}
	child.mu.Lock()
	child.parent = w
	child.mu.Unlock()
	w.space.unstack(child)

	w.mu.Lock()
	w.children = append(w.children, child)
	w.mu.Unlock()
	w.emit(event.Event{Kind: event.ShapeChanged})
}

func (w *Window) emit(e event.Event) {
	e.Window = w.id
	w.space.push(e)
}
