package scene

import (
	"image"

	"github.com/gogpu/compositor/effect"
	"github.com/gogpu/compositor/internal/logging"
	"github.com/gogpu/compositor/quad"
	"github.com/gogpu/compositor/region"
	"github.com/gogpu/compositor/win"
)

// Window is the render state of one logical window: its buffers, quad
// cache and shadow. It is only touched from the frame goroutine.
type Window struct {
	scene *Scene
	top   win.Toplevel
	id    uint32
	ew    *effectWindow

	current      Buffer
	previous     Buffer
	previousRefs int

	disabled effect.DisableReason

	quads      quad.List
	quadsValid bool
	building   bool

	shadow *Shadow

	// parent is set for annexed children drawn as part of another window.
	parent   *Window
	children []*Window
}

func newWindow(s *Scene, top win.Toplevel, id uint32) *Window {
	w := &Window{scene: s, top: top, id: id}
	w.ew = &effectWindow{w: w, data: make(map[effect.DataRole]any)}
	w.updateShadow()
	return w
}

// ID returns the scene id. Content quads carry it so backends can find
// the buffer a quad samples from.
func (w *Window) ID() uint32 { return w.id }

func (w *Window) Toplevel() win.Toplevel { return w.top }

// EffectWindow returns the façade effects see for w.
func (w *Window) EffectWindow() effect.Window { return w.ew }

// Parent returns the window w is annexed to, or nil.
func (w *Window) Parent() *Window { return w.parent }

func (w *Window) Pos() image.Point { return w.top.Geometry().Min }

func (w *Window) Geometry() image.Rectangle { return w.top.Geometry() }

// ExpandedGeometry returns the frame plus its shadow in screen
// coordinates.
func (w *Window) ExpandedGeometry() image.Rectangle {
	g := w.top.Geometry()
	if w.shadow == nil || w.shadow.IsDropped() {
		return g
	}
	return g.Union(w.shadow.Region().Bounds().Add(g.Min))
}

// QuadSource returns the window whose buffer a content quad with the
// given id samples: w itself or one of its annexed children.
func (w *Window) QuadSource(id int) *Window {
	if id == int(w.id) {
		return w
	}
	for _, c := range w.children {
		if s := c.QuadSource(id); s != nil {
			return s
		}
	}
	return nil
}

// Shadow returns the window's shadow, or nil.
func (w *Window) Shadow() *Shadow { return w.shadow }

func (w *Window) updateShadow() {
	s, ok := w.top.Shadow()
	if !ok {
		w.shadow = nil
		return
	}
	w.shadow = NewShadow(s, w.top.Geometry().Size())
}

// DecorationShape returns the decoration area, the frame minus the client
// area, relative to the frame origin.
func (w *Window) DecorationShape() region.Region {
	d, ok := w.top.Decoration()
	if !ok {
		return region.Region{}
	}
	size := w.top.Geometry().Size()
	return region.Rect(image.Rectangle{Max: size}).SubtractRect(d.ClientRect(size))
}

// BufferOffset returns the position of the buffer relative to the frame.
func (w *Window) BufferOffset() image.Point {
	return w.top.RenderGeometry().Min.Sub(w.top.Geometry().Min)
}

// IsVisible reports whether the window would be shown without effects.
func (w *Window) IsVisible() bool {
	st := w.top.State()
	if st.Has(win.Deleted) || !w.top.OnCurrentDesktop() {
		return false
	}
	if st.Has(win.Managed) {
		return !st.Has(win.Minimized) && !st.Has(win.Hidden)
	}
	return true
}

// IsOpaque reports whether the window hides everything below it.
func (w *Window) IsOpaque() bool {
	return w.top.Opacity() == 1 && !w.top.HasAlpha()
}

func (w *Window) IsPaintingEnabled() bool { return w.disabled == 0 }

// ResetPaintingEnabled recomputes the disable reasons from the logical
// window. Effects may change them again during pre-paint.
func (w *Window) ResetPaintingEnabled() {
	w.disabled = 0
	st := w.top.State()
	if st.Has(win.Deleted) {
		w.disabled |= effect.DisabledByDeleted
	}
	if !w.top.OnCurrentDesktop() {
		w.disabled |= effect.DisabledByDesktop
	}
	if st.Has(win.Managed) {
		if st.Has(win.Minimized) {
			w.disabled |= effect.DisabledByMinimize
		}
		if st.Has(win.Hidden) {
			w.disabled |= effect.DisabledUnspecified
		}
	}
}

func (w *Window) EnablePainting(r effect.DisableReason)  { w.disabled &^= r }
func (w *Window) DisablePainting(r effect.DisableReason) { w.disabled |= r }

// Buffers.

// Buffer returns the buffer to draw: the current one when valid, else the
// previous one, else nil.
func (w *Window) Buffer() Buffer {
	if w.current != nil && w.current.IsValid() {
		return w.current
	}
	if w.previous != nil && w.previous.IsValid() {
		return w.previous
	}
	return nil
}

// PreviousBuffer returns the discarded buffer kept for effects, or nil.
func (w *Window) PreviousBuffer() Buffer {
	if w.previous != nil && w.previous.IsValid() {
		return w.previous
	}
	return nil
}

// UpdateBuffer makes sure the window has a current buffer and tries to
// make it valid.
func (w *Window) UpdateBuffer() {
	if w.current == nil {
		b := w.scene.backend.CreateBuffer(w)
		if b == nil {
			return
		}
		w.scene.backend.SetupBuffer(b)
		w.current = b
	}
	if w.current.IsValid() {
		return
	}
	if !w.current.Create() {
		logging.Logger().Debug("scene: buffer not ready", "window", w.id)
		return
	}
	// Nobody holds the previous buffer, so the fresh one replaces it.
	if w.previous != nil && w.previousRefs == 0 {
		w.previous.Release()
		w.previous = nil
	}
	if w.parent != nil {
		w.parent.InvalidateQuadsCache()
	}
}

// DiscardBuffer drops the current buffer because its content no longer
// matches the window. A valid buffer is kept as the previous buffer;
// references held on the buffer it replaces carry over to it.
func (w *Window) DiscardBuffer() {
	if w.current == nil {
		return
	}
	if !w.current.IsValid() {
		w.current.Release()
		w.current = nil
		return
	}
	if w.previous != nil {
		w.previous.Release()
	}
	w.previous = w.current
	w.previous.MarkDiscarded()
	w.current = nil
}

// ReferencePreviousBuffer keeps the previous buffer alive until the
// matching UnreferencePreviousBuffer.
func (w *Window) ReferencePreviousBuffer() {
	if w.previous != nil && w.previous.IsDiscarded() {
		w.previousRefs++
	}
}

func (w *Window) UnreferencePreviousBuffer() {
	if w.previous == nil || !w.previous.IsDiscarded() {
		return
	}
	if w.previousRefs > 0 {
		w.previousRefs--
	}
	if w.previousRefs == 0 {
		w.previous.Release()
		w.previous = nil
	}
}

func (w *Window) release() {
	if w.current != nil {
		w.current.Release()
		w.current = nil
	}
	if w.previous != nil {
		w.previous.Release()
		w.previous = nil
	}
	w.previousRefs = 0
}

// Quads.

// BuildQuads returns the window's quads. The cached list is returned
// unless force is set or the cache was invalidated.
//
// A BuildQuads for this window made from inside its own effect hooks gets
// the base quads only and leaves the cache alone.
func (w *Window) BuildQuads(force bool) quad.List {
	if w.quadsValid && !force {
		return w.quads.Clone()
	}
	quads := w.baseQuads()
	if w.building {
		logging.Logger().Debug("scene: nested buildQuads ignored", "window", w.id)
		return quads
	}
	w.building = true
	defer func() { w.building = false }()

	w.scene.effects.BuildQuads(w.ew, &quads)
	w.quads, w.quadsValid = quads.Clone(), true
	return quads
}

func (w *Window) InvalidateQuadsCache() {
	w.quads, w.quadsValid = nil, false
}
