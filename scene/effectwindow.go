package scene

import (
	"image"
	"slices"

	"github.com/gogpu/compositor/effect"
	"github.com/gogpu/compositor/quad"
	"github.com/gogpu/compositor/region"
	"github.com/gogpu/compositor/win"
)

// effectWindow is the effect.Window of a render window.
type effectWindow struct {
	w      *Window
	data   map[effect.DataRole]any
	thumbs []effect.Thumbnail
}

var _ effect.Window = (*effectWindow)(nil)

func (e *effectWindow) state() win.State    { return e.w.top.State() }
func (e *effectWindow) ID() uint64          { return e.w.top.ID() }
func (e *effectWindow) Kind() win.Kind      { return e.w.top.Kind() }
func (e *effectWindow) Caption() string     { return e.w.top.Caption() }
func (e *effectWindow) Opacity() float64    { return e.w.top.Opacity() }
func (e *effectWindow) HasAlpha() bool      { return e.w.top.HasAlpha() }
func (e *effectWindow) Pos() image.Point    { return e.w.top.Geometry().Min }
func (e *effectWindow) Size() image.Point   { return e.w.top.Geometry().Size() }
func (e *effectWindow) IsDeleted() bool     { return e.state().Has(win.Deleted) }
func (e *effectWindow) IsMinimized() bool   { return e.state().Has(win.Minimized) }
func (e *effectWindow) IsFullscreen() bool  { return e.state().Has(win.Fullscreen) }
func (e *effectWindow) IsManaged() bool     { return e.state().Has(win.Managed) }
func (e *effectWindow) IsLockScreen() bool  { return e.state().Has(win.LockScreen) }
func (e *effectWindow) IsInputMethod() bool { return e.state().Has(win.InputMethod) }
func (e *effectWindow) IsActive() bool      { return e.state().Has(win.Active) }

func (e *effectWindow) Geometry() image.Rectangle         { return e.w.top.Geometry() }
func (e *effectWindow) ExpandedGeometry() image.Rectangle { return e.w.ExpandedGeometry() }

func (e *effectWindow) DecorationInnerRect() image.Rectangle { return e.w.top.RenderGeometry() }

func (e *effectWindow) HasDecoration() bool {
	_, ok := e.w.top.Decoration()
	return ok
}

func (e *effectWindow) IsOnCurrentDesktop() bool { return e.w.top.OnCurrentDesktop() }

func (e *effectWindow) IsPaintingEnabled() bool                { return e.w.IsPaintingEnabled() }
func (e *effectWindow) EnablePainting(r effect.DisableReason)  { e.w.EnablePainting(r) }
func (e *effectWindow) DisablePainting(r effect.DisableReason) { e.w.DisablePainting(r) }

func (e *effectWindow) AddRepaint(r image.Rectangle) {
	e.w.top.AddRepaint(region.Rect(r))
}

func (e *effectWindow) AddRepaintFull() {
	e.w.top.AddRepaint(region.Rect(e.w.ExpandedGeometry().Sub(e.Pos())))
}

func (e *effectWindow) AddLayerRepaint(r image.Rectangle) {
	e.w.top.AddLayerRepaint(region.Rect(r))
}

func (e *effectWindow) SetData(role effect.DataRole, v any) {
	if v == nil {
		delete(e.data, role)
		return
	}
	e.data[role] = v
}

func (e *effectWindow) Data(role effect.DataRole) any { return e.data[role] }

func (e *effectWindow) BuildQuads(force bool) quad.List { return e.w.BuildQuads(force) }

func (e *effectWindow) ReferencePreviousBuffer()   { e.w.ReferencePreviousBuffer() }
func (e *effectWindow) UnreferencePreviousBuffer() { e.w.UnreferencePreviousBuffer() }

func (e *effectWindow) RefWindow()   { e.w.top.Ref() }
func (e *effectWindow) UnrefWindow() { e.w.top.Unref() }

// AddThumbnail replaces any thumbnail of the same source.
func (e *effectWindow) AddThumbnail(t effect.Thumbnail) {
	if t.Source == nil {
		return
	}
	e.RemoveThumbnail(t.Source)
	if t.Brightness == 0 {
		t.Brightness = 1
	}
	if t.Saturation == 0 {
		t.Saturation = 1
	}
	e.thumbs = append(e.thumbs, t)
	e.AddRepaint(t.Rect)
}

func (e *effectWindow) RemoveThumbnail(source effect.Window) {
	e.thumbs = slices.DeleteFunc(e.thumbs, func(t effect.Thumbnail) bool {
		if t.Source.ID() != source.ID() {
			return false
		}
		e.AddRepaint(t.Rect)
		return true
	})
}

func (e *effectWindow) Thumbnails() []effect.Thumbnail { return slices.Clone(e.thumbs) }
