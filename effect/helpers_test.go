package effect

import (
	"image"
	"time"

	"github.com/gogpu/compositor/paint"
	"github.com/gogpu/compositor/quad"
	"github.com/gogpu/compositor/region"
	"github.com/gogpu/compositor/win"
)

// fakeWindow is a minimal Window for chain tests.
type fakeWindow struct {
	id       uint64
	geometry image.Rectangle
	data     map[DataRole]any
	disabled DisableReason
	repaints int
	refs     int
	prevRefs int
	thumbs   []Thumbnail
}

var _ Window = (*fakeWindow)(nil)

func newFakeWindow(id uint64) *fakeWindow {
	return &fakeWindow{id: id, geometry: image.Rect(0, 0, 100, 100), data: map[DataRole]any{}}
}

func (w *fakeWindow) ID() uint64                           { return w.id }
func (w *fakeWindow) Kind() win.Kind                       { return win.KindInternal }
func (w *fakeWindow) Caption() string                      { return "fake" }
func (w *fakeWindow) Geometry() image.Rectangle            { return w.geometry }
func (w *fakeWindow) Pos() image.Point                     { return w.geometry.Min }
func (w *fakeWindow) Size() image.Point                    { return w.geometry.Size() }
func (w *fakeWindow) ExpandedGeometry() image.Rectangle    { return w.geometry }
func (w *fakeWindow) DecorationInnerRect() image.Rectangle { return w.geometry }
func (w *fakeWindow) HasDecoration() bool                  { return false }
func (w *fakeWindow) Opacity() float64                     { return 1 }
func (w *fakeWindow) HasAlpha() bool                       { return false }
func (w *fakeWindow) IsDeleted() bool                      { return false }
func (w *fakeWindow) IsMinimized() bool                    { return false }
func (w *fakeWindow) IsOnCurrentDesktop() bool             { return true }
func (w *fakeWindow) IsFullscreen() bool                   { return false }
func (w *fakeWindow) IsManaged() bool                      { return true }
func (w *fakeWindow) IsLockScreen() bool                   { return false }
func (w *fakeWindow) IsInputMethod() bool                  { return false }
func (w *fakeWindow) IsActive() bool                       { return false }
func (w *fakeWindow) IsPaintingEnabled() bool              { return w.disabled == 0 }
func (w *fakeWindow) EnablePainting(r DisableReason)       { w.disabled &^= r }
func (w *fakeWindow) DisablePainting(r DisableReason)      { w.disabled |= r }
func (w *fakeWindow) AddRepaint(image.Rectangle)           { w.repaints++ }
func (w *fakeWindow) AddRepaintFull()                      { w.repaints++ }
func (w *fakeWindow) AddLayerRepaint(image.Rectangle)      { w.repaints++ }
func (w *fakeWindow) SetData(role DataRole, v any)         { w.data[role] = v }
func (w *fakeWindow) Data(role DataRole) any               { return w.data[role] }
func (w *fakeWindow) BuildQuads(bool) quad.List            { return nil }
func (w *fakeWindow) ReferencePreviousBuffer()             { w.prevRefs++ }
func (w *fakeWindow) UnreferencePreviousBuffer()           { w.prevRefs-- }
func (w *fakeWindow) RefWindow()                           { w.refs++ }
func (w *fakeWindow) UnrefWindow()                         { w.refs-- }
func (w *fakeWindow) AddThumbnail(t Thumbnail)             { w.thumbs = append(w.thumbs, t) }
func (w *fakeWindow) RemoveThumbnail(Window)               { w.thumbs = nil }
func (w *fakeWindow) Thumbnails() []Thumbnail              { return w.thumbs }

// recordingScene counts terminal calls.
type recordingScene struct {
	paintScreen  int
	paintWindow  int
	drawWindow   int
	lastMask     paint.Mask
	lastRegion   region.Region
	repaints     region.Region
	fullRepaints int
	windows      []Window
	panicOnDraw  bool
}

var _ Scene = (*recordingScene)(nil)

func (s *recordingScene) FinalPaintScreen(mask paint.Mask, r region.Region, _ *paint.ScreenPaintData) {
	s.paintScreen++
	s.lastMask, s.lastRegion = mask, r
}

func (s *recordingScene) FinalPaintWindow(_ Window, mask paint.Mask, r region.Region, _ *paint.WindowPaintData) {
	s.paintWindow++
	s.lastMask, s.lastRegion = mask, r
}

func (s *recordingScene) FinalDrawWindow(_ Window, mask paint.Mask, r region.Region, _ *paint.WindowPaintData) {
	if s.panicOnDraw {
		panic("draw failed")
	}
	s.drawWindow++
	s.lastMask, s.lastRegion = mask, r
}

func (s *recordingScene) StackingOrder() []Window      { return s.windows }
func (s *recordingScene) AddRepaint(r region.Region)   { s.repaints = s.repaints.Union(r) }
func (s *recordingScene) AddRepaintFull()              { s.fullRepaints++ }
func (s *recordingScene) DisplayRect() image.Rectangle { return image.Rect(0, 0, 640, 480) }

// forwarder forwards every stage and records the order it ran in.
type forwarder struct {
	name   string
	active bool
	log    *[]string
	pos    int
}

func (f *forwarder) IsActive() bool { return f.active }

func (f *forwarder) RequestedEffectChainPosition() int { return f.pos }

func (f *forwarder) PaintWindow(w Window, mask paint.Mask, r region.Region, data *paint.WindowPaintData, next PaintWindowNext) {
	*f.log = append(*f.log, f.name)
	next.Continue(w, mask, r, data)
}

func (f *forwarder) PaintScreen(mask paint.Mask, r region.Region, data *paint.ScreenPaintData, next PaintScreenNext) {
	*f.log = append(*f.log, f.name)
	next.Continue(mask, r, data)
}

func (f *forwarder) PrePaintScreen(data *paint.ScreenPrePaintData, t time.Duration, next PrePaintScreenNext) {
	*f.log = append(*f.log, f.name)
	next.Continue(data, t)
}
