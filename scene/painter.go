package scene

import (
	"image"
	"time"

	"github.com/gogpu/compositor/effect"
	"github.com/gogpu/compositor/internal/logging"
	"github.com/gogpu/compositor/paint"
	"github.com/gogpu/compositor/quad"
	"github.com/gogpu/compositor/region"
)

// phase2 is a window scheduled for painting after pre-paint.
type phase2 struct {
	w      *Window
	region region.Region
	clip   region.Region
	mask   paint.Mask
	quads  quad.List
	// visible is the region left after occlusion culling, before the
	// regions below are accumulated into it. Painting uses region; visible
	// is kept for occlusion diagnostics.
	visible region.Region
}

// PaintScreen paints one frame. damage is the area that changed; repaint
// is the area that must be redrawn on top of it to bring a reused back
// buffer up to date. Both are in screen coordinates.
func (s *Scene) PaintScreen(damage, repaint region.Region, presentTime time.Duration) FrameResult {
	if s.state != StateIdle {
		logging.Logger().Warn("scene: PaintScreen called during a frame", "state", s.state)
		return FrameResult{}
	}
	display := region.Rect(s.display)
	mask := paint.ScreenRegion
	if damage.Equal(display) {
		mask = paint.None
	}

	if presentTime < s.expectedPresent {
		logging.Logger().Debug("scene: presentation timestamp out of order",
			"got", presentTime, "expected", s.expectedPresent)
	} else {
		s.expectedPresent = presentTime
	}

	s.buildStackingOrder()
	s.effects.StartPaint()
	s.path = PathNone
	s.plan = s.plan[:0]

	s.state = StatePrePaint
	pre := paint.ScreenPrePaintData{Mask: mask, Paint: damage}
	s.effects.PrePaintScreen(&pre, s.expectedPresent)
	mask = pre.Mask
	r := pre.Paint

	switch {
	case mask.Transformed():
		// Damage does not match transformed positions.
		mask &^= paint.ScreenRegion
		r = region.Infinite()
	case mask.Has(paint.ScreenRegion):
		r = r.Intersect(display)
	default:
		r = display
	}

	s.painted = r
	s.repaint = repaint

	s.state = StatePaint
	if mask.Has(paint.ScreenBackgroundFirst) {
		s.backend.PaintBackground(r)
	}
	data := paint.NewScreenPaintData(s.display)
	s.effects.PaintScreen(mask, r, &data)

	s.state = StatePostPaint
	for _, w := range s.order {
		s.effects.PostPaintWindow(w.ew)
	}
	s.effects.PostPaintScreen()

	res := FrameResult{
		Mask:    mask,
		Painted: s.painted,
		Damaged: s.damaged,
		Valid:   r.Union(s.painted).Intersect(display),
		Path:    s.path,
	}
	s.repaint = region.Region{}
	s.damaged = region.Region{}
	s.state = StateIdle
	s.effects.FinishPaint()
	return res
}

// Idle skips a frame that has nothing to paint.
func (s *Scene) Idle() {
	if s.state != StateIdle {
		return
	}
	s.effects.EffectsChanged()
}

// FinalPaintScreen is the end of the screen paint stage.
func (s *Scene) FinalPaintScreen(mask paint.Mask, r region.Region, data *paint.ScreenPaintData) {
	s.screen = data.Transform
	if mask.Transformed() {
		s.paintGenericScreen(mask)
	} else {
		s.paintSimpleScreen(mask, r)
	}
	s.screen = paint.Identity()
}

// windowMask returns mask plus the opacity flag of w.
func windowMask(mask paint.Mask, w *Window) paint.Mask {
	if w.IsOpaque() {
		return mask | paint.WindowOpaque
	}
	return mask | paint.WindowTranslucent
}

// prePaintWindow runs the window pre-paint stage and reports whether the
// window is still to be painted.
func (s *Scene) prePaintWindow(w *Window, data *paint.WindowPrePaintData) bool {
	s.effects.PrePaintWindow(w.ew, data, s.expectedPresent)
	if data.Quads.IsTransformed() {
		logging.Logger().Debug("scene: pre-paint transformed quads", "window", w.id)
	}
	return w.IsPaintingEnabled()
}

// paintGenericScreen paints every window bottom to top without culling.
func (s *Scene) paintGenericScreen(mask paint.Mask) {
	s.path = PathGeneric
	if !mask.Has(paint.ScreenBackgroundFirst) {
		s.backend.PaintBackground(region.Infinite())
	}

	s.state = StatePrePaint
	for _, w := range s.order {
		// Effects schedule next-frame repaints from pre-paint, so the
		// window's repaints are reset first.
		w.top.ResetRepaints()
		w.ResetPaintingEnabled()
		data := paint.WindowPrePaintData{
			Mask:  windowMask(mask, w),
			Paint: region.Infinite(),
			Quads: w.BuildQuads(false),
		}
		if !s.prePaintWindow(w, &data) {
			continue
		}
		s.plan = append(s.plan, phase2{w: w, region: region.Infinite(), clip: data.Clip, mask: data.Mask, quads: data.Quads, visible: region.Infinite()})
	}

	s.state = StateDraw
	for _, d := range s.plan {
		s.paintWindow(d.w, d.mask, d.region, d.quads)
	}
	s.damaged = region.Rect(s.display)
}

// paintSimpleScreen paints the region r, skipping what opaque windows
// hide.
func (s *Scene) paintSimpleScreen(mask paint.Mask, r region.Region) {
	s.path = PathSimple
	dirty := r
	opaqueFullscreen := false

	s.state = StatePrePaint
	for _, w := range s.order {
		t := w.top
		data := paint.WindowPrePaintData{Mask: windowMask(mask, w)}
		w.ResetPaintingEnabled()
		data.Paint = r.Union(t.Repaints())
		t.ResetRepaints()

		opaqueFullscreen = false
		renderPos := t.RenderGeometry().Min
		switch {
		case w.IsOpaque():
			opaqueFullscreen = w.ew.IsFullscreen()
			data.Clip = t.ContentRegion().Add(renderPos)
		case t.HasAlpha() && t.Opacity() == 1:
			content := t.ContentRegion()
			opaque := t.OpaqueRegion()
			data.Clip = content.Intersect(opaque).Add(renderPos)
			if content.Equal(opaque) {
				data.Mask = mask | paint.WindowOpaque
			}
		}

		// Opaque borders hide what is below them too; they are drawn in
		// the second pass.
		if d, ok := t.Decoration(); ok && !d.HasAlpha && t.Opacity() == 1 {
			data.Clip = data.Clip.Union(w.DecorationShape().Add(t.Geometry().Min))
		}

		data.Quads = w.BuildQuads(false)
		if !s.prePaintWindow(w, &data) {
			continue
		}
		dirty = dirty.Union(data.Paint)
		s.plan = append(s.plan, phase2{w: w, region: data.Paint, clip: data.Clip, mask: data.Mask, quads: data.Quads})
	}

	// The part of the repaint region only needed to refresh a reused back
	// buffer is not damage.
	repaintClip := s.repaint.Subtract(dirty)
	dirty = dirty.Union(s.repaint)

	display := region.Rect(s.display)
	full := dirty.Equal(display)
	if !full {
		if ext, ok := s.backend.(PaintRegionExtender); ok {
			ext.ExtendPaintRegion(&dirty, opaqueFullscreen)
			full = dirty.Equal(display)
		}
	}

	// Occlusion culling, top to bottom.
	var allclips region.Region
	upperTranslucent := s.repaint
	for i := len(s.plan) - 1; i >= 0; i-- {
		d := &s.plan[i]
		if full {
			d.region = display
		} else {
			d.region = d.region.Union(upperTranslucent)
		}
		d.region = d.region.Subtract(allclips)
		d.visible = d.region

		if !d.clip.IsEmpty() && !d.mask.Has(paint.WindowTranslucent) {
			allclips = allclips.Union(d.clip)
			if !full {
				upperTranslucent = upperTranslucent.Union(d.region.Subtract(d.clip))
			}
		} else if !full {
			upperTranslucent = upperTranslucent.Union(d.region)
		}
	}

	var paintedArea region.Region
	if !mask.Has(paint.ScreenBackgroundFirst) {
		paintedArea = dirty.Subtract(allclips)
		s.backend.PaintBackground(paintedArea)
	}

	s.state = StateDraw
	for i := range s.plan {
		d := &s.plan[i]
		if d.visible.IsEmpty() {
			logging.Logger().Debug("scene: window occluded", "window", d.w.id)
		}
		paintedArea = paintedArea.Union(d.region)
		d.region = paintedArea
		s.paintWindow(d.w, d.mask, d.region, d.quads)
	}

	if full {
		s.painted = display
		s.damaged = display.Subtract(repaintClip)
	} else {
		s.painted = s.painted.Union(paintedArea)
		// Adding the repaint region would make the damage grow every frame
		// until it covers the whole buffer.
		s.damaged = paintedArea.Subtract(repaintClip)
	}
}

// paintWindow runs the window paint stage for w and draws its thumbnails.
func (s *Scene) paintWindow(w *Window, mask paint.Mask, r region.Region, quads quad.List) {
	r = r.IntersectRect(s.display)
	if r.IsEmpty() {
		return
	}
	if s.recursion == w {
		return
	}
	// Untransformed windows outside r have nothing to draw.
	if !mask.Transformed() && !mask.Has(paint.WindowTransformed) &&
		!r.Intersects(region.Rect(w.ExpandedGeometry())) {
		return
	}

	data := paint.NewWindowPaintData(w.top.Opacity(), quads)
	data.Screen = s.screen
	s.effects.PaintWindow(w.ew, mask, r, &data)
	s.paintThumbnails(w, r, data.Opacity, data.Brightness, data.Saturation)
}

// paintThumbnails draws the thumbnails attached to w on top of it.
func (s *Scene) paintThumbnails(w *Window, r region.Region, opacity, brightness, saturation float64) {
	thumbs := w.ew.Thumbnails()
	if len(thumbs) == 0 {
		return
	}
	host := w.top.Geometry()
	prev := s.recursion
	s.recursion = w
	defer func() { s.recursion = prev }()

	for _, th := range thumbs {
		tw := s.lookup(th.Source)
		if tw == nil || tw == w || th.Rect.Empty() {
			continue
		}
		visual := tw.ExpandedGeometry()
		if visual.Empty() {
			continue
		}
		item := th.Rect.Add(host.Min)
		sw, sh := fitSize(visual.Size(), item.Size())

		data := paint.NewWindowPaintData(opacity, tw.BuildQuads(false))
		data.Brightness = brightness * th.Brightness
		data.Saturation = saturation * th.Saturation
		data.XScale = sw / float64(visual.Dx())
		data.YScale = sh / float64(visual.Dy())

		pos := tw.Pos()
		x := float64(item.Min.X) + (float64(item.Dx())-sw)/2 - float64(pos.X)
		y := float64(item.Min.Y) + (float64(item.Dy())-sh)/2 - float64(pos.Y)
		// Keep the shadow's top-left padding inside the item.
		x += float64(pos.X-visual.Min.X) * data.XScale
		y += float64(pos.Y-visual.Min.Y) * data.YScale
		data.XTranslation, data.YTranslation = x, y
		data.Screen = s.screen

		mask := paint.WindowTransformed | paint.WindowLanczos
		if data.Opacity == 1 {
			mask |= paint.WindowOpaque
		} else {
			mask |= paint.WindowTranslucent
		}
		clip := r.IntersectRect(host)
		if clip.IsEmpty() {
			continue
		}
		s.effects.DrawWindow(tw.ew, mask, clip, &data)
	}
}

// fitSize scales src to fit dst keeping its aspect ratio. The result is
// never larger than src.
func fitSize(src, dst image.Point) (float64, float64) {
	w, h := float64(src.X), float64(src.Y)
	k := min(float64(dst.X)/w, float64(dst.Y)/h)
	if k > 1 {
		return w, h
	}
	return w * k, h * k
}

// FinalPaintWindow is the end of the window paint stage.
func (s *Scene) FinalPaintWindow(ew effect.Window, mask paint.Mask, r region.Region, data *paint.WindowPaintData) {
	s.effects.DrawWindow(ew, mask, r, data)
}

// FinalDrawWindow is the end of the window draw stage. It hands the
// window to the backend.
func (s *Scene) FinalDrawWindow(ew effect.Window, mask paint.Mask, r region.Region, data *paint.WindowPaintData) {
	w := s.lookup(ew)
	if w == nil {
		return
	}
	if s.stack != nil && s.stack.ScreenLocked() && !ew.IsLockScreen() && !ew.IsInputMethod() {
		return
	}
	w.UpdateBuffer()
	if w.Buffer() == nil {
		// Still a scene participant, just nothing to show yet.
		return
	}
	s.backend.PerformPaint(w, mask, r, data)
}

// RenderWindowOffscreen draws ew alone into an image covering its
// expanded geometry.
func (s *Scene) RenderWindowOffscreen(ew effect.Window) (image.Image, error) {
	off, ok := s.backend.(OffscreenRenderer)
	if !ok {
		return nil, ErrOffscreenUnsupported
	}
	w := s.lookup(ew)
	if w == nil {
		return nil, ErrUnknownWindow
	}
	bounds := w.ExpandedGeometry()
	if err := off.PushTarget(bounds); err != nil {
		return nil, err
	}
	data := paint.NewWindowPaintData(w.top.Opacity(), w.BuildQuads(false))
	s.effects.DrawWindow(w.ew, windowMask(paint.WindowTransformed, w), region.Rect(bounds), &data)
	return off.PopTarget(), nil
}
