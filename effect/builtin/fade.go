package builtin

import (
	"time"

	"github.com/gogpu/compositor/effect"
	"github.com/gogpu/compositor/paint"
	"github.com/gogpu/compositor/region"
)

// Fade fades managed windows in when they appear and out when they
// close.
type Fade struct {
	h        *effect.Handler
	duration time.Duration
	clock    clock
	windows  map[uint64]*fading
}

type fading struct {
	w       effect.Window
	tl      timeline
	closing bool
}

// opacity is the factor the window's opacity is multiplied by.
func (f *fading) opacity() float64 {
	if f.closing {
		return easeOutCubic(1 - f.tl.value())
	}
	return easeOutCubic(f.tl.value())
}

// NewFade returns a fade effect running for d.
func NewFade(h *effect.Handler, d time.Duration) *Fade {
	return &Fade{h: h, duration: d, windows: make(map[uint64]*fading)}
}

func (f *Fade) IsActive() bool { return len(f.windows) > 0 }

func (f *Fade) RequestedEffectChainPosition() int { return 60 }

func (f *Fade) WindowAdded(w effect.Window) {
	if !w.IsManaged() || grabbedByOther(w, effect.AddedGrab, f) {
		return
	}
	w.SetData(effect.AddedGrab, f)
	f.start()
	f.windows[w.ID()] = &fading{w: w, tl: timeline{duration: f.duration}}
	w.AddRepaintFull()
}

func (f *Fade) WindowClosed(w effect.Window) {
	if !w.IsManaged() || grabbedByOther(w, effect.ClosedGrab, f) {
		return
	}
	a, ok := f.windows[w.ID()]
	if ok {
		// Fade out from where the fade in stopped.
		a.tl.reverse()
		w.SetData(effect.AddedGrab, nil)
	} else {
		f.start()
		a = &fading{w: w, tl: timeline{duration: f.duration}}
		f.windows[w.ID()] = a
	}
	a.closing = true
	w.RefWindow()
	w.SetData(effect.ClosedGrab, f)
	w.AddRepaintFull()
}

func (f *Fade) start() {
	if len(f.windows) == 0 {
		f.clock.reset()
	}
}

func (f *Fade) WindowDeleted(w effect.Window) {
	delete(f.windows, w.ID())
}

func (f *Fade) PrePaintScreen(data *paint.ScreenPrePaintData, presentTime time.Duration, next effect.PrePaintScreenNext) {
	dt := f.clock.tick(presentTime)
	for _, a := range f.windows {
		a.tl.advance(dt)
	}
	next.Continue(data, presentTime)
}

func (f *Fade) PrePaintWindow(w effect.Window, data *paint.WindowPrePaintData, presentTime time.Duration, next effect.PrePaintWindowNext) {
	if a, ok := f.windows[w.ID()]; ok {
		data.SetTranslucent()
		if a.closing {
			w.EnablePainting(effect.DisabledByDeleted)
		}
	}
	next.Continue(w, data, presentTime)
}

func (f *Fade) PaintWindow(w effect.Window, mask paint.Mask, r region.Region, data *paint.WindowPaintData, next effect.PaintWindowNext) {
	if a, ok := f.windows[w.ID()]; ok {
		data.MultiplyOpacity(a.opacity())
	}
	next.Continue(w, mask, r, data)
}

func (f *Fade) PostPaintScreen(next effect.PostPaintScreenNext) {
	for id, a := range f.windows {
		a.w.AddRepaintFull()
		if !a.tl.done() {
			continue
		}
		delete(f.windows, id)
		if a.closing {
			a.w.SetData(effect.ClosedGrab, nil)
			a.w.UnrefWindow()
		} else {
			a.w.SetData(effect.AddedGrab, nil)
		}
	}
	next.Continue()
}

// grabbedByOther reports whether another effect animates w for role.
func grabbedByOther(w effect.Window, role effect.DataRole, self effect.Effect) bool {
	g := w.Data(role)
	return g != nil && g != self
}
