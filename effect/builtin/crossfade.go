package builtin

import (
	"image"
	"time"

	"github.com/gogpu/compositor/effect"
	"github.com/gogpu/compositor/paint"
	"github.com/gogpu/compositor/region"
)

// CrossFade blends a window's content from before a resize into the
// content after it.
type CrossFade struct {
	h        *effect.Handler
	duration time.Duration
	clock    clock
	windows  map[uint64]*resizing
}

type resizing struct {
	w  effect.Window
	tl timeline
	// referenced is set while the previous buffer is held.
	referenced bool
}

// NewCrossFade returns a cross-fade running for d.
func NewCrossFade(h *effect.Handler, d time.Duration) *CrossFade {
	return &CrossFade{h: h, duration: d, windows: make(map[uint64]*resizing)}
}

func (c *CrossFade) IsActive() bool { return len(c.windows) > 0 }

func (c *CrossFade) WindowGeometryChanged(w effect.Window, old image.Rectangle) {
	if old.Size() == w.Size() || w.IsDeleted() {
		return
	}
	a, ok := c.windows[w.ID()]
	if !ok {
		if len(c.windows) == 0 {
			c.clock.reset()
		}
		a = &resizing{w: w}
		c.windows[w.ID()] = a
	}
	// One reference per window: it follows the previous buffer when a
	// later resize replaces it.
	a.tl = timeline{duration: c.duration}
	if !a.referenced {
		w.ReferencePreviousBuffer()
		a.referenced = true
	}
	w.AddRepaintFull()
}

func (c *CrossFade) WindowDeleted(w effect.Window) {
	if a, ok := c.windows[w.ID()]; ok {
		c.release(a)
		delete(c.windows, w.ID())
	}
}

func (c *CrossFade) PrePaintScreen(data *paint.ScreenPrePaintData, presentTime time.Duration, next effect.PrePaintScreenNext) {
	dt := c.clock.tick(presentTime)
	for _, a := range c.windows {
		a.tl.advance(dt)
	}
	next.Continue(data, presentTime)
}

func (c *CrossFade) PaintWindow(w effect.Window, mask paint.Mask, r region.Region, data *paint.WindowPaintData, next effect.PaintWindowNext) {
	if a, ok := c.windows[w.ID()]; ok {
		data.CrossFadeProgress = a.tl.value()
	}
	next.Continue(w, mask, r, data)
}

func (c *CrossFade) PostPaintScreen(next effect.PostPaintScreenNext) {
	for id, a := range c.windows {
		a.w.AddRepaintFull()
		if a.tl.done() {
			c.release(a)
			delete(c.windows, id)
		}
	}
	next.Continue()
}

func (c *CrossFade) release(a *resizing) {
	if a.referenced {
		a.w.UnreferencePreviousBuffer()
		a.referenced = false
	}
}
