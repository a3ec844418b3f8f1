package builtin

import (
	"image"
	"time"

	"github.com/gogpu/compositor/effect"
	"github.com/gogpu/compositor/paint"
	"github.com/gogpu/compositor/region"
)

const (
	minZoom  = 1.0
	maxZoom  = 8.0
	zoomStep = 1.25
)

// Zoom magnifies the screen around a focus point. While zoomed, frames
// take the transformed path and repaint the whole output.
type Zoom struct {
	h      *effect.Handler
	rate   float64
	level  float64
	target float64
	focus  image.Point
	clock  clock
	// dirty is set while the last frame was zoomed, so one more full
	// repaint clears it.
	dirty bool
}

// NewZoom returns a zoom effect changing by rate levels per second. A
// rate of zero jumps to the target level.
func NewZoom(h *effect.Handler, rate float64) *Zoom {
	return &Zoom{h: h, rate: rate, level: 1, target: 1}
}

func (z *Zoom) IsActive() bool { return z.level != 1 || z.target != 1 || z.dirty }

func (z *Zoom) RequestedEffectChainPosition() int { return 10 }

// Level returns the current magnification.
func (z *Zoom) Level() float64 { return z.level }

// SetTarget animates towards level l, clamped to [1, 8].
func (z *Zoom) SetTarget(l float64) {
	if !z.IsActive() {
		z.clock.reset()
	}
	z.target = min(max(l, minZoom), maxZoom)
	z.h.AddRepaintFull()
}

func (z *Zoom) ZoomIn()    { z.SetTarget(z.target * zoomStep) }
func (z *Zoom) ZoomOut()   { z.SetTarget(z.target / zoomStep) }
func (z *Zoom) ResetZoom() { z.SetTarget(1) }

// SetFocus sets the screen point that stays in place while zoomed.
func (z *Zoom) SetFocus(p image.Point) {
	z.focus = p
	if z.level != 1 {
		z.h.AddRepaintFull()
	}
}

func (z *Zoom) PrePaintScreen(data *paint.ScreenPrePaintData, presentTime time.Duration, next effect.PrePaintScreenNext) {
	dt := z.clock.tick(presentTime)
	switch step := z.rate * dt.Seconds(); {
	case z.rate <= 0:
		z.level = z.target
	case z.level < z.target:
		z.level = min(z.level+step, z.target)
	case z.level > z.target:
		z.level = max(z.level-step, z.target)
	}
	if z.level != 1 {
		data.Mask |= paint.ScreenTransformed
	}
	next.Continue(data, presentTime)
}

func (z *Zoom) PaintScreen(mask paint.Mask, r region.Region, data *paint.ScreenPaintData, next effect.PaintScreenNext) {
	if z.level != 1 {
		out := data.Output
		f := z.focus
		if !f.In(out) {
			f = image.Pt((out.Min.X+out.Max.X)/2, (out.Min.Y+out.Max.Y)/2)
		}
		data.XScale *= z.level
		data.YScale *= z.level
		data.XTranslation += float64(f.X) * (1 - z.level)
		data.YTranslation += float64(f.Y) * (1 - z.level)
	}
	next.Continue(mask, r, data)
}

func (z *Zoom) PostPaintScreen(next effect.PostPaintScreenNext) {
	if z.level != z.target || z.dirty {
		z.h.AddRepaintFull()
	}
	z.dirty = z.level != 1
	next.Continue()
}
