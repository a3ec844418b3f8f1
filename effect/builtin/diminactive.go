package builtin

import (
	"github.com/gogpu/compositor/effect"
	"github.com/gogpu/compositor/paint"
	"github.com/gogpu/compositor/region"
)

// DimInactive darkens managed windows that do not have focus.
type DimInactive struct {
	h        *effect.Handler
	strength float64
}

// NewDimInactive returns the effect darkening by strength, clamped to
// [0, 1].
func NewDimInactive(h *effect.Handler, strength float64) *DimInactive {
	return &DimInactive{h: h, strength: min(max(strength, 0), 1)}
}

func (d *DimInactive) IsActive() bool { return d.strength > 0 }

func (d *DimInactive) RequestedEffectChainPosition() int { return 50 }

// SetStrength changes the dimming and repaints the screen.
func (d *DimInactive) SetStrength(s float64) {
	d.strength = min(max(s, 0), 1)
	d.h.AddRepaintFull()
}

func (d *DimInactive) Reconfigure() { d.h.AddRepaintFull() }

func (d *DimInactive) PaintWindow(w effect.Window, mask paint.Mask, r region.Region, data *paint.WindowPaintData, next effect.PaintWindowNext) {
	if d.dims(w) {
		data.MultiplyBrightness(1 - d.strength)
		data.MultiplySaturation(1 - d.strength/2)
	}
	next.Continue(w, mask, r, data)
}

func (d *DimInactive) WindowStateChanged(w effect.Window) {
	w.AddRepaintFull()
}

func (d *DimInactive) dims(w effect.Window) bool {
	return w.IsManaged() && !w.IsActive() && !w.IsDeleted() && !w.IsLockScreen()
}
