package builtin

import (
	"image"
	"image/color"

	"github.com/gogpu/compositor/effect"
	"github.com/gogpu/compositor/quad"
)

// Glow outlines the active window with a band of solid quads just inside
// its frame. The quads have their own type, allocated from the handler.
type Glow struct {
	h        *effect.Handler
	quadType quad.Type
	color    color.RGBA
	width    int
}

// NewGlow returns a glow of the given colour and band width.
func NewGlow(h *effect.Handler, c color.RGBA, width int) *Glow {
	return &Glow{h: h, quadType: h.NewWindowQuadType(), color: c, width: max(width, 1)}
}

// IsActive reports false: the glow only contributes quads and never
// animates.
func (g *Glow) IsActive() bool { return false }

func (g *Glow) RequestedEffectChainPosition() int { return 70 }

// QuadType returns the type of the glow quads.
func (g *Glow) QuadType() quad.Type { return g.quadType }

func (g *Glow) BuildQuads(w effect.Window, quads *quad.List, next effect.BuildQuadsNext) {
	next.Continue(w, quads)
	if !w.IsActive() || w.IsDeleted() {
		return
	}
	size := w.Size()
	b := min(g.width, size.X/2, size.Y/2)
	if b <= 0 {
		return
	}
	band := [...]image.Rectangle{
		image.Rect(0, 0, size.X, b),
		image.Rect(0, size.Y-b, size.X, size.Y),
		image.Rect(0, b, b, size.Y-b),
		image.Rect(size.X-b, b, size.X, size.Y-b),
	}
	for _, r := range band {
		if r.Empty() {
			continue
		}
		q := quad.New(g.quadType, 0, r, r)
		q.Fill = g.color
		*quads = append(*quads, q)
	}
}

func (g *Glow) WindowStateChanged(w effect.Window) {
	w.BuildQuads(true)
	w.AddRepaintFull()
}
