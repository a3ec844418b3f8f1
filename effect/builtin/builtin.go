package builtin

import (
	"errors"
	"image/color"
	"time"

	"github.com/gogpu/compositor/effect"
)

// Effect names.
const (
	FadeName        = "fade"
	DimInactiveName = "diminactive"
	ZoomName        = "zoom"
	GlowName        = "glow"
	CrossFadeName   = "crossfade"
)

// Options tunes the built-in effects.
type Options struct {
	FadeDuration      time.Duration
	CrossFadeDuration time.Duration
	// DimStrength is how much inactive windows are darkened, 0 to 1.
	DimStrength float64
	// ZoomRate is the zoom speed in levels per second.
	ZoomRate  float64
	GlowColor color.RGBA
	GlowWidth int
}

// DefaultOptions returns the default tuning.
func DefaultOptions() Options {
	return Options{
		FadeDuration:      150 * time.Millisecond,
		CrossFadeDuration: 200 * time.Millisecond,
		DimStrength:       0.25,
		ZoomRate:          4,
		GlowColor:         color.RGBA{R: 0x2a, G: 0x6c, B: 0xb0, A: 0xb0},
		GlowWidth:         2,
	}
}

// Register adds every built-in effect to r.
func Register(r *effect.Registry, opts Options) error {
	return errors.Join(
		r.Register(FadeName, effect.Factory{
			New:              func(h *effect.Handler) effect.Effect { return NewFade(h, opts.FadeDuration) },
			EnabledByDefault: true,
		}),
		r.Register(DimInactiveName, effect.Factory{
			New: func(h *effect.Handler) effect.Effect { return NewDimInactive(h, opts.DimStrength) },
		}),
		r.Register(ZoomName, effect.Factory{
			New: func(h *effect.Handler) effect.Effect { return NewZoom(h, opts.ZoomRate) },
		}),
		r.Register(GlowName, effect.Factory{
			New: func(h *effect.Handler) effect.Effect { return NewGlow(h, opts.GlowColor, opts.GlowWidth) },
		}),
		r.Register(CrossFadeName, effect.Factory{
			New:              func(h *effect.Handler) effect.Effect { return NewCrossFade(h, opts.CrossFadeDuration) },
			EnabledByDefault: true,
		}),
	)
}
