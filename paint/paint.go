// Package paint holds the data passed along the effect chain for every frame:
// the paint mask flags, the screen and window pre-paint data and the per
// window draw attributes.
package paint

import (
	"image"
	"strings"

	"github.com/gogpu/compositor/quad"
	"github.com/gogpu/compositor/region"
)

// Mask is a set of flags describing how a screen or window is painted.
type Mask uint32

// Paint mask flags.
const (
	// WindowOpaque marks a window painted in the opaque pass.
	WindowOpaque Mask = 1 << iota
	// WindowTranslucent marks a window painted in the translucent pass.
	WindowTranslucent
	// WindowTransformed marks a window whose geometry an effect changes.
	WindowTransformed
	// ScreenRegion marks a frame that repaints only part of the output.
	ScreenRegion
	// ScreenTransformed marks a frame in which the whole screen is
	// transformed. It forces the generic painter.
	ScreenTransformed
	// ScreenWithTransformedWindows marks a frame in which at least one
	// window is transformed. It forces the generic painter.
	ScreenWithTransformedWindows
	// ScreenBackgroundFirst asks the painter to clear the background
	// before any window is drawn.
	ScreenBackgroundFirst
	// WindowLanczos requests high quality filtering.
	WindowLanczos

	None Mask = 0
)

var maskNames = []struct {
	m    Mask
	name string
}{
	{WindowOpaque, "WindowOpaque"},
	{WindowTranslucent, "WindowTranslucent"},
	{WindowTransformed, "WindowTransformed"},
	{ScreenRegion, "ScreenRegion"},
	{ScreenTransformed, "ScreenTransformed"},
	{ScreenWithTransformedWindows, "ScreenWithTransformedWindows"},
	{ScreenBackgroundFirst, "ScreenBackgroundFirst"},
	{WindowLanczos, "WindowLanczos"},
}

// Has reports whether every flag of f is set in m.
func (m Mask) Has(f Mask) bool {
	return m&f == f
}

// Any reports whether at least one flag of f is set in m.
func (m Mask) Any(f Mask) bool {
	return m&f != 0
}

// Transformed reports whether m forces the generic painter.
func (m Mask) Transformed() bool {
	return m.Any(ScreenTransformed | ScreenWithTransformedWindows)
}

// String returns the flag names joined by "|".
func (m Mask) String() string {
	if m == None {
		return "None"
	}
	var parts []string
	for _, n := range maskNames {
		if m&n.m != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Transform is a scale followed by a translation.
type Transform struct {
	XScale, YScale             float64
	XTranslation, YTranslation float64
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{XScale: 1, YScale: 1}
}

// IsIdentity reports whether t leaves geometry untouched.
func (t Transform) IsIdentity() bool {
	return t.XScale == 1 && t.YScale == 1 && t.XTranslation == 0 && t.YTranslation == 0
}

// Apply maps a point through t.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.XScale + t.XTranslation, y*t.YScale + t.YTranslation
}

// ScreenPrePaintData is filled during the screen pre-paint stage. Effects
// add to Paint to request repaints and set flags in Mask.
type ScreenPrePaintData struct {
	Mask  Mask
	Paint region.Region
}

// ScreenPaintData carries the screen-wide transform.
type ScreenPaintData struct {
	Transform
	// Output is the output rectangle being painted.
	Output image.Rectangle
}

// NewScreenPaintData returns identity paint data for output.
func NewScreenPaintData(output image.Rectangle) ScreenPaintData {
	return ScreenPaintData{Transform: Identity(), Output: output}
}

// WindowPrePaintData is filled during the window pre-paint stage.
type WindowPrePaintData struct {
	Mask Mask
	// Paint is the region of the window that must be repainted.
	Paint region.Region
	// Clip is the region the window covers opaquely. Windows below it
	// need not paint there.
	Clip  region.Region
	Quads quad.List
}

// SetTranslucent switches the window to the translucent pass. A
// translucent window hides nothing below it, so the clip is dropped.
func (d *WindowPrePaintData) SetTranslucent() {
	d.Mask |= WindowTranslucent
	d.Mask &^= WindowOpaque
	d.Clip = region.Region{}
}

// SetTransformed marks the window as transformed. Its on-screen footprint
// no longer matches its geometry, so the clip is dropped.
func (d *WindowPrePaintData) SetTransformed() {
	d.Mask |= WindowTransformed
	d.Clip = region.Region{}
}

// WindowPaintData carries per-window draw attributes.
type WindowPaintData struct {
	Transform
	Opacity    float64
	Saturation float64
	Brightness float64
	// CrossFadeProgress blends from the previous buffer (0) to the
	// current one (1).
	CrossFadeProgress float64
	Quads             quad.List
	// Screen is the screen transform in effect while the window is drawn.
	Screen Transform
}

// NewWindowPaintData returns neutral paint data at the given opacity.
func NewWindowPaintData(opacity float64, quads quad.List) WindowPaintData {
	return WindowPaintData{
		Transform:         Identity(),
		Opacity:           opacity,
		Saturation:        1,
		Brightness:        1,
		CrossFadeProgress: 1,
		Quads:             quads,
		Screen:            Identity(),
	}
}

// MultiplyOpacity scales the opacity by f.
func (d *WindowPaintData) MultiplyOpacity(f float64) {
	d.Opacity *= f
}

// MultiplyBrightness scales the brightness by f.
func (d *WindowPaintData) MultiplyBrightness(f float64) {
	d.Brightness *= f
}

// MultiplySaturation scales the saturation by f.
func (d *WindowPaintData) MultiplySaturation(f float64) {
	d.Saturation *= f
}

// IsNeutral reports whether the data draws the window unmodified.
func (d *WindowPaintData) IsNeutral() bool {
	return d.Transform.IsIdentity() && d.Screen.IsIdentity() &&
		d.Opacity == 1 && d.Saturation == 1 && d.Brightness == 1
}
