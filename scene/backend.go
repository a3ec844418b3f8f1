package scene

import (
	"image"

	"github.com/gogpu/compositor/paint"
	"github.com/gogpu/compositor/region"
)

// Backend performs the actual rendering for a Scene.
type Backend interface {
	// CreateBuffer returns a new, invalid buffer for w.
	CreateBuffer(w *Window) Buffer
	// SetupBuffer runs once for every buffer CreateBuffer returned.
	SetupBuffer(b Buffer)
	// PaintBackground fills r, in screen coordinates, with the background.
	PaintBackground(r region.Region)
	// PerformPaint draws data.Quads of w clipped to r.
	PerformPaint(w *Window, mask paint.Mask, r region.Region, data *paint.WindowPaintData)
}

// PaintRegionExtender is implemented by backends that repaint more than
// the dirty area, such as ones reusing back buffers of a known age.
type PaintRegionExtender interface {
	ExtendPaintRegion(r *region.Region, opaqueFullscreen bool)
}

// OffscreenRenderer is implemented by backends able to redirect drawing
// into an offscreen image.
type OffscreenRenderer interface {
	// PushTarget redirects drawing into a new image covering bounds, in
	// screen coordinates.
	PushTarget(bounds image.Rectangle) error
	// PopTarget ends the innermost redirection and returns its image.
	PopTarget() image.Image
}

// FrameTarget is implemented by backends whose output keeps a damage
// history across frames.
type FrameTarget interface {
	// BeginFrame returns the region that must be repainted to bring the
	// back buffer up to date, on top of damage.
	BeginFrame(damage region.Region) region.Region
	// EndFrame records what the frame changed.
	EndFrame(damaged region.Region)
	// Front returns the last completed frame.
	Front() image.Image
}
