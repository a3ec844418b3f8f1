package effect

import (
	"image"

	"github.com/gogpu/compositor/paint"
	"github.com/gogpu/compositor/quad"
	"github.com/gogpu/compositor/region"
	"github.com/gogpu/compositor/win"
)

// DisableReason is a set of reasons a window is not painted this frame.
type DisableReason uint8

const (
	DisabledByDeleted DisableReason = 1 << iota
	DisabledByDesktop
	DisabledByMinimize
	// DisabledUnspecified covers hidden windows and effect requests.
	DisabledUnspecified
)

// DataRole keys the per-window data bag shared between effects.
type DataRole int

const (
	// AddedGrab is set by the effect animating a window's appearance.
	AddedGrab DataRole = iota + 1
	// ClosedGrab is set by the effect animating a window's disappearance.
	ClosedGrab
	MinimizedGrab
	UnminimizedGrab
	// ForceBlur asks blur-like effects to treat the window as translucent.
	ForceBlur
	// Highlight marks a window for highlighting effects.
	Highlight
)

// Thumbnail is a scaled copy of Source drawn inside its host window.
type Thumbnail struct {
	Source Window
	// Rect is the area in the host window, relative to the host's frame
	// origin.
	Rect       image.Rectangle
	Brightness float64
	Saturation float64
}

// Window is the view of a composited window that effects work with.
type Window interface {
	ID() uint64
	Kind() win.Kind
	Caption() string

	// Geometry is the frame rectangle in screen coordinates.
	Geometry() image.Rectangle
	Pos() image.Point
	Size() image.Point
	// ExpandedGeometry is the frame plus its shadow.
	ExpandedGeometry() image.Rectangle
	// DecorationInnerRect is the client area in screen coordinates.
	DecorationInnerRect() image.Rectangle
	HasDecoration() bool
	Opacity() float64
	HasAlpha() bool

	IsDeleted() bool
	IsMinimized() bool
	IsOnCurrentDesktop() bool
	IsFullscreen() bool
	IsManaged() bool
	IsLockScreen() bool
	IsInputMethod() bool
	IsActive() bool

	IsPaintingEnabled() bool
	EnablePainting(r DisableReason)
	DisablePainting(r DisableReason)

	// AddRepaint schedules a repaint of r relative to the frame origin.
	AddRepaint(r image.Rectangle)
	AddRepaintFull()
	// AddLayerRepaint schedules a repaint of r in screen coordinates.
	AddLayerRepaint(r image.Rectangle)

	SetData(role DataRole, v any)
	Data(role DataRole) any

	// BuildQuads returns the window's quads, rebuilding the cache when
	// force is set.
	BuildQuads(force bool) quad.List

	ReferencePreviousBuffer()
	UnreferencePreviousBuffer()
	// RefWindow keeps a closed window around as a remnant until the
	// matching UnrefWindow.
	RefWindow()
	UnrefWindow()

	AddThumbnail(t Thumbnail)
	RemoveThumbnail(source Window)
	Thumbnails() []Thumbnail
}

// Scene is the terminal implementation behind the paint stages.
type Scene interface {
	FinalPaintScreen(mask paint.Mask, r region.Region, data *paint.ScreenPaintData)
	FinalPaintWindow(w Window, mask paint.Mask, r region.Region, data *paint.WindowPaintData)
	FinalDrawWindow(w Window, mask paint.Mask, r region.Region, data *paint.WindowPaintData)

	// StackingOrder returns the composited windows bottom to top.
	StackingOrder() []Window
	AddRepaint(r region.Region)
	AddRepaintFull()
	DisplayRect() image.Rectangle
}

// Input is the input layer used for keyboard grabs and mouse
// interception. The handler works without one.
type Input interface {
	GrabKeyboard() bool
	UngrabKeyboard()
	StartMouseInterception()
	StopMouseInterception()
}

// KeyEvent is a key press or release routed to a grabbing effect.
type KeyEvent struct {
	Code    uint32
	Rune    rune
	Pressed bool
}

// MouseEvent is a pointer event routed to intercepting effects.
type MouseEvent struct {
	Pos     image.Point
	Buttons uint32
	Pressed bool
}
