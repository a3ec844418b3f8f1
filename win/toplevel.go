// Package win defines the logical window contract consumed by the compositing
// scene, together with an in-process implementation: Window, a mutable
// window with change notifications, and Space, a stacking order with
// remnant lifetime for closing windows.
//
// Producers (the X11 source, the demo, tests) mutate windows from any
// goroutine. Every mutation pushes an event.Event that the scene drains
// between frames, so a change never interrupts a frame in progress.
package win

import (
	"image"

	"github.com/gogpu/compositor/region"
)

// Kind tells which protocol a window comes from.
type Kind uint8

const (
	KindX11 Kind = iota
	KindWayland
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindX11:
		return "x11"
	case KindWayland:
		return "wayland"
	case KindInternal:
		return "internal"
	}
	return "unknown"
}

// State is a set of window state flags.
type State uint16

const (
	// Deleted marks a remnant: a closed window kept for exit animations.
	Deleted State = 1 << iota
	Minimized
	Hidden
	// Managed windows are under window manager control. Override-redirect
	// and internal surfaces are unmanaged.
	Managed
	Fullscreen
	LockScreen
	InputMethod
	Active
)

// Has reports whether every flag of f is set.
func (s State) Has(f State) bool { return s&f == f }

// Margins are per-edge sizes in pixels.
type Margins struct {
	Left, Top, Right, Bottom int
}

// IsZero reports whether every margin is zero.
func (m Margins) IsZero() bool { return m == Margins{} }

// Decoration describes server-side window borders.
type Decoration struct {
	Margins
	Title  string
	Active bool
	// HasAlpha is set when the decoration has translucent pixels, e.g.
	// rounded corners.
	HasAlpha bool
}

// ClientRect returns the area inside the borders of a frame of the given
// size, relative to the frame origin.
func (d Decoration) ClientRect(size image.Point) image.Rectangle {
	return image.Rect(d.Left, d.Top, size.X-d.Right, size.Y-d.Bottom)
}

// Rects returns the four border strips of a frame of the given size,
// relative to the frame origin. Top and bottom span the full width.
func (d Decoration) Rects(size image.Point) (left, top, right, bottom image.Rectangle) {
	top = image.Rect(0, 0, size.X, d.Top)
	bottom = image.Rect(0, size.Y-d.Bottom, size.X, size.Y)
	left = image.Rect(0, d.Top, d.Left, size.Y-d.Bottom)
	right = image.Rect(size.X-d.Right, d.Top, size.X, size.Y-d.Bottom)
	return left, top, right, bottom
}

// Shadow element indices, clockwise from the top-left corner.
const (
	ShadowTopLeft = iota
	ShadowTop
	ShadowTopRight
	ShadowRight
	ShadowBottomRight
	ShadowBottom
	ShadowBottomLeft
	ShadowLeft

	ShadowElementCount
)

// Shadow is a nine-patch style drop shadow without a centre tile.
type Shadow struct {
	Elements [ShadowElementCount]image.Image
	// Offset is how far the shadow extends beyond the frame on each edge.
	Offset Margins
}

// ElementSize returns the size of element i, or zero when it is unset.
func (s *Shadow) ElementSize(i int) image.Point {
	if s.Elements[i] == nil {
		return image.Point{}
	}
	return s.Elements[i].Bounds().Size()
}

// Toplevel is the logical window as seen by the compositing scene. It is
// implemented by every window kind; the scene never inspects the
// concrete type.
type Toplevel interface {
	ID() uint64
	Kind() Kind
	Caption() string

	// Geometry is the frame rectangle in screen coordinates, including
	// server-side decoration.
	Geometry() image.Rectangle
	// RenderGeometry is the rectangle covered by the client buffer in
	// screen coordinates.
	RenderGeometry() image.Rectangle
	// ContentRegion is the visible part of the buffer, relative to the
	// render geometry origin.
	ContentRegion() region.Region
	// OpaqueRegion is the part of the buffer the client declared opaque,
	// relative to the render geometry origin.
	OpaqueRegion() region.Region

	Opacity() float64
	HasAlpha() bool
	BufferScale() float64
	Decoration() (Decoration, bool)
	Shadow() (Shadow, bool)
	State() State
	OnCurrentDesktop() bool

	// AnnexedChildren are surfaces drawn as part of this window, such as
	// popups sharing its buffer.
	AnnexedChildren() []Toplevel
	// Content returns the current client pixels, sized to the render
	// geometry times the buffer scale. ok is false while unmapped.
	Content() (img image.Image, ok bool)

	// Repaints returns the pending repaint region in screen coordinates.
	Repaints() region.Region
	ResetRepaints()
	// AddRepaint schedules a repaint of r, given relative to the frame.
	AddRepaint(r region.Region)
	// AddLayerRepaint schedules a repaint of r in screen coordinates.
	AddLayerRepaint(r region.Region)

	// Ref and Unref keep a remnant alive. The last Unref of a deleted
	// window removes it from the stacking order.
	Ref()
	Unref()
}

// Stack provides the stacking order and session state to the scene.
type Stack interface {
	// StackingOrder returns the windows bottom to top, remnants included.
	StackingOrder() []Toplevel
	ScreenLocked() bool
}
