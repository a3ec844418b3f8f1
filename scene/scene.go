// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package scene implements the compositing pipeline: once per frame it
// decides which windows are visible, walks the effect stages and hands
// the surviving quads to a Backend.
//
// A frame moves through the states idle, pre-paint, paint, draw and
// post-paint. Without transformations the simple painter culls windows
// hidden below opaque ones; with any transformation the generic painter
// paints everything bottom to top. Changes to windows arrive as events
// and are applied between frames by ProcessEvents.
package scene

import (
	"errors"
	"image"
	"slices"
	"time"

	"github.com/gogpu/compositor/effect"
	"github.com/gogpu/compositor/event"
	"github.com/gogpu/compositor/internal/logging"
	"github.com/gogpu/compositor/paint"
	"github.com/gogpu/compositor/region"
	"github.com/gogpu/compositor/win"
)

var (
	// ErrFrameInProgress is returned when an operation needs the scene
	// to be idle.
	ErrFrameInProgress = errors.New("scene: frame in progress")
	// ErrOffscreenUnsupported is returned when the backend cannot render
	// offscreen.
	ErrOffscreenUnsupported = errors.New("scene: backend cannot render offscreen")
	// ErrUnknownWindow is returned for windows the scene does not track.
	ErrUnknownWindow = errors.New("scene: unknown window")
)

// State is the phase of the frame being painted.
type State uint8

const (
	StateIdle State = iota
	StatePrePaint
	StatePaint
	StateDraw
	StatePostPaint
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePrePaint:
		return "pre-paint"
	case StatePaint:
		return "paint"
	case StateDraw:
		return "draw"
	case StatePostPaint:
		return "post-paint"
	}
	return "unknown"
}

// Path tells which painter produced a frame.
type Path uint8

const (
	PathNone Path = iota
	PathSimple
	PathGeneric
)

func (p Path) String() string {
	switch p {
	case PathSimple:
		return "simple"
	case PathGeneric:
		return "generic"
	}
	return "none"
}

// FrameResult describes a painted frame to the presentation layer.
type FrameResult struct {
	Mask paint.Mask
	// Painted is what was drawn this frame.
	Painted region.Region
	// Damaged is what must be presented.
	Damaged region.Region
	// Valid is what the output buffer reflects after the frame.
	Valid region.Region
	Path  Path
}

// Config holds the collaborators of a Scene.
type Config struct {
	Backend Backend
	// Effects may be nil, in which case the scene paints without effects.
	Effects *effect.Handler
	Stack   win.Stack
	// Queue delivers window changes. It may be nil for stacks that do not
	// publish events.
	Queue   *event.Queue
	Display image.Rectangle
}

// Scene is the compositing state machine. All methods run on the frame
// goroutine unless noted.
type Scene struct {
	backend Backend
	effects *effect.Handler
	stack   win.Stack
	queue   *event.Queue
	display image.Rectangle

	windows map[uint64]*Window
	nextID  uint32
	order   []*Window

	state           State
	expectedPresent time.Duration
	painted         region.Region
	damaged         region.Region
	repaint         region.Region
	screen          paint.Transform
	path            Path
	recursion       *Window
	plan            []phase2

	pending region.Region
	trigger func()

	targetRect  image.Rectangle
	targetScale float64
}

var _ effect.Scene = (*Scene)(nil)

// New returns an idle scene bound to cfg.Effects.
func New(cfg Config) *Scene {
	h := cfg.Effects
	if h == nil {
		h = effect.NewHandler(nil, nil)
	}
	s := &Scene{
		backend:     cfg.Backend,
		effects:     h,
		stack:       cfg.Stack,
		queue:       cfg.Queue,
		display:     cfg.Display,
		windows:     make(map[uint64]*Window),
		screen:      paint.Identity(),
		targetRect:  cfg.Display,
		targetScale: 1,
	}
	h.Bind(s)
	return s
}

// Effects returns the effect handler the scene walks.
func (s *Scene) Effects() *effect.Handler { return s.effects }

// State returns the current frame phase.
func (s *Scene) State() State { return s.state }

// DisplayRect returns the output rectangle.
func (s *Scene) DisplayRect() image.Rectangle { return s.display }

// SetDisplay changes the output rectangle and repaints everything.
func (s *Scene) SetDisplay(r image.Rectangle) {
	s.display = r
	s.targetRect = r
	s.AddRepaintFull()
}

// SetRepaintTrigger installs a callback run whenever repaints are added.
func (s *Scene) SetRepaintTrigger(fn func()) { s.trigger = fn }

// Repaints.

// AddRepaint schedules a repaint of r in screen coordinates.
func (s *Scene) AddRepaint(r region.Region) {
	r = r.IntersectRect(s.display)
	if r.IsEmpty() {
		return
	}
	s.pending = s.pending.Union(r)
	if s.trigger != nil {
		s.trigger()
	}
}

// AddRepaintFull schedules a repaint of the whole output.
func (s *Scene) AddRepaintFull() {
	s.AddRepaint(region.Rect(s.display))
}

// TakeRepaints returns and clears the accumulated repaint region.
func (s *Scene) TakeRepaints() region.Region {
	r := s.pending
	s.pending = region.Region{}
	return r
}

// HasPendingRepaints reports whether the next frame has anything to
// draw: scene repaints or repaints queued on a window.
func (s *Scene) HasPendingRepaints() bool {
	if !s.pending.IsEmpty() {
		return true
	}
	if s.stack == nil {
		return false
	}
	for _, t := range s.stack.StackingOrder() {
		if !t.Repaints().IsEmpty() {
			return true
		}
	}
	return false
}

// Windows.

// windowFor returns the render window of t, creating it on first use.
func (s *Scene) windowFor(t win.Toplevel) *Window {
	if w, ok := s.windows[t.ID()]; ok {
		return w
	}
	s.nextID++
	w := newWindow(s, t, s.nextID)
	s.windows[t.ID()] = w
	return w
}

// WindowByID returns the render window of the logical window id.
func (s *Scene) WindowByID(id uint64) (*Window, bool) {
	w, ok := s.windows[id]
	return w, ok
}

// lookup maps an effect window back to its render window.
func (s *Scene) lookup(ew effect.Window) *Window {
	if e, ok := ew.(*effectWindow); ok && e.w.scene == s {
		return e.w
	}
	if ew == nil {
		return nil
	}
	return s.windows[ew.ID()]
}

// toplevel finds the logical window id in the stacking order.
func (s *Scene) toplevel(id uint64) win.Toplevel {
	if s.stack == nil {
		return nil
	}
	for _, t := range s.stack.StackingOrder() {
		if t.ID() == id {
			return t
		}
	}
	return nil
}

// buildStackingOrder refreshes the frame's window list from the stack,
// with elevated windows moved to the top.
func (s *Scene) buildStackingOrder() {
	s.order = s.order[:0]
	if s.stack == nil {
		return
	}
	for _, t := range s.stack.StackingOrder() {
		s.order = append(s.order, s.windowFor(t))
	}
	for _, ew := range s.effects.ElevatedWindows() {
		w := s.lookup(ew)
		i := slices.Index(s.order, w)
		if i < 0 {
			continue
		}
		s.order = append(slices.Delete(s.order, i, i+1), w)
	}
}

// StackingOrder returns the composited windows bottom to top.
func (s *Scene) StackingOrder() []effect.Window {
	if s.state == StateIdle {
		s.buildStackingOrder()
	}
	out := make([]effect.Window, len(s.order))
	for i, w := range s.order {
		out[i] = w.ew
	}
	return out
}

// Events.

// ProcessEvents applies the window changes queued since the last frame
// and tells effects about them. It must not run during a frame.
func (s *Scene) ProcessEvents() {
	if s.queue == nil || s.state != StateIdle {
		return
	}
	events, overflow := s.queue.Consume()
	if overflow {
		logging.Logger().Warn("scene: event queue overflowed, repainting everything")
		for _, w := range s.windows {
			w.InvalidateQuadsCache()
			w.updateShadow()
		}
		s.AddRepaintFull()
	}
	for _, e := range events {
		s.handle(e)
	}
}

func (s *Scene) handle(e event.Event) {
	if e.Kind == event.OutputChanged {
		s.AddRepaintFull()
		return
	}
	if e.Kind == event.StackingChanged {
		s.effects.NotifyStackingChanged()
		s.AddRepaintFull()
		return
	}

	w, ok := s.windows[e.Window]
	if !ok {
		if e.Kind != event.WindowAdded {
			return
		}
		t := s.toplevel(e.Window)
		if t == nil {
			return
		}
		w = s.windowFor(t)
	}

	switch e.Kind {
	case event.WindowAdded:
		s.effects.NotifyWindowAdded(w.ew)
		s.repaintWindow(w)
	case event.WindowClosed:
		s.effects.NotifyWindowClosed(w.ew)
		s.repaintWindow(w)
		// Releases the reference the space took on close. Effects that
		// animate the close took their own.
		w.top.Unref()
	case event.WindowDeleted:
		s.effects.NotifyWindowDeleted(w.ew)
		s.repaintWindow(w)
		w.release()
		delete(s.windows, e.Window)
	case event.GeometryChanged:
		old := s.expandedAt(w, e.Old)
		w.updateShadow()
		w.InvalidateQuadsCache()
		s.invalidateParent(w)
		s.effects.NotifyGeometryChanged(w.ew, e.Old)
		s.AddRepaint(region.Rect(old))
		s.repaintWindow(w)
	case event.ShapeChanged, event.DecorationChanged, event.ShadowChanged:
		if !e.Old.Empty() {
			s.AddRepaint(region.Rect(s.expandedAt(w, e.Old)))
		}
		if e.Kind == event.ShadowChanged {
			w.updateShadow()
		}
		w.InvalidateQuadsCache()
		s.invalidateParent(w)
		s.repaintWindow(w)
	case event.ContentDamaged:
		w.UpdateBuffer()
		if u, ok := w.current.(Updater); ok && w.current.IsValid() {
			u.Update(e.Region)
		}
		s.AddRepaint(e.Region.Add(w.top.RenderGeometry().Min))
	case event.ContentStale:
		w.DiscardBuffer()
		s.invalidateParent(w)
		s.repaintWindow(w)
	case event.OpacityChanged:
		s.repaintWindow(w)
	case event.StateChanged:
		s.effects.NotifyStateChanged(w.ew)
		s.repaintWindow(w)
	}
}

// expandedAt returns w's expanded geometry as it was with frame old.
func (s *Scene) expandedAt(w *Window, old image.Rectangle) image.Rectangle {
	if w.shadow == nil || w.shadow.IsDropped() {
		return old
	}
	o := w.shadow.Offset()
	return image.Rect(old.Min.X-o.Left, old.Min.Y-o.Top, old.Max.X+o.Right, old.Max.Y+o.Bottom)
}

func (s *Scene) invalidateParent(w *Window) {
	for p := w.parent; p != nil; p = p.parent {
		p.InvalidateQuadsCache()
	}
}

func (s *Scene) repaintWindow(w *Window) {
	s.AddRepaint(region.Rect(w.ExpandedGeometry()))
}

// Render target.

// SetRenderTarget sets the area of the screen the output covers and its
// scale.
func (s *Scene) SetRenderTarget(r image.Rectangle, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	s.targetRect, s.targetScale = r, scale
}

// RenderTarget returns the render target rectangle and scale.
func (s *Scene) RenderTarget() (image.Rectangle, float64) {
	return s.targetRect, s.targetScale
}

// MapToRenderTarget maps a screen region into render target pixels.
func (s *Scene) MapToRenderTarget(r region.Region) region.Region {
	return r.Translate(-s.targetRect.Min.X, -s.targetRect.Min.Y).Scale(s.targetScale)
}
