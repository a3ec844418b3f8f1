package win

import (
	"image"
	"slices"
	"sync"

	"github.com/gogpu/compositor/event"
)

// Space owns the stacking order of in-process windows and publishes their
// changes on an event queue.
type Space struct {
	queue *event.Queue

	mu      sync.Mutex
	nextID  uint64
	stack   []*Window // bottom to top
	desktop int
	locked  bool
	notify  func()
}

var _ Stack = (*Space)(nil)

// NewSpace returns an empty space publishing to q.
func NewSpace(q *event.Queue) *Space {
	return &Space{queue: q, desktop: 1}
}

// Queue returns the event queue the space publishes to.
func (s *Space) Queue() *event.Queue { return s.queue }

// SetNotify installs a callback run after every change. The compositor
// uses it to wake its frame loop.
func (s *Space) SetNotify(fn func()) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

// Options configures a new window.
type Options struct {
	Kind     Kind
	Caption  string
	Geometry image.Rectangle
	Opacity  float64 // zero means fully opaque
	HasAlpha bool
	Managed  bool
	Desktop  int
	// Decoration adds server-side borders around the client area.
	Decoration *Decoration
}

// NewWindow creates an unmapped window on top of the stack. It has no
// content until SetContent is called.
func (s *Space) NewWindow(o Options) *Window {
	s.mu.Lock()
	s.nextID++
	w := &Window{
		space:    s,
		id:       s.nextID,
		kind:     o.Kind,
		caption:  o.Caption,
		frame:    o.Geometry,
		opacity:  1,
		scale:    1,
		desktop:  o.Desktop,
		hasAlpha: o.HasAlpha,
	}
	if o.Opacity > 0 {
		w.opacity = min(o.Opacity, 1)
	}
	if o.Managed {
		w.state |= Managed
	}
	if o.Decoration != nil {
		w.decoration, w.hasDecoration = *o.Decoration, true
		if w.decoration.Title == "" {
			w.decoration.Title = o.Caption
		}
	}
	s.stack = append(s.stack, w)
	s.mu.Unlock()

	w.emit(event.Event{Kind: event.WindowAdded})
	s.push(event.Event{Kind: event.StackingChanged})
	return w
}

// StackingOrder returns the windows bottom to top, remnants included.
func (s *Space) StackingOrder() []Toplevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Toplevel, len(s.stack))
	for i, w := range s.stack {
		out[i] = w
	}
	return out
}

// Windows returns the concrete windows bottom to top.
func (s *Space) Windows() []*Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.stack)
}

// Raise moves w to the top of the stack.
func (s *Space) Raise(w *Window) {
	s.restack(w, func(rest []*Window) []*Window { return append(rest, w) })
}

// Lower moves w to the bottom of the stack.
func (s *Space) Lower(w *Window) {
	s.restack(w, func(rest []*Window) []*Window { return append([]*Window{w}, rest...) })
}

func (s *Space) restack(w *Window, place func([]*Window) []*Window) {
	s.mu.Lock()
	i := slices.Index(s.stack, w)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	rest := slices.Delete(slices.Clone(s.stack), i, i+1)
	next := place(rest)
	changed := !slices.Equal(next, s.stack)
	s.stack = next
	s.mu.Unlock()
	if changed {
		s.push(event.Event{Kind: event.StackingChanged})
	}
}

// Close turns w into a remnant. The space holds one reference that the
// scene releases once effects have been told about the close, so an effect
// that takes its own reference keeps the remnant on screen.
func (s *Space) Close(w *Window) {
	w.mu.Lock()
	if w.state.Has(Deleted) {
		w.mu.Unlock()
		return
	}
	w.state |= Deleted
	w.refs++
	w.mu.Unlock()
	w.emit(event.Event{Kind: event.WindowClosed, Old: w.Geometry()})
}

func (s *Space) remove(w *Window) {
	if s == nil {
		return
	}
	s.unstack(w)
	w.emit(event.Event{Kind: event.WindowDeleted, Old: w.Geometry()})
	s.push(event.Event{Kind: event.StackingChanged})
}

func (s *Space) unstack(w *Window) {
	if s == nil {
		return
	}
	s.mu.Lock()
	if i := slices.Index(s.stack, w); i >= 0 {
		s.stack = slices.Delete(s.stack, i, i+1)
	}
	s.mu.Unlock()
}

// CurrentDesktop returns the visible desktop, counting from 1.
func (s *Space) CurrentDesktop() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desktop
}

// SetCurrentDesktop switches desktops. Every window's visibility may change.
func (s *Space) SetCurrentDesktop(d int) {
	s.mu.Lock()
	s.desktop = d
	s.mu.Unlock()
	s.push(event.Event{Kind: event.OutputChanged})
}

// Lock engages the screen locker.
func (s *Space) Lock(locked bool) {
	s.mu.Lock()
	s.locked = locked
	s.mu.Unlock()
	s.push(event.Event{Kind: event.OutputChanged})
}

// ScreenLocked reports whether the screen locker is engaged.
func (s *Space) ScreenLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

func (s *Space) push(e event.Event) {
	if s == nil {
		return
	}
	if s.queue != nil {
		s.queue.Push(e)
	}
	s.wake()
}

func (s *Space) wake() {
	if s == nil {
		return
	}
	s.mu.Lock()
	fn := s.notify
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
