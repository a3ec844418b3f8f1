package effect

import (
	"fmt"
	"image"
	"slices"
	"sync"

	"github.com/gogpu/compositor/internal/logging"
	"github.com/gogpu/compositor/quad"
	"github.com/gogpu/compositor/region"
)

type entry struct {
	name     string
	effect   Effect
	position int
	index    int // load order for stable sort
}

// LoadOption adjusts how an effect is loaded.
type LoadOption func(*entry)

// AtPosition overrides the chain position the effect requests.
func AtPosition(p int) LoadOption {
	return func(e *entry) { e.position = p }
}

// Handler owns the loaded effects and walks the paint stages through them.
//
// Paint stages run on the frame goroutine only. Load, Unload, the
// notification methods and the grab and elevation methods may be called
// from any goroutine; changes to the chain made while a frame is being
// painted are deferred until EffectsChanged runs between frames.
type Handler struct {
	registry *Registry
	input    Input

	mu       sync.Mutex
	scene    Scene
	loaded   []entry
	pending  []func()
	loading  map[string]bool // names with a deferred load
	loadSeq  int
	painting bool

	// active is the per-frame snapshot taken by StartPaint. Only the frame
	// goroutine touches it.
	active []entry

	// slots guards the exclusive slots and the elevated set. Callbacks into
	// effects and windows run without it held.
	slots        sync.Mutex
	fullScreen   Effect
	keyboardGrab Effect
	mouseGrabs   []Effect
	elevated     []Window
	nextQuadType quad.Type
}

// NewHandler returns a handler creating effects from r. r may be nil
// when effects are only loaded as instances.
func NewHandler(r *Registry, in Input) *Handler {
	return &Handler{
		registry:     r,
		input:        in,
		loading:      make(map[string]bool),
		nextQuadType: quad.TypeEffectStart,
	}
}

// Bind attaches the scene that provides the terminal stages.
func (h *Handler) Bind(s Scene) {
	h.mu.Lock()
	h.scene = s
	h.mu.Unlock()
}

func (h *Handler) sceneRef() Scene {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scene
}

// Registry returns the factory registry, which may be nil.
func (h *Handler) Registry() *Registry { return h.registry }

// Load adds e to the chain under name. While a frame is being painted the
// load is deferred to the next EffectsChanged.
func (h *Handler) Load(name string, e Effect, opts ...LoadOption) error {
	h.mu.Lock()
	if h.isLoadedLocked(name) || h.loading[name] {
		h.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrAlreadyLoaded, name)
	}
	en := entry{name: name, effect: e, index: h.loadSeq}
	h.loadSeq++
	if p, ok := e.(Positioner); ok {
		en.position = p.RequestedEffectChainPosition()
	}
	for _, o := range opts {
		o(&en)
	}
	op := func() { h.insertLocked(en) }
	if h.painting {
		h.loading[name] = true
		h.pending = append(h.pending, func() {
			delete(h.loading, name)
			op()
		})
		h.mu.Unlock()
		logging.Logger().Debug("effect: load deferred until frame end", "effect", name)
		return nil
	}
	op()
	h.mu.Unlock()
	h.changed()
	return nil
}

// LoadByName creates and loads the effect registered under name.
func (h *Handler) LoadByName(name string, opts ...LoadOption) error {
	if h.registry == nil {
		return fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}
	f, ok := h.registry.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}
	if !f.supported() {
		return fmt.Errorf("%w: %q", ErrUnsupported, name)
	}
	if h.IsLoaded(name) {
		return fmt.Errorf("%w: %q", ErrAlreadyLoaded, name)
	}
	return h.Load(name, f.New(h), opts...)
}

// insertLocked keeps loaded sorted by position, then load order.
func (h *Handler) insertLocked(en entry) {
	pos := len(h.loaded)
	for i, e := range h.loaded {
		if en.position < e.position || (en.position == e.position && en.index < e.index) {
			pos = i
			break
		}
	}
	h.loaded = slices.Insert(h.loaded, pos, en)
}

// Unload removes the effect loaded under name.
func (h *Handler) Unload(name string) error {
	h.mu.Lock()
	if !h.isLoadedLocked(name) {
		h.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNotLoaded, name)
	}
	if h.painting {
		h.pending = append(h.pending, func() { h.removeLocked(name) })
		h.mu.Unlock()
		logging.Logger().Debug("effect: unload deferred until frame end", "effect", name)
		return nil
	}
	e := h.removeLocked(name)
	h.mu.Unlock()
	h.destroy(e)
	h.changed()
	return nil
}

// removeLocked drops name from the chain and returns the removed effect,
// or nil.
func (h *Handler) removeLocked(name string) Effect {
	i := slices.IndexFunc(h.loaded, func(e entry) bool { return e.name == name })
	if i < 0 {
		return nil
	}
	e := h.loaded[i].effect
	h.loaded = slices.Delete(h.loaded, i, i+1)
	return e
}

// destroy releases the exclusive slots an unloaded effect held.
func (h *Handler) destroy(e Effect) {
	if e == nil {
		return
	}
	h.swapFullScreen(e, nil)
	h.ungrabKeyboard(e)
	h.StopMouseInterception(e)
	if d, ok := e.(Destroyer); ok {
		d.Destroy()
	}
}

// Toggle loads name when it is not loaded and unloads it otherwise.
func (h *Handler) Toggle(name string) error {
	if h.IsLoaded(name) {
		return h.Unload(name)
	}
	return h.LoadByName(name)
}

// Reconfigure asks the named effect to reload its settings.
func (h *Handler) Reconfigure(name string) error {
	e, ok := h.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotLoaded, name)
	}
	if r, ok := e.(Reconfigurer); ok {
		r.Reconfigure()
	}
	h.AddRepaintFull()
	return nil
}

// IsLoaded reports whether name is in the chain.
func (h *Handler) IsLoaded(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.isLoadedLocked(name)
}

func (h *Handler) isLoadedLocked(name string) bool {
	return slices.ContainsFunc(h.loaded, func(e entry) bool { return e.name == name })
}

// Lookup returns the effect loaded under name.
func (h *Handler) Lookup(name string) (Effect, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.loaded {
		if e.name == name {
			return e.effect, true
		}
	}
	return nil, false
}

// Loaded returns the loaded effect names in chain order.
func (h *Handler) Loaded() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, len(h.loaded))
	for i, e := range h.loaded {
		names[i] = e.name
	}
	return names
}

// ActiveEffects returns the names in the current frame snapshot.
func (h *Handler) ActiveEffects() []string {
	names := make([]string, len(h.active))
	for i, e := range h.active {
		names[i] = e.name
	}
	return names
}

// HasActiveEffects reports whether any loaded effect is active right now.
// The compositor keeps scheduling frames while it is true.
func (h *Handler) HasActiveEffects() bool {
	h.mu.Lock()
	loaded := slices.Clone(h.loaded)
	h.mu.Unlock()
	return slices.ContainsFunc(loaded, func(e entry) bool { return e.effect.IsActive() })
}

// EffectsChanged applies deferred loads and unloads. The scene calls it
// between frames.
func (h *Handler) EffectsChanged() {
	h.mu.Lock()
	if h.painting || len(h.pending) == 0 {
		h.mu.Unlock()
		return
	}
	before := slices.Clone(h.loaded)
	ops := h.pending
	h.pending = nil
	for _, op := range ops {
		op()
	}
	after := slices.Clone(h.loaded)
	h.mu.Unlock()

	for _, e := range before {
		if !slices.ContainsFunc(after, func(a entry) bool { return a.effect == e.effect }) {
			h.destroy(e.effect)
		}
	}
	h.changed()
}

func (h *Handler) changed() {
	h.AddRepaintFull()
}

// StartPaint takes the active-effect snapshot for one frame. Changes to
// the chain are deferred until FinishPaint.
func (h *Handler) StartPaint() {
	h.mu.Lock()
	h.painting = true
	loaded := slices.Clone(h.loaded)
	h.mu.Unlock()

	h.active = h.active[:0]
	for _, e := range loaded {
		if e.effect.IsActive() {
			h.active = append(h.active, e)
		}
	}
}

// FinishPaint ends the frame and applies deferred chain changes.
func (h *Handler) FinishPaint() {
	h.mu.Lock()
	h.painting = false
	h.mu.Unlock()
	h.EffectsChanged()
}

// IsPainting reports whether a frame is in progress.
func (h *Handler) IsPainting() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.painting
}

// snapshot returns the effects for a stage walk: the frame snapshot while
// painting, a fresh one otherwise.
func (h *Handler) snapshot() []entry {
	h.mu.Lock()
	painting := h.painting
	loaded := slices.Clone(h.loaded)
	h.mu.Unlock()
	if painting {
		return h.active
	}
	out := loaded[:0]
	for _, e := range loaded {
		if e.effect.IsActive() {
			out = append(out, e)
		}
	}
	return out
}

func (h *Handler) loadedSnapshot() []entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.loaded)
}

// Full-screen effect slot.

// SetActiveFullScreenEffect claims or releases (nil) the single
// full-screen slot.
func (h *Handler) SetActiveFullScreenEffect(e Effect) {
	h.slots.Lock()
	old := h.fullScreen
	h.slots.Unlock()
	h.swapFullScreen(old, e)
}

// swapFullScreen replaces the slot holder old with e. It does nothing
// when the slot has changed hands since old was read.
func (h *Handler) swapFullScreen(old, e Effect) {
	h.slots.Lock()
	if h.fullScreen != old || old == e {
		h.slots.Unlock()
		return
	}
	h.fullScreen = e
	h.slots.Unlock()
	for _, en := range h.loadedSnapshot() {
		if o, ok := en.effect.(FullScreenObserver); ok {
			o.ActiveFullScreenEffectChanged()
		}
	}
	h.AddRepaintFull()
}

func (h *Handler) ActiveFullScreenEffect() Effect {
	h.slots.Lock()
	defer h.slots.Unlock()
	return h.fullScreen
}

func (h *Handler) HasActiveFullScreenEffect() bool { return h.ActiveFullScreenEffect() != nil }

// Keyboard grab.

// GrabKeyboard routes keyboard input to e. It fails when another effect
// holds the grab or the input layer refuses.
func (h *Handler) GrabKeyboard(e Effect) bool {
	h.slots.Lock()
	defer h.slots.Unlock()
	if h.keyboardGrab != nil {
		return false
	}
	if h.input != nil && !h.input.GrabKeyboard() {
		return false
	}
	h.keyboardGrab = e
	return true
}

func (h *Handler) UngrabKeyboard() { h.ungrabKeyboard(nil) }

// ungrabKeyboard releases the grab when it is held by e, or by anyone
// when e is nil.
func (h *Handler) ungrabKeyboard(e Effect) {
	h.slots.Lock()
	defer h.slots.Unlock()
	if h.keyboardGrab == nil || (e != nil && h.keyboardGrab != e) {
		return
	}
	if h.input != nil {
		h.input.UngrabKeyboard()
	}
	h.keyboardGrab = nil
}

func (h *Handler) KeyboardGrab() Effect {
	h.slots.Lock()
	defer h.slots.Unlock()
	return h.keyboardGrab
}

// GrabbedKeyboardEvent delivers ev to the grabbing effect.
func (h *Handler) GrabbedKeyboardEvent(ev KeyEvent) {
	if k, ok := h.KeyboardGrab().(KeyHandler); ok {
		k.GrabbedKeyboardEvent(ev)
	}
}

// Mouse interception. Several effects may intercept at once; interception
// runs while at least one does.

func (h *Handler) StartMouseInterception(e Effect) {
	h.slots.Lock()
	defer h.slots.Unlock()
	if slices.Contains(h.mouseGrabs, e) {
		return
	}
	h.mouseGrabs = append(h.mouseGrabs, e)
	if len(h.mouseGrabs) == 1 && h.input != nil {
		h.input.StartMouseInterception()
	}
}

func (h *Handler) StopMouseInterception(e Effect) {
	h.slots.Lock()
	defer h.slots.Unlock()
	i := slices.Index(h.mouseGrabs, e)
	if i < 0 {
		return
	}
	h.mouseGrabs = slices.Delete(h.mouseGrabs, i, i+1)
	if len(h.mouseGrabs) == 0 && h.input != nil {
		h.input.StopMouseInterception()
	}
}

func (h *Handler) IsMouseInterception() bool {
	h.slots.Lock()
	defer h.slots.Unlock()
	return len(h.mouseGrabs) > 0
}

// ForwardMouseEvent delivers ev to every intercepting effect.
func (h *Handler) ForwardMouseEvent(ev MouseEvent) bool {
	h.slots.Lock()
	grabs := slices.Clone(h.mouseGrabs)
	h.slots.Unlock()
	for _, e := range grabs {
		if m, ok := e.(MouseHandler); ok {
			m.WindowInputMouseEvent(ev)
		}
	}
	return len(grabs) > 0
}

// Elevated windows stay on top of the stacking order.

func (h *Handler) SetElevatedWindow(w Window, elevate bool) {
	h.slots.Lock()
	i := slices.IndexFunc(h.elevated, func(e Window) bool { return e.ID() == w.ID() })
	switch {
	case elevate && i < 0:
		h.elevated = append(h.elevated, w)
	case !elevate && i >= 0:
		h.elevated = slices.Delete(h.elevated, i, i+1)
	default:
		h.slots.Unlock()
		return
	}
	h.slots.Unlock()
	w.AddRepaintFull()
}

func (h *Handler) ElevatedWindows() []Window {
	h.slots.Lock()
	defer h.slots.Unlock()
	return slices.Clone(h.elevated)
}

// NewWindowQuadType allocates a quad type for effect-defined quads.
func (h *Handler) NewWindowQuadType() quad.Type {
	h.mu.Lock()
	defer h.mu.Unlock()
	t := h.nextQuadType
	h.nextQuadType++
	return t
}

// Scene access for effects.

func (h *Handler) AddRepaint(r image.Rectangle) {
	if s := h.sceneRef(); s != nil {
		s.AddRepaint(region.Rect(r))
	}
}

func (h *Handler) AddRepaintRegion(r region.Region) {
	if s := h.sceneRef(); s != nil {
		s.AddRepaint(r)
	}
}

func (h *Handler) AddRepaintFull() {
	if s := h.sceneRef(); s != nil {
		s.AddRepaintFull()
	}
}

// StackingOrder returns the composited windows bottom to top.
func (h *Handler) StackingOrder() []Window {
	if s := h.sceneRef(); s != nil {
		return s.StackingOrder()
	}
	return nil
}

// DisplayRect returns the output rectangle.
func (h *Handler) DisplayRect() image.Rectangle {
	if s := h.sceneRef(); s != nil {
		return s.DisplayRect()
	}
	return image.Rectangle{}
}

// Notifications.

func (h *Handler) NotifyWindowAdded(w Window) {
	for _, en := range h.loadedSnapshot() {
		if o, ok := en.effect.(WindowAddedObserver); ok {
			h.notify(en, func() { o.WindowAdded(w) })
		}
	}
}

func (h *Handler) NotifyWindowClosed(w Window) {
	for _, en := range h.loadedSnapshot() {
		if o, ok := en.effect.(WindowClosedObserver); ok {
			h.notify(en, func() { o.WindowClosed(w) })
		}
	}
}

// NotifyWindowDeleted tells effects a remnant is gone and drops it from
// the elevated set.
func (h *Handler) NotifyWindowDeleted(w Window) {
	h.slots.Lock()
	h.elevated = slices.DeleteFunc(h.elevated, func(e Window) bool { return e.ID() == w.ID() })
	h.slots.Unlock()
	for _, en := range h.loadedSnapshot() {
		if o, ok := en.effect.(WindowDeletedObserver); ok {
			h.notify(en, func() { o.WindowDeleted(w) })
		}
	}
}

func (h *Handler) NotifyGeometryChanged(w Window, old image.Rectangle) {
	for _, en := range h.loadedSnapshot() {
		if o, ok := en.effect.(WindowGeometryObserver); ok {
			h.notify(en, func() { o.WindowGeometryChanged(w, old) })
		}
	}
}

func (h *Handler) NotifyStateChanged(w Window) {
	for _, en := range h.loadedSnapshot() {
		if o, ok := en.effect.(WindowStateObserver); ok {
			h.notify(en, func() { o.WindowStateChanged(w) })
		}
	}
}

func (h *Handler) NotifyStackingChanged() {
	for _, en := range h.loadedSnapshot() {
		if o, ok := en.effect.(StackingObserver); ok {
			h.notify(en, o.StackingOrderChanged)
		}
	}
}

func (h *Handler) notify(en entry, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Logger().Warn("effect: notification panicked", "effect", en.name, "panic", r)
		}
	}()
	fn()
}
