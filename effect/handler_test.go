package effect

import (
	"errors"
	"image"
	"slices"
	"sync"
	"testing"

	"github.com/gogpu/compositor/quad"
)

type plainEffect struct {
	active     bool
	destroyed  bool
	reconfigs  int
	added      []uint64
	fullScreen int
	keys       []KeyEvent
	mouse      int
}

func (e *plainEffect) IsActive() bool                   { return e.active }
func (e *plainEffect) Destroy()                         { e.destroyed = true }
func (e *plainEffect) Reconfigure()                     { e.reconfigs++ }
func (e *plainEffect) WindowAdded(w Window)             { e.added = append(e.added, w.ID()) }
func (e *plainEffect) ActiveFullScreenEffectChanged()   { e.fullScreen++ }
func (e *plainEffect) GrabbedKeyboardEvent(k KeyEvent)  { e.keys = append(e.keys, k) }
func (e *plainEffect) WindowInputMouseEvent(MouseEvent) { e.mouse++ }

type fakeInput struct {
	grabbed     bool
	refuse      bool
	intercepted bool
	starts      int
}

func (in *fakeInput) GrabKeyboard() bool {
	if in.refuse {
		return false
	}
	in.grabbed = true
	return true
}

func (in *fakeInput) UngrabKeyboard()         { in.grabbed = false }
func (in *fakeInput) StartMouseInterception() { in.intercepted = true; in.starts++ }
func (in *fakeInput) StopMouseInterception()  { in.intercepted = false }

func TestLoadTwice(t *testing.T) {
	h, _ := newTestHandler(t)
	if err := h.Load("a", &plainEffect{}); err != nil {
		t.Fatal(err)
	}
	if err := h.Load("a", &plainEffect{}); !errors.Is(err, ErrAlreadyLoaded) {
		t.Errorf("second Load error = %v, want ErrAlreadyLoaded", err)
	}
	if err := h.Unload("missing"); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Unload(missing) error = %v, want ErrNotLoaded", err)
	}
}

func TestUnloadDeferredDuringPaint(t *testing.T) {
	h, s := newTestHandler(t)
	e := &plainEffect{active: true}
	h.Load("a", e)

	h.StartPaint()
	if err := h.Unload("a"); err != nil {
		t.Fatal(err)
	}
	if !h.IsLoaded("a") {
		t.Fatal("effect unloaded in the middle of a frame")
	}
	if got := h.ActiveEffects(); len(got) != 1 {
		t.Errorf("ActiveEffects() = %v, want [a]", got)
	}
	before := s.fullRepaints
	h.FinishPaint()

	if h.IsLoaded("a") {
		t.Error("deferred unload not applied after FinishPaint")
	}
	if !e.destroyed {
		t.Error("Destroy not called")
	}
	if s.fullRepaints <= before {
		t.Error("chain change did not request a repaint")
	}
}

func TestLoadDeferredDuringPaint(t *testing.T) {
	h, _ := newTestHandler(t)
	h.StartPaint()
	if err := h.Load("late", &plainEffect{active: true}); err != nil {
		t.Fatal(err)
	}
	if err := h.Load("late", &plainEffect{}); !errors.Is(err, ErrAlreadyLoaded) {
		t.Errorf("duplicate deferred Load error = %v, want ErrAlreadyLoaded", err)
	}
	if h.IsLoaded("late") {
		t.Error("load applied during the frame")
	}
	h.FinishPaint()
	if !h.IsLoaded("late") {
		t.Error("deferred load not applied")
	}
}

func TestActiveSnapshotIsPerFrame(t *testing.T) {
	h, _ := newTestHandler(t)
	e := &plainEffect{active: true}
	h.Load("a", e)

	h.StartPaint()
	e.active = false
	if got := h.ActiveEffects(); len(got) != 1 {
		t.Errorf("snapshot changed mid-frame: %v", got)
	}
	h.FinishPaint()

	h.StartPaint()
	if got := h.ActiveEffects(); len(got) != 0 {
		t.Errorf("ActiveEffects() = %v, want none", got)
	}
	h.FinishPaint()
}

func TestRegistryLoadByName(t *testing.T) {
	r := NewRegistry()
	created := 0
	if err := r.Register("blur", Factory{
		New:       func(*Handler) Effect { created++; return &plainEffect{} },
		Supported: func() bool { return false },
	}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("dim", Factory{
		New:              func(*Handler) Effect { created++; return &plainEffect{} },
		EnabledByDefault: true,
	}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("dim", Factory{New: func(*Handler) Effect { return nil }}); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("duplicate Register error = %v", err)
	}
	if err := r.Register("nil", Factory{}); !errors.Is(err, ErrInvalidFactory) {
		t.Errorf("Register without New error = %v", err)
	}

	h := NewHandler(r, nil)
	if err := h.LoadByName("blur"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("LoadByName(blur) error = %v, want ErrUnsupported", err)
	}
	if err := h.LoadByName("nope"); !errors.Is(err, ErrUnknownEffect) {
		t.Errorf("LoadByName(nope) error = %v, want ErrUnknownEffect", err)
	}
	if err := h.LoadByName("dim", AtPosition(5)); err != nil {
		t.Fatal(err)
	}
	if created != 1 {
		t.Errorf("factories called %d times, want 1", created)
	}
	if got := r.Defaults(); !slices.Equal(got, []string{"dim"}) {
		t.Errorf("Defaults() = %v, want [dim]", got)
	}
	if err := h.Toggle("dim"); err != nil || h.IsLoaded("dim") {
		t.Errorf("Toggle(dim) = %v, loaded=%v; want unloaded", err, h.IsLoaded("dim"))
	}
}

func TestReconfigure(t *testing.T) {
	h, _ := newTestHandler(t)
	e := &plainEffect{}
	h.Load("a", e)
	if err := h.Reconfigure("a"); err != nil {
		t.Fatal(err)
	}
	if e.reconfigs != 1 {
		t.Errorf("reconfigs = %d, want 1", e.reconfigs)
	}
	if err := h.Reconfigure("b"); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Reconfigure(b) error = %v", err)
	}
}

func TestFullScreenSlot(t *testing.T) {
	h, _ := newTestHandler(t)
	a, b := &plainEffect{}, &plainEffect{}
	h.Load("a", a)
	h.Load("b", b)

	h.SetActiveFullScreenEffect(a)
	if h.ActiveFullScreenEffect() != a {
		t.Fatal("slot not claimed")
	}
	if b.fullScreen != 1 {
		t.Errorf("observer notified %d times, want 1", b.fullScreen)
	}
	h.Unload("a")
	if h.HasActiveFullScreenEffect() {
		t.Error("unloading the owner did not clear the slot")
	}
}

func TestKeyboardGrab(t *testing.T) {
	in := &fakeInput{}
	h := NewHandler(nil, in)
	a, b := &plainEffect{}, &plainEffect{}
	h.Load("a", a)
	h.Load("b", b)

	if !h.GrabKeyboard(a) {
		t.Fatal("GrabKeyboard(a) = false")
	}
	if h.GrabKeyboard(b) {
		t.Error("second grab succeeded")
	}
	h.GrabbedKeyboardEvent(KeyEvent{Rune: 'x', Pressed: true})
	if len(a.keys) != 1 || len(b.keys) != 0 {
		t.Errorf("key delivery a=%d b=%d, want 1 and 0", len(a.keys), len(b.keys))
	}
	h.Unload("a")
	if h.KeyboardGrab() != nil || in.grabbed {
		t.Error("unload did not release the keyboard grab")
	}

	in.refuse = true
	if h.GrabKeyboard(b) {
		t.Error("grab succeeded although input refused")
	}
}

func TestMouseInterceptionMultiplexed(t *testing.T) {
	in := &fakeInput{}
	h := NewHandler(nil, in)
	a, b := &plainEffect{}, &plainEffect{}

	h.StartMouseInterception(a)
	h.StartMouseInterception(b)
	h.StartMouseInterception(a)
	if in.starts != 1 {
		t.Errorf("input interception started %d times, want 1", in.starts)
	}
	h.ForwardMouseEvent(MouseEvent{Pos: image.Pt(1, 1)})
	if a.mouse != 1 || b.mouse != 1 {
		t.Errorf("mouse delivery a=%d b=%d, want 1 each", a.mouse, b.mouse)
	}

	h.StopMouseInterception(a)
	if !in.intercepted || !h.IsMouseInterception() {
		t.Error("interception stopped while b still grabs")
	}
	h.StopMouseInterception(b)
	if in.intercepted || h.IsMouseInterception() {
		t.Error("interception still running after last grabber left")
	}
}

func TestElevatedWindows(t *testing.T) {
	h, _ := newTestHandler(t)
	w := newFakeWindow(3)
	h.SetElevatedWindow(w, true)
	h.SetElevatedWindow(w, true)
	if got := h.ElevatedWindows(); len(got) != 1 {
		t.Fatalf("ElevatedWindows() = %d, want 1", len(got))
	}
	h.NotifyWindowDeleted(w)
	if got := h.ElevatedWindows(); len(got) != 0 {
		t.Errorf("deleted window still elevated")
	}
}

type idleEffect struct{ name string }

func (*idleEffect) IsActive() bool { return false }

func TestSlotsFromSeveralGoroutines(t *testing.T) {
	in := &fakeInput{}
	h := NewHandler(nil, in)
	e := &idleEffect{name: "a"}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 200 {
			if err := h.Load("a", e); err != nil {
				t.Errorf("Load: %v", err)
				return
			}
			h.SetActiveFullScreenEffect(e)
			h.GrabKeyboard(e)
			h.StartMouseInterception(e)
			if err := h.Unload("a"); err != nil {
				t.Errorf("Unload: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := range 200 {
			w := newFakeWindow(uint64(i))
			h.SetElevatedWindow(w, true)
			h.HasActiveFullScreenEffect()
			h.KeyboardGrab()
			h.ForwardMouseEvent(MouseEvent{})
			h.NotifyWindowDeleted(w)
		}
	}()
	wg.Wait()

	if h.HasActiveFullScreenEffect() {
		t.Error("full-screen slot still held after unload")
	}
	if h.KeyboardGrab() != nil {
		t.Error("keyboard grab still held after unload")
	}
	if h.IsMouseInterception() {
		t.Error("mouse interception still running after unload")
	}
	if got := h.ElevatedWindows(); len(got) != 0 {
		t.Errorf("ElevatedWindows() = %d, want 0", len(got))
	}
}

func TestUngrabByOtherEffectKeepsGrab(t *testing.T) {
	h := NewHandler(nil, &fakeInput{})
	a, b := &plainEffect{}, &plainEffect{}
	h.Load("a", a)
	h.Load("b", b)
	h.GrabKeyboard(a)
	h.SetActiveFullScreenEffect(a)

	h.Unload("b")
	if h.KeyboardGrab() != a {
		t.Errorf("KeyboardGrab() = %v, want a", h.KeyboardGrab())
	}
	if h.ActiveFullScreenEffect() != a {
		t.Errorf("ActiveFullScreenEffect() = %v, want a", h.ActiveFullScreenEffect())
	}
}

func TestNewWindowQuadType(t *testing.T) {
	h, _ := newTestHandler(t)
	a, b := h.NewWindowQuadType(), h.NewWindowQuadType()
	if a != quad.TypeEffectStart || b != quad.TypeEffectStart+1 {
		t.Errorf("quad types = %v, %v; want %d, %d", a, b, quad.TypeEffectStart, quad.TypeEffectStart+1)
	}
}

func TestNotificationsReachLoadedEffects(t *testing.T) {
	h, _ := newTestHandler(t)
	e := &plainEffect{active: false}
	h.Load("a", e)
	h.NotifyWindowAdded(newFakeWindow(9))
	if len(e.added) != 1 || e.added[0] != 9 {
		t.Errorf("added = %v, want [9]", e.added)
	}
}
