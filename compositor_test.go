package compositor

import (
	"context"
	"errors"
	"image"
	"image/color"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/compositor/backend"
	"github.com/gogpu/compositor/backend/native"
	"github.com/gogpu/compositor/effect"
	"github.com/gogpu/compositor/effect/builtin"
	"github.com/gogpu/compositor/region"
	"github.com/gogpu/compositor/win"
)

var (
	testDisplay = image.Rect(0, 0, 100, 100)
	red         = color.RGBA{R: 200, A: 255}
)

// testClock is a presentation clock advanced by hand.
type testClock struct {
	mu  sync.Mutex
	now time.Duration
}

func (c *testClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()
}

// recorder is a presenter keeping the last frame.
type recorder struct {
	frames  int
	last    *image.RGBA
	damaged region.Region
	closed  int
}

func (r *recorder) Present(frame image.Image, damaged region.Region) error {
	r.frames++
	r.last = frame.(*image.RGBA)
	r.damaged = damaged
	return nil
}

func (r *recorder) Close() error {
	r.closed++
	return nil
}

func newTestCompositor(t *testing.T, opts ...Option) *Compositor {
	t.Helper()
	opts = append([]Option{WithBackendName(backend.BackendSoftware)}, opts...)
	c, err := New(testDisplay, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func mapWindow(c *Compositor, r image.Rectangle) *win.Window {
	w := c.Space().NewWindow(win.Options{Geometry: r, Managed: true})
	w.SetContent(image.NewUniform(red))
	return w
}

func TestNewEmptyDisplay(t *testing.T) {
	if _, err := New(image.Rectangle{}); !errors.Is(err, backend.ErrEmptyDisplay) {
		t.Errorf("New(empty) error = %v, want ErrEmptyDisplay", err)
	}
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(testDisplay, WithBackendName("nope"))
	if !errors.Is(err, backend.ErrBackendNotAvailable) {
		t.Errorf("New() error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestNewUnknownEffect(t *testing.T) {
	_, err := New(testDisplay, WithBackendName(backend.BackendSoftware), WithEffects("nope"))
	if !errors.Is(err, effect.ErrUnknownEffect) {
		t.Errorf("New() error = %v, want ErrUnknownEffect", err)
	}
}

func TestDefaultEffects(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want []string
	}{
		{"defaults", nil, []string{builtin.CrossFadeName, builtin.FadeName}},
		{"none", []Option{WithoutDefaultEffects()}, []string{}},
		{"extra", []Option{WithoutDefaultEffects(), WithEffects(builtin.GlowName, builtin.ZoomName)},
			[]string{builtin.ZoomName, builtin.GlowName}},
		{"moved default", []Option{WithEffectAt(builtin.CrossFadeName, 100)},
			[]string{builtin.FadeName, builtin.CrossFadeName}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompositor(t, tt.opts...)
			if got := c.Effects().Loaded(); !slices.Equal(got, tt.want) {
				t.Errorf("Loaded() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCustomRegistry(t *testing.T) {
	reg := effect.NewRegistry()
	if err := builtin.Register(reg, builtin.DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	c := newTestCompositor(t, WithRegistry(reg))
	if c.Effects().Registry() != reg {
		t.Error("compositor ignored the registry")
	}
}

func TestFirstFrameFullRepaint(t *testing.T) {
	c := newTestCompositor(t)
	res, ok := c.Composite()
	if !ok {
		t.Fatal("first Composite() painted nothing")
	}
	if !res.Damaged.Equal(region.Rect(testDisplay)) {
		t.Errorf("Damaged = %v, want the display", res.Damaged)
	}
	if _, ok := c.Composite(); ok {
		t.Error("second Composite() painted without repaints")
	}
	if c.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", c.Frames())
	}
}

func TestCompositePresentsWindow(t *testing.T) {
	rec := &recorder{}
	c := newTestCompositor(t, WithoutDefaultEffects(), WithPresenter(rec))
	c.Composite()

	mapWindow(c, image.Rect(10, 10, 30, 30))
	res, ok := c.Composite()
	if !ok {
		t.Fatal("mapping a window painted nothing")
	}
	if rec.frames != 2 {
		t.Errorf("presented %d frames, want 2", rec.frames)
	}
	if got := rec.last.RGBAAt(15, 15); got != red {
		t.Errorf("presented pixel = %v, want %v", got, red)
	}
	if !res.Damaged.Equal(region.Rect(image.Rect(10, 10, 30, 30))) {
		t.Errorf("Damaged = %v, want the window", res.Damaged)
	}
	if !rec.damaged.Equal(res.Damaged) {
		t.Errorf("presented damage = %v, want %v", rec.damaged, res.Damaged)
	}
}

func TestAddRepaintFromGoroutine(t *testing.T) {
	c := newTestCompositor(t, WithoutDefaultEffects())
	c.Composite()

	want := image.Rect(0, 0, 10, 10)
	done := make(chan struct{})
	go func() {
		c.AddRepaint(region.Rect(want))
		close(done)
	}()
	<-done

	res, ok := c.Composite()
	if !ok {
		t.Fatal("AddRepaint did not schedule a frame")
	}
	if !res.Damaged.Equal(region.Rect(want)) {
		t.Errorf("Damaged = %v, want %v", res.Damaged, want)
	}

	c.AddRepaintFull()
	if res, _ = c.Composite(); !res.Damaged.Equal(region.Rect(testDisplay)) {
		t.Errorf("Damaged = %v, want the display", res.Damaged)
	}
}

func TestActiveEffectKeepsPainting(t *testing.T) {
	clk := &testClock{}
	opts := builtin.DefaultOptions()
	opts.FadeDuration = 100 * time.Millisecond
	c := newTestCompositor(t, WithClock(clk.Now), WithBuiltinOptions(opts))
	c.Composite()

	mapWindow(c, image.Rect(10, 10, 30, 30))
	frames := 0
	for range 20 {
		if _, ok := c.Composite(); !ok {
			break
		}
		frames++
		clk.Advance(16 * time.Millisecond)
	}
	if frames < 6 || frames >= 20 {
		t.Errorf("fade painted %d frames, want it to run for about 100ms", frames)
	}
}

func TestResize(t *testing.T) {
	c := newTestCompositor(t, WithoutDefaultEffects())
	c.Composite()

	bigger := image.Rect(0, 0, 200, 120)
	c.Resize(bigger)
	res, ok := c.Composite()
	if !ok || !res.Damaged.Equal(region.Rect(bigger)) {
		t.Errorf("after Resize Damaged = %v, want %v", res.Damaged, bigger)
	}
	if got := c.Scene().DisplayRect(); got != bigger {
		t.Errorf("DisplayRect() = %v, want %v", got, bigger)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	c := newTestCompositor(t, WithFrameInterval(time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := c.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want DeadlineExceeded", err)
	}
	if c.Frames() == 0 {
		t.Error("Run() painted no frame")
	}
}

func TestFramesWhileRunning(t *testing.T) {
	c := newTestCompositor(t, WithFrameInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for c.Frames() < 2 && time.Now().Before(deadline) {
		c.AddRepaintFull()
		time.Sleep(time.Millisecond)
	}
	got := c.Frames()
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want Canceled", err)
	}
	if got < 2 {
		t.Errorf("Frames() = %d while running, want at least 2", got)
	}
	if after := c.Frames(); after < got {
		t.Errorf("Frames() = %d after Run, want at least %d", after, got)
	}
}

func TestRunTwice(t *testing.T) {
	c := newTestCompositor(t)
	c.running.Store(true)
	if err := c.Run(context.Background()); !errors.Is(err, ErrRunning) {
		t.Errorf("Run() error = %v, want ErrRunning", err)
	}
}

func TestRunAfterClose(t *testing.T) {
	c := newTestCompositor(t)
	c.Close()
	if err := c.Run(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Run() error = %v, want ErrClosed", err)
	}
}

func TestCloseClosesPresenters(t *testing.T) {
	rec := &recorder{}
	c := newTestCompositor(t, WithPresenter(rec))
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if rec.closed != 1 {
		t.Errorf("presenter closed %d times, want 1", rec.closed)
	}
	if _, ok := c.Composite(); ok {
		t.Error("Composite() painted after Close")
	}
}

func TestNativeBackendLoadsThumbnails(t *testing.T) {
	c, err := New(testDisplay, WithBackendName(backend.BackendNative))
	if err != nil {
		t.Skipf("native backend unavailable: %v", err)
	}
	defer c.Close()
	if c.Thumbnails() == nil {
		t.Fatal("Thumbnails() = nil on the native backend")
	}
	if !c.Effects().IsLoaded(native.ThumbnailEffectName) {
		t.Error("thumbnail cache not loaded as an effect")
	}
}
