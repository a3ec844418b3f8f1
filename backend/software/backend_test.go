package software

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/compositor/event"
	"github.com/gogpu/compositor/internal/filter"
	"github.com/gogpu/compositor/paint"
	"github.com/gogpu/compositor/region"
	"github.com/gogpu/compositor/scene"
	"github.com/gogpu/compositor/win"
)

var (
	display = image.Rect(0, 0, 100, 100)
	red     = color.RGBA{R: 200, A: 255}
)

func newScene(t *testing.T, opts ...Option) (*scene.Scene, *win.Space, *Backend) {
	t.Helper()
	q := event.NewQueue()
	sp := win.NewSpace(q)
	b := New(display, opts...)
	s := scene.New(scene.Config{Backend: b, Stack: sp, Queue: q, Display: display})
	return s, sp, b
}

func solid(c color.RGBA) image.Image { return image.NewUniform(c) }

// frame paints one frame with full damage and returns the shown image.
func frame(s *scene.Scene, b *Backend) *image.RGBA {
	s.ProcessEvents()
	damage := region.Rect(display)
	res := s.PaintScreen(damage, b.BeginFrame(damage), 0)
	b.EndFrame(res.Damaged)
	return b.Front().(*image.RGBA)
}

func TestCompositeOpaqueWindow(t *testing.T) {
	s, sp, b := newScene(t)
	w := sp.NewWindow(win.Options{Geometry: image.Rect(10, 10, 50, 50), Managed: true})
	w.SetContent(solid(red))

	img := frame(s, b)

	if got := img.RGBAAt(20, 20); got != red {
		t.Errorf("inside window = %v, want %v", got, red)
	}
	if got := img.RGBAAt(5, 5); got != DefaultBackground {
		t.Errorf("outside window = %v, want background %v", got, DefaultBackground)
	}
	if b.LiveBuffers() != 1 {
		t.Errorf("LiveBuffers() = %d, want 1", b.LiveBuffers())
	}
}

func TestTranslucentWindowBlends(t *testing.T) {
	s, sp, b := newScene(t)
	w := sp.NewWindow(win.Options{Geometry: image.Rect(0, 0, 40, 40), Managed: true, Opacity: 0.5})
	w.SetContent(solid(red))

	got := frame(s, b).RGBAAt(10, 10)
	if got.R < 105 || got.R > 125 || got.G > DefaultBackground.G || got.A != 255 {
		t.Errorf("half transparent red over background = %v", got)
	}
}

func TestShadowDrawnOutsideFrame(t *testing.T) {
	s, sp, b := newScene(t)
	w := sp.NewWindow(win.Options{Geometry: image.Rect(10, 10, 50, 50), Managed: true})
	w.SetContent(solid(red))
	w.SetShadow(filter.Shadow(4, color.RGBA{A: 255}), true)

	img := frame(s, b)

	if got := img.RGBAAt(51, 30); got.R >= DefaultBackground.R {
		t.Errorf("shadow pixel = %v, want darker than the background", got)
	}
	if got := img.RGBAAt(48, 30); got != red {
		t.Errorf("content under the shadow = %v, want %v", got, red)
	}
}

func TestDecorationBorder(t *testing.T) {
	s, sp, b := newScene(t)
	deco := &win.Decoration{Margins: win.Margins{Left: 2, Top: 12, Right: 2, Bottom: 2}}
	w := sp.NewWindow(win.Options{Geometry: image.Rect(10, 10, 60, 60), Managed: true, Decoration: deco})
	w.SetContent(solid(red))

	img := frame(s, b)

	tests := []struct {
		name string
		p    image.Point
		want color.RGBA
	}{
		{"title bar", image.Pt(57, 12), inactiveFrame},
		{"left border", image.Pt(10, 40), inactiveFrame},
		{"right border", image.Pt(59, 40), inactiveFrame},
		{"bottom border", image.Pt(30, 59), inactiveFrame},
		{"client", image.Pt(30, 40), red},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.p.X, tt.p.Y); got != tt.want {
			t.Errorf("%s at %v = %v, want %v", tt.name, tt.p, got, tt.want)
		}
	}
}

func TestPerformPaintBrightness(t *testing.T) {
	s, sp, b := newScene(t)
	w := sp.NewWindow(win.Options{Geometry: image.Rect(0, 0, 10, 10), Managed: true})
	w.SetContent(solid(red))
	s.ProcessEvents()

	rw, ok := s.WindowByID(w.ID())
	if !ok {
		t.Fatal("window not in scene")
	}
	data := paint.NewWindowPaintData(1, rw.BuildQuads(false))
	data.Brightness = 0.5
	b.PerformPaint(rw, paint.WindowOpaque, region.Rect(display), &data)

	if got := b.Target().Back().RGBAAt(5, 5); got != (color.RGBA{R: 100, A: 255}) {
		t.Errorf("dimmed pixel = %v, want {100 0 0 255}", got)
	}
}

func TestPerformPaintScaled(t *testing.T) {
	s, sp, b := newScene(t)
	w := sp.NewWindow(win.Options{Geometry: image.Rect(0, 0, 20, 20), Managed: true})
	w.SetContent(solid(red))
	s.ProcessEvents()
	rw, _ := s.WindowByID(w.ID())

	data := paint.NewWindowPaintData(1, rw.BuildQuads(false))
	data.XScale, data.YScale = 0.5, 0.5
	data.XTranslation, data.YTranslation = 40, 40
	b.PerformPaint(rw, paint.WindowTransformed, region.Rect(display), &data)

	back := b.Target().Back()
	if got := back.RGBAAt(45, 45); got != red {
		t.Errorf("scaled content = %v, want %v", got, red)
	}
	if got := back.RGBAAt(51, 51); got.A != 0 {
		t.Errorf("outside the scaled window = %v, want untouched", got)
	}
}

func TestBuffersReleasedWithWindow(t *testing.T) {
	s, sp, b := newScene(t)
	w := sp.NewWindow(win.Options{Geometry: image.Rect(0, 0, 10, 10), Managed: true})
	w.SetContent(solid(red))
	frame(s, b)

	sp.Close(w)
	for range 3 {
		s.ProcessEvents()
	}
	if b.LiveBuffers() != 0 {
		t.Errorf("LiveBuffers() = %d after the window went away, want 0", b.LiveBuffers())
	}
}

func TestExtendPaintRegion(t *testing.T) {
	big := region.Rect(image.Rect(0, 0, 80, 80))
	tests := []struct {
		name       string
		opts       []Option
		fullscreen bool
		want       region.Region
	}{
		{"buffer age", nil, true, big},
		{"below limit", []Option{WithoutBufferAge()}, false, big},
		{"opaque fullscreen", []Option{WithoutBufferAge()}, true, region.Rect(display)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(display, tt.opts...)
			r := big
			b.ExtendPaintRegion(&r, tt.fullscreen)
			if !r.Equal(tt.want) {
				t.Errorf("ExtendPaintRegion() = %v, want %v", r, tt.want)
			}
		})
	}
}

func TestOffscreenTargets(t *testing.T) {
	b := New(display)
	if err := b.PushTarget(image.Rectangle{}); err != ErrEmptyTarget {
		t.Errorf("PushTarget(empty) = %v, want ErrEmptyTarget", err)
	}
	bounds := image.Rect(20, 20, 30, 30)
	if err := b.PushTarget(bounds); err != nil {
		t.Fatalf("PushTarget() error = %v", err)
	}
	b.PaintBackground(region.Rect(display))
	img := b.PopTarget()
	if img == nil || img.Bounds() != bounds {
		t.Fatalf("PopTarget() bounds = %v, want %v", img.Bounds(), bounds)
	}
	if got := img.(*image.RGBA).RGBAAt(25, 25); got != DefaultBackground {
		t.Errorf("offscreen pixel = %v, want background", got)
	}
	if got := b.Target().Back().RGBAAt(25, 25); got.A != 0 {
		t.Errorf("back buffer touched while redirected: %v", got)
	}
	if b.PopTarget() != nil {
		t.Error("PopTarget() on an empty stack returned an image")
	}
}

func TestRenderWindowOffscreen(t *testing.T) {
	s, sp, _ := newScene(t)
	w := sp.NewWindow(win.Options{Geometry: image.Rect(30, 30, 40, 40), Managed: true})
	w.SetContent(solid(red))
	s.ProcessEvents()
	rw, _ := s.WindowByID(w.ID())

	img, err := s.RenderWindowOffscreen(rw.EffectWindow())
	if err != nil {
		t.Fatalf("RenderWindowOffscreen() error = %v", err)
	}
	if img.Bounds() != image.Rect(30, 30, 40, 40) {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if got := img.(*image.RGBA).RGBAAt(35, 35); got != red {
		t.Errorf("offscreen content = %v, want %v", got, red)
	}
}
