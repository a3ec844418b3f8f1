package native

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/gogpu/compositor/event"
	"github.com/gogpu/compositor/region"
	"github.com/gogpu/compositor/scene"
	"github.com/gogpu/compositor/win"
)

var testDisplay = image.Rect(0, 0, 64, 48)

// newTestOutput opens the headless device and creates an output on it.
// Tests are skipped when naga cannot compile the composite shader yet.
func newTestOutput(t *testing.T, opts ...Option) *Output {
	t.Helper()
	dev, err := OpenHeadless()
	if err != nil {
		t.Fatalf("OpenHeadless() error = %v", err)
	}
	out, err := NewOutput(dev.Device, dev.Queue, testDisplay, opts...)
	if err != nil {
		dev.Close()
		if errors.Is(err, ErrShader) && (strings.Contains(err.Error(), "not yet implemented") || strings.Contains(err.Error(), "not supported")) {
			t.Skipf("Skipping: naga feature not yet implemented: %v", err)
		}
		t.Fatalf("NewOutput() error = %v", err)
	}
	out.owned = dev
	t.Cleanup(out.Close)
	return out
}

func newTestScene(out *Output) (*scene.Scene, *win.Space) {
	q := event.NewQueue()
	sp := win.NewSpace(q)
	s := scene.New(scene.Config{Backend: out, Stack: sp, Queue: q, Display: testDisplay})
	return s, sp
}

func mapWindow(sp *win.Space, r image.Rectangle) *win.Window {
	w := sp.NewWindow(win.Options{Geometry: r, Managed: true})
	w.SetContent(image.NewUniform(color.RGBA{G: 180, A: 255}))
	return w
}

func frame(s *scene.Scene, out *Output, damage region.Region) {
	s.ProcessEvents()
	res := s.PaintScreen(damage, out.BeginFrame(damage), 0)
	out.EndFrame(res.Damaged)
}
